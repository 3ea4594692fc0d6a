package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"opencourt.dev/agent"
	"opencourt.dev/availability"
	"opencourt.dev/cache"
	"opencourt.dev/db"
	"opencourt.dev/scraper"
	"opencourt.dev/srv"
)

var (
	flagAddr   = flag.String("addr", ":8080", "listen address")
	flagDBPath = flag.String("db", "./opencourt.sqlite3", "database path")
	flagTTL    = flag.Duration("cache-ttl", time.Hour, "scrape cache time-to-live")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	database, err := db.Open(*flagDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := cache.New(database)
	registry := scraper.NewRegistry()
	service := availability.NewService(store, registry, *flagTTL)

	ai := agent.New(service)
	if !ai.IsConfigured() {
		slog.Warn("OPENAI_API_KEY not set, chat endpoint disabled; /api/availability still works")
	}

	return srv.New(service, ai).Serve(*flagAddr)
}
