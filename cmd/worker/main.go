// The worker pre-warms the scrape cache so interactive requests rarely wait
// on the booking site. It fetches availability for the default city for the
// next few days, either once or on a ticker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"opencourt.dev/availability"
	"opencourt.dev/cache"
	"opencourt.dev/db"
	"opencourt.dev/scraper"
	"opencourt.dev/timefmt"
)

var (
	flagDBPath   = flag.String("db", "./opencourt.sqlite3", "database path")
	flagTTL      = flag.Duration("cache-ttl", time.Hour, "scrape cache time-to-live")
	flagInterval = flag.Duration("interval", 30*time.Minute, "warm interval")
	flagDays     = flag.Int("days", 2, "number of days to warm, starting today")
	flagOnce     = flag.Bool("once", false, "warm once and exit")
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

	service := availability.NewService(cache.New(database), scraper.NewRegistry(), *flagTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if *flagOnce {
		warm(ctx, service, *flagDays)
		return nil
	}

	slog.Info("starting cache warmer", "interval", *flagInterval, "days", *flagDays)
	ticker := time.NewTicker(*flagInterval)
	defer ticker.Stop()

	// Warm immediately on start
	warm(ctx, service, *flagDays)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cache warmer stopped")
			return nil
		case <-ticker.C:
			warm(ctx, service, *flagDays)
		}
	}
}

// warm fetches availability for the default city for each of the next days,
// letting the service's write-through populate the cache.
func warm(ctx context.Context, service *availability.Service, days int) {
	for offset := 0; offset < days; offset++ {
		if ctx.Err() != nil {
			return
		}
		date := time.Now().AddDate(0, 0, offset).Format(timefmt.DateLayout)
		report, err := service.GetAvailability(ctx, date, nil)
		if err != nil {
			slog.Error("warm failed", "date", date, "error", err)
			continue
		}
		slog.Info("warmed availability", "date", date, "slots", len(report.Slots), "notices", len(report.Notices))
	}
}
