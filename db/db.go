// Package db opens the backing database and applies embedded migrations.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open opens a database connection.
// If TURSO_DATABASE_URL is set, connects to Turso.
// Otherwise, opens a local SQLite file at path.
func Open(path string) (*sql.DB, error) {
	tursoURL := os.Getenv("TURSO_DATABASE_URL")
	tursoToken := os.Getenv("TURSO_AUTH_TOKEN")

	if tursoURL != "" {
		return openTurso(tursoURL, tursoToken)
	}
	return openLocalSQLite(path)
}

// openTurso connects to a Turso database.
func openTurso(url, token string) (*sql.DB, error) {
	// libsql driver expects: libsql://host?authToken=xxx
	connStr := url
	if token != "" {
		if strings.Contains(url, "?") {
			connStr = url + "&authToken=" + token
		} else {
			connStr = url + "?authToken=" + token
		}
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open turso: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping turso: %w", err)
	}

	slog.Info("db: connected to Turso", "url", url)
	return db, nil
}

// openLocalSQLite opens a local SQLite database file.
func openLocalSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Light pragmas for local SQLite
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=wal;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=1000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	slog.Info("db: connected to local SQLite", "path", path)
	return db, nil
}

// RunMigrations executes embedded migrations in numeric order (NNN-*.sql),
// recording each applied number in the migrations table.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			migration_number INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var migrations []string
	pat := regexp.MustCompile(`^(\d{3})-.*\.sql$`)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pat.MatchString(e.Name()) {
			migrations = append(migrations, e.Name())
		}
	}
	sort.Strings(migrations)

	executed := make(map[int]bool)
	rows, err := db.Query("SELECT migration_number FROM migrations")
	if err != nil {
		return fmt.Errorf("query executed migrations: %w", err)
	}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return fmt.Errorf("scan migration number: %w", err)
		}
		executed[n] = true
	}
	// Close the cursor before writing; SQLite locks with it open.
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close migration rows: %w", err)
	}

	for _, m := range migrations {
		match := pat.FindStringSubmatch(m)
		if len(match) != 2 {
			return fmt.Errorf("invalid migration filename: %s", m)
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return fmt.Errorf("parse migration number %s: %w", m, err)
		}
		if executed[n] {
			continue
		}
		if err := executeMigration(db, m); err != nil {
			return fmt.Errorf("execute %s: %w", m, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (migration_number) VALUES (?)", n); err != nil {
			return fmt.Errorf("record migration %d: %w", n, err)
		}
		slog.Info("db: applied migration", "file", m, "number", n)
	}
	return nil
}

func executeMigration(db *sql.DB, filename string) error {
	content, err := migrationFS.ReadFile("migrations/" + filename)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("exec %s: %w", filename, err)
	}
	return nil
}
