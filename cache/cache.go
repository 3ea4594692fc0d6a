// Package cache persists raw scrape results with a time-to-live so repeat
// queries for the same date and city skip the booking site.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"opencourt.dev/availability"
)

// Store keeps one row per (date, city) in the scrape_cache table. Rows are
// overwritten wholesale on re-fetch; expired or unreadable rows count as
// misses and are evicted. Reads and writes are independent per-key
// operations, so concurrent requests race at worst to last-writer-wins.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Key builds the cache key for a date and city. City names are case-folded;
// dates are used exactly as validated upstream.
func Key(date, city string) string {
	return date + ":" + strings.ToLower(city)
}

// Get returns the cached slot sequence for (date, city), or ok=false on a
// miss. A row past its expiry or with an unreadable payload is deleted and
// reported as a miss so the caller re-fetches.
func (s *Store) Get(ctx context.Context, date, city string) ([]availability.Slot, bool) {
	key := Key(date, city)

	var payload string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM scrape_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}

	if s.now().Unix() >= expiresAt {
		s.evict(ctx, key)
		return nil, false
	}

	var slots []availability.Slot
	if err := json.Unmarshal([]byte(payload), &slots); err != nil {
		slog.Warn("corrupted cache payload, evicting", "key", key, "error", err)
		s.evict(ctx, key)
		return nil, false
	}
	return slots, true
}

// Put stores the slot sequence verbatim under (date, city) with an expiry
// of now+ttl, replacing any previous row. Callers must not cache error or
// empty results; an empty cache row would mask a transient scrape failure
// as prolonged unavailability.
func (s *Store) Put(ctx context.Context, date, city string, slots []availability.Slot, ttl time.Duration) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}

	key := Key(date, city)
	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrape_cache (cache_key, payload, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, key, string(payload), now.Add(ttl).Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("write cache %s: %w", key, err)
	}
	return nil
}

func (s *Store) evict(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scrape_cache WHERE cache_key = ?`, key); err != nil {
		slog.Warn("cache evict failed", "key", key, "error", err)
	}
}
