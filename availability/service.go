package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"opencourt.dev/timefmt"
)

// DefaultCity is assumed when a request names no cities.
const DefaultCity = "Albany"

// Source produces the raw slot records for one city on one date
// (MM/DD/YYYY). A failed fetch returns an error; sources never mix error
// markers into the slot list.
type Source interface {
	Fetch(ctx context.Context, date string) ([]Slot, error)
}

// Sources resolves a city name to its Source. ForCity returns nil when no
// source covers the city.
type Sources interface {
	ForCity(city string) Source
}

// Cache stores raw per-city scrape results keyed by (date, city). Get
// reports a miss on absence, expiry, or corruption; Put overwrites the key
// wholesale.
type Cache interface {
	Get(ctx context.Context, date, city string) ([]Slot, bool)
	Put(ctx context.Context, date, city string, slots []Slot, ttl time.Duration) error
}

// Service orchestrates the availability pipeline for one request:
// cache-or-fetch per city, then filter and merge. Dependencies are injected;
// the only shared mutable state is the cache's backing store.
type Service struct {
	cache   Cache
	sources Sources
	ttl     time.Duration
}

func NewService(cache Cache, sources Sources, ttl time.Duration) *Service {
	return &Service{cache: cache, sources: sources, ttl: ttl}
}

// GetAvailability returns the raw slot records for the date across the
// requested cities, reading through the cache. An empty date means today;
// a malformed one fails with timefmt.ErrInvalidDateFormat. Fetch failures
// and cities without a source become per-city notices rather than failing
// the whole request.
func (s *Service) GetAvailability(ctx context.Context, date string, cities []string) (Report, error) {
	date = normalizeDate(date)
	if err := timefmt.ValidateDate(date); err != nil {
		return Report{}, err
	}
	if len(cities) == 0 {
		cities = []string{DefaultCity}
	}

	var report Report
	for _, city := range cities {
		if cached, ok := s.cache.Get(ctx, date, city); ok {
			slog.Info("availability cache hit", "date", date, "city", city, "slots", len(cached))
			report.Slots = append(report.Slots, cached...)
			continue
		}

		src := s.sources.ForCity(city)
		if src == nil {
			report.Notices = append(report.Notices,
				fmt.Sprintf("No availability data for %q yet; only supported cities can be searched.", city))
			continue
		}

		slog.Info("availability cache miss, fetching", "date", date, "city", city)
		slots, err := src.Fetch(ctx, date)
		if err != nil {
			slog.Warn("availability fetch failed", "date", date, "city", city, "error", err)
			report.Notices = append(report.Notices,
				fmt.Sprintf("Could not load availability for %s: %v", city, err))
			continue
		}
		// An empty scrape is never cached: a transient site hiccup must not
		// read back as confirmed unavailability for the whole TTL.
		if len(slots) > 0 {
			if err := s.cache.Put(ctx, date, city, slots, s.ttl); err != nil {
				slog.Warn("cache write failed", "date", date, "city", city, "error", err)
			}
		}
		report.Slots = append(report.Slots, slots...)
	}
	return report, nil
}

// FilterAvailability runs the full pipeline for one query: fetch raw slots,
// filter them against the criteria, merge adjacent windows, and drop merged
// windows shorter than MinDurationMinutes. The duration check runs after
// merging so short slots can still combine into a long enough window.
// Returned notices explain any cities that produced no data.
func (s *Service) FilterAvailability(ctx context.Context, c Criteria) ([]Slot, []string, error) {
	c.Date = normalizeDate(c.Date)

	report, err := s.GetAvailability(ctx, c.Date, c.CityNames)
	if err != nil {
		return nil, nil, err
	}

	filtered, err := Filter(report.Slots, c)
	if err != nil {
		return nil, nil, err
	}
	merged := MergeAdjacent(filtered)

	if c.MinDurationMinutes > 0 {
		kept := merged[:0]
		for _, m := range merged {
			mins, err := timefmt.DurationMinutes(m.StartTime, m.EndTime)
			if err != nil || mins < c.MinDurationMinutes {
				continue
			}
			kept = append(kept, m)
		}
		merged = kept
	}
	return merged, report.Notices, nil
}

func normalizeDate(date string) string {
	if date == "" {
		return time.Now().Format(timefmt.DateLayout)
	}
	return timefmt.NormalizeDate(date)
}
