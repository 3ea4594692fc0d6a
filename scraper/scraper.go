// Package scraper fetches raw court availability from municipal booking
// sites.
package scraper

import (
	"context"

	"opencourt.dev/availability"
)

// Source fetches the raw slot records for one city on one date
// (MM/DD/YYYY). A fetch or parse failure returns an error; sources never
// mix error markers into the slot list.
type Source interface {
	Fetch(ctx context.Context, date string) ([]availability.Slot, error)
	// CityName returns the city the source covers, as it appears in slots.
	CityName() string
}
