package availability

import (
	"strings"

	"opencourt.dev/timefmt"
)

// Filter returns the Available slots that satisfy every active predicate in
// c. Output order is not guaranteed; MergeAdjacent sorts internally.
//
// MinDurationMinutes is deliberately not applied here: two short slots may
// merge into a window long enough to satisfy it, so the duration check runs
// after merging (see Service.FilterAvailability).
func Filter(slots []Slot, c Criteria) ([]Slot, error) {
	minStart := -1
	if c.MinStartTime != "" {
		m, err := timefmt.ParseTimeOfDay(c.MinStartTime)
		if err != nil {
			return nil, err
		}
		minStart = m
	}
	maxEnd := -1
	if c.MaxEndTime != "" {
		m, err := timefmt.ParseTimeOfDay(c.MaxEndTime)
		if err != nil {
			return nil, err
		}
		maxEnd = m
	}

	var out []Slot
	for _, s := range slots {
		if s.Availability != Available {
			continue
		}
		// The fetch stage already scopes to the requested date; re-check in
		// case a source mislabels a row.
		if s.Date != c.Date {
			continue
		}
		if len(c.CityNames) > 0 && !matchesAnyCity(s.CityName, c.CityNames) {
			continue
		}
		if c.ParkName != "" && !containsFold(s.ParkName, c.ParkName) {
			continue
		}
		if c.CourtName != "" && !containsFold(s.CourtName, c.CourtName) {
			continue
		}
		if minStart >= 0 {
			start, err := timefmt.ParseTimeOfDay(s.StartTime)
			if err != nil || start < minStart {
				continue
			}
		}
		if maxEnd >= 0 {
			end, err := timefmt.ParseTimeOfDay(s.EndTime)
			if err != nil || end > maxEnd {
				continue
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// matchesAnyCity reports whether any requested city name appears in the
// slot's city, so partial names like "alb" still match "Albany".
func matchesAnyCity(city string, wanted []string) bool {
	for _, w := range wanted {
		if containsFold(city, w) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
