// Package availability implements the court availability pipeline: raw slot
// records scraped from municipal booking sites are filtered against user
// criteria and merged into maximal contiguous open windows.
package availability

// Status marks whether a slot can be booked.
type Status string

const (
	Available   Status = "Available"
	Unavailable Status = "Unavailable"
)

// Slot is one bookable time window for one court on one date. Times are
// HH:MM (24-hour) wall-clock values on the slot's date; start is strictly
// before end and slots never cross midnight. The JSON shape matches what
// the cache stores and what the API returns.
type Slot struct {
	Date         string `json:"date"`
	CityName     string `json:"city_name"`
	ParkName     string `json:"park_name"`
	CourtName    string `json:"court_name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Availability Status `json:"availability"`
}

// Criteria restricts which slots a query returns. Date is required in
// MM/DD/YYYY form; everything else is optional. City, park, and court names
// match case-insensitively as substrings, so "alb" finds "Albany".
type Criteria struct {
	Date               string   `json:"date"`
	CityNames          []string `json:"city_names,omitempty"`
	MinStartTime       string   `json:"min_start_time,omitempty"`
	MaxEndTime         string   `json:"max_end_time,omitempty"`
	ParkName           string   `json:"park_name,omitempty"`
	CourtName          string   `json:"court_name,omitempty"`
	MinDurationMinutes int      `json:"min_duration_minutes,omitempty"`
}

// Report is the raw outcome of an availability lookup: the slot records
// that could be fetched plus one human-readable notice per city whose fetch
// produced no data. Slots and notices travel separately so a failed city
// can never be mistaken for confirmed emptiness.
type Report struct {
	Slots   []Slot   `json:"slots"`
	Notices []string `json:"notices,omitempty"`
}
