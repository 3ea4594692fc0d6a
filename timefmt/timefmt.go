// Package timefmt handles the date and time string formats used throughout
// the availability pipeline: MM/DD/YYYY calendar dates and HH:MM (24-hour)
// times of day.
package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// DateLayout is the canonical MM/DD/YYYY date layout.
const DateLayout = "01/02/2006"

// To24h converts a time string such as "9:00 am" or "09:00" to canonical
// HH:MM (24-hour) form.
func To24h(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse("3:04 PM", strings.ToUpper(s)); err == nil {
		return t.Format("15:04"), nil
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), nil
	}
	return "", fmt.Errorf("%w: %q (expected \"HH:MM AM/PM\" or \"HH:MM\")", ErrInvalidTimeFormat, raw)
}

// ParseTimeOfDay parses an HH:MM string into minutes since midnight. The
// result is only used for comparisons, never stored.
func ParseTimeOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTimeFormat, hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// DurationMinutes returns the number of minutes between two HH:MM times.
// When end is earlier than start the window is assumed to cross midnight
// and a day is added before differencing.
func DurationMinutes(start, end string) (int, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		e += 24 * 60
	}
	return e - s, nil
}

// NormalizeDate maps "today" and "tomorrow" to MM/DD/YYYY. Any other input
// is returned unchanged.
func NormalizeDate(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return time.Now().Format(DateLayout)
	case "tomorrow":
		return time.Now().AddDate(0, 0, 1).Format(DateLayout)
	}
	return s
}

// ValidateDate checks that s is a real calendar date in MM/DD/YYYY form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q (expected MM/DD/YYYY, e.g. 06/21/2025)", ErrInvalidDateFormat, s)
	}
	return nil
}
