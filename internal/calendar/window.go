// Package calendar maps local calendar days onto UTC instants.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTimezone = errors.New("invalid timezone")
)

// Window is the closed UTC range [StartUTC, EndUTC] covering one local day.
type Window struct {
	StartUTC time.Time
	EndUTC   time.Time
}

// ResolveDayWindow returns the UTC range for local midnight through
// 23:59:59.999 of date in timezone. An empty timezone means UTC.
//
// The UTC offset is sampled once, at local noon, and applied to both ends of
// the day. On a DST transition day the window is therefore shifted by the
// transition amount relative to true local midnight-to-midnight, but it is
// always exactly 24h minus 1ms long.
func ResolveDayWindow(date, timezone string) (Window, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Window{}, err
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Window{}, err
	}

	noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc)
	_, offsetSec := noon.Zone()
	offset := time.Duration(offsetSec) * time.Second

	start := day.Add(-offset)
	return Window{
		StartUTC: start,
		EndUTC:   start.Add(24*time.Hour - time.Millisecond),
	}, nil
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q (expected YYYY-MM-DD): %v", ErrInvalidDate, date, err)
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name. Only an empty name maps to UTC.
func LoadLocation(timezone string) (*time.Location, error) {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return time.UTC, nil
	}
	// time.LoadLocation treats "Local" as the host zone; a client never means that.
	if timezone == "Local" {
		return nil, fmt.Errorf("%w %q", ErrInvalidTimezone, timezone)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, timezone, err)
	}
	return loc, nil
}

// LocalDate formats t as the YYYY-MM-DD calendar date it falls on in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
