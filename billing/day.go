package billing

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// DayRange returns the half-open interval [start, end) covering the calendar
// date of day as seen in loc. Both bounds are in UTC.
func DayRange(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// ParseDay parses YYYY-MM-DD as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return t, nil
}
