package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate tags date validation failures so callers can distinguish
// them from remote store errors.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a YYYY-MM-DD value into local midnight of that calendar
// day. The components are parsed individually instead of going through a
// generic date parser so the day is never shifted by timezone conversion,
// and impossible dates are rejected instead of being normalized away.
func ParseDate(value string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: bad year", ErrInvalidDate, value)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: bad month", ErrInvalidDate, value)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: bad day", ErrInvalidDate, value)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range components (month 13 becomes January);
	// a round-trip mismatch means the input was not a real calendar date.
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w %q: not a valid calendar date", ErrInvalidDate, value)
	}
	return date, nil
}

// LocalMidnight truncates t to midnight in the local zone.
func LocalMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
