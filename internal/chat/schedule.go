package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Directive is a structured event-creation instruction extracted from an
// assistant reply.
type Directive struct {
	Title string
	Date  string // YYYY-MM-DD
	Time  string // h:mm AM/PM, empty if the user gave no time
}

// EventCreator is the slice of the calendar store the scheduler needs.
type EventCreator interface {
	Create(ctx context.Context, userID, title, date, timeLabel string, aiScheduled bool) (string, error)
}

// Scheduler turns directives into validated calendar events.
type Scheduler struct {
	events EventCreator
}

func NewScheduler(events EventCreator) *Scheduler {
	return &Scheduler{events: events}
}

// Schedule validates the directive and creates the event, flagged as
// AI-scheduled. Validation fails closed: an ambiguous or malformed time is
// rejected with a human-readable reason rather than defaulted.
func (s *Scheduler) Schedule(ctx context.Context, userID string, d Directive) (string, error) {
	if d.Time != "" {
		if _, _, err := ParseClock(d.Time); err != nil {
			return "", err
		}
	}
	return s.events.Create(ctx, userID, d.Title, d.Date, d.Time, true)
}

// ParseClock parses an "h:mm AM/PM" display time into 24-hour hour/minute.
// The meridiem is matched case-insensitively; the hour must be 1 through 12.
func ParseClock(value string) (hour, minute int, err error) {
	trimmed := strings.TrimSpace(value)
	upper := strings.ToUpper(trimmed)

	var pm bool
	switch {
	case strings.HasSuffix(upper, "AM"):
	case strings.HasSuffix(upper, "PM"):
		pm = true
	default:
		return 0, 0, fmt.Errorf("invalid time %q: expected h:mm AM/PM", value)
	}

	clock := strings.TrimSpace(trimmed[:len(trimmed)-2])
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: expected h:mm AM/PM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: bad hour", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: bad minutes", value)
	}

	if hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("invalid time %q: hour must be between 1 and 12 with AM/PM", value)
	}
	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: minutes must be between 0 and 59", value)
	}

	if pm && hour != 12 {
		hour += 12
	}
	if !pm && hour == 12 {
		hour = 0
	}
	return hour, minute, nil
}
