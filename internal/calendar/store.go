// Package calendar maintains a live, paginated, ordered view of a user's
// upcoming events against the document store, with retry-on-failure writes.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IRO05/LocalCleric/internal/models"
	"github.com/IRO05/LocalCleric/internal/retry"
)

// DefaultPageSize is the number of events per page.
const DefaultPageSize = 10

var ErrEmptyTitle = errors.New("event title is required")

// EventSource is the persistence boundary for events.
type EventSource interface {
	Probe(ctx context.Context, userID string) error
	FirstPage(ctx context.Context, userID string, from time.Time, limit int) ([]models.Event, error)
	PageAfter(ctx context.Context, userID string, afterDate time.Time, afterID string, limit int) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, userID, eventID string) error
}

// ChangeSource delivers change ticks for a user's events. The returned
// channel closing is terminal for the watch.
type ChangeSource interface {
	Watch(ctx context.Context, userID string) (<-chan struct{}, error)
}

type Store struct {
	events   EventSource
	changes  ChangeSource
	retry    *retry.Executor
	pageSize int
	now      func() time.Time
}

func NewStore(events EventSource, changes ChangeSource) *Store {
	return &Store{
		events:   events,
		changes:  changes,
		retry:    retry.New(),
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
}

// Create validates and persists a new event, returning its id. The live page
// is deliberately not touched here: the subscription's own change
// notification is the source of truth, which avoids double-insert races
// between optimistic updates and the live feed.
func (s *Store) Create(ctx context.Context, userID, title, date, timeLabel string, aiScheduled bool) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}

	event := &models.Event{
		UserID:      userID,
		Title:       title,
		Date:        day,
		Time:        strings.TrimSpace(timeLabel),
		AIScheduled: aiScheduled,
	}
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		return s.events.Create(ctx, event)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return event.ID, nil
}

// Remove deletes an event by id.
func (s *Store) Remove(ctx context.Context, userID, eventID string) error {
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.events.Delete(ctx, userID, eventID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Page is a single-shot read of upcoming events: the first page when the
// cursor is nil, the next page after it otherwise.
func (s *Store) Page(ctx context.Context, userID string, cursor *Cursor) ([]models.Event, bool, error) {
	var page []models.Event
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		if cursor == nil {
			page, err = s.events.FirstPage(ctx, userID, LocalMidnight(s.now()), s.pageSize)
		} else {
			page, err = s.events.PageAfter(ctx, userID, cursor.Date, cursor.ID, s.pageSize)
		}
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to load events: %w", err)
	}
	return page, len(page) == s.pageSize, nil
}
