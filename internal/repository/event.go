package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/IRO05/LocalCleric/internal/database"
	"github.com/IRO05/LocalCleric/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Probe runs a lightweight read against the user's events. It is used as a
// permission/connectivity check before opening a live subscription.
func (r *EventRepository) Probe(ctx context.Context, userID string) error {
	var one int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT 1 FROM events WHERE user_id = $1 LIMIT 1`,
		userID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// FirstPage returns up to limit events for the user on or after from, ordered
// by (event_date, id) ascending.
func (r *EventRepository) FirstPage(ctx context.Context, userID string, from time.Time, limit int) ([]models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, user_id, title, event_date, event_time, ai_scheduled, created_at
		 FROM events WHERE user_id = $1 AND event_date >= $2
		 ORDER BY event_date ASC, id ASC
		 LIMIT $3`,
		userID, from, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// PageAfter returns the next page using the same ordering as FirstPage,
// starting strictly after the (afterDate, afterID) keyset cursor.
func (r *EventRepository) PageAfter(ctx context.Context, userID string, afterDate time.Time, afterID string, limit int) ([]models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, user_id, title, event_date, event_time, ai_scheduled, created_at
		 FROM events WHERE user_id = $1 AND (event_date, id) > ($2, $3)
		 ORDER BY event_date ASC, id ASC
		 LIMIT $4`,
		userID, afterDate, afterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	var eventTime *string
	if event.Time != "" {
		eventTime = &event.Time
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO events (id, user_id, title, event_date, event_time, ai_scheduled)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET id = events.id
		 RETURNING created_at`,
		event.ID, event.UserID, event.Title, event.Date, eventTime, event.AIScheduled,
	).Scan(&event.CreatedAt)
}

func (r *EventRepository) Delete(ctx context.Context, userID, eventID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM events WHERE id = $1 AND user_id = $2`,
		eventID, userID,
	)
	return err
}

func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var event models.Event
		var eventTime *string
		if err := rows.Scan(&event.ID, &event.UserID, &event.Title, &event.Date,
			&eventTime, &event.AIScheduled, &event.CreatedAt); err != nil {
			return nil, err
		}
		if eventTime != nil {
			event.Time = *eventTime
		}
		// DATE columns come back as UTC midnight; the stored value is a local
		// calendar day, so reinterpret the clock values in the local zone.
		event.Date = time.Date(event.Date.Year(), event.Date.Month(), event.Date.Day(),
			0, 0, 0, 0, time.Local)
		events = append(events, event)
	}
	return events, rows.Err()
}
