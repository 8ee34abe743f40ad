package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/IRO05/LocalCleric/internal/database"
)

// EventListener surfaces the events change feed (Postgres LISTEN/NOTIFY on the
// events_changed channel, raised by a trigger on every insert/delete).
type EventListener struct {
	db *database.DB
}

func NewEventListener(db *database.DB) *EventListener {
	return &EventListener{db: db}
}

// Watch dedicates a connection to LISTEN and returns a channel that receives
// a tick whenever the user's events change. The channel is closed when ctx is
// cancelled or the connection fails; a closed channel is terminal and the
// caller must Watch again to resume.
func (l *EventListener) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	conn, err := l.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN events_changed"); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on events_changed: %w", err)
	}

	// Buffered so a burst of notifications collapses into one pending tick;
	// the consumer reloads the whole page either way.
	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("Event listener stopped: %v", err)
				}
				return
			}
			if notification.Payload != userID {
				continue
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}()

	return changes, nil
}
