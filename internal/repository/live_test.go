package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/IRO05/LocalCleric/internal/database"
	"github.com/IRO05/LocalCleric/internal/models"
)

// TestLiveEventRepository exercises the real Postgres schema: keyset
// pagination, deletion, and the change feed. Skipped unless DATABASE_URI
// points at a reachable database.
func TestLiveEventRepository(t *testing.T) {
	uri := os.Getenv("DATABASE_URI")
	if uri == "" {
		t.Skip("DATABASE_URI not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewEventRepository(db)
	userID := "live-test-" + uuid.NewString()

	today := time.Now()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	var created []models.Event
	for i := 0; i < 3; i++ {
		event := models.Event{
			UserID: userID,
			Title:  "event",
			Date:   midnight.AddDate(0, 0, i),
		}
		if err := repo.Create(ctx, &event); err != nil {
			t.Fatalf("create: %v", err)
		}
		created = append(created, event)
	}
	defer func() {
		for _, event := range created {
			repo.Delete(ctx, userID, event.ID)
		}
	}()

	if err := repo.Probe(ctx, userID); err != nil {
		t.Fatalf("probe: %v", err)
	}

	page, err := repo.FirstPage(ctx, userID, midnight, 2)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 events on first page, got %d", len(page))
	}
	if !page[0].Date.Equal(midnight) {
		t.Fatalf("expected local midnight %v, got %v", midnight, page[0].Date)
	}

	last := page[len(page)-1]
	next, err := repo.PageAfter(ctx, userID, last.Date, last.ID, 2)
	if err != nil {
		t.Fatalf("page after: %v", err)
	}
	if len(next) != 1 {
		t.Fatalf("expected 1 event on second page, got %d", len(next))
	}
	for _, event := range next {
		if event.ID == page[0].ID || event.ID == page[1].ID {
			t.Fatalf("duplicate event %s across pages", event.ID)
		}
	}

	// Change feed: a create must produce a tick for the owning user.
	watchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	changes, err := NewEventListener(db).Watch(watchCtx, userID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	extra := models.Event{UserID: userID, Title: "ping", Date: midnight}
	if err := repo.Create(ctx, &extra); err != nil {
		t.Fatalf("create: %v", err)
	}
	created = append(created, extra)

	select {
	case _, ok := <-changes:
		if !ok {
			t.Fatal("change feed closed unexpectedly")
		}
	case <-watchCtx.Done():
		t.Fatal("no change notification received")
	}
}
