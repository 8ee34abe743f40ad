package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IRO05/LocalCleric/internal/models"
)

// Cursor marks the last event of a page in the (date, id) ordering. It is
// only valid against the same ordering and filters it was produced from.
type Cursor struct {
	Date time.Time
	ID   string
}

// Snapshot is one observed state of the live page. A snapshot with Err set is
// the final value before the subscription channel closes.
type Snapshot struct {
	Events  []models.Event
	HasMore bool
	Err     error
}

// Subscription owns the in-memory page for one user. The first page tracks
// the live change feed; older pages are pulled in on demand with LoadMore.
// Subscription errors are terminal: the caller must Subscribe again.
type Subscription struct {
	store  *Store
	userID string
	ctx    context.Context
	cancel context.CancelFunc

	snapshots chan Snapshot

	mu      sync.Mutex
	page    []models.Event
	hasMore bool
	cursor  *Cursor
	loading bool
	closed  bool
}

// Subscribe opens a live view of the user's upcoming events. A permission
// probe runs first (through the retry executor); if it fails the subscription
// is not opened and a connectivity error is returned.
func (s *Store) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.events.Probe(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("calendar unavailable: %w", err)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	changes, err := s.changes.Watch(subCtx, userID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch events: %w", err)
	}

	sub := &Subscription{
		store:     s,
		userID:    userID,
		ctx:       subCtx,
		cancel:    cancel,
		snapshots: make(chan Snapshot, 1),
	}

	if err := sub.reload(); err != nil {
		cancel()
		return nil, err
	}

	go sub.run(changes)
	return sub, nil
}

// Snapshots delivers page states. Only the latest unconsumed snapshot is
// retained. The channel closes when the subscription ends.
func (sub *Subscription) Snapshots() <-chan Snapshot {
	return sub.snapshots
}

func (sub *Subscription) run(changes <-chan struct{}) {
	for {
		select {
		case <-sub.ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				sub.fail(errors.New("calendar change feed lost"))
				return
			}
			if err := sub.reload(); err != nil {
				sub.fail(err)
				return
			}
		}
	}
}

// reload replaces the page wholesale from the first-page query. No
// incremental diffing: any previously appended older pages are dropped and
// can be re-fetched with LoadMore.
func (sub *Subscription) reload() error {
	page, hasMore, err := sub.store.Page(sub.ctx, sub.userID, nil)
	if err != nil {
		return err
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return nil
	}
	sub.page = page
	sub.hasMore = hasMore
	sub.cursor = lastCursor(page)
	sub.emitLocked()
	return nil
}

// LoadMore fetches the page after the current cursor and appends it. It is
// single-flight: a call while another is in flight, or with nothing left to
// fetch, returns immediately with no effect.
func (sub *Subscription) LoadMore(ctx context.Context) error {
	sub.mu.Lock()
	if sub.loading || !sub.hasMore || sub.cursor == nil || sub.closed {
		sub.mu.Unlock()
		return nil
	}
	sub.loading = true
	cursor := *sub.cursor
	sub.mu.Unlock()

	fetched, hasMore, err := sub.store.Page(ctx, sub.userID, &cursor)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.loading = false
	if sub.closed {
		// Torn down while the fetch was in flight; drop the result.
		return nil
	}
	if err != nil {
		return err
	}

	// The live feed may have replaced the first page meanwhile; never let an
	// id appear twice on the merged page.
	seen := make(map[string]bool, len(sub.page))
	for _, event := range sub.page {
		seen[event.ID] = true
	}
	for _, event := range fetched {
		if !seen[event.ID] {
			sub.page = append(sub.page, event)
		}
	}
	sub.hasMore = hasMore
	sub.cursor = lastCursor(sub.page)
	sub.emitLocked()
	return nil
}

// Remove deletes the event and drops it from the local page immediately,
// without waiting for the change feed to emit, so the view reflects the
// deletion even under network delay.
func (sub *Subscription) Remove(ctx context.Context, eventID string) error {
	if err := sub.store.Remove(ctx, sub.userID, eventID); err != nil {
		return err
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return nil
	}
	kept := sub.page[:0]
	for _, event := range sub.page {
		if event.ID != eventID {
			kept = append(kept, event)
		}
	}
	sub.page = kept
	sub.emitLocked()
	return nil
}

// Close tears the subscription down. In-flight calls are not cancelled; their
// results are dropped on arrival.
func (sub *Subscription) Close() {
	sub.cancel()
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.snapshots)
}

func (sub *Subscription) fail(err error) {
	sub.cancel()
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	select {
	case <-sub.snapshots:
	default:
	}
	sub.snapshots <- Snapshot{Err: err}
	close(sub.snapshots)
}

// emitLocked publishes the current page, replacing any unconsumed snapshot.
// Callers hold sub.mu.
func (sub *Subscription) emitLocked() {
	events := make([]models.Event, len(sub.page))
	copy(events, sub.page)
	select {
	case <-sub.snapshots:
	default:
	}
	sub.snapshots <- Snapshot{Events: events, HasMore: sub.hasMore}
}

func lastCursor(page []models.Event) *Cursor {
	if len(page) == 0 {
		return nil
	}
	last := page[len(page)-1]
	return &Cursor{Date: last.Date, ID: last.ID}
}
