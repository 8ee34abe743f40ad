// Package retry wraps remote operations with bounded, backoff-based retry.
// Operations here are idempotent (create-by-id, delete-by-id, reads), so a
// blind bounded retry is safe; there is no jitter and no circuit breaker.
package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1000 * time.Millisecond
)

type Executor struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is replaceable for tests; nil means real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func New() *Executor {
	return &Executor{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
	}
}

// Do runs op up to MaxAttempts times. After a failed attempt n it waits
// n*BaseDelay before the next one. The final error is returned wrapped with
// the attempt count; errors from intermediate attempts are not suppressed
// beyond being replaced by later ones.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := e.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		if werr := e.wait(ctx, time.Duration(attempt)*e.BaseDelay); werr != nil {
			return werr
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, err)
}

func (e *Executor) wait(ctx context.Context, d time.Duration) error {
	if e.sleep != nil {
		return e.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
