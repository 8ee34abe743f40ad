package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestExecutor(delays *[]time.Duration) *Executor {
	e := New()
	e.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return e
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	var delays []time.Duration
	e := newTestExecutor(&delays)

	attempts := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond}, delays)
}

func TestDoFirstAttemptSuccessSkipsBackoff(t *testing.T) {
	var delays []time.Duration
	e := newTestExecutor(&delays)

	attempts := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, delays)
}

func TestDoReturnsFinalErrorWithAttemptCount(t *testing.T) {
	var delays []time.Duration
	e := newTestExecutor(&delays)

	boom := errors.New("boom")
	attempts := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})

	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Len(t, delays, 2)
}

func TestDoAbortsWaitOnCancelledContext(t *testing.T) {
	e := New()
	e.BaseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		// Cancel while Do is inside the first backoff wait.
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := e.Do(ctx, func(ctx context.Context) error {
		attempts++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
