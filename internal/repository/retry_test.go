package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		Multiplier:  2.0,
		Retryable:   RetryableWriteError,
	}
}

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	p := Policy{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, 100*time.Millisecond, p.backoffDelay(1))
	assert.Equal(t, 200*time.Millisecond, p.backoffDelay(2))
	assert.Equal(t, 400*time.Millisecond, p.backoffDelay(3))
}

func TestBackoffDelayCapped(t *testing.T) {
	p := Policy{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Multiplier: 2.0,
	}

	// 100ms * 2^9 would be far past the cap.
	assert.Equal(t, 2*time.Second, p.backoffDelay(10))
}

func TestJitteredDelayBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := jitteredDelay(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+time.Duration(jitterFraction*float64(base)))
		assert.Zero(t, d%time.Millisecond, "delay must be whole milliseconds")
	}
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), testPolicy(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", ErrVersionConflict
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 3, calls)
}

func TestDoNonRetryableFailsImmediately(t *testing.T) {
	permanent := errors.New("bad input")
	calls := 0
	_, err := Do(context.Background(), testPolicy(5), func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "non-retryable errors must not be retried")
}

func TestDoExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(3), func(context.Context) (int, error) {
		calls++
		return 0, ErrVersionConflict
	})

	assert.Equal(t, 3, calls)
	// The last failure comes back as-is, not wrapped in a retry error.
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestDoStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Do(ctx, testPolicy(10), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, ErrVersionConflict
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoVoid(t *testing.T) {
	calls := 0
	err := DoVoid(context.Background(), testPolicy(3), func(context.Context) error {
		calls++
		if calls == 1 {
			return ErrTransactionConflict
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
