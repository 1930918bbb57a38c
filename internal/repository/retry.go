package repository

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// jitterFraction bounds the uniform jitter added to each backoff delay to
// prevent thundering-herd retries.
const jitterFraction = 0.3

// Policy bounds the retry/backoff executor.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64

	// Retryable decides which failures are retried; everything else
	// propagates immediately. Nil means RetryableWriteError.
	Retryable func(error) bool
}

// DefaultPolicy returns the retry policy used by mutating operations when
// nothing else is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Multiplier:  2.0,
		Retryable:   RetryableWriteError,
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return RetryableWriteError(err)
}

// backoffDelay computes the pre-jitter delay after a failure of attempt n
// (1-indexed): min(base * multiplier^(n-1), max).
func (p Policy) backoffDelay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if capped := float64(p.MaxDelay); d > capped {
		d = capped
	}
	return time.Duration(d)
}

// jitteredDelay adds uniform jitter in [0, jitterFraction*delay] and
// truncates to whole milliseconds.
func jitteredDelay(delay time.Duration) time.Duration {
	jitter := time.Duration(rand.Float64() * jitterFraction * float64(delay))
	return (delay + jitter).Truncate(time.Millisecond)
}

// Do executes op up to p.MaxAttempts times, sleeping between attempts with
// exponential backoff and jitter. Only failures matching the policy's
// predicate are retried; after exhausting attempts the last failure is
// returned to the caller unchanged. The delay applies only to the calling
// goroutine and is cut short by context cancellation.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.retryable(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		timer := time.NewTimer(jitteredDelay(p.backoffDelay(attempt)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// DoVoid is Do for operations without a result.
func DoVoid(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
