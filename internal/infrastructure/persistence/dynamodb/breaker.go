package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"schoolhub-backend/internal/repository"
)

// BreakerStore decorates a DocumentStore with a circuit breaker so a
// misbehaving store fails fast instead of tying up request goroutines.
// Conflicts and not-found results are expected outcomes of the optimistic
// protocol and never count as breaker failures.
type BreakerStore struct {
	inner   repository.DocumentStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps inner with a circuit breaker.
func NewBreakerStore(inner repository.DocumentStore, logger *zap.Logger) *BreakerStore {
	settings := gobreaker.Settings{
		Name:    "document-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, repository.ErrRecordNotFound) ||
				errors.Is(err, repository.ErrRecordExists) ||
				repository.IsConflict(err)
		},
	}
	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

var _ repository.DocumentStore = (*BreakerStore)(nil)

func (b *BreakerStore) execute(op func() (any, error)) (any, error) {
	result, err := b.breaker.Execute(op)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit breaker open", repository.ErrStoreUnavailable)
	}
	return result, err
}

func (b *BreakerStore) Get(ctx context.Context, key repository.Key) (*repository.Record, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return result.(*repository.Record), nil
}

func (b *BreakerStore) Query(ctx context.Context, q repository.Query) ([]*repository.Record, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.Query(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*repository.Record), nil
}

func (b *BreakerStore) Put(ctx context.Context, rec *repository.Record) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.Put(ctx, rec)
	})
	return err
}

func (b *BreakerStore) ConditionalUpdate(ctx context.Context, key repository.Key, patch *repository.Patch, expectedVersion int) (*repository.Record, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.ConditionalUpdate(ctx, key, patch, expectedVersion)
	})
	if err != nil {
		return nil, err
	}
	return result.(*repository.Record), nil
}

func (b *BreakerStore) TransactWrite(ctx context.Context, writes []repository.ConditionalWrite) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.TransactWrite(ctx, writes)
	})
	return err
}
