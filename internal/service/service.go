package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "schoolhub-backend/internal/errors"
	"schoolhub-backend/internal/repository"
)

// clock abstracts time.Now for deterministic tests.
type clock func() time.Time

// mapWriteError translates store sentinels left over after the retry budget
// into the caller-facing taxonomy. Errors that already carry a stable code
// pass through untouched.
func mapWriteError(err error, resource string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConcurrentModificationError(resource).WithCause(err)
	case errors.Is(err, repository.ErrTransactionConflict):
		return apperrors.NewTransactionConflictError(resource + " transaction kept conflicting; refresh and retry").WithCause(err)
	case repository.IsTransient(err):
		return apperrors.NewStoreUnavailableError(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperrors.NewInternalError(err)
	}
}

// mapReadError translates read-path store sentinels.
func mapReadError(err error, resource, id string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		return apperrors.NewNotFoundError(resource, id)
	case repository.IsTransient(err):
		return apperrors.NewStoreUnavailableError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

// publish notifies the publisher of a successful mutation. Publication is
// best-effort: a failure is logged and never affects the caller's result.
func publish(ctx context.Context, publisher Publisher, logger *zap.Logger, event Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("event publication failed",
			zap.String("eventType", event.EventType),
			zap.String("tenantId", event.TenantID),
			zap.Error(err),
		)
	}
}
