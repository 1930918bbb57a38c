// Package messaging provides publisher decorators shared by the concrete
// event transports.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"schoolhub-backend/internal/service"
)

// AsyncPublisher hands events to the wrapped publisher on a separate
// goroutine so a slow or failing event bus never blocks or fails the
// mutation that produced the event. The delivery context is detached from
// the request so an already-answered request cannot cancel the publish.
type AsyncPublisher struct {
	inner  service.Publisher
	logger *zap.Logger
}

// NewAsyncPublisher wraps inner with fire-and-forget semantics.
func NewAsyncPublisher(inner service.Publisher, logger *zap.Logger) *AsyncPublisher {
	return &AsyncPublisher{inner: inner, logger: logger}
}

var _ service.Publisher = (*AsyncPublisher)(nil)

func (p *AsyncPublisher) Publish(ctx context.Context, event service.Event) error {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := p.inner.Publish(detached, event); err != nil {
			p.logger.Warn("event publication failed",
				zap.String("eventType", event.EventType),
				zap.Error(err),
			)
		}
	}()
	return nil
}
