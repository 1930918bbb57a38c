// Package eventbridge publishes domain events to an AWS EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"schoolhub-backend/internal/service"
)

const source = "schoolhub.domain"

// Publisher sends domain events to one EventBridge bus. Publication is
// best-effort: failures are logged and reported to the caller, which is
// expected to swallow them.
type Publisher struct {
	client       *awseventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// New creates a Publisher bound to the named event bus.
func New(client *awseventbridge.Client, eventBusName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

var _ service.Publisher = (*Publisher)(nil)

// Publish sends one event. Errors are logged here so callers can stay
// fire-and-forget.
func (p *Publisher) Publish(ctx context.Context, event service.Event) error {
	detail, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event",
			zap.String("eventType", event.EventType),
			zap.Error(err),
		)
		return err
	}

	out, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(source),
				DetailType:   aws.String(event.EventType),
				Detail:       aws.String(string(detail)),
				Time:         aws.Time(event.Timestamp),
			},
		},
	})
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.String("eventType", event.EventType),
			zap.String("eventBus", p.eventBusName),
			zap.Error(err),
		)
		return err
	}
	if out.FailedEntryCount > 0 {
		for _, entry := range out.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("event entry rejected",
					zap.String("eventType", event.EventType),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d event entries failed to publish", out.FailedEntryCount)
	}

	p.logger.Debug("event published",
		zap.String("eventType", event.EventType),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}
