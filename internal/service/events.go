package service

import (
	"context"
	"time"
)

// Event types emitted after successful mutations.
const (
	EventSchoolCreated         = "school.created"
	EventSchoolUpdated         = "school.updated"
	EventSchoolClosed          = "school.closed"
	EventDepartmentCreated     = "department.created"
	EventAcademicYearCreated   = "academicyear.created"
	EventYearStatusChanged     = "academicyear.status_changed"
	EventCurrentYearChanged    = "academicyear.current_changed"
	EventGradingPeriodCreated  = "gradingperiod.created"
	EventHolidayCreated        = "holiday.created"
	EventConfigurationUpserted = "schoolconfiguration.upserted"
)

// Event is the notification handed to the publisher after a successful
// mutation. The payload carries the caller-facing snapshot of the entity;
// for updates it holds before/after snapshots.
type Event struct {
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	TenantID  string    `json:"tenantId"`
	SchoolID  string    `json:"schoolId"`
	Payload   any       `json:"payload"`
}

// ChangePayload is the before/after snapshot attached to update events.
type ChangePayload struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Publisher receives best-effort notifications of successful mutations.
// Delivery is at-least-once with no ordering guarantee; failures are logged
// by implementations and never propagate to the mutating caller.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
