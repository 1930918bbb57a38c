package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"schoolhub-backend/internal/infrastructure/persistence/memory"
	"schoolhub-backend/internal/repository"
)

// recordingPublisher captures every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fastPolicy keeps retry semantics but makes test sleeps negligible.
func fastPolicy() repository.Policy {
	return repository.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Microsecond,
		MaxDelay:    time.Millisecond,
		Multiplier:  2.0,
		Retryable:   repository.RetryableWriteError,
	}
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	schools   *SchoolService
	academics *AcademicsService
}

func newFixture() *fixture {
	store := memory.New()
	publisher := &recordingPublisher{}
	logger := zap.NewNop()
	gate := NewGate()
	schools := NewSchoolService(store, publisher, gate, fastPolicy(), logger)
	return &fixture{
		store:     store,
		publisher: publisher,
		schools:   schools,
		academics: NewAcademicsService(store, publisher, gate, fastPolicy(), logger, schools),
	}
}

func validSchoolRequest(code string) CreateSchoolRequest {
	return CreateSchoolRequest{
		Name:               "North High School",
		Code:               code,
		MaxStudentCapacity: 1200,
		Address: AddressInput{
			Line1:       "1 School Street",
			City:        "Springfield",
			PostalCode:  "12345",
			CountryCode: "US",
			Timezone:    "America/New_York",
		},
	}
}

func validYearRequest(name string) CreateAcademicYearRequest {
	return CreateAcademicYearRequest{
		Name:      name,
		StartDate: "2026-08-01",
		EndDate:   "2027-06-15",
	}
}

// interceptStore wraps the in-memory store and runs a hook before the first
// conditional update passes through, simulating a concurrent writer landing
// between the service's read and its write.
type interceptStore struct {
	repository.DocumentStore
	once       sync.Once
	beforeCond func()
}

func (s *interceptStore) ConditionalUpdate(ctx context.Context, key repository.Key, patch *repository.Patch, expectedVersion int) (*repository.Record, error) {
	if s.beforeCond != nil {
		s.once.Do(s.beforeCond)
	}
	return s.DocumentStore.ConditionalUpdate(ctx, key, patch, expectedVersion)
}
