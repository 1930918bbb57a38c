package school

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	nonTerminal := []Status{StatusPlanned, StatusActive, StatusInactive, StatusSuspended}

	for _, from := range nonTerminal {
		for _, to := range []Status{StatusPlanned, StatusActive, StatusInactive, StatusSuspended, StatusClosed} {
			got := from.CanTransitionTo(to)
			if from == to {
				assert.False(t, got, "%s -> %s: same-status transition", from, to)
			} else {
				assert.True(t, got, "%s -> %s should be allowed", from, to)
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusPlanned, StatusActive, StatusInactive, StatusSuspended, StatusClosed} {
		assert.False(t, StatusClosed.CanTransitionTo(to), "closed -> %s must be rejected", to)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	assert.False(t, Status("bogus").CanTransitionTo(StatusActive))
	assert.False(t, StatusActive.CanTransitionTo(Status("bogus")))
	assert.False(t, ValidStatus(Status("")))
}

func TestIsClosed(t *testing.T) {
	s := &School{Status: StatusActive}
	assert.False(t, s.IsClosed())

	s.Status = StatusClosed
	assert.True(t, s.IsClosed())
}
