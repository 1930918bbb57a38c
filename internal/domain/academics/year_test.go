package academics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStatusMachineIsStrictlyLinear(t *testing.T) {
	allowed := map[Status]Status{
		StatusPlanned:   StatusActive,
		StatusActive:    StatusCompleted,
		StatusCompleted: StatusArchived,
	}
	all := []Status{StatusPlanned, StatusActive, StatusCompleted, StatusArchived}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from] == to
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestArchivedIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusPlanned, StatusActive, StatusCompleted, StatusArchived} {
		assert.False(t, StatusArchived.CanTransitionTo(to))
	}
}

func TestStatusSkipsRejected(t *testing.T) {
	assert.False(t, StatusPlanned.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusPlanned.CanTransitionTo(StatusArchived))
	assert.False(t, StatusActive.CanTransitionTo(StatusArchived))
	// no reverses
	assert.False(t, StatusActive.CanTransitionTo(StatusPlanned))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusActive))
}

func TestIsTerminalForDates(t *testing.T) {
	assert.False(t, StatusPlanned.IsTerminalForDates())
	assert.False(t, StatusActive.IsTerminalForDates())
	assert.True(t, StatusCompleted.IsTerminalForDates())
	assert.True(t, StatusArchived.IsTerminalForDates())
}

func TestYearContains(t *testing.T) {
	y := &Year{StartDate: date("2026-08-01"), EndDate: date("2027-06-15")}

	assert.True(t, y.Contains(date("2026-08-01"), date("2027-06-15")), "boundaries are inclusive")
	assert.True(t, y.Contains(date("2026-09-01"), date("2026-12-20")))
	assert.False(t, y.Contains(date("2026-07-31"), date("2026-12-20")))
	assert.False(t, y.Contains(date("2026-09-01"), date("2027-06-16")))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(date("2026-08-01"), date("2026-10-01"), date("2026-10-01"), date("2026-12-01")),
		"shared boundary day counts as overlap")
	assert.True(t, Overlaps(date("2026-08-01"), date("2026-12-01"), date("2026-09-01"), date("2026-10-01")))
	assert.False(t, Overlaps(date("2026-08-01"), date("2026-09-30"), date("2026-10-01"), date("2026-12-01")))
}

func TestDurationDays(t *testing.T) {
	y := &Year{StartDate: date("2026-08-01"), EndDate: date("2027-06-01")}
	assert.Equal(t, 304, y.DurationDays())
}
