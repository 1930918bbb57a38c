// Package academics holds the temporal entities scoped to a school's
// academic year: the year itself, its grading periods, and its holidays.
// All dates are calendar dates interpreted in the parent school's timezone.
package academics

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Duration bounds of an academic year, in days.
const (
	MinYearDays = 30
	MaxYearDays = 400
)

// Status is the lifecycle state of an academic year. The machine is strictly
// linear: planned -> active -> completed -> archived, no skips, no reverses.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

var nextStatus = map[Status]Status{
	StatusPlanned:   StatusActive,
	StatusActive:    StatusCompleted,
	StatusCompleted: StatusArchived,
}

// ValidStatus reports whether s is a known academic-year status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether the linear machine permits moving from s
// to next.
func (s Status) CanTransitionTo(next Status) bool {
	return nextStatus[s] == next
}

// IsTerminalForDates reports whether the year's dates have become immutable.
func (s Status) IsTerminalForDates() bool {
	return s == StatusCompleted || s == StatusArchived
}

// Year is an academic year of a school. At most one year per school carries
// IsCurrent = true; that invariant is maintained atomically by the
// current-year transaction, never by independent single-record writes.
type Year struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	SchoolID  string    `json:"schoolId"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    Status    `json:"status"`
	IsCurrent bool      `json:"isCurrent"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
	Version   int       `json:"version"`
}

// DurationDays returns the year's length in whole days.
func (y *Year) DurationDays() int {
	return int(y.EndDate.Sub(y.StartDate).Hours() / 24)
}

// Contains reports whether the date range [start, end] lies fully inside the
// year's range (boundaries inclusive).
func (y *Year) Contains(start, end time.Time) bool {
	return !start.Before(y.StartDate) && !end.After(y.EndDate)
}
