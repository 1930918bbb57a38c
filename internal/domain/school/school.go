// Package school holds the school-scoped domain entities: the school itself,
// its departments, and its one-per-school configuration.
package school

import "time"

// Capacity bounds for a school's student body.
const (
	MinStudentCapacity = 1
	MaxStudentCapacity = 50000
)

// Status is the lifecycle state of a school.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
	StatusPlanned   Status = "planned"
)

// ValidStatus reports whether s is a known school status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusClosed, StatusPlanned:
		return true
	}
	return false
}

// CanTransitionTo implements the school status machine: closed is terminal,
// every other transition between known statuses is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if !ValidStatus(s) || !ValidStatus(next) {
		return false
	}
	if s == StatusClosed {
		return false
	}
	return s != next
}

// Address is a school's physical address. The timezone is mandatory: every
// temporal entity beneath the school interprets its dates in this zone.
type Address struct {
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Timezone    string `json:"timezone"`
}

// School is the root entity of a tenant's school hierarchy. It is soft
// deleted by transitioning its status to closed; records are never
// physically removed.
type School struct {
	ID                 string  `json:"id"`
	TenantID           string  `json:"tenantId"`
	Name               string  `json:"name"`
	Code               string  `json:"code"`
	Status             Status  `json:"status"`
	MaxStudentCapacity int     `json:"maxStudentCapacity"`
	Email              string  `json:"email,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	Address            Address `json:"address"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
	Version   int       `json:"version"`
}

// IsClosed reports whether the school has been soft-deleted.
func (s *School) IsClosed() bool {
	return s.Status == StatusClosed
}
