// Package repository defines the storage-facing contracts of the service:
// the tenant-scoped key model, the document store port, the typed patch used
// for partial updates, and the retry/backoff executor shared by all mutating
// operations.
package repository

import (
	"time"
)

// EntityType discriminates the logical entity stored in a record.
type EntityType string

const (
	EntityTypeSchool        EntityType = "SCHOOL"
	EntityTypeDepartment    EntityType = "DEPARTMENT"
	EntityTypeAcademicYear  EntityType = "ACADEMIC_YEAR"
	EntityTypeGradingPeriod EntityType = "GRADING_PERIOD"
	EntityTypeHoliday       EntityType = "HOLIDAY"
	EntityTypeConfiguration EntityType = "SCHOOL_CONFIGURATION"
)

// Record is the base shape shared by every stored entity. Entity payload
// fields live in Attributes; the store implementations are responsible for
// (de)normalizing them to the physical item format.
type Record struct {
	TenantID   string
	EntityKey  Key
	EntityType EntityType

	// Version is the optimistic-lock token. It starts at 1 and is
	// incremented by exactly 1 on every successful mutation, only ever by
	// the store's conditional-write paths.
	Version int

	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string

	// IndexKeys carries the denormalized secondary-index key attributes
	// (e.g. GSI1PK/GSI1SK). Computed once at creation; immutable afterwards.
	IndexKeys map[string]string

	Attributes map[string]any
}

// Clone returns a deep copy of the record. Store implementations hand out
// clones so callers can never mutate stored state in place.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.IndexKeys = make(map[string]string, len(r.IndexKeys))
	for k, v := range r.IndexKeys {
		cp.IndexKeys[k] = v
	}
	cp.Attributes = make(map[string]any, len(r.Attributes))
	for k, v := range r.Attributes {
		cp.Attributes[k] = v
	}
	return &cp
}

// String returns the named attribute as a string, or "" when absent.
func (r *Record) String(field string) string {
	if v, ok := r.Attributes[field].(string); ok {
		return v
	}
	return ""
}

// Int returns the named attribute as an int, tolerating the numeric types
// produced by the different store implementations.
func (r *Record) Int(field string) int {
	switch v := r.Attributes[field].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the named attribute as a bool, or false when absent.
func (r *Record) Bool(field string) bool {
	if v, ok := r.Attributes[field].(bool); ok {
		return v
	}
	return false
}

// Time returns the named attribute as a time.Time. Attributes round-trip
// through RFC 3339 strings in the document store.
func (r *Record) Time(field string) time.Time {
	switch v := r.Attributes[field].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
