// Package service implements the tenant-scoped operations exposed at the
// service boundary. Every mutating operation follows the same protocol:
// validate, read live state, apply a typed patch via a version-conditional
// write, retry lost races with backoff, then notify the event publisher
// exactly once.
package service

import (
	"schoolhub-backend/internal/domain/school"
)

// AddressInput is the address payload of school requests. The timezone is
// mandatory because every temporal entity beneath the school interprets its
// dates in that zone.
type AddressInput struct {
	Line1       string `json:"line1" validate:"required,max=200"`
	Line2       string `json:"line2,omitempty" validate:"max=200"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state,omitempty" validate:"max=100"`
	PostalCode  string `json:"postalCode" validate:"required,max=20"`
	CountryCode string `json:"countryCode" validate:"required,iso3166_1_alpha2"`
	Timezone    string `json:"timezone" validate:"required,timezone"`
}

// CreateSchoolRequest creates a school. The code is unique per tenant,
// case-insensitively.
type CreateSchoolRequest struct {
	Name               string        `json:"name" validate:"required,min=2,max=200"`
	Code               string        `json:"code" validate:"required,min=2,max=50,excludesall=#"`
	Email              string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone              string        `json:"phone,omitempty" validate:"omitempty,e164"`
	MaxStudentCapacity int           `json:"maxStudentCapacity" validate:"required,min=1,max=50000"`
	Status             school.Status `json:"status,omitempty" validate:"omitempty,oneof=planned active"`
	Address            AddressInput  `json:"address" validate:"required"`
}

// UpdateSchoolRequest is a typed patch: only non-nil fields are written.
// The school code is immutable after creation. No version is accepted from
// the caller; the live version is always re-read.
type UpdateSchoolRequest struct {
	Name               *string        `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Email              *string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string        `json:"phone,omitempty" validate:"omitempty,e164"`
	MaxStudentCapacity *int           `json:"maxStudentCapacity,omitempty" validate:"omitempty,min=1,max=50000"`
	Status             *school.Status `json:"status,omitempty" validate:"omitempty,oneof=planned active inactive suspended closed"`
	Address            *AddressInput  `json:"address,omitempty"`
}

// CreateDepartmentRequest creates a department under a school. The code is
// unique per school, case-insensitively.
type CreateDepartmentRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=200"`
	Code     string `json:"code" validate:"required,min=1,max=50,excludesall=#"`
	HeadName string `json:"headName,omitempty" validate:"max=200"`
}

// CreateAcademicYearRequest creates an academic year. Dates are calendar
// dates in the school's timezone.
type CreateAcademicYearRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	IsCurrent bool   `json:"isCurrent,omitempty"`
}

// CreateGradingPeriodRequest creates a grading period inside a year.
type CreateGradingPeriodRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	PeriodNumber int    `json:"periodNumber" validate:"required,min=1,max=20"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// CreateHolidayRequest creates a holiday inside a year.
type CreateHolidayRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Recurring bool   `json:"recurring,omitempty"`
}

// UpsertConfigurationRequest replaces the school's configuration.
type UpsertConfigurationRequest struct {
	GradeScale          string `json:"gradeScale" validate:"required,oneof=letter percentage gpa points"`
	PassingGradePercent int    `json:"passingGradePercent" validate:"min=0,max=100"`
	AttendanceTracking  bool   `json:"attendanceTracking"`
	ParentNotifications bool   `json:"parentNotifications"`
	DefaultLocale       string `json:"defaultLocale,omitempty" validate:"omitempty,bcp47_language_tag"`
	FirstDayOfWeek      string `json:"firstDayOfWeek,omitempty" validate:"omitempty,oneof=monday sunday saturday"`
}
