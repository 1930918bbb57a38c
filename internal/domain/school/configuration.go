package school

import "time"

// Configuration is the one-per-school settings record. It is an upsert
// target: writes either create it at version 1 or conditionally replace its
// fields, there is no history beyond the version counter.
type Configuration struct {
	TenantID string `json:"tenantId"`
	SchoolID string `json:"schoolId"`

	GradeScale          string `json:"gradeScale"`
	PassingGradePercent int    `json:"passingGradePercent"`
	AttendanceTracking  bool   `json:"attendanceTracking"`
	ParentNotifications bool   `json:"parentNotifications"`
	DefaultLocale       string `json:"defaultLocale"`
	FirstDayOfWeek      string `json:"firstDayOfWeek"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
	Version   int       `json:"version"`
}
