package academics

import "time"

// Holiday is a child of an academic year. Its date range lies within the
// parent year's range. Recurring holidays repeat each academic year and are
// copied forward by callers when a new year is planned.
type Holiday struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	SchoolID  string    `json:"schoolId"`
	YearID    string    `json:"yearId"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Recurring bool      `json:"recurring"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
	Version   int       `json:"version"`
}
