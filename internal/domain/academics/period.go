package academics

import "time"

// GradingPeriod is a child of an academic year, ordered by PeriodNumber.
// Its date range lies within the parent year's range and must not overlap
// any sibling period's range.
type GradingPeriod struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	SchoolID     string    `json:"schoolId"`
	YearID       string    `json:"yearId"`
	Name         string    `json:"name"`
	PeriodNumber int       `json:"periodNumber"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
	Version   int       `json:"version"`
}

// Overlaps reports whether two date ranges intersect, boundaries inclusive.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
