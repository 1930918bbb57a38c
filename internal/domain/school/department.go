package school

import "time"

// Department is a child of a school. Its code is unique within the school,
// case-insensitively.
type Department struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	SchoolID string `json:"schoolId"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	HeadName string `json:"headName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
	Version   int       `json:"version"`
}
