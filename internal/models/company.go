package models

import (
	"time"

	"github.com/jobbuddy/internal/types"
)

// Company represents an employer on a user's target list
type Company struct {
	ID        string              `json:"id" db:"id"`
	UserID    string              `json:"userId" db:"user_id"`
	Name      string              `json:"name" db:"name"`
	Website   *string             `json:"website,omitempty" db:"website"`
	Location  *string             `json:"location,omitempty" db:"location"`
	Industry  *string             `json:"industry,omitempty" db:"industry"`
	Notes     *string             `json:"notes,omitempty" db:"notes"`
	Source    types.CompanySource `json:"source" db:"source"`
	CreatedAt time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time           `json:"updatedAt" db:"updated_at"`
}

// StatusCount is the number of applications in one status
type StatusCount struct {
	Status types.ApplicationStatus `json:"status" db:"status"`
	Count  int                     `json:"count" db:"count"`
}

// CompanyStats summarizes activity at a company
type CompanyStats struct {
	CompanyID     string        `json:"companyId"`
	TotalContacts int           `json:"totalContacts"`
	Applications  []StatusCount `json:"applications"`
	TotalOutreach int           `json:"totalOutreach"`
}

// TotalApplications sums the per-status counts
func (s *CompanyStats) TotalApplications() int {
	total := 0
	for _, c := range s.Applications {
		total += c.Count
	}
	return total
}
