package models

import (
	"time"

	"github.com/jobbuddy/internal/types"
)

// DefaultFollowUpThreshold is the number of days after applying before a follow-up is due
const DefaultFollowUpThreshold = 7

// Application represents a job application at a company
type Application struct {
	ID          string                  `json:"id" db:"id"`
	UserID      string                  `json:"userId" db:"user_id"`
	CompanyID   string                  `json:"companyId" db:"company_id"`
	JobTitle    string                  `json:"jobTitle" db:"job_title"`
	JobURL      *string                 `json:"jobUrl,omitempty" db:"job_url"`
	Status      types.ApplicationStatus `json:"status" db:"status"`
	AppliedDate *time.Time              `json:"appliedDate,omitempty" db:"applied_date"`
	Notes       *string                 `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time               `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time               `json:"updatedAt" db:"updated_at"`
}

// ApplicationDetail is a row of the v_applications_detailed view
type ApplicationDetail struct {
	Application
	CompanyName     string  `json:"companyName" db:"company_name"`
	CompanyLocation *string `json:"companyLocation,omitempty" db:"company_location"`
}

// DaysSinceApplied returns whole days since the application was submitted.
// ok is false when no applied date is recorded.
func (a *Application) DaysSinceApplied(today time.Time) (days int, ok bool) {
	if a.AppliedDate == nil {
		return 0, false
	}
	return DaysBetween(*a.AppliedDate, today), true
}

// NeedsFollowUp reports whether an Applied application has waited at least threshold days
func (a *Application) NeedsFollowUp(today time.Time, threshold int) bool {
	if a.Status != types.ApplicationApplied {
		return false
	}
	days, ok := a.DaysSinceApplied(today)
	if !ok {
		return false
	}
	return days >= threshold
}

// ResolveAppliedDate decides the applied date for a status change.
// An explicit date always wins; moving to Applied fills an empty date with today
// and never overwrites one that is already set.
func ResolveAppliedDate(current *time.Time, newStatus types.ApplicationStatus, explicit *time.Time, today time.Time) *time.Time {
	if explicit != nil {
		d := DateOf(*explicit)
		return &d
	}
	if current != nil {
		return current
	}
	if newStatus == types.ApplicationApplied {
		d := DateOf(today)
		return &d
	}
	return nil
}
