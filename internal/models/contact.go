package models

import (
	"time"

	"github.com/jobbuddy/internal/types"
)

// Contact represents a person at a company
type Contact struct {
	ID          string              `json:"id" db:"id"`
	CompanyID   string              `json:"companyId" db:"company_id"`
	Name        string              `json:"name" db:"name"`
	Role        *string             `json:"role,omitempty" db:"role"`
	Email       *string             `json:"email,omitempty" db:"email"`
	LinkedInURL *string             `json:"linkedinUrl,omitempty" db:"linkedin_url"`
	Notes       *string             `json:"notes,omitempty" db:"notes"`
	Source      types.ContactSource `json:"source" db:"source"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" db:"updated_at"`
}
