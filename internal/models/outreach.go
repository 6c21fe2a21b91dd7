package models

import (
	"time"

	"github.com/jobbuddy/internal/types"
)

// DefaultFollowUpDays is how far ahead a follow-up is scheduled when no value is given
const DefaultFollowUpDays = 5

// Outreach represents a message sent to a contact about an application or a company.
// Exactly one of ApplicationID and CompanyID is set.
type Outreach struct {
	ID              string                `json:"id" db:"id"`
	UserID          string                `json:"userId" db:"user_id"`
	ApplicationID   *string               `json:"applicationId,omitempty" db:"application_id"`
	CompanyID       *string               `json:"companyId,omitempty" db:"company_id"`
	ContactID       string                `json:"contactId" db:"contact_id"`
	Channel         types.OutreachChannel `json:"channel" db:"channel"`
	MessageTemplate string                `json:"messageTemplate" db:"message_template"`
	SentDate        time.Time             `json:"sentDate" db:"sent_date"`
	FollowUpDate    *time.Time            `json:"followUpDate,omitempty" db:"follow_up_date"`
	Status          types.OutreachStatus  `json:"status" db:"status"`
	CreatedAt       time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time             `json:"updatedAt" db:"updated_at"`
}

// ExactlyOneLink reports whether exactly one of the two link ids is present
func ExactlyOneLink(applicationID, companyID *string) bool {
	hasApp := applicationID != nil && *applicationID != ""
	hasCompany := companyID != nil && *companyID != ""
	return hasApp != hasCompany
}

// DaysSinceSent returns whole days since the message was sent
func (o *Outreach) DaysSinceSent(today time.Time) int {
	return DaysBetween(o.SentDate, today)
}

// NeedsFollowUp reports whether a follow-up date has arrived for a message still awaiting a reply
func (o *Outreach) NeedsFollowUp(today time.Time) bool {
	if o.FollowUpDate == nil || o.Status != types.OutreachSent {
		return false
	}
	return !DateOf(today).Before(DateOf(*o.FollowUpDate))
}
