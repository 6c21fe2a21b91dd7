// Package types provides common type definitions for the job tracker.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ApplicationStatus represents where a job application is in its lifecycle
type ApplicationStatus string

const (
	// ApplicationPlanned represents an application the user intends to submit
	ApplicationPlanned ApplicationStatus = "Planned"
	// ApplicationApplied represents a submitted application
	ApplicationApplied ApplicationStatus = "Applied"
	// ApplicationInterview represents an application in the interview stage
	ApplicationInterview ApplicationStatus = "Interview"
	// ApplicationOffer represents an application that produced an offer
	ApplicationOffer ApplicationStatus = "Offer"
	// ApplicationRejected represents a declined application
	ApplicationRejected ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists every status in board order
var ApplicationStatuses = []ApplicationStatus{
	ApplicationPlanned,
	ApplicationApplied,
	ApplicationInterview,
	ApplicationOffer,
	ApplicationRejected,
}

// IsValid reports whether s is a known status
func (s ApplicationStatus) IsValid() bool {
	return contains(ApplicationStatuses, s)
}

// UnmarshalJSON rejects unknown statuses
func (s *ApplicationStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, ApplicationStatuses)
}

// OutreachChannel represents the medium an outreach message was sent through
type OutreachChannel string

const (
	// ChannelEmail represents an email message
	ChannelEmail OutreachChannel = "email"
	// ChannelLinkedIn represents a LinkedIn message
	ChannelLinkedIn OutreachChannel = "linkedin"
)

// OutreachChannels lists every channel
var OutreachChannels = []OutreachChannel{ChannelEmail, ChannelLinkedIn}

// IsValid reports whether c is a known channel
func (c OutreachChannel) IsValid() bool {
	return contains(OutreachChannels, c)
}

// UnmarshalJSON rejects unknown channels
func (c *OutreachChannel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, c, OutreachChannels)
}

// OutreachStatus represents the response state of an outreach message
type OutreachStatus string

const (
	// OutreachSent represents a message awaiting a reply
	OutreachSent OutreachStatus = "Sent"
	// OutreachResponded represents a message that got a reply
	OutreachResponded OutreachStatus = "Responded"
	// OutreachNoResponse represents a message given up on
	OutreachNoResponse OutreachStatus = "No Response"
)

// OutreachStatuses lists every outreach status
var OutreachStatuses = []OutreachStatus{OutreachSent, OutreachResponded, OutreachNoResponse}

// IsValid reports whether s is a known outreach status
func (s OutreachStatus) IsValid() bool {
	return contains(OutreachStatuses, s)
}

// UnmarshalJSON rejects unknown outreach statuses
func (s *OutreachStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, OutreachStatuses)
}

// CompanySource represents how a company entered the user's list
type CompanySource string

const (
	// CompanySourceManual represents a company typed in by the user
	CompanySourceManual CompanySource = "Manual"
	// CompanySourceCSV represents a company imported from a CSV file
	CompanySourceCSV CompanySource = "CSV"
	// CompanySourceAPI represents a company pulled from an external API
	CompanySourceAPI CompanySource = "API"
)

// CompanySources lists every company source
var CompanySources = []CompanySource{CompanySourceManual, CompanySourceCSV, CompanySourceAPI}

// IsValid reports whether s is a known company source
func (s CompanySource) IsValid() bool {
	return contains(CompanySources, s)
}

// UnmarshalJSON rejects unknown company sources
func (s *CompanySource) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, CompanySources)
}

// ContactSource represents how a contact entered the user's list
type ContactSource string

const (
	// ContactSourceManual represents a contact typed in by the user
	ContactSourceManual ContactSource = "Manual"
	// ContactSourceAPI represents a contact pulled from an external API
	ContactSourceAPI ContactSource = "API"
)

// ContactSources lists every contact source
var ContactSources = []ContactSource{ContactSourceManual, ContactSourceAPI}

// IsValid reports whether s is a known contact source
func (s ContactSource) IsValid() bool {
	return contains(ContactSources, s)
}

// UnmarshalJSON rejects unknown contact sources
func (s *ContactSource) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, ContactSources)
}

// NotificationType represents the kind of notification shown to a user
type NotificationType string

const (
	// NotificationFollowUp reminds the user to follow up on an application or message
	NotificationFollowUp NotificationType = "follow_up"
	// NotificationGoalReminder nudges the user about weekly goals
	NotificationGoalReminder NotificationType = "goal_reminder"
	// NotificationMicroQuest announces a quest
	NotificationMicroQuest NotificationType = "micro_quest"
	// NotificationMotivation celebrates progress
	NotificationMotivation NotificationType = "motivation"
	// NotificationSystem carries product announcements
	NotificationSystem NotificationType = "system"
)

// NotificationTypes lists every notification type
var NotificationTypes = []NotificationType{
	NotificationFollowUp,
	NotificationGoalReminder,
	NotificationMicroQuest,
	NotificationMotivation,
	NotificationSystem,
}

// IsValid reports whether t is a known notification type
func (t NotificationType) IsValid() bool {
	return contains(NotificationTypes, t)
}

// UnmarshalJSON rejects unknown notification types
func (t *NotificationType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, NotificationTypes)
}

// Feeling represents how the user felt about their search at onboarding
type Feeling string

const (
	FeelingExcited      Feeling = "Excited and ready"
	FeelingOverwhelmed  Feeling = "Overwhelmed but motivated"
	FeelingFrustrated   Feeling = "Frustrated and stuck"
	FeelingJustStarting Feeling = "Just getting started"
)

// Feelings lists every onboarding feeling
var Feelings = []Feeling{FeelingExcited, FeelingOverwhelmed, FeelingFrustrated, FeelingJustStarting}

// IsValid reports whether f is a known feeling
func (f Feeling) IsValid() bool {
	return contains(Feelings, f)
}

// UnmarshalJSON rejects unknown feelings
func (f *Feeling) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, f, Feelings)
}

// ScoreCategory buckets an ATS score
type ScoreCategory string

const (
	ScoreExcellent ScoreCategory = "Excellent"
	ScoreGood      ScoreCategory = "Good"
	ScoreFair      ScoreCategory = "Fair"
	ScorePoor      ScoreCategory = "Poor"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func unmarshalEnum[T ~string](data []byte, dst *T, allowed []T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := T(raw)
	if !contains(allowed, v) {
		return fmt.Errorf("invalid value %q, must be one of: %s", raw, JoinValues(allowed))
	}
	*dst = v
	return nil
}

// JoinValues renders enum values as a comma separated list
func JoinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
