package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/types"
	"github.com/jobbuddy/internal/validation"
)

// OutreachService manages messages sent to contacts
type OutreachService struct {
	outreachRepo    OutreachRepository
	contactRepo     ContactRepository
	applicationRepo ApplicationRepository
	companyRepo     CompanyRepository
	clock           Clock
}

// NewOutreachService creates a new outreach service
func NewOutreachService(
	outreachRepo OutreachRepository,
	contactRepo ContactRepository,
	applicationRepo ApplicationRepository,
	companyRepo CompanyRepository,
	clock Clock,
) *OutreachService {
	return &OutreachService{
		outreachRepo:    outreachRepo,
		contactRepo:     contactRepo,
		applicationRepo: applicationRepo,
		companyRepo:     companyRepo,
		clock:           clock,
	}
}

// CreateOutreachInput represents input for logging a message.
// Exactly one of ApplicationID and CompanyID must be set.
type CreateOutreachInput struct {
	UserID          string                `json:"userId" validate:"required"`
	ContactID       string                `json:"contactId" validate:"required"`
	ApplicationID   *string               `json:"applicationId,omitempty"`
	CompanyID       *string               `json:"companyId,omitempty"`
	Channel         types.OutreachChannel `json:"channel"`
	MessageTemplate string                `json:"messageTemplate"`
	SentDate        *time.Time            `json:"sentDate,omitempty"`
	FollowUpDate    *time.Time            `json:"followUpDate,omitempty"`
	Status          types.OutreachStatus  `json:"status,omitempty"`
}

// UpdateOutreachInput represents input for updating a message. Nil fields are left unchanged.
type UpdateOutreachInput struct {
	MessageTemplate *string               `json:"messageTemplate,omitempty"`
	SentDate        *time.Time            `json:"sentDate,omitempty"`
	FollowUpDate    *time.Time            `json:"followUpDate,omitempty"`
	Status          *types.OutreachStatus `json:"status,omitempty"`
}

func validateOutreachStatus(status types.OutreachStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("Invalid status. Must be one of: " + types.JoinValues(types.OutreachStatuses))
	}
	return nil
}

func validateMessageTemplate(message string) error {
	if len([]rune(strings.TrimSpace(message))) < 10 {
		return apperrors.NewValidationError("Message template must be at least 10 characters long")
	}
	return nil
}

func presentOrNil(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

// newOutreach validates input and builds the outreach to insert
func newOutreach(input *CreateOutreachInput, today time.Time) (*models.Outreach, error) {
	if !models.ExactlyOneLink(input.ApplicationID, input.CompanyID) {
		return nil, apperrors.NewValidationError("Must provide exactly ONE of application_id or company_id")
	}
	if !input.Channel.IsValid() {
		return nil, apperrors.NewValidationError("Invalid channel. Must be one of: " + types.JoinValues(types.OutreachChannels))
	}
	status := input.Status
	if status == "" {
		status = types.OutreachSent
	}
	if err := validateOutreachStatus(status); err != nil {
		return nil, err
	}
	if err := validateMessageTemplate(input.MessageTemplate); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	sent := models.DateOf(today)
	if input.SentDate != nil {
		sent = models.DateOf(*input.SentDate)
	}
	var followUp *time.Time
	if input.FollowUpDate != nil {
		d := models.DateOf(*input.FollowUpDate)
		followUp = &d
	}

	return &models.Outreach{
		UserID:          input.UserID,
		ApplicationID:   presentOrNil(input.ApplicationID),
		CompanyID:       presentOrNil(input.CompanyID),
		ContactID:       input.ContactID,
		Channel:         input.Channel,
		MessageTemplate: input.MessageTemplate,
		SentDate:        sent,
		FollowUpDate:    followUp,
		Status:          status,
	}, nil
}

// followUpAfter returns the date days after today, using the default of 5 for non-positive days
func followUpAfter(today time.Time, days int) time.Time {
	if days <= 0 {
		days = models.DefaultFollowUpDays
	}
	return models.DateOf(today).AddDate(0, 0, days)
}

// Create logs a message. Sent date defaults to today and status to Sent.
func (s *OutreachService) Create(ctx context.Context, input *CreateOutreachInput) (*models.Outreach, error) {
	o, err := newOutreach(input, s.clock.today())
	if err != nil {
		return nil, err
	}
	if err := s.outreachRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID retrieves a message
func (s *OutreachService) GetByID(ctx context.Context, id string) (*models.Outreach, error) {
	return s.outreachRepo.GetByID(ctx, id)
}

// ListForUser returns a user's messages, most recently sent first. An empty status returns all.
func (s *OutreachService) ListForUser(ctx context.Context, userID string, status types.OutreachStatus) ([]*models.Outreach, error) {
	if status != "" {
		if err := validateOutreachStatus(status); err != nil {
			return nil, err
		}
	}
	return s.outreachRepo.ListByUser(ctx, userID, status)
}

// ListForApplication returns messages about an application
func (s *OutreachService) ListForApplication(ctx context.Context, applicationID string) ([]*models.Outreach, error) {
	return s.outreachRepo.ListByApplication(ctx, applicationID)
}

// ListForCompany returns messages linked to a company directly or through its applications
func (s *OutreachService) ListForCompany(ctx context.Context, companyID string) ([]*models.Outreach, error) {
	return s.outreachRepo.ListByCompany(ctx, companyID)
}

// ListForContact returns messages sent to a contact
func (s *OutreachService) ListForContact(ctx context.Context, contactID string) ([]*models.Outreach, error) {
	return s.outreachRepo.ListByContact(ctx, contactID)
}

// PendingFollowUps returns Sent messages whose follow-up date has arrived, earliest first
func (s *OutreachService) PendingFollowUps(ctx context.Context, userID string) ([]*models.Outreach, error) {
	return s.outreachRepo.ListPendingFollowUps(ctx, userID, s.clock.today())
}

// Update changes the supplied fields
func (s *OutreachService) Update(ctx context.Context, id string, input *UpdateOutreachInput) (*models.Outreach, error) {
	o, err := s.outreachRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.MessageTemplate != nil {
		if err := validateMessageTemplate(*input.MessageTemplate); err != nil {
			return nil, err
		}
		o.MessageTemplate = *input.MessageTemplate
	}
	if input.Status != nil {
		if err := validateOutreachStatus(*input.Status); err != nil {
			return nil, err
		}
		o.Status = *input.Status
	}
	if input.SentDate != nil {
		o.SentDate = models.DateOf(*input.SentDate)
	}
	if input.FollowUpDate != nil {
		d := models.DateOf(*input.FollowUpDate)
		o.FollowUpDate = &d
	}

	if err := s.outreachRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkResponded records that the contact replied
func (s *OutreachService) MarkResponded(ctx context.Context, id string) (*models.Outreach, error) {
	status := types.OutreachResponded
	return s.Update(ctx, id, &UpdateOutreachInput{Status: &status})
}

// MarkNoResponse records that the contact never replied
func (s *OutreachService) MarkNoResponse(ctx context.Context, id string) (*models.Outreach, error) {
	status := types.OutreachNoResponse
	return s.Update(ctx, id, &UpdateOutreachInput{Status: &status})
}

// SetFollowUpDate schedules a follow-up days from today, 5 when days is not positive
func (s *OutreachService) SetFollowUpDate(ctx context.Context, id string, days int) (*models.Outreach, error) {
	d := followUpAfter(s.clock.today(), days)
	return s.Update(ctx, id, &UpdateOutreachInput{FollowUpDate: &d})
}

// Delete removes a message
func (s *OutreachService) Delete(ctx context.Context, id string) error {
	return s.outreachRepo.Delete(ctx, id)
}

// Contact returns the person a message was sent to
func (s *OutreachService) Contact(ctx context.Context, id string) (*models.Contact, error) {
	o, err := s.outreachRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.contactRepo.GetByID(ctx, o.ContactID)
}

// Application returns the application a message is about, nil when it is linked to a company
func (s *OutreachService) Application(ctx context.Context, id string) (*models.Application, error) {
	o, err := s.outreachRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ApplicationID == nil {
		return nil, nil
	}
	return s.applicationRepo.GetByID(ctx, *o.ApplicationID)
}

// Company returns the linked company, or the company of the linked application
func (s *OutreachService) Company(ctx context.Context, id string) (*models.Company, error) {
	o, err := s.outreachRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CompanyID != nil {
		return s.companyRepo.GetByID(ctx, *o.CompanyID)
	}
	app, err := s.applicationRepo.GetByID(ctx, *o.ApplicationID)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, app.CompanyID)
}
