package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/types"
	"github.com/jobbuddy/internal/validation"
)

// ContactService manages people at a user's companies
type ContactService struct {
	contactRepo  ContactRepository
	companyRepo  CompanyRepository
	outreachRepo OutreachRepository
}

// NewContactService creates a new contact service
func NewContactService(contactRepo ContactRepository, companyRepo CompanyRepository, outreachRepo OutreachRepository) *ContactService {
	return &ContactService{
		contactRepo:  contactRepo,
		companyRepo:  companyRepo,
		outreachRepo: outreachRepo,
	}
}

// CreateContactInput represents input for adding a contact
type CreateContactInput struct {
	CompanyID   string              `json:"companyId" validate:"required"`
	Name        string              `json:"name"`
	Role        *string             `json:"role,omitempty" validate:"omitempty,max=255"`
	Email       *string             `json:"email,omitempty"`
	LinkedInURL *string             `json:"linkedinUrl,omitempty" validate:"omitempty,max=500"`
	Notes       *string             `json:"notes,omitempty"`
	Source      types.ContactSource `json:"source,omitempty"`
}

// UpdateContactInput represents input for updating a contact. Nil fields are left unchanged.
type UpdateContactInput struct {
	Name        *string `json:"name,omitempty"`
	Role        *string `json:"role,omitempty" validate:"omitempty,max=255"`
	Email       *string `json:"email,omitempty"`
	LinkedInURL *string `json:"linkedinUrl,omitempty" validate:"omitempty,max=500"`
	Notes       *string `json:"notes,omitempty"`
}

func validateContactName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return apperrors.NewValidationError("Contact name must be at least 2 characters long")
	}
	return nil
}

// normalizeContactEmail lowercases a present email and validates it.
// An empty email is stored as absent.
func normalizeContactEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil, nil
	}
	if !validation.IsEmail(e) {
		return nil, apperrors.NewValidationError("Invalid email format")
	}
	return &e, nil
}

func duplicateContact(email string) error {
	return apperrors.NewConflictError(fmt.Sprintf("Contact with email '%s' already exists at this company", email))
}

// Create adds a contact. Emails are optional and unique per company.
func (s *ContactService) Create(ctx context.Context, input *CreateContactInput) (*models.Contact, error) {
	if err := validateContactName(input.Name); err != nil {
		return nil, err
	}
	email, err := normalizeContactEmail(input.Email)
	if err != nil {
		return nil, err
	}
	source := input.Source
	if source == "" {
		source = types.ContactSourceManual
	}
	if !source.IsValid() {
		return nil, apperrors.NewValidationError("Invalid source. Must be one of: " + types.JoinValues(types.ContactSources))
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if email != nil {
		exists, err := s.contactRepo.EmailExists(ctx, input.CompanyID, *email, "")
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicateContact(*email)
		}
	}

	contact := &models.Contact{
		CompanyID:   input.CompanyID,
		Name:        strings.TrimSpace(input.Name),
		Role:        input.Role,
		Email:       email,
		LinkedInURL: input.LinkedInURL,
		Notes:       input.Notes,
		Source:      source,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// GetByID retrieves a contact
func (s *ContactService) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	return s.contactRepo.GetByID(ctx, id)
}

// GetByEmail finds a contact at a company by email
func (s *ContactService) GetByEmail(ctx context.Context, companyID, email string) (*models.Contact, error) {
	return s.contactRepo.GetByEmail(ctx, companyID, strings.ToLower(strings.TrimSpace(email)))
}

// ListForCompany returns a company's contacts ordered by name
func (s *ContactService) ListForCompany(ctx context.Context, companyID string) ([]*models.Contact, error) {
	return s.contactRepo.ListByCompany(ctx, companyID)
}

// ListForUser returns contacts across all of a user's companies
func (s *ContactService) ListForUser(ctx context.Context, userID string) ([]*models.Contact, error) {
	return s.contactRepo.ListByUser(ctx, userID)
}

// Search matches the query against name, role and email
func (s *ContactService) Search(ctx context.Context, userID, query string) ([]*models.Contact, error) {
	return s.contactRepo.Search(ctx, userID, strings.TrimSpace(query))
}

// Update changes the supplied fields, re-checking email uniqueness when the email changes
func (s *ContactService) Update(ctx context.Context, id string, input *UpdateContactInput) (*models.Contact, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := validateContactName(*input.Name); err != nil {
			return nil, err
		}
		contact.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email, err := normalizeContactEmail(input.Email)
		if err != nil {
			return nil, err
		}
		if email != nil && (contact.Email == nil || *contact.Email != *email) {
			exists, err := s.contactRepo.EmailExists(ctx, contact.CompanyID, *email, contact.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, duplicateContact(*email)
			}
		}
		contact.Email = email
	}
	if input.Role != nil {
		contact.Role = input.Role
	}
	if input.LinkedInURL != nil {
		contact.LinkedInURL = input.LinkedInURL
	}
	if input.Notes != nil {
		contact.Notes = input.Notes
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes a contact and the outreach sent to them
func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.contactRepo.Delete(ctx, id)
}

// Company returns the company a contact works at
func (s *ContactService) Company(ctx context.Context, contactID string) (*models.Company, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, contact.CompanyID)
}

// Outreach returns the messages sent to a contact, newest first
func (s *ContactService) Outreach(ctx context.Context, contactID string) ([]*models.Outreach, error) {
	if _, err := s.contactRepo.GetByID(ctx, contactID); err != nil {
		return nil, err
	}
	return s.outreachRepo.ListByContact(ctx, contactID)
}
