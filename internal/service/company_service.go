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

// CompanyService manages a user's target companies
type CompanyService struct {
	companyRepo     CompanyRepository
	contactRepo     ContactRepository
	applicationRepo ApplicationRepository
	outreachRepo    OutreachRepository
}

// NewCompanyService creates a new company service
func NewCompanyService(
	companyRepo CompanyRepository,
	contactRepo ContactRepository,
	applicationRepo ApplicationRepository,
	outreachRepo OutreachRepository,
) *CompanyService {
	return &CompanyService{
		companyRepo:     companyRepo,
		contactRepo:     contactRepo,
		applicationRepo: applicationRepo,
		outreachRepo:    outreachRepo,
	}
}

// CreateCompanyInput represents input for adding a company
type CreateCompanyInput struct {
	UserID   string              `json:"userId" validate:"required"`
	Name     string              `json:"name"`
	Website  *string             `json:"website,omitempty" validate:"omitempty,max=500"`
	Location *string             `json:"location,omitempty" validate:"omitempty,max=255"`
	Industry *string             `json:"industry,omitempty" validate:"omitempty,max=100"`
	Notes    *string             `json:"notes,omitempty"`
	Source   types.CompanySource `json:"source,omitempty"`
}

// UpdateCompanyInput represents input for updating a company. Nil fields are left unchanged.
type UpdateCompanyInput struct {
	Name     *string `json:"name,omitempty"`
	Website  *string `json:"website,omitempty" validate:"omitempty,max=500"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
	Notes    *string `json:"notes,omitempty"`
}

func validateCompanyName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return apperrors.NewValidationError("Company name must be at least 2 characters long")
	}
	return nil
}

func duplicateCompany(name string) error {
	return apperrors.NewConflictError(fmt.Sprintf("Company '%s' already exists in your list", name))
}

// Create adds a company. Names are unique per user regardless of case.
func (s *CompanyService) Create(ctx context.Context, input *CreateCompanyInput) (*models.Company, error) {
	if err := validateCompanyName(input.Name); err != nil {
		return nil, err
	}
	source := input.Source
	if source == "" {
		source = types.CompanySourceManual
	}
	if !source.IsValid() {
		return nil, apperrors.NewValidationError("Invalid source. Must be one of: " + types.JoinValues(types.CompanySources))
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	exists, err := s.companyRepo.NameExists(ctx, input.UserID, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateCompany(name)
	}

	company := &models.Company{
		UserID:   input.UserID,
		Name:     name,
		Website:  input.Website,
		Location: input.Location,
		Industry: input.Industry,
		Notes:    input.Notes,
		Source:   source,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// GetByID retrieves a company
func (s *CompanyService) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

// GetByName finds a user's company by name, ignoring case
func (s *CompanyService) GetByName(ctx context.Context, userID, name string) (*models.Company, error) {
	return s.companyRepo.GetByName(ctx, userID, strings.TrimSpace(name))
}

// ListForUser returns a user's companies ordered by name. An empty industry returns all.
func (s *CompanyService) ListForUser(ctx context.Context, userID, industry string) ([]*models.Company, error) {
	return s.companyRepo.ListByUser(ctx, userID, industry)
}

// Search matches the query against name, location and industry
func (s *CompanyService) Search(ctx context.Context, userID, query string) ([]*models.Company, error) {
	return s.companyRepo.Search(ctx, userID, strings.TrimSpace(query))
}

// Update changes the supplied fields, re-checking name uniqueness on rename
func (s *CompanyService) Update(ctx context.Context, id string, input *UpdateCompanyInput) (*models.Company, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := validateCompanyName(*input.Name); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(*input.Name)
		if !strings.EqualFold(name, company.Name) {
			exists, err := s.companyRepo.NameExists(ctx, company.UserID, name, company.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, duplicateCompany(name)
			}
		}
		company.Name = name
	}
	if input.Website != nil {
		company.Website = input.Website
	}
	if input.Location != nil {
		company.Location = input.Location
	}
	if input.Industry != nil {
		company.Industry = input.Industry
	}
	if input.Notes != nil {
		company.Notes = input.Notes
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Delete removes a company with its contacts, applications and outreach
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	return s.companyRepo.Delete(ctx, id)
}

// Contacts returns the people at a company ordered by name
func (s *CompanyService) Contacts(ctx context.Context, id string) ([]*models.Contact, error) {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.contactRepo.ListByCompany(ctx, id)
}

// Applications returns the applications at a company, newest first
func (s *CompanyService) Applications(ctx context.Context, id string) ([]*models.Application, error) {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.applicationRepo.ListByCompany(ctx, id)
}

// Outreach returns messages linked to the company directly or through one of its applications
func (s *CompanyService) Outreach(ctx context.Context, id string) ([]*models.Outreach, error) {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.outreachRepo.ListByCompany(ctx, id)
}

// Stats summarizes contacts, applications by status and outreach at a company
func (s *CompanyService) Stats(ctx context.Context, id string) (*models.CompanyStats, error) {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.companyRepo.Stats(ctx, id)
}
