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

// ApplicationService manages job applications
type ApplicationService struct {
	applicationRepo ApplicationRepository
	companyRepo     CompanyRepository
	outreachRepo    OutreachRepository
	cvRepo          CVAnalysisRepository
	clock           Clock
}

// NewApplicationService creates a new application service
func NewApplicationService(
	applicationRepo ApplicationRepository,
	companyRepo CompanyRepository,
	outreachRepo OutreachRepository,
	cvRepo CVAnalysisRepository,
	clock Clock,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		companyRepo:     companyRepo,
		outreachRepo:    outreachRepo,
		cvRepo:          cvRepo,
		clock:           clock,
	}
}

// CreateApplicationInput represents input for adding an application
type CreateApplicationInput struct {
	UserID      string                  `json:"userId" validate:"required"`
	CompanyID   string                  `json:"companyId" validate:"required"`
	JobTitle    string                  `json:"jobTitle"`
	JobURL      *string                 `json:"jobUrl,omitempty" validate:"omitempty,max=500"`
	Status      types.ApplicationStatus `json:"status,omitempty"`
	AppliedDate *time.Time              `json:"appliedDate,omitempty"`
	Notes       *string                 `json:"notes,omitempty"`
}

// UpdateApplicationInput represents input for updating an application. Nil fields are left unchanged.
type UpdateApplicationInput struct {
	JobTitle    *string                  `json:"jobTitle,omitempty"`
	JobURL      *string                  `json:"jobUrl,omitempty" validate:"omitempty,max=500"`
	Status      *types.ApplicationStatus `json:"status,omitempty"`
	AppliedDate *time.Time               `json:"appliedDate,omitempty"`
	Notes       *string                  `json:"notes,omitempty"`
}

func validateJobTitle(title string) error {
	if len([]rune(strings.TrimSpace(title))) < 2 {
		return apperrors.NewValidationError("Job title must be at least 2 characters long")
	}
	return nil
}

func validateApplicationStatus(status types.ApplicationStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("Invalid status. Must be one of: " + types.JoinValues(types.ApplicationStatuses))
	}
	return nil
}

// newApplication validates input and builds the application to insert
func newApplication(input *CreateApplicationInput, today time.Time) (*models.Application, error) {
	if err := validateJobTitle(input.JobTitle); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = types.ApplicationPlanned
	}
	if err := validateApplicationStatus(status); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	return &models.Application{
		UserID:      input.UserID,
		CompanyID:   input.CompanyID,
		JobTitle:    strings.TrimSpace(input.JobTitle),
		JobURL:      input.JobURL,
		Status:      status,
		AppliedDate: models.ResolveAppliedDate(nil, status, input.AppliedDate, today),
		Notes:       input.Notes,
	}, nil
}

// Create adds an application. Applied applications without a date are dated today.
func (s *ApplicationService) Create(ctx context.Context, input *CreateApplicationInput) (*models.Application, error) {
	app, err := newApplication(input, s.clock.today())
	if err != nil {
		return nil, err
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetByID retrieves an application
func (s *ApplicationService) GetByID(ctx context.Context, id string) (*models.Application, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// ListForUser returns a user's applications, newest first. An empty status returns all.
func (s *ApplicationService) ListForUser(ctx context.Context, userID string, status types.ApplicationStatus) ([]*models.Application, error) {
	if status != "" {
		if err := validateApplicationStatus(status); err != nil {
			return nil, err
		}
	}
	return s.applicationRepo.ListByUser(ctx, userID, status)
}

// ListForCompany returns the applications at a company, newest first
func (s *ApplicationService) ListForCompany(ctx context.Context, companyID string) ([]*models.Application, error) {
	return s.applicationRepo.ListByCompany(ctx, companyID)
}

// ListDetailed returns a user's applications with company name and location
func (s *ApplicationService) ListDetailed(ctx context.Context, userID string) ([]*models.ApplicationDetail, error) {
	return s.applicationRepo.ListDetailed(ctx, userID)
}

// Search matches the query against job title and company name
func (s *ApplicationService) Search(ctx context.Context, userID, query string) ([]*models.ApplicationDetail, error) {
	return s.applicationRepo.Search(ctx, userID, strings.TrimSpace(query))
}

// Update changes the supplied fields.
// Moving to Applied dates the application today unless it already has a date; an explicit date wins.
func (s *ApplicationService) Update(ctx context.Context, id string, input *UpdateApplicationInput) (*models.Application, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.JobTitle != nil {
		if err := validateJobTitle(*input.JobTitle); err != nil {
			return nil, err
		}
		app.JobTitle = strings.TrimSpace(*input.JobTitle)
	}
	if input.Status != nil {
		if err := validateApplicationStatus(*input.Status); err != nil {
			return nil, err
		}
		app.Status = *input.Status
	}
	if input.Status != nil || input.AppliedDate != nil {
		app.AppliedDate = models.ResolveAppliedDate(app.AppliedDate, app.Status, input.AppliedDate, s.clock.today())
	}
	if input.JobURL != nil {
		app.JobURL = input.JobURL
	}
	if input.Notes != nil {
		app.Notes = input.Notes
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateStatus moves an application to status
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status types.ApplicationStatus) (*models.Application, error) {
	return s.Update(ctx, id, &UpdateApplicationInput{Status: &status})
}

// Delete removes an application and the outreach linked to it
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	return s.applicationRepo.Delete(ctx, id)
}

// Company returns the company an application is for
func (s *ApplicationService) Company(ctx context.Context, id string) (*models.Company, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, app.CompanyID)
}

// Outreach returns messages sent about an application, newest first
func (s *ApplicationService) Outreach(ctx context.Context, id string) ([]*models.Outreach, error) {
	if _, err := s.applicationRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.outreachRepo.ListByApplication(ctx, id)
}

// CVAnalyses returns the CV analyses run against an application, newest first
func (s *ApplicationService) CVAnalyses(ctx context.Context, id string) ([]*models.CVAnalysis, error) {
	if _, err := s.applicationRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.cvRepo.ListByApplication(ctx, id)
}

// NeedingFollowUp returns a user's Applied applications that have waited at least threshold days.
// A non-positive threshold uses the default of 7.
func (s *ApplicationService) NeedingFollowUp(ctx context.Context, userID string, threshold int) ([]*models.Application, error) {
	if threshold <= 0 {
		threshold = models.DefaultFollowUpThreshold
	}
	apps, err := s.applicationRepo.ListByUser(ctx, userID, types.ApplicationApplied)
	if err != nil {
		return nil, err
	}
	today := s.clock.today()
	due := make([]*models.Application, 0, len(apps))
	for _, app := range apps {
		if app.NeedsFollowUp(today, threshold) {
			due = append(due, app)
		}
	}
	return due, nil
}
