package service

import (
	"context"
	"strings"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/types"
	"github.com/jobbuddy/internal/validation"
)

// OnboardingService stores the answers given during onboarding
type OnboardingService struct {
	onboardingRepo OnboardingRepository
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(onboardingRepo OnboardingRepository) *OnboardingService {
	return &OnboardingService{onboardingRepo: onboardingRepo}
}

// CreateOnboardingInput represents input for recording onboarding answers
type CreateOnboardingInput struct {
	UserID         string        `json:"userId" validate:"required"`
	CurrentFeeling types.Feeling `json:"currentFeeling" validate:"enum"`
	DreamMilestone string        `json:"dreamMilestone" validate:"trimmin=10"`
}

// UpdateOnboardingInput represents input for changing onboarding answers
type UpdateOnboardingInput struct {
	CurrentFeeling *types.Feeling `json:"currentFeeling,omitempty"`
	DreamMilestone *string        `json:"dreamMilestone,omitempty"`
}

func validateFeeling(f types.Feeling) error {
	if !f.IsValid() {
		return apperrors.NewValidationError("Invalid feeling. Must be one of: " + types.JoinValues(types.Feelings))
	}
	return nil
}

func validateMilestone(m string) error {
	if len([]rune(strings.TrimSpace(m))) < 10 {
		return apperrors.NewValidationError("Dream milestone must be at least 10 characters long")
	}
	return nil
}

// Create records a user's answers. A user has at most one onboarding record.
func (s *OnboardingService) Create(ctx context.Context, input *CreateOnboardingInput) (*models.OnboardingData, error) {
	if err := validateFeeling(input.CurrentFeeling); err != nil {
		return nil, err
	}
	if err := validateMilestone(input.DreamMilestone); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.onboardingRepo.ExistsForUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Onboarding data already exists for this user")
	}

	data := &models.OnboardingData{
		UserID:         input.UserID,
		CurrentFeeling: input.CurrentFeeling,
		DreamMilestone: strings.TrimSpace(input.DreamMilestone),
	}
	if err := s.onboardingRepo.Create(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetByID retrieves onboarding answers by ID
func (s *OnboardingService) GetByID(ctx context.Context, id string) (*models.OnboardingData, error) {
	return s.onboardingRepo.GetByID(ctx, id)
}

// GetByUserID retrieves a user's onboarding answers
func (s *OnboardingService) GetByUserID(ctx context.Context, userID string) (*models.OnboardingData, error) {
	return s.onboardingRepo.GetByUserID(ctx, userID)
}

// Update changes the supplied answers
func (s *OnboardingService) Update(ctx context.Context, id string, input *UpdateOnboardingInput) (*models.OnboardingData, error) {
	data, err := s.onboardingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CurrentFeeling != nil {
		if err := validateFeeling(*input.CurrentFeeling); err != nil {
			return nil, err
		}
		data.CurrentFeeling = *input.CurrentFeeling
	}
	if input.DreamMilestone != nil {
		if err := validateMilestone(*input.DreamMilestone); err != nil {
			return nil, err
		}
		data.DreamMilestone = strings.TrimSpace(*input.DreamMilestone)
	}
	if err := s.onboardingRepo.Update(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes onboarding answers
func (s *OnboardingService) Delete(ctx context.Context, id string) error {
	return s.onboardingRepo.Delete(ctx, id)
}
