package storage

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const onboardingColumns = `id, user_id, current_feeling, dream_milestone, completed_at`

// OnboardingRepository handles onboarding answers
type OnboardingRepository struct {
	db DBTX
}

// NewOnboardingRepository creates a new onboarding repository
func NewOnboardingRepository(db DBTX) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

// Create inserts the onboarding answers of a user
func (r *OnboardingRepository) Create(ctx context.Context, data *models.OnboardingData) error {
	if data.ID == "" {
		data.ID = uuid.New().String()
	}

	query := `
		INSERT INTO onboarding_data (id, user_id, current_feeling, dream_milestone)
		VALUES ($1, $2, $3, $4)
		RETURNING completed_at
	`
	err := r.db.QueryRow(ctx, query, data.ID, data.UserID, data.CurrentFeeling, data.DreamMilestone).
		Scan(&data.CompletedAt)
	if err != nil {
		return mapPgError("create onboarding data", err)
	}
	return nil
}

// GetByID retrieves onboarding answers by ID
func (r *OnboardingRepository) GetByID(ctx context.Context, id string) (*models.OnboardingData, error) {
	var data models.OnboardingData
	query := `SELECT ` + onboardingColumns + ` FROM onboarding_data WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &data, query, id); err != nil {
		return nil, notFoundOr("get onboarding data", "onboarding data", id, err)
	}
	return &data, nil
}

// GetByUserID retrieves the onboarding answers of a user
func (r *OnboardingRepository) GetByUserID(ctx context.Context, userID string) (*models.OnboardingData, error) {
	var data models.OnboardingData
	query := `SELECT ` + onboardingColumns + ` FROM onboarding_data WHERE user_id = $1`
	if err := pgxscan.Get(ctx, r.db, &data, query, userID); err != nil {
		return nil, notFoundOr("get onboarding data", "onboarding data for user", userID, err)
	}
	return &data, nil
}

// ExistsForUser reports whether the user already answered onboarding
func (r *OnboardingRepository) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM onboarding_data WHERE user_id = $1)`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, mapPgError("check onboarding data", err)
	}
	return exists, nil
}

// Update writes the answers back
func (r *OnboardingRepository) Update(ctx context.Context, data *models.OnboardingData) error {
	query := `UPDATE onboarding_data SET current_feeling = $2, dream_milestone = $3 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, data.ID, data.CurrentFeeling, data.DreamMilestone)
	if err != nil {
		return mapPgError("update onboarding data", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("onboarding data", data.ID)
	}
	return nil
}

// Delete removes onboarding answers
func (r *OnboardingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM onboarding_data WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete onboarding data", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("onboarding data", id)
	}
	return nil
}
