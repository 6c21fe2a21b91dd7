package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const cvAnalysisColumns = `id, user_id, application_id, cv_filename, cv_file_path, job_description, ats_score,
	matched_keywords, missing_keywords, suggestions, api_used, created_at`

// CVAnalysisRepository handles CV analysis persistence
type CVAnalysisRepository struct {
	db DBTX
}

// NewCVAnalysisRepository creates a new CV analysis repository
func NewCVAnalysisRepository(db DBTX) *CVAnalysisRepository {
	return &CVAnalysisRepository{db: db}
}

// Create inserts a new analysis. Nil keyword and suggestion lists are stored as empty arrays.
func (r *CVAnalysisRepository) Create(ctx context.Context, a *models.CVAnalysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.MatchedKeywords == nil {
		a.MatchedKeywords = []string{}
	}
	if a.MissingKeywords == nil {
		a.MissingKeywords = []string{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []models.Suggestion{}
	}

	matched, err := json.Marshal(a.MatchedKeywords)
	if err != nil {
		return fmt.Errorf("failed to marshal matched keywords: %w", err)
	}
	missing, err := json.Marshal(a.MissingKeywords)
	if err != nil {
		return fmt.Errorf("failed to marshal missing keywords: %w", err)
	}
	suggestions, err := json.Marshal(a.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	query := `
		INSERT INTO cv_analyses (id, user_id, application_id, cv_filename, cv_file_path, job_description,
			ats_score, matched_keywords, missing_keywords, suggestions, api_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		a.ID,
		a.UserID,
		a.ApplicationID,
		a.CVFilename,
		a.CVFilePath,
		a.JobDescription,
		a.ATSScore,
		matched,
		missing,
		suggestions,
		a.APIUsed,
	).Scan(&a.CreatedAt)
	if err != nil {
		return mapPgError("create cv analysis", err)
	}
	return nil
}

// GetByID retrieves an analysis by ID
func (r *CVAnalysisRepository) GetByID(ctx context.Context, id string) (*models.CVAnalysis, error) {
	var a models.CVAnalysis
	query := `SELECT ` + cvAnalysisColumns + ` FROM cv_analyses WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &a, query, id); err != nil {
		return nil, notFoundOr("get cv analysis", "cv analysis", id, err)
	}
	return &a, nil
}

// ListByUser returns a user's analyses, newest first
func (r *CVAnalysisRepository) ListByUser(ctx context.Context, userID string) ([]*models.CVAnalysis, error) {
	var list []*models.CVAnalysis
	query := `SELECT ` + cvAnalysisColumns + ` FROM cv_analyses WHERE user_id = $1 ORDER BY created_at DESC`
	if err := pgxscan.Select(ctx, r.db, &list, query, userID); err != nil {
		return nil, mapPgError("list cv analyses", err)
	}
	return list, nil
}

// ListByApplication returns the analyses attached to an application, newest first
func (r *CVAnalysisRepository) ListByApplication(ctx context.Context, applicationID string) ([]*models.CVAnalysis, error) {
	var list []*models.CVAnalysis
	query := `SELECT ` + cvAnalysisColumns + ` FROM cv_analyses WHERE application_id = $1 ORDER BY created_at DESC`
	if err := pgxscan.Select(ctx, r.db, &list, query, applicationID); err != nil {
		return nil, mapPgError("list application cv analyses", err)
	}
	return list, nil
}

// LatestForApplication returns the most recent analysis attached to an application
func (r *CVAnalysisRepository) LatestForApplication(ctx context.Context, applicationID string) (*models.CVAnalysis, error) {
	var a models.CVAnalysis
	query := `
		SELECT ` + cvAnalysisColumns + ` FROM cv_analyses
		WHERE application_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := pgxscan.Get(ctx, r.db, &a, query, applicationID); err != nil {
		return nil, notFoundOr("get latest cv analysis", "cv analysis for application", applicationID, err)
	}
	return &a, nil
}

// AverageScore returns the mean ATS score of a user's analyses; ok is false when there are none
func (r *CVAnalysisRepository) AverageScore(ctx context.Context, userID string) (avg float64, ok bool, err error) {
	var value *float64
	query := `SELECT AVG(ats_score)::float8 FROM cv_analyses WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&value); err != nil {
		return 0, false, mapPgError("average ats score", err)
	}
	if value == nil {
		return 0, false, nil
	}
	return *value, true, nil
}

// Delete removes an analysis
func (r *CVAnalysisRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM cv_analyses WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete cv analysis", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("cv analysis", id)
	}
	return nil
}
