package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/types"
)

const applicationColumns = `id, user_id, company_id, job_title, job_url, status, applied_date, notes, created_at, updated_at`

// ApplicationRepository handles job application persistence
type ApplicationRepository struct {
	db DBTX
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}

	query := `
		INSERT INTO applications (id, user_id, company_id, job_title, job_url, status, applied_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		app.ID,
		app.UserID,
		app.CompanyID,
		app.JobTitle,
		app.JobURL,
		app.Status,
		app.AppliedDate,
		app.Notes,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return mapPgError("create application", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &app, query, id); err != nil {
		return nil, notFoundOr("get application", "application", id, err)
	}
	return &app, nil
}

// ListByUser returns a user's applications, newest first, optionally filtered by status
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string, status types.ApplicationStatus) ([]*models.Application, error) {
	var apps []*models.Application
	query := `
		SELECT ` + applicationColumns + ` FROM applications
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`
	if err := pgxscan.Select(ctx, r.db, &apps, query, userID, string(status)); err != nil {
		return nil, mapPgError("list applications", err)
	}
	return apps, nil
}

// ListByCompany returns the applications at a company, newest first
func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.Application, error) {
	var apps []*models.Application
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE company_id = $1 ORDER BY created_at DESC`
	if err := pgxscan.Select(ctx, r.db, &apps, query, companyID); err != nil {
		return nil, mapPgError("list company applications", err)
	}
	return apps, nil
}

// ListDetailed returns a user's applications joined with company name and location
func (r *ApplicationRepository) ListDetailed(ctx context.Context, userID string) ([]*models.ApplicationDetail, error) {
	var details []*models.ApplicationDetail
	query := `
		SELECT ` + applicationColumns + `, company_name, company_location
		FROM v_applications_detailed
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	if err := pgxscan.Select(ctx, r.db, &details, query, userID); err != nil {
		return nil, mapPgError("list detailed applications", err)
	}
	return details, nil
}

// Search matches job title or company name case-insensitively
func (r *ApplicationRepository) Search(ctx context.Context, userID, term string) ([]*models.ApplicationDetail, error) {
	var details []*models.ApplicationDetail
	query := `
		SELECT ` + applicationColumns + `, company_name, company_location
		FROM v_applications_detailed
		WHERE user_id = $1 AND (job_title ILIKE $2 OR company_name ILIKE $2)
		ORDER BY created_at DESC
	`
	if err := pgxscan.Select(ctx, r.db, &details, query, userID, likePattern(term)); err != nil {
		return nil, mapPgError("search applications", err)
	}
	return details, nil
}

// ListAwaitingFollowUp returns Applied applications of active users submitted on or before cutoff
func (r *ApplicationRepository) ListAwaitingFollowUp(ctx context.Context, cutoff time.Time) ([]*models.Application, error) {
	var apps []*models.Application
	query := `
		SELECT ` + prefixColumns("a", applicationColumns) + `
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE u.is_active AND a.status = $1 AND a.applied_date <= $2
		ORDER BY a.applied_date
	`
	if err := pgxscan.Select(ctx, r.db, &apps, query, types.ApplicationApplied, models.DateOf(cutoff)); err != nil {
		return nil, mapPgError("list applications awaiting follow-up", err)
	}
	return apps, nil
}

// Update writes every mutable column
func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	query := `
		UPDATE applications
		SET company_id = $2, job_title = $3, job_url = $4, status = $5, applied_date = $6, notes = $7
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		app.ID,
		app.CompanyID,
		app.JobTitle,
		app.JobURL,
		app.Status,
		app.AppliedDate,
		app.Notes,
	).Scan(&app.UpdatedAt)
	if err != nil {
		return notFoundOr("update application", "application", app.ID, err)
	}
	return nil
}

// Delete removes an application and its outreach; CV analyses are detached
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete application", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("application", id)
	}
	return nil
}
