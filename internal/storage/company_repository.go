package storage

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const companyColumns = `id, user_id, name, website, location, industry, notes, source, created_at, updated_at`

// CompanyRepository handles company data persistence
type CompanyRepository struct {
	db DBTX
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db DBTX) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}

	query := `
		INSERT INTO companies (id, user_id, name, website, location, industry, notes, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		company.ID,
		company.UserID,
		company.Name,
		company.Website,
		company.Location,
		company.Industry,
		company.Notes,
		company.Source,
	).Scan(&company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return mapPgError("create company", err)
	}
	return nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &company, query, id); err != nil {
		return nil, notFoundOr("get company", "company", id, err)
	}
	return &company, nil
}

// GetByName finds a user's company by name, ignoring case
func (r *CompanyRepository) GetByName(ctx context.Context, userID, name string) (*models.Company, error) {
	var company models.Company
	query := `SELECT ` + companyColumns + ` FROM companies WHERE user_id = $1 AND lower(name) = lower($2)`
	if err := pgxscan.Get(ctx, r.db, &company, query, userID, name); err != nil {
		return nil, notFoundOr("get company by name", "company", name, err)
	}
	return &company, nil
}

// NameExists reports whether the user has another company with the name.
// excludeID may be empty.
func (r *CompanyRepository) NameExists(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM companies
			WHERE user_id = $1 AND lower(name) = lower($2) AND ($3 = '' OR id::text <> $3)
		)
	`
	if err := r.db.QueryRow(ctx, query, userID, name, excludeID).Scan(&exists); err != nil {
		return false, mapPgError("check company name", err)
	}
	return exists, nil
}

// ListByUser returns a user's companies ordered by name, optionally filtered by industry
func (r *CompanyRepository) ListByUser(ctx context.Context, userID, industry string) ([]*models.Company, error) {
	var companies []*models.Company
	query := `
		SELECT ` + companyColumns + ` FROM companies
		WHERE user_id = $1 AND ($2 = '' OR industry = $2)
		ORDER BY name
	`
	if err := pgxscan.Select(ctx, r.db, &companies, query, userID, industry); err != nil {
		return nil, mapPgError("list companies", err)
	}
	return companies, nil
}

// Search matches name, location or industry case-insensitively
func (r *CompanyRepository) Search(ctx context.Context, userID, term string) ([]*models.Company, error) {
	var companies []*models.Company
	query := `
		SELECT ` + companyColumns + ` FROM companies
		WHERE user_id = $1
		  AND (name ILIKE $2 OR location ILIKE $2 OR industry ILIKE $2)
		ORDER BY name
	`
	if err := pgxscan.Select(ctx, r.db, &companies, query, userID, likePattern(term)); err != nil {
		return nil, mapPgError("search companies", err)
	}
	return companies, nil
}

// Update writes every mutable column
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $2, website = $3, location = $4, industry = $5, notes = $6, source = $7
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		company.ID,
		company.Name,
		company.Website,
		company.Location,
		company.Industry,
		company.Notes,
		company.Source,
	).Scan(&company.UpdatedAt)
	if err != nil {
		return notFoundOr("update company", "company", company.ID, err)
	}
	return nil
}

// Delete removes a company with its contacts, applications and outreach
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete company", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("company", id)
	}
	return nil
}

// Stats counts contacts, applications per status and outreach for a company.
// Outreach linked through one of the company's applications is included.
func (r *CompanyRepository) Stats(ctx context.Context, id string) (*models.CompanyStats, error) {
	stats := &models.CompanyStats{CompanyID: id}

	query := `
		SELECT
			(SELECT COUNT(*) FROM contacts WHERE company_id = $1) AS total_contacts,
			(SELECT COUNT(*) FROM outreach o
			  WHERE o.company_id = $1
			     OR o.application_id IN (SELECT a.id FROM applications a WHERE a.company_id = $1)) AS total_outreach
	`
	if err := r.db.QueryRow(ctx, query, id).Scan(&stats.TotalContacts, &stats.TotalOutreach); err != nil {
		return nil, mapPgError("company stats", err)
	}

	statusQuery := `
		SELECT status, COUNT(*) AS count
		FROM applications
		WHERE company_id = $1
		GROUP BY status
		ORDER BY status
	`
	if err := pgxscan.Select(ctx, r.db, &stats.Applications, statusQuery, id); err != nil {
		return nil, mapPgError("company application counts", err)
	}
	return stats, nil
}
