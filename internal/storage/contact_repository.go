package storage

import (
	"context"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const contactColumns = `id, company_id, name, role, email, linkedin_url, notes, source, created_at, updated_at`

// ContactRepository handles contact data persistence
type ContactRepository struct {
	db DBTX
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new contact. A present email is stored lowercased.
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	contact.Email = normalizeEmail(contact.Email)

	query := `
		INSERT INTO contacts (id, company_id, name, role, email, linkedin_url, notes, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		contact.ID,
		contact.CompanyID,
		contact.Name,
		contact.Role,
		contact.Email,
		contact.LinkedInURL,
		contact.Notes,
		contact.Source,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return mapPgError("create contact", err)
	}
	return nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &contact, query, id); err != nil {
		return nil, notFoundOr("get contact", "contact", id, err)
	}
	return &contact, nil
}

// GetByEmail finds a contact at a company by email, ignoring case
func (r *ContactRepository) GetByEmail(ctx context.Context, companyID, email string) (*models.Contact, error) {
	var contact models.Contact
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE company_id = $1 AND lower(email) = lower($2)`
	if err := pgxscan.Get(ctx, r.db, &contact, query, companyID, strings.TrimSpace(email)); err != nil {
		return nil, notFoundOr("get contact by email", "contact", email, err)
	}
	return &contact, nil
}

// EmailExists reports whether another contact at the company has the email.
// excludeID may be empty.
func (r *ContactRepository) EmailExists(ctx context.Context, companyID, email, excludeID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM contacts
			WHERE company_id = $1 AND lower(email) = lower($2) AND ($3 = '' OR id::text <> $3)
		)
	`
	if err := r.db.QueryRow(ctx, query, companyID, strings.TrimSpace(email), excludeID).Scan(&exists); err != nil {
		return false, mapPgError("check contact email", err)
	}
	return exists, nil
}

// ListByCompany returns the contacts at a company ordered by name
func (r *ContactRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.Contact, error) {
	var contacts []*models.Contact
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE company_id = $1 ORDER BY name`
	if err := pgxscan.Select(ctx, r.db, &contacts, query, companyID); err != nil {
		return nil, mapPgError("list contacts", err)
	}
	return contacts, nil
}

// ListByUser returns every contact at any of the user's companies ordered by name
func (r *ContactRepository) ListByUser(ctx context.Context, userID string) ([]*models.Contact, error) {
	var contacts []*models.Contact
	query := `
		SELECT ` + prefixColumns("ct", contactColumns) + `
		FROM contacts ct
		JOIN companies c ON c.id = ct.company_id
		WHERE c.user_id = $1
		ORDER BY ct.name
	`
	if err := pgxscan.Select(ctx, r.db, &contacts, query, userID); err != nil {
		return nil, mapPgError("list user contacts", err)
	}
	return contacts, nil
}

// Search matches name, role or email across the user's contacts
func (r *ContactRepository) Search(ctx context.Context, userID, term string) ([]*models.Contact, error) {
	var contacts []*models.Contact
	query := `
		SELECT ` + prefixColumns("ct", contactColumns) + `
		FROM contacts ct
		JOIN companies c ON c.id = ct.company_id
		WHERE c.user_id = $1
		  AND (ct.name ILIKE $2 OR ct.role ILIKE $2 OR ct.email ILIKE $2)
		ORDER BY ct.name
	`
	if err := pgxscan.Select(ctx, r.db, &contacts, query, userID, likePattern(term)); err != nil {
		return nil, mapPgError("search contacts", err)
	}
	return contacts, nil
}

// Update writes every mutable column
func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	contact.Email = normalizeEmail(contact.Email)

	query := `
		UPDATE contacts
		SET name = $2, role = $3, email = $4, linkedin_url = $5, notes = $6, source = $7
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		contact.ID,
		contact.Name,
		contact.Role,
		contact.Email,
		contact.LinkedInURL,
		contact.Notes,
		contact.Source,
	).Scan(&contact.UpdatedAt)
	if err != nil {
		return notFoundOr("update contact", "contact", contact.ID, err)
	}
	return nil
}

// Delete removes a contact and its outreach
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete contact", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("contact", id)
	}
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}
