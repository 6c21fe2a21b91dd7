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

const outreachColumns = `id, user_id, application_id, company_id, contact_id, channel, message_template,
	sent_date, follow_up_date, status, created_at, updated_at`

// OutreachRepository handles outreach persistence
type OutreachRepository struct {
	db DBTX
}

// NewOutreachRepository creates a new outreach repository
func NewOutreachRepository(db DBTX) *OutreachRepository {
	return &OutreachRepository{db: db}
}

// Create inserts a new outreach activity
func (r *OutreachRepository) Create(ctx context.Context, o *models.Outreach) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	query := `
		INSERT INTO outreach (id, user_id, application_id, company_id, contact_id, channel,
			message_template, sent_date, follow_up_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		o.ID,
		o.UserID,
		o.ApplicationID,
		o.CompanyID,
		o.ContactID,
		o.Channel,
		o.MessageTemplate,
		o.SentDate,
		o.FollowUpDate,
		o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapPgError("create outreach", err)
	}
	return nil
}

// GetByID retrieves an outreach activity by ID
func (r *OutreachRepository) GetByID(ctx context.Context, id string) (*models.Outreach, error) {
	var o models.Outreach
	query := `SELECT ` + outreachColumns + ` FROM outreach WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &o, query, id); err != nil {
		return nil, notFoundOr("get outreach", "outreach", id, err)
	}
	return &o, nil
}

// ListByUser returns a user's outreach, most recently sent first, optionally filtered by status
func (r *OutreachRepository) ListByUser(ctx context.Context, userID string, status types.OutreachStatus) ([]*models.Outreach, error) {
	var list []*models.Outreach
	query := `
		SELECT ` + outreachColumns + ` FROM outreach
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY sent_date DESC, created_at DESC
	`
	if err := pgxscan.Select(ctx, r.db, &list, query, userID, string(status)); err != nil {
		return nil, mapPgError("list outreach", err)
	}
	return list, nil
}

// ListByApplication returns outreach linked to an application
func (r *OutreachRepository) ListByApplication(ctx context.Context, applicationID string) ([]*models.Outreach, error) {
	return r.selectWhere(ctx, "list application outreach", `application_id = $1`, applicationID)
}

// ListByContact returns outreach sent to a contact
func (r *OutreachRepository) ListByContact(ctx context.Context, contactID string) ([]*models.Outreach, error) {
	return r.selectWhere(ctx, "list contact outreach", `contact_id = $1`, contactID)
}

// ListByCompany returns outreach linked to a company directly or through one of its applications
func (r *OutreachRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.Outreach, error) {
	return r.selectWhere(ctx, "list company outreach",
		`company_id = $1 OR application_id IN (SELECT id FROM applications WHERE company_id = $1)`, companyID)
}

// ListPendingFollowUps returns Sent outreach whose follow-up date is on or before today
func (r *OutreachRepository) ListPendingFollowUps(ctx context.Context, userID string, today time.Time) ([]*models.Outreach, error) {
	var list []*models.Outreach
	query := `
		SELECT ` + outreachColumns + ` FROM outreach
		WHERE user_id = $1 AND status = $2 AND follow_up_date IS NOT NULL AND follow_up_date <= $3
		ORDER BY follow_up_date
	`
	if err := pgxscan.Select(ctx, r.db, &list, query, userID, types.OutreachSent, models.DateOf(today)); err != nil {
		return nil, mapPgError("list pending follow-ups", err)
	}
	return list, nil
}

func (r *OutreachRepository) selectWhere(ctx context.Context, operation, where string, args ...any) ([]*models.Outreach, error) {
	var list []*models.Outreach
	query := `SELECT ` + outreachColumns + ` FROM outreach WHERE ` + where + ` ORDER BY sent_date DESC, created_at DESC`
	if err := pgxscan.Select(ctx, r.db, &list, query, args...); err != nil {
		return nil, mapPgError(operation, err)
	}
	return list, nil
}

// Update writes every mutable column
func (r *OutreachRepository) Update(ctx context.Context, o *models.Outreach) error {
	query := `
		UPDATE outreach
		SET application_id = $2, company_id = $3, contact_id = $4, channel = $5, message_template = $6,
			sent_date = $7, follow_up_date = $8, status = $9
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		o.ID,
		o.ApplicationID,
		o.CompanyID,
		o.ContactID,
		o.Channel,
		o.MessageTemplate,
		o.SentDate,
		o.FollowUpDate,
		o.Status,
	).Scan(&o.UpdatedAt)
	if err != nil {
		return notFoundOr("update outreach", "outreach", o.ID, err)
	}
	return nil
}

// Delete removes an outreach activity
func (r *OutreachRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM outreach WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete outreach", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("outreach", id)
	}
	return nil
}
