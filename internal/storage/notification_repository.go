package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/types"
)

const notificationColumns = `id, user_id, type, title, message, related_type, related_id, is_read, emailed, created_at`

// notificationRow is the stored shape of a notification; the related
// reference is split over two nullable columns.
type notificationRow struct {
	ID          string                 `db:"id"`
	UserID      string                 `db:"user_id"`
	Type        types.NotificationType `db:"type"`
	Title       string                 `db:"title"`
	Message     string                 `db:"message"`
	RelatedType *string                `db:"related_type"`
	RelatedID   *string                `db:"related_id"`
	IsRead      bool                   `db:"is_read"`
	Emailed     bool                   `db:"emailed"`
	CreatedAt   time.Time              `db:"created_at"`
}

func (row *notificationRow) toModel() (*models.Notification, error) {
	n := &models.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		IsRead:    row.IsRead,
		Emailed:   row.Emailed,
		CreatedAt: row.CreatedAt,
	}
	if row.RelatedType != nil && row.RelatedID != nil {
		ref, err := types.NewRelatedRef(types.RelatedKind(*row.RelatedType), *row.RelatedID)
		if err != nil {
			return nil, fmt.Errorf("notification %s: %w", row.ID, err)
		}
		n.Related = ref
	}
	return n, nil
}

func relatedColumns(ref types.RelatedRef) (kind, id *string) {
	if ref == nil {
		return nil, nil
	}
	k, i := string(ref.Kind()), ref.RefID()
	return &k, &i
}

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	relatedType, relatedID := relatedColumns(n.Related)

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, related_type, related_id, is_read, emailed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		relatedType,
		relatedID,
		n.IsRead,
		n.Emailed,
	).Scan(&n.CreatedAt)
	if err != nil {
		return mapPgError("create notification", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var row notificationRow
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &row, query, id); err != nil {
		return nil, notFoundOr("get notification", "notification", id, err)
	}
	return row.toModel()
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return r.selectWhere(ctx, "list notifications",
		`user_id = $1 AND (NOT $2 OR NOT is_read) ORDER BY created_at DESC`, userID, unreadOnly)
}

// ListByType returns a user's notifications of one type, newest first
func (r *NotificationRepository) ListByType(ctx context.Context, userID string, typ types.NotificationType) ([]*models.Notification, error) {
	return r.selectWhere(ctx, "list notifications by type",
		`user_id = $1 AND type = $2 ORDER BY created_at DESC`, userID, typ)
}

// ListUnemailed returns a user's notifications not yet emailed, oldest first
func (r *NotificationRepository) ListUnemailed(ctx context.Context, userID string) ([]*models.Notification, error) {
	return r.selectWhere(ctx, "list unemailed notifications",
		`user_id = $1 AND NOT emailed ORDER BY created_at ASC`, userID)
}

func (r *NotificationRepository) selectWhere(ctx context.Context, operation, where string, args ...any) ([]*models.Notification, error) {
	var rows []*notificationRow
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + where
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, mapPgError(operation, err)
	}

	list := make([]*models.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toModel()
		if err != nil {
			return nil, apperrors.NewInternalError("corrupt notification reference", err)
		}
		list = append(list, n)
	}
	return list, nil
}

// UnreadCount counts a user's unread notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, mapPgError("count unread notifications", err)
	}
	return count, nil
}

// ExistsForRelated reports whether the user already has a notification of typ for ref
func (r *NotificationRepository) ExistsForRelated(ctx context.Context, userID string, typ types.NotificationType, ref types.RelatedRef) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND related_type = $3 AND related_id = $4
		)
	`
	err := r.db.QueryRow(ctx, query, userID, typ, string(ref.Kind()), ref.RefID()).Scan(&exists)
	if err != nil {
		return false, mapPgError("check related notification", err)
	}
	return exists, nil
}

// SetRead marks a notification read or unread
func (r *NotificationRepository) SetRead(ctx context.Context, id string, read bool) error {
	return r.execOne(ctx, "set notification read", id, `UPDATE notifications SET is_read = $2 WHERE id = $1`, id, read)
}

// MarkEmailed records that a notification was emailed
func (r *NotificationRepository) MarkEmailed(ctx context.Context, id string) error {
	return r.execOne(ctx, "mark notification emailed", id, `UPDATE notifications SET emailed = TRUE WHERE id = $1`, id)
}

// MarkAllRead marks every unread notification of a user read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, mapPgError("mark all notifications read", err)
	}
	return result.RowsAffected(), nil
}

// Delete removes a notification
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete notification", id, `DELETE FROM notifications WHERE id = $1`, id)
}

// DeleteOlderThan removes a user's notifications created before cutoff
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND created_at < $2`, userID, cutoff)
	if err != nil {
		return 0, mapPgError("delete old notifications", err)
	}
	return result.RowsAffected(), nil
}

// DeleteAllOlderThan removes every user's notifications created before cutoff
func (r *NotificationRepository) DeleteAllOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, mapPgError("purge notifications", err)
	}
	return result.RowsAffected(), nil
}

func (r *NotificationRepository) execOne(ctx context.Context, operation, id, query string, args ...any) error {
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(operation, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("notification", id)
	}
	return nil
}
