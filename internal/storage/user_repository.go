package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const userColumns = `id, email, password_hash, name, is_active, email_notifications_enabled,
	notification_preferences, last_login, created_at, updated_at`

// UserRepository handles user data persistence
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The email is stored trimmed and lowercased.
// A streak row is created for the user by the database.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	prefs, err := marshalPreferences(user.NotificationPreferences)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, email, password_hash, name, is_active, email_notifications_enabled, notification_preferences)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.IsActive,
		user.EmailNotificationsEnabled,
		prefs,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapPgError("create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &user, query, id); err != nil {
		return nil, notFoundOr("get user", "user", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	if err := pgxscan.Get(ctx, r.db, &user, query, strings.TrimSpace(email)); err != nil {
		return nil, notFoundOr("get user by email", "user", email, err)
	}
	return &user, nil
}

// EmailExists reports whether any user has the email, ignoring case
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := r.db.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(&exists); err != nil {
		return false, mapPgError("check user email", err)
	}
	return exists, nil
}

// ListActive returns every active user ordered by creation time
func (r *UserRepository) ListActive(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY created_at`
	if err := pgxscan.Select(ctx, r.db, &users, query); err != nil {
		return nil, mapPgError("list active users", err)
	}
	return users, nil
}

// Update writes the mutable profile fields of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	prefs, err := marshalPreferences(user.NotificationPreferences)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET name = $2, is_active = $3, email_notifications_enabled = $4, notification_preferences = $5
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.IsActive,
		user.EmailNotificationsEnabled,
		prefs,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return notFoundOr("update user", "user", user.ID, err)
	}
	return nil
}

// UpdateLastLogin records a successful sign-in
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return mapPgError("update last login", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user", id)
	}
	return nil
}

// Delete removes a user and, through cascading keys, everything the user owns
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete user", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user", id)
	}
	return nil
}

// marshalPreferences stores empty preferences as NULL
func marshalPreferences(prefs map[string]interface{}) ([]byte, error) {
	if len(prefs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification preferences: %w", err)
	}
	return data, nil
}
