package storage

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jobbuddy/internal/models"
)

const streakColumns = `id, user_id, current_streak, longest_streak, last_activity_date, total_points, created_at, updated_at`

// StreakRepository handles streak persistence
type StreakRepository struct {
	db DBTX
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(db DBTX) *StreakRepository {
	return &StreakRepository{db: db}
}

// GetByUserID retrieves a user's streak
func (r *StreakRepository) GetByUserID(ctx context.Context, userID string) (*models.Streak, error) {
	var streak models.Streak
	query := `SELECT ` + streakColumns + ` FROM streaks WHERE user_id = $1`
	if err := pgxscan.Get(ctx, r.db, &streak, query, userID); err != nil {
		return nil, notFoundOr("get streak", "streak for user", userID, err)
	}
	return &streak, nil
}

// GetOrCreate returns the user's streak, inserting an empty one when missing
func (r *StreakRepository) GetOrCreate(ctx context.Context, userID string) (*models.Streak, error) {
	query := `INSERT INTO streaks (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return nil, mapPgError("create streak", err)
	}
	return r.GetByUserID(ctx, userID)
}

// GetForUpdate locks the user's streak row until the surrounding transaction ends
func (r *StreakRepository) GetForUpdate(ctx context.Context, userID string) (*models.Streak, error) {
	var streak models.Streak
	query := `SELECT ` + streakColumns + ` FROM streaks WHERE user_id = $1 FOR UPDATE`
	if err := pgxscan.Get(ctx, r.db, &streak, query, userID); err != nil {
		return nil, notFoundOr("lock streak", "streak for user", userID, err)
	}
	return &streak, nil
}

// Save writes day counts, last activity date and points
func (r *StreakRepository) Save(ctx context.Context, streak *models.Streak) error {
	query := `
		UPDATE streaks
		SET current_streak = $2, longest_streak = $3, last_activity_date = $4, total_points = $5
		WHERE user_id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		streak.UserID,
		streak.CurrentStreak,
		streak.LongestStreak,
		streak.LastActivityDate,
		streak.TotalPoints,
	).Scan(&streak.UpdatedAt)
	if err != nil {
		return notFoundOr("save streak", "streak for user", streak.UserID, err)
	}
	return nil
}

// AddPoints adds points without touching the day counts
func (r *StreakRepository) AddPoints(ctx context.Context, userID string, points int) (*models.Streak, error) {
	var streak models.Streak
	query := `UPDATE streaks SET total_points = total_points + $2 WHERE user_id = $1 RETURNING ` + streakColumns
	if err := pgxscan.Get(ctx, r.db, &streak, query, userID, points); err != nil {
		return nil, notFoundOr("add streak points", "streak for user", userID, err)
	}
	return &streak, nil
}

// Reset sets the current streak to zero
func (r *StreakRepository) Reset(ctx context.Context, userID string) (*models.Streak, error) {
	var streak models.Streak
	query := `UPDATE streaks SET current_streak = 0 WHERE user_id = $1 RETURNING ` + streakColumns
	if err := pgxscan.Get(ctx, r.db, &streak, query, userID); err != nil {
		return nil, notFoundOr("reset streak", "streak for user", userID, err)
	}
	return &streak, nil
}
