package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const goalColumns = `id, user_id, week_start, applications_goal, applications_current,
	outreach_goal, outreach_current, created_at, updated_at`

// GoalRepository handles weekly goal persistence
type GoalRepository struct {
	db DBTX
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new weekly goal
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	goal.WeekStart = models.WeekStart(goal.WeekStart)

	query := `
		INSERT INTO goals (id, user_id, week_start, applications_goal, applications_current, outreach_goal, outreach_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		goal.ID,
		goal.UserID,
		goal.WeekStart,
		goal.ApplicationsGoal,
		goal.ApplicationsCurrent,
		goal.OutreachGoal,
		goal.OutreachCurrent,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return mapPgError("create goal", err)
	}
	return nil
}

// GetOrCreateForWeek inserts goal unless the user already has a goal for its week, then
// returns the stored row. Safe to call from concurrent transactions.
func (r *GoalRepository) GetOrCreateForWeek(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	weekStart := models.WeekStart(goal.WeekStart)

	query := `
		INSERT INTO goals (id, user_id, week_start, applications_goal, applications_current, outreach_goal, outreach_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, week_start) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		goal.ID,
		goal.UserID,
		weekStart,
		goal.ApplicationsGoal,
		goal.ApplicationsCurrent,
		goal.OutreachGoal,
		goal.OutreachCurrent,
	)
	if err != nil {
		return nil, mapPgError("create goal", err)
	}
	return r.GetByWeek(ctx, goal.UserID, weekStart)
}

// GetByID retrieves a goal by ID
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	var goal models.Goal
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &goal, query, id); err != nil {
		return nil, notFoundOr("get goal", "goal", id, err)
	}
	return &goal, nil
}

// GetByWeek finds the user's goal for the week containing day
func (r *GoalRepository) GetByWeek(ctx context.Context, userID string, day time.Time) (*models.Goal, error) {
	var goal models.Goal
	weekStart := models.WeekStart(day)
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 AND week_start = $2`
	if err := pgxscan.Get(ctx, r.db, &goal, query, userID, weekStart); err != nil {
		return nil, notFoundOr("get goal by week", "goal for week", weekStart.Format(time.DateOnly), err)
	}
	return &goal, nil
}

// ListByUser returns a user's goals, latest week first. A non-positive limit returns all.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Goal, error) {
	var goals []*models.Goal
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY week_start DESC LIMIT $2`
	if err := pgxscan.Select(ctx, r.db, &goals, query, userID, limitOrAll(limit)); err != nil {
		return nil, mapPgError("list goals", err)
	}
	return goals, nil
}

// Update writes targets and counters
func (r *GoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	query := `
		UPDATE goals
		SET applications_goal = $2, applications_current = $3, outreach_goal = $4, outreach_current = $5
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		goal.ID,
		goal.ApplicationsGoal,
		goal.ApplicationsCurrent,
		goal.OutreachGoal,
		goal.OutreachCurrent,
	).Scan(&goal.UpdatedAt)
	if err != nil {
		return notFoundOr("update goal", "goal", goal.ID, err)
	}
	return nil
}

// IncrementApplications adds count to the applications counter atomically
func (r *GoalRepository) IncrementApplications(ctx context.Context, id string, count int) (*models.Goal, error) {
	return r.increment(ctx, "applications_current", id, count)
}

// IncrementOutreach adds count to the outreach counter atomically
func (r *GoalRepository) IncrementOutreach(ctx context.Context, id string, count int) (*models.Goal, error) {
	return r.increment(ctx, "outreach_current", id, count)
}

func (r *GoalRepository) increment(ctx context.Context, column, id string, count int) (*models.Goal, error) {
	var goal models.Goal
	query := `UPDATE goals SET ` + column + ` = ` + column + ` + $2 WHERE id = $1 RETURNING ` + goalColumns
	if err := pgxscan.Get(ctx, r.db, &goal, query, id, count); err != nil {
		return nil, notFoundOr("increment goal", "goal", id, err)
	}
	return &goal, nil
}

// ResetProgress zeroes both counters
func (r *GoalRepository) ResetProgress(ctx context.Context, id string) (*models.Goal, error) {
	var goal models.Goal
	query := `UPDATE goals SET applications_current = 0, outreach_current = 0 WHERE id = $1 RETURNING ` + goalColumns
	if err := pgxscan.Get(ctx, r.db, &goal, query, id); err != nil {
		return nil, notFoundOr("reset goal", "goal", id, err)
	}
	return &goal, nil
}

// Delete removes a goal
func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete goal", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("goal", id)
	}
	return nil
}
