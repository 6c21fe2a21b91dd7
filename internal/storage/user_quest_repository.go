package storage

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

const userQuestColumns = `id, user_id, quest_id, completed_at`

// UserQuestRepository handles completed micro-quests
type UserQuestRepository struct {
	db DBTX
}

// NewUserQuestRepository creates a new user quest repository
func NewUserQuestRepository(db DBTX) *UserQuestRepository {
	return &UserQuestRepository{db: db}
}

// Create records a quest completion
func (r *UserQuestRepository) Create(ctx context.Context, q *models.UserQuest) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	query := `INSERT INTO user_quests (id, user_id, quest_id) VALUES ($1, $2, $3) RETURNING completed_at`
	if err := r.db.QueryRow(ctx, query, q.ID, q.UserID, q.QuestID).Scan(&q.CompletedAt); err != nil {
		return mapPgError("complete quest", err)
	}
	return nil
}

// GetByID retrieves a completion by ID
func (r *UserQuestRepository) GetByID(ctx context.Context, id string) (*models.UserQuest, error) {
	var q models.UserQuest
	query := `SELECT ` + userQuestColumns + ` FROM user_quests WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &q, query, id); err != nil {
		return nil, notFoundOr("get user quest", "user quest", id, err)
	}
	return &q, nil
}

// GetByQuestID finds the user's completion of a quest
func (r *UserQuestRepository) GetByQuestID(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	var q models.UserQuest
	query := `SELECT ` + userQuestColumns + ` FROM user_quests WHERE user_id = $1 AND quest_id = $2`
	if err := pgxscan.Get(ctx, r.db, &q, query, userID, questID); err != nil {
		return nil, notFoundOr("get user quest", "quest", questID, err)
	}
	return &q, nil
}

// IsCompleted reports whether the user completed the quest
func (r *UserQuestRepository) IsCompleted(ctx context.Context, userID, questID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM user_quests WHERE user_id = $1 AND quest_id = $2)`
	if err := r.db.QueryRow(ctx, query, userID, questID).Scan(&exists); err != nil {
		return false, mapPgError("check quest completion", err)
	}
	return exists, nil
}

// ListByUser returns a user's completions, most recent first
func (r *UserQuestRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserQuest, error) {
	var list []*models.UserQuest
	query := `SELECT ` + userQuestColumns + ` FROM user_quests WHERE user_id = $1 ORDER BY completed_at DESC`
	if err := pgxscan.Select(ctx, r.db, &list, query, userID); err != nil {
		return nil, mapPgError("list user quests", err)
	}
	return list, nil
}

// CountByUser counts a user's completions
func (r *UserQuestRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_quests WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, mapPgError("count user quests", err)
	}
	return count, nil
}

// QuestIDsByUser returns the identifiers of every quest the user completed
func (r *UserQuestRepository) QuestIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `SELECT quest_id FROM user_quests WHERE user_id = $1 ORDER BY quest_id`
	if err := pgxscan.Select(ctx, r.db, &ids, query, userID); err != nil {
		return nil, mapPgError("list completed quest ids", err)
	}
	return ids, nil
}

// Delete removes a completion
func (r *UserQuestRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM user_quests WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete user quest", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user quest", id)
	}
	return nil
}

// DeleteByUser removes every completion of a user and returns how many were removed
func (r *UserQuestRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM user_quests WHERE user_id = $1`, userID)
	if err != nil {
		return 0, mapPgError("reset user quests", err)
	}
	return result.RowsAffected(), nil
}
