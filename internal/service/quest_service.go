package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

// MaxQuestIDLength is the longest quest id stored
const MaxQuestIDLength = 50

// QuestService records completed micro-quests
type QuestService struct {
	questRepo UserQuestRepository
}

// NewQuestService creates a new quest service
func NewQuestService(questRepo UserQuestRepository) *QuestService {
	return &QuestService{questRepo: questRepo}
}

// newQuestCompletion validates the quest id and rejects a second completion
func newQuestCompletion(ctx context.Context, quests UserQuestRepository, userID, questID string) (*models.UserQuest, error) {
	questID = strings.TrimSpace(questID)
	switch n := len([]rune(questID)); {
	case n < 2:
		return nil, apperrors.NewValidationError("Quest ID must be at least 2 characters long")
	case n > MaxQuestIDLength:
		return nil, apperrors.NewValidationError(fmt.Sprintf("Quest ID must not exceed %d characters", MaxQuestIDLength))
	}
	done, err := quests.IsCompleted(ctx, userID, questID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, apperrors.NewConflictError(fmt.Sprintf("Quest '%s' already completed by this user", questID))
	}
	return &models.UserQuest{UserID: userID, QuestID: questID}, nil
}

// Complete records that the user finished a quest. Each quest completes once per user.
func (s *QuestService) Complete(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	quest, err := newQuestCompletion(ctx, s.questRepo, userID, questID)
	if err != nil {
		return nil, err
	}
	if err := s.questRepo.Create(ctx, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// GetByID retrieves a completion record
func (s *QuestService) GetByID(ctx context.Context, id string) (*models.UserQuest, error) {
	return s.questRepo.GetByID(ctx, id)
}

// ListForUser returns a user's completions, most recent first
func (s *QuestService) ListForUser(ctx context.Context, userID string) ([]*models.UserQuest, error) {
	return s.questRepo.ListByUser(ctx, userID)
}

// IsCompleted reports whether the user finished questID
func (s *QuestService) IsCompleted(ctx context.Context, userID, questID string) (bool, error) {
	return s.questRepo.IsCompleted(ctx, userID, strings.TrimSpace(questID))
}

// CompletedCount returns how many quests the user finished
func (s *QuestService) CompletedCount(ctx context.Context, userID string) (int, error) {
	return s.questRepo.CountByUser(ctx, userID)
}

// CompletedQuestIDs returns the ids of the quests the user finished
func (s *QuestService) CompletedQuestIDs(ctx context.Context, userID string) ([]string, error) {
	return s.questRepo.QuestIDsByUser(ctx, userID)
}

// Delete removes a completion record
func (s *QuestService) Delete(ctx context.Context, id string) error {
	return s.questRepo.Delete(ctx, id)
}

// ResetForUser removes every completion of the user and returns how many were removed
func (s *QuestService) ResetForUser(ctx context.Context, userID string) (int64, error) {
	return s.questRepo.DeleteByUser(ctx, userID)
}
