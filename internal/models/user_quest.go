package models

import "time"

// UserQuest records a completed micro-quest
type UserQuest struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	QuestID     string    `json:"questId" db:"quest_id"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"`
}
