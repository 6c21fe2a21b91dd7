package models

import (
	"time"

	"github.com/jobbuddy/internal/types"
)

// OnboardingData holds the answers a user gave during onboarding
type OnboardingData struct {
	ID             string        `json:"id" db:"id"`
	UserID         string        `json:"userId" db:"user_id"`
	CurrentFeeling types.Feeling `json:"currentFeeling" db:"current_feeling"`
	DreamMilestone string        `json:"dreamMilestone" db:"dream_milestone"`
	CompletedAt    time.Time     `json:"completedAt" db:"completed_at"`
}
