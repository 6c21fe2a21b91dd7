package api

import (
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/service"
)

// CreateGoalRequest represents the request body for POST /goals
type CreateGoalRequest struct {
	ApplicationsGoal *int  `json:"applicationsGoal,omitempty"`
	OutreachGoal     *int  `json:"outreachGoal,omitempty"`
	WeekStart        *Date `json:"weekStart,omitempty"`
}

// GoalTargetsRequest changes the targets of a goal
type GoalTargetsRequest struct {
	ApplicationsGoal *int `json:"applicationsGoal,omitempty"`
	OutreachGoal     *int `json:"outreachGoal,omitempty"`
}

// CompleteQuestRequest awards points for a quest
type CompleteQuestRequest struct {
	Points int `json:"points,omitempty"`
}

func (s *Server) ownGoal(w http.ResponseWriter, r *http.Request) (*models.Goal, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	goal, err := s.deps.Goals.GetByID(r.Context(), id)
	if err == nil && goal.UserID != userIDFrom(r) {
		err = apperrors.NewNotFoundError("Goal", id)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return goal, true
}

// handleListGoals handles GET /api/v1/goals?limit=
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	goals, err := s.deps.Goals.ListForUser(r.Context(), userIDFrom(r), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}

// handleCreateGoal handles POST /api/v1/goals
func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := s.deps.Goals.Create(r.Context(), &service.CreateGoalInput{
		UserID:           userIDFrom(r),
		ApplicationsGoal: req.ApplicationsGoal,
		OutreachGoal:     req.OutreachGoal,
		WeekStart:        req.WeekStart.timePtr(),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

// handleCurrentGoal handles GET /api/v1/goals/current, creating this week's goal on first access
func (s *Server) handleCurrentGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.deps.Goals.GetOrCreateCurrentWeek(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	progress, err := s.deps.Goals.Progress(r.Context(), goal.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// handleGoalProgress handles GET /api/v1/goals/{id}/progress
func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.ownGoal(w, r)
	if !ok {
		return
	}
	progress, err := s.deps.Goals.Progress(r.Context(), goal.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// handleUpdateGoalTargets handles PUT /api/v1/goals/{id}/targets
func (s *Server) handleUpdateGoalTargets(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.ownGoal(w, r)
	if !ok {
		return
	}
	var req GoalTargetsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Goals.UpdateTargets(r.Context(), goal.ID, req.ApplicationsGoal, req.OutreachGoal)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleGetStreak handles GET /api/v1/streak
func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.deps.Streaks.GetOrCreate(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, streak)
}

// handleStreakSummary handles GET /api/v1/streak/summary
func (s *Server) handleStreakSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Streaks.Summary(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleListQuests handles GET /api/v1/quests
func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.deps.Quests.ListForUser(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quests":    quests,
		"completed": len(quests),
	})
}

// handleCompleteQuest handles POST /api/v1/quests/{questId}/complete
func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	questID := mux.Vars(r)["questId"]
	var req CompleteQuestRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Activity.CompleteQuest(r.Context(), userIDFrom(r), questID, req.Points)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
