package service

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/validation"
)

// GoalService manages weekly application and outreach targets
type GoalService struct {
	goalRepo GoalRepository
	clock    Clock
}

// NewGoalService creates a new goal service
func NewGoalService(goalRepo GoalRepository, clock Clock) *GoalService {
	return &GoalService{goalRepo: goalRepo, clock: clock}
}

// CreateGoalInput represents input for setting a week's targets.
// Nil targets use the defaults; a nil week means the current one.
type CreateGoalInput struct {
	UserID           string     `json:"userId" validate:"required"`
	ApplicationsGoal *int       `json:"applicationsGoal,omitempty"`
	OutreachGoal     *int       `json:"outreachGoal,omitempty"`
	WeekStart        *time.Time `json:"weekStart,omitempty"`
}

func validateTargets(applications, outreach *int) error {
	if applications != nil && *applications <= 0 {
		return apperrors.NewValidationError("Applications goal must be a positive integer")
	}
	if outreach != nil && *outreach <= 0 {
		return apperrors.NewValidationError("Outreach goal must be a positive integer")
	}
	return nil
}

func duplicateGoal(weekStart time.Time) error {
	return apperrors.NewConflictError(fmt.Sprintf("Goal already exists for week starting %s", weekStart.Format(time.DateOnly)))
}

// Create sets targets for the Monday-aligned week containing WeekStart
func (s *GoalService) Create(ctx context.Context, input *CreateGoalInput) (*models.Goal, error) {
	if err := validateTargets(input.ApplicationsGoal, input.OutreachGoal); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	day := s.clock.today()
	if input.WeekStart != nil {
		day = *input.WeekStart
	}
	weekStart := models.WeekStart(day)

	if _, err := s.goalRepo.GetByWeek(ctx, input.UserID, weekStart); err == nil {
		return nil, duplicateGoal(weekStart)
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	goal := &models.Goal{
		UserID:           input.UserID,
		WeekStart:        weekStart,
		ApplicationsGoal: models.DefaultApplicationsGoal,
		OutreachGoal:     models.DefaultOutreachGoal,
	}
	if input.ApplicationsGoal != nil {
		goal.ApplicationsGoal = *input.ApplicationsGoal
	}
	if input.OutreachGoal != nil {
		goal.OutreachGoal = *input.OutreachGoal
	}

	if err := s.goalRepo.Create(ctx, goal); err != nil {
		if apperrors.IsConflict(err) {
			return nil, duplicateGoal(weekStart)
		}
		return nil, err
	}
	return goal, nil
}

// GetByID retrieves a goal
func (s *GoalService) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	return s.goalRepo.GetByID(ctx, id)
}

// FindByWeek returns the user's goal for the week containing day
func (s *GoalService) FindByWeek(ctx context.Context, userID string, day time.Time) (*models.Goal, error) {
	return s.goalRepo.GetByWeek(ctx, userID, day)
}

// CurrentWeek returns the user's goal for this week
func (s *GoalService) CurrentWeek(ctx context.Context, userID string) (*models.Goal, error) {
	return s.goalRepo.GetByWeek(ctx, userID, s.clock.today())
}

// GetOrCreateCurrentWeek returns this week's goal, creating one with default targets when missing
func (s *GoalService) GetOrCreateCurrentWeek(ctx context.Context, userID string) (*models.Goal, error) {
	return weekGoal(ctx, s.goalRepo, userID, s.clock.today())
}

// weekGoal gets or creates the default goal for the week containing today.
// The insert never raises a unique violation, so it is safe inside a transaction.
func weekGoal(ctx context.Context, goals GoalRepository, userID string, today time.Time) (*models.Goal, error) {
	goal, err := goals.GetByWeek(ctx, userID, today)
	if err == nil {
		return goal, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	return goals.GetOrCreateForWeek(ctx, &models.Goal{
		UserID:           userID,
		WeekStart:        models.WeekStart(today),
		ApplicationsGoal: models.DefaultApplicationsGoal,
		OutreachGoal:     models.DefaultOutreachGoal,
	})
}

// ListForUser returns a user's goals, latest week first. A non-positive limit returns all.
func (s *GoalService) ListForUser(ctx context.Context, userID string, limit int) ([]*models.Goal, error) {
	return s.goalRepo.ListByUser(ctx, userID, limit)
}

// UpdateTargets changes the supplied targets
func (s *GoalService) UpdateTargets(ctx context.Context, id string, applications, outreach *int) (*models.Goal, error) {
	if err := validateTargets(applications, outreach); err != nil {
		return nil, err
	}
	goal, err := s.goalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if applications != nil {
		goal.ApplicationsGoal = *applications
	}
	if outreach != nil {
		goal.OutreachGoal = *outreach
	}
	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func incrementBy(count int) int {
	if count <= 0 {
		return 1
	}
	return count
}

// IncrementApplications adds count, at least 1, to the applications counter
func (s *GoalService) IncrementApplications(ctx context.Context, id string, count int) (*models.Goal, error) {
	return s.goalRepo.IncrementApplications(ctx, id, incrementBy(count))
}

// IncrementOutreach adds count, at least 1, to the outreach counter
func (s *GoalService) IncrementOutreach(ctx context.Context, id string, count int) (*models.Goal, error) {
	return s.goalRepo.IncrementOutreach(ctx, id, incrementBy(count))
}

// ResetProgress zeroes both counters
func (s *GoalService) ResetProgress(ctx context.Context, id string) (*models.Goal, error) {
	return s.goalRepo.ResetProgress(ctx, id)
}

// Delete removes a goal
func (s *GoalService) Delete(ctx context.Context, id string) error {
	return s.goalRepo.Delete(ctx, id)
}

// Progress computes the progress view of a goal as of today
func (s *GoalService) Progress(ctx context.Context, id string) (*models.GoalProgress, error) {
	goal, err := s.goalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return goal.Progress(s.clock.today()), nil
}
