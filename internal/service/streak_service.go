package service

import (
	"context"
	"time"

	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
)

// StreakService tracks daily activity streaks, points and levels
type StreakService struct {
	streakRepo StreakRepository
	uow        UnitOfWork
	cache      Cache
	clock      Clock
}

// NewStreakService creates a new streak service. cache may be nil.
func NewStreakService(streakRepo StreakRepository, uow UnitOfWork, cache Cache, clock Clock) *StreakService {
	return &StreakService{
		streakRepo: streakRepo,
		uow:        uow,
		cache:      cache,
		clock:      clock,
	}
}

func activityPoints(points int) int {
	if points <= 0 {
		return models.DefaultActivityPoints
	}
	return points
}

// recordActivity applies one activity on today to the user's locked streak and adds points
func recordActivity(ctx context.Context, streaks StreakRepository, userID string, points int, today time.Time) (*models.Streak, error) {
	if _, err := streaks.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	streak, err := streaks.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := models.AdvanceStreak(streak.State(), today)
	streak.CurrentStreak = next.CurrentStreak
	streak.LongestStreak = next.LongestStreak
	streak.LastActivityDate = next.LastActivityDate
	streak.TotalPoints += points

	if err := streaks.Save(ctx, streak); err != nil {
		return nil, err
	}
	return streak, nil
}

// GetByUserID retrieves a user's streak
func (s *StreakService) GetByUserID(ctx context.Context, userID string) (*models.Streak, error) {
	return s.streakRepo.GetByUserID(ctx, userID)
}

// GetOrCreate returns the user's streak, creating an empty one when missing
func (s *StreakService) GetOrCreate(ctx context.Context, userID string) (*models.Streak, error) {
	return s.streakRepo.GetOrCreate(ctx, userID)
}

// RecordActivity counts today as active and awards points, 10 when points is not positive
func (s *StreakService) RecordActivity(ctx context.Context, userID string, points int) (*models.Streak, error) {
	var streak *models.Streak
	err := s.uow.Do(ctx, func(ctx context.Context, store *Store) error {
		var err error
		streak, err = recordActivity(ctx, store.Streaks, userID, activityPoints(points), s.clock.today())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"userId":        userID,
		"currentStreak": streak.CurrentStreak,
		"totalPoints":   streak.TotalPoints,
	}).Debug("activity recorded")
	return streak, nil
}

// AddPoints awards points without counting the day as active
func (s *StreakService) AddPoints(ctx context.Context, userID string, points int) (*models.Streak, error) {
	if _, err := s.streakRepo.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	streak, err := s.streakRepo.AddPoints(ctx, userID, points)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return streak, nil
}

// Reset sets the current streak to 0, keeping the longest streak and points
func (s *StreakService) Reset(ctx context.Context, userID string) (*models.Streak, error) {
	streak, err := s.streakRepo.Reset(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return streak, nil
}

// Summary returns the computed streak view, served from the cache when present
func (s *StreakService) Summary(ctx context.Context, userID string) (*models.StreakSummary, error) {
	key := storage.StreakSummaryKey(userID)

	var cached models.StreakSummary
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	streak, err := s.streakRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := streak.Summary(s.clock.today())
	cacheSet(ctx, s.cache, key, summary)
	return summary, nil
}

func (s *StreakService) invalidate(ctx context.Context, userID string) {
	cacheInvalidate(ctx, s.cache, storage.StreakSummaryKey(userID))
}
