package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
	"github.com/jobbuddy/internal/types"
)

// ActivityService logs job-search activity together with its side effects:
// weekly goal counters, streak points and notifications. Each call is one unit of work.
type ActivityService struct {
	uow   UnitOfWork
	cache Cache
	clock Clock
}

// NewActivityService creates a new activity service. cache may be nil.
func NewActivityService(uow UnitOfWork, cache Cache, clock Clock) *ActivityService {
	return &ActivityService{uow: uow, cache: cache, clock: clock}
}

// LogOptions controls the optional side effects of LogOutreach
type LogOptions struct {
	// FollowUpDays schedules a follow-up that many days after today. 0 schedules none.
	FollowUpDays int
	// Notify inserts a follow_up notification for the scheduled follow-up
	Notify bool
	// Points awarded to the streak, 10 when not positive
	Points int
}

// ApplicationResult is what LogApplication changed
type ApplicationResult struct {
	Application *models.Application  `json:"application"`
	Goal        *models.Goal         `json:"goal,omitempty"`
	Streak      *models.Streak       `json:"streak,omitempty"`
	Motivation  *models.Notification `json:"motivation,omitempty"`
}

// OutreachResult is what LogOutreach changed
type OutreachResult struct {
	Outreach     *models.Outreach     `json:"outreach"`
	Goal         *models.Goal         `json:"goal"`
	Streak       *models.Streak       `json:"streak"`
	Notification *models.Notification `json:"notification,omitempty"`
	Motivation   *models.Notification `json:"motivation,omitempty"`
}

// QuestResult is what CompleteQuest changed
type QuestResult struct {
	Quest  *models.UserQuest `json:"quest"`
	Streak *models.Streak    `json:"streak"`
}

type goalMetric int

const (
	metricApplications goalMetric = iota
	metricOutreach
)

// bumpGoal increments one counter of this week's goal. When the bump completes the goal,
// a motivation notification referencing it is inserted with the same store.
func bumpGoal(ctx context.Context, store *Store, userID string, metric goalMetric, today time.Time) (*models.Goal, *models.Notification, error) {
	goal, err := weekGoal(ctx, store.Goals, userID, today)
	if err != nil {
		return nil, nil, err
	}
	wasComplete := goal.IsComplete()

	var updated *models.Goal
	switch metric {
	case metricApplications:
		updated, err = store.Goals.IncrementApplications(ctx, goal.ID, 1)
	default:
		updated, err = store.Goals.IncrementOutreach(ctx, goal.ID, 1)
	}
	if err != nil {
		return nil, nil, err
	}

	if wasComplete || !updated.IsComplete() {
		return updated, nil, nil
	}

	n, err := newNotification(&CreateNotificationInput{
		UserID:  userID,
		Type:    types.NotificationMotivation,
		Title:   "Weekly goal reached!",
		Message: fmt.Sprintf("You hit your application and outreach targets for the week of %s. Keep the momentum going!", updated.WeekStart.Format(time.DateOnly)),
		Related: types.GoalRef{GoalID: updated.ID},
	})
	if err != nil {
		return nil, nil, err
	}
	if err := store.Notifications.Create(ctx, n); err != nil {
		return nil, nil, err
	}
	return updated, n, nil
}

// LogApplication creates an application. An Applied application also counts toward
// this week's goal and the user's streak.
func (s *ActivityService) LogApplication(ctx context.Context, input *CreateApplicationInput) (*ApplicationResult, error) {
	today := s.clock.today()
	app, err := newApplication(input, today)
	if err != nil {
		return nil, err
	}

	result := &ApplicationResult{Application: app}
	err = s.uow.Do(ctx, func(ctx context.Context, store *Store) error {
		if err := store.Applications.Create(ctx, app); err != nil {
			return err
		}
		if app.Status != types.ApplicationApplied {
			return nil
		}

		goal, n, err := bumpGoal(ctx, store, app.UserID, metricApplications, today)
		if err != nil {
			return err
		}
		result.Goal = goal
		result.Motivation = n

		result.Streak, err = recordActivity(ctx, store.Streaks, app.UserID, models.DefaultActivityPoints, today)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Streak != nil {
		s.invalidate(ctx, app.UserID, result.Motivation != nil)
	}
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"userId":        app.UserID,
		"applicationId": app.ID,
		"status":        app.Status,
	}).Info("application logged")
	return result, nil
}

// LogOutreach creates an outreach message, counts it toward this week's goal and the streak,
// and optionally schedules a follow-up with a reminder notification.
func (s *ActivityService) LogOutreach(ctx context.Context, input *CreateOutreachInput, opts LogOptions) (*OutreachResult, error) {
	today := s.clock.today()
	o, err := newOutreach(input, today)
	if err != nil {
		return nil, err
	}
	if opts.FollowUpDays > 0 {
		d := followUpAfter(today, opts.FollowUpDays)
		o.FollowUpDate = &d
	}

	var reminder *models.Notification
	if opts.Notify && o.FollowUpDate != nil {
		reminder, err = newNotification(&CreateNotificationInput{
			UserID:  o.UserID,
			Type:    types.NotificationFollowUp,
			Title:   "Follow-up scheduled",
			Message: fmt.Sprintf("Remember to follow up on your %s message on %s.", o.Channel, o.FollowUpDate.Format(time.DateOnly)),
		})
		if err != nil {
			return nil, err
		}
	}

	result := &OutreachResult{Outreach: o}
	err = s.uow.Do(ctx, func(ctx context.Context, store *Store) error {
		if err := store.Outreach.Create(ctx, o); err != nil {
			return err
		}

		goal, n, err := bumpGoal(ctx, store, o.UserID, metricOutreach, today)
		if err != nil {
			return err
		}
		result.Goal = goal
		result.Motivation = n

		result.Streak, err = recordActivity(ctx, store.Streaks, o.UserID, activityPoints(opts.Points), today)
		if err != nil {
			return err
		}

		if reminder != nil {
			reminder.Related = types.OutreachRef{OutreachID: o.ID}
			if err := store.Notifications.Create(ctx, reminder); err != nil {
				return err
			}
			result.Notification = reminder
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, o.UserID, result.Notification != nil || result.Motivation != nil)
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"userId":     o.UserID,
		"outreachId": o.ID,
		"channel":    o.Channel,
	}).Info("outreach logged")
	return result, nil
}

// CompleteQuest records a finished micro-quest and awards points without counting the day as active
func (s *ActivityService) CompleteQuest(ctx context.Context, userID, questID string, points int) (*QuestResult, error) {
	result := &QuestResult{}
	err := s.uow.Do(ctx, func(ctx context.Context, store *Store) error {
		quest, err := newQuestCompletion(ctx, store.Quests, userID, questID)
		if err != nil {
			return err
		}
		if err := store.Quests.Create(ctx, quest); err != nil {
			return err
		}
		result.Quest = quest

		if _, err := store.Streaks.GetOrCreate(ctx, userID); err != nil {
			return err
		}
		result.Streak, err = store.Streaks.AddPoints(ctx, userID, activityPoints(points))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID, false)
	return result, nil
}

func (s *ActivityService) invalidate(ctx context.Context, userID string, notifications bool) {
	keys := []string{storage.StreakSummaryKey(userID)}
	if notifications {
		keys = append(keys, storage.UnreadCountKey(userID))
	}
	cacheInvalidate(ctx, s.cache, keys...)
}
