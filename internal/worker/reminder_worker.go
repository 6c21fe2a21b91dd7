// Package worker runs the periodic follow-up reminder job.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/retry"
	"github.com/jobbuddy/internal/service"
	"github.com/jobbuddy/internal/types"
)

// ActiveUsers lists the users reminders are generated for
type ActiveUsers interface {
	ListActive(ctx context.Context) ([]*models.User, error)
}

// PendingOutreach lists outreach whose follow-up date has arrived
type PendingOutreach interface {
	ListPendingFollowUps(ctx context.Context, userID string, today time.Time) ([]*models.Outreach, error)
}

// AwaitingApplications lists Applied applications submitted on or before a cutoff
type AwaitingApplications interface {
	ListAwaitingFollowUp(ctx context.Context, cutoff time.Time) ([]*models.Application, error)
}

// ReminderLookup reports whether a reminder for an entity was already sent
type ReminderLookup interface {
	ExistsForRelated(ctx context.Context, userID string, typ types.NotificationType, ref types.RelatedRef) (bool, error)
}

// Notifier creates and purges notifications
type Notifier interface {
	Create(ctx context.Context, input *service.CreateNotificationInput) (*models.Notification, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// ReminderWorker periodically creates follow_up notifications for due outreach and
// stale applications, and purges old notifications
type ReminderWorker struct {
	users         ActiveUsers
	outreach      PendingOutreach
	applications  AwaitingApplications
	reminders     ReminderLookup
	notifier      Notifier
	clock         service.Clock
	retryConfig   *retry.RetryConfig
	logger        *logging.Logger
	interval      time.Duration
	purgeAfter    int
	followUpAfter int

	running bool
	lastRun time.Time
	mu      sync.RWMutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// ReminderWorkerConfig holds configuration for a reminder worker
type ReminderWorkerConfig struct {
	Users        ActiveUsers
	Outreach     PendingOutreach
	Applications AwaitingApplications
	Reminders    ReminderLookup
	Notifier     Notifier
	Clock        service.Clock
	Logger       *logging.Logger
	Retry        *retry.RetryConfig

	Interval              time.Duration // default: 1 hour
	PurgeAfterDays        int           // default: 30
	FollowUpThresholdDays int           // default: 7
}

// RunResult summarizes one pass
type RunResult struct {
	OutreachReminders    int   `json:"outreachReminders"`
	ApplicationReminders int   `json:"applicationReminders"`
	Skipped              int   `json:"skipped"`
	Failed               int   `json:"failed"`
	Purged               int64 `json:"purged"`
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(cfg *ReminderWorkerConfig) (*ReminderWorker, error) {
	if cfg.Users == nil || cfg.Outreach == nil || cfg.Applications == nil {
		return nil, fmt.Errorf("user, outreach and application sources are required")
	}
	if cfg.Reminders == nil {
		return nil, fmt.Errorf("reminder lookup cannot be nil")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	purgeAfter := cfg.PurgeAfterDays
	if purgeAfter <= 0 {
		purgeAfter = models.DefaultNotificationRetentionDays
	}
	followUpAfter := cfg.FollowUpThresholdDays
	if followUpAfter <= 0 {
		followUpAfter = models.DefaultFollowUpThreshold
	}
	clock := cfg.Clock
	if clock == nil {
		clock = service.SystemClock
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	retryConfig := cfg.Retry
	if retryConfig == nil {
		retryConfig = retry.DefaultRetryConfig()
		retryConfig.MaxAttempts = 3
		retryConfig.ShouldRetry = apperrors.IsRetryable
	}

	return &ReminderWorker{
		users:         cfg.Users,
		outreach:      cfg.Outreach,
		applications:  cfg.Applications,
		reminders:     cfg.Reminders,
		notifier:      cfg.Notifier,
		clock:         clock,
		retryConfig:   retryConfig,
		logger:        logger.WithField("component", "reminder-worker"),
		interval:      interval,
		purgeAfter:    purgeAfter,
		followUpAfter: followUpAfter,
	}, nil
}

// Start runs one pass immediately and then one per interval until Stop or ctx is done
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reminder worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.WithField("interval", w.interval.String()).Info("starting reminder worker")
	go w.loop(logging.WithLogger(ctx, w.logger), stopCh, doneCh)
	return nil
}

// Stop gracefully stops the worker
func (w *ReminderWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("reminder worker is not running")
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info("stopping reminder worker")
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}

	select {
	case <-doneCh:
		w.logger.Info("reminder worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (w *ReminderWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// LastRun returns when the last pass started
func (w *ReminderWorker) LastRun() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastRun
}

// loop clears running before closing doneCh, whichever way it exits
func (w *ReminderWorker) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("context cancelled")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick runs a pass with retries. A pass is idempotent, reminders already sent are skipped.
func (w *ReminderWorker) tick(ctx context.Context) {
	w.mu.Lock()
	w.lastRun = w.clock()
	w.mu.Unlock()

	var result *RunResult
	err := retry.Do(ctx, w.retryConfig, func(ctx context.Context, attempt int) error {
		var err error
		result, err = w.RunOnce(ctx)
		return err
	})
	if err != nil {
		w.logger.WithError(err).Error("reminder pass failed")
		return
	}
	w.logger.WithFields(map[string]interface{}{
		"outreachReminders":    result.OutreachReminders,
		"applicationReminders": result.ApplicationReminders,
		"skipped":              result.Skipped,
		"failed":               result.Failed,
		"purged":               result.Purged,
	}).Info("reminder pass finished")
}

// RunOnce performs a single pass. Listing failures abort the pass, while a failure on one
// reminder is counted and the pass continues.
func (w *ReminderWorker) RunOnce(ctx context.Context) (*RunResult, error) {
	today := models.DateOf(w.clock())
	result := &RunResult{}

	users, err := w.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	for _, u := range users {
		due, err := w.outreach.ListPendingFollowUps(ctx, u.ID, today)
		if err != nil {
			return nil, fmt.Errorf("list pending follow-ups for %s: %w", u.ID, err)
		}
		for _, o := range due {
			w.remind(ctx, result, &result.OutreachReminders, &service.CreateNotificationInput{
				UserID:  o.UserID,
				Type:    types.NotificationFollowUp,
				Title:   "Follow-up due",
				Message: fmt.Sprintf("Your %s message is waiting for a follow-up today.", o.Channel),
				Related: types.OutreachRef{OutreachID: o.ID},
			})
		}
	}

	cutoff := today.AddDate(0, 0, -w.followUpAfter)
	apps, err := w.applications.ListAwaitingFollowUp(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list applications awaiting follow-up: %w", err)
	}
	for _, app := range apps {
		waited := w.followUpAfter
		if app.AppliedDate != nil {
			waited = models.DaysBetween(*app.AppliedDate, today)
		}
		w.remind(ctx, result, &result.ApplicationReminders, &service.CreateNotificationInput{
			UserID:  app.UserID,
			Type:    types.NotificationFollowUp,
			Title:   "Time to follow up",
			Message: fmt.Sprintf("You applied for %s %d days ago without a response. Consider following up.", app.JobTitle, waited),
			Related: types.ApplicationRef{ApplicationID: app.ID},
		})
	}

	result.Purged, err = w.notifier.PurgeOlderThan(ctx, w.purgeAfter)
	if err != nil {
		return nil, fmt.Errorf("purge notifications: %w", err)
	}
	return result, nil
}

// remind creates input unless a follow_up reminder for the same entity already exists
func (w *ReminderWorker) remind(ctx context.Context, result *RunResult, created *int, input *service.CreateNotificationInput) {
	logger := w.logger.WithFields(map[string]interface{}{
		"userId":  input.UserID,
		"related": input.Related.Kind(),
		"id":      input.Related.RefID(),
	})

	exists, err := w.reminders.ExistsForRelated(ctx, input.UserID, input.Type, input.Related)
	if err != nil {
		logger.WithError(err).Warn("reminder lookup failed")
		result.Failed++
		return
	}
	if exists {
		result.Skipped++
		return
	}
	if _, err := w.notifier.Create(ctx, input); err != nil {
		logger.WithError(err).Warn("failed to create reminder")
		result.Failed++
		return
	}
	*created++
}
