package service

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
	"github.com/jobbuddy/internal/types"
	"github.com/jobbuddy/internal/validation"
)

// NotificationService manages in-app notifications
type NotificationService struct {
	notificationRepo NotificationRepository
	applicationRepo  ApplicationRepository
	outreachRepo     OutreachRepository
	goalRepo         GoalRepository
	questRepo        UserQuestRepository
	cache            Cache
	clock            Clock
}

// NewNotificationService creates a new notification service. cache may be nil.
func NewNotificationService(store *Store, cache Cache, clock Clock) *NotificationService {
	return &NotificationService{
		notificationRepo: store.Notifications,
		applicationRepo:  store.Applications,
		outreachRepo:     store.Outreach,
		goalRepo:         store.Goals,
		questRepo:        store.Quests,
		cache:            cache,
		clock:            clock,
	}
}

// CreateNotificationInput represents input for creating a notification
type CreateNotificationInput struct {
	UserID  string                 `json:"userId" validate:"required"`
	Type    types.NotificationType `json:"type"`
	Title   string                 `json:"title" validate:"max=255"`
	Message string                 `json:"message"`
	Related types.RelatedRef       `json:"-"`
}

// NotificationLabel renders a notification type for display, e.g. "Follow Up"
func NotificationLabel(t types.NotificationType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

// newNotification validates input and builds the notification to insert
func newNotification(input *CreateNotificationInput) (*models.Notification, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.NewValidationError("Invalid notification type. Must be one of: " + types.JoinValues(types.NotificationTypes))
	}
	if len([]rune(strings.TrimSpace(input.Title))) < 3 {
		return nil, apperrors.NewValidationError("Title must be at least 3 characters long")
	}
	if len([]rune(strings.TrimSpace(input.Message))) < 10 {
		return nil, apperrors.NewValidationError("Message must be at least 10 characters long")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	return &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   strings.TrimSpace(input.Title),
		Message: strings.TrimSpace(input.Message),
		Related: input.Related,
	}, nil
}

// Create stores an unread notification
func (s *NotificationService) Create(ctx context.Context, input *CreateNotificationInput) (*models.Notification, error) {
	n, err := newNotification(input)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.invalidate(ctx, n.UserID)
	return n, nil
}

// GetByID retrieves a notification
func (s *NotificationService) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	return s.notificationRepo.GetByID(ctx, id)
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
}

// ListByType returns a user's notifications of one type, newest first
func (s *NotificationService) ListByType(ctx context.Context, userID string, typ types.NotificationType) ([]*models.Notification, error) {
	if !typ.IsValid() {
		return nil, apperrors.NewValidationError("Invalid notification type. Must be one of: " + types.JoinValues(types.NotificationTypes))
	}
	return s.notificationRepo.ListByType(ctx, userID, typ)
}

// ListUnemailed returns notifications not yet emailed, oldest first
func (s *NotificationService) ListUnemailed(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.notificationRepo.ListUnemailed(ctx, userID)
}

// UnreadCount returns how many notifications the user has not read
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	key := storage.UnreadCountKey(userID)

	var count int
	if cacheGet(ctx, s.cache, key, &count) {
		return count, nil
	}

	count, err := s.notificationRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	cacheSet(ctx, s.cache, key, count)
	return count, nil
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	return s.setRead(ctx, id, true)
}

// MarkUnread marks one notification as unread
func (s *NotificationService) MarkUnread(ctx context.Context, id string) (*models.Notification, error) {
	return s.setRead(ctx, id, false)
}

func (s *NotificationService) setRead(ctx context.Context, id string, read bool) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.SetRead(ctx, id, read); err != nil {
		return nil, err
	}
	n.IsRead = read
	s.invalidate(ctx, n.UserID)
	return n, nil
}

// MarkEmailed records that a notification was delivered by email
func (s *NotificationService) MarkEmailed(ctx context.Context, id string) error {
	return s.notificationRepo.MarkEmailed(ctx, id)
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return count, nil
}

// Delete removes a notification
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, n.UserID)
	return nil
}

// DeleteOlderThan removes a user's notifications older than days, 30 when days is not positive
func (s *NotificationService) DeleteOlderThan(ctx context.Context, userID string, days int) (int64, error) {
	if days <= 0 {
		days = models.DefaultNotificationRetentionDays
	}
	cutoff := s.clock.now().AddDate(0, 0, -days)
	count, err := s.notificationRepo.DeleteOlderThan(ctx, userID, cutoff)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"userId":  userID,
		"days":    days,
		"deleted": count,
	}).Info("old notifications deleted")
	return count, nil
}

// PurgeOlderThan removes every user's notifications older than days, 30 when days is not positive
func (s *NotificationService) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = models.DefaultNotificationRetentionDays
	}
	return s.notificationRepo.DeleteAllOlderThan(ctx, s.clock.now().AddDate(0, 0, -days))
}

// Related resolves the entity a notification refers to.
// Notifications without a reference return nil. A quest reference resolves to the
// user's completion record and is not found while the quest is still open.
func (s *NotificationService) Related(ctx context.Context, id string) (*models.RelatedEntity, error) {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch ref := n.Related.(type) {
	case nil:
		return nil, nil
	case types.ApplicationRef:
		app, err := s.applicationRepo.GetByID(ctx, ref.ApplicationID)
		if err != nil {
			return nil, err
		}
		return &models.RelatedEntity{Application: app}, nil
	case types.OutreachRef:
		o, err := s.outreachRepo.GetByID(ctx, ref.OutreachID)
		if err != nil {
			return nil, err
		}
		return &models.RelatedEntity{Outreach: o}, nil
	case types.GoalRef:
		goal, err := s.goalRepo.GetByID(ctx, ref.GoalID)
		if err != nil {
			return nil, err
		}
		return &models.RelatedEntity{Goal: goal}, nil
	case types.QuestRef:
		quest, err := s.questRepo.GetByQuestID(ctx, n.UserID, ref.QuestID)
		if err != nil {
			return nil, err
		}
		return &models.RelatedEntity{Quest: quest}, nil
	default:
		return nil, apperrors.NewInternalError("unknown related reference", nil)
	}
}

func (s *NotificationService) invalidate(ctx context.Context, userID string) {
	cacheInvalidate(ctx, s.cache, storage.UnreadCountKey(userID))
}
