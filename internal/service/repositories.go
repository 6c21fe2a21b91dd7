package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
	"github.com/jobbuddy/internal/types"
)

// Repository interfaces for dependency injection

// UserRepository interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// OnboardingRepository interface for onboarding answers
type OnboardingRepository interface {
	Create(ctx context.Context, data *models.OnboardingData) error
	GetByID(ctx context.Context, id string) (*models.OnboardingData, error)
	GetByUserID(ctx context.Context, userID string) (*models.OnboardingData, error)
	ExistsForUser(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, data *models.OnboardingData) error
	Delete(ctx context.Context, id string) error
}

// CompanyRepository interface for company data operations
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	GetByName(ctx context.Context, userID, name string) (*models.Company, error)
	NameExists(ctx context.Context, userID, name, excludeID string) (bool, error)
	ListByUser(ctx context.Context, userID, industry string) ([]*models.Company, error)
	Search(ctx context.Context, userID, term string) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*models.CompanyStats, error)
}

// ContactRepository interface for contact data operations
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	GetByEmail(ctx context.Context, companyID, email string) (*models.Contact, error)
	EmailExists(ctx context.Context, companyID, email, excludeID string) (bool, error)
	ListByCompany(ctx context.Context, companyID string) ([]*models.Contact, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Contact, error)
	Search(ctx context.Context, userID, term string) ([]*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id string) error
}

// ApplicationRepository interface for application data operations
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string, status types.ApplicationStatus) ([]*models.Application, error)
	ListByCompany(ctx context.Context, companyID string) ([]*models.Application, error)
	ListDetailed(ctx context.Context, userID string) ([]*models.ApplicationDetail, error)
	Search(ctx context.Context, userID, term string) ([]*models.ApplicationDetail, error)
	ListAwaitingFollowUp(ctx context.Context, cutoff time.Time) ([]*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id string) error
}

// OutreachRepository interface for outreach data operations
type OutreachRepository interface {
	Create(ctx context.Context, o *models.Outreach) error
	GetByID(ctx context.Context, id string) (*models.Outreach, error)
	ListByUser(ctx context.Context, userID string, status types.OutreachStatus) ([]*models.Outreach, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*models.Outreach, error)
	ListByContact(ctx context.Context, contactID string) ([]*models.Outreach, error)
	ListByCompany(ctx context.Context, companyID string) ([]*models.Outreach, error)
	ListPendingFollowUps(ctx context.Context, userID string, today time.Time) ([]*models.Outreach, error)
	Update(ctx context.Context, o *models.Outreach) error
	Delete(ctx context.Context, id string) error
}

// GoalRepository interface for weekly goal operations
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByID(ctx context.Context, id string) (*models.Goal, error)
	GetByWeek(ctx context.Context, userID string, day time.Time) (*models.Goal, error)
	GetOrCreateForWeek(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Goal, error)
	Update(ctx context.Context, goal *models.Goal) error
	IncrementApplications(ctx context.Context, id string, count int) (*models.Goal, error)
	IncrementOutreach(ctx context.Context, id string, count int) (*models.Goal, error)
	ResetProgress(ctx context.Context, id string) (*models.Goal, error)
	Delete(ctx context.Context, id string) error
}

// StreakRepository interface for streak operations
type StreakRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Streak, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Streak, error)
	GetForUpdate(ctx context.Context, userID string) (*models.Streak, error)
	Save(ctx context.Context, streak *models.Streak) error
	AddPoints(ctx context.Context, userID string, points int) (*models.Streak, error)
	Reset(ctx context.Context, userID string) (*models.Streak, error)
}

// NotificationRepository interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	ListByType(ctx context.Context, userID string, typ types.NotificationType) ([]*models.Notification, error)
	ListUnemailed(ctx context.Context, userID string) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	ExistsForRelated(ctx context.Context, userID string, typ types.NotificationType, ref types.RelatedRef) (bool, error)
	SetRead(ctx context.Context, id string, read bool) error
	MarkEmailed(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error)
	DeleteAllOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserQuestRepository interface for completed micro-quests
type UserQuestRepository interface {
	Create(ctx context.Context, q *models.UserQuest) error
	GetByID(ctx context.Context, id string) (*models.UserQuest, error)
	GetByQuestID(ctx context.Context, userID, questID string) (*models.UserQuest, error)
	IsCompleted(ctx context.Context, userID, questID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.UserQuest, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	QuestIDsByUser(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// CVAnalysisRepository interface for CV analysis operations
type CVAnalysisRepository interface {
	Create(ctx context.Context, a *models.CVAnalysis) error
	GetByID(ctx context.Context, id string) (*models.CVAnalysis, error)
	ListByUser(ctx context.Context, userID string) ([]*models.CVAnalysis, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*models.CVAnalysis, error)
	LatestForApplication(ctx context.Context, applicationID string) (*models.CVAnalysis, error)
	AverageScore(ctx context.Context, userID string) (avg float64, ok bool, err error)
	Delete(ctx context.Context, id string) error
}

// Store groups every repository bound to the same database handle
type Store struct {
	Users         UserRepository
	Onboarding    OnboardingRepository
	Companies     CompanyRepository
	Contacts      ContactRepository
	Applications  ApplicationRepository
	Outreach      OutreachRepository
	Goals         GoalRepository
	Streaks       StreakRepository
	Notifications NotificationRepository
	Quests        UserQuestRepository
	CVAnalyses    CVAnalysisRepository
}

// NewStore binds the Postgres repositories to db, which may be the pool or a transaction
func NewStore(db storage.DBTX) *Store {
	return &Store{
		Users:         storage.NewUserRepository(db),
		Onboarding:    storage.NewOnboardingRepository(db),
		Companies:     storage.NewCompanyRepository(db),
		Contacts:      storage.NewContactRepository(db),
		Applications:  storage.NewApplicationRepository(db),
		Outreach:      storage.NewOutreachRepository(db),
		Goals:         storage.NewGoalRepository(db),
		Streaks:       storage.NewStreakRepository(db),
		Notifications: storage.NewNotificationRepository(db),
		Quests:        storage.NewUserQuestRepository(db),
		CVAnalyses:    storage.NewCVAnalysisRepository(db),
	}
}

// UnitOfWork runs fn against a Store whose writes commit or roll back together
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, store *Store) error) error
}

// PostgresUnitOfWork runs each unit in a database transaction
type PostgresUnitOfWork struct {
	db *storage.PostgresDB
}

// NewPostgresUnitOfWork creates a unit of work over db
func NewPostgresUnitOfWork(db *storage.PostgresDB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise
func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	return u.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, NewStore(tx))
	})
}

// Cache is the subset of storage.CacheService the services use.
// Cache failures never fail a request; they are logged and the database answers.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidateUser(ctx context.Context, userID string) error
}

// cacheGet reads key into dest, treating a nil cache or any cache error as a miss
func cacheGet(ctx context.Context, cache Cache, key string, dest interface{}) bool {
	if cache == nil {
		return false
	}
	found, err := cache.Get(ctx, key, dest)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return found
}

func cacheSet(ctx context.Context, cache Cache, key string, value interface{}) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, key, value); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func cacheInvalidate(ctx context.Context, cache Cache, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, keys...); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}

// Clock returns the current time. Services derive "today" from it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

func (c Clock) today() time.Time {
	if c == nil {
		return models.DateOf(SystemClock())
	}
	return models.DateOf(c())
}

func (c Clock) now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c()
}
