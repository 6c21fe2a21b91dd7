// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/ratelimit"
	"github.com/jobbuddy/internal/service"
	"github.com/jobbuddy/internal/types"
)

// Service interfaces for dependency injection and testing

// UserServiceInterface defines the interface for account operations
type UserServiceInterface interface {
	Register(ctx context.Context, input *service.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, input *service.UpdateProfileInput) (*models.User, error)
	SetEmailNotifications(ctx context.Context, id string, enabled bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// OnboardingServiceInterface defines the interface for onboarding operations
type OnboardingServiceInterface interface {
	Create(ctx context.Context, input *service.CreateOnboardingInput) (*models.OnboardingData, error)
	GetByUserID(ctx context.Context, userID string) (*models.OnboardingData, error)
	Update(ctx context.Context, id string, input *service.UpdateOnboardingInput) (*models.OnboardingData, error)
}

// CompanyServiceInterface defines the interface for company operations
type CompanyServiceInterface interface {
	Create(ctx context.Context, input *service.CreateCompanyInput) (*models.Company, error)
	GetByID(ctx context.Context, id string) (*models.Company, error)
	ListForUser(ctx context.Context, userID, industry string) ([]*models.Company, error)
	Search(ctx context.Context, userID, query string) ([]*models.Company, error)
	Update(ctx context.Context, id string, input *service.UpdateCompanyInput) (*models.Company, error)
	Delete(ctx context.Context, id string) error
	Contacts(ctx context.Context, id string) ([]*models.Contact, error)
	Applications(ctx context.Context, id string) ([]*models.Application, error)
	Outreach(ctx context.Context, id string) ([]*models.Outreach, error)
	Stats(ctx context.Context, id string) (*models.CompanyStats, error)
}

// ContactServiceInterface defines the interface for contact operations
type ContactServiceInterface interface {
	Create(ctx context.Context, input *service.CreateContactInput) (*models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Contact, error)
	Search(ctx context.Context, userID, query string) ([]*models.Contact, error)
	Update(ctx context.Context, id string, input *service.UpdateContactInput) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	Company(ctx context.Context, contactID string) (*models.Company, error)
	Outreach(ctx context.Context, contactID string) ([]*models.Outreach, error)
}

// ApplicationServiceInterface defines the interface for application operations
type ApplicationServiceInterface interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListForUser(ctx context.Context, userID string, status types.ApplicationStatus) ([]*models.Application, error)
	ListDetailed(ctx context.Context, userID string) ([]*models.ApplicationDetail, error)
	Search(ctx context.Context, userID, query string) ([]*models.ApplicationDetail, error)
	Update(ctx context.Context, id string, input *service.UpdateApplicationInput) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status types.ApplicationStatus) (*models.Application, error)
	Delete(ctx context.Context, id string) error
	Outreach(ctx context.Context, id string) ([]*models.Outreach, error)
	CVAnalyses(ctx context.Context, id string) ([]*models.CVAnalysis, error)
	NeedingFollowUp(ctx context.Context, userID string, threshold int) ([]*models.Application, error)
}

// OutreachServiceInterface defines the interface for outreach operations
type OutreachServiceInterface interface {
	GetByID(ctx context.Context, id string) (*models.Outreach, error)
	ListForUser(ctx context.Context, userID string, status types.OutreachStatus) ([]*models.Outreach, error)
	PendingFollowUps(ctx context.Context, userID string) ([]*models.Outreach, error)
	Update(ctx context.Context, id string, input *service.UpdateOutreachInput) (*models.Outreach, error)
	MarkResponded(ctx context.Context, id string) (*models.Outreach, error)
	MarkNoResponse(ctx context.Context, id string) (*models.Outreach, error)
	SetFollowUpDate(ctx context.Context, id string, days int) (*models.Outreach, error)
	Delete(ctx context.Context, id string) error
}

// GoalServiceInterface defines the interface for weekly goal operations
type GoalServiceInterface interface {
	Create(ctx context.Context, input *service.CreateGoalInput) (*models.Goal, error)
	GetByID(ctx context.Context, id string) (*models.Goal, error)
	GetOrCreateCurrentWeek(ctx context.Context, userID string) (*models.Goal, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*models.Goal, error)
	UpdateTargets(ctx context.Context, id string, applications, outreach *int) (*models.Goal, error)
	Progress(ctx context.Context, id string) (*models.GoalProgress, error)
}

// StreakServiceInterface defines the interface for streak operations
type StreakServiceInterface interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Streak, error)
	Summary(ctx context.Context, userID string) (*models.StreakSummary, error)
}

// NotificationServiceInterface defines the interface for notification operations
type NotificationServiceInterface interface {
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	MarkUnread(ctx context.Context, id string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	Related(ctx context.Context, id string) (*models.RelatedEntity, error)
}

// QuestServiceInterface defines the interface for quest operations
type QuestServiceInterface interface {
	ListForUser(ctx context.Context, userID string) ([]*models.UserQuest, error)
}

// CVAnalysisServiceInterface defines the interface for CV analysis operations
type CVAnalysisServiceInterface interface {
	Create(ctx context.Context, input *service.CreateCVAnalysisInput) (*models.CVAnalysis, error)
	GetByID(ctx context.Context, id string) (*models.CVAnalysis, error)
	ListForUser(ctx context.Context, userID string) ([]*models.CVAnalysis, error)
	Delete(ctx context.Context, id string) error
	AverageScore(ctx context.Context, userID string) (float64, bool, error)
}

// ActivityServiceInterface defines the interface for operations that feed goals and streaks
type ActivityServiceInterface interface {
	LogApplication(ctx context.Context, input *service.CreateApplicationInput) (*service.ApplicationResult, error)
	LogOutreach(ctx context.Context, input *service.CreateOutreachInput, opts service.LogOptions) (*service.OutreachResult, error)
	CompleteQuest(ctx context.Context, userID, questID string, points int) (*service.QuestResult, error)
}

// Dependencies holds the services the handlers call
type Dependencies struct {
	Users         UserServiceInterface
	Onboarding    OnboardingServiceInterface
	Companies     CompanyServiceInterface
	Contacts      ContactServiceInterface
	Applications  ApplicationServiceInterface
	Outreach      OutreachServiceInterface
	Goals         GoalServiceInterface
	Streaks       StreakServiceInterface
	Notifications NotificationServiceInterface
	Quests        QuestServiceInterface
	CVAnalyses    CVAnalysisServiceInterface
	Activity      ActivityServiceInterface
}

// DependenciesFromServices exposes a service bundle to the handlers
func DependenciesFromServices(s *service.Services) *Dependencies {
	return &Dependencies{
		Users:         s.Users,
		Onboarding:    s.Onboarding,
		Companies:     s.Companies,
		Contacts:      s.Contacts,
		Applications:  s.Applications,
		Outreach:      s.Outreach,
		Goals:         s.Goals,
		Streaks:       s.Streaks,
		Notifications: s.Notifications,
		Quests:        s.Quests,
		CVAnalyses:    s.CVAnalyses,
		Activity:      s.Activity,
	}
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
	deps       *Dependencies
	logger     *logging.Logger
	config     *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64 // Requests per second per user, 0 disables limiting
	RateLimitBurst  int

	// SharedRateLimit, when set, keeps counters in Redis instead of in process
	SharedRateLimit *ratelimit.WindowLimiter

	// FollowUpThresholdDays is the default age of an unanswered application before it needs a follow-up
	FollowUpThresholdDays int
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, deps *Dependencies, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router: mux.NewRouter(),
		deps:   deps,
		logger: logger,
		config: config,
	}

	s.setupRouter()

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	var rateLimiter Limiter = NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)
	if s.config.SharedRateLimit != nil {
		rateLimiter = NewSharedLimiter(s.config.SharedRateLimit, NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}

	// Set up middleware (order matters!)
	s.router.Use(RequestIDMiddleware(s.logger))
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	// Set up routes
	s.setupRoutes()

	// CORS wraps the router so preflight requests are answered before route matching
	s.handler = CORSMiddleware(s.router)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Account endpoints that run before a user id exists
	v1.HandleFunc("/users", s.handleRegister).Methods("POST")
	v1.HandleFunc("/auth/login", s.handleLogin).Methods("POST")

	api := v1.NewRoute().Subrouter()
	api.Use(RequireUserMiddleware)

	// Account
	api.HandleFunc("/me", s.handleGetMe).Methods("GET")
	api.HandleFunc("/me", s.handleUpdateMe).Methods("PATCH")
	api.HandleFunc("/me", s.handleDeleteMe).Methods("DELETE")
	api.HandleFunc("/me/email-notifications", s.handleSetEmailNotifications).Methods("PUT")
	api.HandleFunc("/onboarding", s.handleGetOnboarding).Methods("GET")
	api.HandleFunc("/onboarding", s.handleCreateOnboarding).Methods("POST")
	api.HandleFunc("/onboarding", s.handleUpdateOnboarding).Methods("PATCH")

	// Companies and contacts
	api.HandleFunc("/companies", s.handleListCompanies).Methods("GET")
	api.HandleFunc("/companies", s.handleCreateCompany).Methods("POST")
	api.HandleFunc("/companies/{id}", s.handleGetCompany).Methods("GET")
	api.HandleFunc("/companies/{id}", s.handleUpdateCompany).Methods("PATCH")
	api.HandleFunc("/companies/{id}", s.handleDeleteCompany).Methods("DELETE")
	api.HandleFunc("/companies/{id}/contacts", s.handleCompanyContacts).Methods("GET")
	api.HandleFunc("/companies/{id}/contacts", s.handleCreateContact).Methods("POST")
	api.HandleFunc("/companies/{id}/applications", s.handleCompanyApplications).Methods("GET")
	api.HandleFunc("/companies/{id}/outreach", s.handleCompanyOutreach).Methods("GET")
	api.HandleFunc("/companies/{id}/stats", s.handleCompanyStats).Methods("GET")
	api.HandleFunc("/contacts", s.handleListContacts).Methods("GET")
	api.HandleFunc("/contacts/{id}", s.handleGetContact).Methods("GET")
	api.HandleFunc("/contacts/{id}", s.handleUpdateContact).Methods("PATCH")
	api.HandleFunc("/contacts/{id}", s.handleDeleteContact).Methods("DELETE")
	api.HandleFunc("/contacts/{id}/outreach", s.handleContactOutreach).Methods("GET")

	// Applications
	api.HandleFunc("/applications", s.handleListApplications).Methods("GET")
	api.HandleFunc("/applications", s.handleCreateApplication).Methods("POST")
	api.HandleFunc("/applications/detailed", s.handleListApplicationsDetailed).Methods("GET")
	api.HandleFunc("/applications/follow-ups", s.handleApplicationFollowUps).Methods("GET")
	api.HandleFunc("/applications/{id}", s.handleGetApplication).Methods("GET")
	api.HandleFunc("/applications/{id}", s.handleUpdateApplication).Methods("PATCH")
	api.HandleFunc("/applications/{id}", s.handleDeleteApplication).Methods("DELETE")
	api.HandleFunc("/applications/{id}/status", s.handleUpdateApplicationStatus).Methods("PUT")
	api.HandleFunc("/applications/{id}/outreach", s.handleApplicationOutreach).Methods("GET")
	api.HandleFunc("/applications/{id}/cv-analyses", s.handleApplicationCVAnalyses).Methods("GET")

	// Outreach
	api.HandleFunc("/outreach", s.handleListOutreach).Methods("GET")
	api.HandleFunc("/outreach", s.handleCreateOutreach).Methods("POST")
	api.HandleFunc("/outreach/pending", s.handlePendingFollowUps).Methods("GET")
	api.HandleFunc("/outreach/{id}", s.handleGetOutreach).Methods("GET")
	api.HandleFunc("/outreach/{id}", s.handleUpdateOutreach).Methods("PATCH")
	api.HandleFunc("/outreach/{id}", s.handleDeleteOutreach).Methods("DELETE")
	api.HandleFunc("/outreach/{id}/responded", s.handleMarkResponded).Methods("POST")
	api.HandleFunc("/outreach/{id}/no-response", s.handleMarkNoResponse).Methods("POST")
	api.HandleFunc("/outreach/{id}/follow-up", s.handleScheduleFollowUp).Methods("POST")

	// Goals, streaks and quests
	api.HandleFunc("/goals", s.handleListGoals).Methods("GET")
	api.HandleFunc("/goals", s.handleCreateGoal).Methods("POST")
	api.HandleFunc("/goals/current", s.handleCurrentGoal).Methods("GET")
	api.HandleFunc("/goals/{id}/progress", s.handleGoalProgress).Methods("GET")
	api.HandleFunc("/goals/{id}/targets", s.handleUpdateGoalTargets).Methods("PUT")
	api.HandleFunc("/streak", s.handleGetStreak).Methods("GET")
	api.HandleFunc("/streak/summary", s.handleStreakSummary).Methods("GET")
	api.HandleFunc("/quests", s.handleListQuests).Methods("GET")
	api.HandleFunc("/quests/{questId}/complete", s.handleCompleteQuest).Methods("POST")

	// Notifications
	api.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	api.HandleFunc("/notifications/unread-count", s.handleUnreadCount).Methods("GET")
	api.HandleFunc("/notifications/read-all", s.handleMarkAllRead).Methods("POST")
	api.HandleFunc("/notifications/{id}/read", s.handleMarkRead).Methods("POST")
	api.HandleFunc("/notifications/{id}/unread", s.handleMarkUnread).Methods("POST")
	api.HandleFunc("/notifications/{id}/related", s.handleNotificationRelated).Methods("GET")
	api.HandleFunc("/notifications/{id}", s.handleDeleteNotification).Methods("DELETE")

	// CV analyses
	api.HandleFunc("/cv-analyses", s.handleListCVAnalyses).Methods("GET")
	api.HandleFunc("/cv-analyses", s.handleCreateCVAnalysis).Methods("POST")
	api.HandleFunc("/cv-analyses/average", s.handleAverageScore).Methods("GET")
	api.HandleFunc("/cv-analyses/{id}", s.handleGetCVAnalysis).Methods("GET")
	api.HandleFunc("/cv-analyses/{id}", s.handleDeleteCVAnalysis).Methods("DELETE")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "jobbuddy",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting API server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
