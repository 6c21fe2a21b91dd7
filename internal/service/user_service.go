package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/validation"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

// PasswordSpecialCharacters are the characters that satisfy the special character rule
const PasswordSpecialCharacters = `!@#$%^&*(),.?":{}|<>`

const invalidCredentials = "Invalid email or password"

// UserService handles registration, authentication and profile management
type UserService struct {
	userRepo       UserRepository
	onboardingRepo OnboardingRepository
	cache          Cache
	clock          Clock
	bcryptCost     int
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, onboardingRepo OnboardingRepository, cache Cache, clock Clock) *UserService {
	return &UserService{
		userRepo:       userRepo,
		onboardingRepo: onboardingRepo,
		cache:          cache,
		clock:          clock,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost, tests use bcrypt.MinCost
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// RegisterInput represents input for registering a user
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"required,trimmin=1,max=255"`
}

// UpdateProfileInput represents input for updating a user's profile.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name                    *string                `json:"name,omitempty" validate:"omitempty,trimmin=1,max=255"`
	NotificationPreferences map[string]interface{} `json:"notificationPreferences,omitempty"`
}

// ValidatePassword checks the password strength rules in order and reports the first failure.
// Length counts characters, the letter and digit classes are ASCII only.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperrors.NewValidationError("Password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialCharacters, r):
			special = true
		}
	}

	switch {
	case !upper:
		return apperrors.NewValidationError("Password must contain at least one uppercase letter")
	case !lower:
		return apperrors.NewValidationError("Password must contain at least one lowercase letter")
	case !digit:
		return apperrors.NewValidationError("Password must contain at least one number")
	case !special:
		return apperrors.NewValidationError("Password must contain at least one special character")
	}
	return nil
}

// Register validates the input, hashes the password and stores a new active user
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !validation.IsEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format")
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Email:                     email,
		PasswordHash:              string(hash),
		Name:                      strings.TrimSpace(input.Name),
		IsActive:                  true,
		EmailNotificationsEnabled: true,
		NotificationPreferences:   map[string]interface{}{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("userId", user.ID).Info("user registered")
	return user, nil
}

// Authenticate checks credentials and records the login time.
// Unknown emails and wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError(invalidCredentials)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("Account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError(invalidCredentials)
	}

	now := s.clock.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email, ignoring case
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateProfile changes the name and notification preferences
func (s *UserService) UpdateProfile(ctx context.Context, id string, input *UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.NotificationPreferences != nil {
		user.NotificationPreferences = input.NotificationPreferences
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables an account without deleting it
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	return s.mutate(ctx, id, func(u *models.User) { u.IsActive = active })
}

// SetEmailNotifications turns email delivery of notifications on or off
func (s *UserService) SetEmailNotifications(ctx context.Context, id string, enabled bool) (*models.User, error) {
	return s.mutate(ctx, id, func(u *models.User) { u.EmailNotificationsEnabled = enabled })
}

func (s *UserService) mutate(ctx context.Context, id string, fn func(*models.User)) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user and everything the user owns, then drops the user's cached views
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger := logging.FromContext(ctx).WithField("userId", id)
	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, id); err != nil {
			logger.WithError(err).Warn("cache invalidation failed")
		}
	}
	logger.Info("user deleted")
	return nil
}

// ListActive returns every active user
func (s *UserService) ListActive(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListActive(ctx)
}

// GetOnboarding returns the user's onboarding answers
func (s *UserService) GetOnboarding(ctx context.Context, userID string) (*models.OnboardingData, error) {
	return s.onboardingRepo.GetByUserID(ctx, userID)
}
