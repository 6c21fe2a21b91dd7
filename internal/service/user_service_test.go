package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
	"github.com/jobbuddy/internal/types"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		message  string
	}{
		{"valid", "Secret1!x", ""},
		{"too short", "Ab1!", "Password must be at least 8 characters long"},
		{"no uppercase", "secret1!x", "Password must contain at least one uppercase letter"},
		{"no lowercase", "SECRET1!X", "Password must contain at least one lowercase letter"},
		{"no digit", "Secret!!x", "Password must contain at least one number"},
		{"no special", "Secret12x", "Password must contain at least one special character"},
		{"length checked first", "abc", "Password must be at least 8 characters long"},
		{"length counts characters not bytes", "Abé1!éé", "Password must be at least 8 characters long"},
		{"non-ASCII uppercase does not count", "abcdefÉ1!x", "Password must contain at least one uppercase letter"},
		{"non-ASCII digit does not count", "Secret١!x", "Password must contain at least one number"},
		{"multi-byte characters accepted", "Sécrét1!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			requireAppError(t, err, apperrors.CodeValidation, tt.message)
		})
	}
}

func TestValidatePassword_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("strings shorter than the minimum are always rejected", prop.ForAll(
		func(s string) bool {
			if utf8.RuneCountInString(s) >= MinPasswordLength {
				return true
			}
			return ValidatePassword(s) != nil
		},
		gen.AlphaString(),
	))

	properties.Property("adding every character class to a long enough base is accepted", prop.ForAll(
		func(base string) bool {
			return ValidatePassword(base+"Aa1!") == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return utf8.RuneCountInString(s) >= MinPasswordLength }),
	))

	properties.TestingRun(t)
}

func newUserService(env *testEnv) *UserService {
	return env.services.Users.WithBcryptCost(bcrypt.MinCost)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	users := newUserService(env)

	user, err := users.Register(ctx, &RegisterInput{Email: "  Ada@Example.COM ", Password: "Secret1!x", Name: " Ada "})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, user.IsActive)
	assert.True(t, user.EmailNotificationsEnabled)
	assert.NotEqual(t, "Secret1!x", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret1!x")))

	streak, err := env.services.Streaks.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, streak.TotalPoints)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := users.Register(ctx, &RegisterInput{Email: "ADA@example.com", Password: "Secret1!x", Name: "Other"})
		requireAppError(t, err, apperrors.CodeConflict, "Email already registered")
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := users.Register(ctx, &RegisterInput{Email: "not-an-email", Password: "Secret1!x", Name: "Bob"})
		requireAppError(t, err, apperrors.CodeValidation, "Invalid email format")
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := users.Register(ctx, &RegisterInput{Email: "bob@example.com", Password: "secret", Name: "Bob"})
		requireAppError(t, err, apperrors.CodeValidation, "Password must be at least 8 characters long")
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := users.Register(ctx, &RegisterInput{Email: "bob@example.com", Password: "Secret1!x", Name: "   "})
		requireAppError(t, err, apperrors.CodeValidation, "")
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	users := newUserService(env)

	registered, err := users.Register(ctx, &RegisterInput{Email: "grace@example.com", Password: "Secret1!x", Name: "Grace"})
	require.NoError(t, err)

	user, err := users.Authenticate(ctx, "GRACE@example.com", "Secret1!x")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.True(t, user.LastLogin.Equal(env.now))

	stored, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	_, err = users.Authenticate(ctx, "grace@example.com", "Wrong1!xx")
	requireAppError(t, err, apperrors.CodeUnauthorized, "Invalid email or password")

	_, err = users.Authenticate(ctx, "nobody@example.com", "Secret1!x")
	requireAppError(t, err, apperrors.CodeUnauthorized, "Invalid email or password")

	_, err = users.SetActive(ctx, registered.ID, false)
	require.NoError(t, err)
	_, err = users.Authenticate(ctx, "grace@example.com", "Secret1!x")
	requireAppError(t, err, apperrors.CodeUnauthorized, "Account is inactive")
}

func TestUserService_Profile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	users := newUserService(env)

	user, err := users.Register(ctx, &RegisterInput{Email: "linus@example.com", Password: "Secret1!x", Name: "Linus"})
	require.NoError(t, err)

	updated, err := users.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		Name:                    ptr("Linus T"),
		NotificationPreferences: map[string]interface{}{"digest": "weekly"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Linus T", updated.Name)
	assert.Equal(t, "weekly", updated.NotificationPreferences["digest"])

	updated, err = users.SetEmailNotifications(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.EmailNotificationsEnabled)

	_, err = users.UpdateProfile(ctx, "missing", &UpdateProfileInput{Name: ptr("x")})
	assert.True(t, apperrors.IsNotFound(err))

	active, err := users.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestUserService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	users := newUserService(env)

	user, err := users.Register(ctx, &RegisterInput{Email: "del@example.com", Password: "Secret1!x", Name: "Del"})
	require.NoError(t, err)
	company := env.company(ctx, user.ID, "Acme")
	_, err = env.services.Applications.Create(ctx, &CreateApplicationInput{UserID: user.ID, CompanyID: company.ID, JobTitle: "Engineer"})
	require.NoError(t, err)

	env.cache.values[storage.StreakSummaryKey(user.ID)] = &models.StreakSummary{}
	env.cache.values[storage.UnreadCountKey(user.ID)] = 2

	require.NoError(t, users.Delete(ctx, user.ID))
	assert.False(t, env.cache.has(storage.StreakSummaryKey(user.ID)))
	assert.False(t, env.cache.has(storage.UnreadCountKey(user.ID)))

	_, err = users.GetByID(ctx, user.ID)
	assert.True(t, apperrors.IsNotFound(err))
	apps, err := env.services.Applications.ListForUser(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, apps)
	_, err = env.services.Companies.GetByID(ctx, company.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestOnboardingService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	onboarding := env.services.Onboarding
	user := env.user(ctx, "ob@example.com")

	_, err := onboarding.Create(ctx, &CreateOnboardingInput{UserID: user.ID, CurrentFeeling: "Meh", DreamMilestone: "Land a backend role"})
	requireAppError(t, err, apperrors.CodeValidation, "")
	assert.True(t, strings.HasPrefix(err.(*apperrors.CategorizedError).Message, "Invalid feeling. Must be one of: "))

	_, err = onboarding.Create(ctx, &CreateOnboardingInput{UserID: user.ID, CurrentFeeling: types.FeelingExcited, DreamMilestone: "  short  "})
	requireAppError(t, err, apperrors.CodeValidation, "Dream milestone must be at least 10 characters long")

	data, err := onboarding.Create(ctx, &CreateOnboardingInput{UserID: user.ID, CurrentFeeling: types.FeelingExcited, DreamMilestone: "Land a backend role"})
	require.NoError(t, err)
	assert.Equal(t, types.FeelingExcited, data.CurrentFeeling)

	_, err = onboarding.Create(ctx, &CreateOnboardingInput{UserID: user.ID, CurrentFeeling: types.FeelingFrustrated, DreamMilestone: "Land a backend role"})
	requireAppError(t, err, apperrors.CodeConflict, "Onboarding data already exists for this user")

	feeling := types.FeelingJustStarting
	updated, err := onboarding.Update(ctx, data.ID, &UpdateOnboardingInput{CurrentFeeling: &feeling})
	require.NoError(t, err)
	assert.Equal(t, types.FeelingJustStarting, updated.CurrentFeeling)
	assert.Equal(t, "Land a backend role", updated.DreamMilestone)

	fromUser, err := env.services.Users.GetOnboarding(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, data.ID, fromUser.ID)

	require.NoError(t, onboarding.Delete(ctx, data.ID))
	_, err = onboarding.GetByUserID(ctx, user.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
