package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jobbuddy/internal/config"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/types"
)

// testContext creates a context with timeout for tests
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testPostgresConfig() *config.PostgresConfig {
	return &config.PostgresConfig{
		Host:           testEnv("TEST_POSTGRES_HOST", "localhost"),
		Port:           testEnv("TEST_POSTGRES_PORT", "5432"),
		Database:       testEnv("TEST_POSTGRES_DB", "jobbuddy_test"),
		User:           testEnv("TEST_POSTGRES_USER", "jobbuddy"),
		Password:       testEnv("TEST_POSTGRES_PASSWORD", "jobbuddy_dev_password"),
		SSLMode:        "disable",
		MaxConnections: 10,
		MinConnections: 1,
	}
}

// setupTestDB connects to the test database, applies migrations and empties every table.
// The test is skipped when Postgres is unreachable or in short mode.
func setupTestDB(t *testing.T) *PostgresDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := testPostgresConfig()
	db, err := NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	if err := RunMigrations(cfg.URL(), "../../migrations/postgres"); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if _, err := db.Exec(testContext(t), `TRUNCATE users CASCADE`); err != nil {
		t.Fatalf("truncate error = %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db DBTX, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hash", Name: "Test User", IsActive: true, EmailNotificationsEnabled: true}
	if err := NewUserRepository(db).Create(testContext(t), user); err != nil {
		t.Fatalf("create user error = %v", err)
	}
	return user
}

func createTestCompany(t *testing.T, db DBTX, userID, name string) *models.Company {
	t.Helper()
	company := &models.Company{UserID: userID, Name: name, Source: types.CompanySourceManual}
	if err := NewCompanyRepository(db).Create(testContext(t), company); err != nil {
		t.Fatalf("create company error = %v", err)
	}
	return company
}

func createTestContact(t *testing.T, db DBTX, companyID string, email *string) *models.Contact {
	t.Helper()
	contact := &models.Contact{CompanyID: companyID, Name: "Jane Recruiter", Email: email, Source: types.ContactSourceManual}
	if err := NewContactRepository(db).Create(testContext(t), contact); err != nil {
		t.Fatalf("create contact error = %v", err)
	}
	return contact
}

func strPtr(s string) *string { return &s }
