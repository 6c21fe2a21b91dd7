package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jobbuddy/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		status   int
	}{
		{"validation", NewValidationError("bad input"), CategoryValidation, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("loading: %w", NewNotFoundError("company", "c1")), CategoryNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("Email already registered"), CategoryConflict, http.StatusConflict},
		{"database", NewDatabaseError("insert user", stderrors.New("boom")), CategoryDatabase, http.StatusInternalServerError},
		{"service error", &types.ServiceError{Code: CodeNotFound, Message: "gone"}, CategoryNotFound, http.StatusNotFound},
		{"plain error", stderrors.New("unexpected"), CategorySystem, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catErr := Categorize(tt.err)
			require.NotNil(t, catErr)
			assert.Equal(t, tt.category, catErr.Category)
			assert.Equal(t, tt.status, GetHTTPStatusCode(tt.err))
		})
	}

	assert.Nil(t, Categorize(nil))
}

func TestPredicates(t *testing.T) {
	notFound := fmt.Errorf("wrap: %w", NewNotFoundError("goal", "g1"))
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsUserError(notFound))
	assert.False(t, IsSystemError(notFound))
	assert.False(t, IsRetryable(notFound))

	conflict := NewConflictError("dup")
	assert.True(t, IsConflict(conflict))
	assert.False(t, IsNotFound(conflict))

	dbErr := NewDatabaseError("query", stderrors.New("conn reset"))
	assert.True(t, IsSystemError(dbErr))
	assert.True(t, IsRetryable(dbErr))
	assert.True(t, stderrors.Is(dbErr, dbErr.Cause))

	assert.True(t, IsValidation(NewInvalidParameterError("limit", "must be positive")))
}

func TestNewValidationError_Fields(t *testing.T) {
	err := NewValidationError("Validation failed", FieldError{Field: "name", Message: "is required"})
	require.NotNil(t, err.Details)
	fields, ok := err.Details["fields"].([]FieldError)
	require.True(t, ok)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "VALIDATION_FAILED: Validation failed", err.Error())
}
