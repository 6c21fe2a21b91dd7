package validation

import (
	"testing"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name   string                   `json:"name" validate:"trimmin=2"`
	Email  *string                  `json:"email,omitempty" validate:"omitempty,useremail"`
	Status *types.ApplicationStatus `json:"status,omitempty" validate:"omitempty,enum"`
	Source types.CompanySource      `json:"source" validate:"enum"`
	Score  int                      `json:"score" validate:"gte=0,lte=100"`
}

func strPtr(s string) *string { return &s }

func TestStruct(t *testing.T) {
	applied := types.ApplicationApplied
	bogus := types.ApplicationStatus("Ghosted")

	tests := []struct {
		name      string
		input     sampleInput
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid",
			input: sampleInput{Name: "Google", Email: strPtr("a@b.io"), Status: &applied, Source: types.CompanySourceManual, Score: 80},
		},
		{
			name:      "name too short after trim",
			input:     sampleInput{Name: " G ", Source: types.CompanySourceManual},
			wantField: "name",
			wantMsg:   "name must be at least 2 characters long",
		},
		{
			name:      "bad email",
			input:     sampleInput{Name: "Google", Email: strPtr("not-an-email"), Source: types.CompanySourceAPI},
			wantField: "email",
			wantMsg:   "Invalid email format",
		},
		{
			name:      "unknown enum",
			input:     sampleInput{Name: "Google", Status: &bogus, Source: types.CompanySourceCSV},
			wantField: "status",
		},
		{
			name:      "empty enum",
			input:     sampleInput{Name: "Google"},
			wantField: "source",
		},
		{
			name:      "score out of range",
			input:     sampleInput{Name: "Google", Source: types.CompanySourceManual, Score: 150},
			wantField: "score",
			wantMsg:   "score must be at most 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))

			catErr := apperrors.Categorize(err)
			fields := catErr.Details["fields"].([]apperrors.FieldError)
			assert.Equal(t, tt.wantField, fields[0].Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, catErr.Message)
			}
		})
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("john.doe@example.com"))
	assert.True(t, IsEmail("  Jane+jobs@Example.CO  "))
	assert.False(t, IsEmail("john@localhost"))
	assert.False(t, IsEmail("@example.com"))
	assert.False(t, IsEmail(""))
}
