package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/types"
)

func TestCompanyService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	companies := env.services.Companies
	user := env.user(ctx, "c@example.com")
	other := env.user(ctx, "other@example.com")

	company, err := companies.Create(ctx, &CreateCompanyInput{UserID: user.ID, Name: "  Acme Corp ", Industry: ptr("Robotics")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", company.Name)
	assert.Equal(t, types.CompanySourceManual, company.Source)

	tests := []struct {
		name    string
		input   *CreateCompanyInput
		code    string
		message string
	}{
		{
			name:    "short name",
			input:   &CreateCompanyInput{UserID: user.ID, Name: " A "},
			code:    apperrors.CodeValidation,
			message: "Company name must be at least 2 characters long",
		},
		{
			name:    "bad source",
			input:   &CreateCompanyInput{UserID: user.ID, Name: "Globex", Source: "Fax"},
			code:    apperrors.CodeValidation,
			message: "Invalid source. Must be one of: " + types.JoinValues(types.CompanySources),
		},
		{
			name:  "industry longer than the column",
			input: &CreateCompanyInput{UserID: user.ID, Name: "Initech", Industry: ptr(strings.Repeat("i", 101))},
			code:  apperrors.CodeValidation,
		},
		{
			name:    "duplicate ignores case",
			input:   &CreateCompanyInput{UserID: user.ID, Name: "ACME corp"},
			code:    apperrors.CodeConflict,
			message: "Company 'ACME corp' already exists in your list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := companies.Create(ctx, tt.input)
			requireAppError(t, err, tt.code, tt.message)
		})
	}

	t.Run("same name for another user", func(t *testing.T) {
		_, err := companies.Create(ctx, &CreateCompanyInput{UserID: other.ID, Name: "Acme Corp"})
		assert.NoError(t, err)
	})
}

func TestCompanyService_UpdateAndQueries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	companies := env.services.Companies
	user := env.user(ctx, "c@example.com")

	acme, err := companies.Create(ctx, &CreateCompanyInput{UserID: user.ID, Name: "Acme", Industry: ptr("Robotics"), Location: ptr("Berlin")})
	require.NoError(t, err)
	globex, err := companies.Create(ctx, &CreateCompanyInput{UserID: user.ID, Name: "Globex", Industry: ptr("Energy")})
	require.NoError(t, err)

	renamed, err := companies.Update(ctx, acme.ID, &UpdateCompanyInput{Name: ptr("ACME")})
	require.NoError(t, err, "changing only case does not conflict with itself")
	assert.Equal(t, "ACME", renamed.Name)

	_, err = companies.Update(ctx, globex.ID, &UpdateCompanyInput{Name: ptr("acme")})
	requireAppError(t, err, apperrors.CodeConflict, "Company 'acme' already exists in your list")

	robotics, err := companies.ListForUser(ctx, user.ID, "Robotics")
	require.NoError(t, err)
	require.Len(t, robotics, 1)
	assert.Equal(t, acme.ID, robotics[0].ID)

	all, err := companies.ListForUser(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := companies.Search(ctx, user.ID, " berl ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, acme.ID, found[0].ID)

	byName, err := companies.GetByName(ctx, user.ID, "globex")
	require.NoError(t, err)
	assert.Equal(t, globex.ID, byName.ID)

	_, err = companies.Contacts(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCompanyService_StatsAndCascade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	s := env.services
	user := env.user(ctx, "c@example.com")
	company := env.company(ctx, user.ID, "Initech")
	contact := env.contact(ctx, company.ID, "Peter")

	applied, err := s.Applications.Create(ctx, &CreateApplicationInput{UserID: user.ID, CompanyID: company.ID, JobTitle: "Engineer", Status: types.ApplicationApplied})
	require.NoError(t, err)
	_, err = s.Applications.Create(ctx, &CreateApplicationInput{UserID: user.ID, CompanyID: company.ID, JobTitle: "Manager"})
	require.NoError(t, err)
	_, err = s.Outreach.Create(ctx, &CreateOutreachInput{UserID: user.ID, ContactID: contact.ID, ApplicationID: &applied.ID, Channel: types.ChannelEmail, MessageTemplate: "Hello there, following up"})
	require.NoError(t, err)
	_, err = s.Outreach.Create(ctx, &CreateOutreachInput{UserID: user.ID, ContactID: contact.ID, CompanyID: &company.ID, Channel: types.ChannelLinkedIn, MessageTemplate: "Hi, keen to connect"})
	require.NoError(t, err)

	stats, err := s.Companies.Stats(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalContacts)
	assert.Equal(t, 2, stats.TotalApplications())
	assert.Equal(t, 2, stats.TotalOutreach)

	outreach, err := s.Companies.Outreach(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, outreach, 2)

	require.NoError(t, s.Companies.Delete(ctx, company.ID))
	contacts, err := s.Contacts.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	remaining, err := s.Outreach.ListForUser(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestContactService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	contacts := env.services.Contacts
	user := env.user(ctx, "c@example.com")
	acme := env.company(ctx, user.ID, "Acme")
	globex := env.company(ctx, user.ID, "Globex")

	jane, err := contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "Jane Doe", Email: ptr(" Jane@Acme.io "), Role: ptr("Recruiter")})
	require.NoError(t, err)
	require.NotNil(t, jane.Email)
	assert.Equal(t, "jane@acme.io", *jane.Email)
	assert.Equal(t, types.ContactSourceManual, jane.Source)

	t.Run("validation", func(t *testing.T) {
		_, err := contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "J"})
		requireAppError(t, err, apperrors.CodeValidation, "Contact name must be at least 2 characters long")

		_, err = contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "John", Email: ptr("john@")})
		requireAppError(t, err, apperrors.CodeValidation, "Invalid email format")

		_, err = contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "John", Source: "CSV"})
		requireAppError(t, err, apperrors.CodeValidation, "Invalid source. Must be one of: "+types.JoinValues(types.ContactSources))
	})

	t.Run("email unique per company", func(t *testing.T) {
		_, err := contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "Janet", Email: ptr("JANE@acme.io")})
		requireAppError(t, err, apperrors.CodeConflict, "Contact with email 'jane@acme.io' already exists at this company")

		_, err = contacts.Create(ctx, &CreateContactInput{CompanyID: globex.ID, Name: "Jane Doe", Email: ptr("jane@acme.io")})
		assert.NoError(t, err)
	})

	t.Run("empty email stored absent", func(t *testing.T) {
		c, err := contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "No Mail", Email: ptr("  ")})
		require.NoError(t, err)
		assert.Nil(t, c.Email)
	})

	t.Run("update email", func(t *testing.T) {
		bob, err := contacts.Create(ctx, &CreateContactInput{CompanyID: acme.ID, Name: "Bob", Email: ptr("bob@acme.io")})
		require.NoError(t, err)

		_, err = contacts.Update(ctx, bob.ID, &UpdateContactInput{Email: ptr("jane@acme.io")})
		requireAppError(t, err, apperrors.CodeConflict, "")

		updated, err := contacts.Update(ctx, bob.ID, &UpdateContactInput{Email: ptr("Bob@acme.io"), Role: ptr("CTO")})
		require.NoError(t, err)
		assert.Equal(t, "bob@acme.io", *updated.Email)
		assert.Equal(t, "CTO", *updated.Role)
	})

	company, err := contacts.Company(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, acme.ID, company.ID)

	byEmail, err := contacts.GetByEmail(ctx, acme.ID, "JANE@acme.io")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, byEmail.ID)

	found, err := contacts.Search(ctx, user.ID, "recruit")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, jane.ID, found[0].ID)

	require.NoError(t, contacts.Delete(ctx, jane.ID))
	_, err = contacts.Outreach(ctx, jane.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
