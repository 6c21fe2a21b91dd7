package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	apperrors "github.com/jobbuddy/internal/errors"
)

// Postgres SQLSTATE codes the repositories translate
const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgStringTooLong       = "22001"
)

// mapPgError converts a driver error into a categorized error.
// Constraint violations become user errors; anything else is a database error for operation.
func mapPgError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.NewDatabaseError(operation, err)
	}

	entity := entityName(pgErr.TableName)
	switch pgErr.Code {
	case pgUniqueViolation:
		catErr := apperrors.NewConflictError(fmt.Sprintf("%s already exists", entity))
		catErr.Cause = err
		catErr.Details = map[string]interface{}{"constraint": pgErr.ConstraintName}
		return catErr
	case pgCheckViolation:
		catErr := apperrors.NewValidationError(fmt.Sprintf("%s violates constraint %s", entity, pgErr.ConstraintName))
		catErr.Cause = err
		return catErr
	case pgForeignKeyViolation:
		catErr := apperrors.NewValidationError(fmt.Sprintf("%s references a record that does not exist", entity))
		catErr.Cause = err
		return catErr
	case pgNotNullViolation:
		catErr := apperrors.NewValidationError(fmt.Sprintf("%s is required", humanize(pgErr.ColumnName)))
		catErr.Cause = err
		return catErr
	case pgStringTooLong:
		// Postgres reports neither table nor column here
		catErr := apperrors.NewValidationError("Input is too long: " + pgErr.Message)
		catErr.Cause = err
		return catErr
	default:
		return apperrors.NewDatabaseError(operation, err)
	}
}

// notFoundOr maps pgx.ErrNoRows to a not found error for resource/id
func notFoundOr(operation, resource, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(resource, id)
	}
	return mapPgError(operation, err)
}

var tableEntities = map[string]string{
	"users":           "User",
	"onboarding_data": "Onboarding data",
	"companies":       "Company",
	"contacts":        "Contact",
	"applications":    "Application",
	"outreach":        "Outreach",
	"goals":           "Goal",
	"streaks":         "Streak",
	"notifications":   "Notification",
	"user_quests":     "User quest",
	"cv_analyses":     "CV analysis",
}

func entityName(table string) string {
	if name, ok := tableEntities[table]; ok {
		return name
	}
	if table == "" {
		return "Record"
	}
	return humanize(table)
}

func humanize(column string) string {
	if column == "" {
		return "Field"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(column, "_", " "))
}
