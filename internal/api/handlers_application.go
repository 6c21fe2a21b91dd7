package api

import (
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/service"
	"github.com/jobbuddy/internal/types"
)

// CreateApplicationRequest represents the request body for logging an application
type CreateApplicationRequest struct {
	CompanyID   string                  `json:"companyId"`
	JobTitle    string                  `json:"jobTitle"`
	JobURL      *string                 `json:"jobUrl,omitempty"`
	Status      types.ApplicationStatus `json:"status,omitempty"`
	AppliedDate *Date                   `json:"appliedDate,omitempty"`
	Notes       *string                 `json:"notes,omitempty"`
}

// UpdateApplicationRequest represents the request body for PATCH /applications/{id}
type UpdateApplicationRequest struct {
	JobTitle    *string                  `json:"jobTitle,omitempty"`
	JobURL      *string                  `json:"jobUrl,omitempty"`
	Status      *types.ApplicationStatus `json:"status,omitempty"`
	AppliedDate *Date                    `json:"appliedDate,omitempty"`
	Notes       *string                  `json:"notes,omitempty"`
}

// StatusRequest carries a new status
type StatusRequest struct {
	Status string `json:"status"`
}

// ownApplication loads the {id} application and answers 404 unless the caller owns it
func (s *Server) ownApplication(w http.ResponseWriter, r *http.Request) (*models.Application, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	return s.applicationForCaller(w, r, id)
}

func (s *Server) applicationForCaller(w http.ResponseWriter, r *http.Request, id string) (*models.Application, bool) {
	if _, err := uuid.Parse(id); err != nil {
		respondServiceError(w, r, apperrors.NewValidationError("Application ID must be a valid UUID"))
		return nil, false
	}
	app, err := s.deps.Applications.GetByID(r.Context(), id)
	if err == nil && app.UserID != userIDFrom(r) {
		err = apperrors.NewNotFoundError("Application", id)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return app, true
}

// handleListApplications handles GET /api/v1/applications?status=
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	status := types.ApplicationStatus(r.URL.Query().Get("status"))
	apps, err := s.deps.Applications.ListForUser(r.Context(), userIDFrom(r), status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

// handleListApplicationsDetailed handles GET /api/v1/applications/detailed?q=
func (s *Server) handleListApplicationsDetailed(w http.ResponseWriter, r *http.Request) {
	var (
		details []*models.ApplicationDetail
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		details, err = s.deps.Applications.Search(r.Context(), userIDFrom(r), q)
	} else {
		details, err = s.deps.Applications.ListDetailed(r.Context(), userIDFrom(r))
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// handleApplicationFollowUps handles GET /api/v1/applications/follow-ups?days=
func (s *Server) handleApplicationFollowUps(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", s.config.FollowUpThresholdDays)
	if !ok {
		return
	}
	apps, err := s.deps.Applications.NeedingFollowUp(r.Context(), userIDFrom(r), days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

// handleCreateApplication handles POST /api/v1/applications.
// The week's goal and the streak are updated in the same transaction.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.companyForCaller(w, r, req.CompanyID); !ok {
		return
	}

	result, err := s.deps.Activity.LogApplication(r.Context(), &service.CreateApplicationInput{
		UserID:      userIDFrom(r),
		CompanyID:   req.CompanyID,
		JobTitle:    req.JobTitle,
		JobURL:      req.JobURL,
		Status:      req.Status,
		AppliedDate: req.AppliedDate.timePtr(),
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// handleGetApplication handles GET /api/v1/applications/{id}
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, ok := s.ownApplication(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// handleUpdateApplication handles PATCH /api/v1/applications/{id}
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	app, ok := s.ownApplication(w, r)
	if !ok {
		return
	}
	var req UpdateApplicationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Applications.Update(r.Context(), app.ID, &service.UpdateApplicationInput{
		JobTitle:    req.JobTitle,
		JobURL:      req.JobURL,
		Status:      req.Status,
		AppliedDate: req.AppliedDate.timePtr(),
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleUpdateApplicationStatus handles PUT /api/v1/applications/{id}/status
func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	app, ok := s.ownApplication(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Applications.UpdateStatus(r.Context(), app.ID, types.ApplicationStatus(req.Status))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleDeleteApplication handles DELETE /api/v1/applications/{id}
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	app, ok := s.ownApplication(w, r)
	if !ok {
		return
	}
	if err := s.deps.Applications.Delete(r.Context(), app.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplicationOutreach handles GET /api/v1/applications/{id}/outreach
func (s *Server) handleApplicationOutreach(w http.ResponseWriter, r *http.Request) {
	app, ok := s.ownApplication(w, r)
	if !ok {
		return
	}
	outreach, err := s.deps.Applications.Outreach(r.Context(), app.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, outreach)
}

// handleApplicationCVAnalyses handles GET /api/v1/applications/{id}/cv-analyses
func (s *Server) handleApplicationCVAnalyses(w http.ResponseWriter, r *http.Request) {
	app, ok := s.ownApplication(w, r)
	if !ok {
		return
	}
	analyses, err := s.deps.Applications.CVAnalyses(r.Context(), app.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, analyses)
}
