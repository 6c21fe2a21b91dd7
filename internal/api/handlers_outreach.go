package api

import (
	"net/http"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/service"
	"github.com/jobbuddy/internal/types"
)

// CreateOutreachRequest represents the request body for logging outreach.
// Exactly one of ApplicationID and CompanyID must be set.
type CreateOutreachRequest struct {
	ContactID       string                `json:"contactId"`
	ApplicationID   *string               `json:"applicationId,omitempty"`
	CompanyID       *string               `json:"companyId,omitempty"`
	Channel         types.OutreachChannel `json:"channel"`
	MessageTemplate string                `json:"messageTemplate"`
	SentDate        *Date                 `json:"sentDate,omitempty"`
	FollowUpDate    *Date                 `json:"followUpDate,omitempty"`
	Status          types.OutreachStatus  `json:"status,omitempty"`

	// FollowUpDays schedules a follow-up relative to today when FollowUpDate is absent
	FollowUpDays int  `json:"followUpDays,omitempty"`
	Notify       bool `json:"notify,omitempty"`
	Points       int  `json:"points,omitempty"`
}

// UpdateOutreachRequest represents the request body for PATCH /outreach/{id}
type UpdateOutreachRequest struct {
	MessageTemplate *string               `json:"messageTemplate,omitempty"`
	SentDate        *Date                 `json:"sentDate,omitempty"`
	FollowUpDate    *Date                 `json:"followUpDate,omitempty"`
	Status          *types.OutreachStatus `json:"status,omitempty"`
}

// FollowUpRequest schedules a follow-up n days from today
type FollowUpRequest struct {
	Days int `json:"days"`
}

func (s *Server) ownOutreach(w http.ResponseWriter, r *http.Request) (*models.Outreach, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	outreach, err := s.deps.Outreach.GetByID(r.Context(), id)
	if err == nil && outreach.UserID != userIDFrom(r) {
		err = apperrors.NewNotFoundError("Outreach", id)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return outreach, true
}

// handleListOutreach handles GET /api/v1/outreach?status=
func (s *Server) handleListOutreach(w http.ResponseWriter, r *http.Request) {
	status := types.OutreachStatus(r.URL.Query().Get("status"))
	list, err := s.deps.Outreach.ListForUser(r.Context(), userIDFrom(r), status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handlePendingFollowUps handles GET /api/v1/outreach/pending
func (s *Server) handlePendingFollowUps(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Outreach.PendingFollowUps(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleCreateOutreach handles POST /api/v1/outreach
func (s *Server) handleCreateOutreach(w http.ResponseWriter, r *http.Request) {
	var req CreateOutreachRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, ok := s.contactForCaller(w, r, req.ContactID); !ok {
		return
	}
	if req.ApplicationID != nil {
		if _, ok := s.applicationForCaller(w, r, *req.ApplicationID); !ok {
			return
		}
	}
	if req.CompanyID != nil {
		if _, ok := s.companyForCaller(w, r, *req.CompanyID); !ok {
			return
		}
	}

	input := &service.CreateOutreachInput{
		UserID:          userIDFrom(r),
		ContactID:       req.ContactID,
		ApplicationID:   req.ApplicationID,
		CompanyID:       req.CompanyID,
		Channel:         req.Channel,
		MessageTemplate: req.MessageTemplate,
		SentDate:        req.SentDate.timePtr(),
		FollowUpDate:    req.FollowUpDate.timePtr(),
		Status:          req.Status,
	}
	opts := service.LogOptions{Notify: req.Notify, Points: req.Points}
	if input.FollowUpDate == nil {
		opts.FollowUpDays = req.FollowUpDays
	}

	result, err := s.deps.Activity.LogOutreach(r.Context(), input, opts)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// handleGetOutreach handles GET /api/v1/outreach/{id}
func (s *Server) handleGetOutreach(w http.ResponseWriter, r *http.Request) {
	outreach, ok := s.ownOutreach(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, outreach)
}

// handleUpdateOutreach handles PATCH /api/v1/outreach/{id}
func (s *Server) handleUpdateOutreach(w http.ResponseWriter, r *http.Request) {
	outreach, ok := s.ownOutreach(w, r)
	if !ok {
		return
	}
	var req UpdateOutreachRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Outreach.Update(r.Context(), outreach.ID, &service.UpdateOutreachInput{
		MessageTemplate: req.MessageTemplate,
		SentDate:        req.SentDate.timePtr(),
		FollowUpDate:    req.FollowUpDate.timePtr(),
		Status:          req.Status,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleDeleteOutreach handles DELETE /api/v1/outreach/{id}
func (s *Server) handleDeleteOutreach(w http.ResponseWriter, r *http.Request) {
	outreach, ok := s.ownOutreach(w, r)
	if !ok {
		return
	}
	if err := s.deps.Outreach.Delete(r.Context(), outreach.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMarkResponded handles POST /api/v1/outreach/{id}/responded
func (s *Server) handleMarkResponded(w http.ResponseWriter, r *http.Request) {
	outreach, ok := s.ownOutreach(w, r)
	if !ok {
		return
	}
	updated, err := s.deps.Outreach.MarkResponded(r.Context(), outreach.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleMarkNoResponse handles POST /api/v1/outreach/{id}/no-response
func (s *Server) handleMarkNoResponse(w http.ResponseWriter, r *http.Request) {
	outreach, ok := s.ownOutreach(w, r)
	if !ok {
		return
	}
	updated, err := s.deps.Outreach.MarkNoResponse(r.Context(), outreach.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleScheduleFollowUp handles POST /api/v1/outreach/{id}/follow-up
func (s *Server) handleScheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	outreach, ok := s.ownOutreach(w, r)
	if !ok {
		return
	}
	var req FollowUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.deps.Outreach.SetFollowUpDate(r.Context(), outreach.ID, req.Days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
