package api

import (
	"net/http"

	"github.com/jobbuddy/internal/service"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailNotificationsRequest toggles email notifications
type EmailNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

// handleRegister handles POST /api/v1/users
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.deps.Users.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.deps.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleGetMe handles GET /api/v1/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Users.GetByID(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleUpdateMe handles PATCH /api/v1/me
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.deps.Users.UpdateProfile(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleSetEmailNotifications handles PUT /api/v1/me/email-notifications
func (s *Server) handleSetEmailNotifications(w http.ResponseWriter, r *http.Request) {
	var req EmailNotificationsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.deps.Users.SetEmailNotifications(r.Context(), userIDFrom(r), req.Enabled)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleDeleteMe handles DELETE /api/v1/me. Everything the user owns goes with the account.
func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Users.Delete(r.Context(), userIDFrom(r)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetOnboarding handles GET /api/v1/onboarding
func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Onboarding.GetByUserID(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// handleCreateOnboarding handles POST /api/v1/onboarding
func (s *Server) handleCreateOnboarding(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOnboardingInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = userIDFrom(r)

	data, err := s.deps.Onboarding.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, data)
}

// handleUpdateOnboarding handles PATCH /api/v1/onboarding
func (s *Server) handleUpdateOnboarding(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateOnboardingInput
	if !decodeBody(w, r, &req) {
		return
	}

	current, err := s.deps.Onboarding.GetByUserID(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	data, err := s.deps.Onboarding.Update(r.Context(), current.ID, &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}
