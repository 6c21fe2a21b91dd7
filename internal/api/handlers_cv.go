package api

import (
	"net/http"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/service"
)

func (s *Server) ownCVAnalysis(w http.ResponseWriter, r *http.Request) (*models.CVAnalysis, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	a, err := s.deps.CVAnalyses.GetByID(r.Context(), id)
	if err == nil && a.UserID != userIDFrom(r) {
		err = apperrors.NewNotFoundError("CV analysis", id)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return a, true
}

// handleListCVAnalyses handles GET /api/v1/cv-analyses
func (s *Server) handleListCVAnalyses(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.CVAnalyses.ListForUser(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleCreateCVAnalysis handles POST /api/v1/cv-analyses
func (s *Server) handleCreateCVAnalysis(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCVAnalysisInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = userIDFrom(r)
	if req.ApplicationID != nil {
		if _, ok := s.applicationForCaller(w, r, *req.ApplicationID); !ok {
			return
		}
	}

	a, err := s.deps.CVAnalyses.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, service.NewCVAnalysisView(a))
}

// handleGetCVAnalysis handles GET /api/v1/cv-analyses/{id}
func (s *Server) handleGetCVAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.ownCVAnalysis(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, service.NewCVAnalysisView(a))
}

// handleDeleteCVAnalysis handles DELETE /api/v1/cv-analyses/{id}
func (s *Server) handleDeleteCVAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.ownCVAnalysis(w, r)
	if !ok {
		return
	}
	if err := s.deps.CVAnalyses.Delete(r.Context(), a.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAverageScore handles GET /api/v1/cv-analyses/average.
// averageScore is null until the user has an analysis.
func (s *Server) handleAverageScore(w http.ResponseWriter, r *http.Request) {
	avg, ok, err := s.deps.CVAnalyses.AverageScore(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	var score *float64
	if ok {
		score = &avg
	}
	respondJSON(w, http.StatusOK, map[string]*float64{"averageScore": score})
}
