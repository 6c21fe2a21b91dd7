package api

import (
	"net/http"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
)

func (s *Server) ownNotification(w http.ResponseWriter, r *http.Request) (*models.Notification, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	n, err := s.deps.Notifications.GetByID(r.Context(), id)
	if err == nil && n.UserID != userIDFrom(r) {
		err = apperrors.NewNotFoundError("Notification", id)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return n, true
}

// handleListNotifications handles GET /api/v1/notifications?unread=true
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	list, err := s.deps.Notifications.ListForUser(r.Context(), userIDFrom(r), unreadOnly)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleUnreadCount handles GET /api/v1/notifications/unread-count
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.deps.Notifications.UnreadCount(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// handleMarkAllRead handles POST /api/v1/notifications/read-all
func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Notifications.MarkAllRead(r.Context(), userIDFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// handleMarkRead handles POST /api/v1/notifications/{id}/read
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, ok := s.ownNotification(w, r)
	if !ok {
		return
	}
	updated, err := s.deps.Notifications.MarkRead(r.Context(), n.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleMarkUnread handles POST /api/v1/notifications/{id}/unread
func (s *Server) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	n, ok := s.ownNotification(w, r)
	if !ok {
		return
	}
	updated, err := s.deps.Notifications.MarkUnread(r.Context(), n.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleNotificationRelated handles GET /api/v1/notifications/{id}/related.
// A notification without a reference answers 204.
func (s *Server) handleNotificationRelated(w http.ResponseWriter, r *http.Request) {
	n, ok := s.ownNotification(w, r)
	if !ok {
		return
	}
	related, err := s.deps.Notifications.Related(r.Context(), n.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if related == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, related)
}

// handleDeleteNotification handles DELETE /api/v1/notifications/{id}
func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := s.ownNotification(w, r)
	if !ok {
		return
	}
	if err := s.deps.Notifications.Delete(r.Context(), n.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
