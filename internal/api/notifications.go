package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/store"
)

// NotificationsHandler handles the pull-based notification endpoints.
// Notifications are strictly private: every route only touches the
// authenticated user's own rows.
type NotificationsHandler struct {
	DB *sql.DB
}

type updateNotificationRequest struct {
	IsRead *bool `json:"is_read"`
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	list, err := store.ListNotifications(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, err, "listing notifications")
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	count, err := store.UnreadCount(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, err, "counting unread notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"unread_count": count})
}

// Update handles PATCH /api/notifications/{id}. The is_read field must be
// present; partial bodies without it are rejected rather than defaulted.
func (h *NotificationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var req updateNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}
	if req.IsRead == nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "is_read is required")
		return
	}

	notification, err := store.GetNotification(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting notification")
		return
	}
	if notification == nil {
		jsonError(w, http.StatusNotFound, "not_found", "notification not found")
		return
	}

	claims := GetClaims(r.Context())
	if notification.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "forbidden", "not your notification")
		return
	}

	if err := store.SetNotificationRead(r.Context(), h.DB, id, *req.IsRead); err != nil {
		storeError(w, err, "updating notification")
		return
	}

	notification.IsRead = *req.IsRead
	jsonResponse(w, http.StatusOK, notification)
}
