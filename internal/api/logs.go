package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// LogsHandler serves the audit trails: resolution logs and activity entries.
type LogsHandler struct {
	DB *sql.DB
}

// Resolutions handles GET /api/resolutions. Admins see every log, other
// users only the logs for reports they filed.
func (h *LogsHandler) Resolutions(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	admin := model.RoleAtLeast(claims.Role, model.RoleAdmin)

	logs, err := store.ListResolutionLogs(r.Context(), h.DB, claims.UserID, admin)
	if err != nil {
		storeError(w, err, "listing resolution logs")
		return
	}
	jsonResponse(w, http.StatusOK, logs)
}

// Activity handles GET /api/activity. Admins see every entry, other users
// only their own.
func (h *LogsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	admin := model.RoleAtLeast(claims.Role, model.RoleAdmin)

	logs, err := store.ListActivity(r.Context(), h.DB, claims.UserID, admin)
	if err != nil {
		storeError(w, err, "listing activity")
		return
	}
	jsonResponse(w, http.StatusOK, logs)
}
