package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ClaimsHandler handles claim listing and hand-off bookkeeping.
type ClaimsHandler struct {
	DB *sql.DB
}

type markReceivedRequest struct {
	ReceivedFrom *int64 `json:"received_from"`
	SupervisedBy *int64 `json:"supervised_by"`
	VerifiedBy   *int64 `json:"verified_by"`
}

// List handles GET /api/claims. Admins see every claim, other users only
// the claims they filed.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	admin := model.RoleAtLeast(claims.Role, model.RoleAdmin)

	list, err := store.ListClaims(r.Context(), h.DB, claims.UserID, admin)
	if err != nil {
		storeError(w, err, "listing claims")
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// MarkReceived handles PUT /api/claims/{id}/received: records the physical
// hand-off of the item. The verifying user defaults to the admin making the
// call.
func (h *ClaimsHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var req markReceivedRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if req.VerifiedBy == nil {
		req.VerifiedBy = &claims.UserID
	}

	if err := store.MarkClaimReceived(r.Context(), h.DB, id, req.ReceivedFrom, req.SupervisedBy, req.VerifiedBy); err != nil {
		storeError(w, err, "marking claim received")
		return
	}

	slog.Info("claim marked received", "claim", id, "by", claims.Username)

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting claim after hand-off")
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}
