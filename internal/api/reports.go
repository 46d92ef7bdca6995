package api

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ReportsHandler handles report lifecycle endpoints.
type ReportsHandler struct {
	DB *sql.DB
}

type createReportRequest struct {
	Type        string     `json:"type"`
	ItemName    string     `json:"item_name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Date        *time.Time `json:"date"`
}

type claimRequest struct {
	Message string `json:"message"`
}

type resolveRequest struct {
	ClaimantID *int64 `json:"claimant_id"`
}

// Create handles POST /api/reports. New reports always start pending.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}

	if req.Type != model.ReportTypeLost && req.Type != model.ReportTypeFound {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "type must be lost or found")
		return
	}
	if req.ItemName == "" {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "item_name is required")
		return
	}

	detail := model.ItemDetail{
		ItemName:    req.ItemName,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Date:        req.Date,
	}

	claims := GetClaims(r.Context())
	report, err := store.CreateReport(r.Context(), h.DB, claims.UserID, req.Type, detail)
	if err != nil {
		storeError(w, err, "creating report")
		return
	}

	slog.Info("report created", "report", report.ID, "type", report.Type, "by", claims.Username)
	jsonResponse(w, http.StatusCreated, report)
}

// List handles GET /api/reports with optional type, status, and q filters.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("q")

	if typ != "" && typ != model.ReportTypeLost && typ != model.ReportTypeFound {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid type filter")
		return
	}

	reports, err := store.ListReports(r.Context(), h.DB, typ, status, search)
	if err != nil {
		storeError(w, err, "listing reports")
		return
	}
	jsonResponse(w, http.StatusOK, reports)
}

// Get handles GET /api/reports/{id}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	report, err := store.GetReport(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting report")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// Approve handles PATCH /api/reports/{id}/approve. The reporter is notified
// after the transition commits.
func (h *ReportsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.StatusApproved, store.ApproveReport,
		"Your report has been approved.")
}

// Reject handles PATCH /api/reports/{id}/reject.
func (h *ReportsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.StatusRejected, store.RejectReport,
		"Your report has been rejected.")
}

// review runs an admin moderation transition and notifies the reporter after
// the status change committed.
func (h *ReportsHandler) review(w http.ResponseWriter, r *http.Request, status string,
	transition func(context.Context, *sql.DB, int64) error, message string) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	if err := transition(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "moderating report")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("report moderated", "report", id, "status", status, "by", claims.Username)

	resp := map[string]any{"status": status}
	if warning := h.notifyOwner(r, id, claims.UserID, message, ""); warning != "" {
		resp["warning"] = warning
	}
	jsonResponse(w, http.StatusOK, resp)
}

// UploadPhoto handles PUT /api/reports/{id}/photo. Only the reporter or an
// admin may attach a photo.
func (h *ReportsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	report, err := store.GetReport(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting report for photo upload")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}

	claims := GetClaims(r.Context())
	if report.ReportedBy != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "forbidden", "only the reporter can upload a photo")
		return
	}

	photo, err := imaging.Process(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	if err := store.SetReportPhoto(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		storeError(w, err, "storing report photo")
		return
	}

	slog.Info("report photo uploaded", "report", id, "by", claims.Username, "bytes", len(photo.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/reports/{id}/photo.
func (h *ReportsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	photo, mime, err := store.GetReportPhoto(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting report photo")
		return
	}
	if len(photo) == 0 {
		jsonError(w, http.StatusNotFound, "not_found", "report has no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	w.Write(photo)
}

// Claim handles POST /api/reports/{id}/claim. The report owner is notified
// after the claim commits; a notification failure does not undo the claim.
func (h *ReportsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	claim, err := store.CreateClaim(r.Context(), h.DB, id, claims.UserID, req.Message)
	if err != nil {
		storeError(w, err, "creating claim")
		return
	}

	slog.Info("claim created", "claim", claim.ID, "report", id, "by", claims.Username)

	resp := map[string]any{"status": "claim created", "claim_id": claim.ID}
	if warning := h.notifyOwner(r, id, claims.UserID,
		fmt.Sprintf("%s wants to claim the found item.", claim.ClaimantName), req.Message); warning != "" {
		resp["warning"] = warning
	}
	jsonResponse(w, http.StatusCreated, resp)
}

// MarkFound handles POST /api/reports/{id}/found: someone tells the owner of
// a lost report that the item turned up. Only lost reports qualify. The
// finder's message travels to the owner as the notification detail.
func (h *ReportsHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	// The message is optional, so an empty body is fine.
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil && err != io.EOF {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}

	report, err := store.GetReport(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting report for found notification")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}
	if report.Type != model.ReportTypeLost {
		jsonError(w, http.StatusBadRequest, "wrong_report_type", "only lost reports can be marked found")
		return
	}

	claims := GetClaims(r.Context())
	finder, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || finder == nil {
		jsonError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	resp := map[string]any{"status": "item found notification sent"}
	if warning := h.notifyOwner(r, id, claims.UserID,
		fmt.Sprintf("%s reported finding your lost item.", finder.DisplayName), req.Message); warning != "" {
		resp["warning"] = warning
	}

	slog.Info("item found notification", "report", id, "by", claims.Username)
	jsonResponse(w, http.StatusOK, resp)
}

// Resolve handles POST /api/reports/{id}/resolve. Only the reporter or an
// admin can resolve, and a claimant must be named. The status change and the
// resolution log commit together; the activity entry and claimant
// notification happen after the commit and surface as a warning on failure.
func (h *ReportsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}
	if req.ClaimantID == nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "claimant_id is required")
		return
	}

	report, err := store.GetReport(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting report for resolve")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}

	claims := GetClaims(r.Context())
	if report.ReportedBy != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "forbidden", "only the reporter can resolve this report")
		return
	}

	log, err := store.ResolveReport(r.Context(), h.DB, id, claims.UserID, *req.ClaimantID)
	if err != nil {
		storeError(w, err, "resolving report")
		return
	}

	slog.Info("report resolved", "report", id, "by", claims.Username, "claimant", *req.ClaimantID)

	resp := map[string]any{
		"message":    "report resolved",
		"resolution": log,
	}

	var warnings []string
	action := fmt.Sprintf("%s resolved report %d (%s)", claims.Username, id, log.ReportTitle)
	if err := store.RecordActivity(r.Context(), h.DB, claims.UserID, &id, nil, action); err != nil {
		slog.Error("recording resolve activity", "error", err, "report", id)
		warnings = append(warnings, "audit log entry could not be written")
	}
	if _, err := store.CreateNotification(r.Context(), h.DB, *req.ClaimantID,
		fmt.Sprintf("Your claim for %q was accepted.", log.ReportTitle),
		fmt.Sprintf("%s resolved the report in your favor.", log.GiverName), &id); err != nil {
		slog.Error("notifying claimant", "error", err, "report", id)
		warnings = append(warnings, "claimant could not be notified")
	}
	if len(warnings) > 0 {
		resp["warning"] = warnings[0]
		if len(warnings) > 1 {
			resp["warning"] = warnings[0] + "; " + warnings[1]
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

// notifyOwner sends a notification to the report's owner after an action on
// the report committed. Returns a warning message on failure, empty on
// success.
func (h *ReportsHandler) notifyOwner(r *http.Request, reportID, actorID int64, message, detailed string) string {
	report, err := store.GetReport(r.Context(), h.DB, reportID)
	if err != nil || report == nil {
		slog.Error("looking up report owner for notification", "error", err, "report", reportID)
		return "report owner could not be notified"
	}
	if report.ReportedBy == actorID {
		// No point notifying someone about their own action.
		return ""
	}
	if _, err := store.CreateNotification(r.Context(), h.DB, report.ReportedBy, message, detailed, &reportID); err != nil {
		slog.Error("notifying report owner", "error", err, "report", reportID)
		return "report owner could not be notified"
	}
	return ""
}
