package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// CommentsHandler handles comments attached to reports.
type CommentsHandler struct {
	DB *sql.DB
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/reports/{id}/comments.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	reportID, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "invalid request body")
		return
	}
	if req.Content == "" {
		jsonError(w, http.StatusBadRequest, "invalid_payload", "content is required")
		return
	}

	report, err := store.GetReport(r.Context(), h.DB, reportID)
	if err != nil {
		storeError(w, err, "getting report for comment")
		return
	}
	if report == nil {
		jsonError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}

	claims := GetClaims(r.Context())
	comment, err := store.CreateComment(r.Context(), h.DB, reportID, claims.UserID, req.Content)
	if err != nil {
		storeError(w, err, "creating comment")
		return
	}

	jsonResponse(w, http.StatusCreated, comment)
}

// List handles GET /api/reports/{id}/comments.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	reportID, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	comments, err := store.ListComments(r.Context(), h.DB, reportID)
	if err != nil {
		storeError(w, err, "listing comments")
		return
	}
	jsonResponse(w, http.StatusOK, comments)
}

// Delete handles DELETE /api/comments/{id}. Only the author or an admin may
// delete a comment.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	comment, err := store.GetComment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "getting comment")
		return
	}
	if comment == nil {
		jsonError(w, http.StatusNotFound, "not_found", "comment not found")
		return
	}

	claims := GetClaims(r.Context())
	if comment.UserID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "forbidden", "not your comment")
		return
	}

	if err := store.DeleteComment(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "deleting comment")
		return
	}

	slog.Info("comment deleted", "comment", id, "by", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
