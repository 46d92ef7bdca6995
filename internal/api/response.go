package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response with a stable machine-readable code.
func jsonError(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]string{"error": message, "code": code})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// parseID extracts a positive integer path value.
func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// storeError classifies a store error into an HTTP response. Expected
// domain outcomes keep their message; anything unclassified is logged with
// full context and the client only sees a generic failure.
func storeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrWrongReportType):
		jsonError(w, http.StatusBadRequest, "wrong_report_type", err.Error())
	case errors.Is(err, store.ErrAlreadyResolved):
		jsonError(w, http.StatusConflict, "already_resolved", err.Error())
	case errors.Is(err, store.ErrAlreadyReceived):
		jsonError(w, http.StatusConflict, "already_received", err.Error())
	case errors.Is(err, store.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		jsonError(w, http.StatusGatewayTimeout, "timeout", "operation timed out, retry later")
	default:
		slog.Error(logMsg, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
