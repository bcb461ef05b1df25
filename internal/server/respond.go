package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"garagelog/internal/app"
	"garagelog/internal/util"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeAppError maps application errors to HTTP statuses: validation failures
// are 422, missing entities 404, everything else 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if app.IsValidation(err) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if errors.Is(err, app.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	logger := util.LoggerFromContext(r.Context())
	logger.Error("request failed", "path", r.URL.Path, "method", r.Method, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
