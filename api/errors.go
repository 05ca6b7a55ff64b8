package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/salah/internal/tracker"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeBadRequest(w http.ResponseWriter, msg string, details ...string) {
	writeJSON(w, errorBody{Error: msg, Details: details}, http.StatusBadRequest)
}

// writeError maps a tracker error onto an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrValidation):
		writeJSON(w, errorBody{Error: err.Error()}, http.StatusBadRequest)
	case errors.Is(err, tracker.ErrNotFound):
		writeJSON(w, errorBody{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, tracker.ErrConflict):
		writeJSON(w, errorBody{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, tracker.ErrStoreUnavailable):
		// the cause stays in the server log
		w.Header().Set("Retry-After", "1")
		writeJSON(w, errorBody{Error: tracker.ErrStoreUnavailable.Error()}, http.StatusServiceUnavailable)
	default:
		logger.Error("unhandled error", slog.Any("err", err))
		writeJSON(w, errorBody{Error: "internal error"}, http.StatusInternalServerError)
	}
}
