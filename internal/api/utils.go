package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jbweber/homelab/ludoteca/internal/logging"
)

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("failed to encode response", slog.Any("error", err))
	}
}

// writeText writes a plain-text message with the given status
func writeText(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(msg)); err != nil {
		logging.FromContext(r.Context()).Warn("failed to write response", slog.Any("error", err))
	}
}

// internalError logs an unexpected failure and answers 500 without leaking details
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		slog.String("op", op),
		slog.Any("error", err),
	)
	writeText(w, r, http.StatusInternalServerError, msgInternal)
}
