// Package handler exposes the HTTP API: CSV upload, AI drafting, the chat
// assistant, campaign control, Gmail send/fetch, and analytics.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("⚠️ Failed to encode response:", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: validation and
// missing config are the caller's problem, upstream failures are a bad
// gateway, everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var verr *appErrors.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error()})
		return
	}

	var cerr *appErrors.ConfigError
	if errors.As(err, &cerr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          cerr.Error(),
			"setup_required": true,
		})
		return
	}

	var uerr *appErrors.UpstreamError
	if errors.As(err, &uerr) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": uerr.Error()})
		return
	}

	log.Println("⚠️ Unhandled error:", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}
