package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reelistapp/reelist/internal/importer"
	"github.com/reelistapp/reelist/internal/logging"
	"github.com/reelistapp/reelist/internal/store"
)

// respondJSON writes v as a JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already out, nothing more we can do.
			return
		}
	}
}

// respondError maps err to a user-facing message and writes it as JSON.
// The raw error is logged, never sent to the client.
func respondError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	logger := logging.FromContext(ctx)

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		respondJSON(w, status, map[string]string{
			"error": "not found",
			"code":  "DB003",
		})
		return
	case errors.Is(err, importer.ErrTooManyRuns):
		status = http.StatusTooManyRequests
	case errors.Is(err, importer.ErrRunNotFound):
		status = http.StatusNotFound
	}

	msg := importer.MapError(err)
	logger.Error("request failed",
		"status", status,
		"code", msg.Code,
		"error", err,
	)
	respondJSON(w, status, map[string]string{
		"error":  msg.Message,
		"code":   msg.Code,
		"action": msg.Action,
	})
}

// respondBadRequest writes a 400 with a fixed message, for input validation
// failures where the message itself is safe to show.
func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{
		"error": message,
	})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
