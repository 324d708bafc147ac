// Package api terminates the Radarr-shaped HTTP surface and translates each
// request into Watcher3 calls.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/config"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/logger"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/watcher3"
)

// Handler serves the Radarr v3 API subset backed by a Watcher3 server. All
// state is request-scoped; the handler itself is immutable after New.
type Handler struct {
	cfg     *config.Config
	watcher *watcher3.Client
}

// New builds a Handler around an upstream client.
func New(cfg *config.Config, watcher *watcher3.Client) *Handler {
	return &Handler{cfg: cfg, watcher: watcher}
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

// writeError writes the structured error body used for upstream and request
// failures.
func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// writeNotFound writes Radarr's NotFound shape.
func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "NotFound"})
}

// writeUpstreamError maps an upstream failure to a response: communication
// and data errors become a 502, anything else a 500. Single attempt, no
// retries; the calling client owns retry policy.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var upstream *watcher3.UpstreamError
	if errors.As(err, &upstream) {
		logger.Error("Upstream request failed: %v", upstream)
		writeError(w, http.StatusBadGateway, "%v", upstream)
		return
	}
	logger.Error("Request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "%v", err)
}
