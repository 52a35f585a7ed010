package handlers

import (
	"net/http"
	"time"

	"github.com/kraenzle-ritter/resources/internal/server/response"
)

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":    "healthy",
		"service":   "resources-api",
		"version":   h.version,
		"providers": h.client.Registry().Len(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
	})
}
