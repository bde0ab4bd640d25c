// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	statsProvider StatsProvider
}

// NewHealthHandler creates a new health handler. The stats provider is used
// to report which collaborators the pipeline is running against.
func NewHealthHandler(statsProvider StatsProvider) *HealthHandler {
	return &HealthHandler{statsProvider: statsProvider}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// HandleHealth handles GET /healthz requests. It reports "ok" once the
// service has started and names the active embedding provider, vector index
// and metrics store.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	resp := healthResponse{Status: "starting"}
	if h.statsProvider != nil {
		stats := h.statsProvider.GetStats()
		if started, ok := stats["started"].(bool); ok && started {
			resp.Status = "ok"
		}
		components := map[string]string{}
		for _, key := range []string{"provider", "index", "store"} {
			if name, ok := stats[key].(string); ok {
				components[key] = name
			}
		}
		if len(components) > 0 {
			resp.Components = components
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
