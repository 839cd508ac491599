// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ProbeDependencies defines what liveness and readiness probes read.
type ProbeDependencies interface {
	Ready() bool
	ModelLoaded() bool
	Name() string
	Version() string
}

// HealthHandler handles liveness and readiness requests.
type HealthHandler struct {
	deps ProbeDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps ProbeDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type readyResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ModelLoaded bool   `json:"model_loaded"`
}

// HandleHealth handles GET {prefix}/health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.health", http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: h.deps.Name(),
		Version: h.deps.Version(),
	})
}

// HandleReady handles GET {prefix}/ready requests. It answers 503 until the
// service has started.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.ready", http.MethodGet)
		return
	}
	resp := readyResponse{
		Status:      "ready",
		Service:     h.deps.Name(),
		ModelLoaded: h.deps.ModelLoaded(),
	}
	if !h.deps.Ready() {
		resp.Status = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
