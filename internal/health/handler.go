package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Status represents the health status response
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Handler handles health check endpoints
type Handler struct {
	opcuaEnabled bool
	opcuaReady   atomic.Bool
	engineReady  atomic.Bool
	startTime    time.Time
}

// NewHandler creates a new health handler. When the OPC UA server is disabled
// in the configuration, readiness does not wait for it.
func NewHandler(opcuaEnabled bool) *Handler {
	return &Handler{
		opcuaEnabled: opcuaEnabled,
		startTime:    time.Now(),
	}
}

// SetEngineReady marks the simulation engine as wired up and ticking
func (h *Handler) SetEngineReady(ready bool) {
	h.engineReady.Store(ready)
}

// SetOPCUAReady sets the OPC UA server readiness status
func (h *Handler) SetOPCUAReady(ready bool) {
	h.opcuaReady.Store(ready)
}

// Register wires the health routes onto the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz/live", h.HandleLive)
	mux.HandleFunc("/healthz/ready", h.HandleReady)
	mux.HandleFunc("/healthz", h.HandleHealth)
}

// HandleLive handles the liveness probe
// Returns 200 if the application is running
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// HandleReady handles the readiness probe
// Returns 200 if the application is ready to serve traffic
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	if h.engineReady.Load() {
		checks["engine"] = "healthy"
	} else {
		checks["engine"] = "not_ready"
		allHealthy = false
	}

	switch {
	case !h.opcuaEnabled:
		checks["opcua_server"] = "disabled"
	case h.opcuaReady.Load():
		checks["opcua_server"] = "healthy"
	default:
		checks["opcua_server"] = "not_ready"
		allHealthy = false
	}

	// Give the process a few seconds to settle before reporting ready
	uptime := time.Since(h.startTime)
	if uptime > 5*time.Second {
		checks["startup"] = "complete"
	} else {
		checks["startup"] = "in_progress"
		allHealthy = false
	}

	status := Status{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")

	if allHealthy {
		status.Status = "ready"
		w.WriteHeader(http.StatusOK)
	} else {
		status.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(status)
}

// HandleHealth handles the combined health endpoint (for Docker HEALTHCHECK)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReady(w, r)
}
