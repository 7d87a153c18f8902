package handlers

import (
	"net/http"
	"runtime"
	"time"

	"video-library/internal/scanner"
	"video-library/internal/startup"
)

var startedAt = time.Now()

// HealthResponse contains the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Scanning    bool   `json:"scanning"`
	LastScan    string `json:"lastScan,omitempty"`
	TotalVideos int    `json:"totalVideos"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports service health plus a small stats summary.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.CountVideos(r.Context())
	if err != nil {
		writeJSONError(w, "catalog unavailable", http.StatusServiceUnavailable)
		return
	}

	response := HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		Uptime:       time.Since(startedAt).Round(time.Second).String(),
		Scanning:     h.scn.State() == scanner.StateScanning,
		TotalVideos:  total,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if report := h.scn.LastReport(); report != nil {
		response.LastScan = report.FinishedAt.Format(time.RFC3339)
	}

	writeJSON(w, response)
}

// LivenessCheck always returns 200 while the process is up.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 once the catalog store answers queries.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.CountVideos(r.Context()); err != nil {
		writeJSONError(w, "not_ready", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}

// GetVersion returns version and build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, startup.GetBuildInfo())
}
