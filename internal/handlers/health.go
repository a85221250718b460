package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/opsbrain/ceo-operator/internal/healing"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	monitor *healing.ErrorMonitor
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(monitor *healing.ErrorMonitor) *HealthChecker {
	return &HealthChecker{monitor: monitor}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Detail    *healing.HealthSummary `json:"detail,omitempty"`
}

// HealthCheck handles the /healthz endpoint. Basic mode reports liveness;
// mode=extended includes the error monitor's full summary.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	summary := h.monitor.GetHealthSummary()

	response := HealthResponse{
		Status:    summary.OverallHealth,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if r.URL.Query().Get("mode") == "extended" {
		response.Detail = &summary
	}

	statusCode := http.StatusOK
	if summary.OverallHealth == "critical" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
