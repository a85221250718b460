package healing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultProbeTimeout bounds a single health probe; a timed-out probe
	// counts as unhealthy even though the probe itself may still be running
	DefaultProbeTimeout = 30 * time.Second
	// DefaultCheckInterval is the continuous monitoring period
	DefaultCheckInterval = 5 * time.Minute
)

// Probe checks one component and returns nil when healthy
type Probe func(ctx context.Context) error

// HealthMonitor runs registered probes against system components, feeding
// results into the ErrorMonitor. The monitoring loop's lifecycle is owned by
// the context passed to Start; there is no ambient-event-loop detection.
type HealthMonitor struct {
	mu           sync.Mutex
	errorMonitor *ErrorMonitor
	probes       map[Component]Probe
	probeTimeout time.Duration
	interval     time.Duration
	logger       *zap.Logger
}

// NewHealthMonitor creates a health monitor wired to the given error monitor
func NewHealthMonitor(errorMonitor *ErrorMonitor, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		errorMonitor: errorMonitor,
		probes:       make(map[Component]Probe),
		probeTimeout: DefaultProbeTimeout,
		interval:     DefaultCheckInterval,
		logger:       logger,
	}
}

// SetInterval overrides the continuous monitoring period
func (h *HealthMonitor) SetInterval(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d > 0 {
		h.interval = d
	}
}

// RegisterProbe installs a health probe for a component
func (h *HealthMonitor) RegisterProbe(component Component, probe Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[component] = probe
	h.logger.Info("health_probe_registered", zap.String("component", string(component)))
}

// RunChecks executes all registered probes once, each bounded by the probe
// timeout, and records the results on the error monitor
func (h *HealthMonitor) RunChecks(ctx context.Context) map[Component]ProbeResult {
	h.mu.Lock()
	probes := make(map[Component]Probe, len(h.probes))
	for c, p := range h.probes {
		probes[c] = p
	}
	timeout := h.probeTimeout
	h.mu.Unlock()

	results := make(map[Component]ProbeResult, len(probes))
	for component, probe := range probes {
		start := time.Now()
		err := h.runProbe(ctx, probe, timeout)
		result := ProbeResult{
			Component: component,
			Healthy:   err == nil,
			LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
			LastCheck: time.Now(),
		}
		if err != nil {
			result.Detail = err.Error()
			h.errorMonitor.Register(component, err, map[string]any{"health_check": true})
		}
		h.errorMonitor.SetProbeResult(result)
		results[component] = result
	}
	return results
}

// runProbe bounds one probe with the configured timeout. There is no
// cooperative cancellation beyond the context: a probe that ignores its
// context keeps running in the background after being marked unhealthy.
func (h *HealthMonitor) runProbe(ctx context.Context, probe Probe, timeout time.Duration) error {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- probe(probeCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-probeCtx.Done():
		return fmt.Errorf("health probe timeout: %w", probeCtx.Err())
	}
}

// Start runs the continuous monitoring loop until the context is cancelled.
// The caller owns the lifecycle; run it in a goroutine.
func (h *HealthMonitor) Start(ctx context.Context) {
	h.mu.Lock()
	interval := h.interval
	h.mu.Unlock()

	h.logger.Info("health_monitoring_started", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("health_monitoring_stopped")
			return
		case <-ticker.C:
			h.RunChecks(ctx)
		}
	}
}
