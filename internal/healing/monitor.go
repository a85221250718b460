package healing

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity is a coarse error classification used to decide whether automatic
// recovery is triggered
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Component identifies an external system or internal subsystem an error
// originated from
type Component string

const (
	ComponentSlackAPI       Component = "slack_api"
	ComponentNotionAPI      Component = "notion_api"
	ComponentOpenAIAPI      Component = "openai_api"
	ComponentDatabase       Component = "database"
	ComponentWebhook        Component = "webhook"
	ComponentAuthentication Component = "authentication"
	ComponentTaskProcessing Component = "task_processing"
	ComponentMemory         Component = "memory"
	ComponentDisk           Component = "disk"
	ComponentNetwork        Component = "network"
)

// externalAPIComponents get circuit breakers and the default recovery strategy
var externalAPIComponents = []Component{ComponentSlackAPI, ComponentNotionAPI, ComponentOpenAIAPI}

// ErrorEvent is one recorded failure
type ErrorEvent struct {
	ID                 uuid.UUID      `json:"id"`
	Timestamp          time.Time      `json:"timestamp"`
	Component          Component      `json:"component"`
	Severity           Severity       `json:"severity"`
	ErrorType          string         `json:"error_type"`
	Message            string         `json:"message"`
	StackTrace         string         `json:"stack_trace,omitempty"`
	Context            map[string]any `json:"context,omitempty"`
	RecoveryAttempted  bool           `json:"recovery_attempted"`
	RecoverySuccessful bool           `json:"recovery_successful"`
	RecoveryActions    []string       `json:"recovery_actions,omitempty"`
}

// RecoveryStrategy attempts automated remediation for an error event and
// reports whether it succeeded
type RecoveryStrategy func(event *ErrorEvent) bool

// ProbeResult is the latest health probe outcome for a component
type ProbeResult struct {
	Component Component `json:"component"`
	Healthy   bool      `json:"healthy"`
	LatencyMS float64   `json:"latency_ms"`
	LastCheck time.Time `json:"last_check"`
	Detail    string    `json:"detail,omitempty"`
}

// HealthSummary is the aggregate system health view
type HealthSummary struct {
	OverallHealth   string                  `json:"overall_health"` // healthy, unstable, degraded, critical
	RecentErrors    int                     `json:"recent_errors"`
	CriticalErrors  int                     `json:"critical_errors"`
	HighErrors      int                     `json:"high_errors"`
	ComponentHealth map[Component]bool      `json:"component_health"`
	CircuitBreakers map[Component]BreakerState `json:"circuit_breakers"`
}

const (
	// maxErrorHistory bounds the in-memory error ring buffer
	maxErrorHistory = 1000
	// recentErrorWindow is the look-back window for health classification
	recentErrorWindow = time.Hour
)

// ErrorMonitor is the central error sink: it classifies severity, keeps a
// bounded history, holds the per-component circuit breakers, and dispatches
// recovery strategies for high-severity events. State is process-lifetime
// only; nothing is persisted here.
type ErrorMonitor struct {
	mu              sync.Mutex
	history         []*ErrorEvent
	componentHealth map[Component]ProbeResult
	breakers        map[Component]*CircuitBreaker
	strategies      map[string]RecoveryStrategy
	logger          *zap.Logger
	now             func() time.Time
	sleep           func(time.Duration)
}

// NewErrorMonitor creates a monitor with circuit breakers pre-registered for
// the external API components
func NewErrorMonitor(logger *zap.Logger) *ErrorMonitor {
	m := &ErrorMonitor{
		componentHealth: make(map[Component]ProbeResult),
		breakers:        make(map[Component]*CircuitBreaker),
		strategies:      make(map[string]RecoveryStrategy),
		logger:          logger,
		now:             time.Now,
		sleep:           time.Sleep,
	}
	for _, c := range externalAPIComponents {
		m.breakers[c] = NewCircuitBreaker(DefaultFailureThreshold, DefaultRecoveryTimeout)
	}
	return m
}

// Breaker returns the circuit breaker for a component, or nil if the
// component has none
func (m *ErrorMonitor) Breaker(component Component) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breakers[component]
}

// SetBreaker registers or replaces the breaker for a component
func (m *ErrorMonitor) SetBreaker(component Component, cb *CircuitBreaker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakers[component] = cb
}

// Register records an error event, assigns severity, and synchronously
// attempts recovery for HIGH and CRITICAL events. The recovery outcome is
// written back onto the returned event.
func (m *ErrorMonitor) Register(component Component, err error, context map[string]any) *ErrorEvent {
	if context == nil {
		context = map[string]any{}
	}
	severity := assessSeverity(component, err)

	event := &ErrorEvent{
		ID:         uuid.New(),
		Timestamp:  m.now(),
		Component:  component,
		Severity:   severity,
		ErrorType:  fmt.Sprintf("%T", err),
		Message:    err.Error(),
		StackTrace: string(debug.Stack()),
		Context:    context,
	}

	m.mu.Lock()
	m.history = append(m.history, event)
	if len(m.history) > maxErrorHistory {
		m.history = m.history[len(m.history)-maxErrorHistory:]
	}
	m.mu.Unlock()

	m.logger.Error("error_registered",
		zap.String("component", string(component)),
		zap.String("severity", string(severity)),
		zap.String("error_type", event.ErrorType),
		zap.Error(err),
	)

	if severity == SeverityHigh || severity == SeverityCritical {
		m.triggerRecovery(event)
	}

	return event
}

// ErrInvalidInput marks caller-input errors so severity classification can
// treat them as LOW rather than a systems failure
var ErrInvalidInput = errors.New("invalid input")

// assessSeverity applies the fixed severity rule table. Component identity
// trumps message content; validation errors rank lowest; unknown errors
// default to MEDIUM.
func assessSeverity(component Component, err error) Severity {
	if component == ComponentDatabase || component == ComponentAuthentication {
		return SeverityCritical
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") {
		return SeverityHigh
	}
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") {
		return SeverityMedium
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) || errors.Is(err, ErrInvalidInput) {
		return SeverityLow
	}

	return SeverityMedium
}

func (m *ErrorMonitor) triggerRecovery(event *ErrorEvent) {
	strategy := m.recoveryStrategy(event)
	success := strategy(event)
	event.RecoveryAttempted = true
	event.RecoverySuccessful = success
	if success {
		m.logger.Info("recovery_successful", zap.String("component", string(event.Component)))
	} else {
		m.logger.Warn("recovery_failed", zap.String("component", string(event.Component)))
	}
}

func (m *ErrorMonitor) recoveryStrategy(event *ErrorEvent) RecoveryStrategy {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strategyKey(event.Component, event.ErrorType)
	if s, ok := m.strategies[key]; ok {
		return s
	}
	return m.defaultRecovery
}

// defaultRecovery waits briefly and reports success for external API
// components; anything else is not recoverable without a registered strategy
func (m *ErrorMonitor) defaultRecovery(event *ErrorEvent) bool {
	event.RecoveryActions = append(event.RecoveryActions, "default_recovery")
	for _, c := range externalAPIComponents {
		if event.Component == c {
			m.sleep(2 * time.Second)
			return true
		}
	}
	return false
}

// RegisterRecoveryStrategy installs a remediation function for a specific
// (component, error type) pair
func (m *ErrorMonitor) RegisterRecoveryStrategy(component Component, errorType string, strategy RecoveryStrategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[strategyKey(component, errorType)] = strategy
	m.logger.Info("recovery_strategy_registered",
		zap.String("component", string(component)),
		zap.String("error_type", errorType),
	)
}

func strategyKey(component Component, errorType string) string {
	return string(component) + "_" + errorType
}

// SetProbeResult records the latest health probe outcome for a component
func (m *ErrorMonitor) SetProbeResult(result ProbeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.componentHealth[result.Component] = result
}

// RecentErrors returns events recorded within the look-back window
func (m *ErrorMonitor) RecentErrors() []*ErrorEvent {
	cutoff := m.now().Add(-recentErrorWindow)
	m.mu.Lock()
	defer m.mu.Unlock()
	var recent []*ErrorEvent
	for _, e := range m.history {
		if e.Timestamp.After(cutoff) {
			recent = append(recent, e)
		}
	}
	return recent
}

// ClearHistory drops the error history. Used by critical recovery to stop
// cascading classification.
func (m *ErrorMonitor) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}

// Breakers returns a snapshot of all registered breakers
func (m *ErrorMonitor) Breakers() map[Component]*CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[Component]*CircuitBreaker, len(m.breakers))
	for c, cb := range m.breakers {
		out[c] = cb
	}
	return out
}

// GetHealthSummary classifies overall health from the recent error window:
// critical (any critical error) > degraded (>3 high) > unstable (>10 total)
// > healthy.
func (m *ErrorMonitor) GetHealthSummary() HealthSummary {
	recent := m.RecentErrors()

	criticalCount, highCount := 0, 0
	for _, e := range recent {
		switch e.Severity {
		case SeverityCritical:
			criticalCount++
		case SeverityHigh:
			highCount++
		}
	}

	overall := "healthy"
	switch {
	case criticalCount > 0:
		overall = "critical"
	case highCount > 3:
		overall = "degraded"
	case len(recent) > 10:
		overall = "unstable"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	componentHealth := make(map[Component]bool, len(m.componentHealth))
	for c, h := range m.componentHealth {
		componentHealth[c] = h.Healthy
	}
	breakerStates := make(map[Component]BreakerState, len(m.breakers))
	for c, cb := range m.breakers {
		breakerStates[c] = cb.State()
	}

	return HealthSummary{
		OverallHealth:   overall,
		RecentErrors:    len(recent),
		CriticalErrors:  criticalCount,
		HighErrors:      highCount,
		ComponentHealth: componentHealth,
		CircuitBreakers: breakerStates,
	}
}

// Observe runs fn and registers any failure before passing the error back to
// the caller: catch, classify, record, re-raise.
func (m *ErrorMonitor) Observe(component Component, context map[string]any, fn func() error) error {
	err := fn()
	if err != nil {
		m.Register(component, err, context)
	}
	return err
}

// GuardedCall runs fn under the component's circuit breaker (when one is
// registered) and records non-rejection failures. Breaker rejections are not
// re-registered as new errors; they are the fail-fast signal itself.
func (m *ErrorMonitor) GuardedCall(component Component, context map[string]any, fn func() error) error {
	cb := m.Breaker(component)
	if cb == nil {
		return m.Observe(component, context, fn)
	}
	err := cb.Call(fn)
	if err != nil && !errors.Is(err, ErrCircuitOpen) {
		m.Register(component, err, context)
	}
	return err
}
