package healing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestMonitor() (*ErrorMonitor, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	m := NewErrorMonitor(zap.NewNop())
	m.now = clock.Now
	m.sleep = func(time.Duration) {}
	for _, cb := range m.Breakers() {
		cb.now = clock.Now
	}
	return m, clock
}

func TestAssessSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		component Component
		err       error
		want      Severity
	}{
		{name: "database is critical", component: ComponentDatabase, err: errors.New("syntax error"), want: SeverityCritical},
		{name: "authentication is critical", component: ComponentAuthentication, err: errors.New("bad token"), want: SeverityCritical},
		{name: "timeout is high", component: ComponentSlackAPI, err: errors.New("request timeout"), want: SeverityHigh},
		{name: "connection is high", component: ComponentNotionAPI, err: errors.New("connection refused"), want: SeverityHigh},
		{name: "rate limit is medium", component: ComponentOpenAIAPI, err: errors.New("rate limit exceeded"), want: SeverityMedium},
		{name: "quota is medium", component: ComponentOpenAIAPI, err: errors.New("quota exhausted"), want: SeverityMedium},
		{name: "invalid input is low", component: ComponentWebhook, err: fmt.Errorf("bad payload: %w", ErrInvalidInput), want: SeverityLow},
		{name: "unknown is medium", component: ComponentTaskProcessing, err: errors.New("something odd"), want: SeverityMedium},
		{name: "component trumps message", component: ComponentDatabase, err: errors.New("rate limit"), want: SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := assessSeverity(tt.component, tt.err); got != tt.want {
				t.Fatalf("assessSeverity(%s, %v) = %s, want %s", tt.component, tt.err, got, tt.want)
			}
		})
	}
}

func TestRegisterTriggersRecoveryForHighSeverity(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()

	event := m.Register(ComponentSlackAPI, errors.New("request timeout"), nil)
	if event.Severity != SeverityHigh {
		t.Fatalf("severity = %s, want high", event.Severity)
	}
	if !event.RecoveryAttempted {
		t.Fatal("high severity must attempt recovery")
	}
	if !event.RecoverySuccessful {
		t.Fatal("default recovery for external API should succeed")
	}
}

func TestRegisterSkipsRecoveryForMediumSeverity(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()

	event := m.Register(ComponentTaskProcessing, errors.New("odd failure"), nil)
	if event.RecoveryAttempted {
		t.Fatal("medium severity must not attempt recovery")
	}
}

func TestCustomRecoveryStrategyOverridesDefault(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	err := errors.New("request timeout")
	errType := fmt.Sprintf("%T", err)

	invoked := false
	m.RegisterRecoveryStrategy(ComponentSlackAPI, errType, func(event *ErrorEvent) bool {
		invoked = true
		event.RecoveryActions = append(event.RecoveryActions, "custom")
		return false
	})

	event := m.Register(ComponentSlackAPI, err, nil)
	if !invoked {
		t.Fatal("custom strategy not invoked")
	}
	if event.RecoverySuccessful {
		t.Fatal("strategy returned false, event must record failure")
	}
}

func TestErrorHistoryBounded(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	for i := 0; i < maxErrorHistory+50; i++ {
		m.Register(ComponentTaskProcessing, errors.New("noise"), nil)
	}

	m.mu.Lock()
	got := len(m.history)
	m.mu.Unlock()
	if got != maxErrorHistory {
		t.Fatalf("history length = %d, want %d", got, maxErrorHistory)
	}
}

func TestRecentErrorsWindow(t *testing.T) {
	t.Parallel()

	m, clock := newTestMonitor()

	m.Register(ComponentTaskProcessing, errors.New("old"), nil)
	clock.Advance(2 * time.Hour)
	m.Register(ComponentTaskProcessing, errors.New("fresh"), nil)

	recent := m.RecentErrors()
	if len(recent) != 1 {
		t.Fatalf("recent errors = %d, want 1", len(recent))
	}
	if recent[0].Message != "fresh" {
		t.Fatalf("recent message = %q, want fresh", recent[0].Message)
	}
}

func TestGetHealthSummaryClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		seed   func(m *ErrorMonitor)
		want   string
	}{
		{
			name: "no errors is healthy",
			seed: func(m *ErrorMonitor) {},
			want: "healthy",
		},
		{
			name: "critical error dominates",
			seed: func(m *ErrorMonitor) {
				m.Register(ComponentDatabase, errors.New("down"), nil)
			},
			want: "critical",
		},
		{
			name: "more than three high errors is degraded",
			seed: func(m *ErrorMonitor) {
				for i := 0; i < 4; i++ {
					m.Register(ComponentSlackAPI, errors.New("request timeout"), nil)
				}
			},
			want: "degraded",
		},
		{
			name: "more than ten total is unstable",
			seed: func(m *ErrorMonitor) {
				for i := 0; i < 11; i++ {
					m.Register(ComponentTaskProcessing, errors.New("noise"), nil)
				}
			},
			want: "unstable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newTestMonitor()
			tt.seed(m)
			summary := m.GetHealthSummary()
			if summary.OverallHealth != tt.want {
				t.Fatalf("overall health = %s, want %s", summary.OverallHealth, tt.want)
			}
		})
	}
}

func TestGuardedCallFailsFastWhenOpen(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	cb := m.Breaker(ComponentNotionAPI)
	for i := 0; i < DefaultFailureThreshold; i++ {
		cb.afterCall(errors.New("boom"))
	}

	calls := 0
	err := m.GuardedCall(ComponentNotionAPI, nil, func() error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if calls != 0 {
		t.Fatal("open breaker must not invoke fn")
	}
	if len(m.RecentErrors()) != 0 {
		t.Fatal("breaker rejection must not register a new error")
	}
}

func TestGuardedCallRegistersFailures(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	boom := errors.New("odd failure")

	if err := m.GuardedCall(ComponentNotionAPI, nil, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want underlying error", err)
	}
	recent := m.RecentErrors()
	if len(recent) != 1 {
		t.Fatalf("registered errors = %d, want 1", len(recent))
	}
	if recent[0].Component != ComponentNotionAPI {
		t.Fatalf("component = %s, want notion_api", recent[0].Component)
	}
}

func TestObservePassesErrorThrough(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	boom := errors.New("odd failure")

	if err := m.Observe(ComponentTaskProcessing, nil, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want underlying error", err)
	}
	if err := m.Observe(ComponentTaskProcessing, nil, func() error { return nil }); err != nil {
		t.Fatalf("success path err = %v", err)
	}
	if len(m.RecentErrors()) != 1 {
		t.Fatalf("registered errors = %d, want 1", len(m.RecentErrors()))
	}
}

type recordingTaskCreator struct {
	titles []string
	err    error
}

func (r *recordingTaskCreator) CreateRecoveryTask(_ context.Context, title, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.titles = append(r.titles, title)
	return nil
}

func TestRecoveryCoordinatorCriticalResetsBreakers(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	m.Register(ComponentDatabase, errors.New("down"), nil)
	cb := m.Breaker(ComponentSlackAPI)
	for i := 0; i < DefaultFailureThreshold; i++ {
		cb.afterCall(errors.New("boom"))
	}
	if cb.State() != BreakerOpen {
		t.Fatal("breaker not open before recovery")
	}

	creator := &recordingTaskCreator{}
	rc := NewRecoveryCoordinator(m, creator, nil, zap.NewNop())
	trigger := m.RecentErrors()[0]
	rc.InitiateSystemRecovery(context.Background(), trigger)

	if got := cb.State(); got != BreakerClosed {
		t.Fatalf("breaker state after critical recovery = %s, want CLOSED", got)
	}
	if len(m.RecentErrors()) != 0 {
		t.Fatal("critical recovery must clear error history")
	}
	if len(creator.titles) != 1 {
		t.Fatalf("recovery tasks created = %d, want 1", len(creator.titles))
	}
}

func TestRecoveryCoordinatorDegradedTripsHalfOpen(t *testing.T) {
	t.Parallel()

	m, clock := newTestMonitor()
	for i := 0; i < 4; i++ {
		m.Register(ComponentSlackAPI, errors.New("request timeout"), nil)
	}
	cb := m.Breaker(ComponentSlackAPI)
	for i := 0; i < DefaultFailureThreshold; i++ {
		cb.afterCall(errors.New("boom"))
	}
	clock.Advance(2 * time.Minute)

	rc := NewRecoveryCoordinator(m, nil, nil, zap.NewNop())
	rc.InitiateSystemRecovery(context.Background(), m.RecentErrors()[0])

	if got := cb.State(); got != BreakerHalfOpen {
		t.Fatalf("breaker state after degraded recovery = %s, want HALF_OPEN", got)
	}
}

func TestRecoveryCoordinatorSurvivesTaskCreationFailure(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	m.Register(ComponentDatabase, errors.New("down"), nil)

	creator := &recordingTaskCreator{err: errors.New("store down")}
	rc := NewRecoveryCoordinator(m, creator, nil, zap.NewNop())
	rc.InitiateSystemRecovery(context.Background(), m.RecentErrors()[0])

	if len(m.RecentErrors()) != 0 {
		t.Fatal("recovery must complete despite task creation failure")
	}
}

func TestHealthMonitorRunChecks(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	h := NewHealthMonitor(m, zap.NewNop())

	h.RegisterProbe(ComponentSlackAPI, func(ctx context.Context) error { return nil })
	h.RegisterProbe(ComponentNotionAPI, func(ctx context.Context) error { return errors.New("api down") })

	results := h.RunChecks(context.Background())
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if !results[ComponentSlackAPI].Healthy {
		t.Fatal("slack probe should be healthy")
	}
	if results[ComponentNotionAPI].Healthy {
		t.Fatal("notion probe should be unhealthy")
	}

	summary := m.GetHealthSummary()
	if healthy, ok := summary.ComponentHealth[ComponentNotionAPI]; !ok || healthy {
		t.Fatal("probe failure must reach the health summary")
	}
	if len(m.RecentErrors()) != 1 {
		t.Fatalf("probe failure registrations = %d, want 1", len(m.RecentErrors()))
	}
}

func TestHealthMonitorProbeTimeout(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor()
	h := NewHealthMonitor(m, zap.NewNop())
	h.probeTimeout = 20 * time.Millisecond

	h.RegisterProbe(ComponentNetwork, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	results := h.RunChecks(context.Background())
	if results[ComponentNetwork].Healthy {
		t.Fatal("hung probe must be reported unhealthy")
	}
}
