package healing

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/opsbrain/ceo-operator/internal/models"
	"go.uber.org/zap"
)

// RecoveryTaskCreator files a human-visible recovery task in the external
// task store
type RecoveryTaskCreator interface {
	CreateRecoveryTask(ctx context.Context, title, notes string) error
}

// RecoveryLog persists recovery runs for later inspection
type RecoveryLog interface {
	RecordRecovery(ctx context.Context, rec models.RecoveryRecord) error
}

// RecoveryCoordinator drives system-wide recovery after a severe error. Only
// one recovery runs at a time; overlapping triggers are dropped.
type RecoveryCoordinator struct {
	errorMonitor *ErrorMonitor
	taskCreator  RecoveryTaskCreator // optional
	recoveryLog  RecoveryLog         // optional
	logger       *zap.Logger
	inFlight     atomic.Bool
}

// NewRecoveryCoordinator creates a coordinator. taskCreator and recoveryLog
// may be nil; both are best-effort sinks.
func NewRecoveryCoordinator(errorMonitor *ErrorMonitor, taskCreator RecoveryTaskCreator, recoveryLog RecoveryLog, logger *zap.Logger) *RecoveryCoordinator {
	return &RecoveryCoordinator{
		errorMonitor: errorMonitor,
		taskCreator:  taskCreator,
		recoveryLog:  recoveryLog,
		logger:       logger,
	}
}

// InitiateSystemRecovery assesses system health and applies the matching
// recovery measures: critical health resets every breaker and clears the
// error history; degraded health flips cooled-down open breakers to
// HALF_OPEN. A recovery task and log record are written best-effort; their
// failures never fail the recovery itself.
func (rc *RecoveryCoordinator) InitiateSystemRecovery(ctx context.Context, trigger *ErrorEvent) {
	if !rc.inFlight.CompareAndSwap(false, true) {
		rc.logger.Info("recovery_already_in_progress")
		return
	}
	defer rc.inFlight.Store(false)

	rc.logger.Info("system_recovery_started",
		zap.String("trigger_component", string(trigger.Component)),
		zap.String("trigger_severity", string(trigger.Severity)),
	)

	summary := rc.errorMonitor.GetHealthSummary()

	rc.fileRecoveryTask(ctx, trigger, summary)

	switch summary.OverallHealth {
	case "critical":
		rc.applyCriticalRecovery()
	case "degraded":
		rc.applyDegradedRecovery()
	}

	if rc.recoveryLog != nil {
		rec := models.RecoveryRecord{
			Component: string(trigger.Component),
			Severity:  string(trigger.Severity),
			ErrorType: trigger.ErrorType,
			Message:   trigger.Message,
			Health:    summary.OverallHealth,
		}
		if err := rc.recoveryLog.RecordRecovery(ctx, rec); err != nil {
			rc.logger.Warn("recovery_record_write_failed", zap.Error(err))
		}
	}

	rc.logger.Info("system_recovery_completed", zap.String("health", summary.OverallHealth))
}

func (rc *RecoveryCoordinator) applyCriticalRecovery() {
	rc.logger.Info("applying_critical_recovery")
	for _, cb := range rc.errorMonitor.Breakers() {
		cb.Reset()
	}
	rc.errorMonitor.ClearHistory()
}

func (rc *RecoveryCoordinator) applyDegradedRecovery() {
	rc.logger.Info("applying_degraded_recovery")
	for component, cb := range rc.errorMonitor.Breakers() {
		if cb.TripHalfOpenIfElapsed() {
			rc.logger.Info("breaker_half_open", zap.String("component", string(component)))
		}
	}
}

// fileRecoveryTask writes a recovery task into the external task store so the
// operator sees the incident in their normal workflow. Best-effort: its own
// failures are only logged.
func (rc *RecoveryCoordinator) fileRecoveryTask(ctx context.Context, trigger *ErrorEvent, summary HealthSummary) {
	if rc.taskCreator == nil {
		return
	}

	title := fmt.Sprintf("System Recovery Required - %s", trigger.Component)
	notes := fmt.Sprintf(`AUTOMATIC SYSTEM RECOVERY INITIATED

Trigger Event:
- Component: %s
- Error: %s - %s
- Severity: %s
- Timestamp: %s

System Health Summary:
- Overall Health: %s
- Recent Errors: %d
- Critical Errors: %d

RECOVERY STEPS:
1. Investigate root cause of %s failure
2. Verify system health checks are passing
3. Review error logs and patterns
4. Test component functionality
5. Update monitoring thresholds if needed

DELIVERABLE: System restored to healthy state with improved resilience`,
		trigger.Component, trigger.ErrorType, trigger.Message, trigger.Severity,
		trigger.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		summary.OverallHealth, summary.RecentErrors, summary.CriticalErrors,
		trigger.Component,
	)

	if err := rc.taskCreator.CreateRecoveryTask(ctx, title, notes); err != nil {
		rc.logger.Warn("recovery_task_creation_failed", zap.Error(err))
		return
	}
	rc.logger.Info("recovery_task_created")
}
