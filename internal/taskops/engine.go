package taskops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/validation"
	"go.uber.org/zap"
)

const (
	// DefaultMutationDelay is the pause between successful per-item store
	// calls. It is a rate-limit guard for the external API, not a tunable
	// performance knob.
	DefaultMutationDelay = 100 * time.Millisecond

	notesTimestampLayout = "2006-01-02 15:04"
)

// TaskPatch carries the fields of a single task mutation. Nil fields are left
// untouched by the store.
type TaskPatch struct {
	Status   *string
	Priority *string
	Project  *string
	Notes    *string
	DueDate  *string
}

// Store is the external task store consumed by the engine
type Store interface {
	// ListTasks returns a full snapshot of all task records
	ListTasks(ctx context.Context) ([]models.Task, error)

	// UpdateTask applies a patch to a single task
	UpdateTask(ctx context.Context, id string, patch TaskPatch) error

	// ArchiveTask removes a task from the active set
	ArchiveTask(ctx context.Context, id string) error

	// CreateTask creates a new task record
	CreateTask(ctx context.Context, title string, patch TaskPatch) (string, error)
}

// Engine executes bulk operations against the external task store. Each
// execution re-fetches the full task set, so the staleness window is one
// fetch+mutate round trip; concurrent external edits are not guarded against.
type Engine struct {
	store    Store
	logger   *zap.Logger
	delay    time.Duration
	now      func() time.Time
	mutators map[models.BulkOperationType]mutatorFunc
}

type mutatorFunc func(ctx context.Context, tasks []models.Task, newValues map[string]string) *models.TaskOperationResult

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithMutationDelay overrides the inter-call delay (tests pass zero)
func WithMutationDelay(d time.Duration) EngineOption {
	return func(e *Engine) { e.delay = d }
}

// WithClock overrides the timestamp source for notes appends
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a bulk operation engine
func NewEngine(store Store, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		logger: logger,
		delay:  DefaultMutationDelay,
		now:    time.Now,
	}
	e.mutators = map[models.BulkOperationType]mutatorFunc{
		models.BulkOpStatusUpdate:      e.bulkStatusUpdate,
		models.BulkOpPriorityUpdate:    e.bulkPriorityUpdate,
		models.BulkOpDelete:            e.bulkDelete,
		models.BulkOpProjectAssignment: e.bulkProjectAssignment,
		models.BulkOpNotesAppend:       e.bulkNotesAppend,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute fetches the full task set, filters it, and applies the operation's
// mutator to every match. An empty match set is a success with zero affected
// tasks, not an error. Per-item failures are collected without aborting the
// batch; Success stays true as long as at least one item was mutated.
func (e *Engine) Execute(ctx context.Context, op *models.BulkOperation) *models.TaskOperationResult {
	if err := validation.ValidateBulkOperation(op); err != nil {
		return &models.TaskOperationResult{
			Success: false,
			Message: fmt.Sprintf("Invalid bulk operation: %v", err),
			Errors:  []string{err.Error()},
		}
	}

	allTasks, err := e.store.ListTasks(ctx)
	if err != nil {
		e.logger.Error("bulk_operation_fetch_failed",
			zap.String("operation_type", string(op.Type)),
			zap.Error(err),
		)
		return &models.TaskOperationResult{
			Success: false,
			Message: fmt.Sprintf("Error executing bulk operation: %v", err),
			Errors:  []string{err.Error()},
		}
	}

	targets := FilterTasks(allTasks, op.Filters)
	if len(targets) == 0 {
		return &models.TaskOperationResult{
			Success:       true,
			AffectedCount: 0,
			Message:       "No tasks matched the filter criteria.",
			AffectedTasks: []models.TaskRef{},
		}
	}

	mutator, ok := e.mutators[op.Type]
	if !ok {
		return &models.TaskOperationResult{
			Success: false,
			Message: fmt.Sprintf("Unsupported operation type: %s", op.Type),
			Errors:  []string{"operation not implemented"},
		}
	}

	result := mutator(ctx, targets, op.NewValues)
	e.logger.Info("bulk_operation_executed",
		zap.String("operation_type", string(op.Type)),
		zap.Int("target_count", len(targets)),
		zap.Int("affected_count", result.AffectedCount),
		zap.Int("error_count", len(result.Errors)),
	)
	return result
}

// forEachTarget runs the per-item mutation sequentially, isolating per-item
// failures into the errors list and pausing between successful calls. It
// records the specific tasks that were mutated rather than assuming failures
// trail successes.
func (e *Engine) forEachTarget(ctx context.Context, tasks []models.Task, mutate func(models.Task) error) (affected []models.TaskRef, errs []string) {
	affected = make([]models.TaskRef, 0, len(tasks))
	for _, task := range tasks {
		if err := mutate(task); err != nil {
			errs = append(errs, fmt.Sprintf("Failed to update %s: %v", task.Title, err))
			continue
		}
		affected = append(affected, models.TaskRef{ID: task.ID, Title: task.Title})
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Sprintf("operation cancelled: %v", ctx.Err()))
			return affected, errs
		case <-time.After(e.delay):
		}
	}
	return affected, errs
}

func (e *Engine) bulkStatusUpdate(ctx context.Context, tasks []models.Task, newValues map[string]string) *models.TaskOperationResult {
	status, ok := newValues["status"]
	if !ok {
		return missingValueResult("status")
	}
	affected, errs := e.forEachTarget(ctx, tasks, func(t models.Task) error {
		return e.store.UpdateTask(ctx, t.ID, TaskPatch{Status: &status})
	})
	return &models.TaskOperationResult{
		Success:       len(affected) > 0,
		AffectedCount: len(affected),
		Message:       fmt.Sprintf("Updated status to '%s' for %d/%d tasks", status, len(affected), len(tasks)),
		AffectedTasks: affected,
		Errors:        errs,
	}
}

func (e *Engine) bulkPriorityUpdate(ctx context.Context, tasks []models.Task, newValues map[string]string) *models.TaskOperationResult {
	priority, ok := newValues["priority"]
	if !ok {
		return missingValueResult("priority")
	}
	affected, errs := e.forEachTarget(ctx, tasks, func(t models.Task) error {
		return e.store.UpdateTask(ctx, t.ID, TaskPatch{Priority: &priority})
	})
	return &models.TaskOperationResult{
		Success:       len(affected) > 0,
		AffectedCount: len(affected),
		Message:       fmt.Sprintf("Updated priority to '%s' for %d/%d tasks", priority, len(affected), len(tasks)),
		AffectedTasks: affected,
		Errors:        errs,
	}
}

func (e *Engine) bulkDelete(ctx context.Context, tasks []models.Task, _ map[string]string) *models.TaskOperationResult {
	affected, errs := e.forEachTarget(ctx, tasks, func(t models.Task) error {
		return e.store.ArchiveTask(ctx, t.ID)
	})
	return &models.TaskOperationResult{
		Success:       len(affected) > 0,
		AffectedCount: len(affected),
		Message:       fmt.Sprintf("Archived %d/%d tasks", len(affected), len(tasks)),
		AffectedTasks: affected,
		Errors:        errs,
	}
}

func (e *Engine) bulkProjectAssignment(ctx context.Context, tasks []models.Task, newValues map[string]string) *models.TaskOperationResult {
	project, ok := newValues["project"]
	if !ok {
		return missingValueResult("project")
	}
	affected, errs := e.forEachTarget(ctx, tasks, func(t models.Task) error {
		return e.store.UpdateTask(ctx, t.ID, TaskPatch{Project: &project})
	})
	return &models.TaskOperationResult{
		Success:       len(affected) > 0,
		AffectedCount: len(affected),
		Message:       fmt.Sprintf("Assigned project '%s' to %d/%d tasks", project, len(affected), len(tasks)),
		AffectedTasks: affected,
		Errors:        errs,
	}
}

// bulkNotesAppend concatenates a timestamped note onto each task's existing
// notes. Read-modify-write on the snapshot: two concurrent appends to the same
// task can race; accepted limitation.
func (e *Engine) bulkNotesAppend(ctx context.Context, tasks []models.Task, newValues map[string]string) *models.TaskOperationResult {
	note, ok := newValues["note"]
	if !ok {
		return missingValueResult("note")
	}
	timestamp := e.now().Format(notesTimestampLayout)
	affected, errs := e.forEachTarget(ctx, tasks, func(t models.Task) error {
		combined := fmt.Sprintf("%s\n\n[%s] %s", t.Notes, timestamp, note)
		combined = trimNotes(combined)
		return e.store.UpdateTask(ctx, t.ID, TaskPatch{Notes: &combined})
	})
	return &models.TaskOperationResult{
		Success:       len(affected) > 0,
		AffectedCount: len(affected),
		Message:       fmt.Sprintf("Added notes to %d/%d tasks", len(affected), len(tasks)),
		AffectedTasks: affected,
		Errors:        errs,
	}
}

// trimNotes strips the leading blank lines produced when appending to a task
// that had no notes yet
func trimNotes(s string) string {
	return strings.TrimSpace(s)
}

func missingValueResult(key string) *models.TaskOperationResult {
	return &models.TaskOperationResult{
		Success: false,
		Message: fmt.Sprintf("Error executing bulk operation: missing new value %q", key),
		Errors:  []string{fmt.Sprintf("missing new value %q", key)},
	}
}
