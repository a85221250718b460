package notion

import (
	"context"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/taskops"
)

// GuardedStore wraps a task store with the error monitor's circuit breaker.
// Every call goes through the notion_api breaker; failures are classified and
// recorded, and an open breaker fails fast without touching the API.
type GuardedStore struct {
	store   taskops.Store
	monitor *healing.ErrorMonitor
}

// NewGuardedStore wraps the given store
func NewGuardedStore(store taskops.Store, monitor *healing.ErrorMonitor) *GuardedStore {
	return &GuardedStore{store: store, monitor: monitor}
}

func (g *GuardedStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := g.monitor.GuardedCall(healing.ComponentNotionAPI, map[string]any{"operation": "list_tasks"}, func() error {
		var err error
		tasks, err = g.store.ListTasks(ctx)
		return err
	})
	return tasks, err
}

func (g *GuardedStore) UpdateTask(ctx context.Context, id string, patch taskops.TaskPatch) error {
	return g.monitor.GuardedCall(healing.ComponentNotionAPI, map[string]any{"operation": "update_task", "task_id": id}, func() error {
		return g.store.UpdateTask(ctx, id, patch)
	})
}

func (g *GuardedStore) ArchiveTask(ctx context.Context, id string) error {
	return g.monitor.GuardedCall(healing.ComponentNotionAPI, map[string]any{"operation": "archive_task", "task_id": id}, func() error {
		return g.store.ArchiveTask(ctx, id)
	})
}

func (g *GuardedStore) CreateTask(ctx context.Context, title string, patch taskops.TaskPatch) (string, error) {
	var id string
	err := g.monitor.GuardedCall(healing.ComponentNotionAPI, map[string]any{"operation": "create_task"}, func() error {
		var err error
		id, err = g.store.CreateTask(ctx, title, patch)
		return err
	})
	return id, err
}

// CreateRecoveryTask files a recovery task with High priority in the store.
// Satisfies the recovery coordinator's task creator without exposing the full
// store interface to it.
func (g *GuardedStore) CreateRecoveryTask(ctx context.Context, title, notes string) error {
	status := "To Do"
	priority := "High"
	_, err := g.CreateTask(ctx, title, taskops.TaskPatch{
		Status:   &status,
		Priority: &priority,
		Notes:    &notes,
	})
	return err
}
