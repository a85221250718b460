package workers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/queue"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"go.uber.org/zap"
)

type memStore struct {
	tasks   []models.Task
	updated []string
	created []string
	fail    error
}

func (s *memStore) ListTasks(context.Context) ([]models.Task, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return s.tasks, nil
}

func (s *memStore) UpdateTask(_ context.Context, id string, _ taskops.TaskPatch) error {
	if s.fail != nil {
		return s.fail
	}
	s.updated = append(s.updated, id)
	return nil
}

func (s *memStore) ArchiveTask(_ context.Context, id string) error {
	return s.UpdateTask(context.Background(), id, taskops.TaskPatch{})
}

func (s *memStore) CreateTask(_ context.Context, title string, _ taskops.TaskPatch) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.created = append(s.created, title)
	return "id-" + title, nil
}

type memReplier struct {
	messages []string
	threads  []string
}

func (r *memReplier) PostMessage(_ context.Context, _ string, text, threadTS string) error {
	r.messages = append(r.messages, text)
	r.threads = append(r.threads, threadTS)
	return nil
}

func newTestWorker(store *memStore) (*BulkOpsWorker, *memReplier) {
	logger := zap.NewNop()
	engine := taskops.NewEngine(store, logger, taskops.WithMutationDelay(0))
	monitor := healing.NewErrorMonitor(logger)
	replier := &memReplier{}
	w := NewBulkOpsWorker(engine, store, nil, replier, monitor, logger)
	return w, replier
}

func TestProcessBulkOperationJob(t *testing.T) {
	t.Parallel()

	store := &memStore{tasks: []models.Task{
		{ID: "1", Title: "A", Status: "To Do"},
		{ID: "2", Title: "B", Status: "Done"},
	}}
	w, replier := newTestWorker(store)

	op := models.NewBulkOperation(models.BulkOpStatusUpdate,
		models.TaskFilter{Status: "To Do"},
		map[string]string{"status": "Done"})
	job := queue.NewBulkOperationJob(op, "C123", "171.5")

	if err := w.processJob(context.Background(), job); err != nil {
		t.Fatalf("processJob: %v", err)
	}
	if len(store.updated) != 1 || store.updated[0] != "1" {
		t.Fatalf("updated = %v, want [1]", store.updated)
	}
	if len(replier.messages) != 1 || !strings.Contains(replier.messages[0], "Updated status to 'Done'") {
		t.Fatalf("reply = %v", replier.messages)
	}
	if replier.threads[0] != "171.5" {
		t.Fatalf("thread = %s, want 171.5", replier.threads[0])
	}
}

func TestProcessBulkOperationStoreFailureReturnsError(t *testing.T) {
	t.Parallel()

	store := &memStore{fail: errors.New("store down")}
	w, replier := newTestWorker(store)

	op := models.NewBulkOperation(models.BulkOpStatusUpdate,
		models.TaskFilter{},
		map[string]string{"status": "Done"})
	job := queue.NewBulkOperationJob(op, "C123", "")

	if err := w.processJob(context.Background(), job); err == nil {
		t.Fatal("expected error for retry path")
	}
	if len(replier.messages) != 0 {
		t.Fatalf("no reply expected before retries are exhausted, got %v", replier.messages)
	}
}

func TestProcessBulkOperationMissingPayload(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorker(&memStore{})
	job := queue.NewBulkOperationJob(nil, "C123", "")
	job.Operation = nil

	err := w.processJob(context.Background(), job)
	if !errors.Is(err, healing.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestProcessTaskCreationJob(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	w, replier := newTestWorker(store)

	job := queue.NewTaskCreationJob("Follow up with supplier", "C123", "")
	if err := w.processJob(context.Background(), job); err != nil {
		t.Fatalf("processJob: %v", err)
	}
	if len(store.created) != 1 || store.created[0] != "Follow up with supplier" {
		t.Fatalf("created = %v", store.created)
	}
	if len(replier.messages) != 1 || !strings.Contains(replier.messages[0], "Created task") {
		t.Fatalf("reply = %v", replier.messages)
	}
}

func TestProcessUnknownJobType(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorker(&memStore{})
	job := queue.NewTaskCreationJob("x", "", "")
	job.Type = "mystery"

	if err := w.processJob(context.Background(), job); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}

func TestFormatResultListsFailures(t *testing.T) {
	t.Parallel()

	result := &models.TaskOperationResult{
		Success:       true,
		AffectedCount: 2,
		Message:       "Updated status to 'Done' for 2/3 tasks",
		Errors:        []string{"Failed to update C: conflict"},
	}
	text := formatResult(result)
	if !strings.Contains(text, "2/3 tasks") || !strings.Contains(text, "Failed to update C") {
		t.Fatalf("formatted = %q", text)
	}
}
