package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/persona"
	"github.com/opsbrain/ceo-operator/internal/queue"
	"github.com/opsbrain/ceo-operator/internal/services/ai"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"go.uber.org/zap"
)

type stubStore struct {
	tasks []models.Task
	err   error
}

func (s *stubStore) ListTasks(context.Context) ([]models.Task, error) { return s.tasks, s.err }
func (s *stubStore) UpdateTask(context.Context, string, taskops.TaskPatch) error {
	return nil
}
func (s *stubStore) ArchiveTask(context.Context, string) error { return nil }
func (s *stubStore) CreateTask(context.Context, string, taskops.TaskPatch) (string, error) {
	return "t1", nil
}

type stubProvider struct {
	reply   string
	err     error
	prompts []string
}

func (p *stubProvider) Complete(_ context.Context, _, userPrompt string) (string, error) {
	p.prompts = append(p.prompts, userPrompt)
	return p.reply, p.err
}

func (p *stubProvider) Chat(context.Context, string, []ai.ChatMessage) (string, error) {
	return p.reply, p.err
}

type stubPoster struct {
	messages []string
	threads  []string
}

func (p *stubPoster) PostMessage(_ context.Context, _ string, text, threadTS string) error {
	p.messages = append(p.messages, text)
	p.threads = append(p.threads, threadTS)
	return nil
}

type stubQueue struct {
	jobs []*queue.Job
	err  error
}

func (q *stubQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}
func (q *stubQueue) Close() error                      { return nil }
func (q *stubQueue) HealthCheck(context.Context) error { return nil }

func newTestHandler(store *stubStore, provider *stubProvider, poster *stubPoster, jobs *stubQueue) *SlackHandler {
	logger := zap.NewNop()
	h := NewSlackHandler(store, provider, persona.NewComposer(), poster, jobs, nil, nil,
		healing.NewErrorMonitor(logger), logger)
	// Run background work inline so tests observe it synchronously
	h.background = func(fn func(ctx context.Context)) {
		fn(context.Background())
	}
	return h
}

func postEvent(t *testing.T, h *SlackHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)
	return rec
}

func TestHandleEventURLVerification(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&stubStore{}, &stubProvider{}, &stubPoster{}, &stubQueue{})
	rec := postEvent(t, h, `{"type": "url_verification", "challenge": "abc123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["challenge"] != "abc123" {
		t.Fatalf("challenge = %q", resp["challenge"])
	}
}

func TestHandleEventIgnoresBotMessages(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{reply: "hi"}
	poster := &stubPoster{}
	h := newTestHandler(&stubStore{}, provider, poster, &stubQueue{})

	rec := postEvent(t, h, `{"type": "event_callback", "event": {"type": "message", "subtype": "bot_message", "text": "hi", "channel": "C1", "ts": "1.0"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(poster.messages) != 0 || len(provider.prompts) != 0 {
		t.Fatal("bot messages must not produce replies")
	}
}

func TestHandleEventRepliesWithLLM(t *testing.T) {
	t.Parallel()

	store := &stubStore{tasks: []models.Task{{ID: "1", Title: "Write launch announcement"}}}
	provider := &stubProvider{reply: "Focus on the launch."}
	poster := &stubPoster{}
	h := newTestHandler(store, provider, poster, &stubQueue{})

	rec := postEvent(t, h, `{"type": "event_callback", "event": {"type": "message", "text": "what should my team work on", "channel": "C1", "ts": "100.1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(poster.messages) != 1 || poster.messages[0] != "Focus on the launch." {
		t.Fatalf("posted = %v", poster.messages)
	}
	if poster.threads[0] != "100.1" {
		t.Fatalf("thread = %s, want event ts", poster.threads[0])
	}
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "Write launch announcement") {
		t.Fatal("prompt must include the task backlog")
	}
}

func TestHandleEventBulkRequestGoesToQueue(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{reply: "should not be called"}
	poster := &stubPoster{}
	jobs := &stubQueue{}
	h := newTestHandler(&stubStore{}, provider, poster, jobs)

	rec := postEvent(t, h, `{"type": "event_callback", "event": {"type": "message", "text": "mark all tasks as done", "channel": "C1", "ts": "5.5"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("enqueued = %d, want 1", len(jobs.jobs))
	}
	job := jobs.jobs[0]
	if job.Type != queue.JobTypeBulkOperation || job.Operation == nil || job.Operation.Type != models.BulkOpStatusUpdate {
		t.Fatalf("job = %+v", job)
	}
	if job.Channel != "C1" || job.ThreadTS != "5.5" {
		t.Fatalf("reply target = %s/%s", job.Channel, job.ThreadTS)
	}
	if len(provider.prompts) != 0 {
		t.Fatal("bulk requests must not reach the LLM")
	}
	if len(poster.messages) != 1 || !strings.Contains(poster.messages[0], "status_update") {
		t.Fatalf("confirmation = %v", poster.messages)
	}
}

func TestHandleEventLLMFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: errors.New("model overloaded")}
	poster := &stubPoster{}
	h := newTestHandler(&stubStore{}, provider, poster, &stubQueue{})

	postEvent(t, h, `{"type": "event_callback", "event": {"type": "message", "text": "good morning", "channel": "C1", "ts": "1.0"}}`)
	if len(poster.messages) != 1 || !strings.Contains(poster.messages[0], "trouble reaching") {
		t.Fatalf("fallback reply = %v", poster.messages)
	}
}

func TestHandleEventThreadedReplyUsesThreadTS(t *testing.T) {
	t.Parallel()

	poster := &stubPoster{}
	h := newTestHandler(&stubStore{}, &stubProvider{reply: "ok"}, poster, &stubQueue{})

	postEvent(t, h, `{"type": "event_callback", "event": {"type": "message", "text": "hello", "channel": "C1", "ts": "2.0", "thread_ts": "1.0"}}`)
	if poster.threads[0] != "1.0" {
		t.Fatalf("thread = %s, want parent thread_ts", poster.threads[0])
	}
}
