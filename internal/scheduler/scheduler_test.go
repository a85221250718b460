package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
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
	return "", nil
}

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Complete(context.Context, string, string) (string, error) {
	return p.reply, p.err
}

func (p *stubProvider) Chat(context.Context, string, []ai.ChatMessage) (string, error) {
	return p.reply, p.err
}

type stubPoster struct {
	channels []string
	messages []string
	err      error
}

func (p *stubPoster) PostMessage(_ context.Context, channel, text, _ string) error {
	if p.err != nil {
		return p.err
	}
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, text)
	return nil
}

type stubPruner struct {
	removed int64
	ages    []time.Duration
}

func (p *stubPruner) PruneOlderThan(_ context.Context, age time.Duration) (int64, error) {
	p.ages = append(p.ages, age)
	return p.removed, nil
}

func newTestScheduler(store *stubStore, provider *stubProvider, poster *stubPoster) *Scheduler {
	logger := zap.NewNop()
	return New(DefaultConfig("C-ops"), store, nil, provider, poster, nil,
		healing.NewErrorMonitor(logger), logger)
}

func TestTriggerWeeklyPlanPostsToChannel(t *testing.T) {
	t.Parallel()

	store := &stubStore{tasks: []models.Task{
		{ID: "1", Title: "Send proposal", Priority: "High"},
		{ID: "2", Title: "Update site"},
	}}
	provider := &stubProvider{reply: "Focus on the proposal first."}
	poster := &stubPoster{}
	s := newTestScheduler(store, provider, poster)

	if err := s.TriggerUpdate(context.Background(), UpdateWeeklyPlan); err != nil {
		t.Fatalf("TriggerUpdate: %v", err)
	}
	if len(poster.messages) != 1 || poster.channels[0] != "C-ops" {
		t.Fatalf("posted = %v to %v", poster.messages, poster.channels)
	}
	msg := poster.messages[0]
	if !strings.Contains(msg, "2 active tasks (1 high priority)") {
		t.Fatalf("summary missing from message:\n%s", msg)
	}
	if !strings.Contains(msg, "Focus on the proposal first.") {
		t.Fatalf("plan content missing from message:\n%s", msg)
	}
}

func TestTriggerUpdateDegradesWhenLLMFails(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: errors.New("model overloaded")}
	poster := &stubPoster{}
	s := newTestScheduler(&stubStore{}, provider, poster)

	if err := s.TriggerUpdate(context.Background(), UpdateMidweekNudge); err != nil {
		t.Fatalf("TriggerUpdate: %v", err)
	}
	if len(poster.messages) != 1 || !strings.Contains(poster.messages[0], "Protect the remaining hours") {
		t.Fatalf("fallback text missing: %v", poster.messages)
	}
}

func TestTriggerUpdateUnknownKind(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(&stubStore{}, &stubProvider{}, &stubPoster{})
	if err := s.TriggerUpdate(context.Background(), "bogus"); !errors.Is(err, ErrUnknownUpdate) {
		t.Fatalf("err = %v, want ErrUnknownUpdate", err)
	}
}

func TestTriggerUpdatePostFailure(t *testing.T) {
	t.Parallel()

	poster := &stubPoster{err: errors.New("channel_not_found")}
	s := newTestScheduler(&stubStore{}, &stubProvider{reply: "ok"}, poster)

	if err := s.TriggerUpdate(context.Background(), UpdateFridayRetro); err == nil {
		t.Fatal("expected error when posting fails")
	}
}

func TestRunDueFiresOncePerDay(t *testing.T) {
	t.Parallel()

	poster := &stubPoster{}
	s := newTestScheduler(&stubStore{}, &stubProvider{reply: "plan"}, poster)

	// Monday 09:00
	monday := time.Date(2026, 8, 24, 9, 0, 30, 0, time.UTC)
	s.now = func() time.Time { return monday }

	s.runDue(context.Background())
	s.runDue(context.Background())
	if len(poster.messages) != 1 {
		t.Fatalf("fired %d times within the same minute, want 1", len(poster.messages))
	}

	// Next Monday fires again
	s.now = func() time.Time { return monday.AddDate(0, 0, 7) }
	s.runDue(context.Background())
	if len(poster.messages) != 2 {
		t.Fatalf("fired %d times across weeks, want 2", len(poster.messages))
	}
}

func TestRunDueSkipsOffSlotMinutes(t *testing.T) {
	t.Parallel()

	poster := &stubPoster{}
	s := newTestScheduler(&stubStore{}, &stubProvider{reply: "plan"}, poster)

	// Monday 09:01 misses the 09:00 slot
	s.now = func() time.Time { return time.Date(2026, 8, 24, 9, 1, 0, 0, time.UTC) }
	s.runDue(context.Background())
	if len(poster.messages) != 0 {
		t.Fatalf("fired outside the slot minute: %v", poster.messages)
	}
}

func TestPruneConversations(t *testing.T) {
	t.Parallel()

	pruner := &stubPruner{removed: 4}
	logger := zap.NewNop()
	s := New(DefaultConfig("C-ops"), &stubStore{}, nil, &stubProvider{}, &stubPoster{}, pruner,
		healing.NewErrorMonitor(logger), logger)

	s.pruneConversations(context.Background())
	if len(pruner.ages) != 1 || pruner.ages[0] != conversationMaxAge {
		t.Fatalf("prune ages = %v", pruner.ages)
	}
}
