// Package scheduler drives the recurring operator cadence: the Monday weekly
// plan, the Wednesday midweek check-in, the Friday retrospective, and nightly
// conversation pruning. All output goes to a single Slack channel.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/services/ai"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"go.uber.org/zap"
)

// UpdateKind names one recurring update
type UpdateKind string

const (
	UpdateWeeklyPlan   UpdateKind = "weekly_plan"
	UpdateMidweekNudge UpdateKind = "midweek_nudge"
	UpdateFridayRetro  UpdateKind = "friday_retro"
)

// ErrUnknownUpdate is returned for an update kind the scheduler does not run
var ErrUnknownUpdate = fmt.Errorf("unknown update kind")

const (
	checkInterval      = time.Minute
	messageTimeout     = 2 * time.Minute
	conversationMaxAge = 30 * 24 * time.Hour
)

// Poster posts messages to Slack
type Poster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
}

// GoalSource provides active business goals for summaries
type GoalSource interface {
	ActiveGoals(ctx context.Context) ([]models.Goal, error)
}

// Pruner removes aged conversation history
type Pruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Config controls which updates run and where they post
type Config struct {
	Channel        string
	MondayPlan     bool
	WednesdayNudge bool
	FridayRetro    bool
	WeeklyHours    int
}

// DefaultConfig enables the full cadence with a five hour weekly budget
func DefaultConfig(channel string) Config {
	return Config{
		Channel:        channel,
		MondayPlan:     true,
		WednesdayNudge: true,
		FridayRetro:    true,
		WeeklyHours:    5,
	}
}

type slot struct {
	kind   UpdateKind
	day    time.Weekday
	hour   int
	minute int
}

// Scheduler fires the recurring updates. Start it once; it stops when its
// context is cancelled.
type Scheduler struct {
	cfg      Config
	store    taskops.Store
	goals    GoalSource // optional
	provider ai.Provider
	poster   Poster
	pruner   Pruner // optional
	monitor  *healing.ErrorMonitor
	logger   *zap.Logger

	slots     []slot
	lastFired map[UpdateKind]string // kind -> date it last ran

	now func() time.Time
}

// New creates a scheduler. goals and pruner may be nil.
func New(
	cfg Config,
	store taskops.Store,
	goals GoalSource,
	provider ai.Provider,
	poster Poster,
	pruner Pruner,
	monitor *healing.ErrorMonitor,
	logger *zap.Logger,
) *Scheduler {
	s := &Scheduler{
		cfg:       cfg,
		store:     store,
		goals:     goals,
		provider:  provider,
		poster:    poster,
		pruner:    pruner,
		monitor:   monitor,
		logger:    logger,
		lastFired: make(map[UpdateKind]string),
		now:       time.Now,
	}
	if cfg.MondayPlan {
		s.slots = append(s.slots, slot{UpdateWeeklyPlan, time.Monday, 9, 0})
	}
	if cfg.WednesdayNudge {
		s.slots = append(s.slots, slot{UpdateMidweekNudge, time.Wednesday, 14, 0})
	}
	if cfg.FridayRetro {
		s.slots = append(s.slots, slot{UpdateFridayRetro, time.Friday, 17, 0})
	}
	return s
}

// Start blocks until ctx is cancelled, checking the schedule every minute
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler_started",
		zap.String("channel", s.cfg.Channel),
		zap.Int("slots", len(s.slots)),
	)
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	var lastPruneDate string
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler_stopped")
			return
		case <-ticker.C:
			s.runDue(ctx)
			now := s.now()
			if date := now.Format("2006-01-02"); now.Hour() == 3 && date != lastPruneDate {
				lastPruneDate = date
				s.pruneConversations(ctx)
			}
		}
	}
}

// runDue fires any slot matching the current minute, at most once per day
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now()
	date := now.Format("2006-01-02")
	for _, sl := range s.slots {
		if now.Weekday() != sl.day || now.Hour() != sl.hour || now.Minute() != sl.minute {
			continue
		}
		if s.lastFired[sl.kind] == date {
			continue
		}
		s.lastFired[sl.kind] = date
		s.fire(ctx, sl.kind)
	}
}

func (s *Scheduler) fire(ctx context.Context, kind UpdateKind) {
	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()

	if err := s.TriggerUpdate(ctx, kind); err != nil {
		s.logger.Error("scheduled_update_failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("scheduled_update_posted", zap.String("kind", string(kind)))
}

// TriggerUpdate builds and posts one update immediately. The CLI uses this
// for manual runs.
func (s *Scheduler) TriggerUpdate(ctx context.Context, kind UpdateKind) error {
	var (
		message string
		err     error
	)
	switch kind {
	case UpdateWeeklyPlan:
		message, err = s.buildWeeklyPlan(ctx)
	case UpdateMidweekNudge:
		message, err = s.buildMidweekNudge(ctx)
	case UpdateFridayRetro:
		message, err = s.buildFridayRetro(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownUpdate, kind)
	}
	if err != nil {
		return err
	}

	if err := s.poster.PostMessage(ctx, s.cfg.Channel, message, ""); err != nil {
		s.monitor.Register(healing.ComponentSlackAPI, err, map[string]any{"operation": "scheduled_update"})
		return fmt.Errorf("posting %s: %w", kind, err)
	}
	return nil
}

func (s *Scheduler) buildWeeklyPlan(ctx context.Context) (string, error) {
	now := s.now()
	summary := s.weeklySummary(ctx)

	prompt := fmt.Sprintf(
		"Plan the week for a solo founder with %d hours available. Current state:\n%s\n"+
			"Produce a short strategic plan: top 3 priorities, what to delegate or drop, and one risk to watch.",
		s.cfg.WeeklyHours, summary)
	plan := s.generate(ctx, "weekly_plan", prompt,
		"Start the week by picking the three tasks with the highest revenue impact and blocking time for them first.")

	return fmt.Sprintf("🎯 *CEO Weekly Plan* — week of %s\n\n*Available time*: %dh\n\n*Summary*\n%s\n\n*Strategic plan*\n%s",
		now.Format("January 2, 2006"), s.cfg.WeeklyHours, summary, plan), nil
}

func (s *Scheduler) buildMidweekNudge(ctx context.Context) (string, error) {
	now := s.now()
	weekProgress := (int(now.Weekday()) + 1) * 100 / 7

	nudge := s.generate(ctx, "midweek_nudge",
		"Write a two sentence midweek check-in for a solo founder. Encourage focus on high priority tasks.",
		"Half the week is gone. Protect the remaining hours for the tasks that actually move revenue.")

	return fmt.Sprintf("💡 *Midweek Check-in* — %s\n\n• You're %d%% through the week\n• Weekly budget: %dh\n\n%s",
		now.Format("Monday, January 2"), weekProgress, s.cfg.WeeklyHours, nudge), nil
}

func (s *Scheduler) buildFridayRetro(ctx context.Context) (string, error) {
	now := s.now()
	summary := s.weeklySummary(ctx)

	retro := s.generate(ctx, "friday_retro",
		fmt.Sprintf("Write a short Friday retrospective for a solo founder. Current state:\n%s", summary),
		"Close the week: note what shipped, archive what stalled, and write Monday's top priority before logging off.")

	return fmt.Sprintf("🎉 *Friday Retrospective* — week ending %s\n\n*Current state*\n%s\n\n*Reflection*\n%s",
		now.Format("January 2, 2006"), summary, retro), nil
}

// generate asks the LLM under the circuit breaker and degrades to fallback
// text when the call fails
func (s *Scheduler) generate(ctx context.Context, operation, prompt, fallback string) string {
	const system = "You are OpsBrain, an AI business assistant for a solo founder. Keep responses Slack-friendly: short paragraphs, no markdown headers."

	var reply string
	err := s.monitor.GuardedCall(healing.ComponentOpenAIAPI, map[string]any{"operation": operation}, func() error {
		var err error
		reply, err = s.provider.Complete(ctx, system, prompt)
		return err
	})
	if err != nil {
		s.logger.Warn("scheduled_generation_degraded",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return fallback
	}
	return reply
}

// weeklySummary reports open task and goal counts, degrading line by line
// when a source is unavailable
func (s *Scheduler) weeklySummary(ctx context.Context) string {
	var lines []string

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		lines = append(lines, "• task backlog unavailable")
	} else {
		highPriority := 0
		for _, t := range tasks {
			if t.Priority == "High" {
				highPriority++
			}
		}
		lines = append(lines, fmt.Sprintf("• %d active tasks (%d high priority)", len(tasks), highPriority))
	}

	if s.goals != nil {
		if goals, err := s.goals.ActiveGoals(ctx); err == nil {
			lines = append(lines, fmt.Sprintf("• %d active business goals", len(goals)))
		}
	}

	lines = append(lines, fmt.Sprintf("• %dh available this week", s.cfg.WeeklyHours))
	return strings.Join(lines, "\n")
}

func (s *Scheduler) pruneConversations(ctx context.Context) {
	if s.pruner == nil {
		return
	}
	removed, err := s.pruner.PruneOlderThan(ctx, conversationMaxAge)
	if err != nil {
		s.monitor.Register(healing.ComponentDatabase, err, map[string]any{"operation": "prune_conversations"})
		return
	}
	if removed > 0 {
		s.logger.Info("conversations_pruned", zap.Int64("removed", removed))
	}
}
