// Package goals manages business goals in a local JSON file. Goals feed the
// assistant's prompt context and the dashboard; nothing in the reply path
// mutates them.
package goals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsbrain/ceo-operator/internal/models"
	"go.uber.org/zap"
)

// ErrGoalNotFound is returned when a goal ID does not exist
var ErrGoalNotFound = errors.New("goal not found")

// goalAreas is the fixed set of business areas goals are grouped under
var goalAreas = []string{"SALES", "DELIVERY", "PRODUCT", "FINANCIAL", "TEAM", "PROCESS"}

// Manager is a file-backed goal store. All methods are safe for concurrent
// use; writes rewrite the whole file under the lock.
type Manager struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	goals map[string]models.Goal
}

// NewManager loads goals from path, creating an empty store if the file does
// not exist yet
func NewManager(path string, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		path:   path,
		logger: logger,
		goals:  make(map[string]models.Goal),
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading goal file: %w", err)
	}

	var stored map[string]models.Goal
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parsing goal file %s: %w", m.path, err)
	}
	m.goals = stored
	m.logger.Info("goals_loaded",
		zap.String("path", m.path),
		zap.Int("count", len(stored)),
	)
	return nil
}

// save writes the full goal set. Caller must hold the write lock. The write
// goes through a temp file so a crash never leaves a truncated store.
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.goals, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding goals: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating goal directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing goal file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replacing goal file: %w", err)
	}
	return nil
}

// CreateGoalParams holds the caller-supplied fields for a new goal
type CreateGoalParams struct {
	Title          string
	Description    string
	Area           string
	TargetDate     string
	WeeklyActions  []string
	DailyActions   []string
	SuccessMetrics map[string]string
}

// CreateGoal adds a new goal in not_started state at medium priority and
// returns its ID
func (m *Manager) CreateGoal(_ context.Context, params CreateGoalParams) (string, error) {
	if strings.TrimSpace(params.Title) == "" {
		return "", errors.New("goal title is required")
	}
	area := strings.ToUpper(strings.TrimSpace(params.Area))
	if area == "" {
		area = "PROCESS"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	goal := models.Goal{
		ID:             strings.ToLower(area) + "_" + uuid.NewString()[:8],
		Title:          params.Title,
		Description:    params.Description,
		Area:           area,
		Status:         models.GoalStatusNotStarted,
		Priority:       models.GoalPriorityMedium,
		TargetDate:     params.TargetDate,
		WeeklyActions:  params.WeeklyActions,
		DailyActions:   params.DailyActions,
		SuccessMetrics: params.SuccessMetrics,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	m.goals[goal.ID] = goal
	if err := m.save(); err != nil {
		delete(m.goals, goal.ID)
		return "", err
	}

	m.logger.Info("goal_created",
		zap.String("goal_id", goal.ID),
		zap.String("area", area),
	)
	return goal.ID, nil
}

// UpdateProgress sets a goal's progress percentage, clamped to [0, 100].
// Status follows progress unless the caller supplies one explicitly: 100
// completes the goal, anything above zero marks it in progress. A non-empty
// note is appended to the goal's dated note log.
func (m *Manager) UpdateProgress(_ context.Context, goalID string, progress int, status models.GoalStatus, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	goal.Progress = progress

	switch {
	case status != "":
		goal.Status = status
	case progress == 100:
		goal.Status = models.GoalStatusCompleted
	case progress > 0:
		goal.Status = models.GoalStatusInProgress
	}

	if note != "" {
		stamp := time.Now().UTC().Format("2006-01-02")
		goal.Notes = strings.TrimSpace(goal.Notes + "\n" + stamp + ": " + note)
	}
	goal.UpdatedAt = time.Now().UTC()

	m.goals[goalID] = goal
	return m.save()
}

// ActiveGoals returns goals that are neither completed nor deferred, highest
// priority first
func (m *Manager) ActiveGoals(_ context.Context) ([]models.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := make([]models.Goal, 0, len(m.goals))
	for _, goal := range m.goals {
		if goal.Status == models.GoalStatusCompleted || goal.Status == models.GoalStatusDeferred {
			continue
		}
		active = append(active, goal)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}

// ActionItem is one planned action with its owning goal's context
type ActionItem struct {
	GoalID    string              `json:"goal_id"`
	GoalTitle string              `json:"goal_title"`
	Area      string              `json:"area"`
	Action    string              `json:"action"`
	Priority  models.GoalPriority `json:"priority"`
}

// WeeklyActions returns the weekly actions across active goals, highest
// priority first. An empty area matches all areas.
func (m *Manager) WeeklyActions(area string) []ActionItem {
	return m.collectActions(area, func(g models.Goal) []string { return g.WeeklyActions })
}

// DailyActions returns the daily actions across active goals, highest
// priority first. An empty area matches all areas.
func (m *Manager) DailyActions(area string) []ActionItem {
	return m.collectActions(area, func(g models.Goal) []string { return g.DailyActions })
}

func (m *Manager) collectActions(area string, pick func(models.Goal) []string) []ActionItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	area = strings.ToUpper(strings.TrimSpace(area))
	items := make([]ActionItem, 0)
	for _, goal := range m.goals {
		if area != "" && goal.Area != area {
			continue
		}
		if goal.Status == models.GoalStatusCompleted || goal.Status == models.GoalStatusDeferred {
			continue
		}
		for _, action := range pick(goal) {
			items = append(items, ActionItem{
				GoalID:    goal.ID,
				GoalTitle: goal.Title,
				Area:      goal.Area,
				Action:    action,
				Priority:  goal.Priority,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Priority > items[j].Priority })
	return items
}

// DashboardOverview summarizes goal counts
type DashboardOverview struct {
	TotalGoals     int     `json:"total_goals"`
	CompletedGoals int     `json:"completed_goals"`
	InProgress     int     `json:"in_progress_goals"`
	BlockedGoals   int     `json:"blocked_goals"`
	CompletionRate float64 `json:"completion_rate"`
}

// Dashboard is the aggregate goal view served to the operator
type Dashboard struct {
	Overview            DashboardOverview  `json:"overview"`
	AreaProgress        map[string]float64 `json:"area_progress"`
	HighPriorityActions []ActionItem       `json:"high_priority_actions"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

// BuildDashboard computes the goal overview, average progress per area, and
// the top ten high priority weekly actions
func (m *Manager) BuildDashboard() Dashboard {
	m.mu.RLock()
	var (
		total     int
		completed int
		inProg    int
		blocked   int
	)
	areaSum := make(map[string]int)
	areaCount := make(map[string]int)
	for _, goal := range m.goals {
		total++
		switch goal.Status {
		case models.GoalStatusCompleted:
			completed++
		case models.GoalStatusInProgress:
			inProg++
		case models.GoalStatusBlocked:
			blocked++
		}
		areaSum[goal.Area] += goal.Progress
		areaCount[goal.Area]++
	}
	m.mu.RUnlock()

	areaProgress := make(map[string]float64, len(goalAreas))
	for _, area := range goalAreas {
		if n := areaCount[area]; n > 0 {
			areaProgress[area] = roundTenth(float64(areaSum[area]) / float64(n))
		} else {
			areaProgress[area] = 0
		}
	}

	rate := 0.0
	if total > 0 {
		rate = roundTenth(float64(completed) / float64(total) * 100)
	}

	highPriority := make([]ActionItem, 0)
	for _, item := range m.WeeklyActions("") {
		if item.Priority >= models.GoalPriorityHigh {
			highPriority = append(highPriority, item)
		}
	}
	if len(highPriority) > 10 {
		highPriority = highPriority[:10]
	}

	return Dashboard{
		Overview: DashboardOverview{
			TotalGoals:     total,
			CompletedGoals: completed,
			InProgress:     inProg,
			BlockedGoals:   blocked,
			CompletionRate: rate,
		},
		AreaProgress:        areaProgress,
		HighPriorityActions: highPriority,
		GeneratedAt:         time.Now().UTC(),
	}
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
