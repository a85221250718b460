package handlers

import (
	"net/http"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"go.uber.org/zap"
)

// DashboardHandler serves the JSON monitoring API behind the operator
// dashboard: task distributions, cleanup suggestions, goals, and system
// health. Read-only; all mutation goes through Slack or the CLI.
type DashboardHandler struct {
	store   taskops.Store
	monitor *healing.ErrorMonitor
	goals   GoalSource // optional
	logger  *zap.Logger
}

// NewDashboardHandler creates the dashboard API handler
func NewDashboardHandler(store taskops.Store, monitor *healing.ErrorMonitor, goals GoalSource, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		store:   store,
		monitor: monitor,
		goals:   goals,
		logger:  logger,
	}
}

// TaskDistribution handles GET /api/dashboard/tasks
func (h *DashboardHandler) TaskDistribution(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "task_store_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, taskops.AnalyzeDistribution(tasks))
}

// CleanupCandidates handles GET /api/dashboard/cleanup
func (h *DashboardHandler) CleanupCandidates(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "task_store_unavailable", err.Error())
		return
	}
	candidates := taskops.IdentifyCleanupCandidates(tasks)
	respondJSON(w, http.StatusOK, map[string]any{
		"total_candidates": len(candidates),
		"candidates":       candidates,
	})
}

// HealthSummary handles GET /api/dashboard/health
func (h *DashboardHandler) HealthSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.monitor.GetHealthSummary())
}

// Goals handles GET /api/dashboard/goals
func (h *DashboardHandler) Goals(w http.ResponseWriter, r *http.Request) {
	if h.goals == nil {
		respondJSON(w, http.StatusOK, map[string]any{"goals": []any{}})
		return
	}
	goals, err := h.goals.ActiveGoals(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "goal_store_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total": len(goals),
		"goals": goals,
	})
}
