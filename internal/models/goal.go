package models

import "time"

// GoalStatus represents the lifecycle state of a business goal
type GoalStatus string

const (
	GoalStatusNotStarted GoalStatus = "not_started"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusBlocked    GoalStatus = "blocked"
	GoalStatusDeferred   GoalStatus = "deferred"
)

// GoalPriority orders goals for planning output
type GoalPriority int

const (
	GoalPriorityLow GoalPriority = iota + 1
	GoalPriorityMedium
	GoalPriorityHigh
	GoalPriorityCritical
)

// Goal is a business goal record. The planning core reads goals but never
// mutates them.
type Goal struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Area           string            `json:"area"` // SALES, DELIVERY, PRODUCT, FINANCIAL, TEAM, PROCESS
	Status         GoalStatus        `json:"status"`
	Priority       GoalPriority      `json:"priority"`
	TargetDate     string            `json:"target_date"`
	Progress       int               `json:"progress_percentage"`
	WeeklyActions  []string          `json:"weekly_actions,omitempty"`
	DailyActions   []string          `json:"daily_actions,omitempty"`
	SuccessMetrics map[string]string `json:"success_metrics,omitempty"`
	TargetValue    string            `json:"target_value,omitempty"`
	CreatedAt      time.Time         `json:"created_date"`
	UpdatedAt      time.Time         `json:"last_updated"`
	Notes          string            `json:"notes,omitempty"`
}
