package models

import "strings"

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityHigh    TaskPriority = "High"
	TaskPriorityMedium  TaskPriority = "Medium"
	TaskPriorityLow     TaskPriority = "Low"
	TaskPriorityUnknown TaskPriority = "Unknown"
)

// Task is an in-memory snapshot of a task record from the external store.
// The store owns the record; a snapshot is fetched per operation and is not
// re-validated against concurrent external edits.
type Task struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	Project        string `json:"project"`
	Notes          string `json:"notes"`
	DueDate        string `json:"due_date,omitempty"`
	CreatedTime    string `json:"created_time,omitempty"`
	LastEditedTime string `json:"last_edited_time,omitempty"`
	URL            string `json:"url,omitempty"`
}

// TaskRef identifies a task in operation results
type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TaskFilter holds optional predicate fields for task selection.
// All set fields AND together; a zero filter matches every task.
type TaskFilter struct {
	Status       string `json:"status,omitempty"`
	Priority     string `json:"priority,omitempty"`
	Project      string `json:"project,omitempty"`
	ContainsText string `json:"contains_text,omitempty"`
	HasDueDate   *bool  `json:"has_due_date,omitempty"`
}

// IsEmpty reports whether the filter imposes no constraint
func (f TaskFilter) IsEmpty() bool {
	return f.Status == "" && f.Priority == "" && f.Project == "" &&
		f.ContainsText == "" && f.HasDueDate == nil
}

// Matches reports whether the task satisfies every set filter field.
// Status and priority compare case-insensitively; project and contains_text
// are case-insensitive substring checks, the latter over title and notes.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && !strings.EqualFold(t.Status, f.Status) {
		return false
	}
	if f.Priority != "" && !strings.EqualFold(t.Priority, f.Priority) {
		return false
	}
	if f.Project != "" && !strings.Contains(strings.ToLower(t.Project), strings.ToLower(f.Project)) {
		return false
	}
	if f.ContainsText != "" {
		needle := strings.ToLower(f.ContainsText)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Notes), needle) {
			return false
		}
	}
	if f.HasDueDate != nil {
		if *f.HasDueDate != (t.DueDate != "") {
			return false
		}
	}
	return true
}

// BulkOperationType represents the kind of bulk mutation
type BulkOperationType string

const (
	BulkOpStatusUpdate      BulkOperationType = "status_update"
	BulkOpPriorityUpdate    BulkOperationType = "priority_update"
	BulkOpDelete            BulkOperationType = "bulk_delete"
	BulkOpTagUpdate         BulkOperationType = "tag_update"
	BulkOpDueDateUpdate     BulkOperationType = "due_date_update"
	BulkOpNotesAppend       BulkOperationType = "notes_append"
	BulkOpProjectAssignment BulkOperationType = "project_assignment"
)

// BulkOperation is a single declared mutation applied to every task matching
// its filter. NewValues carries the per-type payload (e.g. "status": "Done").
type BulkOperation struct {
	Type                 BulkOperationType `json:"operation_type" validate:"required,bulk_operation_type"`
	Filters              TaskFilter        `json:"filters"`
	NewValues            map[string]string `json:"new_values"`
	ConfirmationRequired bool              `json:"confirmation_required"`
}

// NewBulkOperation creates a bulk operation with confirmation required by
// default. Confirmation is carried through but not yet enforced anywhere.
func NewBulkOperation(opType BulkOperationType, filters TaskFilter, newValues map[string]string) *BulkOperation {
	if newValues == nil {
		newValues = make(map[string]string)
	}
	return &BulkOperation{
		Type:                 opType,
		Filters:              filters,
		NewValues:            newValues,
		ConfirmationRequired: true,
	}
}

// TaskOperationResult reports the outcome of a bulk operation. Success is true
// iff at least one task was mutated; per-item failures land in Errors without
// flipping Success.
type TaskOperationResult struct {
	Success       bool      `json:"success"`
	AffectedCount int       `json:"affected_count"`
	Message       string    `json:"message"`
	AffectedTasks []TaskRef `json:"affected_tasks,omitempty"`
	Errors        []string  `json:"errors,omitempty"`
}
