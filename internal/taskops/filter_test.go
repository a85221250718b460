package taskops

import (
	"testing"

	"github.com/opsbrain/ceo-operator/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "1", Title: "Write launch announcement", Status: "To Do", Priority: "High", Project: "Marketing", Notes: "draft in shared doc"},
		{ID: "2", Title: "Fix billing webhook", Status: "In Progress", Priority: "High", Project: "Platform", DueDate: "2025-06-15"},
		{ID: "3", Title: "Review Q2 budget", Status: "Done", Priority: "Medium", Project: "Finance"},
		{ID: "4", Title: "Call supplier", Status: "To Do", Priority: "Low", Project: "Operations", Notes: "ask about billing terms"},
	}
}

func TestFilterTasks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		filter  models.TaskFilter
		wantIDs []string
	}{
		{
			name:    "empty filter matches all",
			filter:  models.TaskFilter{},
			wantIDs: []string{"1", "2", "3", "4"},
		},
		{
			name:    "status is case insensitive",
			filter:  models.TaskFilter{Status: "to do"},
			wantIDs: []string{"1", "4"},
		},
		{
			name:    "priority exact field",
			filter:  models.TaskFilter{Priority: "high"},
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "project is substring match",
			filter:  models.TaskFilter{Project: "market"},
			wantIDs: []string{"1"},
		},
		{
			name:    "contains text searches title and notes",
			filter:  models.TaskFilter{ContainsText: "billing"},
			wantIDs: []string{"2", "4"},
		},
		{
			name:    "has due date true",
			filter:  models.TaskFilter{HasDueDate: boolPtr(true)},
			wantIDs: []string{"2"},
		},
		{
			name:    "has due date false",
			filter:  models.TaskFilter{HasDueDate: boolPtr(false)},
			wantIDs: []string{"1", "3", "4"},
		},
		{
			name:    "fields combine with AND",
			filter:  models.TaskFilter{Status: "To Do", Priority: "High"},
			wantIDs: []string{"1"},
		},
		{
			name:    "no match",
			filter:  models.TaskFilter{Status: "Done", Priority: "High"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := FilterTasks(sampleTasks(), tt.filter)
			gotIDs := make([]string, 0, len(got))
			for _, task := range got {
				gotIDs = append(gotIDs, task.ID)
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("matched %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range tt.wantIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Fatalf("matched %v, want %v", gotIDs, tt.wantIDs)
				}
			}
		})
	}
}

func TestFilterTasksPreservesOrder(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		{ID: "b", Title: "second", Priority: "High"},
		{ID: "a", Title: "first", Priority: "High"},
	}
	got := FilterTasks(tasks, models.TaskFilter{Priority: "High"})
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("order not preserved: %+v", got)
	}
}
