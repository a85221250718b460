package taskops

import (
	"testing"

	"github.com/opsbrain/ceo-operator/internal/models"
)

func TestParseBulkRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		wantType   models.BulkOperationType
		wantValues map[string]string
	}{
		{
			name:       "mark all done",
			text:       "please mark all tasks as done",
			wantType:   models.BulkOpStatusUpdate,
			wantValues: map[string]string{"status": "Done"},
		},
		{
			name:       "set all complete",
			text:       "set all of these to complete",
			wantType:   models.BulkOpStatusUpdate,
			wantValues: map[string]string{"status": "Done"},
		},
		{
			name:       "change all in progress",
			text:       "change all tasks to in progress",
			wantType:   models.BulkOpStatusUpdate,
			wantValues: map[string]string{"status": "In Progress"},
		},
		{
			name:       "set priority high",
			text:       "set priority to high for everything",
			wantType:   models.BulkOpPriorityUpdate,
			wantValues: map[string]string{"priority": "High"},
		},
		{
			name:       "delete all",
			text:       "delete all the old tasks",
			wantType:   models.BulkOpDelete,
			wantValues: map[string]string{},
		},
		{
			name:       "remove all",
			text:       "remove all of them",
			wantType:   models.BulkOpDelete,
			wantValues: map[string]string{},
		},
		{
			name:       "assign to project",
			text:       "assign to project Atlas please",
			wantType:   models.BulkOpProjectAssignment,
			wantValues: map[string]string{"project": "Atlas"},
		},
		{
			name:       "move to project",
			text:       "move to project Phoenix",
			wantType:   models.BulkOpProjectAssignment,
			wantValues: map[string]string{"project": "Phoenix"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			op := ParseBulkRequest(tt.text)
			if op == nil {
				t.Fatalf("ParseBulkRequest(%q) = nil", tt.text)
			}
			if op.Type != tt.wantType {
				t.Fatalf("type = %s, want %s", op.Type, tt.wantType)
			}
			if !op.Filters.IsEmpty() {
				t.Fatal("parsed operations must use an empty filter")
			}
			if !op.ConfirmationRequired {
				t.Fatal("parsed operations must require confirmation")
			}
			if len(op.NewValues) != len(tt.wantValues) {
				t.Fatalf("new values = %v, want %v", op.NewValues, tt.wantValues)
			}
			for k, want := range tt.wantValues {
				if got := op.NewValues[k]; got != want {
					t.Fatalf("new values[%s] = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestParseBulkRequestNoMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "plain question", text: "what should I work on today?"},
		{name: "status phrase without action verb", text: "all my tasks are done"},
		{name: "priority phrase without level", text: "set priority for everything"},
		{name: "project phrase with no name", text: "move to project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if op := ParseBulkRequest(tt.text); op != nil {
				t.Fatalf("ParseBulkRequest(%q) = %+v, want nil", tt.text, op)
			}
		})
	}
}
