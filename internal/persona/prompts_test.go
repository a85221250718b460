package persona

import (
	"strings"
	"testing"

	"github.com/opsbrain/ceo-operator/internal/models"
)

func TestComposeRoutesByRequestType(t *testing.T) {
	t.Parallel()

	ctx := PromptContext{
		UserText:  "test request",
		Tasks:     []string{"Task one", "Task two"},
		TaskCount: 2,
	}

	tests := []struct {
		name        string
		requestType RequestType
		persona     PersonaType
		wantMarker  string
	}{
		{
			name:        "task review",
			requestType: RequestTaskReview,
			persona:     PersonaTaskManager,
			wantMarker:  "TASK MANAGER STYLE:",
		},
		{
			name:        "task cleanup",
			requestType: RequestTaskCleanup,
			persona:     PersonaTaskManager,
			wantMarker:  "TASK CLEANUP ANALYSIS:",
		},
		{
			name:        "bulk operations",
			requestType: RequestBulkOperations,
			persona:     PersonaTaskManager,
			wantMarker:  "BULK OPERATION HANDLER:",
		},
		{
			name:        "priority setting",
			requestType: RequestPrioritySetting,
			persona:     PersonaCEOStrategist,
			wantMarker:  "PRIORITY FRAMEWORK:",
		},
		{
			name:        "strategic planning uses persona default",
			requestType: RequestStrategicPlanning,
			persona:     PersonaCEOStrategist,
			wantMarker:  "CEO STRATEGIST MINDSET:",
		},
		{
			name:        "analyst default",
			requestType: RequestBusinessAnalysis,
			persona:     PersonaAnalyst,
			wantMarker:  "ANALYST PERSPECTIVE:",
		},
		{
			name:        "general falls to assistant",
			requestType: RequestGeneral,
			persona:     PersonaAssistant,
			wantMarker:  "ASSISTANT APPROACH:",
		},
		{
			name:        "unknown persona falls back to assistant",
			requestType: RequestGeneral,
			persona:     PersonaExecutor,
			wantMarker:  "ASSISTANT APPROACH:",
		},
	}

	composer := NewComposer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prompt := composer.Compose(tt.requestType, tt.persona, ctx)
			if !strings.Contains(prompt, tt.wantMarker) {
				t.Fatalf("prompt missing %q:\n%s", tt.wantMarker, prompt)
			}
			if !strings.Contains(prompt, ctx.UserText) {
				t.Fatal("prompt must embed the user text")
			}
		})
	}
}

func TestComposeRequestTemplateRequiresMatchingPersona(t *testing.T) {
	t.Parallel()

	// A priority-setting request answered under the assistant persona must not
	// use the CEO priorities template.
	composer := NewComposer()
	prompt := composer.Compose(RequestPrioritySetting, PersonaAssistant, PromptContext{UserText: "x"})
	if strings.Contains(prompt, "PRIORITY FRAMEWORK:") {
		t.Fatal("persona mismatch must skip the request template")
	}
	if !strings.Contains(prompt, "ASSISTANT APPROACH:") {
		t.Fatal("expected assistant fallback")
	}
}

func TestTaskListCapping(t *testing.T) {
	t.Parallel()

	tasks := make([]string, 30)
	for i := range tasks {
		tasks[i] = "Task " + string(rune('A'+i%26))
	}
	ctx := PromptContext{UserText: "review all tasks", Tasks: tasks, TaskCount: 30}

	prompt := NewComposer().Compose(RequestTaskReview, PersonaTaskManager, ctx)
	if got := strings.Count(prompt, "\n- "); got > 20 {
		t.Fatalf("review template rendered %d tasks, cap is 20", got)
	}
}

func TestCEOPlanningIncludesGoalsAndAreas(t *testing.T) {
	t.Parallel()

	ctx := PromptContext{
		UserText:      "quarterly strategy",
		DetectedAreas: []string{"sales", "product"},
		BusinessGoals: []models.Goal{
			{Title: "Reach 100 customers"},
			{Title: "Launch v2"},
			{Title: "Hire support lead"},
			{Title: "Goal four is dropped"},
		},
		TaskCount: 5,
	}

	prompt := NewComposer().Compose(RequestStrategicPlanning, PersonaCEOStrategist, ctx)
	if !strings.Contains(prompt, "Focus areas: sales, product") {
		t.Fatal("detected areas missing from prompt")
	}
	if !strings.Contains(prompt, "- Reach 100 customers") {
		t.Fatal("goals missing from prompt")
	}
	if strings.Contains(prompt, "Goal four is dropped") {
		t.Fatal("goals beyond the cap of 3 must be dropped")
	}
}

func TestAssistantIncludesRecentConversation(t *testing.T) {
	t.Parallel()

	ctx := PromptContext{
		UserText:            "thanks",
		ConversationContext: []string{"turn-1", "turn-2", "turn-3", "turn-4", "turn-5", "turn-6"},
	}

	prompt := NewComposer().Compose(RequestGeneral, PersonaAssistant, ctx)
	if strings.Contains(prompt, "turn-1") || strings.Contains(prompt, "turn-2") {
		t.Fatal("only the last four turns should render")
	}
	for _, turn := range []string{"turn-3", "turn-4", "turn-5", "turn-6"} {
		if !strings.Contains(prompt, turn) {
			t.Fatalf("turn %q missing from prompt", turn)
		}
	}
}
