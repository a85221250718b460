package persona

import "strings"

// PersonaType names a response style profile selected per request
type PersonaType string

const (
	PersonaTaskManager   PersonaType = "task_manager"   // practical task operations
	PersonaCEOStrategist PersonaType = "ceo_strategist" // high-level strategic planning
	PersonaAssistant     PersonaType = "assistant"      // general helpful responses
	PersonaAnalyst       PersonaType = "analyst"        // data analysis and insights
	PersonaExecutor      PersonaType = "executor"       // direct action execution
)

// RequestType categorizes what the user is asking for
type RequestType string

const (
	RequestTaskReview     RequestType = "task_review"
	RequestTaskCleanup    RequestType = "task_cleanup"
	RequestTaskUpdate     RequestType = "task_update"
	RequestTaskCreation   RequestType = "task_creation"
	RequestBulkOperations RequestType = "bulk_operations"

	RequestStrategicPlanning RequestType = "strategic_planning"
	RequestPrioritySetting   RequestType = "priority_setting"
	RequestBusinessAnalysis  RequestType = "business_analysis"
	RequestGoalPlanning      RequestType = "goal_planning"

	RequestHelp    RequestType = "help"
	RequestGeneral RequestType = "general"
)

// strategicOverrides force the CEO strategist persona regardless of any other
// pattern match
var strategicOverrides = []string{
	"ceo", "strategic", "business strategy", "revenue focus",
	"growth strategy", "business priorities", "what should i focus",
}

// requestPatterns holds the substring patterns for each request type. The
// lists are matched verbatim; changing them changes classification behavior
// that callers and tests depend on.
var requestPatterns = map[RequestType][]string{
	RequestTaskReview: {
		"review all tasks", "analyze tasks", "look at tasks", "check tasks",
		"task analysis", "evaluate tasks", "assess tasks", "audit tasks",
		"analyze my tasks", "review my tasks", "look at my tasks",
	},
	RequestTaskCleanup: {
		"clean up tasks", "remove tasks", "delete tasks", "cleanup tasks",
		"remove irrelevant", "doesnt make sense", "doesn't make sense",
		"get rid of", "eliminate tasks", "prune tasks", "remove duplicates",
		"clean up my tasks", "cleanup my tasks",
	},
	RequestTaskUpdate: {
		"update task", "change task", "modify task", "edit task",
		"mark done", "complete task", "finish task", "status update",
	},
	RequestTaskCreation: {
		"create task", "add task", "new task", "task:", "todo:",
		"make task", "generate task",
	},
	RequestBulkOperations: {
		"update all", "change all", "bulk update", "mass update",
		"all tasks", "everything", "batch", "multiple tasks",
		"mark all", "set all", "update all tasks", "change all tasks",
	},
	RequestStrategicPlanning: {
		"strategy", "strategic", "business plan", "roadmap", "vision",
		"long term", "big picture", "growth", "scale", "expand",
	},
	RequestPrioritySetting: {
		"priorities", "focus", "important", "urgent", "what should i",
		"where to spend", "time allocation", "resource allocation",
		"what should i focus", "show me priorities", "business priorities",
	},
	RequestBusinessAnalysis: {
		"business", "revenue", "growth", "opportunities", "market",
		"competitive", "performance", "metrics", "kpi",
	},
	RequestGoalPlanning: {
		"goal", "objective", "target", "milestone", "achieve",
		"accomplish", "aim", "outcome",
	},
	RequestHelp:    {"help", "how to", "guide", "tutorial", "explain", "how do i use"},
	RequestGeneral: {}, // catch-all
}

// classificationOrder is checked most-operationally-specific first. The
// ordering is a tie-break contract: a text matching both cleanup and review
// patterns classifies as cleanup.
var classificationOrder = []RequestType{
	RequestTaskCleanup,
	RequestTaskReview,
	RequestBulkOperations,
	RequestTaskUpdate,
	RequestTaskCreation,
	RequestPrioritySetting,
	RequestBusinessAnalysis,
	RequestGoalPlanning,
	RequestStrategicPlanning,
	RequestHelp,
}

// personaForRequest maps request types onto personas
var personaForRequest = map[RequestType]PersonaType{
	RequestTaskReview:     PersonaTaskManager,
	RequestTaskCleanup:    PersonaTaskManager,
	RequestTaskUpdate:     PersonaTaskManager,
	RequestTaskCreation:   PersonaTaskManager,
	RequestBulkOperations: PersonaTaskManager,

	RequestStrategicPlanning: PersonaCEOStrategist,
	RequestPrioritySetting:   PersonaCEOStrategist,
	RequestBusinessAnalysis:  PersonaCEOStrategist,
	RequestGoalPlanning:      PersonaCEOStrategist,

	RequestHelp:    PersonaAssistant,
	RequestGeneral: PersonaAssistant,
}

// Classify maps free text to a request type and persona. It is a pure
// function of its inputs: lowercase the text, apply the strategic override
// check, then walk the fixed classification order and return the first
// request type with a matching pattern. Unmatched text falls back to
// (general, assistant).
func Classify(userText string, detectedAreas []string) (RequestType, PersonaType) {
	_ = detectedAreas // reserved: areas influence prompt content, not routing
	lower := strings.ToLower(userText)

	for _, keyword := range strategicOverrides {
		if strings.Contains(lower, keyword) {
			return RequestStrategicPlanning, PersonaCEOStrategist
		}
	}

	for _, requestType := range classificationOrder {
		for _, pattern := range requestPatterns[requestType] {
			if strings.Contains(lower, pattern) {
				return requestType, personaForRequest[requestType]
			}
		}
	}

	return RequestGeneral, PersonaAssistant
}
