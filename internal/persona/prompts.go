package persona

import (
	"fmt"
	"strings"

	"github.com/opsbrain/ceo-operator/internal/models"
)

// PromptContext bundles everything a template may render. Templates are pure
// string formatting over this struct; no I/O.
type PromptContext struct {
	UserText            string
	Tasks               []string
	BusinessGoals       []models.Goal
	DashboardData       map[string]any
	ConversationContext []string
	DetectedAreas       []string
	TaskCount           int
}

type templateFunc func(PromptContext) string

// Composer renders persona-specific LLM prompts from a classification and a
// context bundle
type Composer struct {
	byRequest      map[RequestType]templateFunc
	personaDefault map[PersonaType]templateFunc
}

// NewComposer builds the prompt dispatch tables
func NewComposer() *Composer {
	return &Composer{
		byRequest: map[RequestType]templateFunc{
			RequestTaskReview:      taskManagerReview,
			RequestTaskCleanup:     taskManagerCleanup,
			RequestBulkOperations:  taskManagerBulkUpdate,
			RequestPrioritySetting: ceoStrategistPriorities,
		},
		personaDefault: map[PersonaType]templateFunc{
			PersonaTaskManager:   taskManagerReview,
			PersonaCEOStrategist: ceoStrategistPlanning,
			PersonaAnalyst:       analystInsights,
			PersonaAssistant:     assistantGeneral,
		},
	}
}

// Compose renders the prompt for a classified request. Task-manager requests
// route by request type with review as the default; the CEO strategist uses
// the priorities template only for priority setting; every other persona has
// a single template, with the assistant as the final fallback.
func (c *Composer) Compose(requestType RequestType, persona PersonaType, ctx PromptContext) string {
	if tmpl, ok := c.byRequest[requestType]; ok && personaForRequest[requestType] == persona {
		return tmpl(ctx)
	}
	if tmpl, ok := c.personaDefault[persona]; ok {
		return tmpl(ctx)
	}
	return assistantGeneral(ctx)
}

// taskList renders up to max task titles as a bulleted list
func taskList(tasks []string, max int) string {
	if len(tasks) > max {
		tasks = tasks[:max]
	}
	var b strings.Builder
	for i, task := range tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s", task)
	}
	return b.String()
}

func taskManagerReview(ctx PromptContext) string {
	return fmt.Sprintf(`You are a Task Manager AI - practical, direct, and focused on task efficiency.

Current Tasks: %d tasks in system
User Request: "%s"

Your job: Analyze tasks practically and provide actionable feedback.

TASK MANAGER STYLE:
- Be specific about what needs to change
- Focus on actionability and clarity
- Identify duplicates, outdated items, unclear tasks
- No high-level strategy unless asked
- Give direct recommendations: "Remove X because Y", "Update Z to include W"

Task List (showing first 20):
%s

Analyze these tasks and give practical recommendations:`, ctx.TaskCount, ctx.UserText, taskList(ctx.Tasks, 20))
}

func taskManagerCleanup(ctx PromptContext) string {
	return fmt.Sprintf(`You are a Task Manager AI. The user wants to clean up their task list.

User Request: "%s"
Total Tasks: %d

TASK CLEANUP ANALYSIS:
Be aggressive in identifying tasks that should be removed:
1. Duplicates or near-duplicates
2. Vague or unclear tasks
3. Outdated or irrelevant items
4. Tasks that don't contribute to business goals
5. Authentication errors or technical debt that's not blocking

RESPONSE FORMAT:
List specific task titles or patterns that should be removed.
For each, give a brief reason (duplicate, outdated, unclear, etc.).

Don't give strategic advice - just practical cleanup recommendations.

Tasks to analyze:
%s

Tasks to remove:`, ctx.UserText, ctx.TaskCount, taskList(ctx.Tasks, 30))
}

func taskManagerBulkUpdate(ctx PromptContext) string {
	return fmt.Sprintf(`You are a Task Manager AI handling bulk task operations.

User Request: "%s"
Current Tasks: %d

BULK OPERATION HANDLER:
- Focus on efficient mass changes
- Understand patterns in user request
- Apply consistent updates across similar tasks
- Confirm what will be changed before executing

Available bulk operations:
- Update status (To Do → In Progress → Done)
- Change priority (High/Medium/Low)
- Add tags or categories
- Update due dates
- Bulk deletion

Tell me exactly what bulk operation you want to perform and I'll execute it.

Current task sample:
%s

What bulk operation should I execute?`, ctx.UserText, ctx.TaskCount, taskList(ctx.Tasks, 15))
}

func ceoStrategistPlanning(ctx PromptContext) string {
	var businessContext strings.Builder
	if len(ctx.DetectedAreas) > 0 {
		fmt.Fprintf(&businessContext, "Focus areas: %s\n", strings.Join(ctx.DetectedAreas, ", "))
	}
	if len(ctx.BusinessGoals) > 0 {
		goals := ctx.BusinessGoals
		if len(goals) > 3 {
			goals = goals[:3]
		}
		titles := make([]string, 0, len(goals))
		for _, g := range goals {
			titles = append(titles, "- "+g.Title)
		}
		fmt.Fprintf(&businessContext, "Active goals:\n%s\n", strings.Join(titles, "\n"))
	}

	return fmt.Sprintf(`You are a CEO Strategist AI - think big picture, revenue-focused, strategic.

%s
Current Tasks: %d in system
User Request: "%s"

CEO STRATEGIST MINDSET:
- What moves the revenue needle most?
- What are the highest-leverage activities?
- What's missing from a business perspective?
- Focus on priorities and resource allocation
- Think in terms of business outcomes, not just task completion

STRATEGIC RECOMMENDATIONS:
1. **This Week's Priorities** - Top 3 revenue-impacting focuses
2. **Missing Elements** - What business areas need attention
3. **Resource Allocation** - Where to spend time/energy
4. **Next Quarter Focus** - Strategic direction

Provide CEO-level strategic guidance for the request:`, businessContext.String(), ctx.TaskCount, ctx.UserText)
}

func ceoStrategistPriorities(ctx PromptContext) string {
	areas := "General"
	if len(ctx.DetectedAreas) > 0 {
		areas = strings.Join(ctx.DetectedAreas, ", ")
	}
	return fmt.Sprintf(`You are a CEO Strategist AI focused on priority optimization.

User Request: "%s"
Current Tasks: %d
Business Areas Detected: %s

PRIORITY FRAMEWORK:
1. **Revenue Impact** - Direct revenue generation (sales, delivery)
2. **Revenue Enablers** - Systems that scale revenue (processes, product)
3. **Risk Mitigation** - Preventing business disruption
4. **Growth Infrastructure** - Team, tools, processes for scale

PRIORITY ASSESSMENT:
Based on current business state, rank your top priorities this week.

High Priority (Do First):
Medium Priority (Do After):
Low Priority (Do Later):
Eliminate (Don't Do):

Current task sample:
%s

What should be the focus priorities?`, ctx.UserText, ctx.TaskCount, areas, taskList(ctx.Tasks, 10))
}

func assistantGeneral(ctx PromptContext) string {
	var contextInfo string
	if len(ctx.ConversationContext) > 0 {
		recent := ctx.ConversationContext
		if len(recent) > 4 {
			recent = recent[len(recent)-4:]
		}
		contextInfo = fmt.Sprintf("Recent conversation:\n%s\n\n", strings.Join(recent, "\n"))
	}

	return fmt.Sprintf(`You are OpsBrain, a helpful AI assistant for business task management.

%sUser Request: "%s"
Current Tasks: %d in system

ASSISTANT APPROACH:
- Be directly helpful with whatever they're asking
- Don't assume they want strategic advice unless requested
- If they ask for specific information, provide it
- If they want task help, help with tasks
- Match the tone and complexity they're looking for
- Be practical and actionable

Respond helpfully to their specific request:`, contextInfo, ctx.UserText, ctx.TaskCount)
}

func analystInsights(ctx PromptContext) string {
	return fmt.Sprintf(`You are a Business Analyst AI focused on data-driven insights.

User Request: "%s"
Total Tasks: %d

ANALYST PERSPECTIVE:
- Look for patterns and trends
- Identify data-driven insights
- Quantify problems and opportunities
- Provide evidence-based recommendations
- Focus on metrics and measurable outcomes

ANALYSIS AREAS:
- Task completion patterns
- Resource allocation efficiency
- Bottleneck identification
- Performance metrics
- ROI optimization

Provide analytical insights based on available data:`, ctx.UserText, ctx.TaskCount)
}
