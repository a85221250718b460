package taskops

import (
	"strings"

	"github.com/opsbrain/ceo-operator/internal/models"
)

// duplicateKeyLen is the lowercased-title prefix length used to group likely
// duplicates. Deliberately coarse: two distinct tasks sharing a prefix are
// treated as duplicates.
const duplicateKeyLen = 20

// minTitleLen is the shortest trimmed title considered meaningful
const minTitleLen = 3

// vagueKeywords flag short titles that describe no concrete work
var vagueKeywords = []string{"fix", "update", "check", "look at", "review", "handle"}

// CleanupReason categorizes why a task was flagged for cleanup
type CleanupReason string

const (
	ReasonTitleTooShort      CleanupReason = "title_too_short"
	ReasonPotentialDuplicate CleanupReason = "potential_duplicate"
	ReasonVagueTitle         CleanupReason = "vague_title"
	ReasonMissingStatus      CleanupReason = "missing_status"
	ReasonMissingPriority    CleanupReason = "missing_priority"
)

// CleanupCandidate pairs a task with one reason it may need cleanup. A task
// can appear once per reason.
type CleanupCandidate struct {
	Task        models.Task   `json:"task"`
	Reason      CleanupReason `json:"reason"`
	Description string        `json:"description"`
}

// TaskDistribution aggregates tasks across the four reporting dimensions
type TaskDistribution struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"status_distribution"`
	ByPriority      map[string]int `json:"priority_distribution"`
	ByProject       map[string]int `json:"project_distribution"`
	WithDueDates    int            `json:"with_due_dates"`
	WithoutDueDates int            `json:"without_due_dates"`
}

// AnalyzeDistribution counts tasks by status, priority, project and due-date
// presence. Pure aggregation, four independent counters.
func AnalyzeDistribution(tasks []models.Task) TaskDistribution {
	dist := TaskDistribution{
		Total:      len(tasks),
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		ByProject:  make(map[string]int),
	}
	for _, t := range tasks {
		status := t.Status
		if status == "" {
			status = "Unknown"
		}
		dist.ByStatus[status]++

		priority := t.Priority
		if priority == "" {
			priority = "Unknown"
		}
		dist.ByPriority[priority]++

		project := t.Project
		if project == "" {
			project = "No Project"
		}
		dist.ByProject[project]++

		if t.DueDate != "" {
			dist.WithDueDates++
		} else {
			dist.WithoutDueDates++
		}
	}
	return dist
}

// IdentifyCleanupCandidates flags tasks that likely need attention: empty or
// near-empty titles, probable duplicates (shared lowercase title prefix, first
// in each group kept), vague short titles, and missing status or priority.
// Each reason is evaluated independently.
func IdentifyCleanupCandidates(tasks []models.Task) []CleanupCandidate {
	var candidates []CleanupCandidate

	titleGroups := make(map[string][]models.Task)
	var groupOrder []string
	for _, t := range tasks {
		title := strings.TrimSpace(strings.ToLower(t.Title))
		if len(title) < minTitleLen {
			candidates = append(candidates, CleanupCandidate{
				Task:        t,
				Reason:      ReasonTitleTooShort,
				Description: "Task title is too short or empty",
			})
			continue
		}
		key := title
		if len(key) > duplicateKeyLen {
			key = key[:duplicateKeyLen]
		}
		if _, seen := titleGroups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		titleGroups[key] = append(titleGroups[key], t)
	}

	for _, key := range groupOrder {
		group := titleGroups[key]
		if len(group) > 1 {
			for _, t := range group[1:] { // keep the first, flag the rest
				candidates = append(candidates, CleanupCandidate{
					Task:        t,
					Reason:      ReasonPotentialDuplicate,
					Description: "Similar to other task(s)",
				})
			}
		}
	}

	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		if containsAny(title, vagueKeywords) && len(strings.Fields(title)) < 4 {
			candidates = append(candidates, CleanupCandidate{
				Task:        t,
				Reason:      ReasonVagueTitle,
				Description: "Task title is too vague or unclear",
			})
		}
	}

	for _, t := range tasks {
		if t.Status == "" {
			candidates = append(candidates, CleanupCandidate{
				Task:        t,
				Reason:      ReasonMissingStatus,
				Description: "Task missing status",
			})
		}
		if t.Priority == "" {
			candidates = append(candidates, CleanupCandidate{
				Task:        t,
				Reason:      ReasonMissingPriority,
				Description: "Task missing priority",
			})
		}
	}

	return candidates
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
