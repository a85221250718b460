package taskops

import (
	"strings"

	"github.com/opsbrain/ceo-operator/internal/models"
)

// ParseBulkRequest maps free text onto a bulk operation using hand-ordered
// substring checks; the first matching rule wins. All parsed operations use an
// empty filter (every task) — scoping qualifiers like "all high priority
// tasks" are not parsed here. Returns nil when nothing matches.
func ParseBulkRequest(userText string) *models.BulkOperation {
	text := strings.ToLower(userText)

	// Status updates
	if strings.Contains(text, "mark all") || strings.Contains(text, "set all") || strings.Contains(text, "change all") {
		if strings.Contains(text, "done") || strings.Contains(text, "complete") {
			return models.NewBulkOperation(models.BulkOpStatusUpdate, models.TaskFilter{},
				map[string]string{"status": "Done"})
		}
		if strings.Contains(text, "in progress") {
			return models.NewBulkOperation(models.BulkOpStatusUpdate, models.TaskFilter{},
				map[string]string{"status": "In Progress"})
		}
	}

	// Priority updates
	if strings.Contains(text, "set priority") || strings.Contains(text, "change priority") {
		if strings.Contains(text, "high") {
			return models.NewBulkOperation(models.BulkOpPriorityUpdate, models.TaskFilter{},
				map[string]string{"priority": "High"})
		}
	}

	// Bulk deletion
	if strings.Contains(text, "delete all") || strings.Contains(text, "remove all") {
		return models.NewBulkOperation(models.BulkOpDelete, models.TaskFilter{}, nil)
	}

	// Project assignment: the token after the word containing "project"
	if strings.Contains(text, "assign to project") || strings.Contains(text, "move to project") {
		words := strings.Fields(userText)
		for i, word := range words {
			if strings.Contains(strings.ToLower(word), "project") {
				if i+1 < len(words) {
					return models.NewBulkOperation(models.BulkOpProjectAssignment, models.TaskFilter{},
						map[string]string{"project": words[i+1]})
				}
				break
			}
		}
	}

	return nil
}
