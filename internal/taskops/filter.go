package taskops

import "github.com/opsbrain/ceo-operator/internal/models"

// FilterTasks returns the subset of tasks matching the filter, preserving the
// original relative order. A zero filter returns the input unchanged.
func FilterTasks(tasks []models.Task, filter models.TaskFilter) []models.Task {
	if filter.IsEmpty() {
		return tasks
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
