package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/opsbrain/ceo-operator/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("bulk_operation_type", validateBulkOperationType); err != nil {
		panic(fmt.Sprintf("failed to register bulk_operation_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_priority", validateTaskPriority); err != nil {
		panic(fmt.Sprintf("failed to register task_priority validator: %v", err))
	}
}

// validateBulkOperationType validates that a string is a known BulkOperationType
func validateBulkOperationType(fl validator.FieldLevel) bool {
	switch models.BulkOperationType(fl.Field().String()) {
	case models.BulkOpStatusUpdate, models.BulkOpPriorityUpdate, models.BulkOpDelete,
		models.BulkOpTagUpdate, models.BulkOpDueDateUpdate, models.BulkOpNotesAppend,
		models.BulkOpProjectAssignment:
		return true
	default:
		return false
	}
}

// validateTaskPriority validates that a string is a valid TaskPriority enum value
func validateTaskPriority(fl validator.FieldLevel) bool {
	switch models.TaskPriority(fl.Field().String()) {
	case models.TaskPriorityHigh, models.TaskPriorityMedium, models.TaskPriorityLow, models.TaskPriorityUnknown:
		return true
	default:
		return false
	}
}

// ValidateBulkOperation validates a bulk operation before execution
func ValidateBulkOperation(op *models.BulkOperation) error {
	if op == nil {
		return fmt.Errorf("bulk operation is nil")
	}
	if err := Validate.Struct(op); err != nil {
		return fmt.Errorf("invalid bulk operation: %w", err)
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
