package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsbrain/ceo-operator/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeBulkOperation executes a parsed bulk operation against the task store
	JobTypeBulkOperation JobType = "bulk_operation"
	// JobTypeTaskCreation creates a single task in the task store
	JobTypeTaskCreation JobType = "task_creation"
)

// Job represents a job in the queue. Bulk operations parsed from Slack are
// executed off the event path; the job carries the reply target so the worker
// can report the outcome back to the requesting thread.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Type      JobType   `json:"type"`

	// Operation is the payload for bulk_operation jobs
	Operation *models.BulkOperation `json:"operation,omitempty"`
	// TaskTitle is the payload for task_creation jobs
	TaskTitle string `json:"task_title,omitempty"`

	// Channel and ThreadTS identify the Slack thread awaiting the result
	Channel  string `json:"channel,omitempty"`
	ThreadTS string `json:"thread_ts,omitempty"`

	NotBefore  *time.Time     `json:"not_before,omitempty"` // earliest processing time (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // expiration (nil = none)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewBulkOperationJob creates a job executing op, replying to the given thread
func NewBulkOperationJob(op *models.BulkOperation, channel, threadTS string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeBulkOperation,
		Operation:  op,
		Channel:    channel,
		ThreadTS:   threadTS,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}
}

// NewTaskCreationJob creates a job that files a new task
func NewTaskCreationJob(title, channel, threadTS string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeTaskCreation,
		TaskTitle:  title,
		Channel:    channel,
		ThreadTS:   threadTS,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	return j.NotAfter != nil && time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
