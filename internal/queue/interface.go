package queue

import (
	"context"
)

// MessageInterface is a queue message; mock implementations satisfy it in tests
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the interface for job queues
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, job *Job) error

	// Consume returns a channel of messages delivered as they arrive. The
	// caller acknowledges each message; prefetchCount bounds unacknowledged
	// messages per consumer. The channels close when the context is cancelled
	// or the connection drops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}
