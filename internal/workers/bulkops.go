package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/queue"
	"github.com/opsbrain/ceo-operator/internal/services/ai"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"go.uber.org/zap"
)

// Replier posts a job outcome back to the requesting Slack thread
type Replier interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
}

// BulkOpsWorker consumes queued jobs and executes them against the task
// store. Execution happens off the Slack event path so slow stores never
// block event acks.
type BulkOpsWorker struct {
	engine   *taskops.Engine
	store    taskops.Store
	jobQueue queue.JobQueue
	replier  Replier
	monitor  *healing.ErrorMonitor
	logger   *zap.Logger
}

// NewBulkOpsWorker creates a worker. replier may be nil (no Slack reply).
func NewBulkOpsWorker(
	engine *taskops.Engine,
	store taskops.Store,
	jobQueue queue.JobQueue,
	replier Replier,
	monitor *healing.ErrorMonitor,
	logger *zap.Logger,
) *BulkOpsWorker {
	return &BulkOpsWorker{
		engine:   engine,
		store:    store,
		jobQueue: jobQueue,
		replier:  replier,
		monitor:  monitor,
		logger:   logger,
	}
}

// Run consumes jobs until the context is cancelled
func (w *BulkOpsWorker) Run(ctx context.Context, prefetchCount int) error {
	msgs, errs, err := w.jobQueue.Consume(ctx, prefetchCount)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	w.logger.Info("worker_started", zap.Int("prefetch", prefetchCount))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker_stopped")
			return nil
		case consumeErr, ok := <-errs:
			if !ok {
				return nil
			}
			w.monitor.Register(healing.ComponentTaskProcessing, consumeErr, map[string]any{"source": "queue_consume"})
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *BulkOpsWorker) handleMessage(ctx context.Context, msg *queue.Message) {
	job := msg.GetJob()
	err := w.processJob(ctx, job)
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			w.logger.Error("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
		}
		return
	}

	w.monitor.Register(healing.ComponentTaskProcessing, err, map[string]any{
		"job_id":   job.ID.String(),
		"job_type": string(job.Type),
	})

	if job.CanRetry() {
		w.retryLater(ctx, job, err)
		// Original delivery is done either way; the retry is a new message
		if ackErr := msg.Ack(); ackErr != nil {
			w.logger.Error("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
		}
		return
	}

	w.logger.Error("job_exhausted_retries",
		zap.String("job_id", job.ID.String()),
		zap.Int("retries", job.RetryCount),
		zap.Error(err),
	)
	// Dead-letter the message
	if nackErr := msg.Nack(false); nackErr != nil {
		w.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	w.reply(ctx, job, fmt.Sprintf("Sorry, I couldn't complete that operation after %d attempts.", job.RetryCount+1))
}

// retryLater re-enqueues the job with a backoff delay derived from the error
func (w *BulkOpsWorker) retryLater(ctx context.Context, job *queue.Job, cause error) {
	job.IncrementRetry()
	notBefore := time.Now().Add(ai.GetRetryDelay(cause, job.RetryCount))
	job.NotBefore = &notBefore

	if err := w.jobQueue.Enqueue(ctx, job); err != nil {
		w.logger.Error("job_retry_enqueue_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}
	w.logger.Info("job_retry_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Time("not_before", notBefore),
	)
}

// processJob dispatches one job by type
func (w *BulkOpsWorker) processJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeBulkOperation:
		return w.processBulkOperation(ctx, job)
	case queue.JobTypeTaskCreation:
		return w.processTaskCreation(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *BulkOpsWorker) processBulkOperation(ctx context.Context, job *queue.Job) error {
	if job.Operation == nil {
		return fmt.Errorf("%w: bulk operation job has no operation", healing.ErrInvalidInput)
	}

	result := w.engine.Execute(ctx, job.Operation)
	w.logger.Info("bulk_job_processed",
		zap.String("job_id", job.ID.String()),
		zap.String("operation_type", string(job.Operation.Type)),
		zap.Bool("success", result.Success),
		zap.Int("affected_count", result.AffectedCount),
	)

	if !result.Success && result.AffectedCount == 0 && len(result.Errors) > 0 {
		// Nothing was mutated; let the retry path handle it
		return fmt.Errorf("bulk operation failed: %s", result.Errors[0])
	}

	w.reply(ctx, job, formatResult(result))
	return nil
}

func (w *BulkOpsWorker) processTaskCreation(ctx context.Context, job *queue.Job) error {
	if strings.TrimSpace(job.TaskTitle) == "" {
		return fmt.Errorf("%w: task creation job has no title", healing.ErrInvalidInput)
	}

	status := "To Do"
	id, err := w.store.CreateTask(ctx, job.TaskTitle, taskops.TaskPatch{Status: &status})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	w.logger.Info("task_creation_processed",
		zap.String("job_id", job.ID.String()),
		zap.String("task_id", id),
	)
	w.reply(ctx, job, fmt.Sprintf("Created task: %s", job.TaskTitle))
	return nil
}

// reply posts the outcome to the requesting thread, best-effort
func (w *BulkOpsWorker) reply(ctx context.Context, job *queue.Job, text string) {
	if w.replier == nil || job.Channel == "" {
		return
	}
	if err := w.replier.PostMessage(ctx, job.Channel, text, job.ThreadTS); err != nil {
		w.logger.Warn("job_reply_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

// formatResult renders an operation result as a Slack-friendly message
func formatResult(result *models.TaskOperationResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✅ ")
	} else {
		b.WriteString("⚠️ ")
	}
	b.WriteString(result.Message)
	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\n%d item(s) failed:", len(result.Errors))
		max := len(result.Errors)
		if max > 5 {
			max = 5
		}
		for _, e := range result.Errors[:max] {
			b.WriteString("\n• ")
			b.WriteString(e)
		}
	}
	return b.String()
}
