package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opsbrain/ceo-operator/internal/healing"
	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/persona"
	"github.com/opsbrain/ceo-operator/internal/queue"
	"github.com/opsbrain/ceo-operator/internal/services/ai"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"github.com/opsbrain/ceo-operator/internal/validation"
	"go.uber.org/zap"
)

const (
	// processTimeout bounds the background handling of one event. Slack
	// requires the HTTP ack within 3 seconds, so all real work happens after
	// the ack.
	processTimeout = 60 * time.Second

	// conversationWindow is how many prior turns feed the prompt
	conversationWindow = 6

	systemPrompt = "You are OpsBrain, an AI business assistant for a solo founder. Keep responses Slack-friendly: short paragraphs, no markdown headers."
)

// Poster posts messages to Slack
type Poster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
}

// ConversationStore persists thread history across restarts
type ConversationStore interface {
	SaveTurn(ctx context.Context, turn models.ConversationTurn) error
	RecentTurns(ctx context.Context, threadKey string, limit int) ([]models.ConversationTurn, error)
}

// GoalSource provides the active business goals for prompt context
type GoalSource interface {
	ActiveGoals(ctx context.Context) ([]models.Goal, error)
}

// SlackHandler turns Slack events into assistant replies: classify the
// request, compose a persona prompt over current task and goal context, call
// the LLM, and post the reply into the thread. Parsed bulk operations skip
// the LLM entirely and go to the job queue.
type SlackHandler struct {
	store         taskops.Store
	provider      ai.Provider
	composer      *persona.Composer
	poster        Poster
	jobQueue      queue.JobQueue
	goals         GoalSource        // optional
	conversations ConversationStore // optional
	monitor       *healing.ErrorMonitor
	logger        *zap.Logger

	// background runs the post-ack work; tests replace it to run inline
	background func(func(ctx context.Context))
}

// NewSlackHandler creates the Slack event handler
func NewSlackHandler(
	store taskops.Store,
	provider ai.Provider,
	composer *persona.Composer,
	poster Poster,
	jobQueue queue.JobQueue,
	goals GoalSource,
	conversations ConversationStore,
	monitor *healing.ErrorMonitor,
	logger *zap.Logger,
) *SlackHandler {
	h := &SlackHandler{
		store:         store,
		provider:      provider,
		composer:      composer,
		poster:        poster,
		jobQueue:      jobQueue,
		goals:         goals,
		conversations: conversations,
		monitor:       monitor,
		logger:        logger,
	}
	h.background = func(fn func(ctx context.Context)) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
			defer cancel()
			fn(ctx)
		}()
	}
	return h
}

type eventEnvelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge"`
	Event     slackEvent `json:"event"`
}

type slackEvent struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
	BotID    string `json:"bot_id"`
	Text     string `json:"text"`
	Channel  string `json:"channel"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`
}

// HandleEvent handles POST /slack/events. The response is always an immediate
// ack; the reply is posted asynchronously.
func (h *SlackHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var envelope eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		respondJSONError(w, http.StatusBadRequest, "invalid_payload", "could not parse event payload")
		return
	}

	if envelope.Type == "url_verification" {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": envelope.Challenge})
		return
	}

	event := envelope.Event
	// Ignore our own messages and non-message noise
	if event.Subtype == "bot_message" || event.BotID != "" || event.Text == "" {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	text := validation.SanitizeText(event.Text)
	threadTS := event.ThreadTS
	if threadTS == "" {
		threadTS = event.TS
	}
	channel := event.Channel

	h.background(func(ctx context.Context) {
		h.process(ctx, text, channel, threadTS)
	})

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// process handles one user message end to end
func (h *SlackHandler) process(ctx context.Context, text, channel, threadTS string) {
	// Bulk operations bypass the LLM: parse, queue, confirm
	if op := taskops.ParseBulkRequest(text); op != nil {
		h.enqueueBulkOperation(ctx, op, channel, threadTS)
		return
	}

	reply := h.buildReply(ctx, text, channel, threadTS)
	if err := h.poster.PostMessage(ctx, channel, reply, threadTS); err != nil {
		h.monitor.Register(healing.ComponentSlackAPI, err, map[string]any{"operation": "post_reply"})
		return
	}

	h.saveTurns(ctx, channel, threadTS, text, reply)
}

func (h *SlackHandler) enqueueBulkOperation(ctx context.Context, op *models.BulkOperation, channel, threadTS string) {
	job := queue.NewBulkOperationJob(op, channel, threadTS)
	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		h.monitor.Register(healing.ComponentTaskProcessing, err, map[string]any{"operation": "enqueue_bulk"})
		_ = h.poster.PostMessage(ctx, channel, "Sorry, I couldn't queue that operation. Please try again.", threadTS)
		return
	}
	h.logger.Info("bulk_operation_queued",
		zap.String("operation_type", string(op.Type)),
		zap.String("job_id", job.ID.String()),
	)
	_ = h.poster.PostMessage(ctx, channel,
		fmt.Sprintf("Got it — running the %s operation now. I'll report back here.", op.Type), threadTS)
}

// buildReply classifies the request, composes the persona prompt, and calls
// the LLM under the openai_api circuit breaker
func (h *SlackHandler) buildReply(ctx context.Context, text, channel, threadTS string) string {
	requestType, personaType := persona.Classify(text, nil)
	areas := persona.DetectAreas(text)

	promptCtx := persona.PromptContext{
		UserText:      text,
		DetectedAreas: areas,
	}

	tasks, err := h.store.ListTasks(ctx)
	if err != nil {
		// Guarded store already recorded the failure; degrade to an empty list
		h.logger.Warn("task_fetch_failed_for_prompt", zap.Error(err))
	} else {
		titles := make([]string, 0, len(tasks))
		for _, t := range tasks {
			titles = append(titles, t.Title)
		}
		promptCtx.Tasks = titles
		promptCtx.TaskCount = len(tasks)
	}

	if h.goals != nil {
		if goals, err := h.goals.ActiveGoals(ctx); err == nil {
			promptCtx.BusinessGoals = goals
		}
	}

	if h.conversations != nil {
		turns, err := h.conversations.RecentTurns(ctx, threadKey(channel, threadTS), conversationWindow)
		if err == nil {
			history := make([]string, 0, len(turns))
			for _, turn := range turns {
				history = append(history, fmt.Sprintf("%s: %s", turn.Role, turn.Text))
			}
			promptCtx.ConversationContext = history
		}
	}

	prompt := h.composer.Compose(requestType, personaType, promptCtx)

	var reply string
	callErr := h.monitor.GuardedCall(healing.ComponentOpenAIAPI, map[string]any{"request_type": string(requestType)}, func() error {
		var err error
		reply, err = h.provider.Complete(ctx, systemPrompt, prompt)
		return err
	})
	if callErr != nil {
		h.logger.Error("llm_reply_failed",
			zap.String("request_type", string(requestType)),
			zap.Error(callErr),
		)
		return "I'm having trouble reaching my reasoning service right now. Please try again in a minute."
	}

	h.logger.Info("reply_generated",
		zap.String("request_type", string(requestType)),
		zap.String("persona", string(personaType)),
		zap.Strings("detected_areas", areas),
	)
	return reply
}

func (h *SlackHandler) saveTurns(ctx context.Context, channel, threadTS, userText, reply string) {
	if h.conversations == nil {
		return
	}
	key := threadKey(channel, threadTS)
	for _, turn := range []models.ConversationTurn{
		{ThreadKey: key, Role: "user", Text: userText},
		{ThreadKey: key, Role: "assistant", Text: reply},
	} {
		if err := h.conversations.SaveTurn(ctx, turn); err != nil {
			h.monitor.Register(healing.ComponentDatabase, err, map[string]any{"operation": "save_turn"})
			return
		}
	}
}

func threadKey(channel, threadTS string) string {
	return channel + ":" + threadTS
}
