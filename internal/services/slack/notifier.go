package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Slack Web API root
	DefaultBaseURL = "https://slack.com/api"
	// DefaultTimeout bounds a single post; Slack expects event acks within 3s,
	// so replies are always posted off the request path
	DefaultTimeout = 10 * time.Second
)

// Notifier posts messages to Slack channels
type Notifier struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	logger     *zap.Logger
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithBaseURL overrides the API root (tests point it at a local server)
func WithBaseURL(url string) NotifierOption {
	return func(n *Notifier) { n.baseURL = url }
}

// NewNotifier creates a Slack notifier
func NewNotifier(botToken string, logger *zap.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		botToken:   botToken,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type postMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PostMessage posts text to a channel, optionally threading under threadTS
func (n *Notifier) PostMessage(ctx context.Context, channel, text, threadTS string) error {
	payload, err := json.Marshal(postMessageRequest{
		Channel:  channel,
		Text:     text,
		ThreadTS: threadTS,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("slack API status %d: %s", resp.StatusCode, data)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("slack API error: %s", apiResp.Error)
	}
	return nil
}

// Notify posts best-effort: a failed post is logged, never propagated. Used
// where a missed notification must not fail the caller's work.
func (n *Notifier) Notify(ctx context.Context, channel, text string) {
	if err := n.PostMessage(ctx, channel, text, ""); err != nil {
		n.logger.Warn("slack_notify_failed",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}
