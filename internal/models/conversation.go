package models

import "time"

// ConversationTurn is one message exchanged in a Slack thread, persisted so
// the assistant can carry context across restarts.
type ConversationTurn struct {
	ID        int64     `json:"id"`
	ThreadKey string    `json:"thread_key"` // channel + thread timestamp
	Role      string    `json:"role"`       // "user" or "assistant"
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// RecoveryRecord is a persisted trace of an automatic recovery run
type RecoveryRecord struct {
	ID        int64     `json:"id"`
	Component string    `json:"component"`
	Severity  string    `json:"severity"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	Health    string    `json:"health"`
	CreatedAt time.Time `json:"created_at"`
}
