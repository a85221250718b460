package database

import (
	"context"
	"fmt"
	"time"

	"github.com/opsbrain/ceo-operator/internal/models"
)

// ConversationRepository handles conversation turn database operations
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// SaveTurn appends one turn to a thread's history
func (r *ConversationRepository) SaveTurn(ctx context.Context, turn models.ConversationTurn) error {
	query := `
		INSERT INTO conversation_turns (thread_key, role, text)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, turn.ThreadKey, turn.Role, turn.Text); err != nil {
		return fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit most recent turns for a thread in
// chronological order
func (r *ConversationRepository) RecentTurns(ctx context.Context, threadKey string, limit int) ([]models.ConversationTurn, error) {
	query := `
		SELECT id, thread_key, role, text, created_at
		FROM conversation_turns
		WHERE thread_key = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, threadKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.ThreadKey, &turn.Role, &turn.Text, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation turns: %w", err)
	}

	// Query returns newest first; callers want chronological
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// PruneOlderThan deletes turns older than the retention window and returns
// how many rows were removed
func (r *ConversationRepository) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	query := `DELETE FROM conversation_turns WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("failed to prune conversation turns: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned turns: %w", err)
	}
	return removed, nil
}
