package database

import (
	"context"
	"time"

	"github.com/opsbrain/ceo-operator/internal/models"
)

// ConversationRepositoryInterface defines the interface for conversation
// repository operations. This interface enables better testability by
// allowing mock implementations.
type ConversationRepositoryInterface interface {
	SaveTurn(ctx context.Context, turn models.ConversationTurn) error
	RecentTurns(ctx context.Context, threadKey string, limit int) ([]models.ConversationTurn, error)
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// RecoveryLogRepositoryInterface defines the interface for recovery log
// repository operations
type RecoveryLogRepositoryInterface interface {
	RecordRecovery(ctx context.Context, record models.RecoveryRecord) error
	RecentRecoveries(ctx context.Context, limit int) ([]models.RecoveryRecord, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ConversationRepositoryInterface = (*ConversationRepository)(nil)
	_ RecoveryLogRepositoryInterface  = (*RecoveryLogRepository)(nil)
)
