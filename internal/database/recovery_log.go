package database

import (
	"context"
	"fmt"

	"github.com/opsbrain/ceo-operator/internal/models"
)

// RecoveryLogRepository handles recovery audit log database operations
type RecoveryLogRepository struct {
	db *DB
}

// NewRecoveryLogRepository creates a new recovery log repository
func NewRecoveryLogRepository(db *DB) *RecoveryLogRepository {
	return &RecoveryLogRepository{db: db}
}

// RecordRecovery appends one recovery run to the audit log
func (r *RecoveryLogRepository) RecordRecovery(ctx context.Context, record models.RecoveryRecord) error {
	query := `
		INSERT INTO recovery_log (component, severity, error_type, message, health)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.Component,
		record.Severity,
		record.ErrorType,
		record.Message,
		record.Health,
	)
	if err != nil {
		return fmt.Errorf("failed to record recovery: %w", err)
	}
	return nil
}

// RecentRecoveries returns up to limit most recent recovery runs, newest
// first
func (r *RecoveryLogRepository) RecentRecoveries(ctx context.Context, limit int) ([]models.RecoveryRecord, error) {
	query := `
		SELECT id, component, severity, error_type, message, health, created_at
		FROM recovery_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recovery log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.RecoveryRecord
	for rows.Next() {
		var rec models.RecoveryRecord
		if err := rows.Scan(&rec.ID, &rec.Component, &rec.Severity, &rec.ErrorType, &rec.Message, &rec.Health, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recovery record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recovery log: %w", err)
	}
	return records, nil
}
