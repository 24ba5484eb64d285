package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// ExecutionRepository provides data access methods for the execution_record
// table. Records are append-only; nothing updates or deletes them.
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new ExecutionRepository with the provided database connection.
func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// InsertRecord appends one execution record. The unique constraint on
// (plan_id, scheduled_date) rejects a second record for the same slot and
// surfaces as ErrDuplicateExecution.
func (r *ExecutionRepository) InsertRecord(ctx context.Context, q DBTX, rec *model.ExecutionRecord) error {
	var failureReason any
	if rec.FailureReason != "" {
		failureReason = rec.FailureReason
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO execution_record (
			id, plan_id, scheduled_date, executed_at, status, amount, units,
			nav_used, cost_basis, realized_gain, failure_reason
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.PlanID, rec.ScheduledDate, rec.ExecutedAt.UTC().Format(time.RFC3339),
		rec.Status, rec.Amount, rec.Units, rec.NavUsed, rec.CostBasis,
		rec.RealizedGain, failureReason)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrDuplicateExecution
		}
		return fmt.Errorf("failed to insert execution record: %w", err)
	}
	return nil
}

// GetRecordsByPlan retrieves a plan's execution history, oldest slot first.
func (r *ExecutionRepository) GetRecordsByPlan(ctx context.Context, planID string) ([]model.ExecutionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plan_id, scheduled_date, executed_at, status, amount, units,
			nav_used, cost_basis, realized_gain, failure_reason
		FROM execution_record
		WHERE plan_id = ?
		ORDER BY scheduled_date ASC
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution_record table: %w", err)
	}
	defer rows.Close()

	records := []model.ExecutionRecord{}
	for rows.Next() {
		var rec model.ExecutionRecord
		var executedAtStr string
		var failureReason sql.NullString

		err := rows.Scan(
			&rec.ID,
			&rec.PlanID,
			&rec.ScheduledDate,
			&executedAtStr,
			&rec.Status,
			&rec.Amount,
			&rec.Units,
			&rec.NavUsed,
			&rec.CostBasis,
			&rec.RealizedGain,
			&failureReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution_record table results: %w", err)
		}

		rec.ExecutedAt, err = ParseTime(executedAtStr)
		if err != nil {
			return nil, err
		}
		if failureReason.Valid {
			rec.FailureReason = failureReason.String
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution_record table: %w", err)
	}
	return records, nil
}
