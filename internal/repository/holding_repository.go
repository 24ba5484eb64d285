package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// TotalUnits and InvestedAmount are only mutated through atomic delta
// statements so concurrent installments operating on the same row cannot
// lose updates.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// GetHolding retrieves the user's position in one scheme using the given
// executor, which may be an open transaction.
func (r *HoldingRepository) GetHolding(ctx context.Context, q DBTX, userID, schemeCode string) (model.Holding, error) {
	var h model.Holding
	err := q.QueryRowContext(ctx, `
		SELECT user_id, scheme_code, total_units, invested_amount
		FROM holding
		WHERE user_id = ? AND scheme_code = ?
	`, userID, schemeCode).Scan(&h.UserID, &h.SchemeCode, &h.TotalUnits, &h.InvestedAmount)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding table: %w", err)
	}
	return h, nil
}

// AddUnits applies a buy-side delta, creating the holding row if the user
// has no position in the scheme yet. The upsert arithmetic is expressed as
// total_units = total_units + excluded.total_units so the statement stays
// correct under concurrent execution.
func (r *HoldingRepository) AddUnits(ctx context.Context, q DBTX, userID, schemeCode string, deltaUnits, deltaAmount float64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO holding (id, user_id, scheme_code, total_units, invested_amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, scheme_code) DO UPDATE SET
			total_units = total_units + excluded.total_units,
			invested_amount = invested_amount + excluded.invested_amount
	`, uuid.New().String(), userID, schemeCode, deltaUnits, deltaAmount)
	if err != nil {
		return fmt.Errorf("failed to add units to holding: %w", err)
	}
	return nil
}

// SubtractUnits applies a sell-side delta. The statement carries its own
// sufficiency guard: zero affected rows means the holding is missing or
// holds fewer units than requested.
func (r *HoldingRepository) SubtractUnits(ctx context.Context, q DBTX, userID, schemeCode string, units, costBasis float64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE holding
		SET total_units = total_units - ?,
			invested_amount = invested_amount - ?
		WHERE user_id = ? AND scheme_code = ? AND total_units >= ?
	`, units, costBasis, userID, schemeCode, units)
	if err != nil {
		return fmt.Errorf("failed to subtract units from holding: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read holding update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInsufficientUnits
	}
	return nil
}

// GetHoldingsByUser retrieves all of a user's positions ordered by scheme code.
func (r *HoldingRepository) GetHoldingsByUser(ctx context.Context, userID string) ([]model.Holding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, scheme_code, total_units, invested_amount
		FROM holding
		WHERE user_id = ?
		ORDER BY scheme_code ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.UserID, &h.SchemeCode, &h.TotalUnits, &h.InvestedAmount); err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}
	return holdings, nil
}
