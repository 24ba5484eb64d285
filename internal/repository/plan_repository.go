package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// PlanRepository provides data access methods for the recurring_plan table.
// Every write bumps the row's version column; the engine and the user write
// path both check it so a cancellation can never race an in-flight
// execution of the same plan.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository with the provided database connection.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `
	id, user_id, scheme_code, target_scheme_code, type, amount, frequency,
	start_date, end_date, next_due_date, remaining_installments, status,
	version, created_at, updated_at
`

// InsertPlan persists a newly created plan.
func (r *PlanRepository) InsertPlan(ctx context.Context, p *model.RecurringPlan) error {
	now := time.Now().UTC().Format(time.RFC3339)

	var endDate, targetScheme any
	if p.EndDate != "" {
		endDate = p.EndDate
	}
	if p.TargetSchemeCode != "" {
		targetScheme = p.TargetSchemeCode
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_plan (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.SchemeCode, targetScheme, p.Type, p.Amount, p.Frequency,
		p.StartDate, endDate, p.NextDueDate, p.RemainingInstallments, p.Status,
		p.Version, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert recurring plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan by ID.
func (r *PlanRepository) GetPlan(ctx context.Context, planID string) (model.RecurringPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+planColumns+`
		FROM recurring_plan
		WHERE id = ?
	`, planID)

	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return model.RecurringPlan{}, apperrors.ErrPlanNotFound
	}
	if err != nil {
		return model.RecurringPlan{}, err
	}
	return p, nil
}

// GetPlansByUser retrieves all plans of a user, newest first.
func (r *PlanRepository) GetPlansByUser(ctx context.Context, userID string) ([]model.RecurringPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+planColumns+`
		FROM recurring_plan
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring_plan table: %w", err)
	}
	defer rows.Close()

	plans := []model.RecurringPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring_plan table: %w", err)
	}
	return plans, nil
}

// FindDue retrieves all ACTIVE plans whose next due date is on or before
// currentDate. Results are ordered by user then due date so the engine can
// process one user's plans serially in schedule order.
func (r *PlanRepository) FindDue(ctx context.Context, currentDate string) ([]model.RecurringPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+planColumns+`
		FROM recurring_plan
		WHERE status = ? AND next_due_date <= ?
		ORDER BY user_id ASC, next_due_date ASC, created_at ASC
	`, model.StatusActive, currentDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query due plans: %w", err)
	}
	defer rows.Close()

	plans := []model.RecurringPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due plans: %w", err)
	}
	return plans, nil
}

// AdvancePlan writes the plan's post-execution schedule state (next due
// date, remaining installments, status) under an optimistic version check.
// The caller passes its transaction so the advance commits atomically with
// the execution record and the money movement.
//
// Returns ErrPlanConflict if the row's version no longer matches, meaning
// the plan was modified concurrently (e.g. cancelled by the user).
func (r *PlanRepository) AdvancePlan(ctx context.Context, q DBTX, p *model.RecurringPlan) error {
	res, err := q.ExecContext(ctx, `
		UPDATE recurring_plan
		SET next_due_date = ?, remaining_installments = ?, status = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, p.NextDueDate, p.RemainingInstallments, p.Status,
		time.Now().UTC().Format(time.RFC3339), p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("failed to advance plan: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read plan advance result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPlanConflict
	}

	p.Version++
	return nil
}

// UpdateStatus transitions a plan between statuses, guarded by the set of
// statuses the transition is valid from. Returns ErrPlanConflict when the
// plan is not currently in any of the allowed source statuses.
func (r *PlanRepository) UpdateStatus(ctx context.Context, planID string, from []model.PlanStatus, to model.PlanStatus) error {
	if len(from) == 0 {
		return apperrors.ErrInvalidState
	}

	placeholders := ""
	args := []any{to, time.Now().UTC().Format(time.RFC3339), planID}
	for i, s := range from {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, s)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_plan
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND status IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read plan status result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPlanConflict
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanPlan.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (model.RecurringPlan, error) {
	var p model.RecurringPlan
	var targetScheme, endDate, createdAtStr, updatedAtStr sql.NullString
	var remaining sql.NullInt64
	var freq string

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.SchemeCode,
		&targetScheme,
		&p.Type,
		&p.Amount,
		&freq,
		&p.StartDate,
		&endDate,
		&p.NextDueDate,
		&remaining,
		&p.Status,
		&p.Version,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.RecurringPlan{}, err
	}
	if err != nil {
		return model.RecurringPlan{}, fmt.Errorf("failed to scan recurring_plan table results: %w", err)
	}

	p.Frequency = calendar.Frequency(freq)
	if targetScheme.Valid {
		p.TargetSchemeCode = targetScheme.String
	}
	if endDate.Valid {
		p.EndDate = endDate.String
	}
	if remaining.Valid {
		n := int(remaining.Int64)
		p.RemainingInstallments = &n
	}
	if createdAtStr.Valid {
		p.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return model.RecurringPlan{}, err
		}
	}
	if updatedAtStr.Valid {
		p.UpdatedAt, err = ParseTime(updatedAtStr.String)
		if err != nil {
			return model.RecurringPlan{}, err
		}
	}
	return p, nil
}
