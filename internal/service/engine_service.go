package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
)

// NavSource supplies the latest published NAV for a scheme. The engine
// depends on this interface rather than on the fund service so tests can
// substitute a fixed price book.
type NavSource interface {
	LatestNav(ctx context.Context, schemeCode string) (model.NavPrice, error)
}

// ExecutionEngine runs due recurring installments. Each plan's execution is
// its own atomic unit: the money movement, the execution record and the
// plan advance commit in one transaction, or none of them do.
//
// Failure policy: a business failure (missing NAV, insufficient balance or
// units) writes a FAILED record and still advances the schedule -- the slot
// is consumed, not retried. An infrastructure failure rolls the plan back
// untouched; it stays due and the next scheduler pass retries it.
type ExecutionEngine struct {
	db            *sql.DB
	planRepo      *repository.PlanRepository
	accountRepo   *repository.AccountRepository
	holdingRepo   *repository.HoldingRepository
	executionRepo *repository.ExecutionRepository
	navs          NavSource
	loc           *time.Location
	workers       int
	logger        zerolog.Logger
}

// NewExecutionEngine creates a new ExecutionEngine with the provided dependencies.
func NewExecutionEngine(
	db *sql.DB,
	planRepo *repository.PlanRepository,
	accountRepo *repository.AccountRepository,
	holdingRepo *repository.HoldingRepository,
	executionRepo *repository.ExecutionRepository,
	navs NavSource,
	loc *time.Location,
	workers int,
	logger zerolog.Logger,
) *ExecutionEngine {
	if workers < 1 {
		workers = 1
	}
	return &ExecutionEngine{
		db:            db,
		planRepo:      planRepo,
		accountRepo:   accountRepo,
		holdingRepo:   holdingRepo,
		executionRepo: executionRepo,
		navs:          navs,
		loc:           loc,
		workers:       workers,
		logger:        logger,
	}
}

// RunToday runs the engine for the current calendar day in the operating timezone.
func (e *ExecutionEngine) RunToday(ctx context.Context) (model.ExecutionSummary, error) {
	return e.RunDueInstallments(ctx, calendar.Today(e.loc))
}

// RunDueInstallments executes every ACTIVE plan whose next due date is on
// or before currentDate. Plans of different users run concurrently; one
// user's plans run serially in schedule order, which serializes all
// mutation of that user's balance and holdings within the pass.
//
// The pass is idempotent: each plan's advance moves its due date past
// currentDate in the same transaction that creates its records, so a
// repeated invocation for the same date selects nothing.
func (e *ExecutionEngine) RunDueInstallments(ctx context.Context, currentDate string) (model.ExecutionSummary, error) {
	if _, err := calendar.Parse(currentDate); err != nil {
		return model.ExecutionSummary{}, err
	}

	due, err := e.planRepo.FindDue(ctx, currentDate)
	if err != nil {
		return model.ExecutionSummary{}, err
	}

	summary := model.ExecutionSummary{
		RunDate: currentDate,
		Records: []model.ExecutionRecord{},
	}
	if len(due) == 0 {
		return summary, nil
	}

	// FindDue orders by user, so contiguous slices share a user.
	var batches [][]model.RecurringPlan
	start := 0
	for i := 1; i <= len(due); i++ {
		if i == len(due) || due[i].UserID != due[start].UserID {
			batches = append(batches, due[start:i])
			start = i
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			for _, plan := range batch {
				records, err := e.executePlan(gctx, plan, currentDate)

				mu.Lock()
				if err != nil {
					// Infrastructure failure: nothing was written, the plan
					// stays due. Never abort the batch for one plan.
					summary.Skipped++
					e.logger.Error().Err(err).
						Str("plan_id", plan.ID).
						Str("user_id", plan.UserID).
						Msg("installment execution aborted, plan remains due")
				} else {
					for _, rec := range records {
						switch rec.Status {
						case model.ExecutionSuccess:
							summary.Succeeded++
						case model.ExecutionFailed:
							summary.Failed++
						case model.ExecutionSkipped:
							summary.Skipped++
						}
						summary.Records = append(summary.Records, rec)
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	e.logger.Info().
		Str("run_date", currentDate).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("installment run finished")
	return summary, nil
}

// executePlan processes one plan's due slot as a single transaction.
// It returns the records it committed, or an error when nothing was
// committed and the plan remains due.
func (e *ExecutionEngine) executePlan(ctx context.Context, plan model.RecurringPlan, currentDate string) ([]model.ExecutionRecord, error) {
	scheduled := plan.NextDueDate

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin execution transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	record := model.ExecutionRecord{
		ID:            uuid.New().String(),
		PlanID:        plan.ID,
		ScheduledDate: scheduled,
		ExecutedAt:    time.Now().UTC(),
		Status:        model.ExecutionSuccess,
		Amount:        plan.Amount,
	}

	reason, err := e.applyInstallment(ctx, tx, plan, scheduled, &record)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		// Business failure: the slot is consumed, nothing moved.
		record.Status = model.ExecutionFailed
		record.FailureReason = reason
		record.Units = 0
		record.CostBasis = 0
		record.RealizedGain = 0
	}

	records := []model.ExecutionRecord{record}

	// Advance the schedule past currentDate. Slots that became overdue
	// between scheduler passes are consumed as SKIPPED so every scheduled
	// date keeps exactly one record and a rerun for the same date finds
	// nothing due.
	remaining := plan.RemainingInstallments
	consume := func() {
		if remaining != nil {
			n := *remaining - 1
			remaining = &n
		}
	}
	consume()

	next, err := calendar.AddStep(scheduled, plan.Frequency)
	if err != nil {
		return nil, err
	}

	completed := func(nextDate string) bool {
		if remaining != nil && *remaining <= 0 {
			return true
		}
		return plan.EndDate != "" && calendar.Compare(nextDate, plan.EndDate) > 0
	}

	for !completed(next) && calendar.Compare(next, currentDate) <= 0 {
		records = append(records, model.ExecutionRecord{
			ID:            uuid.New().String(),
			PlanID:        plan.ID,
			ScheduledDate: next,
			ExecutedAt:    time.Now().UTC(),
			Status:        model.ExecutionSkipped,
			Amount:        plan.Amount,
			FailureReason: model.ReasonMissedWindow,
		})
		consume()

		next, err = calendar.AddStep(next, plan.Frequency)
		if err != nil {
			return nil, err
		}
	}

	plan.NextDueDate = next
	plan.RemainingInstallments = remaining
	if completed(next) {
		plan.Status = model.StatusCompleted
	}

	if err := e.planRepo.AdvancePlan(ctx, tx, &plan); err != nil {
		// Version conflict: the user cancelled (or otherwise modified) the
		// plan while this execution was in flight. Roll everything back.
		return nil, err
	}

	for i := range records {
		if err := e.executionRepo.InsertRecord(ctx, tx, &records[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit execution: %w", err)
	}
	return records, nil
}

// applyInstallment performs the money movement for one slot inside tx.
// It returns a failure reason for business failures (no mutation was made),
// or an error for infrastructure failures (the caller rolls back).
func (e *ExecutionEngine) applyInstallment(ctx context.Context, tx *sql.Tx, plan model.RecurringPlan, scheduled string, record *model.ExecutionRecord) (string, error) {
	nav, err := e.navs.LatestNav(ctx, plan.SchemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNavNotFound) {
			return model.ReasonNavUnavailable, nil
		}
		return "", err
	}

	switch plan.Type {
	case model.TypeSIP:
		units := roundUnits(plan.Amount / nav.Nav)
		record.Units = units
		record.NavUsed = nav.Nav

		if err := e.accountRepo.Debit(ctx, tx, plan.UserID, plan.Amount); err != nil {
			if errors.Is(err, apperrors.ErrInsufficientBalance) {
				return model.ReasonInsufficientBalance, nil
			}
			return "", err
		}
		if err := e.holdingRepo.AddUnits(ctx, tx, plan.UserID, plan.SchemeCode, units, plan.Amount); err != nil {
			return "", err
		}
		ct := model.CashTransaction{
			ID:          uuid.New().String(),
			UserID:      plan.UserID,
			Date:        scheduled,
			Type:        model.CashSIPDebit,
			Amount:      plan.Amount,
			Description: fmt.Sprintf("SIP installment %s", plan.SchemeCode),
		}
		if err := e.accountRepo.InsertCashTransaction(ctx, tx, ct); err != nil {
			return "", err
		}
		return "", nil

	case model.TypeSWP:
		units := roundUnits(plan.Amount / nav.Nav)
		record.Units = units
		record.NavUsed = nav.Nav

		costBasis, reason, err := e.redeem(ctx, tx, plan.UserID, plan.SchemeCode, units)
		if reason != "" || err != nil {
			return reason, err
		}
		if err := e.accountRepo.Credit(ctx, tx, plan.UserID, plan.Amount); err != nil {
			return "", err
		}
		ct := model.CashTransaction{
			ID:          uuid.New().String(),
			UserID:      plan.UserID,
			Date:        scheduled,
			Type:        model.CashSWPCredit,
			Amount:      plan.Amount,
			Description: fmt.Sprintf("SWP installment %s", plan.SchemeCode),
		}
		if err := e.accountRepo.InsertCashTransaction(ctx, tx, ct); err != nil {
			return "", err
		}
		record.CostBasis = costBasis
		record.RealizedGain = roundMoney(plan.Amount - costBasis)
		return "", nil

	case model.TypeSTP:
		targetNav, err := e.navs.LatestNav(ctx, plan.TargetSchemeCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNavNotFound) {
				return model.ReasonNavUnavailable, nil
			}
			return "", err
		}

		unitsOut := roundUnits(plan.Amount / nav.Nav)
		unitsIn := roundUnits(plan.Amount / targetNav.Nav)
		record.Units = unitsIn
		record.NavUsed = targetNav.Nav

		costBasis, reason, err := e.redeem(ctx, tx, plan.UserID, plan.SchemeCode, unitsOut)
		if reason != "" || err != nil {
			return reason, err
		}
		if err := e.holdingRepo.AddUnits(ctx, tx, plan.UserID, plan.TargetSchemeCode, unitsIn, plan.Amount); err != nil {
			return "", err
		}
		record.CostBasis = costBasis
		record.RealizedGain = roundMoney(plan.Amount - costBasis)
		return "", nil

	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidTransactionType, plan.Type)
	}
}

// redeem removes units from a holding with proportional cost-basis relief.
// It returns the relieved cost basis, or a business failure reason when the
// holding is missing or too small.
func (e *ExecutionEngine) redeem(ctx context.Context, tx *sql.Tx, userID, schemeCode string, units float64) (float64, string, error) {
	holding, err := e.holdingRepo.GetHolding(ctx, tx, userID, schemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			return 0, model.ReasonInsufficientUnits, nil
		}
		return 0, "", err
	}
	if holding.TotalUnits < units {
		return 0, model.ReasonInsufficientUnits, nil
	}

	costBasis := roundMoney(holding.InvestedAmount * units / holding.TotalUnits)

	if err := e.holdingRepo.SubtractUnits(ctx, tx, userID, schemeCode, units, costBasis); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientUnits) {
			return 0, model.ReasonInsufficientUnits, nil
		}
		return 0, "", err
	}
	return costBasis, "", nil
}
