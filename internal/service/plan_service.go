package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
)

// CreatePlanInput carries the validated fields for a new recurring plan.
type CreatePlanInput struct {
	UserID           string
	SchemeCode       string
	TargetSchemeCode string
	Type             model.TransactionType
	Amount           float64
	Frequency        calendar.Frequency
	StartDate        string
	EndDate          string
	Installments     *int
}

// PlanService handles the user-facing lifecycle of recurring plans: create,
// list, pause, resume, cancel, and schedule previews. Execution-time
// transitions belong to the ExecutionEngine.
type PlanService struct {
	planRepo      *repository.PlanRepository
	executionRepo *repository.ExecutionRepository
	accountRepo   *repository.AccountRepository
	fundRepo      *repository.FundRepository
}

// NewPlanService creates a new PlanService with the provided repository dependencies.
func NewPlanService(
	planRepo *repository.PlanRepository,
	executionRepo *repository.ExecutionRepository,
	accountRepo *repository.AccountRepository,
	fundRepo *repository.FundRepository,
) *PlanService {
	return &PlanService{
		planRepo:      planRepo,
		executionRepo: executionRepo,
		accountRepo:   accountRepo,
		fundRepo:      fundRepo,
	}
}

// GeneratePreview returns the installment dates a plan with these inputs
// would execute on. Pure passthrough to the calendar package; the engine
// realizes exactly this sequence.
func (s *PlanService) GeneratePreview(startDate, endDate string, freq calendar.Frequency) ([]string, error) {
	return calendar.GeneratePreview(startDate, endDate, freq)
}

// CreatePlan creates a plan in ACTIVE state with its first installment due
// on the start date.
func (s *PlanService) CreatePlan(ctx context.Context, in CreatePlanInput) (model.RecurringPlan, error) {
	if _, err := s.accountRepo.GetAccount(ctx, in.UserID); err != nil {
		return model.RecurringPlan{}, err
	}
	if _, err := s.fundRepo.GetFund(ctx, in.SchemeCode); err != nil {
		return model.RecurringPlan{}, err
	}
	if in.Type == model.TypeSTP {
		if _, err := s.fundRepo.GetFund(ctx, in.TargetSchemeCode); err != nil {
			return model.RecurringPlan{}, err
		}
	}

	plan := model.RecurringPlan{
		ID:                    uuid.New().String(),
		UserID:                in.UserID,
		SchemeCode:            in.SchemeCode,
		TargetSchemeCode:      in.TargetSchemeCode,
		Type:                  in.Type,
		Amount:                in.Amount,
		Frequency:             in.Frequency,
		StartDate:             in.StartDate,
		EndDate:               in.EndDate,
		NextDueDate:           in.StartDate,
		RemainingInstallments: in.Installments,
		Status:                model.StatusActive,
	}

	if err := s.planRepo.InsertPlan(ctx, &plan); err != nil {
		return model.RecurringPlan{}, err
	}
	return s.planRepo.GetPlan(ctx, plan.ID)
}

// GetPlan returns a plan after checking ownership.
func (s *PlanService) GetPlan(ctx context.Context, userID, planID string) (model.RecurringPlan, error) {
	plan, err := s.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return model.RecurringPlan{}, err
	}
	if plan.UserID != userID {
		return model.RecurringPlan{}, apperrors.ErrUnauthorized
	}
	return plan, nil
}

// GetPlansByUser returns all of a user's plans.
func (s *PlanService) GetPlansByUser(ctx context.Context, userID string) ([]model.RecurringPlan, error) {
	return s.planRepo.GetPlansByUser(ctx, userID)
}

// GetExecutionHistory returns a plan's execution records after checking ownership.
func (s *PlanService) GetExecutionHistory(ctx context.Context, userID, planID string) ([]model.ExecutionRecord, error) {
	if _, err := s.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	return s.executionRepo.GetRecordsByPlan(ctx, planID)
}

// CancelPlan transitions an ACTIVE or PAUSED plan to CANCELLED. The
// cancelled state is terminal and is never conflated with COMPLETED, even
// when the cancellation lands right after the final installment executed.
func (s *PlanService) CancelPlan(ctx context.Context, userID, planID string) error {
	return s.transition(ctx, userID, planID,
		[]model.PlanStatus{model.StatusActive, model.StatusPaused}, model.StatusCancelled)
}

// PausePlan transitions an ACTIVE plan to PAUSED. Paused plans are not
// selected by the engine; their due date does not advance while paused.
func (s *PlanService) PausePlan(ctx context.Context, userID, planID string) error {
	return s.transition(ctx, userID, planID,
		[]model.PlanStatus{model.StatusActive}, model.StatusPaused)
}

// ResumePlan transitions a PAUSED plan back to ACTIVE.
func (s *PlanService) ResumePlan(ctx context.Context, userID, planID string) error {
	return s.transition(ctx, userID, planID,
		[]model.PlanStatus{model.StatusPaused}, model.StatusActive)
}

// transition applies a guarded status change. Ownership and current-state
// checks run first for precise errors; the guarded UPDATE remains the
// authority if the plan changes between check and write.
func (s *PlanService) transition(ctx context.Context, userID, planID string, from []model.PlanStatus, to model.PlanStatus) error {
	plan, err := s.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.UserID != userID {
		return apperrors.ErrUnauthorized
	}

	allowed := false
	for _, f := range from {
		if plan.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s plan cannot transition to %s", apperrors.ErrInvalidState, plan.Status, to)
	}

	err = s.planRepo.UpdateStatus(ctx, planID, from, to)
	if errors.Is(err, apperrors.ErrPlanConflict) {
		// Raced with another writer; the plan left the allowed states.
		return apperrors.ErrInvalidState
	}
	return err
}
