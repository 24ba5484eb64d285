package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/request"
	"github.com/fundsim/Paper-Trading-Backend/internal/api/response"
	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
	"github.com/fundsim/Paper-Trading-Backend/internal/validation"
)

// PlanHandler handles HTTP requests for recurring-plan endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the planService.
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new PlanHandler with the provided service dependency.
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// Preview handles GET requests for prospective installment dates.
//
// Endpoint: GET /api/plan/preview?startDate=&endDate=&frequency=
// Response: 200 OK with array of YYYY-MM-DD strings (at most 500)
// Error: 400 Bad Request if parameters are invalid
func (h *PlanHandler) Preview(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	frequency := r.URL.Query().Get("frequency")

	if err := validation.ValidatePreviewQuery(startDate, endDate, frequency); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	dates, err := h.planService.GeneratePreview(startDate, endDate, calendar.Frequency(frequency))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "failed to generate preview", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dates)
}

// CreatePlan handles POST requests to start a recurring plan for a user.
//
// Endpoint: POST /api/user/{uuid}/plan
// Request Body: CreatePlanRequest
// Response: 201 Created with RecurringPlan
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the account or fund does not exist
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreatePlanRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePlan(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	plan, err := h.planService.CreatePlan(r.Context(), service.CreatePlanInput{
		UserID:           userID,
		SchemeCode:       req.SchemeCode,
		TargetSchemeCode: req.TargetSchemeCode,
		Type:             model.TransactionType(req.Type),
		Amount:           req.Amount,
		Frequency:        calendar.Frequency(req.Frequency),
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Installments:     req.Installments,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
		case errors.Is(err, apperrors.ErrFundNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrFundNotFound.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create plan", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, plan)
}

// PlansPerUser handles GET requests for all of a user's plans.
//
// Endpoint: GET /api/user/{uuid}/plan
// Response: 200 OK with array of RecurringPlan
func (h *PlanHandler) PlansPerUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	plans, err := h.planService.GetPlansByUser(r.Context(), userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePlans.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, plans)
}

// GetPlan handles GET requests for a single plan.
//
// Endpoint: GET /api/user/{uuid}/plan/{planId}
// Response: 200 OK with RecurringPlan
// Error: 403 Forbidden if the plan belongs to another user
// Error: 404 Not Found if the plan does not exist
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")
	planID := chi.URLParam(r, "planId")

	plan, err := h.planService.GetPlan(r.Context(), userID, planID)
	if err != nil {
		respondPlanError(w, err, apperrors.ErrFailedToRetrievePlan)
		return
	}

	response.RespondJSON(w, http.StatusOK, plan)
}

// PlanHistory handles GET requests for a plan's execution records.
//
// Endpoint: GET /api/user/{uuid}/plan/{planId}/history
// Response: 200 OK with array of ExecutionRecord
func (h *PlanHandler) PlanHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")
	planID := chi.URLParam(r, "planId")

	records, err := h.planService.GetExecutionHistory(r.Context(), userID, planID)
	if err != nil {
		respondPlanError(w, err, apperrors.ErrFailedToRetrieveRecords)
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// CancelPlan handles POST requests to cancel a plan.
//
// Endpoint: POST /api/user/{uuid}/plan/{planId}/cancel
// Response: 200 OK with {"success": true}
// Error: 403 Forbidden if the plan belongs to another user
// Error: 404 Not Found if the plan does not exist
// Error: 409 Conflict if the plan is already terminal
func (h *PlanHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.planService.CancelPlan)
}

// PausePlan handles POST requests to pause an active plan.
//
// Endpoint: POST /api/user/{uuid}/plan/{planId}/pause
func (h *PlanHandler) PausePlan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.planService.PausePlan)
}

// ResumePlan handles POST requests to resume a paused plan.
//
// Endpoint: POST /api/user/{uuid}/plan/{planId}/resume
func (h *PlanHandler) ResumePlan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.planService.ResumePlan)
}

func (h *PlanHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, planID string) error) {
	userID := chi.URLParam(r, "uuid")
	planID := chi.URLParam(r, "planId")

	if err := op(r.Context(), userID, planID); err != nil {
		respondPlanError(w, err, apperrors.ErrFailedToRetrievePlan)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func respondPlanError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrPlanNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPlanNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrUnauthorized):
		response.RespondError(w, http.StatusForbidden, apperrors.ErrUnauthorized.Error(), "")
	case errors.Is(err, apperrors.ErrInvalidState):
		response.RespondError(w, http.StatusConflict, apperrors.ErrInvalidState.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
