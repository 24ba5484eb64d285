package handlers

import (
	"net/http"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/request"
	"github.com/fundsim/Paper-Trading-Backend/internal/api/response"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
)

// AdminHandler handles on-demand triggers for the scheduled jobs and
// admin-only settings. All routes are behind the API-key middleware.
type AdminHandler struct {
	engine        *service.ExecutionEngine
	fundService   *service.FundService
	systemService *service.SystemService
}

// NewAdminHandler creates a new AdminHandler with the provided service dependencies.
func NewAdminHandler(engine *service.ExecutionEngine, fundService *service.FundService, systemService *service.SystemService) *AdminHandler {
	return &AdminHandler{
		engine:        engine,
		fundService:   fundService,
		systemService: systemService,
	}
}

// RunInstallments handles POST requests to trigger an engine pass.
// An optional ?date=YYYY-MM-DD runs the pass as of that calendar day;
// the default is today in the operating timezone.
//
// Endpoint: POST /api/admin/run-installments
// Response: 200 OK with ExecutionSummary
func (h *AdminHandler) RunInstallments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	var summary interface{}
	var err error
	if date == "" {
		summary, err = h.engine.RunToday(r.Context())
	} else {
		if _, perr := calendar.Parse(date); perr != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid date", perr.Error())
			return
		}
		summary, err = h.engine.RunDueInstallments(r.Context(), date)
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "installment run failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// SyncNavs handles POST requests to refresh all stored NAVs from the
// external source.
//
// Endpoint: POST /api/admin/sync-navs
// Response: 200 OK with {"synced": n}
func (h *AdminHandler) SyncNavs(w http.ResponseWriter, r *http.Request) {
	synced, err := h.fundService.SyncNavs(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "nav sync failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"synced": synced})
}

// SetNavToken handles PUT requests to store the NAV provider API token.
// The token is fernet-encrypted before it reaches the database.
//
// Endpoint: PUT /api/admin/nav-token
// Request Body: SetNavTokenRequest
// Response: 204 No Content
func (h *AdminHandler) SetNavToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetNavTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Token == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "token is required")
		return
	}

	if err := h.systemService.SetNavAPIToken(r.Context(), req.Token); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to store token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
