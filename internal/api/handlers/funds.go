package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/request"
	"github.com/fundsim/Paper-Trading-Backend/internal/api/response"
	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
)

// FundHandler handles HTTP requests for fund catalogue and NAV endpoints.
type FundHandler struct {
	fundService *service.FundService
}

// NewFundHandler creates a new FundHandler with the provided service dependency.
func NewFundHandler(fundService *service.FundService) *FundHandler {
	return &FundHandler{
		fundService: fundService,
	}
}

// AllFunds handles GET requests for the fund catalogue.
//
// Endpoint: GET /api/fund
// Response: 200 OK with array of Fund
func (h *FundHandler) AllFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.fundService.GetAllFunds(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveFunds.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, funds)
}

// GetFund handles GET requests for one fund.
//
// Endpoint: GET /api/fund/{schemeCode}
// Response: 200 OK with Fund
// Error: 404 Not Found if the scheme is not catalogued
func (h *FundHandler) GetFund(w http.ResponseWriter, r *http.Request) {
	schemeCode := chi.URLParam(r, "schemeCode")

	fund, err := h.fundService.GetFund(r.Context(), schemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrFundNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrFundNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveFund.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, fund)
}

// AddFund handles POST requests to register a scheme in the catalogue.
//
// Endpoint: POST /api/fund
// Request Body: AddFundRequest
// Response: 201 Created with Fund
func (h *FundHandler) AddFund(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddFundRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.SchemeCode) == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "schemeCode is required")
		return
	}

	fund, err := h.fundService.AddFund(r.Context(), model.Fund{
		SchemeCode: req.SchemeCode,
		Name:       req.Name,
		FundHouse:  req.FundHouse,
		Category:   req.Category,
	})
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, "failed to add fund", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, fund)
}

// NavHistory handles GET requests for a scheme's stored NAV history.
//
// Endpoint: GET /api/fund/{schemeCode}/nav?startDate=&endDate=
// Response: 200 OK with array of NavPrice
func (h *FundHandler) NavHistory(w http.ResponseWriter, r *http.Request) {
	schemeCode := chi.URLParam(r, "schemeCode")
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")

	if startDate == "" || endDate == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "startDate and endDate are required")
		return
	}

	prices, err := h.fundService.GetNavHistory(r.Context(), schemeCode, startDate, endDate)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveNavHistory.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, prices)
}

// LatestNav handles GET requests for a scheme's most recent stored NAV.
//
// Endpoint: GET /api/fund/{schemeCode}/nav/latest
// Response: 200 OK with NavPrice
// Error: 404 Not Found if no NAV is stored for the scheme
func (h *FundHandler) LatestNav(w http.ResponseWriter, r *http.Request) {
	schemeCode := chi.URLParam(r, "schemeCode")

	price, err := h.fundService.LatestNav(r.Context(), schemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNavNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrNavNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveNavHistory.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, price)
}
