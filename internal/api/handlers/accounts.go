package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/request"
	"github.com/fundsim/Paper-Trading-Backend/internal/api/response"
	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
	"github.com/fundsim/Paper-Trading-Backend/internal/validation"
)

// AccountHandler handles HTTP requests for account, portfolio and trade endpoints.
type AccountHandler struct {
	accountService *service.AccountService
	tradeService   *service.TradeService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependencies.
func NewAccountHandler(accountService *service.AccountService, tradeService *service.TradeService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		tradeService:   tradeService,
	}
}

// OpenAccount handles POST requests to open a paper account.
//
// Endpoint: POST /api/account
// Response: 201 Created with Account (seeded with the starting balance)
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.OpenAccount(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to open account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// GetAccount handles GET requests for a user's account.
//
// Endpoint: GET /api/user/{uuid}/account
// Response: 200 OK with Account
// Error: 404 Not Found if no account exists for the user
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	account, err := h.accountService.GetAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccount.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// Deposit handles POST requests to add paper money to an account.
//
// Endpoint: POST /api/user/{uuid}/account/deposit
// Request Body: DepositRequest
// Response: 200 OK with the updated Account
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.DepositRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDeposit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to deposit", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// Portfolio handles GET requests for a user's valued portfolio.
//
// Endpoint: GET /api/user/{uuid}/portfolio
// Response: 200 OK with PortfolioSummary
func (h *AccountHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	summary, err := h.accountService.GetPortfolio(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// CashTransactions handles GET requests for a user's cash ledger.
//
// Endpoint: GET /api/user/{uuid}/account/transactions
// Response: 200 OK with array of CashTransaction
func (h *AccountHandler) CashTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	transactions, err := h.accountService.GetCashTransactions(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLedger.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// Buy handles POST requests for a lump-sum purchase.
//
// Endpoint: POST /api/user/{uuid}/buy
// Request Body: TradeRequest
// Response: 200 OK with TradeResult
func (h *AccountHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradeService.Buy)
}

// Sell handles POST requests for a lump-sum redemption.
//
// Endpoint: POST /api/user/{uuid}/sell
// Request Body: TradeRequest
// Response: 200 OK with TradeResult
func (h *AccountHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradeService.Sell)
}

func (h *AccountHandler) trade(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, schemeCode string, amount float64) (service.TradeResult, error)) {
	userID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.TradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := op(r.Context(), userID, req.SchemeCode, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
		case errors.Is(err, apperrors.ErrNavUnavailable):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrNavUnavailable.Error(), "")
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientBalance.Error(), "")
		case errors.Is(err, apperrors.ErrInsufficientUnits):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientUnits.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "trade failed", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
