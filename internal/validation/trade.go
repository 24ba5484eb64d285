package validation

import (
	"strings"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/request"
)

// ValidateTrade validates a lump-sum trade request.
func ValidateTrade(req request.TradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.SchemeCode) == "" {
		errors["schemeCode"] = "schemeCode is required"
	}
	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateDeposit validates an account deposit request.
func ValidateDeposit(req request.DepositRequest) error {
	if req.Amount <= 0 {
		return &Error{Fields: map[string]string{"amount": "amount must be positive"}}
	}
	return nil
}
