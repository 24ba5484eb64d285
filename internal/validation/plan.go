package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/request"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
)

// ValidPlanType contains the allowed plan transaction type values.
var ValidPlanType = map[string]bool{
	"SIP": true, "SWP": true, "STP": true,
}

// ValidateCreatePlan validates a plan creation request.
//
// Required fields:
//   - schemeCode: must be non-empty
//   - type: one of SIP, SWP, STP
//   - targetSchemeCode: required for STP, must differ from schemeCode
//   - amount: must be positive
//   - frequency: one of DAILY, WEEKLY, MONTHLY, QUARTERLY, YEARLY
//   - startDate: YYYY-MM-DD
//   - endDate: optional, YYYY-MM-DD, not before startDate
//   - installments: optional, must be positive if provided
//
// Returns a validation Error with field-specific messages if validation fails.
func ValidateCreatePlan(req request.CreatePlanRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.SchemeCode) == "" {
		errors["schemeCode"] = "schemeCode is required"
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidPlanType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Type == "STP" {
		if strings.TrimSpace(req.TargetSchemeCode) == "" {
			errors["targetSchemeCode"] = "targetSchemeCode is required for STP"
		} else if req.TargetSchemeCode == req.SchemeCode {
			errors["targetSchemeCode"] = "targetSchemeCode must differ from schemeCode"
		}
	} else if strings.TrimSpace(req.TargetSchemeCode) != "" {
		errors["targetSchemeCode"] = "targetSchemeCode is only valid for STP"
	}

	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}

	if _, err := calendar.ParseFrequency(req.Frequency); err != nil {
		errors["frequency"] = fmt.Sprintf("invalid frequency: %s", req.Frequency)
	}

	if strings.TrimSpace(req.StartDate) == "" {
		errors["startDate"] = "startDate is required"
	} else if _, err := time.Parse(calendar.DateFormat, req.StartDate); err != nil {
		errors["startDate"] = err.Error()
	}

	if req.EndDate != "" {
		if _, err := time.Parse(calendar.DateFormat, req.EndDate); err != nil {
			errors["endDate"] = err.Error()
		} else if req.StartDate != "" && calendar.Compare(req.StartDate, req.EndDate) > 0 {
			errors["endDate"] = "endDate must not be before startDate"
		}
	}

	if req.Installments != nil && *req.Installments <= 0 {
		errors["installments"] = "installments must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidatePreviewQuery validates the schedule preview query parameters.
func ValidatePreviewQuery(startDate, endDate, frequency string) error {
	errors := make(map[string]string)

	if strings.TrimSpace(startDate) == "" {
		errors["startDate"] = "startDate is required"
	} else if _, err := time.Parse(calendar.DateFormat, startDate); err != nil {
		errors["startDate"] = err.Error()
	}

	if endDate != "" {
		if _, err := time.Parse(calendar.DateFormat, endDate); err != nil {
			errors["endDate"] = err.Error()
		}
	}

	if _, err := calendar.ParseFrequency(frequency); err != nil {
		errors["frequency"] = fmt.Sprintf("invalid frequency: %s", frequency)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
