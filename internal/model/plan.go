package model

import (
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
)

// TransactionType is the direction of a recurring plan.
type TransactionType string

const (
	// TypeSIP is a recurring buy-side installment (Systematic Investment Plan).
	TypeSIP TransactionType = "SIP"
	// TypeSWP is a recurring sell-side installment (Systematic Withdrawal Plan).
	TypeSWP TransactionType = "SWP"
	// TypeSTP is a recurring transfer between two funds, modeled as a
	// paired sell/buy (Systematic Transfer Plan).
	TypeSTP TransactionType = "STP"
)

// PlanStatus is the lifecycle state of a recurring plan.
type PlanStatus string

const (
	StatusActive    PlanStatus = "ACTIVE"
	StatusPaused    PlanStatus = "PAUSED"
	StatusCancelled PlanStatus = "CANCELLED"
	StatusCompleted PlanStatus = "COMPLETED"
)

// Terminal reports whether the status admits no further transitions.
func (s PlanStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// RecurringPlan describes a SIP, SWP or STP schedule. Plans are never
// deleted; they transition to COMPLETED or CANCELLED and are retained for
// audit. All state transitions are driven externally by the execution
// engine and the plan service; the record itself is passive.
//
// All dates are canonical "YYYY-MM-DD" strings in the operating timezone.
type RecurringPlan struct {
	ID     string          `json:"id"`
	UserID string          `json:"userId"`
	// SchemeCode is the fund being bought (SIP), sold (SWP), or the source
	// fund of a transfer (STP).
	SchemeCode string `json:"schemeCode"`
	// TargetSchemeCode is the destination fund of an STP; empty otherwise.
	TargetSchemeCode string             `json:"targetSchemeCode,omitempty"`
	Type             TransactionType    `json:"type"`
	Amount           float64            `json:"amount"`
	Frequency        calendar.Frequency `json:"frequency"`
	StartDate        string             `json:"startDate"`
	EndDate          string             `json:"endDate,omitempty"`
	NextDueDate      string             `json:"nextDueDate"`
	// RemainingInstallments is nil when the plan is open-ended.
	RemainingInstallments *int       `json:"remainingInstallments,omitempty"`
	Status                PlanStatus `json:"status"`
	// Version guards against a user cancellation racing an in-flight
	// execution of the same plan. Every write bumps it.
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
