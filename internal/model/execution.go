package model

import "time"

// ExecutionStatus is the outcome of one scheduled installment slot.
type ExecutionStatus string

const (
	// ExecutionSuccess means money and units moved.
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	// ExecutionFailed means a business rule blocked the installment; the
	// slot is consumed and the schedule advanced, but nothing moved.
	ExecutionFailed ExecutionStatus = "FAILED"
	// ExecutionSkipped means an overdue slot was consumed without execution
	// while catching the schedule up to the current date.
	ExecutionSkipped ExecutionStatus = "SKIPPED"
)

// Failure reasons recorded on FAILED execution records.
const (
	ReasonNavUnavailable      = "NAV_UNAVAILABLE"
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonInsufficientUnits   = "INSUFFICIENT_UNITS"
	ReasonMissedWindow        = "MISSED_WINDOW"
)

// ExecutionRecord is the append-only audit trail of installment execution.
// Exactly one record exists per plan per scheduled date; records are
// immutable after creation.
type ExecutionRecord struct {
	ID            string          `json:"id"`
	PlanID        string          `json:"planId"`
	ScheduledDate string          `json:"scheduledDate"`
	ExecutedAt    time.Time       `json:"executedAt"`
	Status        ExecutionStatus `json:"status"`
	Amount        float64         `json:"amount"`
	Units         float64         `json:"units"`
	NavUsed       float64         `json:"navUsed"`
	// CostBasis and RealizedGain are populated on sell-side executions
	// (SWP and the sell leg of STP). Cost basis is relieved proportionally.
	CostBasis     float64 `json:"costBasis,omitempty"`
	RealizedGain  float64 `json:"realizedGain,omitempty"`
	FailureReason string  `json:"failureReason,omitempty"`
}

// ExecutionSummary reports one engine pass.
type ExecutionSummary struct {
	RunDate   string            `json:"runDate"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Records   []ExecutionRecord `json:"records"`
}
