package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// MakeID generates a unique ID for test records.
func MakeID() string {
	return uuid.New().String()
}

// CreateAccount inserts an account with the given balance and returns it.
func CreateAccount(t *testing.T, db *sql.DB, balance float64) model.Account {
	t.Helper()

	userID := MakeID()
	_, err := db.Exec(
		`INSERT INTO account (user_id, balance, created_at) VALUES (?, ?, ?)`,
		userID, balance, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{UserID: userID, Balance: balance}
}

// CreateFund inserts a fund with the given scheme code and returns it.
func CreateFund(t *testing.T, db *sql.DB, schemeCode string) model.Fund {
	t.Helper()

	fund := model.Fund{
		SchemeCode: schemeCode,
		Name:       "Test Fund " + schemeCode,
		FundHouse:  "Test AMC",
		Category:   "Equity",
	}

	_, err := db.Exec(
		`INSERT INTO fund (scheme_code, name, fund_house, category) VALUES (?, ?, ?, ?)`,
		fund.SchemeCode, fund.Name, fund.FundHouse, fund.Category,
	)
	if err != nil {
		t.Fatalf("Failed to create test fund: %v", err)
	}

	return fund
}

// CreateNav inserts a NAV price for a scheme on a date.
func CreateNav(t *testing.T, db *sql.DB, schemeCode, date string, nav float64) model.NavPrice {
	t.Helper()

	price := model.NavPrice{
		ID:         MakeID(),
		SchemeCode: schemeCode,
		Date:       date,
		Nav:        nav,
	}

	_, err := db.Exec(
		`INSERT INTO nav_price (id, scheme_code, date, nav) VALUES (?, ?, ?, ?)`,
		price.ID, price.SchemeCode, price.Date, price.Nav,
	)
	if err != nil {
		t.Fatalf("Failed to create test nav price: %v", err)
	}

	return price
}

// CreateHolding inserts a holding for a user in a scheme.
func CreateHolding(t *testing.T, db *sql.DB, userID, schemeCode string, units, invested float64) model.Holding {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO holding (id, user_id, scheme_code, total_units, invested_amount)
		 VALUES (?, ?, ?, ?, ?)`,
		MakeID(), userID, schemeCode, units, invested,
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		UserID:         userID,
		SchemeCode:     schemeCode,
		TotalUnits:     units,
		InvestedAmount: invested,
	}
}

// PlanBuilder provides a fluent interface for creating test plans.
//
// Example usage:
//
//	plan := testutil.NewPlan(user.UserID, "100001").
//	    WithFrequency(calendar.Monthly).
//	    WithStartDate("2025-01-01").
//	    Build(t, db)
type PlanBuilder struct {
	ID                    string
	UserID                string
	SchemeCode            string
	TargetSchemeCode      string
	Type                  model.TransactionType
	Amount                float64
	Frequency             calendar.Frequency
	StartDate             string
	EndDate               string
	NextDueDate           string
	RemainingInstallments *int
	Status                model.PlanStatus
}

// NewPlan creates a PlanBuilder with sensible defaults: an open-ended
// daily SIP of 1000 due on its start date.
func NewPlan(userID, schemeCode string) *PlanBuilder {
	return &PlanBuilder{
		ID:          MakeID(),
		UserID:      userID,
		SchemeCode:  schemeCode,
		Type:        model.TypeSIP,
		Amount:      1000,
		Frequency:   calendar.Daily,
		StartDate:   "2025-06-01",
		NextDueDate: "2025-06-01",
		Status:      model.StatusActive,
	}
}

// WithType sets the plan type.
func (b *PlanBuilder) WithType(t model.TransactionType) *PlanBuilder {
	b.Type = t
	return b
}

// WithTarget sets the STP destination scheme.
func (b *PlanBuilder) WithTarget(schemeCode string) *PlanBuilder {
	b.TargetSchemeCode = schemeCode
	return b
}

// WithAmount sets the installment amount.
func (b *PlanBuilder) WithAmount(amount float64) *PlanBuilder {
	b.Amount = amount
	return b
}

// WithFrequency sets the schedule frequency.
func (b *PlanBuilder) WithFrequency(freq calendar.Frequency) *PlanBuilder {
	b.Frequency = freq
	return b
}

// WithStartDate sets the start date and aligns the next due date to it.
func (b *PlanBuilder) WithStartDate(date string) *PlanBuilder {
	b.StartDate = date
	b.NextDueDate = date
	return b
}

// WithNextDueDate overrides the next due date.
func (b *PlanBuilder) WithNextDueDate(date string) *PlanBuilder {
	b.NextDueDate = date
	return b
}

// WithEndDate sets an end date.
func (b *PlanBuilder) WithEndDate(date string) *PlanBuilder {
	b.EndDate = date
	return b
}

// WithRemainingInstallments caps the number of installments.
func (b *PlanBuilder) WithRemainingInstallments(n int) *PlanBuilder {
	b.RemainingInstallments = &n
	return b
}

// WithStatus sets the lifecycle status.
func (b *PlanBuilder) WithStatus(status model.PlanStatus) *PlanBuilder {
	b.Status = status
	return b
}

// Build creates the plan in the database and returns it.
func (b *PlanBuilder) Build(t *testing.T, db *sql.DB) model.RecurringPlan {
	t.Helper()

	var endDate, target sql.NullString
	if b.EndDate != "" {
		endDate = sql.NullString{String: b.EndDate, Valid: true}
	}
	if b.TargetSchemeCode != "" {
		target = sql.NullString{String: b.TargetSchemeCode, Valid: true}
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO recurring_plan (
			id, user_id, scheme_code, target_scheme_code, type, amount,
			frequency, start_date, end_date, next_due_date,
			remaining_installments, status, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`

	nowStr := now.Format(time.RFC3339)
	_, err := db.Exec(query,
		b.ID, b.UserID, b.SchemeCode, target, string(b.Type), b.Amount,
		string(b.Frequency), b.StartDate, endDate, b.NextDueDate,
		b.RemainingInstallments, string(b.Status), nowStr, nowStr,
	)
	if err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return model.RecurringPlan{
		ID:                    b.ID,
		UserID:                b.UserID,
		SchemeCode:            b.SchemeCode,
		TargetSchemeCode:      b.TargetSchemeCode,
		Type:                  b.Type,
		Amount:                b.Amount,
		Frequency:             b.Frequency,
		StartDate:             b.StartDate,
		EndDate:               b.EndDate,
		NextDueDate:           b.NextDueDate,
		RemainingInstallments: b.RemainingInstallments,
		Status:                b.Status,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
