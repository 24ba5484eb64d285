package service_test

import (
	"context"
	"testing"

	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
	"github.com/fundsim/Paper-Trading-Backend/internal/testutil"
)

// TestExecutionEngine_SIP tests buy-side installment execution.
//
// WHY: A SIP installment is the engine's core money movement: debit the
// balance, credit units at the latest NAV, append the ledger entry and the
// execution record, and advance the schedule, all in one transaction.
func TestExecutionEngine_SIP(t *testing.T) {
	ctx := context.Background()

	t.Run("executes a due installment end to end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}

		if summary.Succeeded != 1 || summary.Failed != 0 || summary.Skipped != 0 {
			t.Fatalf("Summary = %d/%d/%d, want 1 succeeded", summary.Succeeded, summary.Failed, summary.Skipped)
		}

		// Balance decreased by exactly the installment amount.
		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 99000 {
			t.Errorf("Balance = %v, want 99000", got.Balance)
		}

		// Units credited at the latest NAV.
		holdingRepo := repository.NewHoldingRepository(db)
		h, err := holdingRepo.GetHolding(ctx, db, account.UserID, fund.SchemeCode)
		if err != nil {
			t.Fatalf("GetHolding returned unexpected error: %v", err)
		}
		if h.TotalUnits != 40 {
			t.Errorf("TotalUnits = %v, want 40", h.TotalUnits)
		}
		if h.InvestedAmount != 1000 {
			t.Errorf("InvestedAmount = %v, want 1000", h.InvestedAmount)
		}

		// One SUCCESS record for the slot.
		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		rec := records[0]
		if rec.Status != model.ExecutionSuccess || rec.ScheduledDate != "2025-06-01" {
			t.Errorf("Record = %+v, want SUCCESS for 2025-06-01", rec)
		}
		if rec.Units != 40 || rec.NavUsed != 25.0 {
			t.Errorf("Record units/nav = %v/%v, want 40/25", rec.Units, rec.NavUsed)
		}

		// Ledger carries the debit.
		ledger, _ := accountRepo.GetCashTransactions(ctx, account.UserID)
		if len(ledger) != 1 || ledger[0].Type != model.CashSIPDebit || ledger[0].Amount != 1000 {
			t.Errorf("Ledger = %+v, want one SIP_DEBIT of 1000", ledger)
		}

		// Schedule advanced past the run date.
		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.NextDueDate != "2025-06-02" {
			t.Errorf("NextDueDate = %q, want %q", p.NextDueDate, "2025-06-02")
		}
		if p.Status != model.StatusActive {
			t.Errorf("Status = %q, want ACTIVE", p.Status)
		}
	})

	t.Run("rerun for the same date moves no money", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").Build(t, db)

		if _, err := engine.RunDueInstallments(ctx, "2025-06-01"); err != nil {
			t.Fatalf("First run returned unexpected error: %v", err)
		}
		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("Second run returned unexpected error: %v", err)
		}

		if summary.Succeeded != 0 || summary.Failed != 0 || summary.Skipped != 0 {
			t.Errorf("Second run summary = %+v, want empty", summary)
		}

		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 99000 {
			t.Errorf("Balance = %v, want 99000 after rerun", got.Balance)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if len(records) != 1 {
			t.Errorf("Expected 1 record after rerun, got %d", len(records))
		}
	})

	t.Run("insufficient balance fails the slot and advances the schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 500)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Failed != 1 || summary.Succeeded != 0 {
			t.Fatalf("Summary = %+v, want 1 failed", summary)
		}

		// Nothing moved.
		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 500 {
			t.Errorf("Balance = %v, want 500 untouched", got.Balance)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		rec := records[0]
		if rec.Status != model.ExecutionFailed || rec.FailureReason != model.ReasonInsufficientBalance {
			t.Errorf("Record = %+v, want FAILED with INSUFFICIENT_BALANCE", rec)
		}
		if rec.Units != 0 {
			t.Errorf("Units = %v, want 0 on a failed slot", rec.Units)
		}

		// The slot is consumed; the schedule still advances.
		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.NextDueDate != "2025-06-02" {
			t.Errorf("NextDueDate = %q, want %q", p.NextDueDate, "2025-06-02")
		}
	})

	t.Run("missing nav fails the slot without touching money", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Failed != 1 {
			t.Fatalf("Summary = %+v, want 1 failed", summary)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if records[0].FailureReason != model.ReasonNavUnavailable {
			t.Errorf("FailureReason = %q, want NAV_UNAVAILABLE", records[0].FailureReason)
		}

		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 100000 {
			t.Errorf("Balance = %v, want 100000 untouched", got.Balance)
		}
	})
}

// TestExecutionEngine_SWP tests sell-side installment execution.
//
// WHY: An SWP redeems units at the latest NAV with proportional cost-basis
// relief and credits the balance. Realized gain is the withdrawal amount
// minus the relieved basis.
func TestExecutionEngine_SWP(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems units and credits the balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 1000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		testutil.CreateHolding(t, db, account.UserID, fund.SchemeCode, 100, 2000)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithType(model.TypeSWP).WithAmount(500).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Succeeded != 1 {
			t.Fatalf("Summary = %+v, want 1 succeeded", summary)
		}

		// 500 at nav 25 is 20 units; relieved basis 2000 * 20/100 = 400.
		holdingRepo := repository.NewHoldingRepository(db)
		h, _ := holdingRepo.GetHolding(ctx, db, account.UserID, fund.SchemeCode)
		if h.TotalUnits != 80 {
			t.Errorf("TotalUnits = %v, want 80", h.TotalUnits)
		}
		if h.InvestedAmount != 1600 {
			t.Errorf("InvestedAmount = %v, want 1600", h.InvestedAmount)
		}

		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 1500 {
			t.Errorf("Balance = %v, want 1500", got.Balance)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		rec := records[0]
		if rec.Units != 20 || rec.NavUsed != 25.0 {
			t.Errorf("Record units/nav = %v/%v, want 20/25", rec.Units, rec.NavUsed)
		}
		if rec.CostBasis != 400 || rec.RealizedGain != 100 {
			t.Errorf("CostBasis/RealizedGain = %v/%v, want 400/100", rec.CostBasis, rec.RealizedGain)
		}

		ledger, _ := accountRepo.GetCashTransactions(ctx, account.UserID)
		if len(ledger) != 1 || ledger[0].Type != model.CashSWPCredit {
			t.Errorf("Ledger = %+v, want one SWP_CREDIT", ledger)
		}
	})

	t.Run("insufficient units fails the slot and leaves the position untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 1000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		testutil.CreateHolding(t, db, account.UserID, fund.SchemeCode, 10, 200)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithType(model.TypeSWP).WithAmount(500).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Failed != 1 {
			t.Fatalf("Summary = %+v, want 1 failed", summary)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if records[0].FailureReason != model.ReasonInsufficientUnits {
			t.Errorf("FailureReason = %q, want INSUFFICIENT_UNITS", records[0].FailureReason)
		}

		holdingRepo := repository.NewHoldingRepository(db)
		h, _ := holdingRepo.GetHolding(ctx, db, account.UserID, fund.SchemeCode)
		if h.TotalUnits != 10 || h.InvestedAmount != 200 {
			t.Errorf("Holding = %v/%v, want 10/200 untouched", h.TotalUnits, h.InvestedAmount)
		}

		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 1000 {
			t.Errorf("Balance = %v, want 1000 untouched", got.Balance)
		}
	})

	t.Run("missing holding reads as insufficient units", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 1000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithType(model.TypeSWP).WithAmount(500).WithStartDate("2025-06-01").Build(t, db)

		if _, err := engine.RunDueInstallments(ctx, "2025-06-01"); err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if records[0].Status != model.ExecutionFailed || records[0].FailureReason != model.ReasonInsufficientUnits {
			t.Errorf("Record = %+v, want FAILED with INSUFFICIENT_UNITS", records[0])
		}
	})
}

// TestExecutionEngine_STP tests fund-to-fund transfer execution.
//
// WHY: An STP pairs a redemption in the source fund with a purchase in the
// target fund for the same rupee amount. The cash balance must not move.
func TestExecutionEngine_STP(t *testing.T) {
	ctx := context.Background()

	t.Run("moves value between funds without touching the balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 1000)
		source := testutil.CreateFund(t, db, "100001")
		target := testutil.CreateFund(t, db, "200002")
		testutil.CreateNav(t, db, source.SchemeCode, "2025-06-01", 25.0)
		testutil.CreateNav(t, db, target.SchemeCode, "2025-06-01", 10.0)
		testutil.CreateHolding(t, db, account.UserID, source.SchemeCode, 100, 2000)
		plan := testutil.NewPlan(account.UserID, source.SchemeCode).
			WithType(model.TypeSTP).WithTarget(target.SchemeCode).
			WithAmount(500).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Succeeded != 1 {
			t.Fatalf("Summary = %+v, want 1 succeeded", summary)
		}

		holdingRepo := repository.NewHoldingRepository(db)
		src, _ := holdingRepo.GetHolding(ctx, db, account.UserID, source.SchemeCode)
		if src.TotalUnits != 80 || src.InvestedAmount != 1600 {
			t.Errorf("Source holding = %v/%v, want 80/1600", src.TotalUnits, src.InvestedAmount)
		}
		tgt, _ := holdingRepo.GetHolding(ctx, db, account.UserID, target.SchemeCode)
		if tgt.TotalUnits != 50 || tgt.InvestedAmount != 500 {
			t.Errorf("Target holding = %v/%v, want 50/500", tgt.TotalUnits, tgt.InvestedAmount)
		}

		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 1000 {
			t.Errorf("Balance = %v, want 1000 untouched by a transfer", got.Balance)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		rec := records[0]
		if rec.Units != 50 || rec.NavUsed != 10.0 {
			t.Errorf("Record units/nav = %v/%v, want purchased 50 at 10", rec.Units, rec.NavUsed)
		}
		if rec.CostBasis != 400 || rec.RealizedGain != 100 {
			t.Errorf("CostBasis/RealizedGain = %v/%v, want 400/100", rec.CostBasis, rec.RealizedGain)
		}
	})

	t.Run("missing target nav fails the slot before the redemption", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 1000)
		source := testutil.CreateFund(t, db, "100001")
		target := testutil.CreateFund(t, db, "200002")
		testutil.CreateNav(t, db, source.SchemeCode, "2025-06-01", 25.0)
		testutil.CreateHolding(t, db, account.UserID, source.SchemeCode, 100, 2000)
		testutil.NewPlan(account.UserID, source.SchemeCode).
			WithType(model.TypeSTP).WithTarget(target.SchemeCode).
			WithAmount(500).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Failed != 1 {
			t.Fatalf("Summary = %+v, want 1 failed", summary)
		}

		holdingRepo := repository.NewHoldingRepository(db)
		src, _ := holdingRepo.GetHolding(ctx, db, account.UserID, source.SchemeCode)
		if src.TotalUnits != 100 {
			t.Errorf("Source holding = %v units, want 100 untouched", src.TotalUnits)
		}
	})
}

// TestExecutionEngine_CatchUp tests overdue schedule handling.
//
// WHY: When the scheduler has not run for several periods, only the oldest
// due slot executes; the slots between it and the current date are
// consumed as SKIPPED so every scheduled date keeps exactly one record and
// a rerun finds nothing due.
func TestExecutionEngine_CatchUp(t *testing.T) {
	ctx := context.Background()

	t.Run("skips intermediate overdue slots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-03")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Succeeded != 1 || summary.Skipped != 2 {
			t.Fatalf("Summary = %+v, want 1 succeeded and 2 skipped", summary)
		}

		// Exactly one installment's worth of money moved.
		accountRepo := repository.NewAccountRepository(db)
		got, _ := accountRepo.GetAccount(ctx, account.UserID)
		if got.Balance != 99000 {
			t.Errorf("Balance = %v, want 99000", got.Balance)
		}

		executionRepo := repository.NewExecutionRepository(db)
		records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		if records[0].Status != model.ExecutionSuccess {
			t.Errorf("records[0] = %+v, want SUCCESS", records[0])
		}
		for _, rec := range records[1:] {
			if rec.Status != model.ExecutionSkipped || rec.FailureReason != model.ReasonMissedWindow {
				t.Errorf("Record = %+v, want SKIPPED with MISSED_WINDOW", rec)
			}
		}

		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.NextDueDate != "2025-06-04" {
			t.Errorf("NextDueDate = %q, want %q", p.NextDueDate, "2025-06-04")
		}

		// A rerun finds nothing due.
		again, err := engine.RunDueInstallments(ctx, "2025-06-03")
		if err != nil {
			t.Fatalf("Rerun returned unexpected error: %v", err)
		}
		if len(again.Records) != 0 {
			t.Errorf("Rerun produced %d records, want 0", len(again.Records))
		}
	})

	t.Run("skipped slots consume remaining installments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").
			WithRemainingInstallments(2).Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-10")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}

		// Slot 1 executes, slot 2 is skipped, and the plan is done.
		if summary.Succeeded != 1 || summary.Skipped != 1 {
			t.Fatalf("Summary = %+v, want 1 succeeded and 1 skipped", summary)
		}

		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.Status != model.StatusCompleted {
			t.Errorf("Status = %q, want COMPLETED", p.Status)
		}
		if p.RemainingInstallments == nil || *p.RemainingInstallments != 0 {
			t.Errorf("RemainingInstallments = %v, want 0", p.RemainingInstallments)
		}
	})
}

// TestExecutionEngine_Completion tests terminal schedule transitions.
func TestExecutionEngine_Completion(t *testing.T) {
	ctx := context.Background()

	t.Run("completes when the last installment executes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").
			WithRemainingInstallments(1).Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Succeeded != 1 || summary.Skipped != 0 {
			t.Fatalf("Summary = %+v, want exactly 1 succeeded", summary)
		}

		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.Status != model.StatusCompleted {
			t.Errorf("Status = %q, want COMPLETED", p.Status)
		}
	})

	t.Run("completes when the next date passes the end date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").
			WithEndDate("2025-06-01").Build(t, db)

		if _, err := engine.RunDueInstallments(ctx, "2025-06-01"); err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}

		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.Status != model.StatusCompleted {
			t.Errorf("Status = %q, want COMPLETED", p.Status)
		}

		// A later pass finds nothing.
		summary, err := engine.RunDueInstallments(ctx, "2025-06-02")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if len(summary.Records) != 0 {
			t.Errorf("Completed plan produced %d records", len(summary.Records))
		}
	})

	t.Run("completes even when the final slot fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100) // cannot afford the installment
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").
			WithRemainingInstallments(1).Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Failed != 1 {
			t.Fatalf("Summary = %+v, want 1 failed", summary)
		}

		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.Status != model.StatusCompleted {
			t.Errorf("Status = %q, want COMPLETED after the last slot", p.Status)
		}
	})
}

// TestExecutionEngine_Selection tests which plans a pass picks up.
func TestExecutionEngine_Selection(t *testing.T) {
	ctx := context.Background()

	t.Run("ignores paused and cancelled plans", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)
		paused := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithStartDate("2025-06-01").WithStatus(model.StatusPaused).Build(t, db)
		cancelled := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithStartDate("2025-06-01").WithStatus(model.StatusCancelled).Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if len(summary.Records) != 0 {
			t.Errorf("Inactive plans produced %d records", len(summary.Records))
		}

		executionRepo := repository.NewExecutionRepository(db)
		for _, plan := range []model.RecurringPlan{paused, cancelled} {
			records, _ := executionRepo.GetRecordsByPlan(ctx, plan.ID)
			if len(records) != 0 {
				t.Errorf("Plan %s has %d records, want 0", plan.ID, len(records))
			}
		}
	})

	t.Run("executes plans of multiple users in one pass", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 25.0)

		userA := testutil.CreateAccount(t, db, 10000)
		userB := testutil.CreateAccount(t, db, 10000)
		testutil.NewPlan(userA.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2025-06-01").Build(t, db)
		testutil.NewPlan(userB.UserID, fund.SchemeCode).
			WithAmount(2000).WithStartDate("2025-06-01").Build(t, db)

		summary, err := engine.RunDueInstallments(ctx, "2025-06-01")
		if err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}
		if summary.Succeeded != 2 {
			t.Fatalf("Summary = %+v, want 2 succeeded", summary)
		}

		accountRepo := repository.NewAccountRepository(db)
		a, _ := accountRepo.GetAccount(ctx, userA.UserID)
		b, _ := accountRepo.GetAccount(ctx, userB.UserID)
		if a.Balance != 9000 || b.Balance != 8000 {
			t.Errorf("Balances = %v/%v, want 9000/8000", a.Balance, b.Balance)
		}
	})

	t.Run("rejects a malformed run date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)

		if _, err := engine.RunDueInstallments(ctx, "June 1st"); err == nil {
			t.Error("Expected error for malformed date, got nil")
		}
	})

	t.Run("monthly overflow schedule keeps stepping", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := testutil.NewTestEngine(t, db)
		account := testutil.CreateAccount(t, db, 100000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2026-01-31", 25.0)
		plan := testutil.NewPlan(account.UserID, fund.SchemeCode).
			WithAmount(1000).WithStartDate("2026-01-31").
			WithFrequency(calendar.Monthly).Build(t, db)

		if _, err := engine.RunDueInstallments(ctx, "2026-01-31"); err != nil {
			t.Fatalf("RunDueInstallments returned unexpected error: %v", err)
		}

		// Jan 31 + 1 month normalizes forward to Mar 3.
		planRepo := repository.NewPlanRepository(db)
		p, _ := planRepo.GetPlan(ctx, plan.ID)
		if p.NextDueDate != "2026-03-03" {
			t.Errorf("NextDueDate = %q, want %q", p.NextDueDate, "2026-03-03")
		}
	})
}
