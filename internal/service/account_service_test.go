package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/testutil"
)

// TestAccountService_OpenAccount tests paper account opening.
//
// WHY: A new account is seeded with the configured starting balance and
// the seed must appear on the ledger, so balance movements are auditable
// from the first rupee.
func TestAccountService_OpenAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds the starting balance and records it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)

		account, err := svc.OpenAccount(ctx)
		if err != nil {
			t.Fatalf("OpenAccount returned unexpected error: %v", err)
		}
		if account.Balance != 100000 {
			t.Errorf("Balance = %v, want 100000", account.Balance)
		}
		if account.UserID == "" {
			t.Error("Expected a generated user ID")
		}

		ledger, err := svc.GetCashTransactions(ctx, account.UserID)
		if err != nil {
			t.Fatalf("GetCashTransactions returned unexpected error: %v", err)
		}
		if len(ledger) != 1 || ledger[0].Type != model.CashDeposit || ledger[0].Amount != 100000 {
			t.Errorf("Ledger = %+v, want one opening DEPOSIT of 100000", ledger)
		}
	})

	t.Run("each account gets a distinct user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)

		a, err := svc.OpenAccount(ctx)
		if err != nil {
			t.Fatalf("OpenAccount returned unexpected error: %v", err)
		}
		b, err := svc.OpenAccount(ctx)
		if err != nil {
			t.Fatalf("OpenAccount returned unexpected error: %v", err)
		}
		if a.UserID == b.UserID {
			t.Errorf("Both accounts share user ID %s", a.UserID)
		}
	})
}

// TestAccountService_Deposit tests balance top-ups.
func TestAccountService_Deposit(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the balance and the ledger together", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)
		account := testutil.CreateAccount(t, db, 1000)

		got, err := svc.Deposit(ctx, account.UserID, 500)
		if err != nil {
			t.Fatalf("Deposit returned unexpected error: %v", err)
		}
		if got.Balance != 1500 {
			t.Errorf("Balance = %v, want 1500", got.Balance)
		}

		ledger, _ := svc.GetCashTransactions(ctx, account.UserID)
		if len(ledger) != 1 || ledger[0].Type != model.CashDeposit || ledger[0].Amount != 500 {
			t.Errorf("Ledger = %+v, want one DEPOSIT of 500", ledger)
		}
	})

	t.Run("rejects non-positive deposits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)
		account := testutil.CreateAccount(t, db, 1000)

		for _, amount := range []float64{0, -500} {
			if _, err := svc.Deposit(ctx, account.UserID, amount); !errors.Is(err, apperrors.ErrNegativeAmount) {
				t.Errorf("Deposit(%v): expected ErrNegativeAmount, got %v", amount, err)
			}
		}
	})

	t.Run("rejects a deposit to a missing account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)

		if _, err := svc.Deposit(ctx, testutil.MakeID(), 500); !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("Expected ErrAccountNotFound, got %v", err)
		}
	})
}

// TestAccountService_GetPortfolio tests portfolio valuation.
//
// WHY: The portfolio view values each position at its latest stored NAV.
// A position whose scheme has no stored NAV must still appear, unpriced,
// rather than silently disappearing.
func TestAccountService_GetPortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("values positions at the latest nav", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)
		account := testutil.CreateAccount(t, db, 5000)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-01", 20.0)
		testutil.CreateNav(t, db, fund.SchemeCode, "2025-06-02", 25.0)
		testutil.CreateHolding(t, db, account.UserID, fund.SchemeCode, 100, 2000)

		summary, err := svc.GetPortfolio(ctx, account.UserID)
		if err != nil {
			t.Fatalf("GetPortfolio returned unexpected error: %v", err)
		}

		if summary.Balance != 5000 {
			t.Errorf("Balance = %v, want 5000", summary.Balance)
		}
		if len(summary.Positions) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(summary.Positions))
		}

		pos := summary.Positions[0]
		if pos.LatestNav != 25.0 || pos.NavDate != "2025-06-02" {
			t.Errorf("LatestNav/NavDate = %v/%q, want 25/2025-06-02", pos.LatestNav, pos.NavDate)
		}
		if pos.CurrentValue != 2500 {
			t.Errorf("CurrentValue = %v, want 2500", pos.CurrentValue)
		}
		if pos.UnrealizedGainLoss != 500 {
			t.Errorf("UnrealizedGainLoss = %v, want 500", pos.UnrealizedGainLoss)
		}
		if pos.FundName != fund.Name {
			t.Errorf("FundName = %q, want %q", pos.FundName, fund.Name)
		}
	})

	t.Run("unpriced positions are included with zero valuation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)
		account := testutil.CreateAccount(t, db, 0)
		fund := testutil.CreateFund(t, db, "100001")
		testutil.CreateHolding(t, db, account.UserID, fund.SchemeCode, 100, 2000)

		summary, err := svc.GetPortfolio(ctx, account.UserID)
		if err != nil {
			t.Fatalf("GetPortfolio returned unexpected error: %v", err)
		}
		if len(summary.Positions) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(summary.Positions))
		}

		pos := summary.Positions[0]
		if pos.CurrentValue != 0 || pos.LatestNav != 0 {
			t.Errorf("Unpriced position has value %v at nav %v, want 0/0", pos.CurrentValue, pos.LatestNav)
		}
		if pos.InvestedAmount != 2000 {
			t.Errorf("InvestedAmount = %v, want 2000", pos.InvestedAmount)
		}
	})

	t.Run("empty portfolio has no positions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAccountService(t, db, 100000)
		account := testutil.CreateAccount(t, db, 1234.56)

		summary, err := svc.GetPortfolio(ctx, account.UserID)
		if err != nil {
			t.Fatalf("GetPortfolio returned unexpected error: %v", err)
		}
		if len(summary.Positions) != 0 {
			t.Errorf("Expected no positions, got %d", len(summary.Positions))
		}
		if summary.Balance != 1234.56 {
			t.Errorf("Balance = %v, want 1234.56", summary.Balance)
		}
	})
}
