package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/nav"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
)

// FakeQuoteFetcher serves canned quotes keyed by scheme code. Schemes
// without an entry return ErrNavUnavailable.
type FakeQuoteFetcher struct {
	Quotes map[string]nav.Quote
}

func (f *FakeQuoteFetcher) GetLatestQuote(ctx context.Context, schemeCode string) (nav.Quote, error) {
	q, ok := f.Quotes[schemeCode]
	if !ok {
		return nav.Quote{}, apperrors.ErrNavUnavailable
	}
	return q, nil
}

func NewTestFundService(t *testing.T, db *sql.DB, fetcher service.QuoteFetcher) *service.FundService {
	t.Helper()

	fundRepo := repository.NewFundRepository(db)

	return service.NewFundService(
		fundRepo,
		fetcher,
		zerolog.Nop(),
	)
}

func NewTestAccountService(t *testing.T, db *sql.DB, startingBalance float64) *service.AccountService {
	t.Helper()

	return service.NewAccountService(
		db,
		repository.NewAccountRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewFundRepository(db),
		time.UTC,
		startingBalance,
	)
}

func NewTestTradeService(t *testing.T, db *sql.DB) *service.TradeService {
	t.Helper()

	return service.NewTradeService(
		db,
		repository.NewAccountRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewFundRepository(db),
		time.UTC,
	)
}

func NewTestPlanService(t *testing.T, db *sql.DB) *service.PlanService {
	t.Helper()

	return service.NewPlanService(
		repository.NewPlanRepository(db),
		repository.NewExecutionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewFundRepository(db),
	)
}

// NewTestEngine builds an execution engine that prices installments from
// the seeded nav_price table.
func NewTestEngine(t *testing.T, db *sql.DB) *service.ExecutionEngine {
	t.Helper()

	navs := NewTestFundService(t, db, &FakeQuoteFetcher{})

	return service.NewExecutionEngine(
		db,
		repository.NewPlanRepository(db),
		repository.NewAccountRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewExecutionRepository(db),
		navs,
		time.UTC,
		1,
		zerolog.Nop(),
	)
}
