package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
)

// AccountService handles paper-account and portfolio business logic.
type AccountService struct {
	db              *sql.DB
	accountRepo     *repository.AccountRepository
	holdingRepo     *repository.HoldingRepository
	fundRepo        *repository.FundRepository
	loc             *time.Location
	startingBalance float64
}

// NewAccountService creates a new AccountService with the provided dependencies.
func NewAccountService(
	db *sql.DB,
	accountRepo *repository.AccountRepository,
	holdingRepo *repository.HoldingRepository,
	fundRepo *repository.FundRepository,
	loc *time.Location,
	startingBalance float64,
) *AccountService {
	return &AccountService{
		db:              db,
		accountRepo:     accountRepo,
		holdingRepo:     holdingRepo,
		fundRepo:        fundRepo,
		loc:             loc,
		startingBalance: startingBalance,
	}
}

// OpenAccount creates a paper account seeded with the configured starting
// balance and records the seed as a deposit on the ledger.
func (s *AccountService) OpenAccount(ctx context.Context) (model.Account, error) {
	userID := uuid.New().String()

	if err := s.accountRepo.CreateAccount(ctx, userID, s.startingBalance); err != nil {
		return model.Account{}, err
	}

	ct := model.CashTransaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        calendar.Today(s.loc),
		Type:        model.CashDeposit,
		Amount:      s.startingBalance,
		Description: "opening balance",
	}
	if err := s.accountRepo.InsertCashTransaction(ctx, s.db, ct); err != nil {
		return model.Account{}, err
	}

	return s.accountRepo.GetAccount(ctx, userID)
}

// GetAccount returns the user's account.
func (s *AccountService) GetAccount(ctx context.Context, userID string) (model.Account, error) {
	return s.accountRepo.GetAccount(ctx, userID)
}

// Deposit adds paper money to the user's balance. The credit and the ledger
// entry commit as one transaction.
func (s *AccountService) Deposit(ctx context.Context, userID string, amount float64) (model.Account, error) {
	if amount <= 0 {
		return model.Account{}, apperrors.ErrNegativeAmount
	}
	if _, err := s.accountRepo.GetAccount(ctx, userID); err != nil {
		return model.Account{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to begin deposit transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.accountRepo.Credit(ctx, tx, userID, amount); err != nil {
		return model.Account{}, err
	}

	ct := model.CashTransaction{
		ID:     uuid.New().String(),
		UserID: userID,
		Date:   calendar.Today(s.loc),
		Type:   model.CashDeposit,
		Amount: amount,
	}
	if err := s.accountRepo.InsertCashTransaction(ctx, tx, ct); err != nil {
		return model.Account{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Account{}, fmt.Errorf("failed to commit deposit: %w", err)
	}

	return s.accountRepo.GetAccount(ctx, userID)
}

// GetCashTransactions returns the user's ledger.
func (s *AccountService) GetCashTransactions(ctx context.Context, userID string) ([]model.CashTransaction, error) {
	if _, err := s.accountRepo.GetAccount(ctx, userID); err != nil {
		return nil, err
	}
	return s.accountRepo.GetCashTransactions(ctx, userID)
}

// GetPortfolio values the user's holdings at the latest stored NAVs.
// Positions with no stored NAV are included with a zero valuation so the
// caller can see the holding exists even when pricing is stale.
func (s *AccountService) GetPortfolio(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	account, err := s.accountRepo.GetAccount(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	holdings, err := s.holdingRepo.GetHoldingsByUser(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary := model.PortfolioSummary{
		UserID:    userID,
		Balance:   roundMoney(account.Balance),
		Positions: []model.PositionSummary{},
	}

	for _, h := range holdings {
		pos := model.PositionSummary{
			SchemeCode:     h.SchemeCode,
			TotalUnits:     roundUnits(h.TotalUnits),
			InvestedAmount: roundMoney(h.InvestedAmount),
		}

		if fund, err := s.fundRepo.GetFund(ctx, h.SchemeCode); err == nil {
			pos.FundName = fund.Name
		}

		latest, err := s.fundRepo.GetLatestNav(ctx, h.SchemeCode)
		switch {
		case err == nil:
			pos.LatestNav = latest.Nav
			pos.NavDate = latest.Date
			pos.CurrentValue = roundMoney(h.TotalUnits * latest.Nav)
			pos.UnrealizedGainLoss = roundMoney(pos.CurrentValue - h.InvestedAmount)
		case errors.Is(err, apperrors.ErrNavNotFound):
			// leave the position unpriced
		default:
			return model.PortfolioSummary{}, err
		}

		summary.TotalInvested += h.InvestedAmount
		summary.TotalValue += pos.CurrentValue
		summary.Positions = append(summary.Positions, pos)
	}

	summary.TotalInvested = roundMoney(summary.TotalInvested)
	summary.TotalValue = roundMoney(summary.TotalValue)
	summary.TotalUnrealizedGainLoss = roundMoney(summary.TotalValue - summary.TotalInvested)
	return summary, nil
}
