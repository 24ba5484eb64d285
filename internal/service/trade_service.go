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

// TradeResult describes one completed lump-sum trade.
type TradeResult struct {
	UserID       string  `json:"userId"`
	SchemeCode   string  `json:"schemeCode"`
	Side         string  `json:"side"`
	Amount       float64 `json:"amount"`
	Units        float64 `json:"units"`
	NavUsed      float64 `json:"navUsed"`
	NavDate      string  `json:"navDate"`
	CostBasis    float64 `json:"costBasis,omitempty"`
	RealizedGain float64 `json:"realizedGain,omitempty"`
}

// TradeService executes one-off lump-sum buys and sells at the latest
// stored NAV. It shares the same ledger and holding primitives as the
// recurring execution engine, so the same atomicity and sufficiency rules
// apply.
type TradeService struct {
	db          *sql.DB
	accountRepo *repository.AccountRepository
	holdingRepo *repository.HoldingRepository
	fundRepo    *repository.FundRepository
	loc         *time.Location
}

// NewTradeService creates a new TradeService with the provided dependencies.
func NewTradeService(
	db *sql.DB,
	accountRepo *repository.AccountRepository,
	holdingRepo *repository.HoldingRepository,
	fundRepo *repository.FundRepository,
	loc *time.Location,
) *TradeService {
	return &TradeService{
		db:          db,
		accountRepo: accountRepo,
		holdingRepo: holdingRepo,
		fundRepo:    fundRepo,
		loc:         loc,
	}
}

// Buy invests amount into a scheme at the latest NAV.
func (s *TradeService) Buy(ctx context.Context, userID, schemeCode string, amount float64) (TradeResult, error) {
	if amount <= 0 {
		return TradeResult{}, apperrors.ErrNegativeAmount
	}
	if _, err := s.accountRepo.GetAccount(ctx, userID); err != nil {
		return TradeResult{}, err
	}

	latest, err := s.fundRepo.GetLatestNav(ctx, schemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNavNotFound) {
			return TradeResult{}, apperrors.ErrNavUnavailable
		}
		return TradeResult{}, err
	}

	units := roundUnits(amount / latest.Nav)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TradeResult{}, fmt.Errorf("failed to begin buy transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.accountRepo.Debit(ctx, tx, userID, amount); err != nil {
		return TradeResult{}, err
	}
	if err := s.holdingRepo.AddUnits(ctx, tx, userID, schemeCode, units, amount); err != nil {
		return TradeResult{}, err
	}

	ct := model.CashTransaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        calendar.Today(s.loc),
		Type:        model.CashBuyDebit,
		Amount:      amount,
		Description: fmt.Sprintf("lump-sum buy %s", schemeCode),
	}
	if err := s.accountRepo.InsertCashTransaction(ctx, tx, ct); err != nil {
		return TradeResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return TradeResult{}, fmt.Errorf("failed to commit buy: %w", err)
	}

	return TradeResult{
		UserID:     userID,
		SchemeCode: schemeCode,
		Side:       "BUY",
		Amount:     amount,
		Units:      units,
		NavUsed:    latest.Nav,
		NavDate:    latest.Date,
	}, nil
}

// Sell redeems amount worth of units from a scheme at the latest NAV,
// relieving cost basis proportionally.
func (s *TradeService) Sell(ctx context.Context, userID, schemeCode string, amount float64) (TradeResult, error) {
	if amount <= 0 {
		return TradeResult{}, apperrors.ErrNegativeAmount
	}
	if _, err := s.accountRepo.GetAccount(ctx, userID); err != nil {
		return TradeResult{}, err
	}

	latest, err := s.fundRepo.GetLatestNav(ctx, schemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNavNotFound) {
			return TradeResult{}, apperrors.ErrNavUnavailable
		}
		return TradeResult{}, err
	}

	units := roundUnits(amount / latest.Nav)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TradeResult{}, fmt.Errorf("failed to begin sell transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	holding, err := s.holdingRepo.GetHolding(ctx, tx, userID, schemeCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			return TradeResult{}, apperrors.ErrInsufficientUnits
		}
		return TradeResult{}, err
	}
	if holding.TotalUnits < units {
		return TradeResult{}, apperrors.ErrInsufficientUnits
	}

	costBasis := roundMoney(holding.InvestedAmount * units / holding.TotalUnits)

	if err := s.holdingRepo.SubtractUnits(ctx, tx, userID, schemeCode, units, costBasis); err != nil {
		return TradeResult{}, err
	}
	if err := s.accountRepo.Credit(ctx, tx, userID, amount); err != nil {
		return TradeResult{}, err
	}

	ct := model.CashTransaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        calendar.Today(s.loc),
		Type:        model.CashSellCredit,
		Amount:      amount,
		Description: fmt.Sprintf("lump-sum sell %s", schemeCode),
	}
	if err := s.accountRepo.InsertCashTransaction(ctx, tx, ct); err != nil {
		return TradeResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return TradeResult{}, fmt.Errorf("failed to commit sell: %w", err)
	}

	return TradeResult{
		UserID:       userID,
		SchemeCode:   schemeCode,
		Side:         "SELL",
		Amount:       amount,
		Units:        units,
		NavUsed:      latest.Nav,
		NavDate:      latest.Date,
		CostBasis:    costBasis,
		RealizedGain: roundMoney(amount - costBasis),
	}, nil
}
