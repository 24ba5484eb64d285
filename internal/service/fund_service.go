package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fundsim/Paper-Trading-Backend/internal/model"
	"github.com/fundsim/Paper-Trading-Backend/internal/nav"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
)

// QuoteFetcher fetches the latest published NAV for a scheme from the
// external data source.
type QuoteFetcher interface {
	GetLatestQuote(ctx context.Context, schemeCode string) (nav.Quote, error)
}

// FundService handles fund catalogue and NAV business logic. It implements
// the execution engine's NavSource: the engine prices installments from the
// nav_price table, which SyncNavs keeps fresh.
type FundService struct {
	fundRepo *repository.FundRepository
	fetcher  QuoteFetcher
	logger   zerolog.Logger
}

// NewFundService creates a new FundService with the provided dependencies.
func NewFundService(fundRepo *repository.FundRepository, fetcher QuoteFetcher, logger zerolog.Logger) *FundService {
	return &FundService{
		fundRepo: fundRepo,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// GetAllFunds returns the fund catalogue.
func (s *FundService) GetAllFunds(ctx context.Context) ([]model.Fund, error) {
	return s.fundRepo.GetAllFunds(ctx)
}

// GetFund returns one fund by scheme code.
func (s *FundService) GetFund(ctx context.Context, schemeCode string) (model.Fund, error) {
	return s.fundRepo.GetFund(ctx, schemeCode)
}

// AddFund registers a scheme in the catalogue and immediately pulls its
// latest NAV so the fund is tradeable without waiting for the next sync.
func (s *FundService) AddFund(ctx context.Context, f model.Fund) (model.Fund, error) {
	quote, err := s.fetcher.GetLatestQuote(ctx, f.SchemeCode)
	if err != nil {
		return model.Fund{}, fmt.Errorf("failed to fetch nav for scheme %s: %w", f.SchemeCode, err)
	}

	if f.Name == "" {
		f.Name = quote.SchemeName
	}
	if f.FundHouse == "" {
		f.FundHouse = quote.FundHouse
	}
	if f.Category == "" {
		f.Category = quote.Category
	}

	if err := s.fundRepo.UpsertFund(ctx, f); err != nil {
		return model.Fund{}, err
	}
	if err := s.fundRepo.UpsertNav(ctx, f.SchemeCode, quote.Date, quote.Nav); err != nil {
		return model.Fund{}, err
	}
	return f, nil
}

// LatestNav returns the most recent stored NAV for a scheme. This is the
// engine's NavSource implementation.
func (s *FundService) LatestNav(ctx context.Context, schemeCode string) (model.NavPrice, error) {
	return s.fundRepo.GetLatestNav(ctx, schemeCode)
}

// GetNavHistory returns stored NAVs for a scheme within an inclusive range.
func (s *FundService) GetNavHistory(ctx context.Context, schemeCode, startDate, endDate string) ([]model.NavPrice, error) {
	return s.fundRepo.GetNavHistory(ctx, schemeCode, startDate, endDate)
}

// SyncNavs refreshes the stored NAV of every catalogued fund from the
// external source. A failed scheme is logged and skipped; one bad scheme
// must not starve the rest.
func (s *FundService) SyncNavs(ctx context.Context) (int, error) {
	funds, err := s.fundRepo.GetAllFunds(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, f := range funds {
		quote, err := s.fetcher.GetLatestQuote(ctx, f.SchemeCode)
		if err != nil {
			s.logger.Warn().Err(err).Str("scheme_code", f.SchemeCode).Msg("nav sync failed for scheme")
			continue
		}

		if err := s.fundRepo.UpsertNav(ctx, f.SchemeCode, quote.Date, quote.Nav); err != nil {
			s.logger.Error().Err(err).Str("scheme_code", f.SchemeCode).Msg("failed to store synced nav")
			continue
		}
		synced++
	}

	s.logger.Info().Int("synced", synced).Int("total", len(funds)).Msg("nav sync finished")
	return synced, nil
}
