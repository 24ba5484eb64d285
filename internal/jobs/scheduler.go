// Package jobs wires the periodic triggers. The scheduler owns no business
// logic: it invokes the same engine and sync entry points the admin
// endpoints expose, in the operating timezone.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fundsim/Paper-Trading-Backend/internal/config"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
)

// Scheduler runs the daily NAV sync and installment jobs on cron schedules.
type Scheduler struct {
	c      *cron.Cron
	logger zerolog.Logger
}

// New builds a Scheduler from configuration. The cron runs in the market's
// operating timezone so "daily" means the market's calendar day, not the
// host's.
func New(cfg config.SchedulerConfig, loc *time.Location, engine *service.ExecutionEngine, funds *service.FundService, logger zerolog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc(cfg.NavSyncSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := funds.SyncNavs(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled nav sync failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid nav sync spec %q: %w", cfg.NavSyncSpec, err)
	}

	_, err = c.AddFunc(cfg.InstallmentSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := engine.RunToday(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled installment run failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid installment spec %q: %w", cfg.InstallmentSpec, err)
	}

	return &Scheduler{c: c, logger: logger}, nil
}

// Start begins scheduling in a background goroutine.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("scheduler started")
	s.c.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}
