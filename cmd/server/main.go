package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/api"
	"github.com/fundsim/Paper-Trading-Backend/internal/config"
	"github.com/fundsim/Paper-Trading-Backend/internal/database"
	"github.com/fundsim/Paper-Trading-Backend/internal/jobs"
	"github.com/fundsim/Paper-Trading-Backend/internal/logging"
	"github.com/fundsim/Paper-Trading-Backend/internal/nav"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	logger.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	fundRepo := repository.NewFundRepository(db)
	planRepo := repository.NewPlanRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	systemRepo := repository.NewSystemRepository(db)

	// Create services
	systemService, err := service.NewSystemService(db, systemRepo, cfg.Admin.FernetKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create system service")
	}

	// A stored provider token takes effect on the next restart.
	navToken, err := systemService.GetNavAPIToken(context.Background())
	if err != nil {
		navToken = ""
	}
	navClient := nav.NewClient(cfg.Market.NavAPIBaseURL, navToken)

	fundService := service.NewFundService(fundRepo, navClient, logger)
	accountService := service.NewAccountService(
		db,
		accountRepo,
		holdingRepo,
		fundRepo,
		cfg.Market.Location,
		cfg.Account.StartingBalance,
	)
	tradeService := service.NewTradeService(
		db,
		accountRepo,
		holdingRepo,
		fundRepo,
		cfg.Market.Location,
	)
	planService := service.NewPlanService(
		planRepo,
		executionRepo,
		accountRepo,
		fundRepo,
	)
	engine := service.NewExecutionEngine(
		db,
		planRepo,
		accountRepo,
		holdingRepo,
		executionRepo,
		fundService,
		cfg.Market.Location,
		cfg.Scheduler.Workers,
		logger,
	)

	// Start the periodic jobs
	if cfg.Scheduler.Enabled {
		scheduler, err := jobs.New(cfg.Scheduler, cfg.Market.Location, engine, fundService, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create scheduler")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:  systemService,
		Account: accountService,
		Trade:   tradeService,
		Plan:    planService,
		Fund:    fundService,
		Engine:  engine,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
