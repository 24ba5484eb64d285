package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/handlers"
	custommiddleware "github.com/fundsim/Paper-Trading-Backend/internal/api/middleware"
	"github.com/fundsim/Paper-Trading-Backend/internal/config"
	"github.com/fundsim/Paper-Trading-Backend/internal/service"
)

// Services bundles the service layer dependencies the router needs.
type Services struct {
	System  *service.SystemService
	Account *service.AccountService
	Trade   *service.TradeService
	Plan    *service.PlanService
	Fund    *service.FundService
	Engine  *service.ExecutionEngine
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(custommiddleware.CORS(cfg.CORS.AllowedOrigins))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		accountHandler := handlers.NewAccountHandler(svc.Account, svc.Trade)
		planHandler := handlers.NewPlanHandler(svc.Plan)

		r.Post("/account", accountHandler.OpenAccount)

		// Schedule preview needs no account, so it lives outside the
		// user namespace.
		r.Get("/plan/preview", planHandler.Preview)

		// Per-user namespace
		r.Route("/user/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)

			r.Get("/account", accountHandler.GetAccount)
			r.Post("/account/deposit", accountHandler.Deposit)
			r.Get("/account/transactions", accountHandler.CashTransactions)
			r.Get("/portfolio", accountHandler.Portfolio)
			r.Post("/buy", accountHandler.Buy)
			r.Post("/sell", accountHandler.Sell)

			r.Route("/plan", func(r chi.Router) {
				r.Post("/", planHandler.CreatePlan)
				r.Get("/", planHandler.PlansPerUser)
				r.Get("/{planId}", planHandler.GetPlan)
				r.Get("/{planId}/history", planHandler.PlanHistory)
				r.Post("/{planId}/cancel", planHandler.CancelPlan)
				r.Post("/{planId}/pause", planHandler.PausePlan)
				r.Post("/{planId}/resume", planHandler.ResumePlan)
			})
		})

		// Fund catalog and NAV data
		r.Route("/fund", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(svc.Fund)
			r.Get("/", fundHandler.AllFunds)
			r.Post("/", fundHandler.AddFund)
			r.Get("/{schemeCode}", fundHandler.GetFund)
			r.Get("/{schemeCode}/nav", fundHandler.NavHistory)
			r.Get("/{schemeCode}/nav/latest", fundHandler.LatestNav)
		})

		// Admin namespace, protected by the internal API key
		r.Route("/admin", func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)

			adminHandler := handlers.NewAdminHandler(svc.Engine, svc.Fund, svc.System)
			r.Post("/run-installments", adminHandler.RunInstallments)
			r.Post("/sync-navs", adminHandler.SyncNavs)
			r.Put("/nav-token", adminHandler.SetNavToken)
		})
	})

	return r
}
