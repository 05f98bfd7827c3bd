package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/valcoin/internal/adapter/http/handler"
	"github.com/iho/valcoin/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RuleHandler        *handler.RuleHandler
	TransactionHandler *handler.TransactionHandler
	LegadoHandler      *handler.LegadoHandler
	SettingsHandler    *handler.SettingsHandler
	HealthHandler      *handler.HealthHandler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity)

		// Rules
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", cfg.RuleHandler.List)
			r.Get("/applicable", cfg.RuleHandler.ListApplicable)
			r.Post("/{id}/check", cfg.RuleHandler.Check)
			r.Post("/{id}/apply", cfg.RuleHandler.Apply)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRuleManager)
				r.Post("/", cfg.RuleHandler.Create)
				r.Put("/{id}", cfg.RuleHandler.Update)
				r.Delete("/{id}", cfg.RuleHandler.Delete)
			})
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Get("/{id}/group", cfg.TransactionHandler.GetGroup)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireApprover)
				r.Post("/{id}/approve", cfg.TransactionHandler.Approve)
				r.Post("/{id}/reject", cfg.TransactionHandler.Reject)
			})
		})

		// Legados
		r.Get("/legados", cfg.LegadoHandler.List)

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Use(middleware.RequireRuleManager)
			r.Get("/", cfg.SettingsHandler.List)
			r.Put("/", cfg.SettingsHandler.Update)
		})
	})

	return r
}
