/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/products/*        Product and variant catalog
  /api/stock/*           Manual stock and capital adjustments
  /api/holders/*         Ledger history
  /api/sales/*           Checkout and cancellation
  /api/transactions/*    Whole-checkout cancellation
  /api/journal-entries/* Manual journal entries
  /api/reports/*         Derived journal, ledgers, summary
  /api/scenarios/*       Demo scenarios and reset

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Product catalog
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Post("/import", h.ImportProducts)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Post("/{id}/variants", h.AddVariant)
		})

		// Stock movements
		r.Route("/stock", func(r chi.Router) {
			r.Post("/adjustments", h.AdjustStock)
			r.Post("/capital-adjustments", h.AdjustCapital)
		})

		// Ledger history
		r.Route("/holders", func(r chi.Router) {
			r.Get("/{id}/history", h.GetHistory)
		})

		// Sales
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.RecordSale)
			r.Post("/checkout", h.Checkout)
			r.Delete("/{id}", h.CancelSale)
		})

		// Whole-checkout cancellation
		r.Route("/transactions", func(r chi.Router) {
			r.Delete("/{id}", h.CancelTransaction)
		})

		// Manual journal entries
		r.Route("/journal-entries", func(r chi.Router) {
			r.Get("/", h.ListManualEntries)
			r.Post("/", h.CreateManualEntry)
			r.Delete("/{id}", h.DeleteManualEntry)
		})

		// Derived reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/journal", h.GetJournal)
			r.Get("/ledger", h.GetLedger)
			r.Get("/summary", h.GetSummary)
			r.Get("/trial-balance", h.GetTrialBalance)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
