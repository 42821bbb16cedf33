/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the point-of-sale frontend

ROUTE GROUPS:
  /api/products/*     Catalog
  /api/clients/*      Clients, debts, settlement
  /api/sales/*        Checkout, sale headers and items
  /api/sale-items/*   Item deletion
  /api/payments/*     Payment allocation
  /api/reports/*      Dashboard totals and audit
  /api/backup         Database download
  /api/restore        Database upload
  /api/demo/load      Demo data (dev only)

SECURITY NOTE:
  No authentication middleware. The server is meant to run on the shop's
  own machine behind the point-of-sale frontend.

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

// RouterConfig holds router options.
type RouterConfig struct {
	AllowedOrigins []string
}

// DefaultAllowedOrigins are the dev frontend origins.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/low-stock", h.LowStockProducts)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/credit", h.ClientsWithCredit)
			r.Get("/regular", h.RegularClients)
			r.Get("/top", h.TopSpendingClients)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
			r.Get("/{id}/sales", h.ClientSales)
			r.Get("/{id}/payments", h.ClientPayments)
			r.Post("/{id}/settle", h.SettleClient)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.Checkout)
			r.Get("/{id}", h.GetSale)
			r.Put("/{id}", h.UpdateSale)
			r.Delete("/{id}", h.DeleteSale)
			r.Get("/{id}/items", h.ListSaleItems)
			r.Post("/{id}/items", h.AddSaleItems)
		})
		r.Delete("/sale-items/{id}", h.DeleteSaleItem)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Get("/{id}", h.GetPayment)
			r.Put("/{id}", h.UpdatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.Summary)
			r.Get("/top-products", h.TopProducts)
			r.Get("/unsold-products", h.UnsoldProducts)
			r.Get("/inventory", h.Inventory)
			r.Get("/audit", h.Audit)
		})

		r.Get("/backup", h.Backup)
		r.Post("/restore", h.Restore)
		r.Post("/demo/load", h.LoadDemo)
	})

	return r
}
