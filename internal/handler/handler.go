// Package handler exposes the storefront over HTTP.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adventureworks/storefront/internal/domain/catalog"
	"github.com/adventureworks/storefront/internal/domain/identity"
	"github.com/adventureworks/storefront/internal/domain/order"
)

// Handler routes API requests to the domain services.
type Handler struct {
	catalog  catalog.Repository
	orders   *order.Service
	identity *identity.Service
}

// New constructs a Handler with the required domain dependencies.
func New(cat catalog.Repository, orders *order.Service, id *identity.Service) *Handler {
	return &Handler{
		catalog:  cat,
		orders:   orders,
		identity: id,
	}
}

// Routes builds the /api router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/deals", h.listDeals)

		r.Post("/auth/signup", h.signup)
		r.Post("/auth/signin", h.signin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/me", h.me)
			r.Post("/orders", h.createOrder)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Get("/orders/{id}/invoice", h.getInvoice)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeJSON writes v as a JSON response. Encoding failures after the header
// is written can only be logged by the caller's middleware, so they are
// ignored here.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
