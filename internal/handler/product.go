package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adventureworks/storefront/internal/domain/catalog"
)

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Image    string  `json:"image,omitempty"`
	Tag      string  `json:"tag,omitempty"`
	Rating   int     `json:"rating,omitempty"`
	StockTag string  `json:"stock_tag,omitempty"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    p.Price.InexactFloat64(),
		Category: p.Category,
		Image:    p.Image,
		Tag:      p.Tag,
		Rating:   p.Rating,
		StockTag: p.StockTag,
	}
}

// listProducts handles GET /api/products?category=&tag=&q=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Query:    q.Get("q"),
	}

	products, err := h.catalog.List(r.Context(), f)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

// listCategories handles GET /api/categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// listDeals handles GET /api/deals, a shortcut for tag=deal.
func (h *Handler) listDeals(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context(), catalog.Filter{Tag: catalog.TagDeal})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}
