package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/adventureworks/storefront/internal/domain/invoice"
	"github.com/adventureworks/storefront/internal/domain/order"
	"github.com/adventureworks/storefront/internal/domain/pricing"
)

type createOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		// Quantity defaults to 1 when omitted.
		Quantity int `json:"quantity"`
	} `json:"items"`
	Discount *struct {
		Code   string  `json:"code"`
		Amount float64 `json:"amount"`
	} `json:"discount"`
	Shipping float64        `json:"shipping"`
	Address  *order.Address `json:"address"`
}

type lineResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Image     string  `json:"image,omitempty"`
	Tag       string  `json:"tag,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type discountResponse struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type orderResponse struct {
	ID        string            `json:"id"`
	Items     []lineResponse    `json:"items"`
	Discount  *discountResponse `json:"discount,omitempty"`
	Shipping  float64           `json:"shipping"`
	Subtotal  float64           `json:"subtotal"`
	Total     float64           `json:"total"`
	Address   *order.Address    `json:"address,omitempty"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		Items:     make([]lineResponse, len(o.Items)),
		Shipping:  o.Shipping.InexactFloat64(),
		Subtotal:  o.Subtotal.InexactFloat64(),
		Total:     o.Total.InexactFloat64(),
		Address:   o.Address,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
	for i, l := range o.Items {
		resp.Items[i] = lineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Brand:     l.Brand,
			Image:     l.Image,
			Tag:       l.Tag,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.InexactFloat64(),
			LineTotal: l.LineTotal.InexactFloat64(),
		}
	}
	if o.Discount != nil {
		resp.Discount = &discountResponse{
			Code:   o.Discount.Code,
			Amount: o.Discount.Amount.InexactFloat64(),
		}
	}
	return resp
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid JSON body")
		return
	}

	items := make([]pricing.CartItem, len(req.Items))
	for i, it := range req.Items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		items[i] = pricing.CartItem{ProductID: it.ProductID, Quantity: qty}
	}

	var discount *pricing.Discount
	if req.Discount != nil {
		discount = &pricing.Discount{
			Code:   req.Discount.Code,
			Amount: decimal.NewFromFloat(req.Discount.Amount).Round(2),
		}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		OwnerID:  subjectFromContext(r.Context()),
		Items:    items,
		Discount: discount,
		Shipping: decimal.NewFromFloat(req.Shipping).Round(2),
		Address:  req.Address,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// listOrders handles GET /api/orders.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByOwner(r.Context(), subjectFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), subjectFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// getInvoice handles GET /api/orders/{id}/invoice. The document is JSON by
// default; clients accepting text/plain get the text rendering.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), subjectFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	doc := invoice.Render(o)

	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, doc.Text())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
