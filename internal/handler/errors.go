package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/adventureworks/storefront/internal/domain/catalog"
	"github.com/adventureworks/storefront/internal/domain/identity"
	"github.com/adventureworks/storefront/internal/domain/order"
	"github.com/adventureworks/storefront/internal/domain/pricing"
)

// Stable error kinds exposed to clients.
const (
	kindInvalidRequest  = "invalid_request"
	kindProductNotFound = "product_not_found"
	kindAuthError       = "auth_error"
	kindNotFound        = "not_found"
	kindConflict        = "conflict"
	kindInternal        = "internal"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Kind: kind, Message: message})
}

// respondError maps a domain error to a client-visible status and kind.
// Unrecognized errors become an opaque 500 and are logged with the request
// context.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pnfErr *pricing.ProductNotFoundError
		iqErr  *pricing.InvalidQuantityError
	)

	switch {
	case errors.Is(err, pricing.ErrEmptyItems),
		errors.Is(err, pricing.ErrNegativeAmount),
		errors.Is(err, identity.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())

	case errors.As(err, &iqErr):
		writeError(w, http.StatusBadRequest, kindInvalidRequest, iqErr.Error())

	case errors.As(err, &pnfErr):
		writeError(w, http.StatusUnprocessableEntity, kindProductNotFound, pnfErr.Error())

	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, identity.ErrNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, err.Error())

	case errors.Is(err, identity.ErrEmailTaken):
		writeError(w, http.StatusConflict, kindConflict, err.Error())

	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, kindAuthError, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, kindInternal, "internal error")
	}
}
