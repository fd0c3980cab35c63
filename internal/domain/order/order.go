package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/adventureworks/storefront/internal/domain/pricing"
)

// ErrNotFound is returned when an order does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable so a
// caller cannot probe for other users' order ids.
var ErrNotFound = errors.New("order not found")

// Status describes an order's lifecycle state. Orders are created in
// StatusCreated and no further transitions are defined; the field is
// persisted and rendered so a state machine can be added later without a
// data migration.
type Status string

// StatusCreated is the initial (and currently only) order status.
const StatusCreated Status = "created"

// Address is an optional shipping address snapshot. Only Name is consumed by
// the invoice renderer; the rest is stored verbatim.
type Address struct {
	Name    string `json:"name,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Order is a priced, persisted order. It is immutable after creation except
// for Status.
type Order struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"owner_id"`
	Items     []pricing.Line    `json:"items"`
	Discount  *pricing.Discount `json:"discount,omitempty"`
	Shipping  decimal.Decimal   `json:"shipping"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Total     decimal.Decimal   `json:"total"`
	Address   *Address          `json:"address,omitempty"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// Repository defines persistence operations for orders.
//
// Implementations must linearize Create calls against the same collection
// and must not expose partially written state: a successful Create is
// immediately visible to GetByID and ListByOwner.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order only when it is owned by ownerID;
	// otherwise ErrNotFound.
	GetByID(ctx context.Context, id, ownerID string) (*Order, error)
	// ListByOwner returns the owner's orders, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
}
