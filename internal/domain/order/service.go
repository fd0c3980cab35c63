package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adventureworks/storefront/internal/domain/pricing"
)

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	OwnerID  string
	Items    []pricing.CartItem
	Discount *pricing.Discount
	Shipping decimal.Decimal
	Address  *Address
}

// Service encapsulates order creation and ownership-scoped retrieval.
type Service struct {
	engine *pricing.Engine
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(engine *pricing.Engine, orders Repository) *Service {
	return &Service{
		engine: engine,
		orders: orders,
		now:    time.Now,
	}
}

// Create validates and prices the cart, persists the resulting order, and
// returns it. Validation failures abort before any write; a partial order is
// never persisted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	lines, err := s.engine.PriceLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal, total, err := pricing.Totals(lines, req.Discount, req.Shipping)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:        uuid.New().String(),
		OwnerID:   req.OwnerID,
		Items:     lines,
		Discount:  req.Discount,
		Shipping:  req.Shipping.Round(2),
		Subtotal:  subtotal,
		Total:     total,
		Address:   req.Address,
		Status:    StatusCreated,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// Get returns the order with the given id when owned by ownerID.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Order, error) {
	return s.orders.GetByID(ctx, id, ownerID)
}

// ListByOwner returns the owner's orders, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}
