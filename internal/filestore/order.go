package filestore

import (
	"context"
	"sort"

	"github.com/adventureworks/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository over a flat-file collection.
type OrderRepository struct {
	c *collection[order.Order]
}

// Create appends the order and persists the full collection before
// returning. Concurrent calls serialize on the collection lock.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.c.update(func(items []order.Order) ([]order.Order, error) {
		next := make([]order.Order, len(items), len(items)+1)
		copy(next, items)
		return append(next, *o), nil
	})
}

// GetByID returns the order only when it is owned by ownerID. A foreign
// order is reported as not found, same as a missing one.
func (r *OrderRepository) GetByID(ctx context.Context, id, ownerID string) (*order.Order, error) {
	for _, o := range r.c.snapshot() {
		if o.ID == id && o.OwnerID == ownerID {
			return &o, nil
		}
	}
	return nil, order.ErrNotFound
}

// ListByOwner returns the owner's orders sorted by creation time, newest
// first. Ties keep insertion order.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.c.snapshot() {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
