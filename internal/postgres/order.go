package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/adventureworks/storefront/internal/domain/order"
	"github.com/adventureworks/storefront/internal/domain/pricing"
)

const orderColumns = `id, user_id, items, discount_code, discount_amount,
	shipping, subtotal, total, address, status, created_at`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Create is a single-row INSERT, so concurrent creates linearize at the
// database instead of on an application lock.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Items and the optional address are stored in
// JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	var addressJSON []byte
	if o.Address != nil {
		addressJSON, err = json.Marshal(o.Address)
		if err != nil {
			return errors.Wrap(err, "marshal order address")
		}
	}

	var (
		discountCode   *string
		discountAmount *decimal.Decimal
	)
	if o.Discount != nil {
		discountCode = &o.Discount.Code
		discountAmount = &o.Discount.Amount
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.OwnerID, itemsJSON, discountCode, discountAmount,
		o.Shipping, o.Subtotal, o.Total, addressJSON, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// GetByID returns the order only when it is owned by ownerID. Missing and
// foreign orders are both reported as order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id, ownerID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		id, ownerID)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return &o, nil
}

// ListByOwner returns the owner's orders, newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o              order.Order
		itemsJSON      []byte
		addressJSON    []byte
		discountCode   *string
		discountAmount *decimal.Decimal
		status         string
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &itemsJSON, &discountCode, &discountAmount,
		&o.Shipping, &o.Subtotal, &o.Total, &addressJSON, &status, &o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, errors.Wrap(err, "unmarshal order items")
	}
	if len(addressJSON) > 0 {
		o.Address = &order.Address{}
		if err := json.Unmarshal(addressJSON, o.Address); err != nil {
			return order.Order{}, errors.Wrap(err, "unmarshal order address")
		}
	}
	if discountCode != nil && discountAmount != nil {
		o.Discount = &pricing.Discount{Code: *discountCode, Amount: *discountAmount}
	}
	o.Status = order.Status(status)

	return o, nil
}
