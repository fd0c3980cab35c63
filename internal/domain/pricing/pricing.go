// Package pricing computes line and order totals for a cart.
//
// All monetary math uses shopspring/decimal with two-decimal rounding
// (half away from zero) applied exactly once per derived value: unit prices,
// line totals, the subtotal, and the order total are each rounded where they
// are produced and never re-derived from rounded intermediates.
package pricing

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/adventureworks/storefront/internal/domain/catalog"
)

var (
	// ErrEmptyItems is returned when a cart contains no items.
	ErrEmptyItems = errors.New("cart items required")
	// ErrNegativeAmount is returned when shipping or a discount amount is
	// negative. Amounts are otherwise taken as supplied.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// dealMultiplier implements the fixed 25% reduction for "deal" products.
	dealMultiplier = decimal.RequireFromString("0.75")
)

// ProductNotFoundError indicates a cart line references an unknown product.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a cart line has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// CartItem is a single cart entry as supplied by the caller.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Line is a priced cart entry with the product attributes snapshotted at
// pricing time, so a stored order reflects the price paid even if the
// catalog changes later.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Image     string          `json:"image,omitempty"`
	Tag       string          `json:"tag,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Discount is an arbitrary discount code applied to an order.
// Codes are not validated against any registry; only the amount is checked
// for sign.
type Discount struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// Engine resolves cart items against the catalog and prices them.
// It is stateless and safe for concurrent use.
type Engine struct {
	products catalog.Repository
}

// NewEngine creates an Engine backed by the given catalog.
func NewEngine(products catalog.Repository) *Engine {
	return &Engine{products: products}
}

// UnitPrice returns the effective unit price for a product: 75% of the list
// price (rounded to 2 places) when the product is tagged as a deal, the list
// price otherwise.
func (e *Engine) UnitPrice(p catalog.Product) decimal.Decimal {
	if p.Tag == catalog.TagDeal {
		return p.Price.Mul(dealMultiplier).Round(2)
	}
	return p.Price
}

// PriceLines resolves every cart item against the catalog and produces priced
// order lines. Any unresolved product or invalid quantity fails the whole
// cart; partial results are never returned.
func (e *Engine) PriceLines(ctx context.Context, items []CartItem) ([]Line, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := e.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	lines := make([]Line, len(items))
	for i, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		unit := e.UnitPrice(p)
		qty := decimal.NewFromInt(int64(item.Quantity))
		lines[i] = Line{
			ProductID: p.ID,
			Name:      p.Name,
			Brand:     p.Brand,
			Image:     p.Image,
			Tag:       p.Tag,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(qty).Round(2),
		}
	}

	return lines, nil
}

// Totals computes the order subtotal and total:
//
//	subtotal = round2(sum of line totals)
//	total    = max(0, round2(subtotal - discount + shipping))
//
// A nil discount contributes zero. Negative shipping or discount amounts are
// rejected with ErrNegativeAmount.
func Totals(lines []Line, discount *Discount, shipping decimal.Decimal) (subtotal, total decimal.Decimal, err error) {
	if shipping.IsNegative() {
		return decimal.Zero, decimal.Zero, errors.Wrap(ErrNegativeAmount, "shipping")
	}

	discountAmount := decimal.Zero
	if discount != nil {
		if discount.Amount.IsNegative() {
			return decimal.Zero, decimal.Zero, errors.Wrap(ErrNegativeAmount, "discount")
		}
		discountAmount = discount.Amount
	}

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal)
	}
	subtotal = sum.Round(2)

	total = subtotal.Sub(discountAmount).Add(shipping).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return subtotal, total, nil
}
