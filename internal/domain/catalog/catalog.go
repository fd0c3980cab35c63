package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Well-known product tags.
const (
	// TagDeal marks a product as discounted; the pricing engine applies a
	// fixed 25% reduction to its unit price.
	TagDeal = "deal"
	// TagNew marks a recently added product. Informational only.
	TagNew = "new"
)

// Product represents a catalog item available for purchase.
// Products are read-only to the ordering core; order lines copy the fields
// they need by value.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Image    string          `json:"image,omitempty"`
	Tag      string          `json:"tag,omitempty"`
	Rating   int             `json:"rating,omitempty"`
	StockTag string          `json:"stock_tag,omitempty"`
}

// Filter narrows a catalog listing. Zero-value fields are ignored.
type Filter struct {
	Category string
	Tag      string
	// Query matches case-insensitively against name or brand substrings.
	Query string
}

// Matches reports whether the product satisfies every set filter field.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Tag != "" && p.Tag != f.Tag {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	return true
}

// Repository defines read operations for the product catalog.
// List returns products in catalog order.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
}
