package filestore

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/adventureworks/storefront/internal/domain/catalog"
)

var _ catalog.Repository = (*Catalog)(nil)

// Catalog is a read-only in-memory catalog, loaded once at startup.
// It backs the file storage driver; the catalog itself never changes at
// runtime, so no locking is needed.
type Catalog struct {
	products   []catalog.Product
	byID       map[string]catalog.Product
	categories []string
}

// NewCatalog builds a Catalog preserving the given product order.
func NewCatalog(products []catalog.Product) *Catalog {
	c := &Catalog{
		products: products,
		byID:     make(map[string]catalog.Product, len(products)),
	}
	seen := make(map[string]struct{})
	for _, p := range products {
		c.byID[p.ID] = p
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			c.categories = append(c.categories, p.Category)
		}
	}
	return c
}

// LoadCatalog parses a JSON product array (the embedded seed data) into a
// Catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	return NewCatalog(products), nil
}

// List returns products matching the filter, in catalog order.
func (c *Catalog) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetByID returns a single product or catalog.ErrNotFound.
func (c *Catalog) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products matching any of the given ids. Missing ids
// are skipped; callers detect them by comparing lengths.
func (c *Catalog) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := c.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct product categories in first-seen order.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out, nil
}
