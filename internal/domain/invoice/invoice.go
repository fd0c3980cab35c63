// Package invoice renders a stored order as a human-readable document.
//
// Rendering is a pure function of the order: no re-pricing, no catalog
// lookups, no clock reads. Rendering the same order twice yields identical
// output, byte for byte.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/adventureworks/storefront/internal/domain/catalog"
	"github.com/adventureworks/storefront/internal/domain/order"
)

// dealMarker annotates lines priced with the deal reduction.
const dealMarker = "-25%"

// LineRow is one invoice row per order line.
type LineRow struct {
	Name      string
	Brand     string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	// Deal is true when the line's snapshot tag indicates the deal price.
	Deal bool
}

// DiscountRow carries the applied discount code and its (negative) amount.
type DiscountRow struct {
	Code   string
	Amount decimal.Decimal
}

// Document is the ordered content of an invoice. Output format (text, JSON,
// PDF) is a presentation concern; the fields here are the contract.
type Document struct {
	OrderID  string
	IssuedAt time.Time
	// Customer is the name from the order's address, empty when absent.
	Customer string
	Lines    []LineRow
	// Discount is nil when no discount was applied.
	Discount *DiscountRow
	// Shipping is zero when no shipping was charged; renderings omit the row.
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Render builds the invoice document for a stored order.
func Render(o *order.Order) Document {
	doc := Document{
		OrderID:  o.ID,
		IssuedAt: o.CreatedAt,
		Shipping: o.Shipping,
		Total:    o.Total,
		Lines:    make([]LineRow, len(o.Items)),
	}
	if o.Address != nil {
		doc.Customer = o.Address.Name
	}
	for i, l := range o.Items {
		doc.Lines[i] = LineRow{
			Name:      l.Name,
			Brand:     l.Brand,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
			Deal:      l.Tag == catalog.TagDeal,
		}
	}
	if o.Discount != nil {
		doc.Discount = &DiscountRow{
			Code:   o.Discount.Code,
			Amount: o.Discount.Amount.Neg(),
		}
	}
	return doc
}

// Text renders the document as plain text.
func (d Document) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "AdventureWorks - Invoice\n")
	fmt.Fprintf(&b, "Order: %s\n", d.OrderID)
	fmt.Fprintf(&b, "Date: %s\n", d.IssuedAt.UTC().Format(time.RFC3339))
	if d.Customer != "" {
		fmt.Fprintf(&b, "Customer: %s\n", d.Customer)
	}

	b.WriteString("\nItems\n")
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "%s (%s) x%d\n", l.Name, l.Brand, l.Quantity)
		fmt.Fprintf(&b, "  Unit: $%s   Line: $%s", l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2))
		if l.Deal {
			fmt.Fprintf(&b, "   (%s)", dealMarker)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if d.Discount != nil {
		fmt.Fprintf(&b, "Discount (%s): -$%s\n", d.Discount.Code, d.Discount.Amount.Neg().StringFixed(2))
	}
	if !d.Shipping.IsZero() {
		fmt.Fprintf(&b, "Shipping: $%s\n", d.Shipping.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: $%s\n", d.Total.StringFixed(2))

	return b.String()
}

// MarshalJSON encodes the document with a fixed field order. Monetary values
// are encoded as strings with two decimal places.
func (d Document) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("order_id", func(e *jx.Encoder) { e.Str(d.OrderID) })
		e.Field("issued_at", func(e *jx.Encoder) { e.Str(d.IssuedAt.UTC().Format(time.RFC3339)) })
		if d.Customer != "" {
			e.Field("customer", func(e *jx.Encoder) { e.Str(d.Customer) })
		}
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range d.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
						e.Field("brand", func(e *jx.Encoder) { e.Str(l.Brand) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
						e.Field("unit_price", func(e *jx.Encoder) { e.Str(l.UnitPrice.StringFixed(2)) })
						e.Field("line_total", func(e *jx.Encoder) { e.Str(l.LineTotal.StringFixed(2)) })
						if l.Deal {
							e.Field("marker", func(e *jx.Encoder) { e.Str(dealMarker) })
						}
					})
				}
			})
		})
		if d.Discount != nil {
			e.Field("discount", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("code", func(e *jx.Encoder) { e.Str(d.Discount.Code) })
					e.Field("amount", func(e *jx.Encoder) { e.Str(d.Discount.Amount.StringFixed(2)) })
				})
			})
		}
		if !d.Shipping.IsZero() {
			e.Field("shipping", func(e *jx.Encoder) { e.Str(d.Shipping.StringFixed(2)) })
		}
		e.Field("total", func(e *jx.Encoder) { e.Str(d.Total.StringFixed(2)) })
	})
	return e.Bytes(), nil
}
