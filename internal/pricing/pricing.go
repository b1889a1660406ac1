// Package pricing turns raw order-item input into priced, named line items
// and resolves document totals. It is shared by sales orders, purchase
// orders and invoices.
package pricing

import (
	"context"
	"fmt"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// CatalogProduct is the subset of product data needed to price a line.
type CatalogProduct struct {
	ID    int64
	Name  string
	Price float64
	Cost  float64
}

// Catalog resolves the products referenced by order items.
type Catalog interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]CatalogProduct, error)
}

// Basis selects which catalog figure backs an item that carries no explicit price.
type Basis int

const (
	// BasisSale falls back to the product's list price.
	BasisSale Basis = iota
	// BasisCost falls back to the product's cost, used by purchase orders.
	BasisCost
)

// ItemInput is a raw order line from a request. A nil Price means the catalog
// figure applies.
type ItemInput struct {
	ProductID int64
	Quantity  float64
	Price     *float64
}

// Item is an enriched, priced line.
type Item struct {
	ProductID   int64
	ProductName string
	Quantity    float64
	Price       float64
	Total       float64
}

// Enrich resolves and prices items all-or-nothing: a single missing product
// fails the whole call before anything is persisted. It returns the enriched
// lines and their subtotal.
func Enrich(ctx context.Context, catalog Catalog, items []ItemInput, basis Basis) ([]Item, float64, error) {
	if len(items) == 0 {
		return nil, 0, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ProductID <= 0 {
			return nil, 0, fmt.Errorf("%w: item product id is required", shared.ErrValidation)
		}
		if item.Quantity < 1 {
			return nil, 0, fmt.Errorf("%w: item quantity must be at least 1", shared.ErrValidation)
		}
		ids = append(ids, item.ProductID)
	}

	products, err := catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve products: %w", err)
	}

	enriched := make([]Item, 0, len(items))
	var subtotal float64
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: product %d does not exist", shared.ErrInvalidReference, item.ProductID)
		}
		price := product.Price
		if basis == BasisCost {
			price = product.Cost
		}
		if item.Price != nil {
			price = *item.Price
		}
		total := price * item.Quantity
		subtotal += total
		enriched = append(enriched, Item{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       price,
			Total:       total,
		})
	}
	return enriched, subtotal, nil
}

// Totals carries the aggregate money fields of a document.
type Totals struct {
	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64
}

// ExplicitTotals carries request-supplied amounts; a nil field means the
// client omitted it. Zero is a valid explicit value, omission is not.
type ExplicitTotals struct {
	Subtotal *float64
	Tax      *float64
	Discount *float64
	Total    *float64
}

// ResolveTotals applies the explicit-field-wins policy: any amount present in
// the request is trusted verbatim, absent fields derive from
// total = subtotal + tax - discount. Clients compute running totals against
// live tax-rate edits, so their explicit figures take precedence over a naive
// server recompute.
func ResolveTotals(computedSubtotal float64, explicit ExplicitTotals) Totals {
	t := Totals{Subtotal: computedSubtotal}
	if explicit.Subtotal != nil {
		t.Subtotal = *explicit.Subtotal
	}
	if explicit.Tax != nil {
		t.Tax = *explicit.Tax
	}
	if explicit.Discount != nil {
		t.Discount = *explicit.Discount
	}
	t.Total = t.Subtotal + t.Tax - t.Discount
	if explicit.Total != nil {
		t.Total = *explicit.Total
	}
	return t
}
