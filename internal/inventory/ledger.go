// Package inventory owns the stock counter and its movement history.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Movement reasons.
const (
	ReasonSale          = "sale"
	ReasonSaleRestored  = "sale_restored"
	ReasonPurchase      = "purchase"
	ReasonPurchaseUndo  = "purchase_reversed"
	ReasonOrderDeleted  = "order_deleted"
	ReasonManualIn      = "manual_in"
	ReasonManualOut     = "manual_out"
	ReasonManualAdjust  = "manual_adjust"
)

// Delta is one signed stock adjustment for a product.
type Delta struct {
	ProductID int64
	Quantity  float64
	Reason    string
	Reference string
	Notes     string
}

// Movement is a recorded stock adjustment.
type Movement struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Product   string    `json:"product,omitempty"`
	Quantity  float64   `json:"quantity"`
	Reason    string    `json:"reason"`
	Reference string    `json:"reference"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Apply adjusts product stock counters and records one movement row per
// delta, inside the caller's transaction. The counter update is a single
// atomic increment so concurrent adjustments to the same product never lose
// an update. Stock is deliberately not floored at zero.
func Apply(ctx context.Context, tx pgx.Tx, deltas []Delta) error {
	for _, d := range deltas {
		if d.Quantity == 0 {
			continue
		}
		tag, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
			d.Quantity, d.ProductID)
		if err != nil {
			return fmt.Errorf("adjust stock for product %d: %w", d.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("adjust stock: product %d does not exist", d.ProductID)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO stock_movements (product_id, quantity, reason, reference, notes)
			VALUES ($1, $2, $3, $4, $5)`,
			d.ProductID, d.Quantity, d.Reason, d.Reference, d.Notes)
		if err != nil {
			return fmt.Errorf("record stock movement for product %d: %w", d.ProductID, err)
		}
	}
	return nil
}
