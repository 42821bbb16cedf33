package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STOCK LEDGER - runs inside the caller's transaction, never commits
// =============================================================================

// reserve decrements stock for productID by qty, failing when the product
// is missing or has less than qty available.
func (l *Ledger) reserve(ctx context.Context, tx Tx, productID int64, qty decimal.Decimal) error {
	p, err := tx.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return notFound("product", productID)
	}
	if qty.GreaterThan(p.StockQuantity) {
		return &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Available: p.StockQuantity,
			Requested: qty,
		}
	}
	return tx.SetStock(ctx, productID, p.StockQuantity.Sub(qty))
}

// restore increments stock for productID by qty. A product deleted since the
// sale was recorded has nothing to restore; that is logged and skipped.
func (l *Ledger) restore(ctx context.Context, tx Tx, productID int64, qty decimal.Decimal) error {
	p, err := tx.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		l.logf("restore stock: product %d no longer exists, skipping %s", productID, qty)
		return nil
	}
	return tx.SetStock(ctx, productID, p.StockQuantity.Add(qty))
}
