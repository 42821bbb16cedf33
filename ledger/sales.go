/*
sales.go - Sale aggregate operations

PURPOSE:
  Creates, edits and deletes sale headers together with their line items,
  keeping product stock in step.

OPERATIONS:
  AddSale:          header + items, stock reserved per item
  UpdateSale:       header only, items untouched
  DeleteSale:       stock restored for every item, then items and header removed
  DeleteSaleItem:   stock restored, parent totals recomputed from remaining items
  AddBulkSaleItems: items appended to an existing sale, all or nothing

TOTALS:
  On insert the caller's totals are stored as given. Only DeleteSaleItem
  recomputes them:

    subtotal  = Σ quantity × unit_price          (remaining items)
    total     = Σ total_price − sale_discount_amount
    remaining = total − paid                      (not clamped)

  Delivery and labor are not added back on that path, and item discounts
  are only counted through total_price.

SEE ALSO:
  - stock.go: reserve / restore
  - checkout.go: builds consistent totals before AddSale
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// AddSale records a sale with its items and decrements stock for each item.
// Any failure rolls back the header, every item and every stock change.
func (l *Ledger) AddSale(ctx context.Context, in SaleInput, items []SaleItemInput) (int64, error) {
	if err := validateSaleInput(in); err != nil {
		return 0, wrapOp("add sale", err)
	}
	for i, item := range items {
		if err := validateItemInput(i, item); err != nil {
			return 0, wrapOp("add sale", err)
		}
	}

	var saleID int64
	err := l.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if in.ClientID != nil {
			if err := requireClient(ctx, tx, *in.ClientID); err != nil {
				return err
			}
		}

		id, err := tx.InsertSale(ctx, in.toSale(0))
		if err != nil {
			return err
		}
		saleID = id

		_, err = l.insertItems(ctx, tx, saleID, items)
		return err
	})
	if err != nil {
		return 0, wrapOp("add sale", err)
	}

	l.logf("sale %d added (%d items, total %s, credit=%t)", saleID, len(items), in.Total, in.IsCredit)
	return saleID, l.persist(ctx, "add sale")
}

// insertItems reserves stock and inserts each item under saleID.
func (l *Ledger) insertItems(ctx context.Context, tx Tx, saleID int64, items []SaleItemInput) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if err := l.reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		id, err := tx.InsertSaleItem(ctx, SaleItem{
			SaleID:         saleID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TotalPrice:     item.TotalPrice,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func requireClient(ctx context.Context, tx Tx, clientID int64) error {
	ok, err := tx.ClientExists(ctx, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("client", clientID)
	}
	return nil
}

// UpdateSale replaces the header fields of a sale. Items are not touched.
func (l *Ledger) UpdateSale(ctx context.Context, id int64, in SaleInput) error {
	if err := validateID("id", id); err != nil {
		return wrapOp("update sale", err)
	}
	if err := validateSaleInput(in); err != nil {
		return wrapOp("update sale", err)
	}

	return l.mutate(ctx, "update sale", func(ctx context.Context, tx Tx) error {
		existing, err := tx.GetSale(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound("sale", id)
		}
		if in.ClientID != nil {
			if err := requireClient(ctx, tx, *in.ClientID); err != nil {
				return err
			}
		}
		return tx.UpdateSale(ctx, in.toSale(id))
	})
}

// DeleteSale restores stock for every item, then removes the items,
// their allocation records and the header.
func (l *Ledger) DeleteSale(ctx context.Context, id int64) error {
	if err := validateID("id", id); err != nil {
		return wrapOp("delete sale", err)
	}

	return l.mutate(ctx, "delete sale", func(ctx context.Context, tx Tx) error {
		sale, err := tx.GetSale(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return notFound("sale", id)
		}

		items, err := tx.ListSaleItems(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := l.restore(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.DeleteSaleItems(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteSaleAllocations(ctx, id); err != nil {
			return err
		}

		n, err := tx.DeleteSale(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDeleteFailed
		}
		l.logf("sale %d deleted, %d items restocked", id, len(items))
		return nil
	})
}

// DeleteSaleItem removes one line, restores its stock and recomputes the
// parent sale's subtotal, total and remaining from the lines that are left.
func (l *Ledger) DeleteSaleItem(ctx context.Context, itemID int64) error {
	if err := validateID("id", itemID); err != nil {
		return wrapOp("delete sale item", err)
	}

	return l.mutate(ctx, "delete sale item", func(ctx context.Context, tx Tx) error {
		item, err := tx.GetSaleItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return notFound("sale item", itemID)
		}

		if err := l.restore(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		n, err := tx.DeleteSaleItem(ctx, itemID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDeleteFailed
		}

		sale, err := tx.GetSale(ctx, item.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return notFound("sale", item.SaleID)
		}
		rest, err := tx.ListSaleItems(ctx, item.SaleID)
		if err != nil {
			return err
		}

		subtotal, total, remaining := recomputeTotals(*sale, rest)
		return tx.SetSaleTotals(ctx, sale.ID, subtotal, total, remaining)
	})
}

// recomputeTotals derives a sale's totals from its remaining items.
// The flat sale discount is re-applied to the new item sum.
func recomputeTotals(sale Sale, items []SaleItem) (subtotal, total, remaining decimal.Decimal) {
	itemSum := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineSubtotal())
		itemSum = itemSum.Add(it.TotalPrice)
	}
	total = itemSum.Sub(sale.SaleDiscountAmount)
	remaining = total.Sub(sale.Paid)
	return subtotal, total, remaining
}

// AddBulkSaleItems appends items to an existing sale. Either every item is
// inserted and every stock decremented, or nothing changes.
func (l *Ledger) AddBulkSaleItems(ctx context.Context, saleID int64, items []SaleItemInput) ([]int64, error) {
	if err := validateID("sale_id", saleID); err != nil {
		return nil, wrapOp("add sale items", err)
	}
	if len(items) == 0 {
		return nil, wrapOp("add sale items", invalid("items", "at least one item is required"))
	}
	for i, item := range items {
		if err := validateItemInput(i, item); err != nil {
			return nil, wrapOp("add sale items", err)
		}
	}

	var ids []int64
	err := l.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		sale, err := tx.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return notFound("sale", saleID)
		}
		ids, err = l.insertItems(ctx, tx, saleID, items)
		return err
	})
	if err != nil {
		return nil, wrapOp("add sale items", err)
	}
	return ids, l.persist(ctx, "add sale items")
}

// =============================================================================
// READS
// =============================================================================

// GetSale returns a sale with its client name and combined discount.
func (l *Ledger) GetSale(ctx context.Context, id int64) (*SaleSummary, error) {
	s, err := l.Store.GetSale(ctx, id)
	if err != nil {
		return nil, wrapOp("get sale", err)
	}
	if s == nil {
		return nil, notFound("sale", id)
	}
	return s, nil
}

// ListSaleItems returns the items of a sale with product names.
func (l *Ledger) ListSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	items, err := l.Store.ListSaleItems(ctx, saleID)
	if err != nil {
		return nil, wrapOp("list sale items", err)
	}
	return items, nil
}

// DefaultPageSize is used when ListSales is called with pageSize <= 0.
const DefaultPageSize = 50

// ListSales returns one page of sales matching filter, newest first.
func (l *Ledger) ListSales(ctx context.Context, filter SaleFilter, page, pageSize int) (SalePage, error) {
	if filter.From != "" {
		if err := validateDate("from", filter.From); err != nil {
			return SalePage{}, err
		}
	}
	if filter.To != "" {
		if err := validateDate("to", filter.To); err != nil {
			return SalePage{}, err
		}
	}
	switch filter.Type {
	case "", SaleTypeAll, SaleTypeCredit, SaleTypeCash:
	default:
		return SalePage{}, invalid("type", "unknown sale type %q", filter.Type)
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	sales, total, err := l.Store.ListSales(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return SalePage{}, wrapOp("list sales", err)
	}
	return SalePage{Sales: sales, Total: total, Page: page, PageSize: pageSize}, nil
}

// SalesByClient returns every sale of a client, oldest first.
func (l *Ledger) SalesByClient(ctx context.Context, clientID int64) ([]Sale, error) {
	sales, err := l.Store.SalesByClient(ctx, clientID)
	if err != nil {
		return nil, wrapOp("list client sales", err)
	}
	return sales, nil
}
