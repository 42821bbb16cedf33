package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

func validateRange(from, to string) error {
	if from != "" {
		if err := validateDate("from", from); err != nil {
			return err
		}
	}
	if to != "" {
		if err := validateDate("to", to); err != nil {
			return err
		}
	}
	return nil
}

// Summary returns dashboard totals for sales and payments dated within
// [from, to]. Empty bounds are open.
func (l *Ledger) Summary(ctx context.Context, from, to string) (Summary, error) {
	if err := validateRange(from, to); err != nil {
		return Summary{}, err
	}
	sum, err := l.Store.Summary(ctx, from, to)
	if err != nil {
		return Summary{}, wrapOp("build summary", err)
	}
	return sum, nil
}

// TopSellingProducts returns the limit products with the largest quantity
// sold in sales dated within [from, to]. Empty bounds are open.
func (l *Ledger) TopSellingProducts(ctx context.Context, from, to string, limit int) ([]ProductSales, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	top, err := l.Store.TopSellingProducts(ctx, from, to, limit)
	if err != nil {
		return nil, wrapOp("list top selling products", err)
	}
	return top, nil
}

// UnsoldProducts returns products not sold on or after since. An empty
// since returns the products that were never sold.
func (l *Ledger) UnsoldProducts(ctx context.Context, since string) ([]UnsoldProduct, error) {
	if since != "" {
		if err := validateDate("since", since); err != nil {
			return nil, err
		}
	}
	products, err := l.Store.UnsoldProducts(ctx, since)
	if err != nil {
		return nil, wrapOp("list unsold products", err)
	}
	return products, nil
}

// InventoryCapital values current stock at purchase and at sell prices.
func (l *Ledger) InventoryCapital(ctx context.Context) (InventoryCapital, error) {
	products, err := l.Store.AllProducts(ctx)
	if err != nil {
		return InventoryCapital{}, wrapOp("value inventory", err)
	}

	capital := InventoryCapital{
		ProductCount:  len(products),
		PurchaseValue: decimal.Zero,
		SellValue:     decimal.Zero,
	}
	for _, p := range products {
		capital.PurchaseValue = capital.PurchaseValue.Add(p.StockQuantity.Mul(p.PurchasePrice))
		capital.SellValue = capital.SellValue.Add(p.StockQuantity.Mul(p.PricePerUnit))
	}
	return capital, nil
}
