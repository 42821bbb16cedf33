package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-ledger/ledger"
)

// =============================================================================
// SALE STORE
// =============================================================================

// totalDiscountExpr is the sale discount plus every item discount of s.
const totalDiscountExpr = `s.sale_discount_amount + COALESCE(
	(SELECT SUM(d.discount_amount) FROM sale_items d WHERE d.sale_id = s.sale_id), 0)`

const saleSummarySelect = "SELECT " + saleColumns + ", COALESCE(c.name, ''), " + totalDiscountExpr + `
	FROM sales s LEFT JOIN clients c ON c.client_id = s.client_id`

func scanSaleSummary(r rowScanner) (ledger.SaleSummary, error) {
	var sum ledger.SaleSummary
	var discount decimal.Decimal
	sale, err := scanSale(r, &sum.ClientName, sumColumn(&discount))
	sum.Sale = sale
	sum.TotalDiscount = discount
	return sum, err
}

// GetSale returns a sale with its client name and combined discount.
func (s *Store) GetSale(ctx context.Context, id int64) (*ledger.SaleSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, err := scanSaleSummary(s.db.QueryRowContext(ctx, saleSummarySelect+" WHERE s.sale_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func saleFilterWhere(f ledger.SaleFilter) (string, []any) {
	conds, args := dateRange("s.date", f.From, f.To)
	if f.ClientSearch != "" {
		conds = append(conds, "c.name LIKE ?")
		args = append(args, likePattern(f.ClientSearch))
	}
	switch f.Type {
	case ledger.SaleTypeCredit:
		conds = append(conds, "s.is_credit = 1")
	case ledger.SaleTypeCash:
		conds = append(conds, "s.is_credit = 0")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListSales returns one page of matching sales, newest first, and the
// number of sales matching the filter.
func (s *Store) ListSales(ctx context.Context, f ledger.SaleFilter, limit, offset int) ([]ledger.SaleSummary, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := saleFilterWhere(f)

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sales s LEFT JOIN clients c ON c.client_id = s.client_id"+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		saleSummarySelect+where+" ORDER BY s.date DESC, s.sale_id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []ledger.SaleSummary
	for rows.Next() {
		sum, err := scanSaleSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, sum)
	}
	return sales, total, rows.Err()
}

// SalesByClient returns every sale of a client, oldest first.
func (s *Store) SalesByClient(ctx context.Context, clientID int64) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+saleColumns+" FROM sales s WHERE s.client_id = ? ORDER BY s.date ASC, s.sale_id ASC", clientID)
	if err != nil {
		return nil, err
	}
	return scanSales(rows)
}

// AllSales returns every sale by id.
func (s *Store) AllSales(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+saleColumns+" FROM sales s ORDER BY s.sale_id")
	if err != nil {
		return nil, err
	}
	return scanSales(rows)
}

func listSaleItems(ctx context.Context, q queryer, saleID int64) ([]ledger.SaleItem, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+saleItemColumns+`
		FROM sale_items si LEFT JOIN products p ON p.product_id = si.product_id
		WHERE si.sale_id = ? ORDER BY si.sale_item_id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ledger.SaleItem
	for rows.Next() {
		it, err := scanSaleItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListSaleItems returns the items of a sale with product names.
func (s *Store) ListSaleItems(ctx context.Context, saleID int64) ([]ledger.SaleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listSaleItems(ctx, s.db, saleID)
}

// =============================================================================
// SALE STATEMENTS (ledger.Tx)
// =============================================================================

func (ts *txStore) InsertSale(ctx context.Context, sale ledger.Sale) (int64, error) {
	return insert(ctx, ts.tx, `
		INSERT INTO sales (client_id, date, subtotal, sale_discount_amount, delivery_price, labor_cost,
			total, paid, remaining, is_credit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(sale.ClientID), sale.Date, sale.Subtotal, sale.SaleDiscountAmount,
		sale.DeliveryPrice, sale.LaborCost, sale.Total, sale.Paid, sale.Remaining, sale.IsCredit,
	)
}

func (ts *txStore) GetSale(ctx context.Context, id int64) (*ledger.Sale, error) {
	sale, err := scanSale(ts.tx.QueryRowContext(ctx,
		"SELECT "+saleColumns+" FROM sales s WHERE s.sale_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (ts *txStore) UpdateSale(ctx context.Context, sale ledger.Sale) error {
	_, err := ts.tx.ExecContext(ctx, `
		UPDATE sales SET client_id = ?, date = ?, subtotal = ?, sale_discount_amount = ?,
			delivery_price = ?, labor_cost = ?, total = ?, paid = ?, remaining = ?, is_credit = ?
		WHERE sale_id = ?`,
		nullInt64(sale.ClientID), sale.Date, sale.Subtotal, sale.SaleDiscountAmount,
		sale.DeliveryPrice, sale.LaborCost, sale.Total, sale.Paid, sale.Remaining, sale.IsCredit,
		sale.ID,
	)
	return err
}

func (ts *txStore) SetSaleTotals(ctx context.Context, id int64, subtotal, total, remaining decimal.Decimal) error {
	_, err := ts.tx.ExecContext(ctx,
		"UPDATE sales SET subtotal = ?, total = ?, remaining = ? WHERE sale_id = ?",
		subtotal, total, remaining, id)
	return err
}

func (ts *txStore) SetSaleBalance(ctx context.Context, id int64, paid, remaining decimal.Decimal) error {
	_, err := ts.tx.ExecContext(ctx,
		"UPDATE sales SET paid = ?, remaining = ? WHERE sale_id = ?", paid, remaining, id)
	return err
}

func (ts *txStore) DeleteSale(ctx context.Context, id int64) (int64, error) {
	return exec(ctx, ts.tx, "DELETE FROM sales WHERE sale_id = ?", id)
}

func (ts *txStore) querySales(ctx context.Context, where string, args ...any) ([]ledger.Sale, error) {
	rows, err := ts.tx.QueryContext(ctx,
		"SELECT "+saleColumns+" FROM sales s WHERE "+where+" ORDER BY s.date ASC, s.sale_id ASC", args...)
	if err != nil {
		return nil, err
	}
	return scanSales(rows)
}

func (ts *txStore) OpenCreditSales(ctx context.Context, clientID int64) ([]ledger.Sale, error) {
	return ts.querySales(ctx, "s.client_id = ? AND s.is_credit = 1 AND s.remaining > 0", clientID)
}

func (ts *txStore) PaidCreditSales(ctx context.Context, clientID int64) ([]ledger.Sale, error) {
	return ts.querySales(ctx, "s.client_id = ? AND s.is_credit = 1 AND s.paid > 0", clientID)
}

func (ts *txStore) SalesByIDs(ctx context.Context, ids []int64) ([]ledger.Sale, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	return ts.querySales(ctx, "s.sale_id IN ("+placeholders+")", args...)
}

// =============================================================================
// SALE ITEM STATEMENTS (ledger.Tx)
// =============================================================================

func (ts *txStore) InsertSaleItem(ctx context.Context, it ledger.SaleItem) (int64, error) {
	return insert(ctx, ts.tx, `
		INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, discount_amount, total_price)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.DiscountAmount, it.TotalPrice,
	)
}

func (ts *txStore) GetSaleItem(ctx context.Context, id int64) (*ledger.SaleItem, error) {
	it, err := scanSaleItem(ts.tx.QueryRowContext(ctx, "SELECT "+saleItemColumns+`
		FROM sale_items si LEFT JOIN products p ON p.product_id = si.product_id
		WHERE si.sale_item_id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (ts *txStore) ListSaleItems(ctx context.Context, saleID int64) ([]ledger.SaleItem, error) {
	return listSaleItems(ctx, ts.tx, saleID)
}

func (ts *txStore) DeleteSaleItem(ctx context.Context, id int64) (int64, error) {
	return exec(ctx, ts.tx, "DELETE FROM sale_items WHERE sale_item_id = ?", id)
}

func (ts *txStore) DeleteSaleItems(ctx context.Context, saleID int64) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM sale_items WHERE sale_id = ?", saleID)
	return err
}
