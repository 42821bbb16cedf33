package sqlite

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-ledger/ledger"
)

// =============================================================================
// DEBT AND REPORT QUERIES
// =============================================================================

// Money columns are REAL. SUM() over them adds in binary floating point
// (0.1 + 0.2 = 0.30000000000000004), so rows are fetched one value at a
// time and added as decimals.

// sumRows adds up a single-column result set.
func sumRows(rows *sql.Rows) (decimal.Decimal, error) {
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var v decimal.Decimal
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, rows.Err()
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// ClientTotalDebt sums remaining over a client's open credit sales.
func (s *Store) ClientTotalDebt(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT remaining FROM sales
		WHERE client_id = ? AND is_credit = 1 AND remaining > 0`, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumRows(rows)
}

// ClientsWithCredit returns clients with open credit, largest debt first.
func (s *Store) ClientsWithCredit(ctx context.Context) ([]ledger.ClientDebt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.client_id, c.name, c.phone, c.address, c.is_regular, c.notes, s.remaining
		FROM clients c
		JOIN sales s ON s.client_id = c.client_id
		WHERE s.is_credit = 1 AND s.remaining > 0
		ORDER BY c.client_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.ClientDebt
	for rows.Next() {
		var remaining decimal.Decimal
		c, err := scanClient(rows, &remaining)
		if err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ID == c.ID {
			out[n-1].TotalRemaining = out[n-1].TotalRemaining.Add(remaining)
			continue
		}
		out = append(out, ledger.ClientDebt{Client: c, TotalRemaining: remaining})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b ledger.ClientDebt) int {
		if c := b.TotalRemaining.Cmp(a.TotalRemaining); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// TopSpendingClients returns clients by the sum of their sale totals.
func (s *Store) TopSpendingClients(ctx context.Context, limit int) ([]ledger.ClientSpending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.client_id, c.name, c.phone, c.address, c.is_regular, c.notes, s.total
		FROM clients c
		JOIN sales s ON s.client_id = c.client_id
		ORDER BY c.client_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.ClientSpending
	for rows.Next() {
		var total decimal.Decimal
		c, err := scanClient(rows, &total)
		if err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ID == c.ID {
			out[n-1].TotalSpent = out[n-1].TotalSpent.Add(total)
			continue
		}
		out = append(out, ledger.ClientSpending{Client: c, TotalSpent: total})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b ledger.ClientSpending) int {
		if c := b.TotalSpent.Cmp(a.TotalSpent); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out[:min(limit, len(out))], nil
}

// TopSellingProducts returns products by sold quantity over sales dated
// within [from, to]. Empty bounds are open.
func (s *Store) TopSellingProducts(ctx context.Context, from, to string, limit int) ([]ledger.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conds, args := dateRange("s.date", from, to)
	rows, err := s.db.QueryContext(ctx, `
		SELECT si.product_id, COALESCE(p.name, ''), si.quantity, si.total_price
		FROM sale_items si
		JOIN sales s ON s.sale_id = si.sale_id
		LEFT JOIN products p ON p.product_id = si.product_id`+
		whereClause(conds)+`
		ORDER BY si.product_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.ProductSales
	for rows.Next() {
		var ps ledger.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.TotalQuantity, &ps.TotalRevenue); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ProductID == ps.ProductID {
			out[n-1].TotalQuantity = out[n-1].TotalQuantity.Add(ps.TotalQuantity)
			out[n-1].TotalRevenue = out[n-1].TotalRevenue.Add(ps.TotalRevenue)
			continue
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b ledger.ProductSales) int {
		if c := b.TotalQuantity.Cmp(a.TotalQuantity); c != 0 {
			return c
		}
		return b.TotalRevenue.Cmp(a.TotalRevenue)
	})
	return out[:min(limit, len(out))], nil
}

// UnsoldProducts returns products with no sale dated on or after since,
// by name. With an empty since only never-sold products are returned.
func (s *Store) UnsoldProducts(ctx context.Context, since string) ([]ledger.UnsoldProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cond := "last_sold IS NULL"
	var args []any
	if since != "" {
		cond += " OR last_sold < ?"
		args = append(args, since)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT `+productColumns+`,
			       (SELECT MAX(s.date) FROM sale_items si
			        JOIN sales s ON s.sale_id = si.sale_id
			        WHERE si.product_id = products.product_id) AS last_sold
			FROM products
		)
		WHERE `+cond+`
		ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.UnsoldProduct
	for rows.Next() {
		var last dateColumn
		p, err := scanProduct(rows, &last)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger.UnsoldProduct{Product: p, LastSold: string(last)})
	}
	return out, rows.Err()
}

// Summary returns dashboard totals for sales and payments within [from, to].
func (s *Store) Summary(ctx context.Context, from, to string) (ledger.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conds, args := dateRange("date", from, to)
	where := whereClause(conds)

	rows, err := s.db.QueryContext(ctx, `
		SELECT total, remaining, is_credit, delivery_price, labor_cost
		FROM sales`+where, args...)
	if err != nil {
		return ledger.Summary{}, err
	}
	defer rows.Close()

	sum := ledger.Summary{}
	for rows.Next() {
		var total, remaining, delivery, labor decimal.Decimal
		var credit sql.NullBool
		if err := rows.Scan(&total, &remaining, &credit, &delivery, &labor); err != nil {
			return ledger.Summary{}, err
		}
		sum.SalesCount++
		sum.TotalSales = sum.TotalSales.Add(total)
		sum.TotalDelivery = sum.TotalDelivery.Add(delivery)
		sum.TotalLabor = sum.TotalLabor.Add(labor)
		if credit.Bool {
			if remaining.IsPositive() {
				sum.TotalRemaining = sum.TotalRemaining.Add(remaining)
			}
		} else {
			sum.CashRevenue = sum.CashRevenue.Add(total)
		}
	}
	if err := rows.Err(); err != nil {
		return ledger.Summary{}, err
	}

	payments, err := s.db.QueryContext(ctx, "SELECT amount FROM payments"+where, args...)
	if err != nil {
		return ledger.Summary{}, err
	}
	sum.TotalPayments, err = sumRows(payments)
	if err != nil {
		return ledger.Summary{}, err
	}
	return sum, nil
}
