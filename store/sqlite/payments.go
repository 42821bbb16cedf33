package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/warp/retail-ledger/ledger"
)

// =============================================================================
// PAYMENT STORE
// =============================================================================

const paymentSelect = "SELECT " + paymentColumns + `
	FROM payments pm LEFT JOIN clients c ON c.client_id = pm.client_id`

func getPayment(ctx context.Context, q queryer, id int64) (*ledger.Payment, error) {
	p, err := scanPayment(q.QueryRowContext(ctx, paymentSelect+" WHERE pm.payment_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]ledger.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []ledger.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, id int64) (*ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getPayment(ctx, s.db, id)
}

// ListPayments returns payments dated within [from, to], newest first.
func (s *Store) ListPayments(ctx context.Context, from, to string) ([]ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conds, args := dateRange("pm.date", from, to)
	query := paymentSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return s.queryPayments(ctx, query+" ORDER BY pm.date DESC, pm.payment_id DESC", args...)
}

// PaymentsByClient returns a client's payments, newest first.
func (s *Store) PaymentsByClient(ctx context.Context, clientID int64) ([]ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx,
		paymentSelect+" WHERE pm.client_id = ? ORDER BY pm.date DESC, pm.payment_id DESC", clientID)
}

func listAllocations(ctx context.Context, q queryer, paymentID int64) ([]ledger.PaymentAllocation, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT allocation_id, payment_id, sale_id, amount
		FROM payment_allocations WHERE payment_id = ? ORDER BY allocation_id`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []ledger.PaymentAllocation
	for rows.Next() {
		var a ledger.PaymentAllocation
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.SaleID, &a.Amount); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// ListAllocations returns the allocations of a payment in the order they were made.
func (s *Store) ListAllocations(ctx context.Context, paymentID int64) ([]ledger.PaymentAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listAllocations(ctx, s.db, paymentID)
}

// =============================================================================
// PAYMENT STATEMENTS (ledger.Tx)
// =============================================================================

func (ts *txStore) InsertPayment(ctx context.Context, p ledger.Payment) (int64, error) {
	return insert(ctx, ts.tx, `
		INSERT INTO payments (client_id, date, amount, notes, allocations_tracked)
		VALUES (?, ?, ?, ?, ?)`,
		p.ClientID, p.Date, p.Amount, nullString(p.Notes), p.AllocationsTracked,
	)
}

func (ts *txStore) GetPayment(ctx context.Context, id int64) (*ledger.Payment, error) {
	return getPayment(ctx, ts.tx, id)
}

func (ts *txStore) UpdatePayment(ctx context.Context, p ledger.Payment) error {
	_, err := ts.tx.ExecContext(ctx, `
		UPDATE payments SET client_id = ?, date = ?, amount = ?, notes = ?, allocations_tracked = ?
		WHERE payment_id = ?`,
		p.ClientID, p.Date, p.Amount, nullString(p.Notes), p.AllocationsTracked, p.ID,
	)
	return err
}

func (ts *txStore) DeletePayment(ctx context.Context, id int64) (int64, error) {
	return exec(ctx, ts.tx, "DELETE FROM payments WHERE payment_id = ?", id)
}

func (ts *txStore) InsertAllocation(ctx context.Context, a ledger.PaymentAllocation) error {
	_, err := ts.tx.ExecContext(ctx,
		"INSERT INTO payment_allocations (payment_id, sale_id, amount) VALUES (?, ?, ?)",
		a.PaymentID, a.SaleID, a.Amount)
	return err
}

func (ts *txStore) ListAllocations(ctx context.Context, paymentID int64) ([]ledger.PaymentAllocation, error) {
	return listAllocations(ctx, ts.tx, paymentID)
}

func (ts *txStore) DeleteAllocations(ctx context.Context, paymentID int64) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM payment_allocations WHERE payment_id = ?", paymentID)
	return err
}

func (ts *txStore) DeleteSaleAllocations(ctx context.Context, saleID int64) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM payment_allocations WHERE sale_id = ?", saleID)
	return err
}
