/*
payments.go - Credit allocation engine

PURPOSE:
  Applies payments to a client's open credit sales oldest first, and
  takes them back when a payment is edited or deleted.

ALLOCATION LEDGER:
  Every amount applied to a sale is recorded as a PaymentAllocation
  (payment_id, sale_id, amount). Reversal replays those rows exactly,
  so interleaved payments for the same client undo only their own share.
  A replay never takes back more than the sale's current paid amount.

  Payments recorded before allocations were stored (AllocationsTracked
  false) have no rows to replay. For those the reversal is re-derived:
  walk the client's credit sales with paid > 0 oldest first and take
  back min(left, sale.paid) until the old amount is exhausted.

SOFT ALLOCATION:
  Payment.Amount is the money received. When it exceeds what the
  candidate sales still owe, the rest is logged and not held anywhere.

SEE ALSO:
  - allocation.go: the arithmetic
  - debts.go: SettleClientDebts builds on AddPayment
*/
package ledger

import (
	"context"
	"fmt"
)

// SettlementNote is the note on payments created by SettleClientDebts.
const SettlementNote = "Full debt settlement"

// AddPayment records a payment and allocates it to the client's open credit
// sales, oldest first. With TargetSaleIDs only those sales are considered;
// ErrNoEligibleSales is returned when none of them is an open credit sale
// of the client.
func (l *Ledger) AddPayment(ctx context.Context, in PaymentInput) (int64, error) {
	if err := validatePaymentInput(in); err != nil {
		return 0, wrapOp("add payment", err)
	}

	var paymentID int64
	err := l.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := requireClient(ctx, tx, in.ClientID); err != nil {
			return err
		}

		candidates, err := l.candidateSales(ctx, tx, in.ClientID, in.TargetSaleIDs)
		if err != nil {
			return err
		}

		paymentID, err = l.recordPayment(ctx, tx, candidates, in)
		return err
	})
	if err != nil {
		return 0, wrapOp("add payment", err)
	}

	l.logf("payment %d added for client %d: %s", paymentID, in.ClientID, in.Amount)
	return paymentID, l.persist(ctx, "add payment")
}

// recordPayment inserts the payment row and allocates it over candidates.
func (l *Ledger) recordPayment(ctx context.Context, tx Tx, candidates []Sale, in PaymentInput) (int64, error) {
	id, err := tx.InsertPayment(ctx, Payment{
		ClientID:           in.ClientID,
		Date:               in.Date,
		Amount:             in.Amount,
		Notes:              in.Notes,
		AllocationsTracked: true,
	})
	if err != nil {
		return 0, err
	}
	return id, l.applyPayment(ctx, tx, id, candidates, in)
}

// candidateSales returns the sales a payment may be allocated to, oldest first.
func (l *Ledger) candidateSales(ctx context.Context, tx Tx, clientID int64, targets []int64) ([]Sale, error) {
	if len(targets) == 0 {
		return tx.OpenCreditSales(ctx, clientID)
	}

	found, err := tx.SalesByIDs(ctx, targets)
	if err != nil {
		return nil, err
	}
	var eligible []Sale
	for _, s := range found {
		if s.BelongsTo(clientID) && s.IsOpenCredit() {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: none of sales %v is an open credit sale of client %d",
			ErrNoEligibleSales, targets, clientID)
	}
	return eligible, nil
}

// applyPayment allocates in.Amount over candidates and records each allocation.
func (l *Ledger) applyPayment(ctx context.Context, tx Tx, paymentID int64, candidates []Sale, in PaymentInput) error {
	steps, left := allocate(candidates, in.Amount)
	for _, st := range steps {
		if err := tx.SetSaleBalance(ctx, st.Sale.ID, st.Sale.Paid, st.Sale.Remaining); err != nil {
			return err
		}
		if err := tx.InsertAllocation(ctx, PaymentAllocation{
			PaymentID: paymentID,
			SaleID:    st.Sale.ID,
			Amount:    st.Amount,
		}); err != nil {
			return err
		}
	}
	if left.IsPositive() {
		l.logf("payment %d: %s of %s could not be allocated to client %d's open sales",
			paymentID, left, in.Amount, in.ClientID)
	}
	return nil
}

// reversePayment undoes the effect p had on sale balances.
func (l *Ledger) reversePayment(ctx context.Context, tx Tx, p Payment) error {
	if !p.AllocationsTracked {
		return l.reverseUntracked(ctx, tx, p)
	}

	allocs, err := tx.ListAllocations(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, a := range allocs {
		sale, err := tx.GetSale(ctx, a.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			continue
		}
		s, short := undoAllocation(*sale, a.Amount)
		if err := tx.SetSaleBalance(ctx, s.ID, s.Paid, s.Remaining); err != nil {
			return err
		}
		if short.IsPositive() {
			l.logf("payment %d: sale %d was paid only %s, %s of its %s allocation not reversed",
				p.ID, sale.ID, sale.Paid, short, a.Amount)
		}
	}
	return tx.DeleteAllocations(ctx, p.ID)
}

func (l *Ledger) reverseUntracked(ctx context.Context, tx Tx, p Payment) error {
	sales, err := tx.PaidCreditSales(ctx, p.ClientID)
	if err != nil {
		return err
	}
	steps, left := reverseLegacy(sales, p.Amount)
	for _, st := range steps {
		if err := tx.SetSaleBalance(ctx, st.Sale.ID, st.Sale.Paid, st.Sale.Remaining); err != nil {
			return err
		}
	}
	if left.IsPositive() {
		l.logf("payment %d: %s of %s had no paid sale left to reverse", p.ID, left, p.Amount)
	}
	return nil
}

// UpdatePayment reverses the payment's old effect, allocates the new amount
// to the (possibly different) client's open sales and rewrites the row.
// TargetSaleIDs is honored the same way as in AddPayment.
func (l *Ledger) UpdatePayment(ctx context.Context, id int64, in PaymentInput) error {
	if err := validateID("id", id); err != nil {
		return wrapOp("update payment", err)
	}
	if err := validatePaymentInput(in); err != nil {
		return wrapOp("update payment", err)
	}

	return l.mutate(ctx, "update payment", func(ctx context.Context, tx Tx) error {
		old, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return notFound("payment", id)
		}
		if err := requireClient(ctx, tx, in.ClientID); err != nil {
			return err
		}

		if err := l.reversePayment(ctx, tx, *old); err != nil {
			return err
		}

		candidates, err := l.candidateSales(ctx, tx, in.ClientID, in.TargetSaleIDs)
		if err != nil {
			return err
		}
		if err := l.applyPayment(ctx, tx, id, candidates, in); err != nil {
			return err
		}

		return tx.UpdatePayment(ctx, Payment{
			ID:                 id,
			ClientID:           in.ClientID,
			Date:               in.Date,
			Amount:             in.Amount,
			Notes:              in.Notes,
			AllocationsTracked: true,
		})
	})
}

// DeletePayment reverses the payment's effect and removes it.
func (l *Ledger) DeletePayment(ctx context.Context, id int64) error {
	if err := validateID("id", id); err != nil {
		return wrapOp("delete payment", err)
	}

	return l.mutate(ctx, "delete payment", func(ctx context.Context, tx Tx) error {
		p, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return notFound("payment", id)
		}
		if err := l.reversePayment(ctx, tx, *p); err != nil {
			return err
		}
		n, err := tx.DeletePayment(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDeleteFailed
		}
		return nil
	})
}

// =============================================================================
// READS
// =============================================================================

// GetPayment returns a payment with its client name.
func (l *Ledger) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	p, err := l.Store.GetPayment(ctx, id)
	if err != nil {
		return nil, wrapOp("get payment", err)
	}
	if p == nil {
		return nil, notFound("payment", id)
	}
	return p, nil
}

// ListPayments returns payments dated within [from, to], newest first.
// Empty bounds are open.
func (l *Ledger) ListPayments(ctx context.Context, from, to string) ([]Payment, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	payments, err := l.Store.ListPayments(ctx, from, to)
	if err != nil {
		return nil, wrapOp("list payments", err)
	}
	return payments, nil
}

// PaymentsByClient returns a client's payments, newest first.
func (l *Ledger) PaymentsByClient(ctx context.Context, clientID int64) ([]Payment, error) {
	payments, err := l.Store.PaymentsByClient(ctx, clientID)
	if err != nil {
		return nil, wrapOp("list client payments", err)
	}
	return payments, nil
}

// PaymentAllocations returns how a payment was spread over sales.
func (l *Ledger) PaymentAllocations(ctx context.Context, paymentID int64) ([]PaymentAllocation, error) {
	allocs, err := l.Store.ListAllocations(ctx, paymentID)
	if err != nil {
		return nil, wrapOp("list payment allocations", err)
	}
	return allocs, nil
}
