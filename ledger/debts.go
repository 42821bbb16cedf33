package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// SettleClientDebts pays off every open credit sale of a client with one
// payment dated today. The amount is the exact sum of the open balances,
// read in the same transaction that allocates it. It returns the new
// payment id, or 0 when the client owes nothing.
func (l *Ledger) SettleClientDebts(ctx context.Context, clientID int64) (int64, error) {
	if err := validateID("client_id", clientID); err != nil {
		return 0, wrapOp("settle client debts", err)
	}

	var paymentID int64
	var debt decimal.Decimal
	err := l.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := requireClient(ctx, tx, clientID); err != nil {
			return err
		}

		open, err := tx.OpenCreditSales(ctx, clientID)
		if err != nil {
			return err
		}
		debt = openBalance(open)
		if !debt.IsPositive() {
			return nil
		}

		paymentID, err = l.recordPayment(ctx, tx, open, PaymentInput{
			ClientID: clientID,
			Date:     l.today(),
			Amount:   debt,
			Notes:    SettlementNote,
		})
		return err
	})
	if err != nil {
		return 0, wrapOp("settle client debts", err)
	}
	if paymentID == 0 {
		return 0, nil
	}

	l.logf("client %d settled: payment %d of %s", clientID, paymentID, debt)
	return paymentID, l.persist(ctx, "settle client debts")
}

// openBalance sums Remaining over sales.
func openBalance(sales []Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Remaining)
	}
	return total
}

// ClientDebt returns the sum of a client's open credit balances.
func (l *Ledger) ClientDebt(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	debt, err := l.Store.ClientTotalDebt(ctx, clientID)
	if err != nil {
		return decimal.Zero, wrapOp("get client debt", err)
	}
	return debt, nil
}

// ClientsWithCredit returns clients owing money, largest debt first, then by name.
func (l *Ledger) ClientsWithCredit(ctx context.Context) ([]ClientDebt, error) {
	debts, err := l.Store.ClientsWithCredit(ctx)
	if err != nil {
		return nil, wrapOp("list clients with credit", err)
	}
	return debts, nil
}

// TopSpendingClients returns the limit clients with the highest sale totals.
func (l *Ledger) TopSpendingClients(ctx context.Context, limit int) ([]ClientSpending, error) {
	if limit <= 0 {
		limit = 10
	}
	top, err := l.Store.TopSpendingClients(ctx, limit)
	if err != nil {
		return nil, wrapOp("list top spending clients", err)
	}
	return top, nil
}
