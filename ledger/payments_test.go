package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-ledger/ledger"
)

func (f *fixture) pay(clientID int64, date, amount string, targets ...int64) int64 {
	f.t.Helper()
	id, err := f.ledger.AddPayment(f.ctx, ledger.PaymentInput{
		ClientID: clientID, Date: date, Amount: d(amount), TargetSaleIDs: targets,
	})
	require.NoError(f.t, err)
	return id
}

func TestAddPayment_FIFOAllocation(t *testing.T) {
	// GIVEN: open credit sales d1 < d2 < d3 with remaining [100, 50, 200]
	f := newFixture(t)
	c := f.client("Yusuf")
	s3 := f.creditSale(c, "2024-03-01", "200")
	s1 := f.creditSale(c, "2024-01-01", "100")
	s2 := f.creditSale(c, "2024-02-01", "50")

	// WHEN: paying 120
	paymentID := f.pay(c, "2024-04-01", "120")

	// THEN: remaining is [0, 30, 200]
	f.assertBalance(s1, "100", "0")
	f.assertBalance(s2, "20", "30")
	f.assertBalance(s3, "0", "200")

	allocs, err := f.ledger.PaymentAllocations(f.ctx, paymentID)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, s1, allocs[0].SaleID)
	assert.True(t, allocs[0].Amount.Equal(d("100")))
	assert.Equal(t, s2, allocs[1].SaleID)
	assert.True(t, allocs[1].Amount.Equal(d("20")))
}

func TestAddPayment_OverpaymentIsRecordedInFull(t *testing.T) {
	f := newFixture(t)
	c := f.client("Layla")
	s := f.creditSale(c, "2024-01-01", "30")

	id := f.pay(c, "2024-01-05", "50")

	f.assertBalance(s, "30", "0")
	p, err := f.ledger.GetPayment(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, p.Amount.Equal(d("50")), "payment keeps the amount received")
	assert.Equal(t, "Layla", p.ClientName)
}

func TestAddPayment_Targeted(t *testing.T) {
	f := newFixture(t)
	c := f.client("Samir")
	old := f.creditSale(c, "2024-01-01", "100")
	recent := f.creditSale(c, "2024-02-01", "100")

	f.pay(c, "2024-03-01", "40", recent)

	f.assertBalance(old, "0", "100")
	f.assertBalance(recent, "40", "60")
}

func TestAddPayment_NoEligibleSales(t *testing.T) {
	f := newFixture(t)
	c := f.client("Dina")
	other := f.client("Other")
	otherSale := f.creditSale(other, "2024-01-01", "100")
	_, err := f.ledger.AddSale(f.ctx, cashHeader("2024-01-02", "10"), nil)
	require.NoError(t, err)

	_, err = f.ledger.AddPayment(f.ctx, ledger.PaymentInput{
		ClientID: c, Date: "2024-02-01", Amount: d("10"), TargetSaleIDs: []int64{otherSale, 999},
	})

	require.ErrorIs(t, err, ledger.ErrNoEligibleSales)
	assert.True(t, ledger.IsClientError(err))
	f.assertBalance(otherSale, "0", "100")
	payments, err := f.ledger.PaymentsByClient(f.ctx, c)
	require.NoError(t, err)
	assert.Empty(t, payments, "no payment row on failure")
}

func TestAddPayment_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.client("Tarek")

	tests := []struct {
		name string
		in   ledger.PaymentInput
		is   error
	}{
		{"zero amount", ledger.PaymentInput{ClientID: c, Date: "2024-01-01", Amount: d("0")}, ledger.ErrValidation},
		{"negative amount", ledger.PaymentInput{ClientID: c, Date: "2024-01-01", Amount: d("-5")}, ledger.ErrValidation},
		{"bad client id", ledger.PaymentInput{ClientID: 0, Date: "2024-01-01", Amount: d("5")}, ledger.ErrValidation},
		{"bad date", ledger.PaymentInput{ClientID: c, Date: "2024-1-1", Amount: d("5")}, ledger.ErrValidation},
		{"unknown client", ledger.PaymentInput{ClientID: 9999, Date: "2024-01-01", Amount: d("5")}, ledger.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.AddPayment(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestDeletePayment_RestoresBalances(t *testing.T) {
	// GIVEN: two open sales and a payment spanning both
	f := newFixture(t)
	c := f.client("Fadi")
	s1 := f.creditSale(c, "2024-01-01", "100")
	s2 := f.creditSale(c, "2024-02-01", "50")
	id := f.pay(c, "2024-03-01", "120")

	// WHEN: deleting the payment right away
	require.NoError(t, f.ledger.DeletePayment(f.ctx, id))

	// THEN: every sale is back to its pre-payment state
	f.assertBalance(s1, "0", "100")
	f.assertBalance(s2, "0", "50")
	_, err := f.ledger.GetPayment(f.ctx, id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.ErrorIs(t, f.ledger.DeletePayment(f.ctx, id), ledger.ErrNotFound)
}

func TestDeletePayment_PaidLoweredByHeaderEdit(t *testing.T) {
	// GIVEN: 50 paid on a 100 credit sale, then the header edited back to paid 0
	f := newFixture(t)
	c := f.client("Nour")
	s := f.creditSale(c, "2024-01-01", "100")
	id := f.pay(c, "2024-01-10", "50")
	require.NoError(t, f.ledger.UpdateSale(f.ctx, s, ledger.SaleInput{
		ClientID: &c, Date: "2024-01-01",
		Subtotal: d("100"), Total: d("100"), Paid: d("0"), Remaining: d("100"),
		IsCredit: true,
	}))

	// WHEN: deleting the payment
	require.NoError(t, f.ledger.DeletePayment(f.ctx, id))

	// THEN: paid does not go below zero
	f.assertBalance(s, "0", "100")
}

func TestDeletePayment_InterleavedPaymentsReplayExactly(t *testing.T) {
	// GIVEN: P1 pays 50 on S1; P2 pays 80, finishing S1 and starting S2
	f := newFixture(t)
	c := f.client("Hana")
	s1 := f.creditSale(c, "2024-01-01", "100")
	s2 := f.creditSale(c, "2024-02-01", "100")
	p1 := f.pay(c, "2024-03-01", "50")
	p2 := f.pay(c, "2024-03-02", "80")
	f.assertBalance(s1, "100", "0")
	f.assertBalance(s2, "30", "70")

	// WHEN: deleting P2
	require.NoError(t, f.ledger.DeletePayment(f.ctx, p2))

	// THEN: only P2's share is undone; P1 still covers 50 of S1
	f.assertBalance(s1, "50", "50")
	f.assertBalance(s2, "0", "100")

	// AND: deleting P1 afterwards returns to the start
	require.NoError(t, f.ledger.DeletePayment(f.ctx, p1))
	f.assertBalance(s1, "0", "100")
	f.assertBalance(s2, "0", "100")
}

func TestDeletePayment_UntrackedFallsBackToOldestPaid(t *testing.T) {
	// GIVEN: a payment recorded without allocations (as before allocations were
	// stored) that paid 60 on S1 and 20 on S2
	f := newFixture(t)
	c := f.client("Walid")
	s1 := f.creditSale(c, "2024-01-01", "60")
	s2 := f.creditSale(c, "2024-02-01", "50")

	var paymentID int64
	err := f.store.WithTx(f.ctx, func(ctx context.Context, tx ledger.Tx) error {
		if err := tx.SetSaleBalance(ctx, s1, d("60"), d("0")); err != nil {
			return err
		}
		if err := tx.SetSaleBalance(ctx, s2, d("20"), d("30")); err != nil {
			return err
		}
		id, err := tx.InsertPayment(ctx, ledger.Payment{ClientID: c, Date: "2024-03-01", Amount: d("80")})
		paymentID = id
		return err
	})
	require.NoError(t, err)

	// WHEN: deleting it
	require.NoError(t, f.ledger.DeletePayment(f.ctx, paymentID))

	// THEN: the amount is taken back from paid sales, oldest first
	f.assertBalance(s1, "0", "60")
	f.assertBalance(s2, "0", "50")
}

func TestUpdatePayment_ReversesThenReapplies(t *testing.T) {
	f := newFixture(t)
	c := f.client("Rania")
	s1 := f.creditSale(c, "2024-01-01", "100")
	s2 := f.creditSale(c, "2024-02-01", "100")
	id := f.pay(c, "2024-03-01", "150")
	f.assertBalance(s1, "100", "0")
	f.assertBalance(s2, "50", "50")

	err := f.ledger.UpdatePayment(f.ctx, id, ledger.PaymentInput{
		ClientID: c, Date: "2024-03-05", Amount: d("30"), Notes: "corrected",
	})
	require.NoError(t, err)

	f.assertBalance(s1, "30", "70")
	f.assertBalance(s2, "0", "100")
	p, err := f.ledger.GetPayment(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", p.Date)
	assert.Equal(t, "corrected", p.Notes)
	assert.True(t, p.Amount.Equal(d("30")))
	f.assertNoViolations()
}

func TestUpdatePayment_MovesToAnotherClient(t *testing.T) {
	f := newFixture(t)
	a := f.client("A")
	b := f.client("B")
	sa := f.creditSale(a, "2024-01-01", "100")
	sb := f.creditSale(b, "2024-01-01", "100")
	id := f.pay(a, "2024-02-01", "40")

	require.NoError(t, f.ledger.UpdatePayment(f.ctx, id, ledger.PaymentInput{
		ClientID: b, Date: "2024-02-01", Amount: d("40"),
	}))

	f.assertBalance(sa, "0", "100")
	f.assertBalance(sb, "40", "60")
}

func TestUpdatePayment_FailureRollsBackReversal(t *testing.T) {
	f := newFixture(t)
	c := f.client("Ziad")
	s := f.creditSale(c, "2024-01-01", "100")
	id := f.pay(c, "2024-02-01", "40")

	err := f.ledger.UpdatePayment(f.ctx, id, ledger.PaymentInput{
		ClientID: c, Date: "2024-02-01", Amount: d("10"), TargetSaleIDs: []int64{9999},
	})

	require.ErrorIs(t, err, ledger.ErrNoEligibleSales)
	f.assertBalance(s, "40", "60")
}

func TestListPayments_DateRange(t *testing.T) {
	f := newFixture(t)
	c := f.client("Nour")
	f.creditSale(c, "2024-01-01", "500")
	f.pay(c, "2024-01-10", "10")
	f.pay(c, "2024-02-10", "10")
	f.pay(c, "2024-03-10", "10")

	payments, err := f.ledger.ListPayments(f.ctx, "2024-02-01", "")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "2024-03-10", payments[0].Date)

	_, err = f.ledger.ListPayments(f.ctx, "yesterday", "")
	assert.ErrorIs(t, err, ledger.ErrValidation)
}
