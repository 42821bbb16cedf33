package ledger

import (
	"context"
	"fmt"
)

// ViolationKind names a broken ledger invariant.
type ViolationKind string

const (
	ViolationRemaining     ViolationKind = "remaining_mismatch" // remaining != total - paid
	ViolationCashUnpaid    ViolationKind = "cash_not_paid"      // cash sale with paid != total
	ViolationNegativeStock ViolationKind = "negative_stock"
)

// Violation is one record that breaks an invariant.
type Violation struct {
	Kind     ViolationKind
	Entity   string
	EntityID int64
	Detail   string
}

// CheckInvariants scans every sale and product and reports records where
// remaining != total - paid, cash sales not paid in full, or stock below zero.
func (l *Ledger) CheckInvariants(ctx context.Context) ([]Violation, error) {
	sales, err := l.Store.AllSales(ctx)
	if err != nil {
		return nil, wrapOp("check invariants", err)
	}
	products, err := l.Store.AllProducts(ctx)
	if err != nil {
		return nil, wrapOp("check invariants", err)
	}

	var out []Violation
	for _, s := range sales {
		if want := s.Total.Sub(s.Paid); !s.Remaining.Sub(want).Abs().LessThanOrEqual(CashTolerance) {
			out = append(out, Violation{
				Kind:     ViolationRemaining,
				Entity:   "sale",
				EntityID: s.ID,
				Detail:   fmt.Sprintf("remaining %s, total %s - paid %s = %s", s.Remaining, s.Total, s.Paid, want),
			})
		}
		if !s.IsCredit && !s.Paid.Sub(s.Total).Abs().LessThanOrEqual(CashTolerance) {
			out = append(out, Violation{
				Kind:     ViolationCashUnpaid,
				Entity:   "sale",
				EntityID: s.ID,
				Detail:   fmt.Sprintf("cash sale paid %s of %s", s.Paid, s.Total),
			})
		}
	}
	for _, p := range products {
		if p.StockQuantity.IsNegative() {
			out = append(out, Violation{
				Kind:     ViolationNegativeStock,
				Entity:   "product",
				EntityID: p.ID,
				Detail:   fmt.Sprintf("%s stock %s", p.Name, p.StockQuantity),
			})
		}
	}
	return out, nil
}
