/*
allocation.go - Pure payment allocation arithmetic

PURPOSE:
  Decides how an amount is spread across sales without touching the
  store. payments.go loads candidates, calls these functions, then
  writes the resulting paid/remaining values and allocation rows.

ALGORITHMS:
  allocate:      walk open credit sales in the given order, applying
                 min(left, sale.Remaining) to each until left == 0.
  reverseLegacy: walk credit sales with paid > 0 in the given order,
                 taking back min(left, sale.Paid) from each. Used only
                 for payments recorded before allocations were stored.
  undoAllocation: take one recorded allocation back, floored at paid.

  All three return the amount that could not be placed.
*/
package ledger

import "github.com/shopspring/decimal"

// allocationStep is one sale touched by an allocation or reversal.
type allocationStep struct {
	Sale   Sale            // sale state after the step
	Amount decimal.Decimal // amount moved, always > 0
}

// allocate applies amount to sales in order. sales must already be ordered
// oldest first and filtered to open credit sales.
func allocate(sales []Sale, amount decimal.Decimal) ([]allocationStep, decimal.Decimal) {
	left := amount
	var steps []allocationStep
	for _, s := range sales {
		if !left.IsPositive() {
			break
		}
		if !s.Remaining.IsPositive() {
			continue
		}
		x := decimal.Min(left, s.Remaining)
		s.Remaining = s.Remaining.Sub(x)
		s.Paid = s.Paid.Add(x)
		left = left.Sub(x)
		steps = append(steps, allocationStep{Sale: s, Amount: x})
	}
	return steps, left
}

// reverseLegacy takes amount back from sales in order, oldest first.
func reverseLegacy(sales []Sale, amount decimal.Decimal) ([]allocationStep, decimal.Decimal) {
	left := amount
	var steps []allocationStep
	for _, s := range sales {
		if !left.IsPositive() {
			break
		}
		if !s.Paid.IsPositive() {
			continue
		}
		x := decimal.Min(left, s.Paid)
		s.Remaining = s.Remaining.Add(x)
		s.Paid = s.Paid.Sub(x)
		left = left.Sub(x)
		steps = append(steps, allocationStep{Sale: s, Amount: x})
	}
	return steps, left
}

// undoAllocation takes a recorded allocation back from sale, never more
// than sale.Paid. It returns the amount that could not be taken back,
// which is non-zero only when paid was lowered after the allocation.
func undoAllocation(s Sale, amount decimal.Decimal) (Sale, decimal.Decimal) {
	x := decimal.Min(amount, decimal.Max(s.Paid, decimal.Zero))
	s.Paid = s.Paid.Sub(x)
	s.Remaining = s.Remaining.Add(x)
	return s, amount.Sub(x)
}
