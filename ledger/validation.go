package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. Anything else is a validation error.
func ParseDate(field, value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, invalid(field, "%q is not a YYYY-MM-DD date", value)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, invalid(field, "%q is not a YYYY-MM-DD date", value)
	}
	return t, nil
}

func validateDate(field, value string) error {
	_, err := ParseDate(field, value)
	return err
}

func validateNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalid(field, "must be >= 0, got %s", v)
	}
	return nil
}

func validatePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return invalid(field, "must be > 0, got %s", v)
	}
	return nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return invalid(field, "must be a positive integer, got %d", id)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// validateSaleInput checks the header fields of a sale before any store access.
func validateSaleInput(in SaleInput) error {
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	if in.ClientID != nil {
		if err := validateID("client_id", *in.ClientID); err != nil {
			return err
		}
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"subtotal", in.Subtotal},
		{"sale_discount_amount", in.SaleDiscountAmount},
		{"delivery_price", in.DeliveryPrice},
		{"labor_cost", in.LaborCost},
		{"total", in.Total},
		{"paid", in.Paid},
		{"remaining", in.Remaining},
	}
	for _, a := range amounts {
		if err := validateNonNegative(a.field, a.value); err != nil {
			return err
		}
	}
	return nil
}

// validateItemInput checks one sale line.
func validateItemInput(idx int, in SaleItemInput) error {
	if in.ProductID <= 0 {
		return invalid("items", "item %d: invalid product_id %d", idx, in.ProductID)
	}
	if !in.Quantity.IsPositive() {
		return invalid("items", "item %d: quantity must be > 0, got %s", idx, in.Quantity)
	}
	if in.UnitPrice.IsNegative() {
		return invalid("items", "item %d: unit_price must be >= 0, got %s", idx, in.UnitPrice)
	}
	if in.DiscountAmount.IsNegative() {
		return invalid("items", "item %d: discount_amount must be >= 0, got %s", idx, in.DiscountAmount)
	}
	if in.TotalPrice.IsNegative() {
		return invalid("items", "item %d: total_price must be >= 0, got %s", idx, in.TotalPrice)
	}
	return nil
}

// validatePaymentInput checks a payment header before any store access.
func validatePaymentInput(in PaymentInput) error {
	if err := validateID("client_id", in.ClientID); err != nil {
		return err
	}
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	if err := validatePositive("amount", in.Amount); err != nil {
		return err
	}
	for _, id := range in.TargetSaleIDs {
		if err := validateID("target_sale_ids", id); err != nil {
			return err
		}
	}
	return nil
}
