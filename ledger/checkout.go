package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// CashTolerance is how far paid may differ from total on a cash sale.
var CashTolerance = decimal.RequireFromString("0.001")

// CartLine is one product in a checkout cart.
type CartLine struct {
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// Cart is what the point of sale submits at checkout.
type Cart struct {
	ClientID     *int64
	Date         string
	Lines        []CartLine
	SaleDiscount decimal.Decimal
	Delivery     decimal.Decimal
	Labor        decimal.Decimal
	Paid         decimal.Decimal
	IsCredit     bool
}

// BuildSale computes consistent header totals and item rows for a cart:
//
//	subtotal      = Σ quantity × unit_price
//	totalDiscount = sale discount + Σ line discounts
//	total         = subtotal − totalDiscount + delivery + labor
//	remaining     = total − paid
//
// A cash sale must be paid in full (within CashTolerance) and a credit sale
// needs a client.
func BuildSale(cart Cart) (SaleInput, []SaleItemInput, error) {
	if len(cart.Lines) == 0 {
		return SaleInput{}, nil, invalid("items", "cart is empty")
	}
	if err := firstError(
		validateNonNegative("sale_discount_amount", cart.SaleDiscount),
		validateNonNegative("delivery_price", cart.Delivery),
		validateNonNegative("labor_cost", cart.Labor),
		validateNonNegative("paid", cart.Paid),
	); err != nil {
		return SaleInput{}, nil, err
	}

	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	items := make([]SaleItemInput, 0, len(cart.Lines))
	for i, line := range cart.Lines {
		gross := line.Quantity.Mul(line.UnitPrice)
		item := SaleItemInput{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			DiscountAmount: line.Discount,
			TotalPrice:     gross.Sub(line.Discount),
		}
		if err := validateItemInput(i, item); err != nil {
			return SaleInput{}, nil, err
		}
		subtotal = subtotal.Add(gross)
		lineDiscounts = lineDiscounts.Add(line.Discount)
		items = append(items, item)
	}

	totalDiscount := cart.SaleDiscount.Add(lineDiscounts)
	total := subtotal.Sub(totalDiscount).Add(cart.Delivery).Add(cart.Labor)
	if total.IsNegative() {
		return SaleInput{}, nil, invalid("total", "discounts exceed the sale amount (total %s)", total)
	}

	paid := cart.Paid
	if cart.IsCredit {
		if cart.ClientID == nil {
			return SaleInput{}, nil, invalid("client_id", "a credit sale requires a client")
		}
		if paid.GreaterThan(total) {
			return SaleInput{}, nil, invalid("paid", "paid %s exceeds total %s", paid, total)
		}
	} else {
		if paid.Sub(total).Abs().GreaterThan(CashTolerance) {
			return SaleInput{}, nil, invalid("paid", "cash sale must be paid in full: paid %s, total %s", paid, total)
		}
		paid = total
	}

	header := SaleInput{
		ClientID:           cart.ClientID,
		Date:               cart.Date,
		Subtotal:           subtotal,
		SaleDiscountAmount: cart.SaleDiscount,
		DeliveryPrice:      cart.Delivery,
		LaborCost:          cart.Labor,
		Total:              total,
		Paid:               paid,
		Remaining:          total.Sub(paid),
		IsCredit:           cart.IsCredit,
	}
	return header, items, nil
}

// Checkout builds the sale for cart and records it with AddSale.
func (l *Ledger) Checkout(ctx context.Context, cart Cart) (int64, error) {
	header, items, err := BuildSale(cart)
	if err != nil {
		return 0, wrapOp("checkout", err)
	}
	return l.AddSale(ctx, header, items)
}
