/*
demo.go - Demo data loader for testing and demonstrations

PURPOSE:
  Resets the database and populates it with a building-materials shop:
  a product catalog, a handful of clients, cash and credit sales spread
  over the last two months, and payments against the credit sales.

HOW IT WORKS:
 1. Reset: restore the snapshot of an empty, migrated database
 2. Create products and clients through the ledger
 3. Checkout carts (cash and credit) dated relative to the ledger clock
 4. Record payments and settle one client in full

USAGE VIA API:

	POST /api/demo/load

NOTE:

	Loading the demo wipes existing data. Only use in development.

SEE ALSO:
  - handlers.go: LoadDemo handler
*/
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-ledger/ledger"
	"github.com/warp/retail-ledger/store/sqlite"
)

var demoProducts = []ledger.Product{
	{Name: "Portland cement", Unit: "bag (50 kg)", PricePerUnit: dec("15"), PurchasePrice: dec("12"), StockQuantity: dec("500"), MinStockLevel: dec("50")},
	{Name: "Fine building sand", Unit: "m3", PricePerUnit: dec("25"), PurchasePrice: dec("18"), StockQuantity: dec("100"), MinStockLevel: dec("10")},
	{Name: "Gravel 3/4", Unit: "m3", PricePerUnit: dec("30"), PurchasePrice: dec("22"), StockQuantity: dec("80"), MinStockLevel: dec("10")},
	{Name: "Rebar 16 mm", Unit: "ton", PricePerUnit: dec("1200"), PurchasePrice: dec("1050"), StockQuantity: dec("20"), MinStockLevel: dec("2")},
	{Name: "Rebar 12 mm", Unit: "ton", PricePerUnit: dec("1250"), PurchasePrice: dec("1100"), StockQuantity: dec("25"), MinStockLevel: dec("3")},
	{Name: "Solid red brick", Unit: "1000 pcs", PricePerUnit: dec("400"), PurchasePrice: dec("320"), StockQuantity: dec("50"), MinStockLevel: dec("5")},
	{Name: "Cement block 20 cm", Unit: "piece", PricePerUnit: dec("1.5"), PurchasePrice: dec("1.1"), StockQuantity: dec("2000"), MinStockLevel: dec("200")},
	{Name: "Building gypsum", Unit: "bag (25 kg)", PricePerUnit: dec("8"), PurchasePrice: dec("6"), StockQuantity: dec("300"), MinStockLevel: dec("30")},
	{Name: "Waterproofing roll", Unit: "roll (10 m)", PricePerUnit: dec("50"), PurchasePrice: dec("40"), StockQuantity: dec("100"), MinStockLevel: dec("10")},
	{Name: "Timber board", Unit: "board", PricePerUnit: dec("20"), PurchasePrice: dec("15"), StockQuantity: dec("400"), MinStockLevel: dec("50")},
}

const demoClients = 6

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// LoadDemo wipes l's database and seeds the demo shop.
func LoadDemo(ctx context.Context, l *ledger.Ledger) (DemoDTO, error) {
	var result DemoDTO

	if err := resetLedger(ctx, l); err != nil {
		return result, err
	}

	productIDs := make([]int64, 0, len(demoProducts))
	for _, p := range demoProducts {
		id, err := l.AddProduct(ctx, p)
		if err != nil {
			return result, err
		}
		productIDs = append(productIDs, id)
		result.Products++
	}

	clientIDs := make([]int64, 0, demoClients)
	for i := 1; i <= demoClients; i++ {
		id, err := l.AddClient(ctx, ledger.Client{
			Name:      fmt.Sprintf("Client %d", i),
			Phone:     fmt.Sprintf("05012345%02d", i),
			Address:   fmt.Sprintf("Address %d", i),
			IsRegular: i%2 == 0,
		})
		if err != nil {
			return result, err
		}
		clientIDs = append(clientIDs, id)
		result.Clients++
	}

	today := l.Now()
	day := func(daysAgo int) string {
		return today.AddDate(0, 0, -daysAgo).Format(ledger.DateLayout)
	}

	for i := 0; i < 12; i++ {
		cart := demoCart(i, productIDs)
		cart.Date = day(60 - i*5)
		total := cartTotal(cart)
		if i%3 == 0 {
			cart.Paid = total
		} else {
			client := clientIDs[i%len(clientIDs)]
			cart.ClientID = &client
			cart.IsCredit = true
			cart.Paid = total.Div(dec("4")).Round(0)
		}
		if _, err := l.Checkout(ctx, cart); err != nil {
			return result, err
		}
		result.Sales++
	}

	for i, client := range clientIDs[1:4] {
		debt, err := l.ClientDebt(ctx, client)
		if err != nil {
			return result, err
		}
		if !debt.IsPositive() {
			continue
		}
		if _, err := l.AddPayment(ctx, ledger.PaymentInput{
			ClientID: client,
			Date:     day(10 - i),
			Amount:   debt.Div(dec("2")).Round(0),
			Notes:    "Cash at counter",
		}); err != nil {
			return result, err
		}
		result.Payments++
	}

	settled, err := l.SettleClientDebts(ctx, clientIDs[len(clientIDs)-1])
	if err != nil {
		return result, err
	}
	if settled != 0 {
		result.Payments++
	}

	return result, nil
}

// resetLedger replaces l's database with an empty one.
func resetLedger(ctx context.Context, l *ledger.Ledger) error {
	empty, err := sqlite.New()
	if err != nil {
		return err
	}
	defer empty.Close()

	data, err := empty.Backup(ctx)
	if err != nil {
		return err
	}
	return l.Restore(ctx, data)
}

// demoCart picks two or three products with small quantities.
func demoCart(i int, productIDs []int64) ledger.Cart {
	n := len(productIDs)
	line := func(idx int, qty decimal.Decimal) ledger.CartLine {
		return ledger.CartLine{ProductID: productIDs[idx], Quantity: qty, UnitPrice: demoProducts[idx].PricePerUnit}
	}
	lines := []ledger.CartLine{
		line(i%n, decimal.NewFromInt(int64(i%4+1))),
		line((i+3)%n, decimal.NewFromInt(int64(i%3+2))),
	}
	if i%2 == 1 {
		lines = append(lines, line((i+7)%n, dec("0.5")))
	}
	cart := ledger.Cart{Lines: lines}
	if i%4 == 1 {
		cart.Delivery = dec("20")
	}
	if i%5 == 2 {
		cart.SaleDiscount = dec("5")
	}
	return cart
}

func cartTotal(cart ledger.Cart) decimal.Decimal {
	total := cart.Delivery.Add(cart.Labor).Sub(cart.SaleDiscount)
	for _, line := range cart.Lines {
		total = total.Add(line.Quantity.Mul(line.UnitPrice)).Sub(line.Discount)
	}
	return total
}
