package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-ledger/ledger"
)

func item(productID int64, qty, price, discount string) ledger.SaleItemInput {
	q, p, disc := d(qty), d(price), d(discount)
	return ledger.SaleItemInput{
		ProductID: productID, Quantity: q, UnitPrice: p,
		DiscountAmount: disc, TotalPrice: q.Mul(p).Sub(disc),
	}
}

func cashHeader(date, total string) ledger.SaleInput {
	return ledger.SaleInput{
		Date: date, Subtotal: d(total), Total: d(total), Paid: d(total), Remaining: decimal.Zero,
	}
}

func TestAddSale_DecrementsStock(t *testing.T) {
	f := newFixture(t)
	cement := f.product("Cement", "10")
	sand := f.product("Sand", "2.5")

	id, err := f.ledger.AddSale(f.ctx, cashHeader("2024-02-01", "85"), []ledger.SaleItemInput{
		item(cement, "3", "15", "0"),
		item(sand, "1.5", "25", "2.5"),
	})
	require.NoError(t, err)

	assert.True(t, f.stock(cement).Equal(d("7")))
	assert.True(t, f.stock(sand).Equal(d("1")))

	items, err := f.ledger.ListSaleItems(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Cement", items[0].ProductName)
	f.assertNoViolations()
}

func TestAddSale_InsufficientStockRollsBackEverything(t *testing.T) {
	// GIVEN: two products, the second with too little stock
	f := newFixture(t)
	a := f.product("Bricks", "100")
	b := f.product("Steel", "1")

	// WHEN: a sale asks for more steel than exists
	_, err := f.ledger.AddSale(f.ctx, cashHeader("2024-02-01", "50"), []ledger.SaleItemInput{
		item(a, "10", "1", "0"),
		item(b, "2", "20", "0"),
	})

	// THEN: nothing is kept: no header, no items, no stock change
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	var se *ledger.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, b, se.ProductID)
	assert.True(t, se.Available.Equal(d("1")))

	assert.True(t, f.stock(a).Equal(d("100")))
	assert.True(t, f.stock(b).Equal(d("1")))
	page, err := f.ledger.ListSales(f.ctx, ledger.SaleFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestAddSale_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.product("Gypsum", "5")
	missing := int64(404)

	tests := []struct {
		name   string
		header ledger.SaleInput
		items  []ledger.SaleItemInput
		is     error
	}{
		{"bad date", cashHeader("01/02/2024", "10"), nil, ledger.ErrValidation},
		{"datetime is not a date", cashHeader("2024-02-01T00:00:00Z", "10"), nil, ledger.ErrValidation},
		{"negative total", ledger.SaleInput{Date: "2024-02-01", Total: d("-1")}, nil, ledger.ErrValidation},
		{"zero quantity", cashHeader("2024-02-01", "10"), []ledger.SaleItemInput{item(p, "0", "10", "0")}, ledger.ErrValidation},
		{"unknown product", cashHeader("2024-02-01", "10"), []ledger.SaleItemInput{item(999, "1", "10", "0")}, ledger.ErrNotFound},
		{"unknown client", ledger.SaleInput{ClientID: &missing, Date: "2024-02-01"}, nil, ledger.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.AddSale(f.ctx, tt.header, tt.items)
			assert.ErrorIs(t, err, tt.is)
		})
	}
	assert.True(t, f.stock(p).Equal(d("5")))
}

func TestAddBulkSaleItems_IsAtomic(t *testing.T) {
	// GIVEN: an existing sale and three products, one nearly out of stock
	f := newFixture(t)
	a := f.product("Cement", "50")
	b := f.product("Sand", "20")
	c := f.product("Rebar", "1")
	saleID, err := f.ledger.AddSale(f.ctx, cashHeader("2024-03-01", "0"), nil)
	require.NoError(t, err)

	// WHEN: the batch's last item exceeds stock
	_, err = f.ledger.AddBulkSaleItems(f.ctx, saleID, []ledger.SaleItemInput{
		item(a, "5", "15", "0"),
		item(b, "2", "25", "0"),
		item(c, "3", "1200", "0"),
	})

	// THEN: stock of every product is unchanged and no item was inserted
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.True(t, f.stock(a).Equal(d("50")))
	assert.True(t, f.stock(b).Equal(d("20")))
	assert.True(t, f.stock(c).Equal(d("1")))

	items, err := f.ledger.ListSaleItems(f.ctx, saleID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddBulkSaleItems_Success(t *testing.T) {
	f := newFixture(t)
	a := f.product("Cement", "50")
	saleID, err := f.ledger.AddSale(f.ctx, cashHeader("2024-03-01", "0"), nil)
	require.NoError(t, err)

	ids, err := f.ledger.AddBulkSaleItems(f.ctx, saleID, []ledger.SaleItemInput{
		item(a, "5", "15", "0"),
		item(a, "1", "15", "0"),
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.True(t, f.stock(a).Equal(d("44")))

	_, err = f.ledger.AddBulkSaleItems(f.ctx, saleID, nil)
	assert.ErrorIs(t, err, ledger.ErrValidation)
	_, err = f.ledger.AddBulkSaleItems(f.ctx, 9999, []ledger.SaleItemInput{item(a, "1", "1", "0")})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDeleteSaleItem_RecomputesWithFlatDiscount(t *testing.T) {
	// GIVEN: a sale with items of total_price 100 and 50 and a sale discount of 10
	f := newFixture(t)
	clientID := f.client("Karim")
	p1 := f.product("Tiles", "100")
	p2 := f.product("Grout", "100")

	saleID, err := f.ledger.AddSale(f.ctx, ledger.SaleInput{
		ClientID: &clientID, Date: "2024-04-01",
		Subtotal: d("150"), SaleDiscountAmount: d("10"),
		Total: d("140"), Paid: d("20"), Remaining: d("120"), IsCredit: true,
	}, []ledger.SaleItemInput{
		item(p1, "10", "10", "0"),
		item(p2, "5", "10", "0"),
	})
	require.NoError(t, err)
	items, err := f.ledger.ListSaleItems(f.ctx, saleID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// WHEN: deleting the 50 item
	require.NoError(t, f.ledger.DeleteSaleItem(f.ctx, items[1].ID))

	// THEN: subtotal 100, total 100 - 10 = 90, remaining 90 - paid
	s := f.sale(saleID)
	assert.True(t, s.Subtotal.Equal(d("100")), "subtotal %s", s.Subtotal)
	assert.True(t, s.Total.Equal(d("90")), "total %s", s.Total)
	assert.True(t, s.Remaining.Equal(d("70")), "remaining %s", s.Remaining)
	assert.True(t, s.Paid.Equal(d("20")))
	assert.True(t, f.stock(p2).Equal(d("100")), "stock restored")
	f.assertNoViolations()
}

func TestDeleteSaleItem_RemainingMayGoNegative(t *testing.T) {
	f := newFixture(t)
	clientID := f.client("Rami")
	p := f.product("Paint", "10")

	saleID, err := f.ledger.AddSale(f.ctx, ledger.SaleInput{
		ClientID: &clientID, Date: "2024-04-01",
		Subtotal: d("60"), Total: d("60"), Paid: d("60"), Remaining: decimal.Zero, IsCredit: true,
	}, []ledger.SaleItemInput{item(p, "2", "20", "0"), item(p, "1", "20", "0")})
	require.NoError(t, err)
	items, err := f.ledger.ListSaleItems(f.ctx, saleID)
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteSaleItem(f.ctx, items[0].ID))

	f.assertBalance(saleID, "60", "-40")
}

func TestDeleteSaleItem_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.ledger.DeleteSaleItem(f.ctx, 12345)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

func TestDeleteSale_RestoresStock(t *testing.T) {
	f := newFixture(t)
	p := f.product("Blocks", "2000")

	saleID, err := f.ledger.AddSale(f.ctx, cashHeader("2024-05-01", "300"), []ledger.SaleItemInput{
		item(p, "200", "1.5", "0"),
	})
	require.NoError(t, err)
	assert.True(t, f.stock(p).Equal(d("1800")))

	require.NoError(t, f.ledger.DeleteSale(f.ctx, saleID))
	assert.True(t, f.stock(p).Equal(d("2000")))

	_, err = f.ledger.GetSale(f.ctx, saleID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.ErrorIs(t, f.ledger.DeleteSale(f.ctx, saleID), ledger.ErrNotFound)
}

func TestDeleteSale_ProductRemovedMeanwhile(t *testing.T) {
	f := newFixture(t)
	p := f.product("Discontinued", "5")
	saleID, err := f.ledger.AddSale(f.ctx, cashHeader("2024-05-01", "10"), []ledger.SaleItemInput{item(p, "1", "10", "0")})
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteProduct(f.ctx, p))

	assert.NoError(t, f.ledger.DeleteSale(f.ctx, saleID))
}

func TestUpdateSale_HeaderOnly(t *testing.T) {
	f := newFixture(t)
	clientID := f.client("Mona")
	p := f.product("Wood", "10")
	saleID, err := f.ledger.AddSale(f.ctx, cashHeader("2024-05-01", "20"), []ledger.SaleItemInput{item(p, "1", "20", "0")})
	require.NoError(t, err)

	err = f.ledger.UpdateSale(f.ctx, saleID, ledger.SaleInput{
		ClientID: &clientID, Date: "2024-05-02",
		Subtotal: d("20"), Total: d("20"), Paid: d("5"), Remaining: d("15"), IsCredit: true,
	})
	require.NoError(t, err)

	s := f.sale(saleID)
	assert.Equal(t, "2024-05-02", s.Date)
	assert.Equal(t, "Mona", s.ClientName)
	assert.True(t, s.IsCredit)
	assert.True(t, f.stock(p).Equal(d("9")), "items and stock untouched")

	assert.ErrorIs(t, f.ledger.UpdateSale(f.ctx, 999, cashHeader("2024-05-02", "1")), ledger.ErrNotFound)
}

func TestListSales_Filters(t *testing.T) {
	f := newFixture(t)
	ali := f.client("Ali Hassan")
	sara := f.client("Sara")
	f.creditSale(ali, "2024-01-10", "100")
	f.creditSale(sara, "2024-02-10", "50")
	_, err := f.ledger.AddSale(f.ctx, cashHeader("2024-03-10", "30"), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ledger.SaleFilter
		want   int
	}{
		{"all", ledger.SaleFilter{}, 3},
		{"credit", ledger.SaleFilter{Type: ledger.SaleTypeCredit}, 2},
		{"cash", ledger.SaleFilter{Type: ledger.SaleTypeCash}, 1},
		{"date range", ledger.SaleFilter{From: "2024-02-01", To: "2024-03-31"}, 2},
		{"client search", ledger.SaleFilter{ClientSearch: "hass"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.ledger.ListSales(f.ctx, tt.filter, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Total)
			assert.Len(t, page.Sales, tt.want)
		})
	}

	page, err := f.ledger.ListSales(f.ctx, ledger.SaleFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Sales, 1)
	assert.Equal(t, "2024-01-10", page.Sales[0].Date, "newest first, so page 2 holds the oldest")

	_, err = f.ledger.ListSales(f.ctx, ledger.SaleFilter{Type: "bogus"}, 1, 10)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}
