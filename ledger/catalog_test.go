package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-ledger/ledger"
)

func TestProducts_CRUDAndLowStock(t *testing.T) {
	f := newFixture(t)
	low := f.product("Nails", "1")
	f.product("Screws", "50")

	lows, err := f.ledger.LowStockProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, lows, 1)
	assert.Equal(t, low, lows[0].ID)
	assert.True(t, lows[0].IsLowStock())

	p, err := f.ledger.GetProduct(f.ctx, low)
	require.NoError(t, err)
	p.StockQuantity = d("30")
	require.NoError(t, f.ledger.UpdateProduct(f.ctx, *p))

	lows, err = f.ledger.LowStockProducts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, lows)

	found, err := f.ledger.ListProducts(f.ctx, "scr")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = f.ledger.AddProduct(f.ctx, ledger.Product{Name: " "})
	assert.ErrorIs(t, err, ledger.ErrValidation)
	_, err = f.ledger.AddProduct(f.ctx, ledger.Product{Name: "Bad", StockQuantity: d("-1")})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	require.NoError(t, f.ledger.DeleteProduct(f.ctx, low))
	assert.ErrorIs(t, f.ledger.DeleteProduct(f.ctx, low), ledger.ErrNotFound)
}

func TestDeleteClient_RefusedWhenReferenced(t *testing.T) {
	f := newFixture(t)
	withSale := f.client("Has sales")
	f.creditSale(withSale, "2024-01-01", "10")
	free := f.client("No sales")

	err := f.ledger.DeleteClient(f.ctx, withSale)
	assert.ErrorIs(t, err, ledger.ErrClientHasSales)
	assert.True(t, ledger.IsClientError(err))

	require.NoError(t, f.ledger.DeleteClient(f.ctx, free))
	_, err = f.ledger.GetClient(f.ctx, free)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestUpdateClient(t *testing.T) {
	f := newFixture(t)
	id := f.client("Old name")

	err := f.ledger.UpdateClient(f.ctx, ledger.Client{ID: id, Name: "New name", Phone: "0555", IsRegular: true})
	require.NoError(t, err)

	c, err := f.ledger.GetClient(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New name", c.Name)
	assert.Equal(t, "0555", c.Phone)
	assert.True(t, c.IsRegular)

	found, err := f.ledger.ListClients(f.ctx, "055")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	assert.ErrorIs(t, f.ledger.UpdateClient(f.ctx, ledger.Client{ID: 999, Name: "x"}), ledger.ErrNotFound)
}

func TestReports_SummaryAndTopProducts(t *testing.T) {
	f := newFixture(t)
	c := f.client("Reporter")
	cement := f.product("Cement", "100")
	sand := f.product("Sand", "100")

	_, err := f.ledger.AddSale(f.ctx, ledger.SaleInput{
		Date: "2024-01-05", Subtotal: d("50"), DeliveryPrice: d("5"), Total: d("55"), Paid: d("55"),
	}, []ledger.SaleItemInput{item(cement, "2", "25", "0")})
	require.NoError(t, err)
	_, err = f.ledger.AddSale(f.ctx, ledger.SaleInput{
		ClientID: &c, Date: "2024-01-06", Subtotal: d("100"), LaborCost: d("10"),
		Total: d("110"), Remaining: d("110"), IsCredit: true,
	}, []ledger.SaleItemInput{item(sand, "4", "25", "0")})
	require.NoError(t, err)
	f.pay(c, "2024-01-07", "60")

	sum, err := f.ledger.Summary(f.ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.SalesCount)
	assert.True(t, sum.TotalSales.Equal(d("165")))
	assert.True(t, sum.TotalRemaining.Equal(d("50")))
	assert.True(t, sum.TotalPayments.Equal(d("60")))
	assert.True(t, sum.TotalDelivery.Equal(d("5")))
	assert.True(t, sum.TotalLabor.Equal(d("10")))
	assert.True(t, sum.CashRevenue.Equal(d("55")))

	empty, err := f.ledger.Summary(f.ctx, "2030-01-01", "")
	require.NoError(t, err)
	assert.Zero(t, empty.SalesCount)
	assert.True(t, empty.TotalSales.IsZero())

	top, err := f.ledger.TopSellingProducts(f.ctx, "", "", 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Sand", top[0].Name)
	assert.True(t, top[0].TotalQuantity.Equal(d("4")))

	// Only the cement sale falls on 2024-01-05
	top, err = f.ledger.TopSellingProducts(f.ctx, "2024-01-05", "2024-01-05", 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, cement, top[0].ProductID)
	assert.True(t, top[0].TotalRevenue.Equal(d("50")))

	_, err = f.ledger.TopSellingProducts(f.ctx, "05/01/2024", "", 5)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestUnsoldProducts(t *testing.T) {
	// GIVEN: gravel sold in January, bricks sold in March, timber never sold
	f := newFixture(t)
	gravel := f.product("Gravel", "50")
	bricks := f.product("Bricks", "50")
	timber := f.product("Timber", "50")
	for _, sale := range []struct {
		date    string
		product int64
	}{{"2024-01-10", gravel}, {"2024-03-10", bricks}} {
		_, err := f.ledger.AddSale(f.ctx, ledger.SaleInput{
			Date: sale.date, Subtotal: d("10"), Total: d("10"), Paid: d("10"),
		}, []ledger.SaleItemInput{item(sale.product, "1", "10", "0")})
		require.NoError(t, err)
	}

	// WHEN: asking what has not sold since February
	unsold, err := f.ledger.UnsoldProducts(f.ctx, "2024-02-01")
	require.NoError(t, err)

	// THEN: gravel (last sold in January) and timber (never) by name
	require.Len(t, unsold, 2)
	assert.Equal(t, gravel, unsold[0].ID)
	assert.Equal(t, "2024-01-10", unsold[0].LastSold)
	assert.Equal(t, timber, unsold[1].ID)
	assert.Empty(t, unsold[1].LastSold)

	// AND: without a date only the never-sold product is returned
	never, err := f.ledger.UnsoldProducts(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, never, 1)
	assert.Equal(t, timber, never[0].ID)
}

func TestInventoryCapital(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.AddProduct(f.ctx, ledger.Product{
		Name: "Rebar", Unit: "ton", PricePerUnit: d("1200"), PurchasePrice: d("1050"), StockQuantity: d("2.5"),
	})
	require.NoError(t, err)
	_, err = f.ledger.AddProduct(f.ctx, ledger.Product{
		Name: "Block", Unit: "piece", PricePerUnit: d("1.5"), PurchasePrice: d("1.1"), StockQuantity: d("3"),
	})
	require.NoError(t, err)

	capital, err := f.ledger.InventoryCapital(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, capital.ProductCount)
	assert.Equal(t, "2628.3", capital.PurchaseValue.String())
	assert.Equal(t, "3004.5", capital.SellValue.String())
}

func TestRegularClients(t *testing.T) {
	f := newFixture(t)
	f.client("Walk-in")
	for _, name := range []string{"Zaid", "Amal"} {
		_, err := f.ledger.AddClient(f.ctx, ledger.Client{Name: name, IsRegular: true})
		require.NoError(t, err)
	}

	regulars, err := f.ledger.RegularClients(f.ctx)
	require.NoError(t, err)
	require.Len(t, regulars, 2)
	assert.Equal(t, "Amal", regulars[0].Name)
	assert.Equal(t, "Zaid", regulars[1].Name)
}
