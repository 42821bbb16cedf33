package ledger_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-ledger/ledger"
	"github.com/warp/retail-ledger/store/blob"
	"github.com/warp/retail-ledger/store/sqlite"
)

// fixture is a ledger on an in-memory SQLite store with in-memory snapshots.
type fixture struct {
	t         *testing.T
	ctx       context.Context
	ledger    *ledger.Ledger
	store     *sqlite.Store
	snapshots *blob.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	snapshots := blob.NewMemory()
	store, err := sqlite.Open(ctx, sqlite.Config{Blob: snapshots, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	l := ledger.NewLedger(store)
	l.Logger = log.New(io.Discard, "", 0)
	l.Now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

	return &fixture{t: t, ctx: ctx, ledger: l, store: store, snapshots: snapshots}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) product(name, stock string) int64 {
	f.t.Helper()
	id, err := f.ledger.AddProduct(f.ctx, ledger.Product{
		Name: name, Unit: "unit", PricePerUnit: d("10"), PurchasePrice: d("8"),
		StockQuantity: d(stock), MinStockLevel: d("1"),
	})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) client(name string) int64 {
	f.t.Helper()
	id, err := f.ledger.AddClient(f.ctx, ledger.Client{Name: name})
	require.NoError(f.t, err)
	return id
}

// creditSale records a header-only credit sale of total for clientID.
func (f *fixture) creditSale(clientID int64, date, total string) int64 {
	f.t.Helper()
	id, err := f.ledger.AddSale(f.ctx, ledger.SaleInput{
		ClientID: &clientID, Date: date,
		Subtotal: d(total), Total: d(total), Paid: decimal.Zero, Remaining: d(total),
		IsCredit: true,
	}, nil)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) sale(id int64) *ledger.SaleSummary {
	f.t.Helper()
	s, err := f.ledger.GetSale(f.ctx, id)
	require.NoError(f.t, err)
	return s
}

func (f *fixture) stock(productID int64) decimal.Decimal {
	f.t.Helper()
	p, err := f.ledger.GetProduct(f.ctx, productID)
	require.NoError(f.t, err)
	return p.StockQuantity
}

// assertBalance checks paid/remaining and the remaining == total - paid invariant.
func (f *fixture) assertBalance(saleID int64, paid, remaining string) {
	f.t.Helper()
	s := f.sale(saleID)
	assert.True(f.t, s.Paid.Equal(d(paid)), "sale %d paid: want %s, got %s", saleID, paid, s.Paid)
	assert.True(f.t, s.Remaining.Equal(d(remaining)), "sale %d remaining: want %s, got %s", saleID, remaining, s.Remaining)
	assert.True(f.t, s.Remaining.Equal(s.Total.Sub(s.Paid)), "sale %d: remaining != total - paid", saleID)
}

func (f *fixture) assertNoViolations() {
	f.t.Helper()
	v, err := f.ledger.CheckInvariants(f.ctx)
	require.NoError(f.t, err)
	assert.Empty(f.t, v)
}

func TestMutation_PersistsSnapshot(t *testing.T) {
	f := newFixture(t)
	before := f.snapshots.Puts()

	f.client("Nadia")

	assert.Equal(t, before+1, f.snapshots.Puts())
	_, err := f.snapshots.Get(f.ctx, blob.SnapshotKey)
	assert.NoError(t, err)
}

func TestSnapshotFailure_CommittedButReported(t *testing.T) {
	// GIVEN: a blob store that rejects writes
	f := newFixture(t)
	clientID := f.client("Omar")
	f.snapshots.FailPut = errors.New("quota exceeded")

	// WHEN: adding a sale
	saleID, err := f.ledger.AddSale(f.ctx, ledger.SaleInput{
		ClientID: &clientID, Date: "2024-01-01",
		Subtotal: d("40"), Total: d("40"), Remaining: d("40"), IsCredit: true,
	}, nil)

	// THEN: the error says the snapshot failed, and the sale is committed
	require.ErrorIs(t, err, ledger.ErrSnapshotFailed)
	assert.NotZero(t, saleID)
	assert.True(t, f.sale(saleID).Total.Equal(d("40")))
}

func TestRestore_ReplacesDatabase(t *testing.T) {
	f := newFixture(t)
	f.client("Before backup")

	backup, err := f.ledger.Backup(f.ctx)
	require.NoError(t, err)

	f.client("After backup")
	require.NoError(t, f.ledger.Restore(f.ctx, backup))

	clients, err := f.ledger.ListClients(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Before backup", clients[0].Name)

	err = f.ledger.Restore(f.ctx, nil)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestCheckInvariants_ReportsBrokenRows(t *testing.T) {
	f := newFixture(t)
	clientID := f.client("Huda")
	saleID := f.creditSale(clientID, "2024-01-01", "100")

	// Write an inconsistent header directly; the engine never does this.
	err := f.store.WithTx(f.ctx, func(ctx context.Context, tx ledger.Tx) error {
		return tx.SetSaleBalance(ctx, saleID, d("10"), d("10"))
	})
	require.NoError(t, err)

	v, err := f.ledger.CheckInvariants(f.ctx)
	require.NoError(t, err)
	require.Len(t, v, 1)
	assert.Equal(t, ledger.ViolationRemaining, v[0].Kind)
	assert.Equal(t, saleID, v[0].EntityID)
}
