package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-ledger/ledger"
	"github.com/warp/retail-ledger/store/blob"
)

func newTestStore(t *testing.T, snapshots blob.Store) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{Blob: snapshots})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOpen_CreatesLatestSchema(t *testing.T) {
	store := newTestStore(t, nil)

	cols, err := columns(store.db, "sales")
	require.NoError(t, err)
	assert.True(t, cols["delivery_price"])
	assert.True(t, cols["labor_cost"])

	ok, err := tableExists(store.db, "payment_allocations")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	id, err := store.InsertProduct(ctx, ledger.Product{Name: "Cement", Unit: "bag", StockQuantity: d("10")})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		require.NoError(t, tx.SetStock(ctx, id, d("3")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(d("10")), "stock change must be rolled back")
}

func TestWithTx_RejectsNesting(t *testing.T) {
	store := newTestStore(t, nil)

	err := store.WithTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		return store.WithTx(ctx, func(context.Context, ledger.Tx) error { return nil })
	})
	assert.ErrorIs(t, err, ledger.ErrNestedTx)
}

func TestSaleRoundTrip_DatesAndDecimals(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	clientID, err := store.InsertClient(ctx, ledger.Client{Name: "Ali", Phone: "0501"})
	require.NoError(t, err)

	var saleID int64
	err = store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		saleID, err = tx.InsertSale(ctx, ledger.Sale{
			ClientID: &clientID, Date: "2024-03-05",
			Subtotal: d("100.5"), Total: d("100.5"), Paid: d("0.1"), Remaining: d("100.4"),
			IsCredit: true,
		})
		return err
	})
	require.NoError(t, err)

	got, err := store.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-05", got.Date)
	assert.Equal(t, "Ali", got.ClientName)
	assert.True(t, got.Paid.Equal(d("0.1")))
	assert.True(t, got.Remaining.Equal(d("100.4")))
	assert.True(t, got.IsCredit)

	missing, err := store.GetSale(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPersist_SnapshotRoundTrip(t *testing.T) {
	// GIVEN: a store that snapshots into memory
	ctx := context.Background()
	snapshots := blob.NewMemory()
	store := newTestStore(t, snapshots)

	_, err := store.InsertClient(ctx, ledger.Client{Name: "Sara"})
	require.NoError(t, err)

	// WHEN: persisting and reopening from the snapshot
	require.NoError(t, store.Persist(ctx))
	reopened := newTestStore(t, snapshots)

	// THEN: the data is there
	clients, err := reopened.ListClients(ctx, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Sara", clients[0].Name)
}

func TestOpen_UpgradesLegacySnapshot(t *testing.T) {
	// GIVEN: a database with the predecessor schema and no migration table
	ctx := context.Background()
	legacy, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	legacy.SetMaxOpenConns(1)
	defer legacy.Close()

	_, err = legacy.Exec(`
		CREATE TABLE clients (client_id INTEGER PRIMARY KEY, name TEXT NOT NULL, phone TEXT,
			address TEXT, is_regular BOOLEAN DEFAULT 0, notes TEXT);
		CREATE TABLE sales (sale_id INTEGER PRIMARY KEY AUTOINCREMENT, client_id INTEGER,
			date DATE NOT NULL, subtotal REAL NOT NULL, sale_discount_amount REAL NOT NULL DEFAULT 0,
			total REAL NOT NULL, paid REAL NOT NULL, remaining REAL NOT NULL, is_credit BOOLEAN DEFAULT 0);
		CREATE TABLE payments (payment_id INTEGER PRIMARY KEY, client_id INTEGER NOT NULL,
			date DATE NOT NULL, amount REAL NOT NULL, notes TEXT);
		INSERT INTO clients (client_id, name) VALUES (1, 'Old client');
		INSERT INTO sales (client_id, date, subtotal, total, paid, remaining, is_credit)
			VALUES (1, '2023-01-01', 80, 80, 30, 50, 1);
		INSERT INTO payments (payment_id, client_id, date, amount) VALUES (7, 1, '2023-01-02', 30);`)
	require.NoError(t, err)

	data, err := serialize(ctx, legacy)
	require.NoError(t, err)
	snapshots := blob.NewMemory()
	require.NoError(t, snapshots.Put(ctx, blob.SnapshotKey, data))

	// WHEN: opening the store from that snapshot
	store := newTestStore(t, snapshots)

	// THEN: missing tables and columns are added and old rows survive
	sales, err := store.AllSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].DeliveryPrice.IsZero())
	assert.True(t, sales[0].LaborCost.IsZero())
	assert.True(t, sales[0].Remaining.Equal(d("50")))

	p, err := store.GetPayment(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.AllocationsTracked, "legacy payments have no recorded allocations")
}

func TestRestore_RejectsGarbageAndKeepsData(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	_, err := store.InsertClient(ctx, ledger.Client{Name: "Keep me"})
	require.NoError(t, err)

	err = store.Restore(ctx, []byte("definitely not a database"))
	assert.ErrorIs(t, err, ledger.ErrInvalidBackup)

	clients, err := store.ListClients(ctx, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Keep me", clients[0].Name)
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, nil)
	_, err := src.InsertProduct(ctx, ledger.Product{Name: "Sand", Unit: "m3", StockQuantity: d("4.5")})
	require.NoError(t, err)

	data, err := src.Backup(ctx)
	require.NoError(t, err)

	dst := newTestStore(t, nil)
	require.NoError(t, dst.Restore(ctx, data))

	products, err := dst.ListProducts(ctx, "san")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].StockQuantity.Equal(d("4.5")))
}

func TestGetProduct_MalformedTimestampIsAnError(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	// GIVEN: a product whose created_at is not a timestamp
	id, err := store.InsertProduct(ctx, ledger.Product{Name: "Gypsum", Unit: "bag"})
	require.NoError(t, err)
	_, err = store.db.ExecContext(ctx, "UPDATE products SET created_at = 'yesterday-ish' WHERE product_id = ?", id)
	require.NoError(t, err)

	// WHEN: reading it
	_, err = store.GetProduct(ctx, id)

	// THEN: the bad value is reported instead of becoming the zero time
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yesterday-ish")
}
