/*
store.go - Persistence interface between the engine and the database

PURPOSE:
  The engine treats the database as a transactional relational store.
  Every mutating engine method is the transaction boundary: it alone
  opens the transaction (WithTx), and only after a successful commit
  does it ask the store to persist a snapshot (Persist).

KEY INTERFACES:
  Tx:     statements available inside a transaction
  Reader: read-only queries (aggregates, listings, lookups)
  Store:  Reader + WithTx + Persist + catalog writes + backup/restore

SCOPED TRANSACTIONS:
  WithTx commits when fn returns nil and rolls back otherwise (including
  on panic). fn receives a transaction-scoped context; calling WithTx
  again with that context fails with ErrNestedTx. Tx itself has no
  WithTx method.

IMPLEMENTATIONS:
  - store/sqlite: SQLite via database/sql, snapshot via sqlite3_serialize

SEE ALSO:
  - stock.go, sales.go, payments.go: callers of Tx
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Tx is the set of statements the engine issues inside one transaction.
// Lookups return (nil, nil) when the row does not exist.
type Tx interface {
	// Products
	GetProduct(ctx context.Context, id int64) (*Product, error)
	SetStock(ctx context.Context, productID int64, quantity decimal.Decimal) error

	// Clients
	ClientExists(ctx context.Context, id int64) (bool, error)

	// Sales
	InsertSale(ctx context.Context, s Sale) (int64, error)
	GetSale(ctx context.Context, id int64) (*Sale, error)
	UpdateSale(ctx context.Context, s Sale) error
	SetSaleTotals(ctx context.Context, id int64, subtotal, total, remaining decimal.Decimal) error
	SetSaleBalance(ctx context.Context, id int64, paid, remaining decimal.Decimal) error
	DeleteSale(ctx context.Context, id int64) (int64, error)

	// OpenCreditSales returns the client's credit sales with remaining > 0, oldest first.
	OpenCreditSales(ctx context.Context, clientID int64) ([]Sale, error)
	// PaidCreditSales returns the client's credit sales with paid > 0, oldest first.
	PaidCreditSales(ctx context.Context, clientID int64) ([]Sale, error)
	// SalesByIDs returns the requested sales that exist, oldest first.
	SalesByIDs(ctx context.Context, ids []int64) ([]Sale, error)

	// Sale items
	InsertSaleItem(ctx context.Context, item SaleItem) (int64, error)
	GetSaleItem(ctx context.Context, id int64) (*SaleItem, error)
	ListSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	DeleteSaleItem(ctx context.Context, id int64) (int64, error)
	DeleteSaleItems(ctx context.Context, saleID int64) error

	// Payments
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id int64) (int64, error)

	// Allocations
	InsertAllocation(ctx context.Context, a PaymentAllocation) error
	ListAllocations(ctx context.Context, paymentID int64) ([]PaymentAllocation, error)
	DeleteAllocations(ctx context.Context, paymentID int64) error
	DeleteSaleAllocations(ctx context.Context, saleID int64) error
}

// Reader holds the read-only queries used outside transactions.
type Reader interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, search string) ([]Product, error)
	LowStockProducts(ctx context.Context) ([]Product, error)

	GetClient(ctx context.Context, id int64) (*Client, error)
	ListClients(ctx context.Context, search string) ([]Client, error)
	RegularClients(ctx context.Context) ([]Client, error)
	CountClientReferences(ctx context.Context, clientID int64) (int, error)

	GetSale(ctx context.Context, id int64) (*SaleSummary, error)
	ListSales(ctx context.Context, filter SaleFilter, limit, offset int) ([]SaleSummary, int, error)
	SalesByClient(ctx context.Context, clientID int64) ([]Sale, error)
	ListSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	AllSales(ctx context.Context) ([]Sale, error)
	AllProducts(ctx context.Context) ([]Product, error)

	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, from, to string) ([]Payment, error)
	PaymentsByClient(ctx context.Context, clientID int64) ([]Payment, error)
	ListAllocations(ctx context.Context, paymentID int64) ([]PaymentAllocation, error)

	ClientTotalDebt(ctx context.Context, clientID int64) (decimal.Decimal, error)
	ClientsWithCredit(ctx context.Context) ([]ClientDebt, error)
	TopSpendingClients(ctx context.Context, limit int) ([]ClientSpending, error)
	TopSellingProducts(ctx context.Context, from, to string, limit int) ([]ProductSales, error)
	UnsoldProducts(ctx context.Context, since string) ([]UnsoldProduct, error)
	Summary(ctx context.Context, from, to string) (Summary, error)
}

// CatalogWriter holds single-statement writes for products and clients.
type CatalogWriter interface {
	InsertProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, p Product) (int64, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)

	InsertClient(ctx context.Context, c Client) (int64, error)
	UpdateClient(ctx context.Context, c Client) (int64, error)
	DeleteClient(ctx context.Context, id int64) (int64, error)
}

// Store is everything the engine needs from the database.
type Store interface {
	Reader
	CatalogWriter

	// WithTx runs fn in one transaction: commit on nil, rollback otherwise.
	// fn must use the context it is given.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Persist writes a snapshot of the whole database to durable storage.
	Persist(ctx context.Context) error

	// Backup returns the serialized database.
	Backup(ctx context.Context) ([]byte, error)

	// Restore replaces the live database with a serialized one.
	Restore(ctx context.Context, data []byte) error
}
