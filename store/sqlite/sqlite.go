/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Keeps products, clients, sales, sale items, payments and payment
  allocations in one SQLite database. After every committed mutation the
  engine calls Persist, which serializes the whole database and writes it
  to a blob store under a fixed key.

INTERFACES IMPLEMENTED:
  ledger.Store: reads, catalog writes, WithTx, Persist, Backup, Restore
  ledger.Tx:    statements available inside WithTx (txStore)

KEY TABLES:
  products, clients:    catalog
  sales, sale_items:    sale headers and lines
  payments:             money received from clients
  payment_allocations:  how much of each payment landed on which sale

SINGLE CONNECTION:
  The pool is capped at one connection. An in-memory database lives and
  dies with its connection, and serialize/deserialize act on a specific
  connection, so every statement must reach the same one. A consequence:
  inside WithTx every statement goes through the *sql.Tx; touching s.db
  there would wait forever for the connection the transaction holds.

CONCURRENCY:
  sync.RWMutex as in the other stores: WithTx and writes take the write
  lock, reads take the read lock. Transactions do not nest (ErrNestedTx).

STARTUP:
  Open loads the snapshot from the blob store when one exists, otherwise
  starts empty; migrations then run in both cases (see migrate.go).

USAGE:
  snapshots, _ := blob.NewFile("./data")
  store, err := sqlite.Open(ctx, sqlite.Config{Blob: snapshots})
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  l := ledger.NewLedger(store)

SEE ALSO:
  - ledger/store.go: Interface definitions
  - snapshot.go: Persist / Backup / Restore
  - migrations/: versioned schema
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/retail-ledger/ledger"
	"github.com/warp/retail-ledger/store/blob"
)

// Config configures Open.
type Config struct {
	// Path is the database file. Empty means ":memory:".
	Path string
	// Blob receives a snapshot after every committed mutation and provides
	// the initial database on Open. Nil disables snapshots.
	Blob blob.Store
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Store implements ledger.Store using SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	blob   blob.Store
	logger *log.Logger
}

// Open opens the database, loads the stored snapshot if present and
// migrates the schema to the latest version.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, blob: cfg.Blob, logger: logger}

	if cfg.Blob != nil {
		loaded, err := loadSnapshot(ctx, db, cfg.Blob)
		if err != nil {
			db.Close()
			return nil, err
		}
		if loaded {
			logger.Printf("[Store] loaded snapshot %s", blob.SnapshotKey)
		} else {
			logger.Printf("[Store] no snapshot found, starting with a fresh database")
		}
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// New opens an in-memory store without snapshots.
func New() (*Store, error) {
	return Open(context.Background(), Config{})
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.Store.WithTx)
// =============================================================================

type txKey struct{}

// WithTx executes fn within a database transaction. fn receives a context
// marking the transaction; a WithTx call made with it fails with
// ledger.ErrNestedTx instead of deadlocking.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	if ctx.Value(txKey{}) == s {
		return ledger.ErrNestedTx
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txCtx := context.WithValue(ctx, txKey{}, s)
	if err := fn(txCtx, &txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore implements ledger.Tx on a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

var (
	_ ledger.Store = (*Store)(nil)
	_ ledger.Tx    = (*txStore)(nil)
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func exec(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insert(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// likePattern wraps search for a substring LIKE match.
func likePattern(search string) string {
	return "%" + search + "%"
}

// dateRange builds "col >= ? AND col <= ?" for the non-empty bounds.
func dateRange(col, from, to string) ([]string, []any) {
	var conds []string
	var args []any
	if from != "" {
		conds = append(conds, col+" >= ?")
		args = append(args, from)
	}
	if to != "" {
		conds = append(conds, col+" <= ?")
		args = append(args, to)
	}
	return conds, args
}
