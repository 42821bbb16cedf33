/*
ledger.go - Engine entry point

PURPOSE:
  Ledger is the single entry point for every mutation. Each exported
  mutating method is one transaction boundary:

    validate input       (no store access)
    store.WithTx(...)    (all statements, rollback on any error)
    store.Persist(...)   (only after commit)

  Helpers such as reserve/restore (stock.go) and allocate/reverse
  (payments.go) run inside the caller's Tx and never commit.

SNAPSHOT FAILURES:
  When the commit succeeded but the snapshot could not be written, the
  method returns its normal result AND an error matching
  ErrSnapshotFailed. The data is committed; the durable copy is one
  snapshot behind until the next successful Persist.

SEE ALSO:
  - store.go: Store / Tx interfaces
  - store/sqlite: the SQLite implementation
*/
package ledger

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Ledger runs sale, payment and catalog operations against a Store.
type Ledger struct {
	Store  Store
	Logger *log.Logger
	// Now returns the current time. Settlement dates use it.
	Now func() time.Time
}

// NewLedger creates a ledger backed by store.
func NewLedger(store Store) *Ledger {
	return &Ledger{
		Store:  store,
		Logger: log.Default(),
		Now:    time.Now,
	}
}

func (l *Ledger) logf(format string, args ...any) {
	if l.Logger == nil {
		return
	}
	l.Logger.Printf("[Ledger] "+format, args...)
}

func (l *Ledger) today() string {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return now().Format(DateLayout)
}

// mutate runs fn in one transaction and persists a snapshot after commit.
func (l *Ledger) mutate(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	if err := l.Store.WithTx(ctx, fn); err != nil {
		return wrapOp(op, err)
	}
	return l.persist(ctx, op)
}

func (l *Ledger) persist(ctx context.Context, op string) error {
	if err := l.Store.Persist(ctx); err != nil {
		l.logf("snapshot after %s failed: %v", op, err)
		return fmt.Errorf("%s committed: %w: %v", op, ErrSnapshotFailed, err)
	}
	return nil
}

// Backup returns the serialized database.
func (l *Ledger) Backup(ctx context.Context) ([]byte, error) {
	data, err := l.Store.Backup(ctx)
	if err != nil {
		return nil, wrapOp("backup database", err)
	}
	return data, nil
}

// Restore replaces the live database with data and persists it.
func (l *Ledger) Restore(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return invalid("backup", "empty backup file")
	}
	if err := l.Store.Restore(ctx, data); err != nil {
		return wrapOp("restore database", err)
	}
	l.logf("database restored from backup (%d bytes)", len(data))
	return l.persist(ctx, "restore database")
}
