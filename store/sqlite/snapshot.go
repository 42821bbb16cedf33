package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/warp/retail-ledger/ledger"
	"github.com/warp/retail-ledger/store/blob"
)

// =============================================================================
// SNAPSHOTS - sqlite3_serialize / sqlite3_deserialize on the single connection
// =============================================================================

func withSQLiteConn(ctx context.Context, db *sql.DB, fn func(c *sqlite3.SQLiteConn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		return fn(c)
	})
}

func serialize(ctx context.Context, db *sql.DB) ([]byte, error) {
	var data []byte
	err := withSQLiteConn(ctx, db, func(c *sqlite3.SQLiteConn) error {
		var err error
		data, err = c.Serialize("main")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize database: %w", err)
	}
	return data, nil
}

func deserialize(ctx context.Context, db *sql.DB, data []byte) error {
	err := withSQLiteConn(ctx, db, func(c *sqlite3.SQLiteConn) error {
		return c.Deserialize(data, "main")
	})
	if err != nil {
		return fmt.Errorf("failed to deserialize database: %w", err)
	}
	return nil
}

// loadSnapshot replaces the database with the stored snapshot, if any.
func loadSnapshot(ctx context.Context, db *sql.DB, store blob.Store) (bool, error) {
	data, err := store.Get(ctx, blob.SnapshotKey)
	if errors.Is(err, blob.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := deserialize(ctx, db, data); err != nil {
		return false, err
	}
	return true, nil
}

// Persist writes a snapshot of the whole database to the blob store.
// Without a blob store it is a no-op.
func (s *Store) Persist(ctx context.Context) error {
	if s.blob == nil {
		return nil
	}

	s.mu.RLock()
	data, err := serialize(ctx, s.db)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := s.blob.Put(ctx, blob.SnapshotKey, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Backup returns the serialized database.
func (s *Store) Backup(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return serialize(ctx, s.db)
}

// Restore replaces the live database with data and migrates it. When data
// is not a usable database the previous contents are put back.
func (s *Store) Restore(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := serialize(ctx, s.db)
	if err != nil {
		return err
	}
	if err := deserialize(ctx, s.db, data); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidBackup, err)
	}
	if err := s.checkRestored(ctx); err != nil {
		if rerr := deserialize(ctx, s.db, prev); rerr != nil {
			return fmt.Errorf("failed to put previous database back after %v: %w", err, rerr)
		}
		return err
	}
	return nil
}

func (s *Store) checkRestored(ctx context.Context) error {
	if err := migrateUp(s.db); err != nil {
		return fmt.Errorf("%w: restored database is not usable: %v", ledger.ErrInvalidBackup, err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&n); err != nil {
		return fmt.Errorf("%w: restored database is not usable: %v", ledger.ErrInvalidBackup, err)
	}
	return nil
}
