/*
Package blob provides key/value byte stores for database snapshots.

PURPOSE:
  After every committed mutation the whole database is serialized and
  written under a fixed key. On startup the same key is read back; a
  missing key means "start with a fresh database".

IMPLEMENTATIONS:
  File:   one file per key inside a directory, atomic replace on Put
  Memory: map-backed, for tests and for running without durability

SEE ALSO:
  - store/sqlite/snapshot.go: produces and consumes the bytes
*/
package blob

import (
	"context"
	"errors"
)

// SnapshotKey is the fixed name the database snapshot is stored under.
const SnapshotKey = "ledger.db"

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("blob not found")

// Store reads and writes whole blobs by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
