package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)

	_, err = f.Get(ctx, SnapshotKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.Put(ctx, SnapshotKey, []byte("v1")))
	require.NoError(t, f.Put(ctx, SnapshotKey, []byte("v2")))

	data, err := f.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	entries, err := os.ReadDir(f.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFile_RejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, f.Put(context.Background(), key, []byte("x")), key)
	}
}

func TestMemory_CopiesAndFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, SnapshotKey, buf))
	buf[0] = 'z'

	data, err := m.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
	assert.Equal(t, 1, m.Puts())

	m.FailPut = errors.New("disk full")
	assert.EqualError(t, m.Put(ctx, SnapshotKey, buf), "disk full")
	assert.Equal(t, 1, m.Puts())
}
