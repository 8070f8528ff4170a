package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "blobcask_index_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	idx, err := OpenIndex(filepath.Join(tmpDir, "index"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexPutGet(t *testing.T) {
	idx := openTestIndex(t)

	loc := Location{Offset: 128, Size: 64}
	require.NoError(t, idx.Put("blob-1", loc))

	got, ok, err := idx.Get("blob-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, loc, got)
}

func TestIndexGetMissing(t *testing.T) {
	idx := openTestIndex(t)

	_, ok, err := idx.Get("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexDelete(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.Put("blob-1", Location{Offset: 0, Size: 10}))
	require.NoError(t, idx.Delete("blob-1"))

	_, ok, err := idx.Get("blob-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexCount(t *testing.T) {
	idx := openTestIndex(t)

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, idx.Put("a", Location{Offset: 0, Size: 1}))
	require.NoError(t, idx.Put("b", Location{Offset: 1, Size: 1}))

	n, err = idx.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, idx.Delete("a"))
	n, err = idx.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIndexPutOverwritesPriorLocation(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.Put("blob-1", Location{Offset: 0, Size: 10}))
	require.NoError(t, idx.Put("blob-1", Location{Offset: 99, Size: 5}))

	got, ok, err := idx.Get("blob-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Location{Offset: 99, Size: 5}, got)
}
