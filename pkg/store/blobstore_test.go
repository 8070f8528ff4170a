package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/record"
)

func openTestStore(t *testing.T) *BlobStore {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "blobcask_store_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s := New(Config{DataDir: tmpDir, FsyncInterval: 0}, nil)
	_, err = s.Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBlobStorePutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{
		BlobSize:         5,
		CreationTimeMs:   1_700_000_000_000,
		ExpirationTimeMs: -1,
		ContentType:      "text/plain",
		ServiceID:        "svc",
		OwnerID:          "owner",
	}
	id, err := s.Put("", props, []byte("meta"), []byte("hello"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	gotProps, gotMeta, gotContent, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, props, gotProps)
	assert.Equal(t, []byte("meta"), gotMeta)
	assert.Equal(t, []byte("hello"), gotContent)
}

func TestBlobStorePutWithCallerSuppliedID(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("caller-id", props, nil, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "caller-id", id)
}

func TestBlobStorePutStreamingRoundTrip(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	content := bytes.Repeat([]byte{0x7F}, 8192)
	id, err := s.PutStreaming("", props, []byte("meta"), int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	_, _, gotContent, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, content, gotContent)
}

func TestBlobStoreGetMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t)

	_, _, _, err := s.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlobStoreDeleteThenGetReturnsNotFound(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("", props, nil, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))

	_, _, _, err = s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlobStoreStatsCountsLiveBlobs(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id1, err := s.Put("", props, nil, []byte("a"))
	require.NoError(t, err)
	_, err = s.Put("", props, nil, []byte("b"))
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.BlobCount)
	assert.Greater(t, stats.LogSize, int64(0))

	require.NoError(t, s.Delete(id1))
	stats, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.BlobCount)
}

func TestBlobStoreHeaderReadsWithoutBody(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("", props, []byte("meta"), []byte("content"))
	require.NoError(t, err)

	h, err := s.Header(id)
	require.NoError(t, err)
	assert.True(t, h.IsPutMessage())
}

func TestBlobStoreExplainReturnsLocation(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("", props, nil, []byte("x"))
	require.NoError(t, err)

	loc, ok, err := s.Explain(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), loc.Offset)
}

func TestBlobStoreOperationsFailBeforeOpen(t *testing.T) {
	s := New(Config{DataDir: t.TempDir(), FsyncInterval: 0}, nil)

	_, err := s.Put("", record.Properties{}, nil, nil)
	assert.ErrorIs(t, err, ErrNotOpen)

	_, _, _, err = s.Get("x")
	assert.ErrorIs(t, err, ErrNotOpen)

	err = s.Delete("x")
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = s.Stats()
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestBlobStoreOpenIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Open()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.BlobCount)
}

// TestBlobStoreGetLogsCorruption exercises the corruption-logging path
// Get takes when the index resolves to an on-disk location whose bytes no
// longer parse as a valid message.
func TestBlobStoreGetLogsCorruption(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("", props, nil, []byte("hello"))
	require.NoError(t, err)

	logPath := filepath.Join(s.config.DataDir, logFileName)
	require.NoError(t, s.writer.Sync())

	f, err := os.OpenFile(logPath, os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF, 0xFF}, 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, _, _, err = s.Get(id)
	require.Error(t, err)
	assert.True(t, formaterr.Is(err, formaterr.UnknownFormatVersion) || formaterr.Is(err, formaterr.DataCorrupt))
}

func TestBlobStoreScanLogSeesPutsAndTombstones(t *testing.T) {
	s := openTestStore(t)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("", props, nil, []byte("a"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(id))

	var shapes []string
	err = s.ScanLog(func(loc Location, res *ReadResult) error {
		if res.IsDelete {
			shapes = append(shapes, "delete")
		} else {
			shapes = append(shapes, "put")
		}
		assert.NotNil(t, res.Header)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"put", "delete"}, shapes)
}

func TestBlobStoreFsyncIntervalNonzeroStillDurable(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(Config{DataDir: tmpDir, FsyncInterval: time.Second}, nil)
	_, err := s.Open()
	require.NoError(t, err)

	props := record.Properties{ExpirationTimeMs: -1}
	id, err := s.Put("", props, nil, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2 := New(Config{DataDir: tmpDir, FsyncInterval: time.Second}, nil)
	_, err = s2.Open()
	require.NoError(t, err)
	defer s2.Close()

	_, _, content, err := s2.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), content)
}
