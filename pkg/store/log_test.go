package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindlewave/blobcask/pkg/record"
)

func sampleProps(t *testing.T) record.Properties {
	t.Helper()
	return record.Properties{
		BlobSize:         5,
		CreationTimeMs:   1_700_000_000_000,
		ExpirationTimeMs: -1,
		ContentType:      "text/plain",
		ServiceID:        "svc",
		OwnerID:          "owner",
	}
}

func TestOpenLogWriterCreatesFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "nested", "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.FileExists(t, path)
	assert.Equal(t, int64(0), w.Size())
}

func TestLogWriterAppendPutAndRead(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)
	defer w.Close()

	loc, err := w.AppendPut(sampleProps(t), []byte("meta"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), loc.Offset)
	assert.Equal(t, w.Size(), loc.Size)

	r := NewLogReader(path)
	res, err := r.ReadAt(loc)
	require.NoError(t, err)
	require.NotNil(t, res.Put)
	assert.False(t, res.IsDelete)
	assert.Equal(t, sampleProps(t), res.Put.Properties)
	assert.Equal(t, []byte("meta"), res.Put.Metadata)
	assert.Equal(t, []byte("hello"), res.Put.Content)
}

func TestLogWriterAppendPutStreamingMatchesAppendPut(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)
	defer w.Close()

	content := bytes.Repeat([]byte{0x42}, 4096)
	loc, err := w.AppendPutStreaming(sampleProps(t), []byte("meta"), int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	r := NewLogReader(path)
	res, err := r.ReadAt(loc)
	require.NoError(t, err)
	require.NotNil(t, res.Put)
	assert.Equal(t, content, res.Put.Content)
}

func TestLogWriterAppendDeleteRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)
	defer w.Close()

	loc, err := w.AppendDelete(true)
	require.NoError(t, err)

	r := NewLogReader(path)
	res, err := r.ReadAt(loc)
	require.NoError(t, err)
	assert.True(t, res.IsDelete)
}

func TestLogReaderHeaderAtDoesNotReadBody(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)
	defer w.Close()

	loc, err := w.AppendPut(sampleProps(t), []byte("meta"), []byte("hello"))
	require.NoError(t, err)

	r := NewLogReader(path)
	h, err := r.ReadHeaderAt(loc)
	require.NoError(t, err)
	assert.True(t, h.IsPutMessage())
}

func TestLogReaderScanVisitsAllMessagesInOrder(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)

	loc1, err := w.AppendPut(sampleProps(t), nil, []byte("one"))
	require.NoError(t, err)
	loc2, err := w.AppendDelete(true)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := NewLogReader(path)
	var seen []Location
	err = r.Scan(func(loc Location, res *ReadResult) error {
		seen = append(seen, loc)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, loc1, seen[0])
	assert.Equal(t, loc2, seen[1])
}

func TestLogReaderScanStopsAtTornTrailingWrite(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcask_log_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "active.log")
	w, err := OpenLogWriter(path, true, nil)
	require.NoError(t, err)

	_, err = w.AppendPut(sampleProps(t), nil, []byte("one"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x00, 0x01, 0x02}) // a torn, unparseable trailing write
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r := NewLogReader(path)
	var count int
	err = r.Scan(func(loc Location, res *ReadResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
