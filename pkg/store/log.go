package store

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/kindlewave/blobcask/pkg/header"
	"github.com/kindlewave/blobcask/pkg/message"
	"github.com/kindlewave/blobcask/pkg/record"
)

// LogWriter appends put- and delete-messages to the active log file and
// reports where each one landed: a buffered append-only file, an fsync
// policy, and an offset counter that only ever moves forward.
type LogWriter struct {
	file            *os.File
	writer          *bufio.Writer
	mutex           sync.Mutex
	offset          int64
	fsyncEveryWrite bool
	logger          *slog.Logger
	path            string
}

// OpenLogWriter opens (creating if necessary) the log file at path,
// positioned for append. A nil logger falls back to slog.Default.
func OpenLogWriter(path string, fsyncEveryWrite bool, logger *slog.Logger) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		file.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogWriter{
		file:            file,
		writer:          bufio.NewWriterSize(file, 64*1024),
		offset:          stat.Size(),
		fsyncEveryWrite: fsyncEveryWrite,
		logger:          logger,
		path:            path,
	}, nil
}

// AppendPut buffers content in memory and appends the whole put-message in
// one write. Prefer AppendPutStreaming for blobs large enough that the
// in-memory copy matters.
func (w *LogWriter) AppendPut(props record.Properties, metadata, content []byte) (Location, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	buf, err := message.SerializePutMessage(message.PutMessage{Properties: props, Metadata: metadata, Content: content})
	if err != nil {
		return Location{}, err
	}
	return w.appendLocked(buf)
}

// AppendPutStreaming appends a put-message whose content streams from src
// without being buffered in this package first.
func (w *LogWriter) AppendPutStreaming(props record.Properties, metadata []byte, contentSize int64, src io.Reader) (Location, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	start := w.offset
	total, err := message.WritePutMessage(w.writer, props, metadata, contentSize, src)
	if err != nil {
		return Location{}, err
	}
	w.offset += total
	if err := w.maybeSync(); err != nil {
		return Location{}, err
	}
	logHeaderWrite(w.logger, w.path, start, message.PutHeaderFields(props, metadata, contentSize))
	return Location{Offset: start, Size: total}, nil
}

// AppendDelete appends a tombstone message carrying flag and returns its
// location.
func (w *LogWriter) AppendDelete(flag bool) (Location, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	buf, err := message.SerializeDeleteMessage(flag)
	if err != nil {
		return Location{}, err
	}
	return w.appendLocked(buf)
}

func (w *LogWriter) appendLocked(buf []byte) (Location, error) {
	start := w.offset
	n, err := w.writer.Write(buf)
	if err != nil {
		return Location{}, err
	}
	w.offset += int64(n)
	if err := w.maybeSync(); err != nil {
		return Location{}, err
	}
	if h, err := header.Parse(buf); err == nil {
		logHeaderWrite(w.logger, w.path, start, h.Fields())
	}
	return Location{Offset: start, Size: int64(n)}, nil
}

func (w *LogWriter) maybeSync() error {
	if !w.fsyncEveryWrite {
		return w.writer.Flush()
	}
	return w.sync()
}

func (w *LogWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Sync flushes and fsyncs the log file.
func (w *LogWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

// Size returns the current length of the log file.
func (w *LogWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Close flushes, fsyncs, and closes the log file.
func (w *LogWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if err := w.sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// LogReader provides random and sequential access to messages in the log
// file, re-opening the file for each read so it always sees data a
// concurrent LogWriter has flushed.
type LogReader struct {
	path string
}

// NewLogReader opens a reader over the log file at path.
func NewLogReader(path string) *LogReader {
	return &LogReader{path: path}
}

// ReadAt reads and fully parses the message at loc.
func (r *LogReader) ReadAt(loc Location) (*ReadResult, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(loc.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	return readMessage(io.LimitReader(file, loc.Size))
}

// ReadHeaderAt parses and verifies just the message header at loc, without
// reading any sub-record body. A caller that only wants total_size or the
// offsets pays for 38 bytes, not the blob content.
func (r *LogReader) ReadHeaderAt(loc Location) (*header.View, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(loc.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	return message.ReadHeader(file)
}

// ReadResult is the generic shape a read returns: the verified header,
// plus either a put-message body or a delete flag, never both.
type ReadResult struct {
	Header   *header.View
	Put      *message.PutMessage
	IsDelete bool
}

func readMessage(src io.Reader) (*ReadResult, error) {
	h, err := message.ReadHeader(src)
	if err != nil {
		return nil, err
	}
	if h.IsDeleteMessage() {
		if _, err := message.ReadDeleteBody(src, h); err != nil {
			return nil, err
		}
		return &ReadResult{Header: h, IsDelete: true}, nil
	}
	body, err := message.ReadPutBody(src, h)
	if err != nil {
		return nil, err
	}
	return &ReadResult{Header: h, Put: &body}, nil
}

// Scan walks every message in the log file from the start, calling fn with
// each message's location and parsed body. It stops at the first error fn
// returns, or the first unreadable message, on the assumption that a torn
// trailing write, not scattered corruption, is how a crash truncates the
// log. Scan is a diagnostic path; id lookups go through the index, never
// through a scan.
func (r *LogReader) Scan(fn func(loc Location, res *ReadResult) error) error {
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var offset int64
	for {
		res, n, err := readMessageCounting(br)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return nil // torn trailing write; stop scanning, not an error
		}
		loc := Location{Offset: offset, Size: n}
		offset += n
		if err := fn(loc, res); err != nil {
			return err
		}
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func readMessageCounting(r io.Reader) (*ReadResult, int64, error) {
	cr := &countingReader{r: r}
	res, err := readMessage(cr)
	return res, cr.n, err
}
