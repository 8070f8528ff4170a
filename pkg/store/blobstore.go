package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/kindlewave/blobcask/pkg/header"
	"github.com/kindlewave/blobcask/pkg/record"
)

const (
	logFileName  = "active.log"
	indexDirName = "index"
)

// BlobStore is the top-level append-only blob store: a single active log
// file guarded by a mutex for writers, and a pebble-backed Index mapping
// blob id to log location.
//
// The index is the sole source of truth for id -> location, and its
// durability is pebble's own WAL, not a secondary log-rescan on open. The
// wire format forces this: a Delete sub-record carries nothing but a flag
// byte, so a log scan alone can never recover which id a given tombstone
// targeted.
type BlobStore struct {
	config Config
	writer *LogWriter
	reader *LogReader
	index  *Index
	logger *slog.Logger
	mutex  sync.Mutex
	isOpen bool
}

// New constructs a BlobStore. Call Open before using it.
func New(config Config, logger *slog.Logger) *BlobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobStore{config: config, logger: logger}
}

// Open opens the log file and index.
func (s *BlobStore) Open() (Stats, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isOpen {
		return s.statsLocked()
	}

	logPath := filepath.Join(s.config.DataDir, logFileName)
	indexPath := filepath.Join(s.config.DataDir, indexDirName)

	writer, err := OpenLogWriter(logPath, s.config.FsyncInterval == 0, s.logger)
	if err != nil {
		return Stats{}, err
	}
	index, err := OpenIndex(indexPath)
	if err != nil {
		writer.Close()
		return Stats{}, err
	}

	s.writer = writer
	s.reader = NewLogReader(logPath)
	s.index = index
	s.isOpen = true

	return s.statsLocked()
}

// Put appends a new blob and returns the id the caller can use for Get and
// Delete. If id is empty, a fresh ksuid is generated.
func (s *BlobStore) Put(id string, props record.Properties, metadata, content []byte) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return "", ErrNotOpen
	}
	if id == "" {
		id = ksuid.New().String()
	}

	loc, err := s.writer.AppendPut(props, metadata, content)
	if err != nil {
		return "", err
	}
	if err := s.index.Put(id, loc); err != nil {
		return "", err
	}
	return id, nil
}

// PutStreaming is Put's streaming counterpart: content is read from src
// without being buffered here first.
func (s *BlobStore) PutStreaming(id string, props record.Properties, metadata []byte, contentSize int64, src io.Reader) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return "", ErrNotOpen
	}
	if id == "" {
		id = ksuid.New().String()
	}

	loc, err := s.writer.AppendPutStreaming(props, metadata, contentSize, src)
	if err != nil {
		return "", err
	}
	if err := s.index.Put(id, loc); err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves a blob's properties, metadata, and content.
func (s *BlobStore) Get(id string) (record.Properties, []byte, []byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return record.Properties{}, nil, nil, ErrNotOpen
	}

	loc, ok, err := s.index.Get(id)
	if err != nil {
		return record.Properties{}, nil, nil, err
	}
	if !ok {
		return record.Properties{}, nil, nil, ErrNotFound
	}

	res, err := s.reader.ReadAt(loc)
	if err != nil {
		logCorruption(s.logger, filepath.Join(s.config.DataDir, logFileName), loc.Offset, err)
		return record.Properties{}, nil, nil, err
	}
	if res.IsDelete {
		return record.Properties{}, nil, nil, ErrDeleted
	}
	return res.Put.Properties, res.Put.Metadata, res.Put.Content, nil
}

// Delete appends a tombstone for id and removes it from the index. The
// tombstone on disk records that a delete happened at all; the index entry
// removal is what makes id stop resolving.
func (s *BlobStore) Delete(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	if _, err := s.writer.AppendDelete(true); err != nil {
		return err
	}
	return s.index.Delete(id)
}

// Stats reports the store's current size.
func (s *BlobStore) Stats() (Stats, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.statsLocked()
}

func (s *BlobStore) statsLocked() (Stats, error) {
	if !s.isOpen {
		return Stats{}, ErrNotOpen
	}
	count, err := s.index.Count()
	if err != nil {
		return Stats{}, err
	}
	return Stats{BlobCount: count, LogSize: s.writer.Size()}, nil
}

// Explain returns the on-disk location backing id, for diagnostics.
func (s *BlobStore) Explain(id string) (Location, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isOpen {
		return Location{}, false, ErrNotOpen
	}
	return s.index.Get(id)
}

// Header parses and verifies id's message header without reading its
// sub-record bodies.
func (s *BlobStore) Header(id string) (*header.View, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isOpen {
		return nil, ErrNotOpen
	}
	loc, ok, err := s.index.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.reader.ReadHeaderAt(loc)
}

// ScanLog walks every message in the log file in write order, for
// diagnostics. Get and Header resolve ids through the index, never by
// scanning; see the BlobStore doc comment.
func (s *BlobStore) ScanLog(fn func(Location, *ReadResult) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isOpen {
		return ErrNotOpen
	}
	if err := s.writer.Sync(); err != nil {
		return err
	}
	return s.reader.Scan(fn)
}

// Close flushes and closes the log file and index.
func (s *BlobStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isOpen {
		return nil
	}
	s.isOpen = false

	writerErr := s.writer.Close()
	indexErr := s.index.Close()
	if writerErr != nil {
		return writerErr
	}
	return indexErr
}
