package store

import "time"

// Location pins a blob's message to a byte range in the active log file.
type Location struct {
	Offset int64 // Byte offset of the message's header in the log file
	Size   int64 // Total message size, header through final CRC trailer
}

// Config holds configuration for a BlobStore.
type Config struct {
	DataDir       string        // Directory holding the log file and the pebble index
	FsyncInterval time.Duration // 0 means fsync after every write; any other value skips the per-write fsync (there is no timed fsync), so the log is fsynced only when it is scanned or closed
}

// Stats summarizes a BlobStore's current state.
type Stats struct {
	BlobCount int64
	LogSize   int64
}

// Errors returned by BlobStore.
var (
	ErrNotFound = &StoreError{"blob not found"}
	ErrDeleted  = &StoreError{"blob has been deleted"}
	ErrNotOpen  = &StoreError{"store is not open"}
)

// StoreError is a plain sentinel error for BlobStore-level failures that
// aren't on-disk format problems (those are formaterr.Error).
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
