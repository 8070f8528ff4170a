package store

import (
	"log/slog"

	"github.com/kindlewave/blobcask/pkg/header"
)

// logCorruption records a message that failed to parse when BlobStore.Get
// read it back from the log.
func logCorruption(logger *slog.Logger, path string, offset int64, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("blobcask: corrupt message encountered while reading the log",
		"log_path", path,
		"record_offset", offset,
		"error", err,
	)
}

// logHeaderWrite records the fields a just-written message's header
// carries, each offset under its own matching name.
func logHeaderWrite(logger *slog.Logger, path string, offset int64, f header.Fields) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("blobcask: appended message header",
		"log_path", path,
		"record_offset", offset,
		"total_size", f.TotalSize,
		"blob_properties_rel_off", f.BlobPropertiesRelOffset,
		"delete_rel_off", f.DeleteRelOffset,
		"user_metadata_rel_off", f.UserMetadataRelOffset,
		"blob_rel_off", f.BlobRelOffset,
	)
}
