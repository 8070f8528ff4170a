package record

import (
	"fmt"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/wire"
)

// versionTable maps a sub-record's on-disk version tag to the deserializer
// for that generation. Adding a new generation is additive: register another
// entry, never touch the ones before it.
type versionTable[T any] map[uint16]func(*wire.Reader) (T, error)

// dispatch reads the leading version tag through r, looks it up in table,
// and runs the matching deserializer. Every sub-record kind (BlobProperties,
// UserMetadata, Blob, Delete) goes through this same version-tag-first
// protocol, so the dispatch logic itself lives in one place.
func dispatch[T any](r *wire.Reader, kind string, table versionTable[T]) (T, error) {
	var zero T
	version, err := r.ReadU16BE(kind)
	if err != nil {
		return zero, err
	}
	fn, ok := table[version]
	if !ok {
		return zero, formaterr.New(formaterr.UnknownFormatVersion, kind, fmt.Sprintf("unrecognized %s version %d", kind, version))
	}
	return fn(r)
}
