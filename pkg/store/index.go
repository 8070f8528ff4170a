package store

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// Index persists id -> Location lookups in a pebble database, so the key
// space survives a restart without rescanning the whole log. Its
// durability comes from pebble's own WAL, not from any log-rescan recovery
// path.
type Index struct {
	db *pebble.DB
}

// OpenIndex opens (creating if necessary) the pebble database at path.
func OpenIndex(path string) (*Index, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

func encodeLocation(loc Location) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], uint64(loc.Offset))
	binary.BigEndian.PutUint64(buf[8:16], uint64(loc.Size))
	return buf
}

func decodeLocation(buf []byte) Location {
	return Location{
		Offset: int64(binary.BigEndian.Uint64(buf[0:8])),
		Size:   int64(binary.BigEndian.Uint64(buf[8:16])),
	}
}

// Put records id's current message location, overwriting any prior entry.
func (idx *Index) Put(id string, loc Location) error {
	return idx.db.Set([]byte(id), encodeLocation(loc), pebble.NoSync)
}

// Get looks up id's message location.
func (idx *Index) Get(id string) (Location, bool, error) {
	val, closer, err := idx.db.Get([]byte(id))
	if err == pebble.ErrNotFound {
		return Location{}, false, nil
	}
	if err != nil {
		return Location{}, false, err
	}
	defer closer.Close()
	loc := decodeLocation(val)
	return loc, true, nil
}

// Delete removes id's entry from the index. BlobStore calls this after
// appending a tombstone message to the log, not instead of it. The
// tombstone does not name id, so the log alone cannot replay the deletion;
// the index entry's removal is what makes id unresolvable.
func (idx *Index) Delete(id string) error {
	return idx.db.Delete([]byte(id), pebble.NoSync)
}

// Count returns the number of keys currently indexed.
func (idx *Index) Count() (int64, error) {
	iter, err := idx.db.NewIter(nil)
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	var n int64
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}

// Sync flushes the index to stable storage.
func (idx *Index) Sync() error {
	return idx.db.Flush()
}

// Close closes the underlying pebble database.
func (idx *Index) Close() error {
	return idx.db.Close()
}
