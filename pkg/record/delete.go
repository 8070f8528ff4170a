package record

import (
	"fmt"
	"io"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/wire"
)

// KindDelete names this sub-record kind.
const KindDelete = "Delete"

// DeleteV1 is the only Delete generation this package knows.
const DeleteV1 uint16 = 1

// DeleteSize is the exact on-disk size of a Delete sub-record: version(2) +
// flag(1) + crc(8).
const DeleteSize = 2 + 1 + 8

// SerializeDelete writes a Delete sub-record into buf at offset 0. flag
// records the tombstone's deletion marker; every delete-message observed in
// practice sets it true, but the wire format carries the byte rather than
// assuming its value.
func SerializeDelete(buf []byte, flag bool) error {
	if len(buf) < DeleteSize {
		return formaterr.New(formaterr.IoError, KindDelete, "output buffer smaller than record size")
	}
	w := wire.NewWriter(buf)
	if err := w.WriteU16BE(DeleteV1, KindDelete); err != nil {
		return err
	}
	var b uint8
	if flag {
		b = 1
	}
	if err := w.WriteU8(b, KindDelete); err != nil {
		return err
	}
	return w.WriteU64BE(w.CRCValue(), KindDelete)
}

var deleteVersions = versionTable[bool]{
	DeleteV1: deserializeDeleteV1,
}

// DeserializeDelete reads a Delete sub-record from src, dispatching on its
// version tag.
func DeserializeDelete(src io.Reader) (bool, error) {
	r := wire.NewReader(src)
	return dispatch(r, KindDelete, deleteVersions)
}

func deserializeDeleteV1(r *wire.Reader) (bool, error) {
	flagByte, err := r.ReadU8(KindDelete)
	if err != nil {
		return false, err
	}
	expected := r.CRCValue()
	actual, err := r.ReadU64BE(KindDelete)
	if err != nil {
		return false, err
	}
	if actual != expected {
		return false, formaterr.New(formaterr.DataCorrupt, KindDelete,
			fmt.Sprintf("crc mismatch: expected=0x%X actual=0x%X", expected, actual))
	}
	if flagByte != 0 && flagByte != 1 {
		return false, formaterr.New(formaterr.DataCorrupt, KindDelete, "flag byte is neither 0 nor 1")
	}
	return flagByte == 1, nil
}
