// Package header implements the message header codec: a fixed-width record
// of relative offsets linking the sub-records of one logical message,
// guarded by its own CRC and a set of cross-field shape invariants.
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/kindlewave/blobcask/pkg/crc"
	"github.com/kindlewave/blobcask/pkg/formaterr"
)

// Version1 is the only header generation this package currently knows.
const Version1 uint16 = 1

// Invalid is the sentinel value for an offset field that is not present.
const Invalid int32 = -1

// SizeV1 is the fixed on-disk size, in bytes, of a V1 header. The six named
// fields (version, total_size, and the four relative offsets) occupy 26
// bytes; a 4-byte reserved field, always zero in this generation, pads the
// pre-CRC prefix to 30 bytes, and the 8-byte CRC trailer brings the total
// to 38.
const SizeV1 = 38

const preCRCSize = SizeV1 - 8 // 30: the region the trailing CRC covers

const recordName = "Header"

// Fields holds the values a header carries, independent of their on-disk
// encoding. It is the argument to SerializeInto and the return shape of
// View's getters collected into a value. SerializeInto ignores Version and
// always writes Version1.
type Fields struct {
	Version                 uint16
	TotalSize               int64
	BlobPropertiesRelOffset int32
	DeleteRelOffset         int32
	UserMetadataRelOffset   int32
	BlobRelOffset           int32
}

func checkShape(f Fields) error {
	if f.TotalSize <= 0 {
		return formaterr.New(formaterr.HeaderConstraintError, recordName, "total_size must be > 0")
	}

	put := f.BlobPropertiesRelOffset > 0
	del := f.DeleteRelOffset > 0

	switch {
	case put && del:
		return formaterr.New(formaterr.HeaderConstraintError, recordName, "blob_properties and delete offsets cannot both be set")
	case put:
		if f.DeleteRelOffset != Invalid {
			return formaterr.New(formaterr.HeaderConstraintError, recordName, "put-message shape requires delete_rel_off == INVALID")
		}
		if f.UserMetadataRelOffset <= 0 {
			return formaterr.New(formaterr.HeaderConstraintError, recordName, "put-message shape requires user_metadata_rel_off > 0")
		}
		if f.BlobRelOffset <= 0 {
			return formaterr.New(formaterr.HeaderConstraintError, recordName, "put-message shape requires blob_rel_off > 0")
		}
	case del:
		if f.BlobPropertiesRelOffset != Invalid || f.UserMetadataRelOffset != Invalid || f.BlobRelOffset != Invalid {
			return formaterr.New(formaterr.HeaderConstraintError, recordName, "delete-message shape requires the other three offsets == INVALID")
		}
	default:
		return formaterr.New(formaterr.HeaderConstraintError, recordName, "header matches neither put-message nor delete-message shape")
	}
	return nil
}

// SerializeInto writes a V1 header into buf (which must be at least SizeV1
// bytes) after checking the cross-field shape invariants. The invariant
// check order is fixed: total_size first, then put-shape, then
// delete-shape.
func SerializeInto(buf []byte, f Fields) error {
	if len(buf) < SizeV1 {
		return formaterr.New(formaterr.IoError, recordName, "output buffer smaller than header size")
	}
	if err := checkShape(f); err != nil {
		return err
	}

	binary.BigEndian.PutUint16(buf[0:2], Version1)
	binary.BigEndian.PutUint64(buf[2:10], uint64(f.TotalSize))
	binary.BigEndian.PutUint32(buf[10:14], uint32(f.BlobPropertiesRelOffset))
	binary.BigEndian.PutUint32(buf[14:18], uint32(f.DeleteRelOffset))
	binary.BigEndian.PutUint32(buf[18:22], uint32(f.UserMetadataRelOffset))
	binary.BigEndian.PutUint32(buf[22:26], uint32(f.BlobRelOffset))
	binary.BigEndian.PutUint32(buf[26:30], 0) // reserved

	acc := crc.New()
	acc.Update(buf[0:preCRCSize])
	binary.BigEndian.PutUint64(buf[preCRCSize:SizeV1], acc.Value())

	return nil
}

// View is a non-copying view over a serialized header's bytes.
type View struct {
	raw []byte
}

// Parse returns a View over the header-sized prefix of buf without copying
// it, so later changes to buf are visible through the View. It does not
// validate anything; call Verify for that.
func Parse(buf []byte) (*View, error) {
	if len(buf) < SizeV1 {
		return nil, formaterr.New(formaterr.IoError, recordName, "input shorter than header size")
	}
	return &View{raw: buf[:SizeV1:SizeV1]}, nil
}

// Version returns the header's format generation.
func (v *View) Version() uint16 {
	return binary.BigEndian.Uint16(v.raw[0:2])
}

// TotalSize returns the declared payload size following the header.
func (v *View) TotalSize() int64 {
	return int64(binary.BigEndian.Uint64(v.raw[2:10]))
}

// BlobPropertiesRelOffset returns the BlobProperties sub-record's relative
// offset, or Invalid.
func (v *View) BlobPropertiesRelOffset() int32 {
	return int32(binary.BigEndian.Uint32(v.raw[10:14]))
}

// DeleteRelOffset returns the Delete sub-record's relative offset, or
// Invalid.
func (v *View) DeleteRelOffset() int32 {
	return int32(binary.BigEndian.Uint32(v.raw[14:18]))
}

// UserMetadataRelOffset returns the UserMetadata sub-record's relative
// offset, or Invalid.
func (v *View) UserMetadataRelOffset() int32 {
	return int32(binary.BigEndian.Uint32(v.raw[18:22]))
}

// BlobRelOffset returns the Blob sub-record's relative offset, or Invalid.
func (v *View) BlobRelOffset() int32 {
	return int32(binary.BigEndian.Uint32(v.raw[22:26]))
}

// CRC returns the header's own trailing checksum field.
func (v *View) CRC() uint64 {
	return binary.BigEndian.Uint64(v.raw[preCRCSize:SizeV1])
}

// Fields collects the view's getters into a value, for callers that want to
// pass the whole set around (e.g. re-serializing, or building a message).
func (v *View) Fields() Fields {
	return Fields{
		Version:                 v.Version(),
		TotalSize:               v.TotalSize(),
		BlobPropertiesRelOffset: v.BlobPropertiesRelOffset(),
		DeleteRelOffset:         v.DeleteRelOffset(),
		UserMetadataRelOffset:   v.UserMetadataRelOffset(),
		BlobRelOffset:           v.BlobRelOffset(),
	}
}

// IsPutMessage reports whether the header's shape is a put-message
// (BlobProperties + UserMetadata + Blob). Callers should call Verify first.
func (v *View) IsPutMessage() bool {
	return v.BlobPropertiesRelOffset() > 0
}

// IsDeleteMessage reports whether the header's shape is a delete-message.
// Callers should call Verify first.
func (v *View) IsDeleteMessage() bool {
	return v.DeleteRelOffset() > 0
}

// Verify first rejects any version other than Version1, then recomputes the
// header's CRC over bytes [0, SizeV1-8) and compares it against the stored
// trailer, then re-checks the cross-field shape invariants in the same fixed
// order as SerializeInto: total_size, then put-shape, then delete-shape.
func (v *View) Verify() error {
	if v.Version() != Version1 {
		return formaterr.New(formaterr.UnknownFormatVersion, recordName, "unrecognized header version")
	}

	acc := crc.New()
	acc.Update(v.raw[0:preCRCSize])
	if acc.Value() != v.CRC() {
		return formaterr.New(formaterr.DataCorrupt, recordName,
			fmt.Sprintf("crc mismatch: expected=0x%X actual=0x%X", acc.Value(), v.CRC()))
	}

	return checkShape(v.Fields())
}
