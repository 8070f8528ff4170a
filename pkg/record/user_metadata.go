package record

import (
	"fmt"
	"io"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/wire"
)

// KindUserMetadata names this sub-record kind.
const KindUserMetadata = "UserMetadata"

// UserMetadataV1 is the only UserMetadata generation this package knows.
const UserMetadataV1 uint16 = 1

// maxContentLen is the largest length a length-prefixed i32 field can carry
// without overflowing into the sign bit.
const maxContentLen = 1<<31 - 1

// UserMetadataSize returns the exact on-disk size of a UserMetadata
// sub-record carrying content: version(2) + size(4) + content + crc(8).
func UserMetadataSize(content []byte) int {
	return 2 + 4 + len(content) + 8
}

// SerializeUserMetadata writes a UserMetadata sub-record into buf at offset
// 0.
func SerializeUserMetadata(buf []byte, content []byte) error {
	if len(content) > maxContentLen {
		return formaterr.New(formaterr.IoError, KindUserMetadata, "content exceeds maximum representable length")
	}
	need := UserMetadataSize(content)
	if len(buf) < need {
		return formaterr.New(formaterr.IoError, KindUserMetadata, "output buffer smaller than record size")
	}
	w := wire.NewWriter(buf)
	if err := w.WriteU16BE(UserMetadataV1, KindUserMetadata); err != nil {
		return err
	}
	if err := w.WriteI32BE(int32(len(content)), KindUserMetadata); err != nil {
		return err
	}
	if err := w.WriteBytes(content, KindUserMetadata); err != nil {
		return err
	}
	return w.WriteU64BE(w.CRCValue(), KindUserMetadata)
}

var userMetadataVersions = versionTable[[]byte]{
	UserMetadataV1: deserializeUserMetadataV1,
}

// DeserializeUserMetadata reads a UserMetadata sub-record from src,
// dispatching on its version tag.
func DeserializeUserMetadata(src io.Reader) ([]byte, error) {
	r := wire.NewReader(src)
	return dispatch(r, KindUserMetadata, userMetadataVersions)
}

func deserializeUserMetadataV1(r *wire.Reader) ([]byte, error) {
	size, err := r.ReadI32BE(KindUserMetadata)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, formaterr.New(formaterr.DataCorrupt, KindUserMetadata, "negative content length")
	}
	content, err := r.ReadExact(int(size), KindUserMetadata)
	if err != nil {
		return nil, err
	}
	expected := r.CRCValue()
	actual, err := r.ReadU64BE(KindUserMetadata)
	if err != nil {
		return nil, err
	}
	if actual != expected {
		return nil, formaterr.New(formaterr.DataCorrupt, KindUserMetadata,
			fmt.Sprintf("crc mismatch: expected=0x%X actual=0x%X", expected, actual))
	}
	return content, nil
}
