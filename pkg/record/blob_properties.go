package record

import (
	"fmt"
	"io"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/wire"
)

// KindBlobProperties names this sub-record kind for error attribution and
// dispatch-table lookups.
const KindBlobProperties = "BlobProperties"

// BlobPropertiesV1 is the only BlobProperties generation this package knows.
const BlobPropertiesV1 uint16 = 1

// BlobPropertiesSize returns the exact on-disk size of a BlobProperties
// sub-record carrying p: a 2-byte version tag, the properties payload, and
// an 8-byte CRC trailer.
func BlobPropertiesSize(p Properties) int {
	return 2 + DefaultPropertiesCodec.Size(p) + 8
}

// SerializeBlobProperties writes a BlobProperties sub-record into buf at
// offset 0: version, then the properties payload via DefaultPropertiesCodec,
// then a CRC-32 covering both.
func SerializeBlobProperties(buf []byte, p Properties) error {
	need := BlobPropertiesSize(p)
	if len(buf) < need {
		return formaterr.New(formaterr.IoError, KindBlobProperties, "output buffer smaller than record size")
	}
	w := wire.NewWriter(buf)
	if err := w.WriteU16BE(BlobPropertiesV1, KindBlobProperties); err != nil {
		return err
	}
	if err := DefaultPropertiesCodec.Write(w, p); err != nil {
		return err
	}
	return w.WriteU64BE(w.CRCValue(), KindBlobProperties)
}

var blobPropertiesVersions = versionTable[Properties]{
	BlobPropertiesV1: deserializeBlobPropertiesV1,
}

// DeserializeBlobProperties reads a BlobProperties sub-record from src,
// dispatching on its version tag.
func DeserializeBlobProperties(src io.Reader) (Properties, error) {
	r := wire.NewReader(src)
	return dispatch(r, KindBlobProperties, blobPropertiesVersions)
}

func deserializeBlobPropertiesV1(r *wire.Reader) (Properties, error) {
	p, err := DefaultPropertiesCodec.Read(r)
	if err != nil {
		return Properties{}, err
	}
	expected := r.CRCValue()
	actual, err := r.ReadU64BE(KindBlobProperties)
	if err != nil {
		return Properties{}, err
	}
	if actual != expected {
		return Properties{}, formaterr.New(formaterr.DataCorrupt, KindBlobProperties,
			fmt.Sprintf("crc mismatch: expected=0x%X actual=0x%X", expected, actual))
	}
	return p, nil
}
