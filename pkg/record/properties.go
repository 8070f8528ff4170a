package record

import (
	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/wire"
)

// Properties is the concrete BlobProperties payload this module supplies.
// The BlobProperties sub-record codec (blob_properties.go) treats this
// block as opaque: it only calls the PropertiesCodec contract below, never
// reaches into these fields directly.
type Properties struct {
	BlobSize         int64
	CreationTimeMs   int64
	ExpirationTimeMs int64 // -1 means no expiration
	Private          bool
	ContentType      string
	ServiceID        string
	OwnerID          string
}

// PropertiesCodec is the contract a BlobProperties value serde satisfies:
// exact size, buffer write, stream read. The BlobProperties sub-record
// codec only ever goes through this interface, so a different properties
// layout can be swapped in without touching the version/CRC framing around
// it.
type PropertiesCodec interface {
	Size(p Properties) int
	Write(w *wire.Writer, p Properties) error
	Read(r *wire.Reader) (Properties, error)
}

// propertiesV1 is the default, self-delimiting properties layout: every
// variable-length field is length-prefixed, so Read never needs to know the
// BlobProperties sub-record's overall length in advance.
type propertiesV1 struct{}

// DefaultPropertiesCodec is the PropertiesCodec the BlobProperties
// sub-record functions (BlobPropertiesSize, SerializeBlobProperties,
// DeserializeBlobProperties) use for the properties block.
var DefaultPropertiesCodec PropertiesCodec = propertiesV1{}

const propertiesRecordName = "BlobProperties.Properties"

func (propertiesV1) Size(p Properties) int {
	return 8 + 8 + 8 + 1 + // blob_size, creation_time_ms, expiration_time_ms, private
		2 + len(p.ContentType) +
		2 + len(p.ServiceID) +
		2 + len(p.OwnerID)
}

func (propertiesV1) Write(w *wire.Writer, p Properties) error {
	if err := w.WriteI64BE(p.BlobSize, propertiesRecordName); err != nil {
		return err
	}
	if err := w.WriteI64BE(p.CreationTimeMs, propertiesRecordName); err != nil {
		return err
	}
	if err := w.WriteI64BE(p.ExpirationTimeMs, propertiesRecordName); err != nil {
		return err
	}
	private := uint8(0)
	if p.Private {
		private = 1
	}
	if err := w.WriteU8(private, propertiesRecordName); err != nil {
		return err
	}
	if err := writeLenPrefixedString(w, p.ContentType); err != nil {
		return err
	}
	if err := writeLenPrefixedString(w, p.ServiceID); err != nil {
		return err
	}
	return writeLenPrefixedString(w, p.OwnerID)
}

func writeLenPrefixedString(w *wire.Writer, s string) error {
	if err := w.WriteU16BE(uint16(len(s)), propertiesRecordName); err != nil {
		return err
	}
	return w.WriteBytes([]byte(s), propertiesRecordName)
}

func readLenPrefixedString(r *wire.Reader) (string, error) {
	n, err := r.ReadU16BE(propertiesRecordName)
	if err != nil {
		return "", err
	}
	b, err := r.ReadExact(int(n), propertiesRecordName)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (propertiesV1) Read(r *wire.Reader) (Properties, error) {
	var p Properties
	var err error

	if p.BlobSize, err = r.ReadI64BE(propertiesRecordName); err != nil {
		return Properties{}, err
	}
	if p.CreationTimeMs, err = r.ReadI64BE(propertiesRecordName); err != nil {
		return Properties{}, err
	}
	if p.ExpirationTimeMs, err = r.ReadI64BE(propertiesRecordName); err != nil {
		return Properties{}, err
	}
	private, err := r.ReadU8(propertiesRecordName)
	if err != nil {
		return Properties{}, err
	}
	p.Private = private == 1

	if p.ContentType, err = readLenPrefixedString(r); err != nil {
		return Properties{}, err
	}
	if p.ServiceID, err = readLenPrefixedString(r); err != nil {
		return Properties{}, err
	}
	if p.OwnerID, err = readLenPrefixedString(r); err != nil {
		return Properties{}, err
	}

	if p.BlobSize < 0 {
		return Properties{}, formaterr.New(formaterr.DataCorrupt, propertiesRecordName, "negative blob_size")
	}

	return p, nil
}
