package record

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kindlewave/blobcask/pkg/crc"
	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/wire"
)

// KindBlob names this sub-record kind.
const KindBlob = "Blob"

// BlobV1 is the only Blob generation this package knows.
const BlobV1 uint16 = 1

// MaxBlobContentSize is the largest content length a Blob sub-record can
// carry: the size field is written big-endian but must still fit an int32,
// since a negative size has no meaning on the wire.
const MaxBlobContentSize = 1<<31 - 1

// BlobPrefixSize is the size, in bytes, of a Blob sub-record's version+size
// prefix, before content and the trailing CRC. SerializePartial's buffer
// must be at least this long.
const BlobPrefixSize = 2 + 8

// BlobSize returns the exact on-disk size of a Blob sub-record carrying
// contentSize bytes of content: version(2) + size(8) + content + crc(8).
func BlobSize(contentSize int64) int64 {
	return int64(BlobPrefixSize) + contentSize + 8
}

// SerializeBlob writes a whole Blob sub-record, content included, into buf
// at offset 0. Use this for small blobs; for large ones, prefer
// SerializePartial so content never passes through an intermediate buffer.
func SerializeBlob(buf []byte, content []byte) error {
	if int64(len(content)) > MaxBlobContentSize {
		return formaterr.New(formaterr.IoError, KindBlob, "content exceeds maximum representable size")
	}
	need := BlobSize(int64(len(content)))
	if int64(len(buf)) < need {
		return formaterr.New(formaterr.IoError, KindBlob, "output buffer smaller than record size")
	}
	w := wire.NewWriter(buf)
	if err := w.WriteU16BE(BlobV1, KindBlob); err != nil {
		return err
	}
	if err := w.WriteI64BE(int64(len(content)), KindBlob); err != nil {
		return err
	}
	if err := w.WriteBytes(content, KindBlob); err != nil {
		return err
	}
	return w.WriteU64BE(w.CRCValue(), KindBlob)
}

// PartialBlobWriter is the handle SerializePartial returns: it carries the
// CRC accumulator forward past the version+size prefix so a caller can keep
// feeding it content bytes as they stream to their own destination, without
// copying those bytes through this package.
type PartialBlobWriter struct {
	acc *crc.Accumulator
}

// SerializePartial writes only a Blob sub-record's version+size prefix into
// buf (which must be at least BlobPrefixSize bytes), leaving the caller to
// stream size bytes of content directly to its own destination and finish
// with FinishInto. This is the zero-copy path for large blobs: wrap the
// destination writer and the returned PartialBlobWriter's Accumulator in an
// io.MultiWriter and io.Copy content straight through both.
func SerializePartial(buf []byte, size int64) (*PartialBlobWriter, error) {
	if size < 0 || size > MaxBlobContentSize {
		return nil, formaterr.New(formaterr.IoError, KindBlob, "content size out of range")
	}
	if len(buf) < BlobPrefixSize {
		return nil, formaterr.New(formaterr.IoError, KindBlob, "output buffer smaller than prefix size")
	}
	binary.BigEndian.PutUint16(buf[0:2], BlobV1)
	binary.BigEndian.PutUint64(buf[2:10], uint64(size))
	acc := crc.New()
	acc.Update(buf[0:BlobPrefixSize])
	return &PartialBlobWriter{acc: acc}, nil
}

// Accumulator returns the running CRC accumulator. It implements io.Writer,
// so it can sit in an io.MultiWriter alongside the real content destination.
func (p *PartialBlobWriter) Accumulator() *crc.Accumulator {
	return p.acc
}

// FinishInto writes the trailing 8-byte CRC into buf (which must be at
// least 8 bytes), reflecting every byte fed to the accumulator so far -
// the prefix plus whatever content the caller streamed through it.
func (p *PartialBlobWriter) FinishInto(buf []byte) error {
	if len(buf) < 8 {
		return formaterr.New(formaterr.IoError, KindBlob, "output buffer smaller than crc trailer")
	}
	binary.BigEndian.PutUint64(buf[0:8], p.acc.Value())
	return nil
}

// BlobOutput is the deserialize-side counterpart: Size is known immediately
// after the prefix is read, and Content is a lazily-read stream that
// validates the trailing CRC only once fully consumed. Callers that want
// the content buffered up front should read Content to completion (e.g. via
// io.ReadAll) rather than reaching into the struct's internals.
type BlobOutput struct {
	Size    int64
	Content io.Reader
}

type blobContentReader struct {
	r         *wire.Reader
	remaining int64
	err       error
}

func (b *blobContentReader) Read(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.ReadInto(p, KindBlob)
	if err != nil {
		b.err = err
		return n, err
	}
	b.remaining -= int64(n)
	if b.remaining == 0 {
		expected := b.r.CRCValue()
		actual, err := b.r.ReadU64BE(KindBlob)
		if err != nil {
			b.err = err
			return n, err
		}
		if actual != expected {
			b.err = formaterr.New(formaterr.DataCorrupt, KindBlob,
				fmt.Sprintf("crc mismatch: expected=0x%X actual=0x%X", expected, actual))
			return n, b.err
		}
		b.err = io.EOF
	}
	return n, nil
}

var blobVersions = versionTable[*BlobOutput]{
	BlobV1: deserializeBlobV1,
}

// DeserializeBlob reads a Blob sub-record's version+size prefix from src and
// returns a BlobOutput whose Content streams the remaining bytes lazily,
// validating the trailing CRC as the last byte of content is consumed.
func DeserializeBlob(src io.Reader) (*BlobOutput, error) {
	r := wire.NewReader(src)
	return dispatch(r, KindBlob, blobVersions)
}

func deserializeBlobV1(r *wire.Reader) (*BlobOutput, error) {
	size, err := r.ReadI64BE(KindBlob)
	if err != nil {
		return nil, err
	}
	if size < 0 || size > MaxBlobContentSize {
		return nil, formaterr.New(formaterr.IoError, KindBlob, "declared content size exceeds maximum representable size")
	}
	return &BlobOutput{
		Size:    size,
		Content: &blobContentReader{r: r, remaining: size},
	}, nil
}
