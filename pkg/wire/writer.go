package wire

import (
	"encoding/binary"

	"github.com/kindlewave/blobcask/pkg/crc"
	"github.com/kindlewave/blobcask/pkg/formaterr"
)

// Writer is the serialize-side counterpart of Reader: it writes big-endian
// primitives into a caller-supplied buffer at the writer's current position,
// feeding every written byte through a CRC-32 accumulator, and advances the
// position by exactly the number of bytes written. Construct a fresh Writer
// per sub-record for the same reason as Reader.
type Writer struct {
	buf []byte
	pos int
	crc *crc.Accumulator
}

// NewWriter wraps buf, starting at position 0.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf, crc: crc.New()}
}

// Position returns the writer's current offset into buf.
func (w *Writer) Position() int {
	return w.pos
}

// Remaining returns how many bytes are left in buf at the current position.
func (w *Writer) Remaining() int {
	return len(w.buf) - w.pos
}

// CRCValue returns the accumulator's current value without writing further
// bytes.
func (w *Writer) CRCValue() uint64 {
	return w.crc.Value()
}

func (w *Writer) advance(n int, record string) error {
	if w.Remaining() < n {
		return formaterr.New(formaterr.IoError, record, "output buffer too small")
	}
	w.crc.Update(w.buf[w.pos : w.pos+n])
	w.pos += n
	return nil
}

// WriteU8 writes one byte.
func (w *Writer) WriteU8(v uint8, record string) error {
	if err := ensure(w, 1, record); err != nil {
		return err
	}
	w.buf[w.pos] = v
	return w.advance(1, record)
}

// WriteU16BE writes a big-endian uint16.
func (w *Writer) WriteU16BE(v uint16, record string) error {
	if err := ensure(w, 2, record); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(w.buf[w.pos:w.pos+2], v)
	return w.advance(2, record)
}

// WriteI32BE writes a big-endian int32.
func (w *Writer) WriteI32BE(v int32, record string) error {
	if err := ensure(w, 4, record); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(w.buf[w.pos:w.pos+4], uint32(v))
	return w.advance(4, record)
}

// WriteI64BE writes a big-endian int64.
func (w *Writer) WriteI64BE(v int64, record string) error {
	if err := ensure(w, 8, record); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(w.buf[w.pos:w.pos+8], uint64(v))
	return w.advance(8, record)
}

// WriteU64BE writes a big-endian uint64, the natural width of an on-disk CRC
// trailer field.
func (w *Writer) WriteU64BE(v uint64, record string) error {
	if err := ensure(w, 8, record); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(w.buf[w.pos:w.pos+8], v)
	return w.advance(8, record)
}

// WriteBytes copies p into the buffer verbatim.
func (w *Writer) WriteBytes(p []byte, record string) error {
	if err := ensure(w, len(p), record); err != nil {
		return err
	}
	copy(w.buf[w.pos:w.pos+len(p)], p)
	return w.advance(len(p), record)
}

func ensure(w *Writer, n int, record string) error {
	if w.Remaining() < n {
		return formaterr.New(formaterr.IoError, record, "output buffer too small")
	}
	return nil
}
