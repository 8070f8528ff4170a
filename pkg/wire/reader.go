// Package wire provides the framed stream primitives record and header
// codecs are built on: a Reader that feeds every consumed byte through a
// CRC-32 accumulator, and a symmetric Writer that does the same on the way
// out. Neither type interprets record semantics; they only know how to move
// big-endian integers and byte slices across the CRC boundary.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/kindlewave/blobcask/pkg/crc"
	"github.com/kindlewave/blobcask/pkg/formaterr"
)

// Reader wraps an underlying byte source. Every byte delivered to a caller
// through one of the typed Read methods is simultaneously fed to an internal
// CRC-32 accumulator. Construct a fresh Reader per sub-record: the CRC it
// reports is only ever a checksum of what has passed through that instance,
// never cumulative across sub-records sharing the same underlying stream.
type Reader struct {
	src io.Reader
	crc *crc.Accumulator
	buf [8]byte
}

// NewReader wraps src. The returned Reader's CRC accumulator starts at zero.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src, crc: crc.New()}
}

// CRCValue returns the accumulator's current value without consuming further
// bytes. Callers sample this after reading a sub-record's payload and before
// reading its trailing CRC field.
func (r *Reader) CRCValue() uint64 {
	return r.crc.Value()
}

func (r *Reader) readFull(p []byte, record string) error {
	if _, err := io.ReadFull(r.src, p); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = io.ErrUnexpectedEOF
		}
		return formaterr.Wrap(formaterr.IoError, record, "short read", err)
	}
	r.crc.Update(p)
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8(record string) (uint8, error) {
	if err := r.readFull(r.buf[:1], record); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadU16BE reads a big-endian uint16.
func (r *Reader) ReadU16BE(record string) (uint16, error) {
	if err := r.readFull(r.buf[:2], record); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadI32BE reads a big-endian int32.
func (r *Reader) ReadI32BE(record string) (int32, error) {
	if err := r.readFull(r.buf[:4], record); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(r.buf[:4])), nil
}

// ReadI64BE reads a big-endian int64.
func (r *Reader) ReadI64BE(record string) (int64, error) {
	if err := r.readFull(r.buf[:8], record); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(r.buf[:8])), nil
}

// ReadU64BE reads a big-endian uint64, the natural width of an on-disk CRC
// trailer field.
func (r *Reader) ReadU64BE(record string) (uint64, error) {
	if err := r.readFull(r.buf[:8], record); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(r.buf[:8]), nil
}

// ReadInto reads exactly len(p) bytes into the caller's own buffer, folding
// them into the CRC without an intermediate allocation. Sub-records that
// stream large payloads (Blob) use this instead of ReadExact.
func (r *Reader) ReadInto(p []byte, record string) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := r.readFull(p, record); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadExact reads exactly n bytes into a freshly allocated slice.
func (r *Reader) ReadExact(n int, record string) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	p := make([]byte, n)
	if err := r.readFull(p, record); err != nil {
		return nil, err
	}
	return p, nil
}
