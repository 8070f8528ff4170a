// Package crc implements the streaming CRC-32 accumulator shared by every
// record codec in this module. It is the leaf dependency of pkg/wire and,
// through it, of pkg/record and pkg/header.
package crc

import "hash/crc32"

// Accumulator computes the standard IEEE 802.3 CRC-32 incrementally as bytes
// are observed, one or many at a time. The on-disk CRC fields are 8 bytes
// wide (room for a future wider checksum) but the value itself never exceeds
// 32 bits, so Value returns a uint64 with the upper 32 bits always zero.
//
// An Accumulator is not safe for concurrent use; each codec call constructs
// its own.
type Accumulator struct {
	h uint32
}

// New returns a fresh, zero-valued accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Update folds more bytes into the running checksum. Calling Update with one
// large slice or an equivalent sequence of smaller slices yields the same
// final Value.
func (a *Accumulator) Update(p []byte) {
	a.h = crc32.Update(a.h, crc32.IEEETable, p)
}

// Write implements io.Writer so an Accumulator can sit behind an io.MultiWriter
// or be driven by io.Copy. It never returns an error.
func (a *Accumulator) Write(p []byte) (int, error) {
	a.Update(p)
	return len(p), nil
}

// Value returns the checksum computed so far, widened to 64 bits for the
// on-disk trailer field.
func (a *Accumulator) Value() uint64 {
	return uint64(a.h)
}
