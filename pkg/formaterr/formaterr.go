// Package formaterr defines the error kinds produced by the blob message
// format codecs: corrupted checksums, unknown version tags, header
// constraint violations, and I/O failures. Every codec in pkg/crc, pkg/wire,
// pkg/record, pkg/header, and pkg/message returns one of these rather than
// an ad-hoc error, so callers can branch on Kind with errors.As.
package formaterr

import (
	"errors"
	"fmt"
)

// Kind identifies which class of format failure occurred.
type Kind int

const (
	// DataCorrupt means a CRC comparison failed, or a header's structural
	// invariants were violated after parse.
	DataCorrupt Kind = iota
	// UnknownFormatVersion means a record's leading version tag does not
	// match any registered generation.
	UnknownFormatVersion
	// HeaderConstraintError means the header's cross-field invariants were
	// violated, at serialize time (caller bug) or parse time (corrupt or
	// forged record).
	HeaderConstraintError
	// IoError means the underlying stream failed, was truncated, or a
	// declared size was out of range.
	IoError
)

func (k Kind) String() string {
	switch k {
	case DataCorrupt:
		return "DataCorrupt"
	case UnknownFormatVersion:
		return "UnknownFormatVersion"
	case HeaderConstraintError:
		return "HeaderConstraintError"
	case IoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the format layer's single error type. Record identifies the
// record kind involved (e.g. "BlobProperties", "Header") so a log line can
// name exactly what failed.
type Error struct {
	Kind   Kind
	Record string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Record, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Record, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a format error with no wrapped cause.
func New(kind Kind, record, msg string) *Error {
	return &Error{Kind: kind, Record: record, Msg: msg}
}

// Wrap builds a format error around an underlying cause (typically an I/O
// error from the stream source).
func Wrap(kind Kind, record, msg string, err error) *Error {
	return &Error{Kind: kind, Record: record, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind, unwrapping through the
// standard errors chain.
func Is(err error, kind Kind) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Kind == kind
}
