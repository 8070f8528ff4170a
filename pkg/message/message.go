// Package message composes and decomposes whole log messages: a header plus
// the sub-records its shape implies. It sits directly on top of pkg/header
// and pkg/record and knows nothing about where the bytes ultimately live;
// pkg/store owns that.
package message

import (
	"io"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/header"
	"github.com/kindlewave/blobcask/pkg/record"
)

const recordName = "Message"

// PutMessage is the logical content of a put-message: a blob's properties,
// its caller-supplied metadata, and its content.
type PutMessage struct {
	Properties record.Properties
	Metadata   []byte
	Content    []byte
}

// putOffsets lays out a put-message's sub-records: offsets are measured
// from the start of the message (header included), while total counts only
// the payload that follows the header, so the whole message occupies
// header.SizeV1 + total bytes.
func putOffsets(propsSize, metaSize int, blobSize int64) (bp, um, blob int32, total int64) {
	bp = int32(header.SizeV1)
	um = bp + int32(propsSize)
	blob = um + int32(metaSize)
	total = int64(blob) - header.SizeV1 + blobSize
	return
}

// PutHeaderFields computes the header.Fields a put-message carrying props,
// metadata, and a blob of contentSize would be serialized with, without
// serializing anything. Callers that already know they're about to write a
// put-message (e.g. pkg/store, for its own structured logging of the
// message it just wrote) use this instead of re-deriving the offset
// arithmetic themselves.
func PutHeaderFields(props record.Properties, metadata []byte, contentSize int64) header.Fields {
	propsSize := record.BlobPropertiesSize(props)
	metaSize := record.UserMetadataSize(metadata)
	blobSize := record.BlobSize(contentSize)
	bpOff, umOff, blobOff, total := putOffsets(propsSize, metaSize, blobSize)
	return header.Fields{
		TotalSize:               total,
		BlobPropertiesRelOffset: bpOff,
		DeleteRelOffset:         header.Invalid,
		UserMetadataRelOffset:   umOff,
		BlobRelOffset:           blobOff,
	}
}

// SerializePutMessage lays out a header followed by BlobProperties,
// UserMetadata, and Blob sub-records, in that order, and returns the whole
// message as one buffer. For blobs large enough that buffering the content
// is wasteful, use WritePutMessage instead.
func SerializePutMessage(m PutMessage) ([]byte, error) {
	propsSize := record.BlobPropertiesSize(m.Properties)
	metaSize := record.UserMetadataSize(m.Metadata)
	blobSize := record.BlobSize(int64(len(m.Content)))
	bpOff, umOff, blobOff, total := putOffsets(propsSize, metaSize, blobSize)

	buf := make([]byte, header.SizeV1+total)
	fields := header.Fields{
		TotalSize:               total,
		BlobPropertiesRelOffset: bpOff,
		DeleteRelOffset:         header.Invalid,
		UserMetadataRelOffset:   umOff,
		BlobRelOffset:           blobOff,
	}
	if err := header.SerializeInto(buf, fields); err != nil {
		return nil, err
	}
	if err := record.SerializeBlobProperties(buf[bpOff:], m.Properties); err != nil {
		return nil, err
	}
	if err := record.SerializeUserMetadata(buf[umOff:], m.Metadata); err != nil {
		return nil, err
	}
	if err := record.SerializeBlob(buf[blobOff:], m.Content); err != nil {
		return nil, err
	}
	return buf, nil
}

// WritePutMessage writes a put-message directly to dst. The header and the
// BlobProperties/UserMetadata sub-records are built in memory (they are
// small and bounded by metadata size), but the Blob sub-record's content
// streams from src straight to dst, through SerializePartial's zero-copy
// path, so a large blob's bytes never pass through an intermediate buffer
// in this package.
func WritePutMessage(dst io.Writer, props record.Properties, metadata []byte, contentSize int64, content io.Reader) (int64, error) {
	propsSize := record.BlobPropertiesSize(props)
	metaSize := record.UserMetadataSize(metadata)
	blobSize := record.BlobSize(contentSize)
	bpOff, umOff, blobOff, total := putOffsets(propsSize, metaSize, blobSize)

	head := make([]byte, int(blobOff))
	fields := header.Fields{
		TotalSize:               total,
		BlobPropertiesRelOffset: bpOff,
		DeleteRelOffset:         header.Invalid,
		UserMetadataRelOffset:   umOff,
		BlobRelOffset:           blobOff,
	}
	if err := header.SerializeInto(head, fields); err != nil {
		return 0, err
	}
	if err := record.SerializeBlobProperties(head[bpOff:], props); err != nil {
		return 0, err
	}
	if err := record.SerializeUserMetadata(head[umOff:], metadata); err != nil {
		return 0, err
	}
	if _, err := dst.Write(head); err != nil {
		return 0, formaterr.Wrap(formaterr.IoError, recordName, "writing header and properties", err)
	}

	prefix := make([]byte, record.BlobPrefixSize)
	pw, err := record.SerializePartial(prefix, contentSize)
	if err != nil {
		return 0, err
	}
	if _, err := dst.Write(prefix); err != nil {
		return 0, formaterr.Wrap(formaterr.IoError, recordName, "writing blob prefix", err)
	}

	mw := io.MultiWriter(dst, pw.Accumulator())
	if _, err := io.CopyN(mw, content, contentSize); err != nil {
		return 0, formaterr.Wrap(formaterr.IoError, recordName, "streaming blob content", err)
	}

	trailer := make([]byte, 8)
	if err := pw.FinishInto(trailer); err != nil {
		return 0, err
	}
	if _, err := dst.Write(trailer); err != nil {
		return 0, formaterr.Wrap(formaterr.IoError, recordName, "writing blob crc trailer", err)
	}
	return int64(header.SizeV1) + total, nil
}

// SerializeDeleteMessage lays out a header followed by a single Delete
// sub-record carrying flag. flag is the tombstone's deletion marker; it is
// threaded through rather than hardcoded so a future generation can use the
// same sub-record for an undelete or other state encoding.
func SerializeDeleteMessage(flag bool) ([]byte, error) {
	buf := make([]byte, header.SizeV1+record.DeleteSize)
	fields := header.Fields{
		TotalSize:               record.DeleteSize,
		BlobPropertiesRelOffset: header.Invalid,
		DeleteRelOffset:         int32(header.SizeV1),
		UserMetadataRelOffset:   header.Invalid,
		BlobRelOffset:           header.Invalid,
	}
	if err := header.SerializeInto(buf, fields); err != nil {
		return nil, err
	}
	if err := record.SerializeDelete(buf[header.SizeV1:], flag); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadHeader reads and verifies a message's header from src.
func ReadHeader(src io.Reader) (*header.View, error) {
	raw := make([]byte, header.SizeV1)
	if _, err := io.ReadFull(src, raw); err != nil {
		return nil, formaterr.Wrap(formaterr.IoError, recordName, "short header read", err)
	}
	v, err := header.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := v.Verify(); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadPutBody reads a put-message's three sub-records from src, in the
// order a header built by SerializePutMessage lays them out: BlobProperties,
// UserMetadata, Blob. Callers must have already consumed h's header bytes
// from src via ReadHeader before calling this.
func ReadPutBody(src io.Reader, h *header.View) (PutMessage, error) {
	if !h.IsPutMessage() {
		return PutMessage{}, formaterr.New(formaterr.HeaderConstraintError, recordName, "header is not a put-message")
	}
	props, err := record.DeserializeBlobProperties(src)
	if err != nil {
		return PutMessage{}, err
	}
	metadata, err := record.DeserializeUserMetadata(src)
	if err != nil {
		return PutMessage{}, err
	}
	blob, err := record.DeserializeBlob(src)
	if err != nil {
		return PutMessage{}, err
	}
	content, err := io.ReadAll(blob.Content)
	if err != nil {
		return PutMessage{}, err
	}
	return PutMessage{Properties: props, Metadata: metadata, Content: content}, nil
}

// ReadDeleteBody reads a delete-message's single sub-record from src.
// Callers must have already consumed h's header bytes from src via
// ReadHeader before calling this.
func ReadDeleteBody(src io.Reader, h *header.View) (bool, error) {
	if !h.IsDeleteMessage() {
		return false, formaterr.New(formaterr.HeaderConstraintError, recordName, "header is not a delete-message")
	}
	return record.DeserializeDelete(src)
}
