package record

import (
	"bytes"
	"testing"

	"github.com/kindlewave/blobcask/pkg/formaterr"
)

func sampleProperties() Properties {
	return Properties{
		BlobSize:         4096,
		CreationTimeMs:   1_700_000_000_000,
		ExpirationTimeMs: -1,
		Private:          true,
		ContentType:      "application/octet-stream",
		ServiceID:        "svc-42",
		OwnerID:          "owner-7",
	}
}

func TestBlobPropertiesRoundTrip(t *testing.T) {
	cases := []Properties{
		sampleProperties(),
		{BlobSize: 0, CreationTimeMs: 0, ExpirationTimeMs: -1},
		{BlobSize: 10, CreationTimeMs: 5, ExpirationTimeMs: 6, Private: false, ContentType: "", ServiceID: "", OwnerID: ""},
	}

	for _, p := range cases {
		buf := make([]byte, BlobPropertiesSize(p))
		if err := SerializeBlobProperties(buf, p); err != nil {
			t.Fatalf("SerializeBlobProperties(%+v): %v", p, err)
		}
		got, err := DeserializeBlobProperties(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("DeserializeBlobProperties: %v", err)
		}
		if got != p {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
		}
	}
}

func TestBlobPropertiesSizeMatchesSerialized(t *testing.T) {
	p := sampleProperties()
	buf := make([]byte, BlobPropertiesSize(p))
	if err := SerializeBlobProperties(buf, p); err != nil {
		t.Fatalf("SerializeBlobProperties: %v", err)
	}
	if len(buf) != BlobPropertiesSize(p) {
		t.Fatalf("buffer length %d != BlobPropertiesSize %d", len(buf), BlobPropertiesSize(p))
	}
}

func TestBlobPropertiesDetectsBitFlip(t *testing.T) {
	p := sampleProperties()
	buf := make([]byte, BlobPropertiesSize(p))
	if err := SerializeBlobProperties(buf, p); err != nil {
		t.Fatalf("SerializeBlobProperties: %v", err)
	}

	for i := range buf {
		corrupt := make([]byte, len(buf))
		copy(corrupt, buf)
		corrupt[i] ^= 0x01
		_, err := DeserializeBlobProperties(bytes.NewReader(corrupt))
		if err == nil {
			t.Fatalf("byte %d: expected an error after bit flip, got nil", i)
		}
	}
}

func TestBlobPropertiesUnknownVersionRejected(t *testing.T) {
	p := sampleProperties()
	buf := make([]byte, BlobPropertiesSize(p))
	if err := SerializeBlobProperties(buf, p); err != nil {
		t.Fatalf("SerializeBlobProperties: %v", err)
	}
	buf[1] = 0x07 // corrupt the low byte of the version tag

	_, err := DeserializeBlobProperties(bytes.NewReader(buf))
	if !formaterr.Is(err, formaterr.UnknownFormatVersion) {
		t.Fatalf("expected UnknownFormatVersion, got %v", err)
	}
}

func TestBlobPropertiesNegativeBlobSizeRejected(t *testing.T) {
	p := sampleProperties()
	p.BlobSize = -1
	buf := make([]byte, BlobPropertiesSize(p))
	if err := SerializeBlobProperties(buf, p); err != nil {
		t.Fatalf("SerializeBlobProperties: %v", err)
	}
	_, err := DeserializeBlobProperties(bytes.NewReader(buf))
	if !formaterr.Is(err, formaterr.DataCorrupt) {
		t.Fatalf("expected DataCorrupt, got %v", err)
	}
}

func TestBlobPropertiesUndersizedBufferRejected(t *testing.T) {
	p := sampleProperties()
	buf := make([]byte, BlobPropertiesSize(p)-1)
	err := SerializeBlobProperties(buf, p)
	if !formaterr.Is(err, formaterr.IoError) {
		t.Fatalf("expected IoError, got %v", err)
	}
}
