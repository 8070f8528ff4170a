package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kindlewave/blobcask/pkg/formaterr"
	"github.com/kindlewave/blobcask/pkg/header"
	"github.com/kindlewave/blobcask/pkg/record"
	"github.com/kindlewave/blobcask/pkg/store"
)

// BlobStore is the subset of *store.BlobStore the API depends on, so
// handler tests can substitute a go.uber.org/mock-generated fake.
//
//go:generate go run go.uber.org/mock/mockgen -destination=mock_blobstore_test.go -package=api github.com/kindlewave/blobcask/pkg/api BlobStore
type BlobStore interface {
	PutStreaming(id string, props record.Properties, metadata []byte, contentSize int64, src io.Reader) (string, error)
	Get(id string) (record.Properties, []byte, []byte, error)
	Delete(id string) error
	Stats() (store.Stats, error)
	Explain(id string) (store.Location, bool, error)
	Header(id string) (*header.View, error)
}

// Server holds the blobcaskd API's handler state.
type Server struct {
	store   BlobStore
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server.
func NewServer(store BlobStore, config ServerConfig, metrics *Metrics) *Server {
	return &Server{store: store, config: config, metrics: metrics}
}

// propertiesRequest is the JSON shape callers supply in the "properties"
// multipart part of handlePut; it mirrors record.Properties but owns its
// own JSON tags rather than adding API concerns to the wire-format type.
type propertiesRequest struct {
	ContentType      string `json:"content_type"`
	ServiceID        string `json:"service_id"`
	OwnerID          string `json:"owner_id"`
	Private          bool   `json:"private"`
	ExpirationTimeMs int64  `json:"expiration_time_ms"`
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handlePut godoc
//
//	@Summary		Store a blob
//	@Description	Store a blob's properties, user metadata, and content as a multipart request
//	@Tags			blobs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			properties	formData	string	true	"JSON-encoded blob properties"
//	@Param			metadata	formData	file	false	"User metadata bytes"
//	@Param			content		formData	file	true	"Blob content"
//	@Success		201			{object}	PutResponse
//	@Failure		400			{object}	APIResponse
//	@Failure		500			{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/api/v1/blobs [put]
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reader, err := r.MultipartReader()
	if err != nil {
		s.metrics.RecordStoreOperation("put", false, time.Since(start))
		sendError(w, "Expected multipart/form-data request", http.StatusBadRequest)
		return
	}

	var (
		props    record.Properties
		gotProps bool
		metadata []byte
	)

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.metrics.RecordStoreOperation("put", false, time.Since(start))
			sendError(w, "Failed to read multipart request", http.StatusBadRequest)
			return
		}

		switch part.FormName() {
		case "properties":
			var req propertiesRequest
			if err := json.NewDecoder(part).Decode(&req); err != nil {
				s.metrics.RecordStoreOperation("put", false, time.Since(start))
				sendError(w, "Invalid JSON in properties part", http.StatusBadRequest)
				return
			}
			props = record.Properties{
				CreationTimeMs:   time.Now().UnixMilli(),
				ExpirationTimeMs: req.ExpirationTimeMs,
				Private:          req.Private,
				ContentType:      req.ContentType,
				ServiceID:        req.ServiceID,
				OwnerID:          req.OwnerID,
			}
			if props.ExpirationTimeMs == 0 {
				props.ExpirationTimeMs = -1
			}
			gotProps = true
		case "metadata":
			metadata, err = io.ReadAll(part)
			if err != nil {
				s.metrics.RecordStoreOperation("put", false, time.Since(start))
				sendError(w, "Failed to read metadata part", http.StatusBadRequest)
				return
			}
		case "content":
			if !gotProps {
				s.metrics.RecordStoreOperation("put", false, time.Since(start))
				sendError(w, "The properties part must precede the content part", http.StatusBadRequest)
				return
			}
			// HTTP multipart parts don't declare their length up front, so
			// the content is buffered here to learn its size before handing
			// it to PutStreaming; PutStreaming itself still writes straight
			// through to the log without copying via the blob codec's own
			// buffer (see record.SerializePartial).
			content, err := io.ReadAll(part)
			if err != nil {
				s.metrics.RecordStoreOperation("put", false, time.Since(start))
				sendError(w, "Failed to read content part", http.StatusBadRequest)
				return
			}
			props.BlobSize = int64(len(content))
			id, err := s.store.PutStreaming("", props, metadata, int64(len(content)), bytes.NewReader(content))
			if err != nil {
				s.metrics.RecordStoreOperation("put", false, time.Since(start))
				sendError(w, fmt.Sprintf("Failed to store blob: %v", err), http.StatusInternalServerError)
				return
			}
			s.metrics.RecordStoreOperation("put", true, time.Since(start))
			w.WriteHeader(http.StatusCreated)
			sendSuccess(w, PutResponse{ID: id})
			return
		}
	}

	if !gotProps {
		s.metrics.RecordStoreOperation("put", false, time.Since(start))
		sendError(w, "A properties part is required", http.StatusBadRequest)
	}
}

// handleGet godoc
//
//	@Summary		Retrieve a blob
//	@Description	Stream a blob's content, with user metadata in X-Blob-Metadata
//	@Tags			blobs
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Blob ID"
//	@Success		200	{file}		byte
//	@Failure		404	{object}	APIResponse
//	@Failure		410	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/api/v1/blobs/{id} [get]
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if id == "" {
		s.metrics.RecordStoreOperation("get", false, time.Since(start))
		sendError(w, "Blob id is required", http.StatusBadRequest)
		return
	}

	props, metadata, content, err := s.store.Get(id)
	if err != nil {
		s.metrics.RecordStoreOperation("get", false, time.Since(start))
		s.recordCorruption(err)
		writeStoreError(w, err)
		return
	}

	s.metrics.RecordStoreOperation("get", true, time.Since(start))

	contentType := props.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if len(metadata) > 0 {
		w.Header().Set("X-Blob-Metadata", string(metadata))
	}
	_, _ = w.Write(content)
}

// handleDelete godoc
//
//	@Summary		Delete a blob
//	@Description	Write a delete-tombstone message for a blob
//	@Tags			blobs
//	@Produce		json
//	@Param			id	path		string	true	"Blob ID"
//	@Success		200	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/api/v1/blobs/{id} [delete]
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if id == "" {
		s.metrics.RecordStoreOperation("delete", false, time.Since(start))
		sendError(w, "Blob id is required", http.StatusBadRequest)
		return
	}

	if err := s.store.Delete(id); err != nil {
		s.metrics.RecordStoreOperation("delete", false, time.Since(start))
		writeStoreError(w, err)
		return
	}

	s.metrics.RecordStoreOperation("delete", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": "Blob deleted"})
}

// handleHeader godoc
//
//	@Summary		Inspect a blob's message header
//	@Description	Parse and verify just the message header, without reading the blob body
//	@Tags			blobs
//	@Produce		json
//	@Param			id	path		string	true	"Blob ID"
//	@Success		200	{object}	HeaderResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/api/v1/blobs/{id}/header [get]
func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		sendError(w, "Blob id is required", http.StatusBadRequest)
		return
	}

	h, err := s.store.Header(id)
	if err != nil {
		if err == store.ErrNotFound {
			sendError(w, "Blob not found", http.StatusNotFound)
			return
		}
		s.recordCorruption(err)
		sendError(w, fmt.Sprintf("Failed to read header: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, HeaderResponse{
		TotalSize:            h.TotalSize(),
		BlobPropertiesOffset: h.BlobPropertiesRelOffset(),
		DeleteOffset:         h.DeleteRelOffset(),
		UserMetadataOffset:   h.UserMetadataRelOffset(),
		BlobOffset:           h.BlobRelOffset(),
	})
}

// handleStats godoc
//
//	@Summary		Store statistics
//	@Description	Get the blob count and log size
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	store.Stats
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/api/v1/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to get stats: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.UpdateStoreStats(stats.BlobCount, stats.LogSize)
	sendSuccess(w, stats)
}

// startMetricsUpdater periodically refreshes the blob count / log size
// gauges so /metrics stays current between requests.
func (s *Server) startMetricsUpdater() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if stats, err := s.store.Stats(); err == nil {
			s.metrics.UpdateStoreStats(stats.BlobCount, stats.LogSize)
		}
	}
}

// recordCorruption bumps the corruption counter when a store read surfaced
// a corrupt record, labeled with the record kind the format error names.
func (s *Server) recordCorruption(err error) {
	var fe *formaterr.Error
	if errors.As(err, &fe) && fe.Kind == formaterr.DataCorrupt {
		s.metrics.RecordCorruptionEvent(fe.Record)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch err {
	case store.ErrNotFound:
		sendError(w, "Blob not found", http.StatusNotFound)
	case store.ErrDeleted:
		sendError(w, "Blob has been deleted", http.StatusGone)
	default:
		sendError(w, fmt.Sprintf("Store error: %v", err), http.StatusInternalServerError)
	}
}

