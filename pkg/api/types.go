package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PutResponse is handlePut's success payload.
type PutResponse struct {
	ID string `json:"id"`
}

// HeaderResponse is handleHeader's success payload: the parsed and
// verified message header fields, without reading the blob body.
type HeaderResponse struct {
	TotalSize            int64 `json:"total_size"`
	BlobPropertiesOffset int32 `json:"blob_properties_rel_off"`
	DeleteOffset         int32 `json:"delete_rel_off"`
	UserMetadataOffset   int32 `json:"user_metadata_rel_off"`
	BlobOffset           int32 `json:"blob_rel_off"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port    int
	APIKey  string
	DataDir string
}
