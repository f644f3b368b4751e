package models

import (
	"encoding/json"
	"time"
)

// RemoteRecord is a row as reported by the remote authority.
type RemoteRecord struct {
	EntityType string          `json:"entity_type"`
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
	Version    int64           `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Deleted marks a remote soft delete.
	Deleted bool `json:"deleted,omitempty"`
}

// CreateResult is what the remote authority returns for a confirmed create.
type CreateResult struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// ChangesResponse is the body of a "changed since" pull.
type ChangesResponse struct {
	Records []RemoteRecord `json:"records"`
	Length  int            `json:"length"`
}

// WriteRequest is the body of a remote create/update call.
type WriteRequest struct {
	ID              string          `json:"id,omitempty"`
	Payload         json.RawMessage `json:"payload"`
	ExpectedVersion *int64          `json:"expected_version,omitempty"`
	Hash            string          `json:"hash,omitempty"`
}

// VersionResponse is the body of a confirmed remote update.
type VersionResponse struct {
	Version int64 `json:"version"`
}
