package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation is the kind of write carried by a queued mutation.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// MutationEntry is one pending write intent that the remote authority has not
// confirmed yet. At most one entry exists per (EntityType, EntityID).
type MutationEntry struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Operation  Operation `json:"operation"`

	// Payload is the full desired post-mutation state, never a diff.
	Payload json.RawMessage `json:"payload,omitempty"`

	// BaseVersion is the remote version the intent was based on. Nil for
	// records that were never confirmed remotely.
	BaseVersion *int64 `json:"base_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`

	// Seq orders writes to the queue. Each enqueue gets a higher value, so a
	// pushed entry is told apart from the write that replaced it.
	Seq int64 `json:"seq,omitempty"`
}

// Key returns the queue key of the entry.
func (m MutationEntry) Key() string {
	return fmt.Sprintf("%s/%s", m.EntityType, m.EntityID)
}

// DeadLetter is a mutation that was taken out of the queue because it failed
// permanently or ran out of attempts.
type DeadLetter struct {
	MutationEntry

	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Mutation is the write contract offered to domain callers.
type Mutation struct {
	Operation Operation
	// ID may be empty on create; a new identifier is generated then.
	ID      string
	Payload json.RawMessage
}
