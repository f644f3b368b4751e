// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// LocalRecord is one cached entity instance held by the local store.
//
// A record with Dirty == false and Tombstone == false mirrors exactly the
// last state pulled from (or confirmed by) the remote authority.
type LocalRecord struct {
	// EntityType is the logical table the record belongs to (e.g. "players").
	EntityType string `json:"entity_type"`

	// ID is the entity identifier, unique within EntityType.
	ID string `json:"id"`

	// Payload holds the last known field values (local view) as JSON.
	Payload json.RawMessage `json:"payload"`

	// RemoteVersion is the last version confirmed by the remote authority.
	// Nil means the record has never been confirmed remotely.
	RemoteVersion *int64 `json:"remote_version,omitempty"`

	// Dirty is true when Payload diverges from the last confirmed remote state.
	Dirty bool `json:"dirty"`

	// Tombstone is true when the record was deleted locally and the delete
	// has not been confirmed yet.
	Tombstone bool `json:"tombstone"`

	// UpdatedAt is the local time of the last write to this record.
	UpdatedAt time.Time `json:"updated_at"`
}

// Confirmed reports whether the remote authority has ever acknowledged the
// record.
func (r LocalRecord) Confirmed() bool {
	return r.RemoteVersion != nil
}

// PutOptions controls how a local store upsert treats sync bookkeeping.
type PutOptions struct {
	// Dirty marks the record as diverged from the remote state. A clean put
	// also clears any tombstone.
	Dirty bool

	// RemoteVersion is stored on clean puts. It is ignored for dirty puts,
	// which keep whatever version the record was based on.
	RemoteVersion *int64
}

// RecordFilter narrows a local store query. The zero value returns every
// live (non-tombstoned) record of the entity type.
type RecordFilter struct {
	// IDs restricts the result to the listed identifiers.
	IDs []string

	// DirtyOnly returns only records with pending local changes.
	DirtyOnly bool

	// IncludeTombstones also returns records deleted locally.
	IncludeTombstones bool

	// Limit caps the number of rows read from storage. Zero means no limit.
	Limit uint64

	// Match is an optional in-process predicate applied after the rows are
	// read; records for which it returns false are dropped.
	Match func(LocalRecord) bool
}

// SyncStatusSnapshot is a read-only aggregate used by polling UI consumers.
type SyncStatusSnapshot struct {
	// UnsyncedRecords counts records that are dirty or tombstoned.
	UnsyncedRecords int `json:"unsynced_records"`
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}

// ReadOptions controls a single-record read through the data service.
type ReadOptions struct {
	// PreferRemote fetches the record from the remote authority first and
	// falls back to the local cache on any remote error.
	PreferRemote bool
}
