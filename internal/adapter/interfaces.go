// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the remote authority abstraction the sync engine
// pushes to and pulls from.
//
// The primary abstraction is [RemoteAuthority], which decouples the sync
// engine from the backend protocol. Two implementations ship with the
// package: an HTTP/REST one ([NewHTTPAuthority]) and a direct PostgreSQL one
// ([NewPostgresAuthority]). [NewRemoteAuthority] picks one from config.
//
// Transport and database failures are mapped to the sentinel values defined
// in errors.go so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrVersionConflict] for a lost optimistic lock,
// [ErrUnauthorized] for a rejected token).
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-team-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_authority_mock.go -package=mock

// RemoteAuthority is the system of record. Every method is a single remote
// call that may fail independently of any connectivity signal.
type RemoteAuthority interface {
	// FetchChangedSince returns every record of entityType changed after
	// since, remote soft deletes included. A nil since returns everything.
	FetchChangedSince(ctx context.Context, entityType string, since *time.Time) ([]models.RemoteRecord, error)

	// Fetch returns the current remote record, or (nil, nil) when the
	// remote has no record with that id.
	Fetch(ctx context.Context, entityType, id string) (*models.RemoteRecord, error)

	// Create inserts a record. The remote may assign a different id, which
	// is reported in the result.
	Create(ctx context.Context, entityType, id string, payload json.RawMessage) (models.CreateResult, error)

	// Update replaces the payload if the remote version still equals
	// expectedVersion and returns the new version. A moved version yields
	// a *ConflictError.
	Update(ctx context.Context, entityType, id string, payload json.RawMessage, expectedVersion int64) (int64, error)

	// Delete removes the record under the same optimistic lock as Update.
	Delete(ctx context.Context, entityType, id string, expectedVersion int64) error
}
