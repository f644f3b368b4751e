package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-team-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalRecordRepository is the per-entity cache of remote records plus local
// provisional writes.
type LocalRecordRepository interface {
	// Get returns the cached record. found is false when the record is not
	// cached; an unpopulated entity type is not an error.
	Get(ctx context.Context, entityType, id string) (record models.LocalRecord, found bool, err error)
	// Query performs a fresh read of the cache for one entity type.
	Query(ctx context.Context, entityType string, filter models.RecordFilter) ([]models.LocalRecord, error)
	// Put upserts a record. With opts.Dirty=false it also clears the
	// tombstone and stores opts.RemoteVersion as the confirmed version.
	Put(ctx context.Context, entityType, id string, payload []byte, opts models.PutOptions) error
	// MarkDeleted sets tombstone and dirty.
	MarkDeleted(ctx context.Context, entityType, id string) error
	// Purge removes the record entirely.
	Purge(ctx context.Context, entityType, id string) error
	SyncStatusSnapshot(ctx context.Context) (models.SyncStatusSnapshot, error)
}

// MutationQueueRepository is the durable, deduplicated log of local writes not
// yet confirmed remotely, with a dead-letter side table.
type MutationQueueRepository interface {
	// Enqueue inserts the entry or replaces the pending one for the same
	// entity, resetting attempts and the last error.
	Enqueue(ctx context.Context, entry models.MutationEntry) error
	PeekAll(ctx context.Context) ([]models.MutationEntry, error)
	Get(ctx context.Context, entityType, entityID string) (entry models.MutationEntry, found bool, err error)
	Remove(ctx context.Context, entityType, entityID string) error
	// Settle removes entry only while it is still the pending intent for its
	// entity. removed is false when a newer write replaced it meanwhile.
	Settle(ctx context.Context, entry models.MutationEntry) (removed bool, err error)
	// Rebase points the pending entry at a newly confirmed remote version; a
	// pending create becomes an update.
	Rebase(ctx context.Context, entityType, entityID string, baseVersion int64) error
	// RecordFailure increments the attempt counter and returns its new value.
	RecordFailure(ctx context.Context, entityType, entityID string, cause error) (int, error)
	Count(ctx context.Context) (int, error)

	// DeadLetter moves the entry out of the queue in one transaction.
	DeadLetter(ctx context.Context, entry models.MutationEntry, reason string) error
	ListDeadLetters(ctx context.Context) ([]models.DeadLetter, error)
	// Requeue moves a dead letter back into the queue with attempts reset.
	Requeue(ctx context.Context, entityType, entityID string) (models.MutationEntry, error)
}

// SyncMetaRepository persists sync bookkeeping across restarts.
type SyncMetaRepository interface {
	LastSyncAt(ctx context.Context) (*time.Time, error)
	SetLastSyncAt(ctx context.Context, at time.Time) error
}
