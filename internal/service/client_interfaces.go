package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/broadcast"
	"github.com/MKhiriev/go-team-sync/models"
)

// SyncEngine owns the process-wide sync session. It is the only component
// that talks to the remote authority on behalf of queued writes.
type SyncEngine interface {
	// Sync runs one cycle: push the mutation queue, then pull every tracked
	// entity type. It never returns an error; failures become session state.
	// A trigger that arrives while a cycle is in flight returns
	// SyncResult{Started: false} without touching anything.
	Sync(ctx context.Context, trigger models.SyncTrigger) models.SyncResult

	// Status returns the current session status.
	Status() models.SyncStatus

	// Session returns a copy of the session.
	Session() models.SyncSession

	// LastSyncTime returns the start time of the last successful cycle, or
	// nil when no cycle has ever succeeded.
	LastSyncTime() *time.Time

	// UnsyncedCount returns the number of queued mutations.
	UnsyncedCount(ctx context.Context) (int, error)

	// Subscribe registers a status listener and returns its unsubscribe func.
	Subscribe(listener broadcast.Listener) (unsubscribe func())
}

// SyncJob drives the engine from its trigger sources: the periodic timer,
// connectivity restoration, manual refreshes and backoff retries.
type SyncJob interface {
	// Start launches the background loop. Any previously running loop is
	// stopped first. The loop exits when ctx is cancelled or Stop is called.
	Start(ctx context.Context)

	// Stop terminates the loop and blocks until it has exited. Safe to call
	// when the job is not running.
	Stop()

	// Refresh runs a manual cycle synchronously and returns its result.
	Refresh(ctx context.Context) models.SyncResult

	// Trigger asks the loop for an immediate cycle without waiting for it.
	Trigger(trigger models.SyncTrigger)
}

// DataService is the read/write contract offered to domain code. Writes land
// in the local store and the mutation queue; nothing here waits for the
// remote authority.
type DataService interface {
	// Write validates the mutation, applies it to the local cache and queues
	// it for the next push. It returns the resulting local record.
	Write(ctx context.Context, entityType string, mutation models.Mutation) (models.LocalRecord, error)

	// Read returns one record. With PreferRemote it tries the remote
	// authority first and falls back to the cache on any remote error.
	Read(ctx context.Context, entityType, id string, opts models.ReadOptions) (models.LocalRecord, error)

	// Query reads the local cache only.
	Query(ctx context.Context, entityType string, filter models.RecordFilter) ([]models.LocalRecord, error)
}

// StatusService exposes sync state to UI consumers.
type StatusService interface {
	GetSyncStatus() models.SyncStatus
	SubscribeSyncStatus(listener broadcast.Listener) (unsubscribe func())
	GetLastSyncTime() *time.Time
	GetUnsyncedCount(ctx context.Context) (int, error)

	// Snapshot assembles the status API body.
	Snapshot(ctx context.Context) (models.StatusResponse, error)
	Queue(ctx context.Context) (models.QueueResponse, error)
	DeadLetters(ctx context.Context) (models.DeadLettersResponse, error)

	// Requeue moves a dead letter back into the queue and re-applies its
	// intent to the local cache.
	Requeue(ctx context.Context, entityType, entityID string) (models.MutationEntry, error)

	BuildInfo() models.AppBuildInfo
}

// ConnectivityChecker reports whether the device is currently online.
type ConnectivityChecker interface {
	IsOnline() bool
}
