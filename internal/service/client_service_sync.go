package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/adapter"
	"github.com/MKhiriev/go-team-sync/internal/broadcast"
	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/metrics"
	"github.com/MKhiriev/go-team-sync/internal/resolver"
	"github.com/MKhiriev/go-team-sync/internal/store"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/internal/validators"
	"github.com/MKhiriev/go-team-sync/models"
)

// SyncEngineDeps are the collaborators of the sync engine. Records, Queue,
// Meta, Remote and Network are required.
type SyncEngineDeps struct {
	Records store.LocalRecordRepository
	Queue   store.MutationQueueRepository
	Meta    store.SyncMetaRepository
	Remote  adapter.RemoteAuthority
	Network ConnectivityChecker

	// Decoder validates pulled payloads. Defaults to the entity validator.
	Decoder validators.PayloadDecoder
	// Events receives status changes. Defaults to a fresh broadcaster.
	Events *broadcast.Broadcaster
	// Metrics may be nil.
	Metrics *metrics.SyncMetrics
	// LocalLock serialises local read-modify-write sequences with the data
	// service. Defaults to a private mutex.
	LocalLock *sync.Mutex
}

type syncEngine struct {
	records  store.LocalRecordRepository
	queue    store.MutationQueueRepository
	meta     store.SyncMetaRepository
	remote   adapter.RemoteAuthority
	network  ConnectivityChecker
	resolver *resolver.Resolver
	decoder  validators.PayloadDecoder
	events   *broadcast.Broadcaster
	metrics  *metrics.SyncMetrics
	local    *sync.Mutex

	trackedTypes []string
	maxAttempts  int
	now          func() time.Time
	logger       *logger.Logger

	inFlight atomic.Bool

	mu      sync.RWMutex
	session models.SyncSession
}

// confirmation is what the remote authority acknowledged for one entry.
type confirmation struct {
	id      string
	version int64
	deleted bool
}

// NewSyncEngine builds the engine and restores the persisted last sync time
// and queue depth into the initial idle session.
func NewSyncEngine(ctx context.Context, deps SyncEngineDeps, cfg config.ClientWorkers, log *logger.Logger) (SyncEngine, error) {
	if log == nil {
		log = logger.Nop()
	}
	if deps.Decoder == nil {
		deps.Decoder = validators.NewEntityValidator()
	}
	if deps.Events == nil {
		deps.Events = broadcast.New(log)
	}
	if deps.LocalLock == nil {
		deps.LocalLock = &sync.Mutex{}
	}

	tracked := cfg.TrackedTypes
	if len(tracked) == 0 {
		tracked = models.AllEntityTypes
	}
	for _, entityType := range tracked {
		if !models.IsKnownEntityType(entityType) {
			return nil, fmt.Errorf("%w: tracked type %q", ErrUnknownEntityType, entityType)
		}
	}

	e := &syncEngine{
		records:      deps.Records,
		queue:        deps.Queue,
		meta:         deps.Meta,
		remote:       deps.Remote,
		network:      deps.Network,
		resolver:     resolver.New(),
		decoder:      deps.Decoder,
		events:       deps.Events,
		metrics:      deps.Metrics,
		local:        deps.LocalLock,
		trackedTypes: append([]string(nil), tracked...),
		maxAttempts:  cfg.MaxAttempts,
		now:          time.Now,
		logger:       log,
		session:      models.SyncSession{Status: models.SyncStatusIdle},
	}

	lastSyncAt, err := e.meta.LastSyncAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore last sync time: %w", err)
	}
	e.session.LastSyncAt = lastSyncAt

	unsynced, err := e.queue.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count queued mutations: %w", err)
	}
	e.session.UnsyncedCount = unsynced
	e.metrics.SetUnsynced(unsynced)

	return e, nil
}

func (e *syncEngine) Sync(ctx context.Context, trigger models.SyncTrigger) models.SyncResult {
	if !e.inFlight.CompareAndSwap(false, true) {
		result := models.SyncResult{Status: e.Status()}
		e.metrics.ObserveCycle(trigger, result, 0)
		return result
	}
	defer e.inFlight.Store(false)

	ctx = utils.WithSyncTrigger(ctx, trigger)
	ctx = e.logger.With().Str("trigger", string(trigger)).Logger().WithContext(ctx)

	started := e.now()
	result := e.run(ctx, started)
	e.metrics.ObserveCycle(trigger, result, e.now().Sub(started))

	logger.FromContext(ctx).Info().
		Str("func", "syncEngine.Sync").
		Str("status", string(result.Status)).
		Bool("aborted", result.Aborted).
		Int("pushed", result.Pushed).
		Int("failed", result.Failed).
		Int("dead_lettered", result.DeadLettered).
		Int("discarded", len(result.Discarded)).
		Int("pulled", result.Pulled).
		Int("skipped", result.Skipped).
		Msg("sync cycle finished")

	return result
}

func (e *syncEngine) run(ctx context.Context, started time.Time) models.SyncResult {
	result := models.SyncResult{Started: true}

	if !e.network.IsOnline() {
		result.Aborted = true
		return e.finish(ctx, &result, nil, nil)
	}

	e.setSession(func(s *models.SyncSession) {
		s.Status = models.SyncStatusSyncing
	}, nil)

	if err := e.push(ctx, &result); err != nil {
		return e.fail(ctx, &result, err)
	}

	abortErr, err := e.pull(ctx, e.LastSyncTime(), &result)
	if err != nil {
		return e.fail(ctx, &result, err)
	}
	if abortErr != nil {
		result.Aborted = true
		return e.finish(ctx, &result, nil, abortErr)
	}

	if err = e.meta.SetLastSyncAt(ctx, started); err != nil {
		return e.fail(ctx, &result, fmt.Errorf("persist last sync time: %w", err))
	}

	return e.finish(ctx, &result, &started, nil)
}

// finish ends a cycle in idle. lastSync is nil for aborted cycles.
func (e *syncEngine) finish(ctx context.Context, result *models.SyncResult, lastSync *time.Time, abortErr error) models.SyncResult {
	unsynced := e.countQueue(ctx)

	e.setSession(func(s *models.SyncSession) {
		s.Status = models.SyncStatusIdle
		s.LastError = ""
		s.UnsyncedCount = unsynced
		if lastSync != nil {
			at := *lastSync
			s.LastSyncAt = &at
		}
	}, result.Discarded)

	if lastSync != nil {
		e.metrics.RecordLastSync(*lastSync)
	}
	if abortErr != nil {
		result.Err = abortErr.Error()
		logger.FromContext(ctx).Warn().Err(abortErr).
			Str("func", "syncEngine.finish").
			Msg("sync cycle aborted")
	}

	result.Status = models.SyncStatusIdle
	return *result
}

// fail ends a cycle in error. The queue is left as it is.
func (e *syncEngine) fail(ctx context.Context, result *models.SyncResult, err error) models.SyncResult {
	logger.FromContext(ctx).Err(err).
		Str("func", "syncEngine.fail").
		Msg("sync cycle failed")

	unsynced := e.countQueue(ctx)
	e.setSession(func(s *models.SyncSession) {
		s.Status = models.SyncStatusError
		s.LastError = err.Error()
		s.UnsyncedCount = unsynced
	}, result.Discarded)

	result.Status = models.SyncStatusError
	result.Err = err.Error()
	return *result
}

func (e *syncEngine) countQueue(ctx context.Context) int {
	count, err := e.queue.Count(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncEngine.countQueue").
			Msg("failed to count queued mutations")
		return e.Session().UnsyncedCount
	}
	e.metrics.SetUnsynced(count)
	return count
}

// setSession applies mutate under the session lock and publishes an event
// when the status changed.
func (e *syncEngine) setSession(mutate func(s *models.SyncSession), discarded []models.DiscardedMutation) {
	e.mu.Lock()
	previous := e.session.Status
	mutate(&e.session)
	current := e.session
	e.mu.Unlock()

	if previous == current.Status {
		return
	}

	e.events.Publish(models.SyncEvent{
		Status:    current.Status,
		Previous:  previous,
		At:        e.now(),
		Err:       current.LastError,
		Discarded: discarded,
	})
}

func (e *syncEngine) push(ctx context.Context, result *models.SyncResult) error {
	entries, err := e.queue.PeekAll(ctx)
	if err != nil {
		return fmt.Errorf("read mutation queue: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			// the pull that follows fails fast and aborts the cycle
			return nil
		}
		if err = e.pushEntry(ctx, entry, result); err != nil {
			return err
		}
	}

	return nil
}

func (e *syncEngine) pushEntry(ctx context.Context, entry models.MutationEntry, result *models.SyncResult) error {
	confirmed, err := e.send(ctx, entry, expectedVersion(entry))
	if err != nil {
		return e.handlePushError(ctx, entry, err, true, result)
	}
	return e.confirm(ctx, entry, confirmed, result)
}

// send performs the remote call for entry. A delete of a record the remote
// no longer has counts as confirmed.
func (e *syncEngine) send(ctx context.Context, entry models.MutationEntry, expected int64) (confirmation, error) {
	switch entry.Operation {
	case models.OperationCreate:
		created, err := e.remote.Create(ctx, entry.EntityType, entry.EntityID, entry.Payload)
		if err != nil {
			return confirmation{}, err
		}
		id := created.ID
		if id == "" {
			id = entry.EntityID
		}
		return confirmation{id: id, version: created.Version}, nil

	case models.OperationUpdate:
		version, err := e.remote.Update(ctx, entry.EntityType, entry.EntityID, entry.Payload, expected)
		if err != nil {
			return confirmation{}, err
		}
		return confirmation{id: entry.EntityID, version: version}, nil

	case models.OperationDelete:
		err := e.remote.Delete(ctx, entry.EntityType, entry.EntityID, expected)
		if err != nil && !errors.Is(err, adapter.ErrNotFound) {
			return confirmation{}, err
		}
		return confirmation{id: entry.EntityID, deleted: true}, nil

	default:
		return confirmation{}, fmt.Errorf("%w: %w: %q", adapter.ErrBadRequest, ErrInvalidOperation, entry.Operation)
	}
}

func (e *syncEngine) handlePushError(ctx context.Context, entry models.MutationEntry, err error, mayResolve bool, result *models.SyncResult) error {
	failure := classifyPushError(entry, err)

	logger.FromContext(ctx).Debug().Err(err).
		Str("func", "syncEngine.handlePushError").
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Str("operation", string(entry.Operation)).
		Stringer("failure", failure).
		Msg("push failed")

	switch failure {
	case failureFatal:
		return fmt.Errorf("push %s: %w", entry.Key(), err)
	case failureConflict:
		if mayResolve {
			return e.resolveConflict(ctx, entry, err, result)
		}
		return e.recordFailure(ctx, entry, err, result)
	case failurePermanent:
		return e.deadLetter(ctx, entry, err, result)
	default:
		return e.recordFailure(ctx, entry, err, result)
	}
}

// confirm settles a pushed entry and writes the confirmed state locally. A
// newer local write that replaced the entry meanwhile keeps its dirty
// record and is rebased onto the confirmed version.
func (e *syncEngine) confirm(ctx context.Context, entry models.MutationEntry, confirmed confirmation, result *models.SyncResult) error {
	e.local.Lock()
	defer e.local.Unlock()

	removed, err := e.queue.Settle(ctx, entry)
	if err != nil {
		return err
	}
	result.Pushed++

	logger.FromContext(ctx).Debug().
		Str("func", "syncEngine.confirm").
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Str("operation", string(entry.Operation)).
		Int64("version", confirmed.version).
		Bool("superseded", !removed).
		Msg("mutation confirmed")

	if confirmed.deleted {
		if !removed {
			return nil
		}
		return e.records.Purge(ctx, entry.EntityType, entry.EntityID)
	}

	if !removed {
		return e.carryOver(ctx, entry, confirmed)
	}

	if confirmed.id != entry.EntityID {
		payload, err := withEntityID(entry.Payload, confirmed.id)
		if err != nil {
			return err
		}
		if err = e.records.Purge(ctx, entry.EntityType, entry.EntityID); err != nil {
			return err
		}
		return e.records.Put(ctx, entry.EntityType, confirmed.id, payload, models.PutOptions{RemoteVersion: models.Int64Ptr(confirmed.version)})
	}

	return e.records.Put(ctx, entry.EntityType, entry.EntityID, entry.Payload, models.PutOptions{RemoteVersion: models.Int64Ptr(confirmed.version)})
}

// carryOver moves the intent that replaced a confirmed entry onto the
// confirmed remote state. An intent that was folded away entirely means the
// record was created and then deleted locally while the create was in flight.
func (e *syncEngine) carryOver(ctx context.Context, entry models.MutationEntry, confirmed confirmation) error {
	pending, found, err := e.queue.Get(ctx, entry.EntityType, entry.EntityID)
	if err != nil {
		return err
	}

	if !found {
		return e.queue.Enqueue(ctx, models.MutationEntry{
			EntityType:  entry.EntityType,
			EntityID:    confirmed.id,
			Operation:   models.OperationDelete,
			BaseVersion: models.Int64Ptr(confirmed.version),
			CreatedAt:   e.now(),
		})
	}

	if confirmed.id == entry.EntityID {
		return e.queue.Rebase(ctx, entry.EntityType, entry.EntityID, confirmed.version)
	}

	// the remote assigned another id: move the pending intent and its record
	if err = e.queue.Remove(ctx, entry.EntityType, entry.EntityID); err != nil {
		return err
	}
	if err = e.records.Purge(ctx, entry.EntityType, entry.EntityID); err != nil {
		return err
	}

	moved := models.MutationEntry{
		EntityType:  entry.EntityType,
		EntityID:    confirmed.id,
		Operation:   pending.Operation,
		BaseVersion: models.Int64Ptr(confirmed.version),
		CreatedAt:   pending.CreatedAt,
	}
	if moved.Operation == models.OperationCreate {
		moved.Operation = models.OperationUpdate
	}

	if moved.Operation != models.OperationDelete {
		if moved.Payload, err = withEntityID(pending.Payload, confirmed.id); err != nil {
			return err
		}
		version := models.Int64Ptr(confirmed.version)
		if err = e.records.Put(ctx, entry.EntityType, confirmed.id, moved.Payload, models.PutOptions{RemoteVersion: version}); err != nil {
			return err
		}
		if err = e.records.Put(ctx, entry.EntityType, confirmed.id, moved.Payload, models.PutOptions{Dirty: true}); err != nil {
			return err
		}
	}

	return e.queue.Enqueue(ctx, moved)
}

func (e *syncEngine) resolveConflict(ctx context.Context, entry models.MutationEntry, cause error, result *models.SyncResult) error {
	remote, err := e.remoteState(ctx, entry, cause)
	if err != nil {
		return e.handlePushError(ctx, entry, err, false, result)
	}

	resolution := e.resolver.Resolve(entry, remote)

	logger.FromContext(ctx).Info().
		Str("func", "syncEngine.resolveConflict").
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Str("operation", string(entry.Operation)).
		Stringer("decision", resolution.Decision).
		Msg("conflict resolved")

	if resolution.Decision == resolver.RemoteWins {
		return e.adoptRemote(ctx, entry, remote, resolution.Discarded, result)
	}

	live := remote != nil && !remote.Deleted
	if entry.Operation == models.OperationDelete && !live {
		return e.confirm(ctx, entry, confirmation{id: entry.EntityID, deleted: true}, result)
	}

	var expected int64
	if live {
		expected = remote.Version
	}

	confirmed, err := e.send(ctx, entry, expected)
	if err != nil {
		return e.handlePushError(ctx, entry, err, false, result)
	}
	return e.confirm(ctx, entry, confirmed, result)
}

// remoteState returns the remote record behind a conflict, taking it from
// the error when the adapter attached it.
func (e *syncEngine) remoteState(ctx context.Context, entry models.MutationEntry, cause error) (*models.RemoteRecord, error) {
	if errors.Is(cause, adapter.ErrNotFound) {
		return nil, nil
	}
	if conflict, ok := adapter.IsConflict(cause); ok && conflict.Remote != nil {
		return conflict.Remote, nil
	}
	return e.remote.Fetch(ctx, entry.EntityType, entry.EntityID)
}

// adoptRemote drops entry in favour of the remote state.
func (e *syncEngine) adoptRemote(ctx context.Context, entry models.MutationEntry, remote *models.RemoteRecord, discarded *models.DiscardedMutation, result *models.SyncResult) error {
	if err := e.checkRemote(ctx, entry.EntityType, entry.EntityID, remote); err != nil {
		return err
	}

	e.local.Lock()
	defer e.local.Unlock()

	removed, err := e.queue.Settle(ctx, entry)
	if err != nil {
		return err
	}
	if discarded != nil {
		result.Discarded = append(result.Discarded, *discarded)
		logger.FromContext(ctx).Warn().
			Str("func", "syncEngine.adoptRemote").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Str("reason", discarded.Reason).
			Msg("local change discarded")
	}
	if !removed {
		return nil
	}

	return e.revert(ctx, entry.EntityType, entry.EntityID, remote)
}

// revert makes the local record mirror remote. Callers hold e.local.
func (e *syncEngine) revert(ctx context.Context, entityType, id string, remote *models.RemoteRecord) error {
	if remote == nil || remote.Deleted {
		return e.records.Purge(ctx, entityType, id)
	}
	return e.records.Put(ctx, entityType, id, remote.Payload, models.PutOptions{RemoteVersion: models.Int64Ptr(remote.Version)})
}

// checkRemote rejects a live remote record the client cannot decode. It runs
// before the queue is touched so a schema failure leaves the entry queued.
func (e *syncEngine) checkRemote(ctx context.Context, entityType, id string, remote *models.RemoteRecord) error {
	if remote == nil || remote.Deleted {
		return nil
	}
	if _, err := e.decoder.DecodePayload(ctx, entityType, remote.Payload); err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrRemoteSchema, entityType, id, err)
	}
	return nil
}

func (e *syncEngine) recordFailure(ctx context.Context, entry models.MutationEntry, cause error, result *models.SyncResult) error {
	attempts, err := e.queue.RecordFailure(ctx, entry.EntityType, entry.EntityID, cause)
	if errors.Is(err, store.ErrMutationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if e.maxAttempts > 0 && attempts >= e.maxAttempts {
		entry.Attempts = attempts
		entry.LastError = cause.Error()
		return e.deadLetter(ctx, entry, fmt.Errorf("gave up after %d attempts: %w", attempts, cause), result)
	}

	result.Failed++
	return nil
}

// deadLetter takes entry out of the queue and reverts the local record to
// the remote state. The remote state is read first: when it cannot be read
// the entry stays queued with its record dirty and the next cycle tries
// again.
func (e *syncEngine) deadLetter(ctx context.Context, entry models.MutationEntry, cause error, result *models.SyncResult) error {
	var remote *models.RemoteRecord
	if entry.BaseVersion != nil {
		var err error
		remote, err = e.remote.Fetch(ctx, entry.EntityType, entry.EntityID)
		if err != nil {
			if adapter.IsFatal(err) {
				return fmt.Errorf("fetch %s: %w", entry.Key(), err)
			}
			return e.postponeDeadLetter(ctx, entry, err, result)
		}
	}
	if err := e.checkRemote(ctx, entry.EntityType, entry.EntityID, remote); err != nil {
		return err
	}

	e.local.Lock()
	defer e.local.Unlock()

	if err := e.queue.DeadLetter(ctx, entry, cause.Error()); err != nil {
		return err
	}
	result.DeadLettered++

	return e.revert(ctx, entry.EntityType, entry.EntityID, remote)
}

func (e *syncEngine) postponeDeadLetter(ctx context.Context, entry models.MutationEntry, fetchErr error, result *models.SyncResult) error {
	logger.FromContext(ctx).Warn().Err(fetchErr).
		Str("func", "syncEngine.postponeDeadLetter").
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Msg("remote state unavailable, mutation kept in queue")

	_, err := e.queue.RecordFailure(ctx, entry.EntityType, entry.EntityID, fmt.Errorf("read remote state: %w", fetchErr))
	if errors.Is(err, store.ErrMutationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	result.Failed++
	return nil
}

// pull refreshes every tracked type. abortErr is set when a transient
// failure ended the phase early; err is set for unrecoverable failures.
func (e *syncEngine) pull(ctx context.Context, since *time.Time, result *models.SyncResult) (abortErr, err error) {
	for _, entityType := range e.trackedTypes {
		records, fetchErr := e.remote.FetchChangedSince(ctx, entityType, since)
		if fetchErr != nil {
			fetchErr = fmt.Errorf("pull %s: %w", entityType, fetchErr)
			if adapter.IsFatal(fetchErr) {
				return nil, fetchErr
			}
			return fetchErr, nil
		}

		for _, remote := range records {
			if err = e.applyRemote(ctx, entityType, remote, result); err != nil {
				return nil, err
			}
		}
	}

	return nil, nil
}

// applyRemote writes one pulled record into the cache. Records with local
// changes pending are left alone.
func (e *syncEngine) applyRemote(ctx context.Context, entityType string, remote models.RemoteRecord, result *models.SyncResult) error {
	if !remote.Deleted {
		entity, err := e.decoder.DecodePayload(ctx, entityType, remote.Payload)
		if err != nil {
			return fmt.Errorf("%w: %s/%s: %w", ErrRemoteSchema, entityType, remote.ID, err)
		}
		if entity.EntityID() != remote.ID {
			return fmt.Errorf("%w: %s/%s: %w", ErrRemoteSchema, entityType, remote.ID, validators.ErrIDMismatch)
		}
	}

	e.local.Lock()
	defer e.local.Unlock()

	local, found, err := e.records.Get(ctx, entityType, remote.ID)
	if err != nil {
		return err
	}

	if found && (local.Dirty || local.Tombstone) {
		pending, err := e.hasPending(ctx, entityType, remote.ID)
		if err != nil {
			return err
		}
		if pending {
			result.Skipped++
			return nil
		}
		// a local change without an intent behind it cannot be pushed
		// anymore, so the remote state replaces it whatever its version
		local.RemoteVersion = nil
	}

	switch {
	case remote.Deleted:
		if !found {
			return nil
		}
		if err = e.records.Purge(ctx, entityType, remote.ID); err != nil {
			return err
		}
	case found && local.RemoteVersion != nil && *local.RemoteVersion >= remote.Version:
		return nil
	default:
		if err = e.records.Put(ctx, entityType, remote.ID, remote.Payload, models.PutOptions{RemoteVersion: models.Int64Ptr(remote.Version)}); err != nil {
			return err
		}
	}

	result.Pulled++
	return nil
}

func (e *syncEngine) hasPending(ctx context.Context, entityType, id string) (bool, error) {
	_, found, err := e.queue.Get(ctx, entityType, id)
	return found, err
}

func (e *syncEngine) Status() models.SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Status
}

func (e *syncEngine) Session() models.SyncSession {
	e.mu.RLock()
	defer e.mu.RUnlock()

	session := e.session
	if session.LastSyncAt != nil {
		at := *session.LastSyncAt
		session.LastSyncAt = &at
	}
	return session
}

func (e *syncEngine) LastSyncTime() *time.Time {
	return e.Session().LastSyncAt
}

func (e *syncEngine) UnsyncedCount(ctx context.Context) (int, error) {
	return e.queue.Count(ctx)
}

func (e *syncEngine) Subscribe(listener broadcast.Listener) func() {
	return e.events.Subscribe(listener)
}

// expectedVersion is the version an entry was based on; never-confirmed
// records are at version 0.
func expectedVersion(entry models.MutationEntry) int64 {
	if entry.BaseVersion == nil {
		return 0
	}
	return *entry.BaseVersion
}
