package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/adapter"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/store"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/internal/validators"
	"github.com/MKhiriev/go-team-sync/models"
)

// IDGenerator issues identifiers for records created without one.
type IDGenerator interface {
	Generate() string
}

// DataServiceDeps are the collaborators of the data service.
type DataServiceDeps struct {
	Records store.LocalRecordRepository
	Queue   store.MutationQueueRepository
	Remote  adapter.RemoteAuthority
	Network ConnectivityChecker

	Decoder   validators.PayloadDecoder
	IDs       IDGenerator
	LocalLock *sync.Mutex
}

type dataService struct {
	records store.LocalRecordRepository
	queue   store.MutationQueueRepository
	remote  adapter.RemoteAuthority
	network ConnectivityChecker
	decoder validators.PayloadDecoder
	ids     IDGenerator
	local   *sync.Mutex
	now     func() time.Time
	logger  *logger.Logger
}

// NewDataService returns the local-first read/write service.
func NewDataService(deps DataServiceDeps, log *logger.Logger) DataService {
	if log == nil {
		log = logger.Nop()
	}
	if deps.Decoder == nil {
		deps.Decoder = validators.NewEntityValidator()
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewUUIDGenerator()
	}
	if deps.LocalLock == nil {
		deps.LocalLock = &sync.Mutex{}
	}

	return &dataService{
		records: deps.Records,
		queue:   deps.Queue,
		remote:  deps.Remote,
		network: deps.Network,
		decoder: deps.Decoder,
		ids:     deps.IDs,
		local:   deps.LocalLock,
		now:     time.Now,
		logger:  log,
	}
}

func (s *dataService) Write(ctx context.Context, entityType string, mutation models.Mutation) (models.LocalRecord, error) {
	if !models.IsKnownEntityType(entityType) {
		return models.LocalRecord{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}

	switch mutation.Operation {
	case models.OperationCreate:
		return s.create(ctx, entityType, mutation)
	case models.OperationUpdate:
		return s.update(ctx, entityType, mutation)
	case models.OperationDelete:
		return s.delete(ctx, entityType, mutation.ID)
	default:
		return models.LocalRecord{}, fmt.Errorf("%w: %q", ErrInvalidOperation, mutation.Operation)
	}
}

// normalize settles the record id, writes it into the payload and returns
// the payload re-encoded from the validated entity.
func (s *dataService) normalize(ctx context.Context, entityType, id string, payload []byte) (string, json.RawMessage, error) {
	embedded, err := payloadID(payload)
	if err != nil {
		return "", nil, err
	}

	switch {
	case id == "":
		id = embedded
	case embedded != "" && embedded != id:
		return "", nil, fmt.Errorf("%w: %q != %q", validators.ErrIDMismatch, embedded, id)
	}
	if id == "" {
		return "", nil, validators.ErrEmptyID
	}

	withID, err := withEntityID(payload, id)
	if err != nil {
		return "", nil, err
	}

	entity, err := s.decoder.DecodePayload(ctx, entityType, withID)
	if err != nil {
		return "", nil, err
	}

	canonical, err := json.Marshal(entity)
	if err != nil {
		return "", nil, err
	}
	return id, canonical, nil
}

func (s *dataService) create(ctx context.Context, entityType string, mutation models.Mutation) (models.LocalRecord, error) {
	id := mutation.ID
	if id == "" {
		embedded, err := payloadID(mutation.Payload)
		if err != nil {
			return models.LocalRecord{}, err
		}
		if embedded == "" {
			id = s.ids.Generate()
		}
	}

	id, payload, err := s.normalize(ctx, entityType, id, mutation.Payload)
	if err != nil {
		return models.LocalRecord{}, err
	}

	s.local.Lock()
	defer s.local.Unlock()

	existing, found, err := s.records.Get(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, err
	}
	if found {
		if existing.Tombstone {
			return models.LocalRecord{}, fmt.Errorf("%w: %s/%s", ErrRecordDeleted, entityType, id)
		}
		return models.LocalRecord{}, fmt.Errorf("%w: %s/%s", ErrRecordExists, entityType, id)
	}

	entry := models.MutationEntry{
		EntityType: entityType,
		EntityID:   id,
		Operation:  models.OperationCreate,
		Payload:    payload,
	}
	return s.apply(ctx, entry)
}

func (s *dataService) update(ctx context.Context, entityType string, mutation models.Mutation) (models.LocalRecord, error) {
	id, payload, err := s.normalize(ctx, entityType, mutation.ID, mutation.Payload)
	if err != nil {
		return models.LocalRecord{}, err
	}

	s.local.Lock()
	defer s.local.Unlock()

	existing, pending, hasPending, err := s.current(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, err
	}

	entry := models.MutationEntry{
		EntityType:  entityType,
		EntityID:    id,
		Operation:   models.OperationUpdate,
		Payload:     payload,
		BaseVersion: existing.RemoteVersion,
	}
	switch {
	case hasPending:
		// an update folds into whatever is pending; a pending create stays one
		entry.BaseVersion = pending.BaseVersion
		if pending.Operation == models.OperationCreate {
			entry.Operation = models.OperationCreate
		}
	case !existing.Confirmed():
		entry.Operation = models.OperationCreate
	}

	return s.apply(ctx, entry)
}

func (s *dataService) delete(ctx context.Context, entityType, id string) (models.LocalRecord, error) {
	if id == "" {
		return models.LocalRecord{}, validators.ErrEmptyID
	}

	s.local.Lock()
	defer s.local.Unlock()

	existing, pending, hasPending, err := s.current(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, err
	}

	neverPushed := (hasPending && pending.Operation == models.OperationCreate) || (!hasPending && !existing.Confirmed())
	if neverPushed {
		// the remote never saw the record: drop it without a round trip
		if hasPending {
			if err = s.queue.Remove(ctx, entityType, id); err != nil {
				return models.LocalRecord{}, err
			}
		}
		if err = s.records.Purge(ctx, entityType, id); err != nil {
			return models.LocalRecord{}, err
		}
		existing.Tombstone = true
		existing.Dirty = false
		return existing, nil
	}

	base := existing.RemoteVersion
	if hasPending {
		base = pending.BaseVersion
	}

	if err = s.records.MarkDeleted(ctx, entityType, id); err != nil {
		return models.LocalRecord{}, err
	}
	if err = s.queue.Enqueue(ctx, models.MutationEntry{
		EntityType:  entityType,
		EntityID:    id,
		Operation:   models.OperationDelete,
		BaseVersion: base,
		CreatedAt:   s.now(),
	}); err != nil {
		return models.LocalRecord{}, err
	}

	return s.read(ctx, entityType, id, true)
}

// current loads the live local record and its pending entry. Callers hold
// s.local.
func (s *dataService) current(ctx context.Context, entityType, id string) (models.LocalRecord, models.MutationEntry, bool, error) {
	existing, found, err := s.records.Get(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, models.MutationEntry{}, false, err
	}
	if !found {
		return models.LocalRecord{}, models.MutationEntry{}, false, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, entityType, id)
	}
	if existing.Tombstone {
		return models.LocalRecord{}, models.MutationEntry{}, false, fmt.Errorf("%w: %s/%s", ErrRecordDeleted, entityType, id)
	}

	pending, hasPending, err := s.queue.Get(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, models.MutationEntry{}, false, err
	}
	return existing, pending, hasPending, nil
}

// apply writes the provisional record first and queues the intent second.
// Callers hold s.local.
func (s *dataService) apply(ctx context.Context, entry models.MutationEntry) (models.LocalRecord, error) {
	entry.CreatedAt = s.now()

	if err := s.records.Put(ctx, entry.EntityType, entry.EntityID, entry.Payload, models.PutOptions{Dirty: true}); err != nil {
		return models.LocalRecord{}, err
	}
	if err := s.queue.Enqueue(ctx, entry); err != nil {
		return models.LocalRecord{}, err
	}

	logger.FromContext(ctx).Debug().
		Str("func", "dataService.apply").
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Str("operation", string(entry.Operation)).
		Msg("local write queued")

	return s.read(ctx, entry.EntityType, entry.EntityID, true)
}

func (s *dataService) Read(ctx context.Context, entityType, id string, opts models.ReadOptions) (models.LocalRecord, error) {
	if !models.IsKnownEntityType(entityType) {
		return models.LocalRecord{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}

	if opts.PreferRemote && s.network.IsOnline() {
		record, err := s.readRemote(ctx, entityType, id)
		if err == nil || errors.Is(err, ErrRecordNotFound) {
			return record, err
		}
		logger.FromContext(ctx).Debug().Err(err).
			Str("func", "dataService.Read").
			Str("entity_type", entityType).
			Str("entity_id", id).
			Msg("remote read failed, serving local cache")
	}

	return s.read(ctx, entityType, id, false)
}

// readRemote fetches the record and refreshes the cache unless local changes
// are pending, in which case the local view is returned.
func (s *dataService) readRemote(ctx context.Context, entityType, id string) (models.LocalRecord, error) {
	remote, err := s.remote.Fetch(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, err
	}
	if remote != nil && !remote.Deleted {
		if _, err = s.decoder.DecodePayload(ctx, entityType, remote.Payload); err != nil {
			return models.LocalRecord{}, fmt.Errorf("%w: %s/%s: %w", ErrRemoteSchema, entityType, id, err)
		}
	}

	s.local.Lock()
	defer s.local.Unlock()

	local, found, err := s.records.Get(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, err
	}
	if found && (local.Dirty || local.Tombstone) {
		if local.Tombstone {
			return models.LocalRecord{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, entityType, id)
		}
		return local, nil
	}

	if remote == nil || remote.Deleted {
		if found {
			if err = s.records.Purge(ctx, entityType, id); err != nil {
				return models.LocalRecord{}, err
			}
		}
		return models.LocalRecord{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, entityType, id)
	}

	if err = s.records.Put(ctx, entityType, id, remote.Payload, models.PutOptions{RemoteVersion: models.Int64Ptr(remote.Version)}); err != nil {
		return models.LocalRecord{}, err
	}
	return s.read(ctx, entityType, id, false)
}

// read returns the cached record; tombstones count as absent unless
// withTombstone is set.
func (s *dataService) read(ctx context.Context, entityType, id string, withTombstone bool) (models.LocalRecord, error) {
	record, found, err := s.records.Get(ctx, entityType, id)
	if err != nil {
		return models.LocalRecord{}, err
	}
	if !found || (record.Tombstone && !withTombstone) {
		return models.LocalRecord{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, entityType, id)
	}
	return record, nil
}

func (s *dataService) Query(ctx context.Context, entityType string, filter models.RecordFilter) ([]models.LocalRecord, error) {
	if !models.IsKnownEntityType(entityType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	return s.records.Query(ctx, entityType, filter)
}
