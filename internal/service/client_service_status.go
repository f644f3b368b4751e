package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/broadcast"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/store"
	"github.com/MKhiriev/go-team-sync/models"
)

type statusService struct {
	engine  SyncEngine
	records store.LocalRecordRepository
	queue   store.MutationQueueRepository
	network ConnectivityChecker
	build   models.AppBuildInfo
	local   *sync.Mutex
	logger  *logger.Logger
}

// NewStatusService returns the read side used by UI consumers and the status
// API. local must be the lock shared with the engine and the data service.
func NewStatusService(
	engine SyncEngine,
	records store.LocalRecordRepository,
	queue store.MutationQueueRepository,
	network ConnectivityChecker,
	build models.AppBuildInfo,
	local *sync.Mutex,
	log *logger.Logger,
) StatusService {
	if local == nil {
		local = &sync.Mutex{}
	}
	if log == nil {
		log = logger.Nop()
	}

	return &statusService{
		engine:  engine,
		records: records,
		queue:   queue,
		network: network,
		build:   build,
		local:   local,
		logger:  log,
	}
}

func (s *statusService) GetSyncStatus() models.SyncStatus {
	return s.engine.Status()
}

func (s *statusService) SubscribeSyncStatus(listener broadcast.Listener) func() {
	return s.engine.Subscribe(listener)
}

func (s *statusService) GetLastSyncTime() *time.Time {
	return s.engine.LastSyncTime()
}

func (s *statusService) GetUnsyncedCount(ctx context.Context) (int, error) {
	return s.engine.UnsyncedCount(ctx)
}

func (s *statusService) Snapshot(ctx context.Context) (models.StatusResponse, error) {
	session := s.engine.Session()

	unsynced, err := s.engine.UnsyncedCount(ctx)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("count queued mutations: %w", err)
	}
	session.UnsyncedCount = unsynced

	snapshot, err := s.records.SyncStatusSnapshot(ctx)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("local status snapshot: %w", err)
	}

	return models.StatusResponse{
		SyncSession:     session,
		UnsyncedRecords: snapshot.UnsyncedRecords,
		Online:          s.network.IsOnline(),
		Build:           s.build,
	}, nil
}

func (s *statusService) BuildInfo() models.AppBuildInfo {
	return s.build
}

func (s *statusService) Queue(ctx context.Context) (models.QueueResponse, error) {
	entries, err := s.queue.PeekAll(ctx)
	if err != nil {
		return models.QueueResponse{}, err
	}
	return models.QueueResponse{Entries: entries, Length: len(entries)}, nil
}

func (s *statusService) DeadLetters(ctx context.Context) (models.DeadLettersResponse, error) {
	letters, err := s.queue.ListDeadLetters(ctx)
	if err != nil {
		return models.DeadLettersResponse{}, err
	}
	return models.DeadLettersResponse{DeadLetters: letters, Length: len(letters)}, nil
}

// Requeue implements StatusService. When a newer local write is already
// pending for the entity the dead letter is dropped in its favour and the
// local record is left alone.
func (s *statusService) Requeue(ctx context.Context, entityType, entityID string) (models.MutationEntry, error) {
	s.local.Lock()
	defer s.local.Unlock()

	entry, err := s.queue.Requeue(ctx, entityType, entityID)
	if err != nil {
		return models.MutationEntry{}, err
	}

	pending, found, err := s.queue.Get(ctx, entityType, entityID)
	if err != nil {
		return models.MutationEntry{}, err
	}
	if !found || !pending.CreatedAt.Equal(entry.CreatedAt) {
		return pending, nil
	}

	if entry.Operation == models.OperationDelete {
		err = s.records.MarkDeleted(ctx, entityType, entityID)
	} else {
		err = s.records.Put(ctx, entityType, entityID, entry.Payload, models.PutOptions{Dirty: true})
	}
	if err != nil {
		return models.MutationEntry{}, err
	}

	s.logger.Info().
		Str("func", "statusService.Requeue").
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Str("operation", string(entry.Operation)).
		Msg("dead letter requeued")

	return entry, nil
}
