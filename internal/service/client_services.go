package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-team-sync/internal/adapter"
	"github.com/MKhiriev/go-team-sync/internal/broadcast"
	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/metrics"
	"github.com/MKhiriev/go-team-sync/internal/store"
	"github.com/MKhiriev/go-team-sync/internal/validators"
	"github.com/MKhiriev/go-team-sync/models"
)

// ClientServices bundles the sync services of one process. They share one
// local store lock so that read-modify-write sequences never interleave.
type ClientServices struct {
	Engine SyncEngine
	Job    SyncJob
	Data   DataService
	Status StatusService
	Events *broadcast.Broadcaster
}

func NewClientServices(
	ctx context.Context,
	storages *store.ClientStorages,
	remote adapter.RemoteAuthority,
	network ConnectivitySource,
	workers config.ClientWorkers,
	build models.AppBuildInfo,
	syncMetrics *metrics.SyncMetrics,
	log *logger.Logger,
) (*ClientServices, error) {
	localLock := &sync.Mutex{}
	decoder := validators.NewEntityValidator()
	events := broadcast.New(log)

	engine, err := NewSyncEngine(ctx, SyncEngineDeps{
		Records:   storages.Records,
		Queue:     storages.Queue,
		Meta:      storages.Meta,
		Remote:    remote,
		Network:   network,
		Decoder:   decoder,
		Events:    events,
		Metrics:   syncMetrics,
		LocalLock: localLock,
	}, workers, log)
	if err != nil {
		return nil, err
	}

	data := NewDataService(DataServiceDeps{
		Records:   storages.Records,
		Queue:     storages.Queue,
		Remote:    remote,
		Network:   network,
		Decoder:   decoder,
		LocalLock: localLock,
	}, log)

	return &ClientServices{
		Engine: engine,
		Job:    NewSyncJob(engine, network, workers, log),
		Data:   data,
		Status: NewStatusService(engine, storages.Records, storages.Queue, network, build, localLock, log),
		Events: events,
	}, nil
}
