package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-team-sync/internal/adapter"
	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/connectivity"
	handler "github.com/MKhiriev/go-team-sync/internal/handler/http"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/metrics"
	"github.com/MKhiriev/go-team-sync/internal/server"
	"github.com/MKhiriev/go-team-sync/internal/service"
	"github.com/MKhiriev/go-team-sync/internal/store"
	"github.com/MKhiriev/go-team-sync/internal/workers"
	"github.com/MKhiriev/go-team-sync/models"
)

// App is the sync daemon: local store, remote adapter, background workers and
// the status API of one device.
type App struct {
	storages *store.ClientStorages
	remote   adapter.ClosableAuthority
	services *service.ClientServices
	workers  *workers.Workers
	server   server.Server

	logger *logger.Logger
}

func NewApp(ctx context.Context, cfg *config.ClientConfig, build models.AppBuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewRemoteAuthority(ctx, cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create remote adapter: %w", err), storages.Close())
	}

	// offline until the link watcher has sampled the interfaces
	monitor := connectivity.NewMonitor(false, log)
	linkWatcher := connectivity.NewLinkWatcher(monitor, cfg.Workers.LinkPollInterval, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services, err := service.NewClientServices(ctx, storages, remote, monitor, cfg.Workers, build, metrics.NewSyncMetrics(registry), log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create client services: %w", err), remote.Close(), storages.Close())
	}

	srv, err := server.NewServer(handler.NewHandler(services, registry, log).Init(), cfg.Server, log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create status server: %w", err), remote.Close(), storages.Close())
	}

	return &App{
		storages: storages,
		remote:   remote,
		services: services,
		workers:  workers.New(linkWatcher, services.Job),
		server:   srv,
		logger:   log,
	}, nil
}

// Run starts the workers and serves the status API until ctx is cancelled or
// the process receives a termination signal. Resources are released on
// return.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()
	defer a.close()

	unsubscribe := a.services.Events.Subscribe(a.logTransition)
	defer unsubscribe()

	a.workers.Start(ctx)
	defer a.workers.Stop()

	// the link watcher settles the online state before the job subscribes,
	// so the start-up cycle is requested explicitly
	a.services.Job.Trigger(models.TriggerManual)

	return a.server.RunServer(ctx)
}

func (a *App) logTransition(event models.SyncEvent) {
	level := zerolog.InfoLevel
	if event.Status == models.SyncStatusError {
		level = zerolog.ErrorLevel
	}

	a.logger.WithLevel(level).
		Str("func", "App.logTransition").
		Str("status", string(event.Status)).
		Str("previous", string(event.Previous)).
		Str("error", event.Err).
		Int("discarded", len(event.Discarded)).
		Msg("sync status changed")
}

func (a *App) close() {
	if err := a.remote.Close(); err != nil {
		a.logger.Err(err).Str("func", "App.close").Msg("failed to close remote adapter")
	}
	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Str("func", "App.close").Msg("failed to close local storage")
	}
	a.logger.Info().Msg("client stopped")
}
