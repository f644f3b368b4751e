package service

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/connectivity"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/models"
)

const (
	defaultSyncInterval = time.Minute
	minRetryInterval    = 2 * time.Second
)

// ConnectivitySource is the part of the connectivity monitor the job uses.
type ConnectivitySource interface {
	ConnectivityChecker
	OnChange(fn connectivity.Listener) (unsubscribe func())
}

type syncJob struct {
	engine   SyncEngine
	network  ConnectivitySource
	interval time.Duration
	retryMin time.Duration
	logger   *logger.Logger

	triggers chan models.SyncTrigger

	mu          sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewSyncJob creates a job that runs engine cycles on a ticker, on
// connectivity restoration and on request. The job is idle until Start is
// called.
func NewSyncJob(engine SyncEngine, network ConnectivitySource, cfg config.ClientWorkers, log *logger.Logger) SyncJob {
	if log == nil {
		log = logger.Nop()
	}

	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	return &syncJob{
		engine:   engine,
		network:  network,
		interval: interval,
		retryMin: minRetryInterval,
		logger:   log,
		triggers: make(chan models.SyncTrigger, 1),
	}
}

// Start implements SyncJob. It stops any previously running loop, subscribes
// to connectivity changes and launches the loop goroutine.
func (j *syncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.unsubscribe = j.network.OnChange(func(online bool) {
		if online {
			j.Trigger(models.TriggerConnectivity)
		}
	})
	j.wg.Add(1)
	j.mu.Unlock()

	go j.loop(jobCtx)
}

func (j *syncJob) loop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	retry := j.newBackOff()
	var retryTimer *time.Timer
	stopRetry := func() {
		if retryTimer != nil {
			retryTimer.Stop()
			retryTimer = nil
		}
	}
	defer stopRetry()

	for {
		var (
			trigger models.SyncTrigger
			retryC  <-chan time.Time
		)
		if retryTimer != nil {
			retryC = retryTimer.C
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			trigger = models.TriggerTimer
		case trigger = <-j.triggers:
		case <-retryC:
			retryTimer = nil
			trigger = models.TriggerRetry
		}

		result := j.engine.Sync(ctx, trigger)
		if !result.Started {
			continue
		}

		stopRetry()
		if !j.needsRetry(result) {
			retry.Reset()
			continue
		}

		delay := retry.NextBackOff()
		if delay == backoff.Stop {
			continue
		}
		j.logger.Debug().
			Str("func", "syncJob.loop").
			Str("trigger", string(trigger)).
			Dur("delay", delay).
			Msg("sync retry scheduled")
		retryTimer = time.NewTimer(delay)
	}
}

// needsRetry reports cycles that ended early while a retry could help. An
// offline abort waits for the connectivity trigger instead.
func (j *syncJob) needsRetry(result models.SyncResult) bool {
	if result.Status == models.SyncStatusError {
		return true
	}
	return result.Aborted && j.network.IsOnline()
}

func (j *syncJob) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = j.retryMin
	b.MaxInterval = j.interval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Stop implements SyncJob. It cancels the loop, drops the connectivity
// subscription and blocks until the goroutine has exited.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	unsubscribe := j.unsubscribe
	j.cancel = nil
	j.unsubscribe = nil
	j.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *syncJob) Refresh(ctx context.Context) models.SyncResult {
	return j.engine.Sync(ctx, models.TriggerManual)
}

// Trigger implements SyncJob. Triggers that arrive while one is already
// waiting are coalesced.
func (j *syncJob) Trigger(trigger models.SyncTrigger) {
	select {
	case j.triggers <- trigger:
	default:
	}
}
