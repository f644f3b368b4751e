// Package metrics exposes prometheus collectors for the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-team-sync/models"
)

const (
	namespace = "team_sync"
	subsystem = "sync"
)

// Cycle outcomes used as the "outcome" label.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// SyncMetrics groups the engine collectors. A nil *SyncMetrics is valid and
// records nothing.
type SyncMetrics struct {
	cycles        *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	pulled        prometheus.Counter
	unsynced      prometheus.Gauge
	lastSync      prometheus.Gauge
	cycleDuration prometheus.Histogram
}

// NewSyncMetrics creates the collectors and registers them with reg. A nil
// reg falls back to the default registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &SyncMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycles_total",
			Help:      "Number of sync triggers grouped by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "mutations_total",
			Help:      "Queued mutations processed by the push phase grouped by result.",
		}, []string{"result"}),
		pulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_pulled_total",
			Help:      "Remote records written into the local cache.",
		}),
		unsynced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unsynced_mutations",
			Help:      "Mutations waiting in the local queue.",
		}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the start of the last successful cycle.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of sync cycles that ran.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.cycles, m.mutations, m.pulled, m.unsynced, m.lastSync, m.cycleDuration)
	return m
}

// ObserveCycle records one Sync call.
func (m *SyncMetrics) ObserveCycle(trigger models.SyncTrigger, result models.SyncResult, took time.Duration) {
	if m == nil {
		return
	}

	m.cycles.WithLabelValues(string(trigger), Outcome(result)).Inc()
	if !result.Started {
		return
	}

	m.cycleDuration.Observe(took.Seconds())
	m.mutations.WithLabelValues("pushed").Add(float64(result.Pushed))
	m.mutations.WithLabelValues("failed").Add(float64(result.Failed))
	m.mutations.WithLabelValues("dead_lettered").Add(float64(result.DeadLettered))
	m.mutations.WithLabelValues("discarded").Add(float64(len(result.Discarded)))
	m.pulled.Add(float64(result.Pulled))
}

// SetUnsynced updates the queue depth gauge.
func (m *SyncMetrics) SetUnsynced(n int) {
	if m == nil {
		return
	}
	m.unsynced.Set(float64(n))
}

// RecordLastSync updates the last success watermark.
func (m *SyncMetrics) RecordLastSync(at time.Time) {
	if m == nil || at.IsZero() {
		return
	}
	m.lastSync.Set(float64(at.Unix()))
}

// Outcome maps a cycle result onto the outcome label.
func Outcome(result models.SyncResult) string {
	switch {
	case !result.Started:
		return OutcomeSkipped
	case result.Status == models.SyncStatusError:
		return OutcomeFailed
	case result.Aborted:
		return OutcomeAborted
	default:
		return OutcomeSucceeded
	}
}
