// Package broadcast delivers sync status changes to in-process listeners.
//
// Delivery is synchronous and ordered: Publish returns after every listener
// has seen the event, and two Publish calls never interleave. Listeners run
// in subscription order and may unsubscribe (themselves or others) from
// inside the callback. A listener must not call Publish.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/models"
)

// Listener receives sync events.
type Listener func(models.SyncEvent)

type subscription struct {
	fn     Listener
	active atomic.Bool
}

// Broadcaster is a publish/subscribe channel for [models.SyncEvent].
type Broadcaster struct {
	publishMu sync.Mutex

	mu   sync.Mutex
	subs []*subscription

	logger *logger.Logger
}

// New returns an empty Broadcaster.
func New(log *logger.Logger) *Broadcaster {
	return &Broadcaster{logger: log}
}

// Subscribe registers listener and returns its unsubscribe function, which
// is idempotent.
func (b *Broadcaster) Subscribe(listener Listener) (unsubscribe func()) {
	sub := &subscription{fn: listener}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers event to every current listener.
func (b *Broadcaster) Publish(event models.SyncEvent) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		// unsubscribed by an earlier listener of this round
		if !sub.active.Load() {
			continue
		}
		b.deliver(sub.fn, event)
	}
}

// Len returns the number of active listeners.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) deliver(fn Listener, event models.SyncEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("func", "Broadcaster.deliver").
				Interface("panic", r).
				Str("status", string(event.Status)).
				Msg("sync status listener panicked")
		}
	}()

	fn(event)
}

// OnEnterStatus subscribes fn to transitions into status only: events that
// repeat the previous status are ignored. The usual consumer reloads its
// view on entering idle, i.e. right after a sync completed.
func OnEnterStatus(b *Broadcaster, status models.SyncStatus, fn Listener) (unsubscribe func()) {
	return b.Subscribe(func(event models.SyncEvent) {
		if event.Status == status && event.Previous != status {
			fn(event)
		}
	})
}
