// Package connectivity tracks whether the host has a usable network link.
//
// The signal is network presence, not reachability: a link can be up while
// the remote authority is unreachable. Consumers must still treat every
// remote call as fallible.
package connectivity

import (
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-team-sync/internal/logger"
)

// Listener is notified with the new state on every transition.
type Listener func(online bool)

type listener struct {
	fn     Listener
	active atomic.Bool
}

// Monitor holds the current online state and notifies listeners on
// transitions only. Listeners run synchronously, in registration order, on
// the goroutine that called SetOnline; they may call IsOnline and
// unsubscribe but must not call SetOnline.
type Monitor struct {
	transitionMu sync.Mutex
	online       atomic.Bool

	mu        sync.Mutex
	listeners []*listener

	logger *logger.Logger
}

// NewMonitor returns a Monitor starting in the given state.
func NewMonitor(online bool, log *logger.Logger) *Monitor {
	m := &Monitor{logger: log}
	m.online.Store(online)
	return m
}

// IsOnline reports the last known link state.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// OnChange registers fn and returns an idempotent unsubscribe function.
func (m *Monitor) OnChange(fn Listener) (unsubscribe func()) {
	l := &listener{fn: fn}
	l.active.Store(true)

	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()

	return func() {
		if !l.active.CompareAndSwap(true, false) {
			return
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		for i, other := range m.listeners {
			if other == l {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				break
			}
		}
	}
}

// SetOnline records the platform state. Listeners fire only when the value
// actually changes.
func (m *Monitor) SetOnline(online bool) {
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	if m.online.Swap(online) == online {
		return
	}

	m.logger.Info().Str("func", "Monitor.SetOnline").Bool("online", online).Msg("connectivity changed")

	m.mu.Lock()
	listeners := make([]*listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		if l.active.Load() {
			m.notify(l.fn, online)
		}
	}
}

func (m *Monitor) notify(fn Listener, online bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Str("func", "Monitor.notify").Interface("panic", r).Msg("connectivity listener panicked")
		}
	}()

	fn(online)
}
