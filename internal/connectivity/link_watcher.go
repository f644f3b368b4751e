package connectivity

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/logger"
)

const defaultLinkPollInterval = 2 * time.Second

// LinkProbe reports whether the platform currently has a usable link.
type LinkProbe func() (bool, error)

// LinkWatcher samples the platform link state and feeds it into a Monitor.
// It is idle until Start is called.
type LinkWatcher struct {
	monitor  *Monitor
	probe    LinkProbe
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewLinkWatcher returns a watcher polling the host interfaces every
// interval (2s when interval is not positive).
func NewLinkWatcher(monitor *Monitor, interval time.Duration, log *logger.Logger) *LinkWatcher {
	return newLinkWatcher(monitor, PlatformLinkUp, interval, log)
}

func newLinkWatcher(monitor *Monitor, probe LinkProbe, interval time.Duration, log *logger.Logger) *LinkWatcher {
	if interval <= 0 {
		interval = defaultLinkPollInterval
	}
	return &LinkWatcher{monitor: monitor, probe: probe, interval: interval, logger: log}
}

// Start samples the link once synchronously, so the monitor is accurate
// when Start returns, then keeps polling in the background until ctx is
// cancelled or Stop is called. Calling Start again restarts the watcher.
func (w *LinkWatcher) Start(ctx context.Context) {
	w.Stop()

	w.sample()

	w.mu.Lock()
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-t.C:
				w.sample()
			}
		}
	}()
}

// Stop cancels the polling goroutine and waits for it to exit. Safe to call
// when the watcher is not running.
func (w *LinkWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *LinkWatcher) sample() {
	up, err := w.probe()
	if err != nil {
		// keep the last known state
		w.logger.Warn().Err(err).Str("func", "LinkWatcher.sample").Msg("failed to read link state")
		return
	}
	w.monitor.SetOnline(up)
}

// PlatformLinkUp reports true when at least one interface is up, is not a
// loopback, and has an address assigned.
func PlatformLinkUp() (bool, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false, fmt.Errorf("listing network interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if len(addrs) > 0 {
			return true, nil
		}
	}
	return false, nil
}
