package workers

import (
	"context"
	"sync"
)

type Workers struct {
	workers []Worker

	mu      sync.Mutex
	started int
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start starts every worker. Workers started earlier may already be running
// when later ones start.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, worker := range w.workers[w.started:] {
		worker.Start(ctx)
		w.started++
	}
}

// Stop stops the started workers, last started first.
func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := w.started - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
	w.started = 0
}
