// Package workers manages the lifecycle of the client's background workers.
// Workers are started in registration order and stopped in reverse order.
package workers

import "context"

// Worker is a background loop that runs until stopped or until the context
// passed to Start is cancelled.
//
// Example implementation:
//
//	type ticker struct{ cancel context.CancelFunc }
//
//	func (t *ticker) Start(ctx context.Context) { ... go loop(ctx) ... }
//	func (t *ticker) Stop()                     { t.cancel() }
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
