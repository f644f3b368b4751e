package server

import "context"

// Server is a transport listener managed by the client process.
type Server interface {
	// RunServer serves requests until ctx is cancelled, then shuts down
	// gracefully. It returns early if the listener cannot be opened.
	RunServer(ctx context.Context) error

	// Shutdown stops accepting requests and waits for in-flight ones.
	Shutdown(ctx context.Context) error
}
