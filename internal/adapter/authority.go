package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
)

// ClosableAuthority is a RemoteAuthority holding resources that must be
// released on shutdown.
type ClosableAuthority interface {
	RemoteAuthority
	Close() error
}

// NewRemoteAuthority builds the adapter selected by adapterCfg.Mode.
func NewRemoteAuthority(ctx context.Context, adapterCfg config.ClientAdapter, appCfg config.ClientApp, log *logger.Logger) (ClosableAuthority, error) {
	switch adapterCfg.Mode {
	case config.AdapterModeHTTP, "":
		return NewHTTPAuthority(adapterCfg, appCfg, log)
	case config.AdapterModePostgres:
		return NewPostgresAuthority(ctx, adapterCfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, adapterCfg.Mode)
	}
}
