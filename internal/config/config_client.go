package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used to sign outgoing request bodies.
	HashKey string
	// LogFile is the rotated log file path.
	LogFile string
}

// ClientAdapter holds the settings of the remote authority adapter.
type ClientAdapter struct {
	// Mode selects the adapter implementation ("http" or "postgres").
	Mode string
	// HTTPAddress is the HTTP endpoint address used in http mode.
	HTTPAddress string
	// DatabaseDSN is the PostgreSQL DSN used in postgres mode.
	DatabaseDSN string
	// RequestTimeout bounds every single remote call.
	RequestTimeout time.Duration
	// Token is the bearer token sent to the REST backend.
	Token string
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientServer holds settings of the local status API.
type ClientServer struct {
	HTTPAddress string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the timer trigger fires.
	SyncInterval time.Duration
	// LinkPollInterval defines how often the link watcher samples interfaces.
	LinkPollInterval time.Duration
	// MaxAttempts is the failed push limit before a mutation is dead-lettered.
	MaxAttempts int
	// TrackedTypes lists entity types pulled on every cycle.
	TrackedTypes []string
	// StatusPollInterval is the poll period of status consumers.
	StatusPollInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains remote authority settings.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Server contains the status API settings.
	Server ClientServer
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig projects a merged [StructuredConfig] onto [ClientConfig]
// without validating it.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	tracked := make([]string, len(cfg.Workers.TrackedTypes))
	copy(tracked, cfg.Workers.TrackedTypes)

	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			LogFile: cfg.App.LogFile,
		},
		Adapter: ClientAdapter{
			Mode:           cfg.Adapter.Mode,
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			DatabaseDSN:    cfg.Adapter.DatabaseDSN,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Server: ClientServer{HTTPAddress: cfg.Server.HTTPAddress},
		Workers: ClientWorkers{
			SyncInterval:       cfg.Workers.SyncInterval,
			LinkPollInterval:   cfg.Workers.LinkPollInterval,
			MaxAttempts:        cfg.Workers.MaxAttempts,
			TrackedTypes:       tracked,
			StatusPollInterval: cfg.Workers.StatusPollInterval,
		},
	}
}
