// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-team-sync binaries. It is populated by merging values from environment
// variables, command-line flags, an optional JSON file and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the request integrity
	// key and the log file location.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the local cache database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address of the local status API.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote authority connection settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds configuration for the background sync workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for the local persistence backend.
type Storage struct {
	// DB holds the local SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level configuration values.
type App struct {
	// HashKey is the HMAC key used to sign outgoing request bodies
	// (HashSHA256 header). Optional; no header is sent when empty.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// LogFile is the path of the rotated client log file.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Server holds settings for the local status API.
type Server struct {
	// HTTPAddress is the TCP address of the status API in "host:port" form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// DB holds connection settings for the local cache.
type DB struct {
	// DSN is the SQLite database file path (e.g. "./team-sync.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter modes select the RemoteAuthority implementation.
const (
	AdapterModeHTTP     = "http"
	AdapterModePostgres = "postgres"
)

// Adapter holds the remote authority connection settings.
type Adapter struct {
	// Mode is either "http" (REST backend) or "postgres" (direct SQL).
	// Env: ADAPTER_MODE
	Mode string `env:"MODE"`

	// HTTPAddress is the base address of the REST backend.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// DatabaseDSN is the PostgreSQL connection string used in postgres mode.
	// Env: ADAPTER_DATABASE_URI
	DatabaseDSN string `env:"DATABASE_URI"`

	// RequestTimeout bounds every single remote call (e.g. "10s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token presented to the REST backend.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds configuration for background sync processes.
type Workers struct {
	// SyncInterval is the period of the timer trigger.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// LinkPollInterval is how often the platform link state is sampled.
	// Env: WORKERS_LINK_POLL_INTERVAL
	LinkPollInterval time.Duration `env:"LINK_POLL_INTERVAL"`

	// MaxAttempts is how many failed pushes a mutation may accumulate
	// before it is dead-lettered.
	// Env: WORKERS_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// TrackedTypes lists the entity types pulled on every cycle
	// (comma-separated in the environment).
	// Env: WORKERS_TRACKED_TYPES
	TrackedTypes []string `env:"TRACKED_TYPES" envSeparator:","`

	// StatusPollInterval is how often UI consumers poll the status API.
	// Env: WORKERS_STATUS_POLL_INTERVAL
	StatusPollInterval time.Duration `env:"STATUS_POLL_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources. For every field the first
// source that provides a non-zero value wins:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
