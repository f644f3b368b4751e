package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"

	"github.com/MKhiriev/go-team-sync/models"
)

// Built-in defaults, applied last so that any configured value wins.
const (
	defaultAdapterMode        = AdapterModeHTTP
	defaultRequestTimeout     = 10 * time.Second
	defaultSyncInterval       = time.Minute
	defaultLinkPollInterval   = 2 * time.Second
	defaultMaxAttempts        = 10
	defaultStatusPollInterval = 5 * time.Second
	defaultServerAddress      = "localhost:8089"
	defaultLocalDSN           = "team-sync.db"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flags := ParseFlags()

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	isJSONSpecified := false

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			isJSONSpecified = true
			jsonPath = cfg.JSONFilePath
			break
		}
	}

	if isJSONSpecified {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaultConfig())
	return b
}

func defaultConfig() *StructuredConfig {
	tracked := make([]string, len(models.AllEntityTypes))
	copy(tracked, models.AllEntityTypes)

	return &StructuredConfig{
		Storage: Storage{DB: DB{DSN: defaultLocalDSN}},
		Server:  Server{HTTPAddress: defaultServerAddress},
		Adapter: Adapter{
			Mode:           defaultAdapterMode,
			RequestTimeout: defaultRequestTimeout,
		},
		Workers: Workers{
			SyncInterval:       defaultSyncInterval,
			LinkPollInterval:   defaultLinkPollInterval,
			MaxAttempts:        defaultMaxAttempts,
			TrackedTypes:       tracked,
			StatusPollInterval: defaultStatusPollInterval,
		},
	}
}
