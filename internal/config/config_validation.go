// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-team-sync/models"
)

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants shared by every binary: a known adapter mode and known tracked
// entity types.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Adapter.Mode {
	case "", AdapterModeHTTP, AdapterModePostgres:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidAdapterConfigs, cfg.Adapter.Mode)
	}

	for _, entityType := range cfg.Workers.TrackedTypes {
		if !models.IsKnownEntityType(entityType) {
			return fmt.Errorf("%w: unknown entity type %q", ErrInvalidWorkerConfigs, entityType)
		}
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	switch cfg.Adapter.Mode {
	case AdapterModeHTTP:
		if cfg.Adapter.HTTPAddress == "" {
			return ErrInvalidAdapterConfigs
		}
	case AdapterModePostgres:
		if cfg.Adapter.DatabaseDSN == "" {
			return ErrInvalidAdapterConfigs
		}
	default:
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.LinkPollInterval <= 0 || cfg.Workers.MaxAttempts < 1 {
		return ErrInvalidWorkerConfigs
	}

	if len(cfg.Workers.TrackedTypes) == 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
