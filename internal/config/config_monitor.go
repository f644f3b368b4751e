package config

import (
	"fmt"
	"time"
)

// MonitorConfig holds the settings of the sync monitor UI. The monitor talks
// only to the local status API, so adapter and storage settings are ignored.
type MonitorConfig struct {
	// StatusAddress is the status API address of the sync daemon.
	StatusAddress string
	// PollInterval is how often the monitor refreshes the sync status.
	PollInterval time.Duration
	// LogFile is the rotated log file; the terminal belongs to the UI.
	LogFile string
}

// GetMonitorConfig loads the merged configuration and projects it onto
// [MonitorConfig].
func GetMonitorConfig() (*MonitorConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	monitorCfg := NewMonitorConfig(cfg)
	return monitorCfg, monitorCfg.validate()
}

func NewMonitorConfig(cfg *StructuredConfig) *MonitorConfig {
	return &MonitorConfig{
		StatusAddress: cfg.Server.HTTPAddress,
		PollInterval:  cfg.Workers.StatusPollInterval,
		LogFile:       cfg.App.LogFile,
	}
}

func (cfg *MonitorConfig) validate() error {
	if cfg.StatusAddress == "" {
		return ErrInvalidServerConfigs
	}
	if cfg.PollInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}
	return nil
}
