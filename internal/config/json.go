package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON decoding. Durations
// are accepted as strings ("30s") or as integer nanoseconds.
type StructuredJSONConfig struct {
	App struct {
		HashKey string `json:"hash_key"`
		LogFile string `json:"log_file"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress string `json:"http_address"`
	} `json:"server,omitempty"`

	Adapter struct {
		Mode           string   `json:"mode"`
		HTTPAddress    string   `json:"http_address"`
		DatabaseDSN    string   `json:"database_dsn"`
		RequestTimeout Duration `json:"request_timeout"`
		Token          string   `json:"token"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval       Duration `json:"sync_interval"`
		LinkPollInterval   Duration `json:"link_poll_interval"`
		MaxAttempts        int      `json:"max_attempts"`
		TrackedTypes       []string `json:"tracked_types"`
		StatusPollInterval Duration `json:"status_poll_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey: jsonCfg.App.HashKey,
			LogFile: jsonCfg.App.LogFile,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress: jsonCfg.Server.HTTPAddress,
		},
		Adapter: Adapter{
			Mode:           jsonCfg.Adapter.Mode,
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			DatabaseDSN:    jsonCfg.Adapter.DatabaseDSN,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			Token:          jsonCfg.Adapter.Token,
		},
		Workers: Workers{
			SyncInterval:       time.Duration(jsonCfg.Workers.SyncInterval),
			LinkPollInterval:   time.Duration(jsonCfg.Workers.LinkPollInterval),
			MaxAttempts:        jsonCfg.Workers.MaxAttempts,
			TrackedTypes:       jsonCfg.Workers.TrackedTypes,
			StatusPollInterval: time.Duration(jsonCfg.Workers.StatusPollInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
