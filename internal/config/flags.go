package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a status API address in format [host]:[port]
//	-d local database path
//	-c/-config json file path with configs
//	-remote remote REST backend address
//	-remote-dsn remote PostgreSQL DSN
//	-mode remote adapter mode (http|postgres)
//	-token bearer token for the remote backend
//	-request-timeout remote request timeout (e.g., "10s")
//	-sync-interval periodic sync interval (e.g., "1m")
//	-max-attempts failed pushes allowed before dead-lettering
//	-link-poll-interval platform link sampling interval
//	-status-poll-interval monitor status polling interval
//	-tracked comma-separated entity types pulled every cycle
//	-hash-key request integrity hash key
//	-log-file client log file path
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var remoteAddress string
	var remoteDSN string
	var adapterMode string
	var token string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var maxAttempts int
	var linkPollInterval time.Duration
	var statusPollInterval time.Duration
	var trackedTypes string
	var hashKey string
	var logFile string

	flag.Var(&serverAddress, "a", "Status API net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&remoteAddress, "remote", "", "Remote REST backend address")
	flag.StringVar(&remoteDSN, "remote-dsn", "", "Remote PostgreSQL DSN")
	flag.StringVar(&adapterMode, "mode", "", "Remote adapter mode (http|postgres)")
	flag.StringVar(&token, "token", "", "Bearer token for the remote backend")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 10s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 1m)")
	flag.IntVar(&maxAttempts, "max-attempts", 0, "Failed pushes allowed before dead-lettering")
	flag.DurationVar(&linkPollInterval, "link-poll-interval", 0, "Platform link sampling interval (e.g., 5s)")
	flag.DurationVar(&statusPollInterval, "status-poll-interval", 0, "Monitor status polling interval (e.g., 5s)")
	flag.StringVar(&trackedTypes, "tracked", "", "Comma-separated entity types pulled every cycle")
	flag.StringVar(&hashKey, "hash-key", "", "Request integrity hash key")
	flag.StringVar(&logFile, "log-file", "", "Client log file path")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			HashKey: hashKey,
			LogFile: logFile,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		Adapter: Adapter{
			Mode:           adapterMode,
			HTTPAddress:    remoteAddress,
			DatabaseDSN:    remoteDSN,
			RequestTimeout: requestTimeout,
			Token:          token,
		},
		Workers: Workers{
			SyncInterval:       syncInterval,
			LinkPollInterval:   linkPollInterval,
			MaxAttempts:        maxAttempts,
			TrackedTypes:       splitList(trackedTypes),
			StatusPollInterval: statusPollInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses host:port. An empty host binds every interface; otherwise the
// host must be "localhost" or an IP literal (IPv6 in brackets).
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", rawPort, err)
	}
	if port < 1 || port > 65535 {
		return errors.New("port must be in range 1-65535")
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return errors.New("incorrect IP-address provided")
	}

	a.Host = host
	a.Port = port
	return nil
}
