package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/tui"
	"github.com/MKhiriev/go-team-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	cfg, err := config.GetMonitorConfig()
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}

	// the terminal belongs to the UI, logs always go to a file
	log := logger.NewClientLogger("team-sync-monitor", cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = tui.New(cfg, build, log).Run(ctx); err != nil {
		log.Error().Err(err).Msg("monitor run error")
		return err
	}
	return nil
}
