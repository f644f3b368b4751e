package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-team-sync/internal/client"
	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(build)

	log := logger.NewLogger("team-sync-daemon")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.LogFile != "" {
		log = logger.NewClientLogger("team-sync-daemon", cfg.App.LogFile)
	}

	ctx := context.Background()
	app, err := client.NewApp(ctx, cfg, build, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init sync daemon error")
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("sync daemon run error")
	}
}

func printBuildInfo(build models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", build.BuildVersion)
	fmt.Printf("Build date: %s\n", build.BuildDate)
	fmt.Printf("Build commit: %s\n", build.BuildCommit)
}
