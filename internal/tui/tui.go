package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/models"
)

// requestTimeout bounds a single call to the status API.
const requestTimeout = 5 * time.Second

// TUI is the terminal sync monitor. It only talks to the local status API
// of a running sync daemon.
type TUI struct {
	client   *utils.HTTPClient
	interval time.Duration
	build    models.AppBuildInfo
	logger   *logger.Logger
}

func New(cfg *config.MonitorConfig, build models.AppBuildInfo, log *logger.Logger) *TUI {
	return &TUI{
		client:   utils.NewHTTPClient(cfg.StatusAddress, requestTimeout),
		interval: cfg.PollInterval,
		build:    build,
		logger:   log,
	}
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	model := newMonitorModel(ctx, t.client, t.interval, t.build, t.logger)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
