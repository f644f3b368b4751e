package tui

import (
	"time"

	"github.com/MKhiriev/go-team-sync/models"
)

type statusLoadedMsg struct {
	status models.StatusResponse
	err    error
}

type buildInfoLoadedMsg struct {
	info models.AppBuildInfo
	err  error
}

type refreshDoneMsg struct {
	result models.SyncResult
	// busy is set when the daemon already had a cycle in flight.
	busy bool
	err  error
}

type pollTickMsg time.Time

type clearNoticeMsg struct{}
