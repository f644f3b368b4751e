package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/models"
)

const (
	noticeTTL     = 3 * time.Second
	lastErrorWrap = 72
)

// writeClipboard is swapped in tests; headless machines have no clipboard.
var writeClipboard = clipboard.WriteAll

type monitorModel struct {
	ctx      context.Context
	client   *utils.HTTPClient
	interval time.Duration
	logger   *logger.Logger

	sync syncModel

	status      *models.StatusResponse
	unreachable string
	lastResult  *models.SyncResult
	refreshing  bool

	build       models.AppBuildInfo
	daemonBuild models.AppBuildInfo
	showInfo    bool

	notice string
	errMsg string
}

func newMonitorModel(ctx context.Context, client *utils.HTTPClient, interval time.Duration, build models.AppBuildInfo, log *logger.Logger) monitorModel {
	return monitorModel{
		ctx:      ctx,
		client:   client,
		interval: interval,
		logger:   log,
		sync:     newSyncModel(),
		build:    build,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.cmdFetchStatus(), m.cmdFetchBuildInfo(), m.cmdPoll(), m.sync.spinner.Tick)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollTickMsg:
		return m, tea.Batch(m.cmdFetchStatus(), m.cmdPoll())
	case statusLoadedMsg:
		if msg.err != nil {
			m.unreachable = humanizeServerUnavailableError(msg.err)
			return m, nil
		}
		m.unreachable = ""
		status := msg.status
		m.status = &status
		return m, nil
	case buildInfoLoadedMsg:
		if msg.err == nil {
			m.daemonBuild = msg.info
		}
		return m, nil
	case refreshDoneMsg:
		m.refreshing = false
		switch {
		case msg.err != nil:
			m.errMsg = humanizeServerUnavailableError(msg.err)
			return m, nil
		case msg.busy:
			m.notice = "A sync cycle is already running"
		default:
			result := msg.result
			m.lastResult = &result
			m.notice = "Sync cycle finished"
		}
		return m, tea.Batch(m.cmdFetchStatus(), clearNoticeAfter(noticeTTL))
	case clearNoticeMsg:
		m.notice = ""
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sync.spinner, cmd = m.sync.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m monitorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	if m.errMsg != "" {
		if key.Matches(msg, keys.close) {
			m.errMsg = ""
		}
		return m, nil
	}

	if m.showInfo {
		if key.Matches(msg, keys.close) {
			m.showInfo = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.notice = ""
		return m, m.cmdRefresh()
	case key.Matches(msg, keys.copy):
		if m.status == nil || m.status.LastError == "" {
			m.notice = "Nothing to copy"
			return m, clearNoticeAfter(noticeTTL)
		}
		if err := writeClipboard(m.status.LastError); err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", err)
			return m, nil
		}
		m.notice = "Last error copied"
		return m, clearNoticeAfter(noticeTTL)
	case key.Matches(msg, keys.info):
		m.showInfo = true
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.errMsg != "" {
		return appStyle.Render(errorOverlayModel{message: m.errMsg}.View())
	}
	if m.showInfo {
		return appStyle.Render(renderBuildInfoWindow(m.build, m.daemonBuild))
	}

	return appStyle.Render(renderPage(
		titleStyle.Render("TEAM SYNC"),
		m.statusView(),
		helpStyle.Render("r: sync now  c: copy last error  i: build info"),
	))
}

func (m monitorModel) statusView() string {
	var b strings.Builder

	if m.unreachable != "" {
		b.WriteString(errorStyle.Render(m.unreachable))
		b.WriteString("\n")
	}

	if m.status == nil {
		b.WriteString("Waiting for sync daemon...")
		return b.String()
	}

	s := m.status
	state := string(s.Status)
	if s.Status == models.SyncStatusSyncing || m.refreshing {
		state = m.sync.View()
	}
	online := "offline"
	if s.Online {
		online = "online"
	}
	lastSync := "never"
	if s.LastSyncAt != nil {
		lastSync = s.LastSyncAt.Local().Format(time.DateTime)
	}

	writeRow(&b, "Status", state)
	writeRow(&b, "Connectivity", online)
	writeRow(&b, "Last sync", lastSync)
	writeRow(&b, "Unsynced", fmt.Sprintf("%d", s.UnsyncedRecords))
	if s.LastError != "" {
		writeRow(&b, "Last error", fitText(s.LastError, lastErrorWrap))
	}
	if r := m.lastResult; r != nil {
		writeRow(&b, "Last run", fmt.Sprintf("pushed %d, pulled %d, failed %d, dead-lettered %d",
			r.Pushed, r.Pulled, r.Failed, r.DeadLettered))
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label + ":"))
	b.WriteString(value)
	b.WriteString("\n")
}

func (m monitorModel) cmdPoll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

func (m monitorModel) cmdFetchStatus() tea.Cmd {
	ctx := m.ctx
	client := m.client
	log := m.logger

	return func() tea.Msg {
		var status models.StatusResponse
		resp, err := client.R().SetContext(ctx).SetResult(&status).Get("/api/sync/status")
		if err != nil {
			log.Debug().Err(err).Msg("status request failed")
			return statusLoadedMsg{err: err}
		}
		if resp.IsError() {
			return statusLoadedMsg{err: fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status())}
		}
		return statusLoadedMsg{status: status}
	}
}

func (m monitorModel) cmdFetchBuildInfo() tea.Cmd {
	ctx := m.ctx
	client := m.client

	return func() tea.Msg {
		var info models.AppBuildInfo
		resp, err := client.R().SetContext(ctx).SetResult(&info).Get("/api/version")
		if err != nil {
			return buildInfoLoadedMsg{err: err}
		}
		if resp.IsError() {
			return buildInfoLoadedMsg{err: fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status())}
		}
		return buildInfoLoadedMsg{info: info}
	}
}

func (m monitorModel) cmdRefresh() tea.Cmd {
	ctx := m.ctx
	client := m.client
	log := m.logger

	return func() tea.Msg {
		var result models.SyncResult
		resp, err := client.R().SetContext(ctx).SetResult(&result).Post("/api/sync/refresh")
		if err != nil {
			log.Warn().Err(err).Msg("manual sync request failed")
			return refreshDoneMsg{err: err}
		}
		switch {
		case resp.StatusCode() == http.StatusConflict:
			return refreshDoneMsg{busy: true}
		case resp.IsError():
			return refreshDoneMsg{err: fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status())}
		}
		log.Info().
			Int("pushed", result.Pushed).
			Int("pulled", result.Pulled).
			Bool("aborted", result.Aborted).
			Msg("manual sync finished")
		return refreshDoneMsg{result: result}
	}
}
