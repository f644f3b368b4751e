package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/models"
)

type fakeDaemon struct {
	status       string
	refreshCode  int
	refreshCalls atomic.Int32
}

func (d *fakeDaemon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sync/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(d.status))
	})
	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"build_version":"v1.4.0","build_date":"2026-09-30","build_commit":"9f2c1e0"}`))
	})
	mux.HandleFunc("POST /api/sync/refresh", func(w http.ResponseWriter, r *http.Request) {
		d.refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(d.refreshCode)
		_, _ = w.Write([]byte(`{"started":true,"pushed":3,"pulled":5,"failed":1,"dead_lettered":0,"status":"idle"}`))
	})
	return mux
}

func newTestModel(t *testing.T, d *fakeDaemon) monitorModel {
	t.Helper()
	srv := httptest.NewServer(d.handler())
	t.Cleanup(srv.Close)

	client := utils.NewHTTPClient(srv.URL, time.Second)
	return newMonitorModel(context.Background(), client, time.Minute, models.NewAppBuildInfo("v1.4.0", "", ""), logger.Nop())
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func update(t *testing.T, m monitorModel, msg tea.Msg) (monitorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(monitorModel)
	require.True(t, ok)
	return got, cmd
}

func TestMonitor_LoadsStatus(t *testing.T) {
	d := &fakeDaemon{status: `{
		"status": "error",
		"last_sync_at": "2026-10-01T08:30:00Z",
		"unsynced_count": 4,
		"last_error": "remote authority returned 503",
		"unsynced_records": 4,
		"online": true
	}`}
	m := newTestModel(t, d)

	m, _ = update(t, m, m.cmdFetchStatus()())

	require.NotNil(t, m.status)
	assert.Equal(t, models.SyncStatusError, m.status.Status)
	assert.Empty(t, m.unreachable)

	view := m.View()
	assert.Contains(t, view, "TEAM SYNC")
	assert.Contains(t, view, "error")
	assert.Contains(t, view, "online")
	assert.Contains(t, view, "remote authority returned 503")
}

func TestMonitor_ShowsSpinnerWhileSyncing(t *testing.T) {
	m := newTestModel(t, &fakeDaemon{status: `{"status":"syncing","unsynced_count":1,"unsynced_records":1,"online":true}`})

	m, _ = update(t, m, m.cmdFetchStatus()())

	assert.Contains(t, m.View(), "syncing...")
	assert.Contains(t, m.View(), "never")
}

func TestMonitor_DaemonUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	m := newMonitorModel(context.Background(), utils.NewHTTPClient(addr, time.Second), time.Minute, models.AppBuildInfo{}, logger.Nop())

	m, _ = update(t, m, m.cmdFetchStatus()())

	assert.Nil(t, m.status)
	assert.Equal(t, "Sync daemon is not running or unreachable", m.unreachable)
	assert.Contains(t, m.View(), "Waiting for sync daemon")
}

func TestMonitor_StatusErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newMonitorModel(context.Background(), utils.NewHTTPClient(srv.URL, time.Second), time.Minute, models.AppBuildInfo{}, logger.Nop())

	msg := m.cmdFetchStatus()().(statusLoadedMsg)

	assert.ErrorIs(t, msg.err, errUnexpectedStatus)
}

func TestMonitor_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantNotice string
		wantResult bool
		wantErr    bool
	}{
		{name: "cycle ran", code: http.StatusOK, wantNotice: "Sync cycle finished", wantResult: true},
		{name: "cycle in flight", code: http.StatusConflict, wantNotice: "A sync cycle is already running"},
		{name: "daemon failure", code: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDaemon{status: `{"status":"idle","online":true}`, refreshCode: tt.code}
			m := newTestModel(t, d)

			m, cmd := update(t, m, runeKey("r"))
			require.NotNil(t, cmd)
			assert.True(t, m.refreshing)

			// a second press while the request is running is ignored
			_, again := update(t, m, runeKey("r"))
			assert.Nil(t, again)

			m, _ = update(t, m, cmd())
			assert.False(t, m.refreshing)
			assert.Equal(t, int32(1), d.refreshCalls.Load())
			assert.Equal(t, tt.wantNotice, m.notice)
			assert.Equal(t, tt.wantResult, m.lastResult != nil)
			assert.Equal(t, tt.wantErr, m.errMsg != "")
		})
	}
}

func TestMonitor_RefreshResultIsRendered(t *testing.T) {
	d := &fakeDaemon{status: `{"status":"idle","online":true}`, refreshCode: http.StatusOK}
	m := newTestModel(t, d)

	m, _ = update(t, m, m.cmdFetchStatus()())
	m, cmd := update(t, m, runeKey("r"))
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "pushed 3, pulled 5, failed 1, dead-lettered 0")
}

func TestMonitor_CopyLastError(t *testing.T) {
	var copied string
	original := writeClipboard
	t.Cleanup(func() { writeClipboard = original })
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	m := newTestModel(t, &fakeDaemon{status: `{"status":"error","last_error":"client unauthorized"}`})

	m, _ = update(t, m, runeKey("c"))
	assert.Equal(t, "Nothing to copy", m.notice)
	assert.Empty(t, copied)

	m, _ = update(t, m, m.cmdFetchStatus()())
	m, _ = update(t, m, runeKey("c"))
	assert.Equal(t, "client unauthorized", copied)
	assert.Equal(t, "Last error copied", m.notice)

	m, _ = update(t, m, clearNoticeMsg{})
	assert.Empty(t, m.notice)
}

func TestMonitor_CopyFailureOpensOverlay(t *testing.T) {
	original := writeClipboard
	t.Cleanup(func() { writeClipboard = original })
	writeClipboard = func(string) error { return errors.New("no clipboard utility") }

	m := newTestModel(t, &fakeDaemon{status: `{"status":"error","last_error":"x"}`})
	m, _ = update(t, m, m.cmdFetchStatus()())

	m, _ = update(t, m, runeKey("c"))
	require.Contains(t, m.errMsg, "no clipboard utility")
	assert.Contains(t, m.View(), "enter / esc: close")

	// overlay swallows keys until closed
	m, cmd := update(t, m, runeKey("r"))
	assert.Nil(t, cmd)
	assert.False(t, m.refreshing)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.errMsg)
}

func TestMonitor_BuildInfo(t *testing.T) {
	m := newTestModel(t, &fakeDaemon{status: `{"status":"idle"}`})

	m, _ = update(t, m, m.cmdFetchBuildInfo()())
	m, _ = update(t, m, runeKey("i"))

	require.True(t, m.showInfo)
	view := m.View()
	assert.Contains(t, view, "BUILD INFO")
	assert.Contains(t, view, "v1.4.0")
	assert.Contains(t, view, "9f2c1e0")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showInfo)
}

func TestMonitor_Quit(t *testing.T) {
	m := newTestModel(t, &fakeDaemon{status: `{"status":"idle"}`})

	for _, msg := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, msg)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok)
	}
}

func TestHumanizeServerUnavailableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "refused", err: errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"), want: "Sync daemon is not running or unreachable"},
		{name: "timeout", err: context.DeadlineExceeded, want: "Sync daemon is not running or unreachable"},
		{name: "other", err: errors.New("unexpected EOF"), want: "unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeServerUnavailableError(tt.err))
		})
	}
}

func TestFitText(t *testing.T) {
	assert.Equal(t, "short", fitText("short", 10))
	assert.Equal(t, "abcd...", fitText("abcdefghijk", 7))
	assert.Equal(t, "ab", fitText("abcdef", 2))
}
