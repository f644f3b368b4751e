package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &entry))
	return entry
}

func TestNewLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "team-sync-daemon")

	l.Debug().Str("entity_type", "players").Msg("queued")

	entry := decodeLine(t, buf.Bytes())
	assert.Equal(t, "team-sync-daemon", entry["role"])
	assert.Equal(t, "debug", entry["level"], "debug level must be enabled")
	assert.Equal(t, "players", entry["entity_type"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry["func"], "TestNewLogger_EntryShape")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNewLogger_Stdout(t *testing.T) {
	require.NotNil(t, NewLogger("team-sync-daemon"))
}

func TestNop(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Error().Msg("dropped")

	assert.Empty(t, buf.String())
}

func TestGetChildLogger(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger(&buf, "team-sync-daemon")

	child := parent.GetChildLogger()
	child.Logger = child.With().Str("trace_id", "t-1").Logger()
	require.NotSame(t, parent, child)

	child.Info().Msg("child")
	parent.Info().Msg("parent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	childEntry, parentEntry := decodeLine(t, lines[0]), decodeLine(t, lines[1])
	assert.Equal(t, "team-sync-daemon", childEntry["role"])
	assert.Equal(t, "t-1", childEntry["trace_id"])
	assert.NotContains(t, parentEntry, "trace_id")
}

func TestFromContextAndRequest(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("trace_id", "abc").Logger()
	ctx := zl.WithContext(context.Background())

	FromContext(ctx).Info().Msg("ctx")
	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil).WithContext(ctx)
	FromRequest(req).Info().Msg("req")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "abc", decodeLine(t, line)["trace_id"])
	}
}

func TestFromContext_WithoutLoggerIsUsable(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info().Msg("no logger attached") })
}

func TestNewClientLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "team-sync.log")

	l := NewClientLogger("team-sync-monitor", path)
	l.Info().Str("entity_type", "players").Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entry := decodeLine(t, data)
	assert.Equal(t, "team-sync-monitor", entry["role"])
	assert.Equal(t, "players", entry["entity_type"])
}
