package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
)

func pingHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

func TestNewServer_RequiresAddress(t *testing.T) {
	srv, err := NewServer(pingHandler(), config.ClientServer{}, logger.Nop())

	assert.Nil(t, srv)
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestRunServer_ServesUntilCancelled(t *testing.T) {
	srv, err := NewServer(pingHandler(), config.ClientServer{HTTPAddress: "127.0.0.1:0"}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.RunServer(ctx) }()

	hs := srv.(*server).httpServer
	require.Eventually(t, func() bool { return hs.addr() != "" }, time.Second, 5*time.Millisecond)

	resp, err := http.Get("http://" + hs.addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestRunServer_ListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	srv, err := NewServer(pingHandler(), config.ClientServer{HTTPAddress: busy.Addr().String()}, logger.Nop())
	require.NoError(t, err)

	err = srv.RunServer(context.Background())
	assert.Error(t, err)
}
