package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-team-sync/models"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{
			name:     "sync session",
			data:     models.SyncSession{Status: models.SyncStatusIdle, UnsyncedCount: 2},
			status:   http.StatusOK,
			wantBody: `{"status":"idle","unsynced_count":2}`,
		},
		{
			name:     "conflict keeps the given status",
			data:     models.SyncResult{Started: false, Status: models.SyncStatusSyncing},
			status:   http.StatusConflict,
			wantBody: `{"started":false,"aborted":false,"pushed":0,"failed":0,"dead_lettered":0,"pulled":0,"skipped":0,"status":"syncing"}`,
		},
		{
			name:     "nil",
			data:     nil,
			status:   http.StatusOK,
			wantBody: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			n, err := WriteJSON(rr, tt.data, tt.status)

			require.NoError(t, err)
			assert.Equal(t, rr.Body.Len(), n)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rr := httptest.NewRecorder()

	n, err := WriteJSON(rr, map[string]any{"ch": make(chan int)}, http.StatusOK)

	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotEqual(t, "application/json", rr.Header().Get("Content-Type"))
}
