package resolver

import (
	"testing"
	"time"

	"github.com/MKhiriev/go-team-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	queuedAt := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	entry := func(op models.Operation, base *int64) models.MutationEntry {
		return models.MutationEntry{
			EntityType:  models.EntityPlayers,
			EntityID:    "p1",
			Operation:   op,
			BaseVersion: base,
			CreatedAt:   queuedAt,
		}
	}
	remote := func(version int64, updatedAt time.Time) *models.RemoteRecord {
		return &models.RemoteRecord{EntityType: models.EntityPlayers, ID: "p1", Version: version, UpdatedAt: updatedAt}
	}

	tests := []struct {
		name     string
		entry    models.MutationEntry
		remote   *models.RemoteRecord
		decision Decision
		reason   string
	}{
		{"update, remote unchanged", entry(models.OperationUpdate, models.Int64Ptr(6)), remote(6, queuedAt), ApplyLocal, ""},
		{"update, remote newer", entry(models.OperationUpdate, models.Int64Ptr(6)), remote(7, queuedAt), RemoteWins, ReasonRemoteNewer},
		{"update without base, remote exists", entry(models.OperationUpdate, nil), remote(1, queuedAt), RemoteWins, ReasonRemoteNewer},
		{"update, remote missing", entry(models.OperationUpdate, models.Int64Ptr(6)), nil, RemoteWins, ReasonDeletedRemotely},
		{"update, remote soft deleted", entry(models.OperationUpdate, models.Int64Ptr(6)), &models.RemoteRecord{ID: "p1", Version: 9, Deleted: true}, RemoteWins, ReasonDeletedRemotely},

		{"delete queued after remote change", entry(models.OperationDelete, models.Int64Ptr(3)), remote(5, queuedAt.Add(-time.Minute)), ApplyLocal, ""},
		{"delete queued before remote change", entry(models.OperationDelete, models.Int64Ptr(3)), remote(5, queuedAt.Add(time.Minute)), RemoteWins, ReasonRemoteUpdatedLater},
		{"delete at the same instant", entry(models.OperationDelete, models.Int64Ptr(3)), remote(5, queuedAt), RemoteWins, ReasonRemoteUpdatedLater},
		{"delete, remote already gone", entry(models.OperationDelete, models.Int64Ptr(3)), nil, ApplyLocal, ""},
		{"delete, untimestamped remote at the base version", entry(models.OperationDelete, models.Int64Ptr(3)), remote(3, time.Time{}), ApplyLocal, ""},
		{"delete, untimestamped remote past the base version", entry(models.OperationDelete, models.Int64Ptr(3)), remote(4, time.Time{}), RemoteWins, ReasonRemoteUpdatedLater},
		{"delete without base, untimestamped remote", entry(models.OperationDelete, nil), remote(1, time.Time{}), RemoteWins, ReasonRemoteUpdatedLater},

		{"create, id taken", entry(models.OperationCreate, nil), remote(1, queuedAt), RemoteWins, ReasonIDTaken},
		{"create, id free", entry(models.OperationCreate, nil), nil, ApplyLocal, ""},

		{"unknown operation", entry("merge", nil), remote(1, queuedAt), RemoteWins, `unsupported operation "merge"`},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.entry, tt.remote)

			assert.Equal(t, tt.decision, res.Decision)
			if tt.decision == ApplyLocal {
				assert.Nil(t, res.Discarded)
				return
			}
			require.NotNil(t, res.Discarded)
			assert.Equal(t, tt.reason, res.Discarded.Reason)
			assert.Equal(t, tt.entry, res.Discarded.Entry)
		})
	}
}

func TestResolve_ReportsWinningRemote(t *testing.T) {
	remote := &models.RemoteRecord{ID: "p1", Version: 7}
	res := New().Resolve(models.MutationEntry{
		EntityID:    "p1",
		Operation:   models.OperationUpdate,
		BaseVersion: models.Int64Ptr(6),
	}, remote)

	require.NotNil(t, res.Discarded)
	assert.Same(t, remote, res.Discarded.Remote)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "apply_local", ApplyLocal.String())
	assert.Equal(t, "remote_wins", RemoteWins.String())
	assert.Equal(t, "decision(9)", Decision(9).String())
}
