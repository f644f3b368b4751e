package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-team-sync/models"
)

func queueEntry(id string, op models.Operation, payload string, at time.Time) models.MutationEntry {
	entry := models.MutationEntry{
		EntityType: models.EntityPlayers,
		EntityID:   id,
		Operation:  op,
		CreatedAt:  at,
	}
	if payload != "" {
		entry.Payload = []byte(payload)
	}
	return entry
}

func TestMutationQueue_EnqueueReplacesPendingEntry(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := queueEntry("p1", models.OperationUpdate, `{"name":"Al"}`, base)
	first.BaseVersion = models.Int64Ptr(4)
	require.NoError(t, s.Queue.Enqueue(ctx, first))

	_, err := s.Queue.RecordFailure(ctx, models.EntityPlayers, "p1", errors.New("timeout"))
	require.NoError(t, err)

	second := queueEntry("p1", models.OperationUpdate, `{"name":"Alice"}`, base.Add(time.Minute))
	second.BaseVersion = models.Int64Ptr(4)
	require.NoError(t, s.Queue.Enqueue(ctx, second))

	entries, err := s.Queue.PeekAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, models.OperationUpdate, got.Operation)
	assert.JSONEq(t, `{"name":"Alice"}`, string(got.Payload))
	assert.Equal(t, 0, got.Attempts)
	assert.Empty(t, got.LastError)
	require.NotNil(t, got.BaseVersion)
	assert.Equal(t, int64(4), *got.BaseVersion)
	assert.True(t, base.Add(time.Minute).Equal(got.CreatedAt))
}

func TestMutationQueue_PeekAllOrderAndRemove(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p2", models.OperationCreate, `{}`, base.Add(2*time.Second))))
	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p1", models.OperationDelete, "", base)))
	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p3", models.OperationUpdate, `{}`, base.Add(time.Second))))

	entries, err := s.Queue.PeekAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "p1", entries[0].EntityID)
	assert.Nil(t, entries[0].Payload)
	assert.Nil(t, entries[0].BaseVersion)
	assert.Equal(t, "p3", entries[1].EntityID)
	assert.Equal(t, "p2", entries[2].EntityID)

	count, err := s.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, s.Queue.Remove(ctx, models.EntityPlayers, "p3"))

	_, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p3")
	require.NoError(t, err)
	assert.False(t, found)

	count, err = s.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMutationQueue_RecordFailure(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)

	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p1", models.OperationUpdate, `{}`, time.Now())))

	attempts, err := s.Queue.RecordFailure(ctx, models.EntityPlayers, "p1", errors.New("first"))
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)

	attempts, err = s.Queue.RecordFailure(ctx, models.EntityPlayers, "p1", errors.New("second"))
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	entry, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, entry.Attempts)
	assert.Equal(t, "second", entry.LastError)

	_, err = s.Queue.RecordFailure(ctx, models.EntityPlayers, "missing", errors.New("x"))
	assert.ErrorIs(t, err, ErrMutationNotFound)
}

func TestMutationQueue_EnqueueRejectsInvalidEntries(t *testing.T) {
	s := newSQLiteStorages(t)

	err := s.Queue.Enqueue(testContext(), models.MutationEntry{EntityType: models.EntityPlayers, EntityID: "p1", Operation: "upsert"})
	assert.ErrorIs(t, err, ErrInvalidMutation)

	err = s.Queue.Enqueue(testContext(), models.MutationEntry{EntityType: models.EntityPlayers, Operation: models.OperationCreate})
	assert.ErrorIs(t, err, ErrInvalidMutation)
}

func TestMutationQueue_DeadLetterAndRequeue(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)

	entry := queueEntry("p1", models.OperationUpdate, `{"name":"x"}`, time.Now().Add(-time.Hour))
	entry.BaseVersion = models.Int64Ptr(2)
	require.NoError(t, s.Queue.Enqueue(ctx, entry))
	_, err := s.Queue.RecordFailure(ctx, models.EntityPlayers, "p1", errors.New("bad request"))
	require.NoError(t, err)

	stored, _, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.NoError(t, s.Queue.DeadLetter(ctx, stored, "rejected by remote"))

	count, err := s.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	letters, err := s.Queue.ListDeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "rejected by remote", letters[0].Reason)
	assert.Equal(t, 1, letters[0].Attempts)
	assert.Equal(t, "bad request", letters[0].LastError)
	assert.False(t, letters[0].FailedAt.IsZero())

	requeued, err := s.Queue.Requeue(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, requeued.Attempts)
	assert.JSONEq(t, `{"name":"x"}`, string(requeued.Payload))

	got, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), *got.BaseVersion)

	letters, err = s.Queue.ListDeadLetters(ctx)
	require.NoError(t, err)
	assert.Empty(t, letters)

	_, err = s.Queue.Requeue(ctx, models.EntityPlayers, "p1")
	assert.ErrorIs(t, err, ErrDeadLetterNotFound)
}

func TestMutationQueue_RequeueKeepsNewerIntent(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)

	old := queueEntry("p1", models.OperationUpdate, `{"name":"old"}`, time.Now().Add(-time.Hour))
	require.NoError(t, s.Queue.Enqueue(ctx, old))
	require.NoError(t, s.Queue.DeadLetter(ctx, old, "exhausted"))

	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p1", models.OperationUpdate, `{"name":"new"}`, time.Now())))

	_, err := s.Queue.Requeue(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)

	got, _, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"new"}`, string(got.Payload))
}

func TestMutationQueue_DeadLetterRollsBackOnFailure(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewMutationQueueRepository(newDBFromSQL(db), nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT OR REPLACE INTO dead_letters")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mutation_queue")).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := repo.DeadLetter(testContext(), queueEntry("p1", models.OperationUpdate, `{}`, time.Now()), "exhausted")
	assert.ErrorIs(t, err, ErrExecutingStatement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutationQueue_DatabaseErrors(t *testing.T) {
	dbErr := errors.New("disk I/O error")

	t.Run("enqueue", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMutationQueueRepository(newDBFromSQL(db), nil)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sync_meta")).
			WithArgs(mutationSeqKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(4)))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO mutation_queue")).WillReturnError(dbErr)
		mock.ExpectRollback()

		err := repo.Enqueue(testContext(), queueEntry("p1", models.OperationCreate, `{}`, time.Now()))
		assert.ErrorIs(t, err, ErrExecutingStatement)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("peek all", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMutationQueueRepository(newDBFromSQL(db), nil)
		mock.ExpectQuery(regexp.QuoteMeta("FROM mutation_queue")).WillReturnError(dbErr)

		_, err := repo.PeekAll(testContext())
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})

	t.Run("count", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMutationQueueRepository(newDBFromSQL(db), nil)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM mutation_queue")).WillReturnError(dbErr)

		_, err := repo.Count(testContext())
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})

	t.Run("dead letter begin", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMutationQueueRepository(newDBFromSQL(db), nil)
		mock.ExpectBegin().WillReturnError(dbErr)

		err := repo.DeadLetter(testContext(), queueEntry("p1", models.OperationCreate, `{}`, time.Now()), "x")
		assert.ErrorIs(t, err, ErrBeginningTransaction)
	})
}

func TestMutationQueue_SettleKeepsNewerIntent(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pushed := queueEntry("p1", models.OperationCreate, `{"name":"Al"}`, base)
	require.NoError(t, s.Queue.Enqueue(ctx, pushed))

	newer := queueEntry("p1", models.OperationCreate, `{"name":"Alice"}`, base.Add(time.Second))
	require.NoError(t, s.Queue.Enqueue(ctx, newer))

	removed, err := s.Queue.Settle(ctx, pushed)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, s.Queue.Rebase(ctx, models.EntityPlayers, "p1", 1))

	got, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.OperationUpdate, got.Operation)
	require.NotNil(t, got.BaseVersion)
	assert.Equal(t, int64(1), *got.BaseVersion)
	assert.JSONEq(t, `{"name":"Alice"}`, string(got.Payload))

	removed, err = s.Queue.Settle(ctx, got)
	require.NoError(t, err)
	assert.True(t, removed)

	count, err := s.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMutationQueue_SettleTellsApartWritesWithSameTimestamp(t *testing.T) {
	ctx := testContext()
	s := newSQLiteStorages(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p1", models.OperationCreate, `{"name":"Al"}`, at)))
	pushed, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.True(t, found)

	// same operation, same clock reading
	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p1", models.OperationCreate, `{"name":"Alice"}`, at)))

	removed, err := s.Queue.Settle(ctx, pushed)
	require.NoError(t, err)
	assert.False(t, removed)

	newer, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Greater(t, newer.Seq, pushed.Seq)
	assert.JSONEq(t, `{"name":"Alice"}`, string(newer.Payload))

	// a drained queue keeps counting
	removed, err = s.Queue.Settle(ctx, newer)
	require.NoError(t, err)
	require.True(t, removed)

	require.NoError(t, s.Queue.Enqueue(ctx, queueEntry("p1", models.OperationCreate, `{"name":"Bo"}`, at)))
	again, found, err := s.Queue.Get(ctx, models.EntityPlayers, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Greater(t, again.Seq, newer.Seq)
}
