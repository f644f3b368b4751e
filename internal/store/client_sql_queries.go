// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-team-sync/models"
)

const (
	getLocalRecord = `
		SELECT
			entity_type,
			id,
			payload,
			remote_version,
			dirty,
			tombstone,
			updated_at
		FROM local_records
		WHERE entity_type = ? AND id = ?;`

	// a clean put confirms the record: tombstone cleared, version replaced;
	// a dirty put keeps the confirmed version and any tombstone
	putLocalRecord = `
		INSERT INTO local_records (
			entity_type,
			id,
			payload,
			remote_version,
			dirty,
			tombstone,
			updated_at
		) VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			payload        = excluded.payload,
			remote_version = CASE WHEN excluded.dirty = 0
				THEN excluded.remote_version
				ELSE local_records.remote_version END,
			dirty          = excluded.dirty,
			tombstone      = CASE WHEN excluded.dirty = 0 THEN 0 ELSE local_records.tombstone END,
			updated_at     = excluded.updated_at;`

	markLocalRecordDeleted = `
		INSERT INTO local_records (
			entity_type,
			id,
			payload,
			remote_version,
			dirty,
			tombstone,
			updated_at
		) VALUES (?, ?, 'null', NULL, 1, 1, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			dirty      = 1,
			tombstone  = 1,
			updated_at = excluded.updated_at;`

	purgeLocalRecord = `DELETE FROM local_records WHERE entity_type = ? AND id = ?;`

	countUnsyncedRecords = `SELECT COUNT(*) FROM local_records WHERE dirty = 1 OR tombstone = 1;`

	enqueueMutation = `
		INSERT INTO mutation_queue (
			entity_type,
			entity_id,
			operation,
			payload,
			base_version,
			created_at,
			attempts,
			last_error,
			seq
		) VALUES (?, ?, ?, ?, ?, ?, 0, '', ?)
		ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			operation    = excluded.operation,
			payload      = excluded.payload,
			base_version = excluded.base_version,
			created_at   = excluded.created_at,
			attempts     = 0,
			last_error   = '',
			seq          = excluded.seq;`

	// every write to the queue takes the next value, even after the queue drained
	nextMutationSeq = `
		INSERT INTO sync_meta (key, value) VALUES (?, '1')
		ON CONFLICT (key) DO UPDATE SET value = CAST(sync_meta.value AS INTEGER) + 1
		RETURNING CAST(value AS INTEGER);`

	selectMutations = `
		SELECT
			entity_type,
			entity_id,
			operation,
			payload,
			base_version,
			created_at,
			attempts,
			last_error,
			seq
		FROM mutation_queue`

	peekAllMutations = selectMutations + `
		ORDER BY created_at, seq, entity_type, entity_id;`

	getMutation = selectMutations + `
		WHERE entity_type = ? AND entity_id = ?;`

	removeMutation = `DELETE FROM mutation_queue WHERE entity_type = ? AND entity_id = ?;`

	// only the exact intent that was pushed; a newer write keeps its entry
	settleMutation = `
		DELETE FROM mutation_queue
		WHERE entity_type = ? AND entity_id = ? AND seq = ?;`

	rebaseMutation = `
		UPDATE mutation_queue
		SET base_version = ?,
			operation = CASE WHEN operation = 'create' THEN 'update' ELSE operation END
		WHERE entity_type = ? AND entity_id = ?;`

	recordMutationFailure = `
		UPDATE mutation_queue
		SET attempts = attempts + 1, last_error = ?
		WHERE entity_type = ? AND entity_id = ?
		RETURNING attempts;`

	countMutations = `SELECT COUNT(*) FROM mutation_queue;`

	insertDeadLetter = `
		INSERT OR REPLACE INTO dead_letters (
			entity_type,
			entity_id,
			operation,
			payload,
			base_version,
			created_at,
			attempts,
			last_error,
			reason,
			failed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	selectDeadLetters = `
		SELECT
			entity_type,
			entity_id,
			operation,
			payload,
			base_version,
			created_at,
			attempts,
			last_error,
			reason,
			failed_at
		FROM dead_letters`

	listDeadLetters = selectDeadLetters + `
		ORDER BY failed_at, entity_type, entity_id;`

	getDeadLetter = selectDeadLetters + `
		WHERE entity_type = ? AND entity_id = ?;`

	deleteDeadLetter = `DELETE FROM dead_letters WHERE entity_type = ? AND entity_id = ?;`

	// a newer pending intent for the same entity supersedes the dead letter
	requeueMutation = `
		INSERT INTO mutation_queue (
			entity_type,
			entity_id,
			operation,
			payload,
			base_version,
			created_at,
			attempts,
			last_error,
			seq
		) VALUES (?, ?, ?, ?, ?, ?, 0, '', ?)
		ON CONFLICT (entity_type, entity_id) DO NOTHING;`

	getSyncMeta = `SELECT value FROM sync_meta WHERE key = ?;`

	setSyncMeta = `
		INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)

const (
	lastSyncAtKey  = "last_sync_at"
	mutationSeqKey = "mutation_seq"
)

var localRecordColumns = []string{
	"entity_type",
	"id",
	"payload",
	"remote_version",
	"dirty",
	"tombstone",
	"updated_at",
}

// buildQueryLocalRecordsQuery builds the SELECT for [LocalRecordRepository.Query].
// The Limit is pushed to SQL only when no in-process Match predicate exists,
// otherwise it is applied after matching.
func buildQueryLocalRecordsQuery(entityType string, filter models.RecordFilter) (string, []any, error) {
	builder := sq.Select(localRecordColumns...).
		From("local_records").
		Where(sq.Eq{"entity_type": entityType}).
		OrderBy("id")

	if len(filter.IDs) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.IDs})
	}

	if !filter.IncludeTombstones {
		builder = builder.Where(sq.Eq{"tombstone": 0})
	}

	if filter.DirtyOnly {
		builder = builder.Where(sq.Eq{"dirty": 1})
	}

	if filter.Limit > 0 && filter.Match == nil {
		builder = builder.Limit(filter.Limit)
	}

	return builder.PlaceholderFormat(sq.Question).ToSql()
}
