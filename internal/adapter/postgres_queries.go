package adapter

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// Every entity type lives in its own table named after the type:
//
//	id         TEXT PRIMARY KEY
//	payload    JSONB NOT NULL
//	version    BIGINT NOT NULL
//	updated_at TIMESTAMPTZ NOT NULL
//	deleted    BOOLEAN NOT NULL DEFAULT false
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var remoteRecordColumns = []string{"id", "payload", "version", "updated_at", "deleted"}

// Optimistic lock in one round trip: "updated" is empty when the version
// moved, "current" tells a moved version apart from a missing row.
const (
	updateRemoteRecord = `WITH current AS (
		SELECT version FROM %[1]s WHERE id = $1 AND NOT deleted
	), updated AS (
		UPDATE %[1]s
		SET payload = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3 AND NOT deleted
		RETURNING version
	)
	SELECT (SELECT version FROM updated), (SELECT version FROM current);`

	deleteRemoteRecord = `WITH current AS (
		SELECT version FROM %[1]s WHERE id = $1 AND NOT deleted
	), updated AS (
		UPDATE %[1]s
		SET deleted = true, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND NOT deleted
		RETURNING version
	)
	SELECT (SELECT version FROM updated), (SELECT version FROM current);`
)

func tableName(entityType string) string {
	return pgx.Identifier{entityType}.Sanitize()
}

func buildFetchChangedSinceQuery(entityType string, since *time.Time) (string, []any, error) {
	q := psql.Select(remoteRecordColumns...).
		From(tableName(entityType)).
		OrderBy("updated_at", "id")
	if since != nil {
		q = q.Where(sq.Gt{"updated_at": since.UTC()})
	}
	return q.ToSql()
}

func buildFetchQuery(entityType, id string) (string, []any, error) {
	return psql.Select(remoteRecordColumns...).
		From(tableName(entityType)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildCreateQuery(entityType, id string, payload []byte) (string, []any, error) {
	return psql.Insert(tableName(entityType)).
		Columns(remoteRecordColumns...).
		Values(id, string(payload), 1, sq.Expr("now()"), false).
		Suffix("RETURNING id, version").
		ToSql()
}

func lockedWriteQuery(template, entityType string) string {
	return fmt.Sprintf(template, tableName(entityType))
}
