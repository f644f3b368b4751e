package adapter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/models"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgresAuthority struct {
	db      *sql.DB
	timeout time.Duration
	logger  *logger.Logger
}

// NewPostgresAuthority connects straight to the PostgreSQL database that
// holds the authoritative tables, via the pgx database/sql driver.
func NewPostgresAuthority(ctx context.Context, adapterCfg config.ClientAdapter, log *logger.Logger) (ClosableAuthority, error) {
	conn, err := sql.Open("pgx", adapterCfg.DatabaseDSN)
	if err != nil {
		log.Err(err).Str("func", "NewPostgresAuthority").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := withTimeout(ctx, adapterCfg.RequestTimeout)
	defer cancel()
	// an unreachable remote at start is fine; the engine retries later
	if err = conn.PingContext(pingCtx); err != nil {
		log.Warn().Err(err).Str("func", "NewPostgresAuthority").Msg("remote database is not reachable yet")
	} else {
		log.Info().Str("func", "NewPostgresAuthority").Msg("connected to remote database successfully")
	}

	return newPostgresAuthority(conn, adapterCfg.RequestTimeout, log), nil
}

func newPostgresAuthority(db *sql.DB, timeout time.Duration, log *logger.Logger) *postgresAuthority {
	return &postgresAuthority{db: db, timeout: timeout, logger: log}
}

// FetchChangedSince implements [RemoteAuthority].
func (p *postgresAuthority) FetchChangedSince(ctx context.Context, entityType string, since *time.Time) ([]models.RemoteRecord, error) {
	if err := checkEntityType(entityType); err != nil {
		return nil, err
	}
	query, args, err := buildFetchChangedSinceQuery(entityType, since)
	if err != nil {
		return nil, fmt.Errorf("building fetch changes query: %w", err)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		p.logger.Err(err).Str("func", "postgresAuthority.FetchChangedSince").Str("entity_type", entityType).Msg("query failed")
		return nil, mapPostgresError("fetch changes", err)
	}
	defer rows.Close()

	var records []models.RemoteRecord
	for rows.Next() {
		record, err := scanRemoteRecord(rows, entityType)
		if err != nil {
			return nil, mapPostgresError("scan changes", err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, mapPostgresError("iterate changes", err)
	}

	return records, nil
}

// Fetch implements [RemoteAuthority].
func (p *postgresAuthority) Fetch(ctx context.Context, entityType, id string) (*models.RemoteRecord, error) {
	if err := checkEntityType(entityType); err != nil {
		return nil, err
	}
	query, args, err := buildFetchQuery(entityType, id)
	if err != nil {
		return nil, fmt.Errorf("building fetch query: %w", err)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	record, err := scanRemoteRecord(p.db.QueryRowContext(ctx, query, args...), entityType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPostgresError("fetch record", err)
	}

	return &record, nil
}

// Create implements [RemoteAuthority]. A taken id is a conflict.
func (p *postgresAuthority) Create(ctx context.Context, entityType, id string, payload json.RawMessage) (models.CreateResult, error) {
	if err := checkEntityType(entityType); err != nil {
		return models.CreateResult{}, err
	}
	query, args, err := buildCreateQuery(entityType, id, payload)
	if err != nil {
		return models.CreateResult{}, fmt.Errorf("building create query: %w", err)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	var result models.CreateResult
	err = p.db.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.Version)
	if isUniqueViolation(err) {
		return models.CreateResult{}, &ConflictError{EntityType: entityType, ID: id, Detail: "id already exists"}
	}
	if err != nil {
		p.logger.Err(err).Str("func", "postgresAuthority.Create").Str("entity_type", entityType).Str("entity_id", id).Msg("insert failed")
		return models.CreateResult{}, mapPostgresError("create record", err)
	}

	return result, nil
}

// Update implements [RemoteAuthority].
func (p *postgresAuthority) Update(ctx context.Context, entityType, id string, payload json.RawMessage, expectedVersion int64) (int64, error) {
	if err := checkEntityType(entityType); err != nil {
		return 0, err
	}
	return p.lockedWrite(ctx, "update record", lockedWriteQuery(updateRemoteRecord, entityType),
		entityType, id, expectedVersion, id, string(payload), expectedVersion)
}

// Delete implements [RemoteAuthority]. Rows are soft deleted so that other
// clients see the delete in their next pull.
func (p *postgresAuthority) Delete(ctx context.Context, entityType, id string, expectedVersion int64) error {
	if err := checkEntityType(entityType); err != nil {
		return err
	}
	_, err := p.lockedWrite(ctx, "delete record", lockedWriteQuery(deleteRemoteRecord, entityType),
		entityType, id, expectedVersion, id, expectedVersion)
	return err
}

// Close implements [ClosableAuthority].
func (p *postgresAuthority) Close() error {
	return p.db.Close()
}

func (p *postgresAuthority) lockedWrite(ctx context.Context, op, query, entityType, id string, expectedVersion int64, args ...any) (int64, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	var updated, current sql.NullInt64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&updated, &current); err != nil {
		p.logger.Err(err).Str("func", "postgresAuthority.lockedWrite").Str("entity_type", entityType).Str("entity_id", id).Msg(op + " failed")
		return 0, mapPostgresError(op, err)
	}

	switch {
	case updated.Valid:
		return updated.Int64, nil
	case !current.Valid:
		return 0, fmt.Errorf("%s %s/%s: %w", op, entityType, id, ErrNotFound)
	default:
		return 0, &ConflictError{
			EntityType: entityType,
			ID:         id,
			Detail:     fmt.Sprintf("expected version %d, remote has %d", expectedVersion, current.Int64),
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRemoteRecord(row rowScanner, entityType string) (models.RemoteRecord, error) {
	var (
		record  models.RemoteRecord
		payload []byte
	)
	if err := row.Scan(&record.ID, &payload, &record.Version, &record.UpdatedAt, &record.Deleted); err != nil {
		return models.RemoteRecord{}, err
	}

	record.EntityType = entityType
	record.Payload = json.RawMessage(payload)
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func checkEntityType(entityType string) error {
	if !models.IsKnownEntityType(entityType) {
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
