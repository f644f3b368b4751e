package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/models"
)

type localRecordRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

func NewLocalRecordRepository(db *DB, logger *logger.Logger) LocalRecordRepository {
	return &localRecordRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocalRecord(row rowScanner) (models.LocalRecord, error) {
	var (
		record        models.LocalRecord
		payload       []byte
		remoteVersion sql.NullInt64
	)

	err := row.Scan(
		&record.EntityType,
		&record.ID,
		&payload,
		&remoteVersion,
		&record.Dirty,
		&record.Tombstone,
		&record.UpdatedAt,
	)
	if err != nil {
		return models.LocalRecord{}, err
	}

	record.Payload = nonEmpty(payload)
	if remoteVersion.Valid {
		record.RemoteVersion = models.Int64Ptr(remoteVersion.Int64)
	}

	return record, nil
}

func (l *localRecordRepository) Get(ctx context.Context, entityType, id string) (models.LocalRecord, bool, error) {
	log := logger.FromContext(ctx)

	record, err := scanLocalRecord(l.DB.QueryRowContext(ctx, getLocalRecord, entityType, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalRecord{}, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Get").
			Str("entity_type", entityType).
			Str("entity_id", id).
			Msg("failed to read local record")
		return models.LocalRecord{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, true, nil
}

func (l *localRecordRepository) Query(ctx context.Context, entityType string, filter models.RecordFilter) ([]models.LocalRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildQueryLocalRecordsQuery(entityType, filter)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Query").
			Str("entity_type", entityType).
			Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := l.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Query").
			Str("entity_type", entityType).
			Msg("failed to execute query for local records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.LocalRecord, 0)
	for rows.Next() {
		record, scanErr := scanLocalRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localRecordRepository.Query").
				Str("entity_type", entityType).
				Msg("failed to scan local record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		if filter.Match != nil && !filter.Match(record) {
			continue
		}

		records = append(records, record)
		if filter.Match != nil && filter.Limit > 0 && uint64(len(records)) >= filter.Limit {
			break
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localRecordRepository.Query").
			Str("entity_type", entityType).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

func (l *localRecordRepository) Put(ctx context.Context, entityType, id string, payload []byte, opts models.PutOptions) error {
	log := logger.FromContext(ctx)

	if len(payload) == 0 {
		payload = []byte("null")
	}

	var remoteVersion any
	if opts.RemoteVersion != nil {
		remoteVersion = *opts.RemoteVersion
	}

	_, err := l.DB.ExecContext(ctx, putLocalRecord,
		entityType,
		id,
		payload,
		remoteVersion,
		opts.Dirty,
		l.now().UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Put").
			Str("entity_type", entityType).
			Str("entity_id", id).
			Bool("dirty", opts.Dirty).
			Msg("failed to upsert local record")
		return fmt.Errorf("%w: put %s/%s: %w", ErrExecutingStatement, entityType, id, err)
	}

	return nil
}

func (l *localRecordRepository) MarkDeleted(ctx context.Context, entityType, id string) error {
	log := logger.FromContext(ctx)

	_, err := l.DB.ExecContext(ctx, markLocalRecordDeleted, entityType, id, l.now().UTC())
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.MarkDeleted").
			Str("entity_type", entityType).
			Str("entity_id", id).
			Msg("failed to tombstone local record")
		return fmt.Errorf("%w: mark deleted %s/%s: %w", ErrExecutingStatement, entityType, id, err)
	}

	return nil
}

func (l *localRecordRepository) Purge(ctx context.Context, entityType, id string) error {
	log := logger.FromContext(ctx)

	_, err := l.DB.ExecContext(ctx, purgeLocalRecord, entityType, id)
	if err != nil {
		log.Err(err).
			Str("func", "localRecordRepository.Purge").
			Str("entity_type", entityType).
			Str("entity_id", id).
			Msg("failed to purge local record")
		return fmt.Errorf("%w: purge %s/%s: %w", ErrExecutingStatement, entityType, id, err)
	}

	return nil
}

func (l *localRecordRepository) SyncStatusSnapshot(ctx context.Context) (models.SyncStatusSnapshot, error) {
	var snapshot models.SyncStatusSnapshot

	if err := l.DB.QueryRowContext(ctx, countUnsyncedRecords).Scan(&snapshot.UnsyncedRecords); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "localRecordRepository.SyncStatusSnapshot").
			Msg("failed to count unsynced records")
		return models.SyncStatusSnapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return snapshot, nil
}

// nonEmpty maps zero-length blobs to nil so that absent payloads stay absent.
func nonEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

// nullable binds absent payloads as SQL NULL.
func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
