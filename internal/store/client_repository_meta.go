package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/logger"
)

type syncMetaRepository struct {
	*DB
	logger *logger.Logger
}

func NewSyncMetaRepository(db *DB, logger *logger.Logger) SyncMetaRepository {
	return &syncMetaRepository{
		DB:     db,
		logger: logger,
	}
}

// LastSyncAt returns nil when no pull has ever completed.
func (s *syncMetaRepository) LastSyncAt(ctx context.Context) (*time.Time, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, getSyncMeta, lastSyncAtKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncMetaRepository.LastSyncAt").
			Msg("failed to read last sync time")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s %q: %w", ErrScanningRow, lastSyncAtKey, value, err)
	}

	return &at, nil
}

func (s *syncMetaRepository) SetLastSyncAt(ctx context.Context, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, setSyncMeta, lastSyncAtKey, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncMetaRepository.SetLastSyncAt").
			Msg("failed to persist last sync time")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
