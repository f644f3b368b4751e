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

type mutationQueueRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

func NewMutationQueueRepository(db *DB, logger *logger.Logger) MutationQueueRepository {
	return &mutationQueueRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func scanMutation(row rowScanner, extra ...any) (models.MutationEntry, error) {
	var (
		entry       models.MutationEntry
		payload     []byte
		baseVersion sql.NullInt64
	)

	dest := []any{
		&entry.EntityType,
		&entry.EntityID,
		&entry.Operation,
		&payload,
		&baseVersion,
		&entry.CreatedAt,
		&entry.Attempts,
		&entry.LastError,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.MutationEntry{}, err
	}

	entry.Payload = nonEmpty(payload)
	if baseVersion.Valid {
		entry.BaseVersion = models.Int64Ptr(baseVersion.Int64)
	}

	return entry, nil
}

// scanQueued reads a mutation_queue row, which carries seq after the
// shared columns.
func scanQueued(row rowScanner) (models.MutationEntry, error) {
	var seq int64
	entry, err := scanMutation(row, &seq)
	if err != nil {
		return models.MutationEntry{}, err
	}
	entry.Seq = seq
	return entry, nil
}

func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, nextMutationSeq, mutationSeqKey).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func versionArg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (m *mutationQueueRepository) Enqueue(ctx context.Context, entry models.MutationEntry) error {
	log := logger.FromContext(ctx)

	if entry.EntityType == "" || entry.EntityID == "" || !entry.Operation.Valid() {
		return fmt.Errorf("%w: %s %q", ErrInvalidMutation, entry.Key(), entry.Operation)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = m.now()
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Enqueue").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Enqueue").
			Msg("failed to take next queue sequence")
		return fmt.Errorf("%w: enqueue %s: %w", ErrExecutingStatement, entry.Key(), err)
	}

	_, err = tx.ExecContext(ctx, enqueueMutation,
		entry.EntityType,
		entry.EntityID,
		string(entry.Operation),
		nullable(entry.Payload),
		versionArg(entry.BaseVersion),
		createdAt.UTC(),
		seq,
	)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Enqueue").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Str("operation", string(entry.Operation)).
			Msg("failed to enqueue mutation")
		return fmt.Errorf("%w: enqueue %s: %w", ErrExecutingStatement, entry.Key(), err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "mutationQueueRepository.Enqueue").
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return nil
}

func (m *mutationQueueRepository) PeekAll(ctx context.Context) ([]models.MutationEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := m.DB.QueryContext(ctx, peekAllMutations)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.PeekAll").
			Msg("failed to execute query for queued mutations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.MutationEntry, 0)
	for rows.Next() {
		entry, scanErr := scanQueued(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "mutationQueueRepository.PeekAll").
				Msg("failed to scan mutation row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "mutationQueueRepository.PeekAll").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

func (m *mutationQueueRepository) Get(ctx context.Context, entityType, entityID string) (models.MutationEntry, bool, error) {
	entry, err := scanQueued(m.DB.QueryRowContext(ctx, getMutation, entityType, entityID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.MutationEntry{}, false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mutationQueueRepository.Get").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to read queued mutation")
		return models.MutationEntry{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, true, nil
}

func (m *mutationQueueRepository) Remove(ctx context.Context, entityType, entityID string) error {
	_, err := m.DB.ExecContext(ctx, removeMutation, entityType, entityID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mutationQueueRepository.Remove").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to remove queued mutation")
		return fmt.Errorf("%w: remove %s/%s: %w", ErrExecutingStatement, entityType, entityID, err)
	}

	return nil
}

func (m *mutationQueueRepository) Settle(ctx context.Context, entry models.MutationEntry) (bool, error) {
	res, err := m.DB.ExecContext(ctx, settleMutation, entry.EntityType, entry.EntityID, entry.Seq)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mutationQueueRepository.Settle").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("failed to settle queued mutation")
		return false, fmt.Errorf("%w: settle %s: %w", ErrExecutingStatement, entry.Key(), err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: settle %s: %w", ErrExecutingStatement, entry.Key(), err)
	}

	return affected > 0, nil
}

func (m *mutationQueueRepository) Rebase(ctx context.Context, entityType, entityID string, baseVersion int64) error {
	if _, err := m.DB.ExecContext(ctx, rebaseMutation, baseVersion, entityType, entityID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mutationQueueRepository.Rebase").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to rebase queued mutation")
		return fmt.Errorf("%w: rebase %s/%s: %w", ErrExecutingStatement, entityType, entityID, err)
	}

	return nil
}

func (m *mutationQueueRepository) RecordFailure(ctx context.Context, entityType, entityID string, cause error) (int, error) {
	log := logger.FromContext(ctx)

	message := ""
	if cause != nil {
		message = cause.Error()
	}

	var attempts int
	err := m.DB.QueryRowContext(ctx, recordMutationFailure, message, entityType, entityID).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s/%s", ErrMutationNotFound, entityType, entityID)
	}
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.RecordFailure").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to record mutation failure")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "mutationQueueRepository.RecordFailure").
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Int("attempts", attempts).
		Msg("recorded mutation failure")

	return attempts, nil
}

func (m *mutationQueueRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.DB.QueryRowContext(ctx, countMutations).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mutationQueueRepository.Count").
			Msg("failed to count queued mutations")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (m *mutationQueueRepository) DeadLetter(ctx context.Context, entry models.MutationEntry, reason string) error {
	log := logger.FromContext(ctx)

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.DeadLetter").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertDeadLetter,
		entry.EntityType,
		entry.EntityID,
		string(entry.Operation),
		nullable(entry.Payload),
		versionArg(entry.BaseVersion),
		entry.CreatedAt.UTC(),
		entry.Attempts,
		entry.LastError,
		reason,
		m.now().UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.DeadLetter").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("failed to insert dead letter")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, removeMutation, entry.EntityType, entry.EntityID); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.DeadLetter").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("failed to remove dead-lettered mutation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "mutationQueueRepository.DeadLetter").
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Warn().
		Str("func", "mutationQueueRepository.DeadLetter").
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Str("reason", reason).
		Msg("mutation moved to dead letters")

	return nil
}

func (m *mutationQueueRepository) ListDeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	log := logger.FromContext(ctx)

	rows, err := m.DB.QueryContext(ctx, listDeadLetters)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.ListDeadLetters").
			Msg("failed to execute query for dead letters")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	letters := make([]models.DeadLetter, 0)
	for rows.Next() {
		var letter models.DeadLetter
		entry, scanErr := scanMutation(rows, &letter.Reason, &letter.FailedAt)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "mutationQueueRepository.ListDeadLetters").
				Msg("failed to scan dead letter row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		letter.MutationEntry = entry
		letters = append(letters, letter)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "mutationQueueRepository.ListDeadLetters").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return letters, nil
}

func (m *mutationQueueRepository) Requeue(ctx context.Context, entityType, entityID string) (models.MutationEntry, error) {
	log := logger.FromContext(ctx)

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Requeue").
			Msg("failed to begin transaction")
		return models.MutationEntry{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var letter models.DeadLetter
	entry, err := scanMutation(tx.QueryRowContext(ctx, getDeadLetter, entityType, entityID), &letter.Reason, &letter.FailedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MutationEntry{}, fmt.Errorf("%w: %s/%s", ErrDeadLetterNotFound, entityType, entityID)
	}
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Requeue").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to read dead letter")
		return models.MutationEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	entry.CreatedAt = m.now().UTC()
	entry.Attempts = 0
	entry.LastError = ""

	if entry.Seq, err = nextSeq(ctx, tx); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Requeue").
			Msg("failed to take next queue sequence")
		return models.MutationEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, requeueMutation,
		entry.EntityType,
		entry.EntityID,
		string(entry.Operation),
		nullable(entry.Payload),
		versionArg(entry.BaseVersion),
		entry.CreatedAt,
		entry.Seq,
	); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Requeue").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to requeue mutation")
		return models.MutationEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err = tx.ExecContext(ctx, deleteDeadLetter, entityType, entityID); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Requeue").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to delete dead letter")
		return models.MutationEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "mutationQueueRepository.Requeue").
			Msg("failed to commit transaction")
		return models.MutationEntry{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return entry, nil
}
