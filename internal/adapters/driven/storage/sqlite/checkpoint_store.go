package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// checkpointStore implements driven.CheckpointStore.
type checkpointStore struct {
	store *Store
}

var _ driven.CheckpointStore = (*checkpointStore)(nil)

const checkpointColumns = `entity_type, last_updated_utc, records_processed, has_more_records,
	sync_status, last_sync_started_at, last_sync_completed_at, last_successful_sync_at,
	total_sync_count, error_count, rate_limit_hits, next_page`

// Get retrieves the checkpoint for an entity type.
func (s *checkpointStore) Get(ctx context.Context, entity domain.EntityType) (*domain.SyncCheckpoint, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+checkpointColumns+" FROM sync_checkpoints WHERE entity_type = ?", string(entity))

	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// Upsert applies a partial update in one statement so concurrent updates
// never lose counter increments. Nil fields keep the stored value and
// last_successful_sync_at only moves forward.
func (s *checkpointStore) Upsert(ctx context.Context, entity domain.EntityType, u domain.CheckpointUpdate) error {
	var hasMore, status, nextPage any
	if u.HasMoreRecords != nil {
		hasMore = boolToInt(*u.HasMoreRecords)
	}
	if u.NextPage != nil {
		nextPage = *u.NextPage
	}
	if u.SyncStatus != nil {
		status = string(*u.SyncStatus)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_checkpoints (`+checkpointColumns+`)
		VALUES (?1, ?2, ?3, COALESCE(?4, 0), COALESCE(?5, 'idle'), ?6, ?7, ?8, ?9, ?10, ?11, COALESCE(?12, 0))
		ON CONFLICT(entity_type) DO UPDATE SET
			last_updated_utc = COALESCE(?2, last_updated_utc),
			records_processed = records_processed + ?3,
			has_more_records = COALESCE(?4, has_more_records),
			sync_status = COALESCE(?5, sync_status),
			last_sync_started_at = COALESCE(?6, last_sync_started_at),
			last_sync_completed_at = COALESCE(?7, last_sync_completed_at),
			last_successful_sync_at = CASE
				WHEN ?8 IS NOT NULL AND (last_successful_sync_at IS NULL OR ?8 > last_successful_sync_at)
				THEN ?8 ELSE last_successful_sync_at END,
			total_sync_count = total_sync_count + ?9,
			error_count = error_count + ?10,
			rate_limit_hits = rate_limit_hits + ?11,
			next_page = COALESCE(?12, next_page)
	`, string(entity), formatTimePtr(u.LastUpdatedUTC), u.RecordsProcessedDelta, hasMore, status,
		formatTimePtr(u.LastSyncStartedAt), formatTimePtr(u.LastSyncCompletedAt),
		formatTimePtr(u.LastSuccessfulSyncAt),
		u.TotalSyncCountDelta, u.ErrorCountDelta, u.RateLimitHitsDelta, nextPage)
	if err != nil {
		return fmt.Errorf("upserting checkpoint %s: %w", entity, err)
	}
	return nil
}

// List returns all checkpoints ordered by entity type.
func (s *checkpointStore) List(ctx context.Context) ([]domain.SyncCheckpoint, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+checkpointColumns+" FROM sync_checkpoints ORDER BY entity_type")
	if err != nil {
		return nil, fmt.Errorf("querying checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []domain.SyncCheckpoint //nolint:prealloc // size unknown from query
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, *cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating checkpoints: %w", err)
	}
	return checkpoints, nil
}

// EnsureCheckpoints creates idle checkpoints for missing entity types.
func (s *checkpointStore) EnsureCheckpoints(ctx context.Context, entities []domain.EntityType) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, e := range entities {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO sync_checkpoints (entity_type, sync_status) VALUES (?, ?)",
			string(e), string(domain.SyncStatusIdle)); err != nil {
			return fmt.Errorf("ensuring checkpoint %s: %w", e, err)
		}
	}
	return tx.Commit()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner) (*domain.SyncCheckpoint, error) {
	var cp domain.SyncCheckpoint
	var entity, status string
	var lastUpdated, started, completed, success sql.NullString
	var hasMore int

	if err := row.Scan(&entity, &lastUpdated, &cp.RecordsProcessed, &hasMore,
		&status, &started, &completed, &success,
		&cp.TotalSyncCount, &cp.ErrorCount, &cp.RateLimitHits, &cp.NextPage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning checkpoint: %w", err)
	}

	cp.EntityType = domain.EntityType(entity)
	cp.SyncStatus = domain.SyncStatus(status)
	cp.HasMoreRecords = hasMore == 1
	cp.LastUpdatedUTC = parseNullableTime(lastUpdated)
	cp.LastSyncStartedAt = parseNullableTime(started)
	cp.LastSyncCompletedAt = parseNullableTime(completed)
	cp.LastSuccessfulSyncAt = parseNullableTime(success)
	return &cp, nil
}
