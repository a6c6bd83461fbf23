package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore and driven.SyncLogStore.
type sessionStore struct {
	store *Store
}

var (
	_ driven.SessionStore = (*sessionStore)(nil)
	_ driven.SyncLogStore = (*sessionStore)(nil)
)

const sessionColumns = `id, session_type, sync_scope, target_entities, status, tenant_id, initiated_by,
	started_at, completed_at, total_duration_seconds, total_records_processed, total_api_calls, success_rate`

const logColumns = `id, sync_session_id, entity_type, sync_status, initiated_by, started_at, completed_at,
	duration_seconds, records_processed, records_inserted, records_updated, records_skipped,
	records_failed, api_calls_made, rate_limit_hits, error_message`

// ==================== Sessions ====================

// CreateSession stores a new running session.
func (s *sessionStore) CreateSession(ctx context.Context, session *domain.SyncSession) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	targets, err := json.Marshal(session.TargetEntities)
	if err != nil {
		return fmt.Errorf("marshalling target entities: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, string(session.SessionType), string(session.SyncScope), string(targets),
		string(session.Status), nullString(session.TenantID), nullString(session.InitiatedBy),
		formatTime(session.StartedAt), formatNullableTime(session.CompletedAt),
		session.TotalDurationSeconds, session.TotalRecordsProcessed, session.TotalAPICalls,
		session.SuccessRate)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// SealSession moves a running session to its final status. Only a
// running session can be sealed.
func (s *sessionStore) SealSession(ctx context.Context, id string, seal domain.SessionSeal) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_sessions SET
			status = ?, completed_at = ?, total_duration_seconds = ?,
			total_records_processed = ?, total_api_calls = ?, success_rate = ?
		WHERE id = ? AND status = ?
	`, string(seal.Status), formatNullableTime(seal.CompletedAt), seal.TotalDurationSeconds,
		seal.TotalRecordsProcessed, seal.TotalAPICalls, seal.SuccessRate,
		id, string(domain.SessionStatusRunning))
	if err != nil {
		return fmt.Errorf("sealing session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sealing session: %w", err)
	}
	if n > 0 {
		return nil
	}

	existing, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s is %s", domain.ErrSessionSealed, id, existing.Status)
}

// UpdateTotals overwrites the run counters of a session whatever its status.
func (s *sessionStore) UpdateTotals(ctx context.Context, id string, t domain.SessionTotals) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_sessions SET
			total_records_processed = ?, total_api_calls = ?, success_rate = ?
		WHERE id = ?
	`, t.TotalRecordsProcessed, t.TotalAPICalls, t.SuccessRate, id)
	if err != nil {
		return fmt.Errorf("updating session totals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating session totals: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.SyncSession, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sync_sessions WHERE id = ?", id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return session, err
}

// ListSessions returns sessions ordered by start time descending.
// A limit of zero or less returns every session.
func (s *sessionStore) ListSessions(ctx context.Context, limit int) ([]domain.SyncSession, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sync_sessions ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.SyncSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row rowScanner) (*domain.SyncSession, error) {
	var session domain.SyncSession
	var sessionType, scope, targets, status, startedAt string
	var tenantID, initiatedBy, completedAt sql.NullString

	if err := row.Scan(&session.ID, &sessionType, &scope, &targets, &status, &tenantID,
		&initiatedBy, &startedAt, &completedAt, &session.TotalDurationSeconds,
		&session.TotalRecordsProcessed, &session.TotalAPICalls, &session.SuccessRate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	if err := json.Unmarshal([]byte(targets), &session.TargetEntities); err != nil {
		return nil, fmt.Errorf("unmarshalling target entities: %w", err)
	}
	session.SessionType = domain.SessionType(sessionType)
	session.SyncScope = domain.SyncScope(scope)
	session.Status = domain.SessionStatus(status)
	session.TenantID = tenantID.String
	session.InitiatedBy = initiatedBy.String
	session.StartedAt = parseTime(startedAt)
	session.CompletedAt = parseNullableTime(completedAt)
	return &session, nil
}

// ==================== Logs ====================

// CreateLog stores a new running log entry.
func (s *sessionStore) CreateLog(ctx context.Context, log *domain.SyncLog) error {
	if log == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_logs (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.SyncSessionID, string(log.EntityType), string(log.SyncStatus),
		nullString(log.InitiatedBy), formatTime(log.StartedAt), formatNullableTime(log.CompletedAt),
		log.DurationSeconds, log.RecordsProcessed, log.RecordsInserted, log.RecordsUpdated,
		log.RecordsSkipped, log.RecordsFailed, log.APICallsMade, log.RateLimitHits,
		nullString(log.ErrorMessage))
	if err != nil {
		return fmt.Errorf("creating sync log: %w", err)
	}
	return nil
}

// CompleteLog records the outcome of a log entry.
func (s *sessionStore) CompleteLog(ctx context.Context, id string, c domain.SyncLogCompletion) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_logs SET
			sync_status = ?, completed_at = ?, duration_seconds = ?,
			records_processed = ?, records_inserted = ?, records_updated = ?,
			records_skipped = ?, records_failed = ?, api_calls_made = ?,
			rate_limit_hits = ?, error_message = ?
		WHERE id = ?
	`, string(c.SyncStatus), formatNullableTime(c.CompletedAt), c.DurationSeconds,
		c.RecordsProcessed, c.RecordsInserted, c.RecordsUpdated,
		c.RecordsSkipped, c.RecordsFailed, c.APICallsMade,
		c.RateLimitHits, nullString(c.ErrorMessage), id)
	if err != nil {
		return fmt.Errorf("completing sync log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("completing sync log: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLogs returns the log entries of a session in creation order.
func (s *sessionStore) ListLogs(ctx context.Context, sessionID string) ([]domain.SyncLog, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+logColumns+" FROM sync_logs WHERE sync_session_id = ? ORDER BY rowid", sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.SyncLog //nolint:prealloc // size unknown from query
	for rows.Next() {
		var log domain.SyncLog
		var entity, status, startedAt string
		var initiatedBy, completedAt, errMsg sql.NullString
		if err := rows.Scan(&log.ID, &log.SyncSessionID, &entity, &status, &initiatedBy,
			&startedAt, &completedAt, &log.DurationSeconds, &log.RecordsProcessed,
			&log.RecordsInserted, &log.RecordsUpdated, &log.RecordsSkipped, &log.RecordsFailed,
			&log.APICallsMade, &log.RateLimitHits, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		log.EntityType = domain.EntityType(entity)
		log.SyncStatus = domain.SyncStatus(status)
		log.InitiatedBy = initiatedBy.String
		log.StartedAt = parseTime(startedAt)
		log.CompletedAt = parseNullableTime(completedAt)
		log.ErrorMessage = errMsg.String
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync logs: %w", err)
	}
	return logs, nil
}
