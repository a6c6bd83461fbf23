package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// EntitySyncer syncs a single entity type: one source page per call.
type EntitySyncer struct {
	source      driven.AccountingSource
	checkpoints driven.CheckpointStore
	logs        driven.SyncLogStore
	writer      driven.StagingWriter

	now   func() time.Time
	newID func() string
}

// NewEntitySyncer creates a new entity syncer.
func NewEntitySyncer(
	source driven.AccountingSource,
	checkpoints driven.CheckpointStore,
	logs driven.SyncLogStore,
	writer driven.StagingWriter,
) *EntitySyncer {
	return &EntitySyncer{
		source:      source,
		checkpoints: checkpoints,
		logs:        logs,
		writer:      writer,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// attempt accumulates the outcome of one Sync call.
type attempt struct {
	result    domain.EntitySyncResult
	fetched   *domain.FetchResult
	startedAt time.Time
	err       error
}

// Sync runs one attempt for cfg within a session. It never returns an
// error: failures are reported in the result so the caller can carry on
// with the next entity. Exactly one checkpoint update and one log
// completion are written per call, whatever the outcome.
func (s *EntitySyncer) Sync(
	ctx context.Context, sessionID, initiatedBy string, cfg domain.EntityConfig, forceFullSync bool,
) (result domain.EntitySyncResult) {
	a := &attempt{
		result:    domain.EntitySyncResult{EntityType: cfg.EntityType},
		startedAt: s.now(),
	}

	// Bookkeeping must land even if the caller's context is cancelled.
	bookCtx := context.WithoutCancel(ctx)

	// 1. Mark running
	if err := s.checkpoints.Upsert(bookCtx, cfg.EntityType, domain.CheckpointUpdate{
		SyncStatus:        domain.Ptr(domain.SyncStatusRunning),
		LastSyncStartedAt: domain.Ptr(a.startedAt),
	}); err != nil {
		logger.Warn("Failed to mark %s running: %v", cfg.EntityType, err)
	}

	// 2. Resolve watermark
	a.result.ModifiedSince, a.result.Page = s.modifiedSince(ctx, cfg, forceFullSync)

	// 3. Open log
	logID := s.newID()
	if err := s.logs.CreateLog(bookCtx, &domain.SyncLog{
		ID:            logID,
		SyncSessionID: sessionID,
		EntityType:    cfg.EntityType,
		SyncStatus:    domain.SyncStatusRunning,
		InitiatedBy:   initiatedBy,
		StartedAt:     a.startedAt,
	}); err != nil {
		logger.Warn("Failed to create sync log for %s: %v", cfg.EntityType, err)
	}

	defer func() {
		if r := recover(); r != nil {
			a.err = fmt.Errorf("panic: %v", r)
		}
		s.finish(bookCtx, logID, cfg, a)
		result = a.result
	}()

	// 4-6. Fetch and stage
	a.err = s.fetchAndStage(ctx, cfg, a)
	return a.result
}

// modifiedSince returns the cursor to request changes from, or nil for a
// full pull, and the page to read with it. A checkpoint read failure
// degrades to a full pull.
func (s *EntitySyncer) modifiedSince(
	ctx context.Context, cfg domain.EntityConfig, forceFullSync bool,
) (*time.Time, int) {
	if !cfg.SupportsIncrementalSync || forceFullSync {
		return nil, 1
	}

	cp, err := s.checkpoints.Get(ctx, cfg.EntityType)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Checkpoint read failed for %s, doing full sync: %v", cfg.EntityType, err)
		}
		return nil, 1
	}
	if !cp.HasWatermark() {
		return nil, 1
	}

	// Continue from the last page's high-water mark when pages remain.
	if cp.HasMoreRecords && !cp.LastUpdatedUTC.IsZero() {
		since := cp.LastUpdatedUTC
		return &since, max(cp.NextPage, 1)
	}
	since := cp.LastSuccessfulSyncAt
	return &since, 1
}

func (s *EntitySyncer) fetchAndStage(ctx context.Context, cfg domain.EntityConfig, a *attempt) error {
	switch {
	case a.result.ModifiedSince != nil && a.result.Page > 1:
		logger.Info("Syncing %s modified since %s, page %d", cfg.EntityType,
			a.result.ModifiedSince.Format(time.RFC3339), a.result.Page)
	case a.result.ModifiedSince != nil:
		logger.Info("Syncing %s modified since %s", cfg.EntityType, a.result.ModifiedSince.Format(time.RFC3339))
	default:
		logger.Info("Syncing %s (full)", cfg.EntityType)
	}

	fetched, err := s.source.Fetch(ctx, cfg.EntityType, domain.FetchOptions{
		ModifiedSince:   a.result.ModifiedSince,
		PageSize:        cfg.BatchSize,
		Page:            a.result.Page,
		IncludeArchived: false,
	})
	if fetched != nil {
		a.result.APICalls = fetched.APICalls
		a.result.RateLimitHits = fetched.RateLimitHits
	}
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	a.fetched = fetched
	a.result.HasMoreRecords = fetched.HasMoreRecords

	var written domain.WriteResult
	defer func() {
		a.result.RecordsInserted = written.Inserted
		a.result.RecordsUpdated = written.Updated
		a.result.RecordsSkipped = written.Skipped
		a.result.RecordsFailed = written.Failed
		a.result.RecordsProcessed = written.Processed()
	}()

	records := fetched.Records
	for start := 0; start < len(records); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(records))
		res, err := s.writer.Upsert(ctx, cfg, records[start:end])
		if err != nil {
			written.Failed += len(records) - start
			return fmt.Errorf("%w: %w", domain.ErrStagingWrite, err)
		}
		written.Add(*res)
	}

	if written.Failed > 0 {
		msg := fmt.Sprintf("%d of %d records failed to stage", written.Failed, written.Processed())
		if len(written.Errors) > 0 {
			msg += ": " + written.Errors[0]
		}
		return errors.New(msg)
	}
	return nil
}

// finish closes the log and updates the checkpoint.
func (s *EntitySyncer) finish(ctx context.Context, logID string, cfg domain.EntityConfig, a *attempt) {
	completedAt := s.now()
	a.result.Success = a.err == nil
	a.result.Duration = completedAt.Sub(a.startedAt)

	status := domain.SyncStatusCompleted
	if a.err != nil {
		status = domain.SyncStatusError
		a.result.Error = a.err.Error()
		logger.Warn("Sync of %s failed: %v", cfg.EntityType, a.err)
	} else {
		logger.Info("Synced %s: %d processed (%d inserted, %d updated, %d skipped)",
			cfg.EntityType, a.result.RecordsProcessed, a.result.RecordsInserted,
			a.result.RecordsUpdated, a.result.RecordsSkipped)
	}
	if a.result.HasMoreRecords {
		logger.Warn("%s has more records than one page; the next run will continue", cfg.EntityType)
	}

	// 7. Close log
	if err := s.logs.CompleteLog(ctx, logID, domain.SyncLogCompletion{
		SyncStatus:       status,
		CompletedAt:      completedAt,
		DurationSeconds:  a.result.Duration.Seconds(),
		RecordsProcessed: a.result.RecordsProcessed,
		RecordsInserted:  a.result.RecordsInserted,
		RecordsUpdated:   a.result.RecordsUpdated,
		RecordsSkipped:   a.result.RecordsSkipped,
		RecordsFailed:    a.result.RecordsFailed,
		APICallsMade:     a.result.APICalls,
		RateLimitHits:    a.result.RateLimitHits,
		ErrorMessage:     a.result.Error,
	}); err != nil {
		logger.Warn("Failed to complete sync log for %s: %v", cfg.EntityType, err)
	}

	// 8. Update checkpoint
	update := domain.CheckpointUpdate{
		SyncStatus:            domain.Ptr(status),
		LastSyncCompletedAt:   domain.Ptr(completedAt),
		RecordsProcessedDelta: int64(a.result.RecordsProcessed),
		TotalSyncCountDelta:   1,
		RateLimitHitsDelta:    a.result.RateLimitHits,
	}
	if a.fetched != nil {
		update.LastUpdatedUTC, update.NextPage = continuation(a, completedAt)
		update.HasMoreRecords = domain.Ptr(a.fetched.HasMoreRecords)
	}
	if a.err == nil {
		// Changes made while this attempt ran are picked up next time.
		update.LastSuccessfulSyncAt = domain.Ptr(a.startedAt)
	} else {
		update.ErrorCountDelta = 1
	}
	if err := s.checkpoints.Upsert(ctx, cfg.EntityType, update); err != nil {
		logger.Error("Failed to update checkpoint for %s: %v", cfg.EntityType, err)
	}
}

// continuation returns the cursor and page the next run resumes from.
// A page that could not advance the cursor keeps the requested cursor and
// moves on by page; otherwise the page's high-water mark restarts at page 1.
func continuation(a *attempt, completedAt time.Time) (*time.Time, *int) {
	if a.fetched.HasMoreRecords && a.fetched.NextPage > 1 {
		if a.result.ModifiedSince != nil {
			return domain.Ptr(*a.result.ModifiedSince), domain.Ptr(a.fetched.NextPage)
		}
		// A full pull has nothing before its first page, so the page's own
		// mark selects the same records.
		if a.fetched.LastModified != nil && a.result.Page <= 1 {
			return domain.Ptr(*a.fetched.LastModified), domain.Ptr(a.fetched.NextPage)
		}
	}

	watermark := completedAt
	if a.fetched.LastModified != nil {
		watermark = *a.fetched.LastModified
	}
	return domain.Ptr(watermark), domain.Ptr(0)
}
