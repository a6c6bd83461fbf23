package domain

import (
	"fmt"
	"time"
)

// EntitySyncResult is the outcome of syncing one entity type in a session.
type EntitySyncResult struct {
	EntityType EntityType
	Success    bool

	// ModifiedSince is the watermark the source was asked for.
	// Nil means a full pull.
	ModifiedSince *time.Time

	// Page is the source page read with ModifiedSince.
	Page int

	RecordsProcessed int
	RecordsInserted  int
	RecordsUpdated   int
	RecordsSkipped   int
	RecordsFailed    int
	APICalls         int
	RateLimitHits    int

	// HasMoreRecords means the source had more pages than this run read.
	HasMoreRecords bool

	Duration time.Duration
	Error    string
}

// SyncResult is returned by both orchestrator entry points.
type SyncResult struct {
	SessionID string
	Status    SessionStatus

	// Success is true only if no entity failed and the run was not aborted.
	Success bool

	EntitiesProcessed     int
	TotalRecordsProcessed int
	TotalAPICalls         int
	TotalDuration         time.Duration
	SuccessRate           float64
	EntityResults         []EntitySyncResult

	// EntitiesWithMoreRecords lists entities left with unread pages.
	EntitiesWithMoreRecords []EntityType

	// Errors holds "entityType: message" strings for display.
	Errors []string
}

// FailedEntities returns the entity types whose sync failed.
func (r *SyncResult) FailedEntities() []EntityType {
	var failed []EntityType
	for i := range r.EntityResults {
		if !r.EntityResults[i].Success {
			failed = append(failed, r.EntityResults[i].EntityType)
		}
	}
	return failed
}

// EntityError formats an entity-level error for SyncResult.Errors.
func EntityError(entity EntityType, msg string) string {
	return fmt.Sprintf("%s: %s", entity, msg)
}

// SuccessRate returns succeeded/attempted as a percentage.
// Zero attempts yields zero.
func SuccessRate(succeeded, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(succeeded) / float64(attempted) * 100
}
