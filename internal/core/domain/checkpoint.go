package domain

import "time"

// SyncStatus is the state of an entity's most recent sync attempt.
type SyncStatus string

// Checkpoint and log statuses.
const (
	SyncStatusIdle      SyncStatus = "idle"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusError     SyncStatus = "error"
	SyncStatusCancelled SyncStatus = "cancelled"
	SyncStatusPartial   SyncStatus = "partial"
)

// IsValid returns true if the status is recognised.
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusIdle, SyncStatusRunning, SyncStatusCompleted,
		SyncStatusError, SyncStatusCancelled, SyncStatusPartial:
		return true
	default:
		return false
	}
}

// SyncCheckpoint is the durable sync progress of one entity type.
// There is exactly one checkpoint per entity type.
type SyncCheckpoint struct {
	EntityType EntityType

	// LastUpdatedUTC is the source's high-water mark from the last page read.
	LastUpdatedUTC time.Time

	// RecordsProcessed is cumulative across all runs.
	RecordsProcessed int64

	// HasMoreRecords is true if the last page was full.
	HasMoreRecords bool

	// NextPage is the page to continue from with LastUpdatedUTC when the
	// last page could not advance it. Zero means the first page.
	NextPage int

	SyncStatus          SyncStatus
	LastSyncStartedAt   time.Time
	LastSyncCompletedAt time.Time

	// LastSuccessfulSyncAt only advances on fully successful runs and is
	// the watermark incremental syncs request changes since.
	LastSuccessfulSyncAt time.Time

	TotalSyncCount int
	ErrorCount     int
	RateLimitHits  int
}

// NewCheckpoint returns an idle checkpoint with zero counters.
func NewCheckpoint(entity EntityType) SyncCheckpoint {
	return SyncCheckpoint{
		EntityType: entity,
		SyncStatus: SyncStatusIdle,
	}
}

// HasWatermark reports whether a successful sync has ever completed.
func (c *SyncCheckpoint) HasWatermark() bool {
	return !c.LastSuccessfulSyncAt.IsZero()
}

// IsDue reports whether the entity has gone longer than interval without a
// successful sync. Entities that have never succeeded are always due.
func (c *SyncCheckpoint) IsDue(interval time.Duration, now time.Time) bool {
	if !c.HasWatermark() {
		return true
	}
	return !now.Before(c.LastSuccessfulSyncAt.Add(interval))
}

// CheckpointUpdate is a partial update. Nil fields are left untouched,
// delta fields are added to the stored counters.
type CheckpointUpdate struct {
	SyncStatus           *SyncStatus
	LastUpdatedUTC       *time.Time
	HasMoreRecords       *bool
	NextPage             *int
	LastSyncStartedAt    *time.Time
	LastSyncCompletedAt  *time.Time
	LastSuccessfulSyncAt *time.Time

	RecordsProcessedDelta int64
	TotalSyncCountDelta   int
	ErrorCountDelta       int
	RateLimitHitsDelta    int
}

// Apply merges the update into the checkpoint.
// LastSuccessfulSyncAt never moves backward.
func (c *SyncCheckpoint) Apply(u CheckpointUpdate) {
	if u.SyncStatus != nil {
		c.SyncStatus = *u.SyncStatus
	}
	if u.LastUpdatedUTC != nil {
		c.LastUpdatedUTC = *u.LastUpdatedUTC
	}
	if u.HasMoreRecords != nil {
		c.HasMoreRecords = *u.HasMoreRecords
	}
	if u.NextPage != nil {
		c.NextPage = *u.NextPage
	}
	if u.LastSyncStartedAt != nil {
		c.LastSyncStartedAt = *u.LastSyncStartedAt
	}
	if u.LastSyncCompletedAt != nil {
		c.LastSyncCompletedAt = *u.LastSyncCompletedAt
	}
	if u.LastSuccessfulSyncAt != nil && u.LastSuccessfulSyncAt.After(c.LastSuccessfulSyncAt) {
		c.LastSuccessfulSyncAt = *u.LastSuccessfulSyncAt
	}
	c.RecordsProcessed += u.RecordsProcessedDelta
	c.TotalSyncCount += u.TotalSyncCountDelta
	c.ErrorCount += u.ErrorCountDelta
	c.RateLimitHits += u.RateLimitHitsDelta
}

// Ptr returns a pointer to v. Handy for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}
