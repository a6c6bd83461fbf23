package domain

import "time"

// SessionType describes what triggered a sync session.
type SessionType string

// Session types.
const (
	SessionTypeManual    SessionType = "manual"
	SessionTypeScheduled SessionType = "scheduled"
	SessionTypeInitial   SessionType = "initial"
)

// IsValid returns true if the session type is recognised.
func (t SessionType) IsValid() bool {
	switch t {
	case SessionTypeManual, SessionTypeScheduled, SessionTypeInitial:
		return true
	default:
		return false
	}
}

// SyncScope describes which entities a session targets.
type SyncScope string

// Sync scopes.
const (
	SyncScopeFull           SyncScope = "full"
	SyncScopeIncremental    SyncScope = "incremental"
	SyncScopeEntitySpecific SyncScope = "entity_specific"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

// Session statuses. Running is the only unsealed status.
const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusPartial   SessionStatus = "partial"
	SessionStatusError     SessionStatus = "error"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// SyncSession is one end-to-end orchestrator invocation.
// It is created running and sealed exactly once.
type SyncSession struct {
	ID             string
	SessionType    SessionType
	SyncScope      SyncScope
	TargetEntities []EntityType
	Status         SessionStatus
	TenantID       string
	InitiatedBy    string
	StartedAt      time.Time

	CompletedAt           time.Time
	TotalDurationSeconds  float64
	TotalRecordsProcessed int
	TotalAPICalls         int

	// SuccessRate is the percentage of attempted entities that succeeded.
	SuccessRate float64
}

// IsSealed reports whether the session has left the running state.
func (s *SyncSession) IsSealed() bool {
	return s.Status != SessionStatusRunning
}

// SessionSeal carries the fields written when a session is sealed.
type SessionSeal struct {
	Status                SessionStatus
	CompletedAt           time.Time
	TotalDurationSeconds  float64
	TotalRecordsProcessed int
	TotalAPICalls         int
	SuccessRate           float64
}

// SessionTotals are the run counters of a session, written separately when
// the session was sealed from outside before the run finished.
type SessionTotals struct {
	TotalRecordsProcessed int
	TotalAPICalls         int
	SuccessRate           float64
}

// ApplyTotals copies the counters onto the session, leaving its status alone.
func (s *SyncSession) ApplyTotals(t SessionTotals) {
	s.TotalRecordsProcessed = t.TotalRecordsProcessed
	s.TotalAPICalls = t.TotalAPICalls
	s.SuccessRate = t.SuccessRate
}

// Apply copies the seal onto the session.
func (s *SyncSession) Apply(seal SessionSeal) {
	s.Status = seal.Status
	s.CompletedAt = seal.CompletedAt
	s.TotalDurationSeconds = seal.TotalDurationSeconds
	s.TotalRecordsProcessed = seal.TotalRecordsProcessed
	s.TotalAPICalls = seal.TotalAPICalls
	s.SuccessRate = seal.SuccessRate
}

// SyncLog records one entity attempt within a session.
type SyncLog struct {
	ID            string
	SyncSessionID string
	EntityType    EntityType
	SyncStatus    SyncStatus
	InitiatedBy   string
	StartedAt     time.Time

	CompletedAt      time.Time
	DurationSeconds  float64
	RecordsProcessed int
	RecordsInserted  int
	RecordsUpdated   int
	RecordsSkipped   int
	RecordsFailed    int
	APICallsMade     int
	RateLimitHits    int
	ErrorMessage     string
}

// SyncLogCompletion carries the fields written when a log entry is closed.
type SyncLogCompletion struct {
	SyncStatus       SyncStatus
	CompletedAt      time.Time
	DurationSeconds  float64
	RecordsProcessed int
	RecordsInserted  int
	RecordsUpdated   int
	RecordsSkipped   int
	RecordsFailed    int
	APICallsMade     int
	RateLimitHits    int
	ErrorMessage     string
}

// Apply copies the completion onto the log.
func (l *SyncLog) Apply(c SyncLogCompletion) {
	l.SyncStatus = c.SyncStatus
	l.CompletedAt = c.CompletedAt
	l.DurationSeconds = c.DurationSeconds
	l.RecordsProcessed = c.RecordsProcessed
	l.RecordsInserted = c.RecordsInserted
	l.RecordsUpdated = c.RecordsUpdated
	l.RecordsSkipped = c.RecordsSkipped
	l.RecordsFailed = c.RecordsFailed
	l.APICallsMade = c.APICallsMade
	l.RateLimitHits = c.RateLimitHits
	l.ErrorMessage = c.ErrorMessage
}
