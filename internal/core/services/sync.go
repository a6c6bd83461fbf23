package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncRequest describes one orchestrator run.
type SyncRequest struct {
	Entities      []domain.EntityType
	InitiatedBy   string
	TenantID      string
	SessionType   domain.SessionType
	Scope         domain.SyncScope
	ForceFullSync bool
}

// SyncOrchestrator opens sessions and drives the entity syncer over each
// requested entity type in dependency order.
type SyncOrchestrator struct {
	registry    *EntityRegistry
	source      driven.AccountingSource
	checkpoints driven.CheckpointStore
	sessions    driven.SessionStore
	syncer      *EntitySyncer

	now   func() time.Time
	newID func() string

	// Status tracking. Only one run per process at a time.
	mu     sync.RWMutex
	active *driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	registry *EntityRegistry,
	source driven.AccountingSource,
	checkpoints driven.CheckpointStore,
	sessions driven.SessionStore,
	logs driven.SyncLogStore,
	writer driven.StagingWriter,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry:    registry,
		source:      source,
		checkpoints: checkpoints,
		sessions:    sessions,
		syncer:      NewEntitySyncer(source, checkpoints, logs, writer),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Registry returns the entity registry the orchestrator syncs from.
func (o *SyncOrchestrator) Registry() *EntityRegistry {
	return o.registry
}

// PerformFullSync syncs every registered entity type.
func (o *SyncOrchestrator) PerformFullSync(
	ctx context.Context, initiatedBy, tenantID string, sessionType domain.SessionType,
) (*domain.SyncResult, error) {
	if sessionType == "" {
		sessionType = domain.SessionTypeManual
	}
	return o.Run(ctx, SyncRequest{
		Entities:    o.registry.Types(),
		InitiatedBy: initiatedBy,
		TenantID:    tenantID,
		SessionType: sessionType,
		Scope:       domain.SyncScopeFull,
	})
}

// SyncSpecificEntities syncs the given entity types in dependency order.
func (o *SyncOrchestrator) SyncSpecificEntities(
	ctx context.Context, entities []domain.EntityType, initiatedBy, tenantID string, forceFullSync bool,
) (*domain.SyncResult, error) {
	return o.Run(ctx, SyncRequest{
		Entities:      entities,
		InitiatedBy:   initiatedBy,
		TenantID:      tenantID,
		SessionType:   domain.SessionTypeManual,
		Scope:         domain.SyncScopeEntitySpecific,
		ForceFullSync: forceFullSync,
	})
}

// Run executes one session. Both entry points and the scheduler use it.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Run(ctx context.Context, req SyncRequest) (*domain.SyncResult, error) {
	// Validation happens before a session exists.
	if len(req.Entities) == 0 {
		return nil, fmt.Errorf("%w: no entity types requested", domain.ErrInvalidInput)
	}
	if err := o.registry.Validate(req.Entities); err != nil {
		return nil, err
	}
	if !req.SessionType.IsValid() {
		return nil, fmt.Errorf("%w: session type %q", domain.ErrInvalidInput, req.SessionType)
	}

	order := o.registry.ResolveOrder(req.Entities)

	if err := o.begin(len(order)); err != nil {
		return nil, err
	}
	defer o.end()

	bookCtx := context.WithoutCancel(ctx)

	if err := o.checkpoints.EnsureCheckpoints(bookCtx, o.registry.Types()); err != nil {
		logger.Warn("Failed to ensure checkpoints: %v", err)
	}

	// 1. Open session
	session := &domain.SyncSession{
		ID:             o.newID(),
		SessionType:    req.SessionType,
		SyncScope:      req.Scope,
		TargetEntities: order,
		Status:         domain.SessionStatusRunning,
		TenantID:       req.TenantID,
		InitiatedBy:    req.InitiatedBy,
		StartedAt:      o.now(),
	}
	if err := o.sessions.CreateSession(bookCtx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	o.updateStatus(func(s *driving.SyncStatus) {
		s.SessionID = session.ID
		s.StartedAt = session.StartedAt
	})

	logger.Section("Sync " + session.ID)
	logger.Info("Session %s: %s sync of %d entities by %s", session.ID, req.Scope, len(order), req.InitiatedBy)

	result := &domain.SyncResult{SessionID: session.ID}

	// 2. Connect. The only fatal step.
	if err := o.source.Connect(ctx, req.TenantID); err != nil {
		if !errors.Is(err, domain.ErrSourceConnection) {
			err = fmt.Errorf("%w: %w", domain.ErrSourceConnection, err)
		}
		logger.Error("Connection to %s failed: %v", o.source.Name(), err)
		result.Errors = append(result.Errors, "connection: "+err.Error())
		o.seal(bookCtx, session, result, domain.SessionStatusError, 0)
		return result, fmt.Errorf("connect %s: %w", o.source.Name(), err)
	}

	// 3-4. Sync each entity in order
	var runErr error
	var cancelled bool
	succeeded := 0
	for _, entity := range order {
		if err := ctx.Err(); err != nil {
			runErr = err
			cancelled = true
			break
		}
		if o.cancelledAdministratively(bookCtx, session.ID) {
			logger.Warn("Session %s was cancelled, stopping before %s", session.ID, entity)
			cancelled = true
			break
		}

		cfg, _ := o.registry.Get(entity)
		o.updateStatus(func(s *driving.SyncStatus) { s.CurrentEntity = entity })

		res := o.syncer.Sync(ctx, session.ID, req.InitiatedBy, cfg, req.ForceFullSync)

		result.EntityResults = append(result.EntityResults, res)
		result.EntitiesProcessed++
		result.TotalRecordsProcessed += res.RecordsProcessed
		result.TotalAPICalls += res.APICalls
		if res.Success {
			succeeded++
		} else {
			result.Errors = append(result.Errors, domain.EntityError(entity, res.Error))
		}
		if res.HasMoreRecords {
			result.EntitiesWithMoreRecords = append(result.EntitiesWithMoreRecords, entity)
		}

		o.updateStatus(func(s *driving.SyncStatus) {
			s.EntitiesCompleted++
			s.RecordsProcessed += res.RecordsProcessed
			if !res.Success {
				s.ErrorCount++
			}
		})
	}

	// 5-6. Seal
	final := domain.SessionStatusCompleted
	switch {
	case cancelled:
		final = domain.SessionStatusCancelled
	case succeeded < result.EntitiesProcessed:
		final = domain.SessionStatusPartial
	}
	o.seal(bookCtx, session, result, final, succeeded)

	logger.Info("Session %s %s: %d/%d entities succeeded, %d records, %d API calls",
		session.ID, result.Status, succeeded, result.EntitiesProcessed,
		result.TotalRecordsProcessed, result.TotalAPICalls)
	if len(result.EntitiesWithMoreRecords) > 0 {
		logger.Warn("Entities with unread pages: %v", result.EntitiesWithMoreRecords)
	}

	return result, runErr
}

// seal writes the final session row and fills in the result.
func (o *SyncOrchestrator) seal(
	ctx context.Context, session *domain.SyncSession, result *domain.SyncResult,
	status domain.SessionStatus, succeeded int,
) {
	completedAt := o.now()
	result.TotalDuration = completedAt.Sub(session.StartedAt)
	result.SuccessRate = domain.SuccessRate(succeeded, result.EntitiesProcessed)
	result.Status = status
	result.Success = status == domain.SessionStatusCompleted

	err := o.sessions.SealSession(ctx, session.ID, domain.SessionSeal{
		Status:                status,
		CompletedAt:           completedAt,
		TotalDurationSeconds:  result.TotalDuration.Seconds(),
		TotalRecordsProcessed: result.TotalRecordsProcessed,
		TotalAPICalls:         result.TotalAPICalls,
		SuccessRate:           result.SuccessRate,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSessionSealed):
		// Cancelled from outside while the last entity ran. The cancel
		// sealed the row before any counters were known.
		result.Status = domain.SessionStatusCancelled
		result.Success = false
		if err := o.sessions.UpdateTotals(ctx, session.ID, domain.SessionTotals{
			TotalRecordsProcessed: result.TotalRecordsProcessed,
			TotalAPICalls:         result.TotalAPICalls,
			SuccessRate:           result.SuccessRate,
		}); err != nil {
			logger.Error("Failed to record totals for cancelled session %s: %v", session.ID, err)
		}
	default:
		logger.Error("Failed to seal session %s: %v", session.ID, err)
	}
}

func (o *SyncOrchestrator) cancelledAdministratively(ctx context.Context, sessionID string) bool {
	s, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return false
	}
	return s.Status == domain.SessionStatusCancelled
}

// Status returns the state of the run in progress, if any.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active == nil {
		return &driving.SyncStatus{Running: false}, nil
	}
	// Return a copy to avoid races.
	status := *o.active
	return &status, nil
}

// begin claims the process-wide run slot.
func (o *SyncOrchestrator) begin(total int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != nil {
		return fmt.Errorf("%w: session %s", domain.ErrSyncInProgress, o.active.SessionID)
	}
	o.active = &driving.SyncStatus{Running: true, EntitiesTotal: total}
	return nil
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

func (o *SyncOrchestrator) updateStatus(fn func(s *driving.SyncStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		fn(o.active)
	}
}
