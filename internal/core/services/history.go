package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.SyncHistory = (*HistoryService)(nil)

// HistoryService reads checkpoints, sessions and logs.
type HistoryService struct {
	registry    *EntityRegistry
	checkpoints driven.CheckpointStore
	sessions    driven.SessionStore
	logs        driven.SyncLogStore
	now         func() time.Time
}

// NewHistoryService creates a new history service.
func NewHistoryService(
	registry *EntityRegistry,
	checkpoints driven.CheckpointStore,
	sessions driven.SessionStore,
	logs driven.SyncLogStore,
) *HistoryService {
	return &HistoryService{
		registry:    registry,
		checkpoints: checkpoints,
		sessions:    sessions,
		logs:        logs,
		now:         time.Now,
	}
}

// Checkpoints returns the state of every registered entity type in
// priority order. Entities that have never been synced get an idle row.
func (h *HistoryService) Checkpoints(ctx context.Context) ([]driving.CheckpointStatus, error) {
	stored, err := h.checkpoints.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	byType := make(map[domain.EntityType]domain.SyncCheckpoint, len(stored))
	for _, cp := range stored {
		byType[cp.EntityType] = cp
	}

	now := h.now()
	out := make([]driving.CheckpointStatus, 0, len(stored))
	for _, cfg := range h.registry.All() {
		cp, ok := byType[cfg.EntityType]
		if !ok {
			cp = domain.NewCheckpoint(cfg.EntityType)
		}
		status := driving.CheckpointStatus{
			SyncCheckpoint: cp,
			Overdue:        cp.IsDue(cfg.SyncInterval(), now),
		}
		if cp.HasWatermark() {
			status.NextDueAt = cp.LastSuccessfulSyncAt.Add(cfg.SyncInterval())
		}
		out = append(out, status)
	}
	return out, nil
}

// Sessions returns recent sessions, most recent first.
func (h *HistoryService) Sessions(ctx context.Context, limit int) ([]domain.SyncSession, error) {
	return h.sessions.ListSessions(ctx, limit)
}

// Session returns a session and its per-entity logs.
func (h *HistoryService) Session(ctx context.Context, id string) (*driving.SessionDetail, error) {
	session, err := h.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	logs, err := h.logs.ListLogs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list logs for %s: %w", id, err)
	}
	return &driving.SessionDetail{Session: *session, Logs: logs}, nil
}

// CancelSession seals a running session as cancelled. The entity being
// synced when it is cancelled runs to completion; no further entities start.
func (h *HistoryService) CancelSession(ctx context.Context, id string) error {
	session, err := h.sessions.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("get session %s: %w", id, err)
	}
	now := h.now()
	return h.sessions.SealSession(ctx, id, domain.SessionSeal{
		Status:                domain.SessionStatusCancelled,
		CompletedAt:           now,
		TotalDurationSeconds:  now.Sub(session.StartedAt).Seconds(),
		TotalRecordsProcessed: session.TotalRecordsProcessed,
		TotalAPICalls:         session.TotalAPICalls,
	})
}
