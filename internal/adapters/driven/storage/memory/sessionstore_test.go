package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

func newSession(id string, started time.Time) *domain.SyncSession {
	return &domain.SyncSession{
		ID:             id,
		SessionType:    domain.SessionTypeManual,
		SyncScope:      domain.SyncScopeFull,
		TargetEntities: []domain.EntityType{domain.EntityAccounts},
		Status:         domain.SessionStatusRunning,
		InitiatedBy:    "test",
		StartedAt:      started,
	}
}

func TestSessionStore_CreateAndSeal(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSession(ctx, newSession("s1", now)))
	assert.ErrorIs(t, store.CreateSession(ctx, newSession("s1", now)), domain.ErrInvalidInput)

	require.NoError(t, store.SealSession(ctx, "s1", domain.SessionSeal{
		Status:      domain.SessionStatusCompleted,
		CompletedAt: now.Add(time.Minute),
		SuccessRate: 100,
	}))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, got.Status)

	err = store.SealSession(ctx, "s1", domain.SessionSeal{Status: domain.SessionStatusError})
	assert.ErrorIs(t, err, domain.ErrSessionSealed)

	err = store.SealSession(ctx, "nope", domain.SessionSeal{Status: domain.SessionStatusError})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_UpdateTotalsOnSealedSession(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSession(ctx, newSession("s1", now)))
	require.NoError(t, store.SealSession(ctx, "s1", domain.SessionSeal{
		Status:      domain.SessionStatusCancelled,
		CompletedAt: now.Add(time.Minute),
	}))

	require.NoError(t, store.UpdateTotals(ctx, "s1", domain.SessionTotals{
		TotalRecordsProcessed: 12,
		TotalAPICalls:         4,
		SuccessRate:           50,
	}))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCancelled, got.Status)
	assert.Equal(t, now.Add(time.Minute), got.CompletedAt)
	assert.Equal(t, 12, got.TotalRecordsProcessed)
	assert.Equal(t, 4, got.TotalAPICalls)
	assert.InDelta(t, 50.0, got.SuccessRate, 0.001)

	assert.ErrorIs(t, store.UpdateTotals(ctx, "nope", domain.SessionTotals{}), domain.ErrNotFound)
}

func TestSessionStore_ListSessions(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.CreateSession(ctx, newSession(id, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	limited, err := store.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSessionStore_Logs(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := store.CreateLog(ctx, &domain.SyncLog{ID: "l0", SyncSessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.CreateSession(ctx, newSession("s1", now)))
	require.NoError(t, store.CreateLog(ctx, &domain.SyncLog{
		ID: "l1", SyncSessionID: "s1", EntityType: domain.EntityAccounts, SyncStatus: domain.SyncStatusRunning,
	}))
	require.NoError(t, store.CreateLog(ctx, &domain.SyncLog{
		ID: "l2", SyncSessionID: "s1", EntityType: domain.EntityContacts, SyncStatus: domain.SyncStatusRunning,
	}))
	require.NoError(t, store.CompleteLog(ctx, "l1", domain.SyncLogCompletion{
		SyncStatus: domain.SyncStatusCompleted, RecordsInserted: 4, RecordsProcessed: 4,
	}))
	assert.ErrorIs(t, store.CompleteLog(ctx, "nope", domain.SyncLogCompletion{}), domain.ErrNotFound)

	logs, err := store.ListLogs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.SyncStatusCompleted, logs[0].SyncStatus)
	assert.Equal(t, 4, logs[0].RecordsInserted)
	assert.Equal(t, domain.SyncStatusRunning, logs[1].SyncStatus)
}
