package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

func newHistoryHarness() (*HistoryService, *memory.CheckpointStore, *memory.SessionStore) {
	checkpoints := memory.NewCheckpointStore()
	sessions := memory.NewSessionStore()
	h := NewHistoryService(NewDefaultEntityRegistry(), checkpoints, sessions, sessions)
	h.now = func() time.Time { return testNow }
	return h, checkpoints, sessions
}

func TestHistoryService_Checkpoints(t *testing.T) {
	h, checkpoints, _ := newHistoryHarness()

	fresh := domain.NewCheckpoint(domain.EntityInvoices)
	fresh.LastSuccessfulSyncAt = testNow.Add(-time.Hour)
	stale := domain.NewCheckpoint(domain.EntityContacts)
	stale.LastSuccessfulSyncAt = testNow.Add(-7 * time.Hour)
	checkpoints.Seed([]domain.SyncCheckpoint{fresh, stale})

	statuses, err := h.Checkpoints(context.Background())

	require.NoError(t, err)
	require.Len(t, statuses, 10)
	assert.Equal(t, domain.EntityAccounts, statuses[0].EntityType)

	byType := make(map[domain.EntityType]int)
	for i, s := range statuses {
		byType[s.EntityType] = i
	}

	inv := statuses[byType[domain.EntityInvoices]]
	assert.False(t, inv.Overdue)
	assert.Equal(t, testNow.Add(time.Hour), inv.NextDueAt)

	con := statuses[byType[domain.EntityContacts]]
	assert.True(t, con.Overdue)

	acc := statuses[byType[domain.EntityAccounts]]
	assert.True(t, acc.Overdue)
	assert.Equal(t, domain.SyncStatusIdle, acc.SyncStatus)
	assert.True(t, acc.NextDueAt.IsZero())
}

func TestHistoryService_SessionDetail(t *testing.T) {
	h, _, sessions := newHistoryHarness()
	ctx := context.Background()

	require.NoError(t, sessions.CreateSession(ctx, &domain.SyncSession{
		ID: "s1", Status: domain.SessionStatusRunning, StartedAt: testNow,
	}))
	require.NoError(t, sessions.CreateLog(ctx, &domain.SyncLog{
		ID: "l1", SyncSessionID: "s1", EntityType: domain.EntityAccounts,
	}))

	detail, err := h.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", detail.Session.ID)
	assert.Len(t, detail.Logs, 1)

	list, err := h.Sessions(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = h.Session(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_CancelSession(t *testing.T) {
	h, _, sessions := newHistoryHarness()
	ctx := context.Background()

	require.NoError(t, sessions.CreateSession(ctx, &domain.SyncSession{
		ID: "s1", Status: domain.SessionStatusRunning, StartedAt: testNow.Add(-time.Minute),
	}))

	require.NoError(t, h.CancelSession(ctx, "s1"))

	s, err := sessions.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCancelled, s.Status)
	assert.InDelta(t, 60.0, s.TotalDurationSeconds, 0.001)

	assert.ErrorIs(t, h.CancelSession(ctx, "s1"), domain.ErrSessionSealed)
	assert.ErrorIs(t, h.CancelSession(ctx, "missing"), domain.ErrNotFound)
}
