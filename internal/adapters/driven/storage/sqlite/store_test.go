package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "ledgersync.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.CheckpointStore().EnsureCheckpoints(context.Background(),
		[]domain.EntityType{domain.EntityAccounts}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	list, err := second.CheckpointStore().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 6, 1, 12, 0, 0, 123456789, time.FixedZone("NZST", 12*3600))

	out := parseTime(formatTime(in))

	assert.True(t, in.Equal(out))
	assert.Equal(t, time.UTC, out.Location())
	assert.Less(t, formatTime(baseTime), formatTime(baseTime.Add(time.Nanosecond)))
}

// ==================== Checkpoint Tests ====================

func TestCheckpointStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CheckpointStore().Get(context.Background(), domain.EntityInvoices)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckpointStore_UpsertMerges(t *testing.T) {
	store := setupTestStore(t)
	cps := store.CheckpointStore()
	ctx := context.Background()
	mark := baseTime.Add(-time.Hour)

	require.NoError(t, cps.Upsert(ctx, domain.EntityInvoices, domain.CheckpointUpdate{
		SyncStatus:        domain.Ptr(domain.SyncStatusRunning),
		LastSyncStartedAt: domain.Ptr(baseTime),
	}))
	require.NoError(t, cps.Upsert(ctx, domain.EntityInvoices, domain.CheckpointUpdate{
		SyncStatus:            domain.Ptr(domain.SyncStatusCompleted),
		LastSyncCompletedAt:   domain.Ptr(baseTime.Add(time.Minute)),
		LastSuccessfulSyncAt:  domain.Ptr(baseTime),
		LastUpdatedUTC:        domain.Ptr(mark),
		HasMoreRecords:        domain.Ptr(true),
		NextPage:              domain.Ptr(2),
		RecordsProcessedDelta: 25,
		TotalSyncCountDelta:   1,
		RateLimitHitsDelta:    2,
	}))

	cp, err := cps.Get(ctx, domain.EntityInvoices)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, cp.SyncStatus)
	assert.Equal(t, baseTime, cp.LastSyncStartedAt)
	assert.Equal(t, baseTime.Add(time.Minute), cp.LastSyncCompletedAt)
	assert.Equal(t, baseTime, cp.LastSuccessfulSyncAt)
	assert.Equal(t, mark, cp.LastUpdatedUTC)
	assert.True(t, cp.HasMoreRecords)
	assert.Equal(t, 2, cp.NextPage)
	assert.Equal(t, int64(25), cp.RecordsProcessed)
	assert.Equal(t, 1, cp.TotalSyncCount)
	assert.Equal(t, 2, cp.RateLimitHits)

	// Nil fields keep their values; deltas add.
	require.NoError(t, cps.Upsert(ctx, domain.EntityInvoices, domain.CheckpointUpdate{
		RecordsProcessedDelta: 5,
		ErrorCountDelta:       1,
	}))
	cp, err = cps.Get(ctx, domain.EntityInvoices)
	require.NoError(t, err)
	assert.True(t, cp.HasMoreRecords)
	assert.Equal(t, 2, cp.NextPage)
	assert.Equal(t, domain.SyncStatusCompleted, cp.SyncStatus)
	assert.Equal(t, int64(30), cp.RecordsProcessed)
	assert.Equal(t, 1, cp.ErrorCount)
}

func TestCheckpointStore_SuccessfulSyncNeverMovesBackward(t *testing.T) {
	store := setupTestStore(t)
	cps := store.CheckpointStore()
	ctx := context.Background()

	require.NoError(t, cps.Upsert(ctx, domain.EntityContacts, domain.CheckpointUpdate{
		LastSuccessfulSyncAt: domain.Ptr(baseTime),
	}))
	require.NoError(t, cps.Upsert(ctx, domain.EntityContacts, domain.CheckpointUpdate{
		LastSuccessfulSyncAt: domain.Ptr(baseTime.Add(-time.Hour)),
	}))

	cp, err := cps.Get(ctx, domain.EntityContacts)
	require.NoError(t, err)
	assert.Equal(t, baseTime, cp.LastSuccessfulSyncAt)
}

func TestCheckpointStore_EnsureAndList(t *testing.T) {
	store := setupTestStore(t)
	cps := store.CheckpointStore()
	ctx := context.Background()

	require.NoError(t, cps.Upsert(ctx, domain.EntityPayments, domain.CheckpointUpdate{TotalSyncCountDelta: 4}))
	require.NoError(t, cps.EnsureCheckpoints(ctx, []domain.EntityType{
		domain.EntityPayments, domain.EntityAccounts,
	}))

	list, err := cps.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.EntityAccounts, list[0].EntityType)
	assert.Equal(t, domain.SyncStatusIdle, list[0].SyncStatus)
	assert.False(t, list[0].HasWatermark())
	assert.Equal(t, 4, list[1].TotalSyncCount)
}

// ==================== Session Tests ====================

func testSession(id string, started time.Time) *domain.SyncSession {
	return &domain.SyncSession{
		ID:             id,
		SessionType:    domain.SessionTypeScheduled,
		SyncScope:      domain.SyncScopeIncremental,
		TargetEntities: []domain.EntityType{domain.EntityAccounts, domain.EntityContacts},
		Status:         domain.SessionStatusRunning,
		TenantID:       "tenant-1",
		InitiatedBy:    "scheduler",
		StartedAt:      started,
	}
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store := setupTestStore(t)
	sessions := store.SessionStore()
	ctx := context.Background()

	require.NoError(t, sessions.CreateSession(ctx, testSession("s1", baseTime)))
	assert.Error(t, sessions.CreateSession(ctx, testSession("s1", baseTime)), "duplicate id")

	got, err := sessions.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityType{domain.EntityAccounts, domain.EntityContacts}, got.TargetEntities)
	assert.Equal(t, "tenant-1", got.TenantID)
	assert.Equal(t, baseTime, got.StartedAt)
	assert.False(t, got.IsSealed())

	require.NoError(t, sessions.SealSession(ctx, "s1", domain.SessionSeal{
		Status:                domain.SessionStatusPartial,
		CompletedAt:           baseTime.Add(time.Minute),
		TotalDurationSeconds:  60,
		TotalRecordsProcessed: 10,
		TotalAPICalls:         3,
		SuccessRate:           50,
	}))

	got, err = sessions.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusPartial, got.Status)
	assert.Equal(t, 10, got.TotalRecordsProcessed)
	assert.InDelta(t, 50.0, got.SuccessRate, 0.001)

	err = sessions.SealSession(ctx, "s1", domain.SessionSeal{Status: domain.SessionStatusCompleted})
	assert.ErrorIs(t, err, domain.ErrSessionSealed)

	err = sessions.SealSession(ctx, "missing", domain.SessionSeal{Status: domain.SessionStatusCompleted})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Counters can still be written once sealed; status stays.
	require.NoError(t, sessions.UpdateTotals(ctx, "s1", domain.SessionTotals{
		TotalRecordsProcessed: 14,
		TotalAPICalls:         5,
		SuccessRate:           75,
	}))
	got, err = sessions.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusPartial, got.Status)
	assert.Equal(t, 14, got.TotalRecordsProcessed)
	assert.Equal(t, 5, got.TotalAPICalls)
	assert.InDelta(t, 75.0, got.SuccessRate, 0.001)
	assert.ErrorIs(t, sessions.UpdateTotals(ctx, "missing", domain.SessionTotals{}), domain.ErrNotFound)

	_, err = sessions.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_ListSessions(t *testing.T) {
	store := setupTestStore(t)
	sessions := store.SessionStore()
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, sessions.CreateSession(ctx, testSession(id, baseTime.Add(time.Duration(i)*time.Minute))))
	}

	all, err := sessions.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	two, err := sessions.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestSyncLogStore_Lifecycle(t *testing.T) {
	store := setupTestStore(t)
	logs := store.SyncLogStore()
	ctx := context.Background()

	require.NoError(t, store.SessionStore().CreateSession(ctx, testSession("s1", baseTime)))

	err := logs.CreateLog(ctx, &domain.SyncLog{
		ID: "orphan", SyncSessionID: "missing", EntityType: domain.EntityAccounts,
		SyncStatus: domain.SyncStatusRunning, StartedAt: baseTime,
	})
	assert.Error(t, err, "foreign key enforced")

	for i, e := range []domain.EntityType{domain.EntityAccounts, domain.EntityContacts} {
		require.NoError(t, logs.CreateLog(ctx, &domain.SyncLog{
			ID:            string(e),
			SyncSessionID: "s1",
			EntityType:    e,
			SyncStatus:    domain.SyncStatusRunning,
			InitiatedBy:   "cli",
			StartedAt:     baseTime.Add(time.Duration(i) * time.Second),
		}))
	}

	require.NoError(t, logs.CompleteLog(ctx, "contacts", domain.SyncLogCompletion{
		SyncStatus:       domain.SyncStatusError,
		CompletedAt:      baseTime.Add(time.Minute),
		DurationSeconds:  59,
		RecordsProcessed: 3,
		RecordsFailed:    3,
		APICallsMade:     4,
		RateLimitHits:    1,
		ErrorMessage:     "HTTP 500",
	}))
	assert.ErrorIs(t, logs.CompleteLog(ctx, "missing", domain.SyncLogCompletion{}), domain.ErrNotFound)

	got, err := logs.ListLogs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EntityAccounts, got[0].EntityType)
	assert.Equal(t, domain.SyncStatusRunning, got[0].SyncStatus)
	assert.True(t, got[0].CompletedAt.IsZero())

	assert.Equal(t, domain.SyncStatusError, got[1].SyncStatus)
	assert.Equal(t, 3, got[1].RecordsFailed)
	assert.Equal(t, 4, got[1].APICallsMade)
	assert.Equal(t, "HTTP 500", got[1].ErrorMessage)
	assert.Equal(t, baseTime.Add(time.Minute), got[1].CompletedAt)
}
