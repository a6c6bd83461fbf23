package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

func testCheckpoints() []driving.CheckpointStatus {
	success := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return []driving.CheckpointStatus{
		{
			SyncCheckpoint: domain.SyncCheckpoint{
				EntityType: domain.EntityAccounts, SyncStatus: domain.SyncStatusCompleted,
				LastSuccessfulSyncAt: success, TotalSyncCount: 3,
			},
			NextDueAt: success.Add(24 * time.Hour),
		},
		{
			SyncCheckpoint: domain.SyncCheckpoint{
				EntityType: domain.EntityInvoices, SyncStatus: domain.SyncStatusError,
				HasMoreRecords: true, TotalSyncCount: 2, ErrorCount: 1,
			},
			Overdue: true,
		},
	}
}

func TestStatusCmd_NotConfigured(t *testing.T) {
	setupCLI(t, Config{})

	_, err := executeCommand(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "history service not configured")
}

func TestStatusCmd_Table(t *testing.T) {
	setupCLI(t, Config{History: &mockSyncHistory{checkpoints: testCheckpoints()}})

	out, err := executeCommand(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Checkpoints")
	assert.Contains(t, out, "accounts")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "overdue")
	assert.Contains(t, out, "more pending")
	assert.Contains(t, out, "2/1")
	assert.Contains(t, out, "1 entity type(s) have more records pending upstream.")
}

func TestStatusCmd_JSON(t *testing.T) {
	setupCLI(t, Config{History: &mockSyncHistory{checkpoints: testCheckpoints()}})

	out, err := executeCommand(t, "status", "--json")
	require.NoError(t, err)

	var got []checkpointJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "accounts", got[0].EntityType)
	assert.Equal(t, "2024-06-01T10:00:00Z", got[0].LastSuccessfulSyncAt)
	assert.Equal(t, "2024-06-02T10:00:00Z", got[0].NextDueAt)
	assert.Empty(t, got[1].LastSuccessfulSyncAt)
	assert.True(t, got[1].Overdue)
	assert.True(t, got[1].HasMoreRecords)
}

func TestStatusCmd_Empty(t *testing.T) {
	setupCLI(t, Config{History: &mockSyncHistory{}})

	out, err := executeCommand(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "No entity types registered.")
}

func TestStatusCmd_Error(t *testing.T) {
	setupCLI(t, Config{History: &mockSyncHistory{err: errors.New("database is locked")}})

	_, err := executeCommand(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}
