package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionType_IsValid(t *testing.T) {
	assert.True(t, SessionTypeManual.IsValid())
	assert.True(t, SessionTypeScheduled.IsValid())
	assert.True(t, SessionTypeInitial.IsValid())
	assert.False(t, SessionType("webhook").IsValid())
}

func TestSyncSession_Seal(t *testing.T) {
	s := SyncSession{ID: "s1", Status: SessionStatusRunning}
	assert.False(t, s.IsSealed())

	done := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Apply(SessionSeal{
		Status:                SessionStatusPartial,
		CompletedAt:           done,
		TotalDurationSeconds:  4.5,
		TotalRecordsProcessed: 120,
		TotalAPICalls:         7,
		SuccessRate:           50,
	})

	assert.True(t, s.IsSealed())
	assert.Equal(t, SessionStatusPartial, s.Status)
	assert.Equal(t, done, s.CompletedAt)
	assert.Equal(t, 120, s.TotalRecordsProcessed)
	assert.InDelta(t, 50.0, s.SuccessRate, 0.001)
}

func TestSyncLog_Apply(t *testing.T) {
	l := SyncLog{ID: "l1", EntityType: EntityContacts, SyncStatus: SyncStatusRunning}

	l.Apply(SyncLogCompletion{
		SyncStatus:       SyncStatusError,
		RecordsProcessed: 3,
		RecordsFailed:    1,
		ErrorMessage:     "boom",
	})

	assert.Equal(t, SyncStatusError, l.SyncStatus)
	assert.Equal(t, 3, l.RecordsProcessed)
	assert.Equal(t, 1, l.RecordsFailed)
	assert.Equal(t, "boom", l.ErrorMessage)
}
