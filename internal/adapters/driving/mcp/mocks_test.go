package mcp

import (
	"context"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

// mockSyncOrchestrator is a mock implementation of driving.SyncOrchestrator.
type mockSyncOrchestrator struct {
	result *domain.SyncResult
	status *driving.SyncStatus
	err    error

	gotInitiatedBy string
	gotTenant      string
	gotType        domain.SessionType
	gotEntities    []domain.EntityType
	gotForce       bool
}

func (m *mockSyncOrchestrator) PerformFullSync(
	_ context.Context, initiatedBy, tenantID string, sessionType domain.SessionType,
) (*domain.SyncResult, error) {
	m.gotInitiatedBy, m.gotTenant, m.gotType = initiatedBy, tenantID, sessionType
	return m.result, m.err
}

func (m *mockSyncOrchestrator) SyncSpecificEntities(
	_ context.Context, entities []domain.EntityType, initiatedBy, tenantID string, force bool,
) (*domain.SyncResult, error) {
	m.gotEntities, m.gotInitiatedBy, m.gotTenant, m.gotForce = entities, initiatedBy, tenantID, force
	return m.result, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return m.status, m.err
}

// mockSyncHistory is a mock implementation of driving.SyncHistory.
type mockSyncHistory struct {
	checkpoints []driving.CheckpointStatus
	sessions    []domain.SyncSession
	detail      *driving.SessionDetail
	err         error

	gotLimit int
	gotID    string
}

func (m *mockSyncHistory) Checkpoints(_ context.Context) ([]driving.CheckpointStatus, error) {
	return m.checkpoints, m.err
}

func (m *mockSyncHistory) Sessions(_ context.Context, limit int) ([]domain.SyncSession, error) {
	m.gotLimit = limit
	return m.sessions, m.err
}

func (m *mockSyncHistory) Session(_ context.Context, id string) (*driving.SessionDetail, error) {
	m.gotID = id
	return m.detail, m.err
}

func (m *mockSyncHistory) CancelSession(_ context.Context, _ string) error {
	return m.err
}

// mockIntegrityChecker is a mock implementation of driving.IntegrityChecker.
type mockIntegrityChecker struct {
	report *domain.IntegrityReport
	err    error
}

func (m *mockIntegrityChecker) Run(_ context.Context) (*domain.IntegrityReport, error) {
	return m.report, m.err
}
