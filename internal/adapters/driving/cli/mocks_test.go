package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	result *domain.SyncResult
	err    error

	fullCalls      int
	specificCalls  int
	gotEntities    []domain.EntityType
	gotForce       bool
	gotInitiatedBy string
	gotTenant      string
	gotType        domain.SessionType
}

func (m *mockSyncOrchestrator) PerformFullSync(
	_ context.Context, initiatedBy, tenantID string, sessionType domain.SessionType,
) (*domain.SyncResult, error) {
	m.fullCalls++
	m.gotInitiatedBy, m.gotTenant, m.gotType = initiatedBy, tenantID, sessionType
	return m.result, m.err
}

func (m *mockSyncOrchestrator) SyncSpecificEntities(
	_ context.Context, entities []domain.EntityType, initiatedBy, tenantID string, force bool,
) (*domain.SyncResult, error) {
	m.specificCalls++
	m.gotEntities, m.gotInitiatedBy, m.gotTenant, m.gotForce = entities, initiatedBy, tenantID, force
	return m.result, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{}, nil
}

// mockSyncHistory implements driving.SyncHistory for testing.
type mockSyncHistory struct {
	checkpoints []driving.CheckpointStatus
	sessions    []domain.SyncSession
	detail      *driving.SessionDetail
	err         error

	gotLimit    int
	cancelledID string
}

func (m *mockSyncHistory) Checkpoints(_ context.Context) ([]driving.CheckpointStatus, error) {
	return m.checkpoints, m.err
}

func (m *mockSyncHistory) Sessions(_ context.Context, limit int) ([]domain.SyncSession, error) {
	m.gotLimit = limit
	return m.sessions, m.err
}

func (m *mockSyncHistory) Session(_ context.Context, _ string) (*driving.SessionDetail, error) {
	return m.detail, m.err
}

func (m *mockSyncHistory) CancelSession(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.cancelledID = id
	return nil
}

// mockIntegrityChecker implements driving.IntegrityChecker for testing.
type mockIntegrityChecker struct {
	report *domain.IntegrityReport
	err    error
	calls  int
}

func (m *mockIntegrityChecker) Run(_ context.Context) (*domain.IntegrityReport, error) {
	m.calls++
	return m.report, m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    *domain.AppSettings
	scheduler   domain.SchedulerConfig
	validateErr error
	setErr      error

	gotClientID     string
	gotClientSecret string
	gotTenant       string
	tenantCalls     int
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	return &mockSettingsService{
		settings:  &settings,
		scheduler: domain.DefaultSchedulerConfig(),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = settings
	return nil
}

func (m *mockSettingsService) SetCredentials(clientID, clientSecret string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.gotClientID, m.gotClientSecret = clientID, clientSecret
	return nil
}

func (m *mockSettingsService) SetTenant(tenantID string) error {
	m.tenantCalls++
	m.gotTenant = tenantID
	return m.setErr
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	return m.scheduler
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	startErr error
	started  bool
	stopped  bool
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.started = true
	return m.startErr
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// setupCLI swaps in the given configuration and restores the previous
// one when the test ends.
func setupCLI(t *testing.T, cfg Config) {
	t.Helper()
	old := Config{
		Engine:    engineFactory,
		History:   syncHistory,
		Integrity: integrityChecker,
		Settings:  settingsService,
		Scheduler: schedulerFactory,
	}
	Configure(cfg)
	t.Cleanup(func() { Configure(old) })
}

// engineWith returns a factory serving a fixed engine and recording the
// dry run flag it was called with.
func engineWith(engine *SyncEngine, dryRun *bool) EngineFactory {
	return func(_ context.Context, dry bool) (*SyncEngine, error) {
		if dryRun != nil {
			*dryRun = dry
		}
		return engine, nil
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests do not leak
// flag values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
