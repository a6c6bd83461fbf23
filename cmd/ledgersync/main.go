// Command ledgersync syncs Xero accounting data into local staging.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ledgersync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ledgersync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgersync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ledgersync/internal/adapters/driving/cli"
	"github.com/custodia-labs/ledgersync/internal/connectors/xero"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
	"github.com/custodia-labs/ledgersync/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore(file.DefaultConfigDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading settings: %v\n", err)
		return err
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening database: %v\n", err)
		return err
	}
	defer store.Close()

	a := &app{
		settings: settingsService,
		store:    store,
		registry: services.NewDefaultEntityRegistry(),
	}
	checkpoints := store.CheckpointStore()

	cli.Configure(cli.Config{
		Engine:    a.engine,
		History:   services.NewHistoryService(a.registry, checkpoints, store.SessionStore(), store.SyncLogStore()),
		Integrity: services.NewIntegrityService(a.registry, store.StagingReader(), checkpoints),
		Settings:  settingsService,
		Scheduler: a.scheduler,
	})
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

// app builds sync engines on demand so read-only commands never need
// Xero credentials.
type app struct {
	settings *services.SettingsService
	store    *sqlite.Store
	registry *services.EntityRegistry
}

// orchestrator wires a sync orchestrator to Xero. A dry run stages into
// memory, starting from a copy of the stored checkpoints.
func (a *app) orchestrator(
	ctx context.Context, dryRun bool,
) (*services.SyncOrchestrator, driving.IntegrityChecker, error) {
	if err := a.settings.Validate(); err != nil {
		return nil, nil, err
	}
	settings, err := a.settings.Get()
	if err != nil {
		return nil, nil, err
	}
	source := xero.New(ctx, xero.ConfigFromSettings(settings.Xero))

	if !dryRun {
		checkpoints := a.store.CheckpointStore()
		orch := services.NewSyncOrchestrator(a.registry, source, checkpoints,
			a.store.SessionStore(), a.store.SyncLogStore(), a.store.StagingWriter())
		return orch, services.NewIntegrityService(a.registry, a.store.StagingReader(), checkpoints), nil
	}

	stored, err := a.store.CheckpointStore().List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading checkpoints: %w", err)
	}
	checkpoints := memory.NewCheckpointStore()
	checkpoints.Seed(stored)
	sessions := memory.NewSessionStore()
	staging := memory.NewStagingStore()

	orch := services.NewSyncOrchestrator(a.registry, source, checkpoints, sessions, sessions, staging)
	return orch, services.NewIntegrityService(a.registry, staging, checkpoints), nil
}

func (a *app) engine(ctx context.Context, dryRun bool) (*cli.SyncEngine, error) {
	orch, integrity, err := a.orchestrator(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	return &cli.SyncEngine{
		Sync:      orch,
		Integrity: integrity,
		Entities:  a.registry.Types(),
	}, nil
}

func (a *app) scheduler(ctx context.Context) (driving.Scheduler, error) {
	orch, _, err := a.orchestrator(ctx, false)
	if err != nil {
		return nil, err
	}
	settings, err := a.settings.Get()
	if err != nil {
		return nil, err
	}
	return services.NewScheduler(
		a.settings.GetSchedulerConfig(),
		a.store.SchedulerStore(),
		orch,
		a.registry,
		a.store.CheckpointStore(),
		services.WithTenant(settings.Xero.TenantID),
	), nil
}
