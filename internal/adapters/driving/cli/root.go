// Package cli provides the cobra commands of the ledgersync binary.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// SyncEngine is everything a sync run needs. It is built on demand so
// commands that only read history work without Xero credentials.
type SyncEngine struct {
	// Sync runs sessions.
	Sync driving.SyncOrchestrator

	// Integrity verifies the staging the engine writes to.
	Integrity driving.IntegrityChecker

	// Entities are the registered entity types in priority order.
	Entities []domain.EntityType

	// Close releases resources held by the engine. May be nil.
	Close func() error
}

// EngineFactory builds a sync engine. A dry run engine writes nowhere durable.
type EngineFactory func(ctx context.Context, dryRun bool) (*SyncEngine, error)

// SchedulerFactory builds the scheduler for the serve command.
type SchedulerFactory func(ctx context.Context) (driving.Scheduler, error)

// Config wires the services the commands drive.
type Config struct {
	Engine    EngineFactory
	History   driving.SyncHistory
	Integrity driving.IntegrityChecker
	Settings  driving.SettingsService
	Scheduler SchedulerFactory
}

var (
	engineFactory    EngineFactory
	syncHistory      driving.SyncHistory
	integrityChecker driving.IntegrityChecker
	settingsService  driving.SettingsService
	schedulerFactory SchedulerFactory

	version = "dev"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ledgersync",
	Short: "Incremental Xero sync into local staging",
	Long: `ledgersync pulls accounting data from the Xero API into local staging
tables, one entity type at a time, using per-entity watermarks so each run
only fetches what changed since the last successful sync.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Configure sets the services used by the commands.
func Configure(cfg Config) {
	engineFactory = cfg.Engine
	syncHistory = cfg.History
	integrityChecker = cfg.Integrity
	settingsService = cfg.Settings
	schedulerFactory = cfg.Scheduler
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newEngine builds the engine, failing when none is configured.
func newEngine(ctx context.Context, dryRun bool) (*SyncEngine, error) {
	if engineFactory == nil {
		return nil, errors.New("sync service not configured")
	}
	engine, err := engineFactory(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	if engine == nil || engine.Sync == nil {
		return nil, errors.New("sync service not configured")
	}
	return engine, nil
}

func closeEngine(engine *SyncEngine) {
	if engine.Close == nil {
		return
	}
	if err := engine.Close(); err != nil {
		logger.Warn("closing sync engine: %v", err)
	}
}

// initiatedBy returns the configured initiator label.
func initiatedBy() string {
	if settingsService == nil {
		return domain.DefaultInitiatedBy
	}
	settings, err := settingsService.Get()
	if err != nil || settings.Sync.InitiatedBy == "" {
		return domain.DefaultInitiatedBy
	}
	return settings.Sync.InitiatedBy
}

// commandContext returns the command context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
