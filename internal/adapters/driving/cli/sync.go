package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// progressInterval is how often a running sync's status is polled.
const progressInterval = 500 * time.Millisecond

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise Xero entities into local staging",
	Long: `Runs one sync session against Xero.

Without --entities every registered entity type is synced in dependency
order, incrementally from each entity's last successful sync. With
--entities only the named types are synced. --force-full ignores stored
watermarks and pulls everything. --type labels full runs only; runs with
--entities or --force-full are always recorded as manual.

Examples:
  ledgersync sync
  ledgersync sync --entities invoices,payments
  ledgersync sync --force-full --verify
  ledgersync sync --dry-run`,
	RunE: runSync,
}

var (
	syncEntities  []string
	syncForceFull bool
	syncVerify    bool
	syncDryRun    bool
	syncTenant    string
	syncType      string
)

func init() {
	flags := syncCmd.Flags()
	flags.StringSliceVarP(&syncEntities, "entities", "e", nil, "entity types to sync (default: all)")
	flags.BoolVar(&syncForceFull, "force-full", false, "ignore watermarks and pull every record")
	flags.BoolVar(&syncVerify, "verify", false, "run integrity checks after the sync (default from settings)")
	flags.BoolVar(&syncDryRun, "dry-run", false, "sync into in-memory staging without writing to the database")
	flags.StringVar(&syncTenant, "tenant", "", "Xero tenant id (default: configured tenant)")
	flags.StringVar(&syncType, "type", string(domain.SessionTypeManual), "session type of a full run: manual, scheduled or initial")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	sessionType := domain.SessionType(syncType)
	if !sessionType.IsValid() {
		return fmt.Errorf("%w: session type %q", domain.ErrInvalidInput, syncType)
	}
	if cmd.Flags().Changed("type") && (len(syncEntities) > 0 || syncForceFull) {
		return fmt.Errorf("%w: --type cannot be combined with --entities or --force-full",
			domain.ErrInvalidInput)
	}

	ctx := commandContext(cmd)
	engine, err := newEngine(ctx, syncDryRun)
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	if syncDryRun {
		cmd.Println(muted("Dry run: staging and checkpoints are kept in memory."))
	}

	by := initiatedBy()
	run := func(ctx context.Context) (*domain.SyncResult, error) {
		switch {
		case len(syncEntities) > 0:
			entities := make([]domain.EntityType, 0, len(syncEntities))
			for _, name := range syncEntities {
				entities = append(entities, domain.ParseEntityType(name))
			}
			return engine.Sync.SyncSpecificEntities(ctx, entities, by, syncTenant, syncForceFull)
		case syncForceFull:
			return engine.Sync.SyncSpecificEntities(ctx, engine.Entities, by, syncTenant, true)
		default:
			return engine.Sync.PerformFullSync(ctx, by, syncTenant, sessionType)
		}
	}

	result, err := syncWithProgress(ctx, cmd, engine.Sync, run)
	if result == nil {
		if err == nil {
			err = errors.New("sync returned no result")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	printSyncResult(cmd, result)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if shouldVerify(cmd) {
		verifyAfterSync(ctx, cmd, engine.Integrity)
	}

	if result.Status == domain.SessionStatusPartial {
		return fmt.Errorf("sync finished with %d failed entity types", len(result.Errors))
	}
	return nil
}

// shouldVerify uses --verify when given, otherwise the stored setting.
func shouldVerify(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("verify") || settingsService == nil {
		return syncVerify
	}
	settings, err := settingsService.Get()
	if err != nil {
		return syncVerify
	}
	return settings.Sync.VerifyAfterSync
}

// verifyAfterSync prints an integrity report. Its outcome never changes
// the result of the sync.
func verifyAfterSync(ctx context.Context, cmd *cobra.Command, checker driving.IntegrityChecker) {
	if checker == nil {
		logger.Warn("integrity checker not configured, skipping verification")
		return
	}
	report, err := checker.Run(ctx)
	if err != nil {
		logger.Warn("post-sync verification failed: %v", err)
		return
	}
	cmd.Println()
	printIntegrityReport(cmd, report)
}

// syncWithProgress runs the sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	run func(context.Context) (*domain.SyncResult, error),
) (*domain.SyncResult, error) {
	type outcome struct {
		result *domain.SyncResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := run(ctx)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	var last domain.EntityType
	for {
		select {
		case o := <-done:
			if last != "" {
				cmd.Println()
			}
			return o.result, o.err
		case <-ticker.C:
			// Progress is best effort.
			status, err := syncOrch.Status(ctx)
			if err != nil || status == nil || !status.Running || status.CurrentEntity == last {
				continue
			}
			last = status.CurrentEntity
			cmd.Printf("\rSyncing %s (%d/%d, %d records)...",
				last, status.EntitiesCompleted+1, status.EntitiesTotal, status.RecordsProcessed)
		}
	}
}

func printSyncResult(cmd *cobra.Command, r *domain.SyncResult) {
	cmd.Printf("%s %s  %s\n", title("Session"), r.SessionID, statusBadge(string(r.Status)))
	cmd.Println()

	for i := range r.EntityResults {
		e := &r.EntityResults[i]
		mode := "full"
		if e.ModifiedSince != nil {
			mode = "since " + formatTimestamp(*e.ModifiedSince)
		}
		outcome := reportStyles.Success.Render("ok")
		if !e.Success {
			outcome = reportStyles.Error.Render("failed")
		}
		cmd.Printf("  %s %s  %d processed (%d new, %d updated, %d unchanged, %d failed)  %s\n",
			pad(string(e.EntityType), 20), pad(outcome, 6),
			e.RecordsProcessed, e.RecordsInserted, e.RecordsUpdated, e.RecordsSkipped, e.RecordsFailed,
			muted(mode))
		if e.Error != "" {
			cmd.Printf("  %s %s\n", pad("", 20), reportStyles.Error.Render(e.Error))
		}
	}
	if len(r.EntityResults) > 0 {
		cmd.Println()
	}

	cmd.Printf("Entities: %d  Records: %d  API calls: %d  Success rate: %.0f%%  Duration: %s\n",
		r.EntitiesProcessed, r.TotalRecordsProcessed, r.TotalAPICalls, r.SuccessRate,
		formatDuration(r.TotalDuration))

	if len(r.EntitiesWithMoreRecords) > 0 {
		names := make([]string, len(r.EntitiesWithMoreRecords))
		for i, e := range r.EntitiesWithMoreRecords {
			names[i] = string(e)
		}
		cmd.Println(reportStyles.Warning.Render(
			"More records pending for: " + strings.Join(names, ", ") + ". Run sync again to continue."))
	}
}
