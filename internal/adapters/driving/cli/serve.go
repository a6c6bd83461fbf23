package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled syncs until interrupted",
	Long: `Runs the scheduler in the foreground. On each tick of the configured
cron schedule (scheduler.cron, default every two hours) the entity types
that are due are synced. Stop with Ctrl+C; a sync in progress is allowed
to finish.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if schedulerFactory == nil {
		return errors.New("scheduler not configured")
	}

	ctx := commandContext(cmd)
	scheduler, err := schedulerFactory(ctx)
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	if settingsService != nil {
		cfg := settingsService.GetSchedulerConfig()
		task := cfg.GetTaskConfig(domain.TaskIDScheduledSync)
		if !cfg.Enabled || !task.Enabled {
			cmd.Println("Scheduler is disabled (scheduler.enabled = false).")
			return nil
		}
		cmd.Printf("Scheduled sync running on %q. Press Ctrl+C to stop.\n", task.Schedule)
	}

	err = scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil {
		logger.Warn("stopping scheduler: %v", stopErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler stopped: %w", err)
	}

	cmd.Println("Scheduler stopped.")
	return nil
}
