package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync checkpoint of every entity type",
	Long: `Lists the checkpoint of every registered entity type in priority order:
its last successful sync, when it next becomes due, and whether more
records are waiting upstream.`,
	RunE: runStatus,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

// checkpointJSON is the JSON shape of a checkpoint.
type checkpointJSON struct {
	EntityType           string `json:"entity_type"`
	SyncStatus           string `json:"sync_status"`
	LastUpdatedUTC       string `json:"last_updated_utc,omitempty"`
	LastSuccessfulSyncAt string `json:"last_successful_sync_at,omitempty"`
	NextDueAt            string `json:"next_due_at,omitempty"`
	Overdue              bool   `json:"overdue"`
	HasMoreRecords       bool   `json:"has_more_records"`
	RecordsProcessed     int    `json:"records_processed"`
	TotalSyncCount       int    `json:"total_sync_count"`
	ErrorCount           int    `json:"error_count"`
	RateLimitHits        int    `json:"rate_limit_hits"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncHistory == nil {
		return errors.New("history service not configured")
	}

	checkpoints, err := syncHistory.Checkpoints(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	if statusJSON {
		return outputCheckpointsJSON(cmd, checkpoints)
	}
	outputCheckpointsTable(cmd, checkpoints)
	return nil
}

func outputCheckpointsJSON(cmd *cobra.Command, checkpoints []driving.CheckpointStatus) error {
	out := make([]checkpointJSON, len(checkpoints))
	for i := range checkpoints {
		cp := &checkpoints[i]
		out[i] = checkpointJSON{
			EntityType:           string(cp.EntityType),
			SyncStatus:           string(cp.SyncStatus),
			LastUpdatedUTC:       rfc3339(cp.LastUpdatedUTC),
			LastSuccessfulSyncAt: rfc3339(cp.LastSuccessfulSyncAt),
			NextDueAt:            rfc3339(cp.NextDueAt),
			Overdue:              cp.Overdue,
			HasMoreRecords:       cp.HasMoreRecords,
			RecordsProcessed:     cp.RecordsProcessed,
			TotalSyncCount:       cp.TotalSyncCount,
			ErrorCount:           cp.ErrorCount,
			RateLimitHits:        cp.RateLimitHits,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoints: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputCheckpointsTable(cmd *cobra.Command, checkpoints []driving.CheckpointStatus) {
	if len(checkpoints) == 0 {
		cmd.Println("No entity types registered.")
		return
	}

	cmd.Println(title("Checkpoints"))
	cmd.Println()
	cmd.Printf("  %s %s %s %s %s\n",
		pad("ENTITY", 20), pad("STATUS", 10), pad("LAST SUCCESS", 20), pad("NEXT DUE", 20), "RUNS/ERRORS")

	pending := 0
	for i := range checkpoints {
		cp := &checkpoints[i]
		next := "-"
		if !cp.NextDueAt.IsZero() {
			next = formatTimestamp(cp.NextDueAt)
		}
		var flags string
		if cp.Overdue {
			flags += " " + reportStyles.Warning.Render("overdue")
		}
		if cp.HasMoreRecords {
			flags += " " + reportStyles.Warning.Render("more pending")
			pending++
		}
		cmd.Printf("  %s %s %s %s %d/%d%s\n",
			pad(string(cp.EntityType), 20), pad(statusBadge(string(cp.SyncStatus)), 10),
			pad(formatTimestamp(cp.LastSuccessfulSyncAt), 20), pad(next, 20),
			cp.TotalSyncCount, cp.ErrorCount, flags)
	}

	if pending > 0 {
		cmd.Println()
		cmd.Printf("%d entity type(s) have more records pending upstream.\n", pending)
	}
}
