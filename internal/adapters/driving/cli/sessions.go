package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// defaultSessionLimit is how many sessions list shows by default.
const defaultSessionLimit = 20

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect sync session history",
	Long:  `List past sync sessions, show one with its per-entity logs, or cancel a running one.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session and its entity logs",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsCancelCmd = &cobra.Command{
	Use:   "cancel [session-id]",
	Short: "Cancel a running session",
	Long: `Marks a running session cancelled. A sync running in another process
stops before its next entity type. Finished sessions cannot be changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsCancel,
}

var sessionsLimit int

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", defaultSessionLimit, "maximum sessions to show (0 = all)")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsCancelCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if syncHistory == nil {
		return errors.New("history service not configured")
	}

	sessions, err := syncHistory.Sessions(commandContext(cmd), sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No sync sessions yet.")
		return nil
	}

	cmd.Printf("  %s %s %s %s %s %s\n",
		pad("ID", 36), pad("STARTED", 19), pad("TYPE", 9), pad("SCOPE", 15), pad("STATUS", 9), "RECORDS")
	for i := range sessions {
		s := &sessions[i]
		cmd.Printf("  %s %s %s %s %s %d\n",
			pad(s.ID, 36), pad(formatTimestamp(s.StartedAt), 19), pad(string(s.SessionType), 9),
			pad(string(s.SyncScope), 15), pad(statusBadge(string(s.Status)), 9), s.TotalRecordsProcessed)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if syncHistory == nil {
		return errors.New("history service not configured")
	}

	detail, err := syncHistory.Session(commandContext(cmd), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("session not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	s := &detail.Session
	targets := make([]string, len(s.TargetEntities))
	for i, e := range s.TargetEntities {
		targets[i] = string(e)
	}

	cmd.Printf("%s %s  %s\n", title("Session"), s.ID, statusBadge(string(s.Status)))
	cmd.Printf("  Type:        %s (%s)\n", s.SessionType, s.SyncScope)
	if s.TenantID != "" {
		cmd.Printf("  Tenant:      %s\n", s.TenantID)
	}
	if s.InitiatedBy != "" {
		cmd.Printf("  Initiated:   %s\n", s.InitiatedBy)
	}
	cmd.Printf("  Started:     %s\n", formatTimestamp(s.StartedAt))
	if !s.CompletedAt.IsZero() {
		cmd.Printf("  Completed:   %s (%s)\n", formatTimestamp(s.CompletedAt), formatSeconds(s.TotalDurationSeconds))
	}
	cmd.Printf("  Entities:    %s\n", strings.Join(targets, ", "))
	cmd.Printf("  Records:     %d  API calls: %d  Success rate: %.0f%%\n",
		s.TotalRecordsProcessed, s.TotalAPICalls, s.SuccessRate)

	if len(detail.Logs) == 0 {
		return nil
	}
	cmd.Println()
	for i := range detail.Logs {
		l := &detail.Logs[i]
		cmd.Printf("  %s %s %d processed, %d new, %d updated, %d unchanged, %d failed, %d calls, %s\n",
			pad(string(l.EntityType), 20), pad(statusBadge(string(l.SyncStatus)), 10),
			l.RecordsProcessed, l.RecordsInserted, l.RecordsUpdated, l.RecordsSkipped, l.RecordsFailed,
			l.APICallsMade, formatSeconds(l.DurationSeconds))
		if l.ErrorMessage != "" {
			cmd.Printf("  %s %s\n", pad("", 20), reportStyles.Error.Render(l.ErrorMessage))
		}
	}
	return nil
}

func runSessionsCancel(cmd *cobra.Command, args []string) error {
	if syncHistory == nil {
		return errors.New("history service not configured")
	}

	err := syncHistory.CancelSession(commandContext(cmd), args[0])
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("session not found: %s", args[0])
	case errors.Is(err, domain.ErrSessionSealed):
		return fmt.Errorf("session %s has already finished", args[0])
	case err != nil:
		return fmt.Errorf("failed to cancel session: %w", err)
	}

	cmd.Printf("Session %s cancelled.\n", args[0])
	return nil
}
