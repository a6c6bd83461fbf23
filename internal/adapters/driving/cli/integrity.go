package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check staged data for integrity problems",
	Long: `Runs cross-reference, completeness, business rule, consistency and
duplicate checks over the staged data and prints a score from 0 to 100.
Checks never modify staging or sync state.`,
	RunE: runIntegrity,
}

func init() {
	rootCmd.AddCommand(integrityCmd)
}

func runIntegrity(cmd *cobra.Command, _ []string) error {
	if integrityChecker == nil {
		return errors.New("integrity service not configured")
	}

	report, err := integrityChecker.Run(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	printIntegrityReport(cmd, report)
	return nil
}

func printIntegrityReport(cmd *cobra.Command, report *domain.IntegrityReport) {
	cmd.Printf("%s %.1f/100\n", title("Integrity score"), report.Score)
	cmd.Println()

	for i := range report.Checks {
		c := &report.Checks[i]
		line := fmt.Sprintf("  %s %s %s",
			pad(statusBadge(string(c.Status)), 8), pad(c.CheckType, 32), muted(string(c.Category)))
		if c.Message != "" {
			line += "  " + c.Message
		}
		cmd.Println(line)
	}

	cmd.Println()
	cmd.Printf("%d passed, %d warnings, %d failed\n",
		report.CountByStatus(domain.CheckPassed),
		report.CountByStatus(domain.CheckWarning),
		report.CountByStatus(domain.CheckFailed))
}
