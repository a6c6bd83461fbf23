package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// Colour palette for reports.
var (
	colourPrimary = lipgloss.Color("#7C3AED") // Purple
	colourMuted   = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess = lipgloss.Color("#A6E3A1") // Green
	colourWarning = lipgloss.Color("#F9E2AF") // Yellow
	colourError   = lipgloss.Color("#F38BA8") // Red
)

// reportStyles are the styles used by command output. Colour is dropped
// automatically when output is not a terminal.
var reportStyles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
	Muted:   lipgloss.NewStyle().Foreground(colourMuted),
	Success: lipgloss.NewStyle().Foreground(colourSuccess),
	Warning: lipgloss.NewStyle().Foreground(colourWarning),
	Error:   lipgloss.NewStyle().Foreground(colourError).Bold(true),
}

func title(s string) string {
	return reportStyles.Title.Render(s)
}

func muted(s string) string {
	return reportStyles.Muted.Render(s)
}

// statusBadge colours a status word by outcome.
func statusBadge(status string) string {
	switch status {
	case string(domain.SessionStatusCompleted), string(domain.CheckPassed):
		return reportStyles.Success.Render(status)
	case string(domain.SessionStatusPartial), string(domain.SessionStatusCancelled),
		string(domain.SessionStatusRunning), string(domain.CheckWarning):
		return reportStyles.Warning.Render(status)
	case string(domain.SessionStatusError), string(domain.CheckFailed):
		return reportStyles.Error.Render(status)
	default:
		return status
	}
}

// pad right-pads s to width runes before styling is applied.
func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatSeconds(seconds float64) string {
	return formatDuration(time.Duration(seconds * float64(time.Second)))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
