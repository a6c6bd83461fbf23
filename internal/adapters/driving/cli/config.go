package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ledgersync configuration",
	Long: `View and change the stored configuration. Credentials can also be
supplied through XERO_CLIENT_ID and XERO_CLIENT_SECRET, which take
precedence over stored values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCredentialsCmd = &cobra.Command{
	Use:   "set-credentials",
	Short: "Store Xero custom connection credentials",
	Long: `Stores the client id and secret of a Xero custom connection. The
secret is prompted for without echo unless --client-secret is given.`,
	RunE: runConfigSetCredentials,
}

var configSetTenantCmd = &cobra.Command{
	Use:   "set-tenant [tenant-id]",
	Short: "Set the default Xero tenant",
	Long:  `Sets the tenant synced when none is given. Without an argument the default is cleared and the first connected organisation is used.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigSetTenant,
}

var (
	credentialsClientID     string
	credentialsClientSecret string
)

// secretInput is where set-credentials reads the secret from.
var secretInput io.Reader = os.Stdin

func init() {
	configSetCredentialsCmd.Flags().StringVar(&credentialsClientID, "client-id", "", "Xero client id")
	configSetCredentialsCmd.Flags().StringVar(&credentialsClientSecret, "client-secret", "", "Xero client secret")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCredentialsCmd)
	configCmd.AddCommand(configSetTenantCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(title("Current Settings"))
	cmd.Println()

	cmd.Println("[Xero]")
	cmd.Printf("  Client ID: %s\n", orNotSet(settings.Xero.ClientID))
	if settings.Xero.ClientSecret != "" {
		cmd.Printf("  Client Secret: %s\n", maskSecret(settings.Xero.ClientSecret))
	} else {
		cmd.Println("  Client Secret: (not set)")
	}
	tenant := settings.Xero.TenantID
	if tenant == "" {
		tenant = "(first connected organisation)"
	}
	cmd.Printf("  Tenant: %s\n", tenant)
	cmd.Printf("  API: %s\n", settings.Xero.BaseURL)
	cmd.Printf("  Requests per minute: %d\n", settings.Xero.RequestsPerMinute)
	cmd.Printf("  Max retries: %d\n", settings.Xero.MaxRetries)
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data directory: %s\n", dataDir)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Initiated by: %s\n", settings.Sync.InitiatedBy)
	cmd.Printf("  Verify after sync: %s\n", yesNo(settings.Sync.VerifyAfterSync))
	cmd.Println()

	scheduler := settingsService.GetSchedulerConfig()
	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %s\n", yesNo(scheduler.Enabled))
	for id, task := range scheduler.TaskConfigs {
		cmd.Printf("  %s: %s\n", id, task.Schedule)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(reportStyles.Warning.Render(fmt.Sprintf("Warning: %v", err)))
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSetCredentials(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(secretInput)
	clientID := credentialsClientID
	if clientID == "" {
		cmd.Print("Client ID: ")
		clientID = readLine(reader)
	}
	secret := credentialsClientSecret
	if secret == "" {
		cmd.Print("Client Secret: ")
		secret = readSecret(reader)
		cmd.Println()
	}

	if err := settingsService.SetCredentials(clientID, secret); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	cmd.Println("Credentials saved.")
	return nil
}

func runConfigSetTenant(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	tenant := ""
	if len(args) > 0 {
		tenant = args[0]
	}
	if err := settingsService.SetTenant(tenant); err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	if strings.TrimSpace(tenant) == "" {
		cmd.Println("Default tenant cleared.")
	} else {
		cmd.Printf("Default tenant set to %s.\n", tenant)
	}
	return nil
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n') //nolint:errcheck // partial input is still used
	return strings.TrimSpace(line)
}

// readSecret reads without echo when stdin is a terminal.
func readSecret(reader *bufio.Reader) string {
	if f, ok := secretInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
