package driving

import "github.com/custodia-labs/ledgersync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	// Environment overrides are applied on top of stored values.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetCredentials stores Xero client credentials.
	SetCredentials(clientID, clientSecret string) error

	// SetTenant stores the default tenant. Empty clears it.
	SetTenant(tenantID string) error

	// Validate checks the settings are sufficient to sync.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// GetSchedulerConfig returns the scheduler configuration.
	GetSchedulerConfig() domain.SchedulerConfig
}
