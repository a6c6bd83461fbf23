package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyXeroClientID        = "xero.client_id"
	keyXeroClientSecret    = "xero.client_secret"
	keyXeroTenantID        = "xero.tenant_id"
	keyXeroBaseURL         = "xero.base_url"
	keyXeroTokenURL        = "xero.token_url"
	keyXeroRequestsPerMin  = "xero.requests_per_minute"
	keyXeroMaxRetries      = "xero.max_retries"
	keyStorageDataDir      = "storage.data_dir"
	keySyncInitiatedBy     = "sync.initiated_by"
	keySyncVerifyAfterSync = "sync.verify_after_sync"
	keySchedulerEnabled    = "scheduler.enabled"
	keySchedulerCron       = "scheduler.cron"
)

// Environment variables that override stored credentials.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvXeroClientID     = "XERO_CLIENT_ID"
	EnvXeroClientSecret = "XERO_CLIENT_SECRET"
	EnvXeroTenantID     = "XERO_TENANT_ID"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Xero: domain.XeroSettings{
			ClientID:          s.getEnvOr(EnvXeroClientID, keyXeroClientID),
			ClientSecret:      s.getEnvOr(EnvXeroClientSecret, keyXeroClientSecret),
			TenantID:          s.getEnvOr(EnvXeroTenantID, keyXeroTenantID),
			BaseURL:           strings.TrimRight(s.getString(keyXeroBaseURL, defaults.Xero.BaseURL), "/"),
			TokenURL:          s.getString(keyXeroTokenURL, defaults.Xero.TokenURL),
			RequestsPerMinute: s.getInt(keyXeroRequestsPerMin, defaults.Xero.RequestsPerMinute),
			MaxRetries:        s.getInt(keyXeroMaxRetries, defaults.Xero.MaxRetries),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyStorageDataDir), // No default - empty means XDG data home
		},
		Sync: domain.SyncSettings{
			InitiatedBy:     s.getString(keySyncInitiatedBy, defaults.Sync.InitiatedBy),
			VerifyAfterSync: s.getBool(keySyncVerifyAfterSync, defaults.Sync.VerifyAfterSync),
		},
	}

	return settings, nil
}

// Save persists application settings. Values that came from the
// environment are persisted too, so only call Save with intended values.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyXeroTenantID, settings.Xero.TenantID},
		{keyXeroBaseURL, settings.Xero.BaseURL},
		{keyXeroTokenURL, settings.Xero.TokenURL},
		{keyXeroRequestsPerMin, settings.Xero.RequestsPerMinute},
		{keyXeroMaxRetries, settings.Xero.MaxRetries},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keySyncInitiatedBy, settings.Sync.InitiatedBy},
		{keySyncVerifyAfterSync, settings.Sync.VerifyAfterSync},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Xero.ClientID != "" {
		if err := s.configStore.Set(keyXeroClientID, settings.Xero.ClientID); err != nil {
			return fmt.Errorf("save %s: %w", keyXeroClientID, err)
		}
	}
	if settings.Xero.ClientSecret != "" {
		if err := s.configStore.Set(keyXeroClientSecret, settings.Xero.ClientSecret); err != nil {
			return fmt.Errorf("save %s: %w", keyXeroClientSecret, err)
		}
	}

	return nil
}

// SetCredentials stores Xero client credentials.
func (s *SettingsService) SetCredentials(clientID, clientSecret string) error {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: client id and secret are required", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyXeroClientID, clientID); err != nil {
		return fmt.Errorf("save %s: %w", keyXeroClientID, err)
	}
	if err := s.configStore.Set(keyXeroClientSecret, clientSecret); err != nil {
		return fmt.Errorf("save %s: %w", keyXeroClientSecret, err)
	}
	return nil
}

// SetTenant stores the default tenant. Empty clears it.
func (s *SettingsService) SetTenant(tenantID string) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return s.configStore.Unset(keyXeroTenantID)
	}
	return s.configStore.Set(keyXeroTenantID, tenantID)
}

// Validate checks the settings are sufficient to sync.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Xero.IsConfigured() {
		return fmt.Errorf("%w: set %s and %s, or run 'ledgersync config set-credentials'",
			domain.ErrSourceNotConfigured, EnvXeroClientID, EnvXeroClientSecret)
	}
	if settings.Xero.RequestsPerMinute < 1 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyXeroRequestsPerMin)
	}
	if settings.Xero.MaxRetries < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyXeroMaxRetries)
	}

	cfg := s.GetSchedulerConfig()
	if _, err := NextRun(cfg.GetTaskConfig(domain.TaskIDScheduledSync).Schedule, time.Now()); err != nil {
		return err
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	taskCfg := defaults.TaskConfigs[domain.TaskIDScheduledSync]
	taskCfg.Enabled = defaults.Enabled
	taskCfg.Schedule = s.getString(keySchedulerCron, taskCfg.Schedule)
	defaults.TaskConfigs[domain.TaskIDScheduledSync] = taskCfg

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getEnvOr(env, key string) string {
	if v, ok := s.lookupEnv(env); ok && v != "" {
		return v
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
