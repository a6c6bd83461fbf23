package xero

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// DefaultScopes are the read-only scopes a custom connection needs.
var DefaultScopes = []string{
	"accounting.settings.read",
	"accounting.contacts.read",
	"accounting.transactions.read",
	"accounting.journals.read",
}

// Config holds the connection settings for the Xero connector.
type Config struct {
	ClientID     string
	ClientSecret string

	// TenantID selects the organisation. Empty uses the first connection.
	TenantID string

	// BaseURL is the API host; the identity host is configured separately.
	BaseURL  string
	TokenURL string
	Scopes   []string

	// RequestsPerMinute is the proactive throttle.
	RequestsPerMinute int

	// MaxRetries bounds retries of 429 responses per request.
	MaxRetries int
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.XeroSettings) Config {
	return Config{
		ClientID:          s.ClientID,
		ClientSecret:      s.ClientSecret,
		TenantID:          s.TenantID,
		BaseURL:           s.BaseURL,
		TokenURL:          s.TokenURL,
		Scopes:            DefaultScopes,
		RequestsPerMinute: s.RequestsPerMinute,
		MaxRetries:        s.MaxRetries,
	}
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = domain.DefaultXeroBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TokenURL == "" {
		c.TokenURL = domain.DefaultXeroTokenURL
	}
	if c.Scopes == nil {
		c.Scopes = DefaultScopes
	}
	if c.RequestsPerMinute < 1 {
		c.RequestsPerMinute = domain.DefaultXeroRequestsPerMinute
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// Validate checks the credentials are present.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: xero client id and secret are required", domain.ErrSourceNotConfigured)
	}
	return nil
}
