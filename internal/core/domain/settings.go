package domain

// Default Xero endpoints and limits.
const (
	DefaultXeroBaseURL           = "https://api.xero.com"
	DefaultXeroTokenURL          = "https://identity.xero.com/connect/token"
	DefaultXeroRequestsPerMinute = 60
	DefaultXeroMaxRetries        = 3
	DefaultInitiatedBy           = "cli"
)

// XeroSettings configures the Xero accounting source.
type XeroSettings struct {
	// ClientID and ClientSecret identify a Xero custom connection.
	ClientID     string
	ClientSecret string

	// TenantID selects the organisation. Empty uses the first connection.
	TenantID string

	BaseURL           string
	TokenURL          string
	RequestsPerMinute int
	MaxRetries        int
}

// IsConfigured returns true when client credentials are present.
func (s *XeroSettings) IsConfigured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// StorageSettings configures the local database.
type StorageSettings struct {
	// DataDir holds the sqlite database. Empty uses the XDG data home.
	DataDir string
}

// SyncSettings configures CLI sync behaviour.
type SyncSettings struct {
	// InitiatedBy labels sessions started from this machine.
	InitiatedBy string

	// VerifyAfterSync runs the integrity checker after every CLI sync.
	VerifyAfterSync bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Xero    XeroSettings
	Storage StorageSettings
	Sync    SyncSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Xero: XeroSettings{
			BaseURL:           DefaultXeroBaseURL,
			TokenURL:          DefaultXeroTokenURL,
			RequestsPerMinute: DefaultXeroRequestsPerMinute,
			MaxRetries:        DefaultXeroMaxRetries,
		},
		Sync: SyncSettings{
			InitiatedBy: DefaultInitiatedBy,
		},
	}
}
