package driven

// ConfigStore provides access to application configuration.
// Keys are dotted paths ("xero.client_id") into a TOML document.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString returns "" if the key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt returns 0 if the key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool returns false if the key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// Unset removes a configuration value and persists immediately.
	// Unsetting a missing key is not an error.
	Unset(key string) error

	// Keys returns all keys in sorted order.
	Keys() []string

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
