package driven

// ConfigStore provides persistent non-secret application settings
// (endpoints, model names, batch sizes, retrieval defaults). Secrets
// such as API keys and the database DSN are read from the environment
// and never pass through this store.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when absent or mistyped.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when absent or mistyped.
	GetInt(key string) int

	// GetFloat retrieves a float value, 0 when absent or mistyped.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, false when absent or mistyped.
	GetBool(key string) bool

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load re-reads configuration from the backing store.
	Load() error
}
