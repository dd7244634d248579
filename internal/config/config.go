// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers overrides.
// - External errors must be wrapped via this package's error helpers.
package config

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AuthorityURL is the base URL of the remote system of record.
	AuthorityURL string `koanf:"authority_url"`

	// AuthorityTimeoutMS bounds each remote call.
	AuthorityTimeoutMS int `koanf:"authority_timeout_ms"`

	// DataDir holds the embedded document store. Empty means in-memory.
	DataDir string `koanf:"data_dir"`

	// JournalSize bounds the background persistence queue.
	JournalSize int `koanf:"journal_size"`

	// SubscriberBuffer sets the board change-feed buffer per subscriber.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		AuthorityURL:       "http://localhost:9081",
		AuthorityTimeoutMS: 5_000,
		DataDir:            "",
		JournalSize:        4_096,
		SubscriberBuffer:   64,
	}
}
