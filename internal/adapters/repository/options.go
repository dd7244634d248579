package repository

import "github.com/hireloop/hireloop/pkg/logger"

// badgerConfig collects BadgerStore construction options.
type badgerConfig struct {
	path       string
	syncWrites bool
	logger     logger.Logger
}

// BadgerOption applies a configuration option to a BadgerStore.
type BadgerOption func(*badgerConfig)

// WithPath sets the on-disk directory. Empty keeps the store in memory.
func WithPath(path string) BadgerOption {
	return func(c *badgerConfig) {
		c.path = path
	}
}

// WithSyncWrites toggles synchronous writes. On by default.
func WithSyncWrites(sync bool) BadgerOption {
	return func(c *badgerConfig) {
		c.syncWrites = sync
	}
}

// WithLogger routes BadgerDB's internal logging through the given logger.
// Without it the database logs nothing.
func WithLogger(l logger.Logger) BadgerOption {
	return func(c *badgerConfig) {
		c.logger = l
	}
}
