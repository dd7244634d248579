package journal

import "github.com/hireloop/hireloop/pkg/logger"

// Default journal queue capacity.
const defaultCapacity = 4096

type config struct {
	capacity int
	logger   logger.Logger
}

// Option applies a configuration option to the Journal.
type Option func(*config)

// WithCapacity bounds the write queue.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithLogger sets a custom logger for the journal.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
