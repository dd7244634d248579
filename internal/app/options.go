package service

import (
	"time"

	"github.com/hireloop/hireloop/internal/adapters/remote"
	"github.com/hireloop/hireloop/internal/adapters/repository"
	"github.com/hireloop/hireloop/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAuthority sets the remote authority the coordinator reconciles
// against. Required.
func WithAuthority(a remote.Authority) Option {
	return func(s *Service) {
		if a != nil {
			s.authority = a
		}
	}
}

// WithDocStore sets the document store used for write-through and
// startup loading. Defaults to an in-memory store.
func WithDocStore(d repository.DocStore) Option {
	return func(s *Service) {
		if d != nil {
			s.docs = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubscriberBuffer sets the board change-feed buffer size.
func WithSubscriberBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// WithJournalCapacity bounds the background write queue.
func WithJournalCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.journalCapacity = n
		}
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}
