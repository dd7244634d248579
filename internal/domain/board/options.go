package board

// Default subscriber channel buffer.
const defaultSubscriberBuffer = 64

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithSubscriberBuffer sets the change-feed channel buffer size.
func WithSubscriberBuffer(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.buffer = n
		}
	}
}
