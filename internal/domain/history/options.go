package history

import "time"

// Option applies a configuration option to the Log.
type Option func(*Log)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Log) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithSink attaches a write-through sink for appended entries.
func WithSink(sink Sink) Option {
	return func(l *Log) {
		l.sink = sink
	}
}
