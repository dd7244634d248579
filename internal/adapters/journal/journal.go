// Package journal streams committed state into the document store.
//
// Commits must not wait on disk, so the service enqueues write records
// here and a single writer goroutine drains them into the DocStore in the
// background. The journal is best-effort: a full queue drops the write
// (and says so), since durability guarantees belong to the store, not to
// this core.
package journal

import (
	"context"
	"sync"

	"github.com/hireloop/hireloop/internal/adapters/repository"
	"github.com/hireloop/hireloop/pkg/logger"
	"github.com/hireloop/hireloop/pkg/metrics"
)

// Record is one pending document write.
type Record struct {
	Key   string
	Value []byte
}

// Journal owns the write queue and the background writer.
type Journal struct {
	store   repository.DocStore
	records chan Record
	logger  logger.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// New constructs a journal writing into store.
func New(store repository.DocStore, opts ...Option) *Journal {
	j := &Journal{
		store: store,
		done:  make(chan struct{}),
	}
	cfg := config{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	j.records = make(chan Record, cfg.capacity)
	j.logger = cfg.logger
	return j
}

// Start launches the writer goroutine. Safe to call once.
func (j *Journal) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return
	}
	j.started = true
	go j.run(ctx)
}

// Enqueue queues one write. Returns false if the journal is closed or the
// queue is full; the caller's commit has already happened either way.
func (j *Journal) Enqueue(ctx context.Context, rec Record) bool {
	// The non-blocking send happens under the lock so Close cannot close
	// the channel between the check and the send.
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return false
	}

	select {
	case j.records <- rec:
		metrics.UpdateJournalQueueSize(len(j.records))
		return true
	default:
		metrics.RecordJournalDropped()
		if j.logger != nil {
			j.logger.Warn(ctx, "journal queue full, dropping write", logger.String("key", rec.Key))
		}
		return false
	}
}

// Len returns the number of queued writes.
func (j *Journal) Len() int {
	return len(j.records)
}

// Close stops accepting writes, drains the queue, and waits for the
// writer to finish.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	started := j.started
	j.mu.Unlock()

	close(j.records)
	if started {
		<-j.done
	}
	return nil
}

func (j *Journal) run(ctx context.Context) {
	defer close(j.done)
	for rec := range j.records {
		metrics.UpdateJournalQueueSize(len(j.records))
		if err := j.store.Put(ctx, rec.Key, rec.Value); err != nil {
			metrics.RecordJournalWriteError()
			if j.logger != nil {
				j.logger.Error(ctx, "journal write failed", logger.String("key", rec.Key), logger.Error(err))
			}
			continue
		}
		metrics.RecordJournalWrite()
	}
}
