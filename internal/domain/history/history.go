// Package history keeps the append-only pipeline audit trail.
//
// Entries are immutable once appended. Stage changes may only be appended
// after the owning mutation committed; notes are appended unconditionally
// and never interact with the stage machine.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hireloop/hireloop/internal/domain/model"
)

// Sink receives a copy of every appended entry, e.g. for write-through to
// the document store. Sink failures are reported to the caller but the
// in-memory append always sticks; the log itself never loses an entry.
type Sink interface {
	Append(ctx context.Context, entityID string, e model.HistoryEntry) error
}

// Log is the in-memory append-only history, keyed by candidate id.
type Log struct {
	mu      sync.RWMutex
	entries map[string][]model.HistoryEntry
	seq     uint64
	clock   func() time.Time
	sink    Sink
}

// New constructs an empty log with configuration options.
func New(opts ...Option) *Log {
	l := &Log{
		entries: make(map[string][]model.HistoryEntry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AppendStageChange records a committed stage transition for entityID.
func (l *Log) AppendStageChange(ctx context.Context, entityID string, s model.Stage) (model.HistoryEntry, error) {
	return l.append(ctx, entityID, model.HistoryEntry{Kind: model.EntryStageChange, Stage: s})
}

// AppendNote records a free-text note for entityID. Notes are accepted
// unconditionally, whatever the candidate's stage.
func (l *Log) AppendNote(ctx context.Context, entityID, text string) (model.HistoryEntry, error) {
	return l.append(ctx, entityID, model.HistoryEntry{Kind: model.EntryNote, Text: text})
}

func (l *Log) append(ctx context.Context, entityID string, e model.HistoryEntry) (model.HistoryEntry, error) {
	l.mu.Lock()
	l.seq++
	e.Seq = l.seq
	e.At = l.clock()
	l.entries[entityID] = append(l.entries[entityID], e)
	l.mu.Unlock()

	if l.sink != nil {
		if err := l.sink.Append(ctx, entityID, e); err != nil {
			return e, err
		}
	}
	return e, nil
}

// Read returns the entries for entityID ordered by timestamp, ties broken
// by append order. The returned slice is a copy; entries are immutable.
func (l *Log) Read(ctx context.Context, entityID string) []model.HistoryEntry {
	l.mu.RLock()
	src := l.entries[entityID]
	out := make([]model.HistoryEntry, len(src))
	copy(out, src)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// Len returns the number of entries recorded for entityID.
func (l *Log) Len(ctx context.Context, entityID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries[entityID])
}

// Seed installs previously persisted entries for entityID, keeping the
// internal sequence counter ahead of every seeded entry. Used once at
// startup before any appends.
func (l *Log) Seed(ctx context.Context, entityID string, entries []model.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		if e.Seq > l.seq {
			l.seq = e.Seq
		}
	}
	l.entries[entityID] = append(l.entries[entityID], entries...)
}
