// Package pipeline holds the candidate table for the hiring pipeline.
//
// Like the board store, it keeps one visible state per candidate and is
// written only through the coordinator's apply/commit/restore closures.
// Stage history and notes live in the history log, keyed by candidate id.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/hireloop/hireloop/internal/domain/model"
)

// Store is the candidate table.
type Store struct {
	mu         sync.RWMutex
	candidates map[string]model.Candidate
	rev        map[string]uint64
}

// New constructs an empty store.
func New() *Store {
	return &Store{
		candidates: make(map[string]model.Candidate),
		rev:        make(map[string]uint64),
	}
}

// Get returns the visible state of one candidate.
func (s *Store) Get(ctx context.Context, id string) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	return c.Clone(), nil
}

// All returns every candidate sorted by application time, then id.
func (s *Store) All(ctx context.Context) []model.Candidate {
	s.mu.RLock()
	out := make([]model.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c.Clone())
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.Before(out[j].AppliedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of candidates tracked.
func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

// Revision returns the per-entity write counter for id.
func (s *Store) Revision(ctx context.Context, id string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev[id]
}

// Publish makes a speculative state visible before the remote call resolves.
func (s *Store) Publish(ctx context.Context, c model.Candidate) {
	s.write(c)
}

// Commit installs c as the new committed baseline.
func (s *Store) Commit(ctx context.Context, c model.Candidate) {
	s.write(c)
}

// Restore reinstates a snapshot verbatim after a failed mutation.
func (s *Store) Restore(ctx context.Context, c model.Candidate) {
	s.write(c)
}

func (s *Store) write(c model.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.ID] = c.Clone()
	s.rev[c.ID]++
}
