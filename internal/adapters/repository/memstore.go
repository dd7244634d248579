package repository

import (
	"context"
	"strings"
	"sync"
)

// MemStore implements DocStore in memory. Used in tests and when the
// service runs without a data directory.
type MemStore struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	closed bool
}

// NewMemStore creates an empty in-memory document store.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

// Get returns the document at key.
func (s *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	v, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores value at key.
func (s *MemStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.docs[key] = v
	return nil
}

// Delete removes the document at key.
func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.docs, key)
	return nil
}

// List returns every document under prefix.
func (s *MemStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make(map[string][]byte)
	for k, v := range s.docs {
		if strings.HasPrefix(k, prefix) {
			c := make([]byte, len(v))
			copy(c, v)
			out[k] = c
		}
	}
	return out, nil
}

// Count returns the number of documents under prefix.
func (s *MemStore) Count(ctx context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	n := 0
	for k := range s.docs {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}

// Close marks the store closed. Further calls fail with ErrClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
