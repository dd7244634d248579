package repository

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/hireloop/hireloop/pkg/logger"
)

// BadgerStore implements DocStore on an embedded BadgerDB instance, the
// process-local equivalent of the browser-side document store.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a BadgerDB-backed document store. With no path
// configured the database lives purely in memory, which is what tests use.
func NewBadgerStore(opts ...BadgerOption) (*BadgerStore, error) {
	cfg := badgerConfig{syncWrites: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	options := badger.DefaultOptions(cfg.path)
	if cfg.path == "" {
		options = options.WithInMemory(true)
	}
	options = options.WithSyncWrites(cfg.syncWrites)
	if cfg.logger != nil {
		options = options.WithLogger(&badgerLogger{logger: cfg.logger})
	} else {
		options = options.WithLogger(nil)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the document at key.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return out, nil
}

// Put stores value at key.
func (s *BadgerStore) Put(ctx context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes the document at key.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// List returns every document under prefix.
func (s *BadgerStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[string(item.Key())] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return out, nil
}

// Count returns the number of documents under prefix.
func (s *BadgerStore) Count(ctx context.Context, prefix string) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", prefix, err)
	}
	return n, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger store: %w", err)
	}
	return nil
}

// badgerLogger adapts pkg/logger to BadgerDB's printf-style interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(context.Background(), fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(context.Background(), fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(context.Background(), fmt.Sprintf(format, args...))
}
