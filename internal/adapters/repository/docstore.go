// Package repository defines the document store the pipeline core
// persists through. The store is a generic key/value collaborator; the
// core does not prescribe its schema or durability beyond this interface.
package repository

import "context"

// DocStore is a flat document store. Keys are slash-separated strings,
// e.g. "job/<id>" or "history/<candidate-id>/<seq>"; values are JSON.
type DocStore interface {
	// Get returns the document at key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value at key, overwriting any existing document.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the document at key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// List returns every document whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)

	// Count returns the number of documents whose key starts with prefix.
	Count(ctx context.Context, prefix string) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
