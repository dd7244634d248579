package repository

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrNotFound = errors.New("document not found")
	ErrClosed   = errors.New("document store closed")
)
