package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNotFound = errors.New("candidate not found")
)
