package board

import "errors"

// Sentinel kinds for board errors.
var (
	ErrNotFound = errors.New("job not found")
)
