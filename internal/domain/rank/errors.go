package rank

import "errors"

// Sentinel kinds for reorder errors.
var (
	ErrNotFound = errors.New("job not found")
)
