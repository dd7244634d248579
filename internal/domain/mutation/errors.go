package mutation

import "errors"

// Sentinel kinds for the mutation error taxonomy. Remote adapters classify
// transport and authority failures into these; callers branch with errors.Is.
var (
	// ErrNotFound is a local precondition failure: the target entity does
	// not exist. Never retried automatically.
	ErrNotFound = errors.New("entity not found")

	// ErrBusy means a mutation is already in flight for the entity id.
	// The request is rejected, never queued; retry once the prior
	// mutation resolves.
	ErrBusy = errors.New("mutation already in flight")

	// ErrValidation means a domain rule rejected the mutation, locally or
	// at the authority. Surfaced verbatim; always rolls back.
	ErrValidation = errors.New("validation rejected")

	// ErrNetwork means the authority was unreachable or timed out.
	// Transient; the whole operation is safe to retry after rollback.
	ErrNetwork = errors.New("remote authority unreachable")

	// ErrConflict means the authority's view of the entity has diverged
	// from ours. Callers should refresh the entity before retrying.
	ErrConflict = errors.New("remote state conflict")
)
