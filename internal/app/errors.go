package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoAuthority = errors.New("no remote authority configured")
	ErrJournalFull = errors.New("journal queue full")
)
