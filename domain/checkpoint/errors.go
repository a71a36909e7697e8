package checkpoint

import "errors"

// Domain errors for checkpoint persistence.
var (
	// ErrNotFound is returned when no checkpoint exists for a thread.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrVersionConflict is returned when a Put carries a stale version;
	// another writer has updated the thread since it was read.
	ErrVersionConflict = errors.New("checkpoint version conflict")

	// ErrInvalidThreadID is returned when a thread ID is empty.
	ErrInvalidThreadID = errors.New("invalid thread ID")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. Losing suspension state silently is unsafe, so callers must
	// treat this as fatal for the operation.
	ErrStoreUnavailable = errors.New("checkpoint store unavailable")
)
