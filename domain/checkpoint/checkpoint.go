// Package checkpoint provides the domain interface for durable workflow
// state persistence. A checkpoint written at a suspension point is the only
// copy of the pending action; a restart between "propose" and "approve"
// must not lose or duplicate it.
package checkpoint

import (
	"context"
	"encoding/json"
	"time"
)

// Checkpoint is a versioned snapshot of one workflow thread's state, keyed
// by thread ID with a single writer per key.
type Checkpoint struct {
	ThreadID string `json:"thread_id"`

	// Version increments on every write. Writers pass the version they
	// read; a mismatch means another writer got there first.
	Version int64 `json:"version"`

	// State is the serialized AgentState.
	State json.RawMessage `json:"state"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for checkpoint persistence.
//
// Implementations must provide atomic compare-and-swap per key: Put with a
// stale Version fails with ErrVersionConflict rather than overwriting, so a
// second concurrent resume of the same thread fails fast instead of
// double-executing a mutation.
type Store interface {
	// Put writes a checkpoint. For a new thread the caller passes
	// Version 0; for an update it passes the Version it read. On success
	// the stored version is the passed version plus one.
	Put(ctx context.Context, cp Checkpoint) (Checkpoint, error)

	// Get retrieves the latest checkpoint for a thread.
	Get(ctx context.Context, threadID string) (Checkpoint, error)

	// Delete removes a thread's checkpoint.
	Delete(ctx context.Context, threadID string) error

	// List returns all thread IDs with a stored checkpoint.
	List(ctx context.Context) ([]string, error)
}
