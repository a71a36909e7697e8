// Package memory provides in-memory implementations of storage interfaces,
// suitable for tests and single-process development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ssumakant/abp-agent/domain/checkpoint"
)

// CheckpointStore is an in-memory implementation of checkpoint.Store.
type CheckpointStore struct {
	checkpoints map[string]checkpoint.Checkpoint
	mu          sync.Mutex
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		checkpoints: make(map[string]checkpoint.Checkpoint),
	}
}

// Put writes a checkpoint, enforcing compare-and-swap on Version.
func (s *CheckpointStore) Put(ctx context.Context, cp checkpoint.Checkpoint) (checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint{}, err
	}

	if cp.ThreadID == "" {
		return checkpoint.Checkpoint{}, checkpoint.ErrInvalidThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.checkpoints[cp.ThreadID]
	if exists && existing.Version != cp.Version {
		return checkpoint.Checkpoint{}, checkpoint.ErrVersionConflict
	}
	if !exists && cp.Version != 0 {
		return checkpoint.Checkpoint{}, checkpoint.ErrVersionConflict
	}

	stored := checkpoint.Checkpoint{
		ThreadID:  cp.ThreadID,
		Version:   cp.Version + 1,
		State:     append([]byte(nil), cp.State...),
		UpdatedAt: time.Now(),
	}
	s.checkpoints[cp.ThreadID] = stored

	return stored, nil
}

// Get retrieves the latest checkpoint for a thread.
func (s *CheckpointStore) Get(ctx context.Context, threadID string) (checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint{}, err
	}

	if threadID == "" {
		return checkpoint.Checkpoint{}, checkpoint.ErrInvalidThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.checkpoints[threadID]
	if !ok {
		return checkpoint.Checkpoint{}, checkpoint.ErrNotFound
	}

	cp.State = append([]byte(nil), cp.State...)
	return cp, nil
}

// Delete removes a thread's checkpoint.
func (s *CheckpointStore) Delete(ctx context.Context, threadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if threadID == "" {
		return checkpoint.ErrInvalidThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checkpoints[threadID]; !ok {
		return checkpoint.ErrNotFound
	}

	delete(s.checkpoints, threadID)
	return nil
}

// List returns all thread IDs with a stored checkpoint.
func (s *CheckpointStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.checkpoints))
	for id := range s.checkpoints {
		ids = append(ids, id)
	}
	return ids, nil
}

// Len returns the number of stored checkpoints.
func (s *CheckpointStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.checkpoints)
}

var _ checkpoint.Store = (*CheckpointStore)(nil)
