package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ssumakant/abp-agent/domain/workflow"
)

// ApprovalStore is an in-memory implementation of workflow.ApprovalStore.
type ApprovalStore struct {
	records []workflow.ApprovalRecord
	mu      sync.RWMutex
}

// NewApprovalStore creates a new in-memory approval store.
func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{}
}

// Save archives a resolved approval.
func (s *ApprovalStore) Save(ctx context.Context, record workflow.ApprovalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if record.ThreadID == "" {
		return workflow.ErrInvalidThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return nil
}

// ListByThread returns the approvals resolved for a thread, oldest first.
func (s *ApprovalStore) ListByThread(ctx context.Context, threadID string) ([]workflow.ApprovalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if threadID == "" {
		return nil, workflow.ErrInvalidThreadID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []workflow.ApprovalRecord
	for _, r := range s.records {
		if r.ThreadID == threadID {
			result = append(result, r)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ResolvedAt.Before(result[j].ResolvedAt)
	})

	return result, nil
}

var _ workflow.ApprovalStore = (*ApprovalStore)(nil)
