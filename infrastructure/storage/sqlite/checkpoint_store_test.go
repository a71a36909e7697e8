package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ssumakant/abp-agent/domain/checkpoint"
	"github.com/ssumakant/abp-agent/domain/workflow"
)

// newTestStore opens a checkpoint store on a per-test database file.
func newTestStore(t *testing.T) *CheckpointStore {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	store, err := NewCheckpointStore(DefaultConfig(), WithDSN(dsn))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteCheckpointPut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("insert then update", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		first, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", State: []byte(`{"n":1}`)})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if first.Version != 1 {
			t.Errorf("version = %d, want 1", first.Version)
		}

		second, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", Version: first.Version, State: []byte(`{"n":2}`)})
		if err != nil {
			t.Fatalf("second Put: %v", err)
		}
		if second.Version != 2 {
			t.Errorf("version = %d, want 2", second.Version)
		}

		got, err := store.Get(ctx, "t-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got.State) != `{"n":2}` {
			t.Errorf("state = %s", got.State)
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		first, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", State: []byte(`1`)})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if _, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", Version: first.Version, State: []byte(`2`)}); err != nil {
			t.Fatalf("advance: %v", err)
		}

		_, err = store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", Version: first.Version, State: []byte(`3`)})
		if !errors.Is(err, checkpoint.ErrVersionConflict) {
			t.Errorf("err = %v, want ErrVersionConflict", err)
		}
	})

	t.Run("duplicate insert conflicts", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		if _, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", State: []byte(`1`)}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		_, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "t-1", Version: 0, State: []byte(`2`)})
		if !errors.Is(err, checkpoint.ErrVersionConflict) {
			t.Errorf("err = %v, want ErrVersionConflict", err)
		}
	})

	t.Run("update of unknown thread", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		_, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: "missing", Version: 2, State: []byte(`{}`)})
		if !errors.Is(err, checkpoint.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteCheckpointGetDeleteList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}

	for _, id := range []string{"a", "b"} {
		if _, err := store.Put(ctx, checkpoint.Checkpoint{ThreadID: id, State: []byte(`{}`)}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("listed %d threads, want 2", len(ids))
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "a"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteApprovalStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	checkpoints := newTestStore(t)
	store, err := NewApprovalStoreFromDB(checkpoints.DB())
	if err != nil {
		t.Fatalf("opening approval store: %v", err)
	}

	base := time.Unix(1700000000, 0)
	records := []workflow.ApprovalRecord{
		{ThreadID: "t-1", ApprovalType: workflow.ApprovalRescheduleMeeting, Payload: []byte(`{"kind":"move_meeting"}`), Approved: false, DecidedBy: "sam", ResolvedAt: base},
		{ThreadID: "t-1", ApprovalType: workflow.ApprovalConstitutionOverride, Approved: true, ResolvedAt: base.Add(time.Minute)},
		{ThreadID: "t-2", ApprovalType: workflow.ApprovalBookMeeting, Approved: true, ResolvedAt: base},
	}
	for _, r := range records {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := store.ListByThread(ctx, "t-1")
	if err != nil {
		t.Fatalf("ListByThread: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d records, want 2", len(got))
	}
	if got[0].ApprovalType != workflow.ApprovalRescheduleMeeting || got[1].ApprovalType != workflow.ApprovalConstitutionOverride {
		t.Error("records out of order")
	}
	if got[0].Approved || !got[1].Approved {
		t.Error("approved flags wrong")
	}
	if string(got[0].Payload) != `{"kind":"move_meeting"}` {
		t.Errorf("payload = %s", got[0].Payload)
	}
	if got[0].DecidedBy != "sam" {
		t.Errorf("decided by = %q", got[0].DecidedBy)
	}
	if !got[0].ResolvedAt.Equal(base) {
		t.Errorf("resolved at = %v, want %v", got[0].ResolvedAt, base)
	}

	if err := store.Save(ctx, workflow.ApprovalRecord{}); !errors.Is(err, workflow.ErrInvalidThreadID) {
		t.Errorf("empty thread id: err = %v, want ErrInvalidThreadID", err)
	}
}
