package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/ssumakant/abp-agent/domain/checkpoint"
)

// CheckpointStore is a SQLite-backed implementation of checkpoint.Store.
// Compare-and-swap is implemented with versioned UPDATEs, so a stale writer
// fails with checkpoint.ErrVersionConflict instead of clobbering a
// concurrent resume.
type CheckpointStore struct {
	db *sql.DB
}

// NewCheckpointStore creates a new SQLite checkpoint store with the given
// configuration.
func NewCheckpointStore(cfg Config, opts ...Option) (*CheckpointStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &CheckpointStore{db: db}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewCheckpointStoreFromDB creates a checkpoint store from an existing
// database connection.
func NewCheckpointStoreFromDB(db *sql.DB) (*CheckpointStore, error) {
	s := &CheckpointStore{db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *CheckpointStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			state BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}

// Put writes a checkpoint, enforcing compare-and-swap on Version.
func (s *CheckpointStore) Put(ctx context.Context, cp checkpoint.Checkpoint) (checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint{}, err
	}

	if cp.ThreadID == "" {
		return checkpoint.Checkpoint{}, checkpoint.ErrInvalidThreadID
	}

	now := time.Now()

	if cp.Version == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO checkpoints (thread_id, version, state, updated_at) VALUES (?, 1, ?, ?)`,
			cp.ThreadID, []byte(cp.State), now.Unix(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return checkpoint.Checkpoint{}, checkpoint.ErrVersionConflict
			}
			return checkpoint.Checkpoint{}, err
		}
		cp.Version = 1
		cp.UpdatedAt = now
		return cp, nil
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE checkpoints SET version = version + 1, state = ?, updated_at = ?
		 WHERE thread_id = ? AND version = ?`,
		[]byte(cp.State), now.Unix(), cp.ThreadID, cp.Version,
	)
	if err != nil {
		return checkpoint.Checkpoint{}, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return checkpoint.Checkpoint{}, err
	}
	if rows == 0 {
		// Either the thread is unknown or another writer advanced the
		// version first; distinguish so callers can fail fast correctly.
		var exists int
		err := s.db.QueryRowContext(ctx,
			"SELECT 1 FROM checkpoints WHERE thread_id = ?", cp.ThreadID,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return checkpoint.Checkpoint{}, checkpoint.ErrNotFound
		}
		if err != nil {
			return checkpoint.Checkpoint{}, err
		}
		return checkpoint.Checkpoint{}, checkpoint.ErrVersionConflict
	}

	cp.Version++
	cp.UpdatedAt = now
	return cp, nil
}

// Get retrieves the latest checkpoint for a thread.
func (s *CheckpointStore) Get(ctx context.Context, threadID string) (checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint{}, err
	}

	if threadID == "" {
		return checkpoint.Checkpoint{}, checkpoint.ErrInvalidThreadID
	}

	var cp checkpoint.Checkpoint
	var state []byte
	var updatedAt int64

	err := s.db.QueryRowContext(ctx,
		"SELECT thread_id, version, state, updated_at FROM checkpoints WHERE thread_id = ?",
		threadID,
	).Scan(&cp.ThreadID, &cp.Version, &state, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return checkpoint.Checkpoint{}, checkpoint.ErrNotFound
	}
	if err != nil {
		return checkpoint.Checkpoint{}, err
	}

	cp.State = state
	cp.UpdatedAt = time.Unix(updatedAt, 0)
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

	result, err := s.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE thread_id = ?", threadID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return checkpoint.ErrNotFound
	}

	return nil
}

// List returns all thread IDs with a stored checkpoint.
func (s *CheckpointStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT thread_id FROM checkpoints ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Close closes the database connection.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *CheckpointStore) DB() *sql.DB {
	return s.db
}

// isUniqueViolation checks if the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ checkpoint.Store = (*CheckpointStore)(nil)
