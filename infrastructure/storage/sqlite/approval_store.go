package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ssumakant/abp-agent/domain/workflow"
)

// ApprovalStore is a SQLite-backed implementation of
// workflow.ApprovalStore.
type ApprovalStore struct {
	db *sql.DB
}

// NewApprovalStore creates a new SQLite approval store with the given
// configuration.
func NewApprovalStore(cfg Config, opts ...Option) (*ApprovalStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &ApprovalStore{db: db}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewApprovalStoreFromDB creates an approval store from an existing
// database connection.
func NewApprovalStoreFromDB(db *sql.DB) (*ApprovalStore, error) {
	s := &ApprovalStore{db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *ApprovalStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS approvals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id TEXT NOT NULL,
			approval_type TEXT NOT NULL,
			payload BLOB,
			approved INTEGER NOT NULL,
			decided_by TEXT,
			resolved_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_approvals_thread ON approvals(thread_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}

// Save archives a resolved approval.
func (s *ApprovalStore) Save(ctx context.Context, record workflow.ApprovalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if record.ThreadID == "" {
		return workflow.ErrInvalidThreadID
	}

	approved := 0
	if record.Approved {
		approved = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (thread_id, approval_type, payload, approved, decided_by, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ThreadID, string(record.ApprovalType), []byte(record.Payload),
		approved, record.DecidedBy, record.ResolvedAt.Unix(),
	)
	return err
}

// ListByThread returns the approvals resolved for a thread, oldest first.
func (s *ApprovalStore) ListByThread(ctx context.Context, threadID string) ([]workflow.ApprovalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if threadID == "" {
		return nil, workflow.ErrInvalidThreadID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, approval_type, payload, approved, decided_by, resolved_at
		 FROM approvals WHERE thread_id = ? ORDER BY resolved_at ASC, id ASC`,
		threadID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []workflow.ApprovalRecord
	for rows.Next() {
		var r workflow.ApprovalRecord
		var approvalType string
		var payload []byte
		var approved int
		var resolvedAt int64

		if err := rows.Scan(&r.ThreadID, &approvalType, &payload, &approved, &r.DecidedBy, &resolvedAt); err != nil {
			return nil, err
		}

		r.ApprovalType = workflow.ApprovalType(approvalType)
		r.Payload = payload
		r.Approved = approved == 1
		r.ResolvedAt = time.Unix(resolvedAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Close closes the database connection.
func (s *ApprovalStore) Close() error {
	return s.db.Close()
}

var _ workflow.ApprovalStore = (*ApprovalStore)(nil)
