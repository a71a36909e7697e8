package workflow

import (
	"context"
	"encoding/json"
	"time"
)

// ApprovalType classifies what a human is being asked to approve.
type ApprovalType string

const (
	// ApprovalConstitutionOverride asks permission to violate a scheduling
	// rule (weekend, protected block, or working hours).
	ApprovalConstitutionOverride ApprovalType = "constitution_override"

	// ApprovalRescheduleMeeting asks permission to move an existing meeting.
	ApprovalRescheduleMeeting ApprovalType = "reschedule_meeting"

	// ApprovalEmailReview asks for review of a drafted notification before
	// it is sent. The engine folds draft review into the reschedule
	// approval's editable body; the type remains for archives that record
	// the two gates separately.
	ApprovalEmailReview ApprovalType = "email_review"

	// ApprovalBookMeeting asks permission to create a new event. Booking is
	// a calendar mutation, so it passes the approval gate like any other.
	ApprovalBookMeeting ApprovalType = "book_meeting"
)

// IsValid returns true if the approval type is recognized.
func (t ApprovalType) IsValid() bool {
	switch t {
	case ApprovalConstitutionOverride, ApprovalRescheduleMeeting, ApprovalEmailReview, ApprovalBookMeeting:
		return true
	default:
		return false
	}
}

// Decision is the human's answer to a pending approval.
type Decision struct {
	// Approved releases the pending action when true; false cancels it and
	// completes the thread without side effects.
	Approved bool `json:"approved"`

	// EditedBody, when non-empty, replaces the drafted email body before
	// sending.
	EditedBody string `json:"edited_body,omitempty"`

	// DecidedBy identifies the human actor.
	DecidedBy string `json:"decided_by,omitempty"`
}

// ApprovalRecord archives a resolved approval for audit.
type ApprovalRecord struct {
	ThreadID     string          `json:"thread_id"`
	ApprovalType ApprovalType    `json:"approval_type"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Approved     bool            `json:"approved"`
	DecidedBy    string          `json:"decided_by,omitempty"`
	ResolvedAt   time.Time       `json:"resolved_at"`
}

// ApprovalStore persists resolved approval records.
type ApprovalStore interface {
	// Save archives a resolved approval.
	Save(ctx context.Context, record ApprovalRecord) error

	// ListByThread returns the approvals resolved for a thread, oldest
	// first.
	ListByThread(ctx context.Context, threadID string) ([]ApprovalRecord, error)
}
