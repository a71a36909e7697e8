// Package email provides the domain contracts for drafting and sending
// rescheduling notifications.
package email

import (
	"context"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

// Draft is a composed but unsent email. The body may be fully replaced by a
// human-edited value before the approval gate releases the send.
type Draft struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// IsZero returns true when the draft is empty.
func (d Draft) IsZero() bool {
	return len(d.To) == 0 && d.Subject == "" && d.Body == ""
}

// DraftRequest carries everything a drafter needs to compose a reschedule
// notification.
type DraftRequest struct {
	// Meeting is the event being moved.
	Meeting calendar.Event

	// NewSlot is the proposed replacement time.
	NewSlot calendar.Slot

	// UserName is how the organizer signs the email.
	UserName string

	// UserEmail is excluded from the recipient list.
	UserEmail string
}

// Drafter composes reschedule notifications. Implementations may be
// LLM-backed or template-based; either way the output is only a proposal
// until a human approves it.
type Drafter interface {
	DraftReschedule(ctx context.Context, req DraftRequest) (Draft, error)
}

// Sender delivers an approved email. The transport is out of scope for the
// decision engine; implementations wrap SMTP, a provider API, or a test
// double.
type Sender interface {
	Send(ctx context.Context, from string, draft Draft) error
}
