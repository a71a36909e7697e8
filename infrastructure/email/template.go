// Package email provides drafter and sender implementations.
package email

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/ssumakant/abp-agent/domain/email"
)

const rescheduleTemplate = `Hi,

I need to move "{{ .Summary }}" to free up some time. Would {{ .NewTime }} work for you instead?

Apologies for the shuffle, and thanks for being flexible.

Best,
{{ .UserName }}
`

// TemplateDrafter composes reschedule notifications from a fixed template.
type TemplateDrafter struct {
	tmpl *template.Template
}

// NewTemplateDrafter creates a template-based drafter.
func NewTemplateDrafter() *TemplateDrafter {
	return &TemplateDrafter{
		tmpl: template.Must(template.New("reschedule").Parse(rescheduleTemplate)),
	}
}

// DraftReschedule composes a notification to every attendee except the user.
func (d *TemplateDrafter) DraftReschedule(ctx context.Context, req email.DraftRequest) (email.Draft, error) {
	if err := ctx.Err(); err != nil {
		return email.Draft{}, err
	}

	var to []string
	for _, a := range req.Meeting.Attendees {
		if a.Is(req.UserEmail) {
			continue
		}
		to = append(to, a.Email)
	}
	if len(to) == 0 {
		return email.Draft{}, email.ErrNoRecipients
	}

	userName := req.UserName
	if userName == "" {
		userName = req.UserEmail
	}

	var body bytes.Buffer
	err := d.tmpl.Execute(&body, struct {
		Summary  string
		NewTime  string
		UserName string
	}{
		Summary:  req.Meeting.Summary,
		NewTime:  formatSlotTime(req.NewSlot.Start),
		UserName: userName,
	})
	if err != nil {
		return email.Draft{}, errors.Join(email.ErrDraftFailed, err)
	}

	return email.Draft{
		To:      to,
		Subject: "Rescheduling: " + req.Meeting.Summary,
		Body:    body.String(),
	}, nil
}

// formatSlotTime renders a proposed start as attendees will read it. A zero
// slot means the new time is still being negotiated.
func formatSlotTime(t time.Time) string {
	if t.IsZero() {
		return "another time this week"
	}
	return t.Format("Monday, January 2 at 3:04 PM")
}

// MemorySender records sends in memory for tests and dry runs.
type MemorySender struct {
	mu   sync.Mutex
	sent []SentEmail
	fail error
}

// SentEmail is a record of a delivered draft.
type SentEmail struct {
	From  string
	Draft email.Draft
}

// NewMemorySender creates an in-memory sender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// FailWith makes subsequent sends return the given error.
func (s *MemorySender) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Send records the draft as delivered.
func (s *MemorySender) Send(ctx context.Context, from string, draft email.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return errors.Join(email.ErrSendFailed, s.fail)
	}
	if len(draft.To) == 0 {
		return email.ErrNoRecipients
	}
	if strings.TrimSpace(from) == "" {
		return email.ErrSendFailed
	}

	s.sent = append(s.sent, SentEmail{From: from, Draft: draft})
	return nil
}

// Sent returns a copy of the delivery log.
func (s *MemorySender) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentEmail, len(s.sent))
	copy(out, s.sent)
	return out
}

var _ email.Drafter = (*TemplateDrafter)(nil)
var _ email.Sender = (*MemorySender)(nil)
