package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/email"
)

func draftRequest() email.DraftRequest {
	start := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	return email.DraftRequest{
		Meeting: calendar.Event{
			ID:      "evt-1",
			Summary: "Design Review",
			Start:   start,
			End:     start.Add(time.Hour),
			Attendees: []calendar.Attendee{
				{Email: "sam@acme.com", ResponseStatus: calendar.ResponseAccepted, IsOrganizer: true},
				{Email: "ana@acme.com", ResponseStatus: calendar.ResponseAccepted},
				{Email: "bo@acme.com", ResponseStatus: calendar.ResponseTentative},
			},
		},
		NewSlot: calendar.Slot{
			Start: time.Date(2025, time.June, 10, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC),
		},
		UserName:  "Sam",
		UserEmail: "sam@acme.com",
	}
}

func TestTemplateDrafterDraftReschedule(t *testing.T) {
	t.Parallel()

	drafter := NewTemplateDrafter()

	draft, err := drafter.DraftReschedule(context.Background(), draftRequest())
	if err != nil {
		t.Fatalf("DraftReschedule: %v", err)
	}

	if len(draft.To) != 2 {
		t.Errorf("recipients = %v, want the two non-user attendees", draft.To)
	}
	for _, addr := range draft.To {
		if strings.EqualFold(addr, "sam@acme.com") {
			t.Error("user must not receive their own notification")
		}
	}
	if !strings.Contains(draft.Subject, "Design Review") {
		t.Errorf("subject = %q", draft.Subject)
	}
	if !strings.Contains(draft.Body, "Design Review") {
		t.Errorf("body missing meeting name: %q", draft.Body)
	}
	if !strings.Contains(draft.Body, "Tuesday, June 10") {
		t.Errorf("body missing proposed time: %q", draft.Body)
	}
	if !strings.Contains(draft.Body, "Sam") {
		t.Errorf("body missing signature: %q", draft.Body)
	}
}

func TestTemplateDrafterSoloMeeting(t *testing.T) {
	t.Parallel()

	drafter := NewTemplateDrafter()
	req := draftRequest()
	req.Meeting.Attendees = req.Meeting.Attendees[:1]

	_, err := drafter.DraftReschedule(context.Background(), req)
	if !errors.Is(err, email.ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}

func TestTemplateDrafterZeroSlot(t *testing.T) {
	t.Parallel()

	drafter := NewTemplateDrafter()
	req := draftRequest()
	req.NewSlot = calendar.Slot{}

	draft, err := drafter.DraftReschedule(context.Background(), req)
	if err != nil {
		t.Fatalf("DraftReschedule: %v", err)
	}
	if !strings.Contains(draft.Body, "another time") {
		t.Errorf("zero slot should ask for another time: %q", draft.Body)
	}
}

func TestMemorySender(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := NewMemorySender()
	draft := email.Draft{To: []string{"ana@acme.com"}, Subject: "s", Body: "b"}

	if err := sender.Send(ctx, "sam@acme.com", draft); err != nil {
		t.Fatalf("Send: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 || sent[0].From != "sam@acme.com" {
		t.Fatalf("sent = %+v", sent)
	}

	if err := sender.Send(ctx, "sam@acme.com", email.Draft{Subject: "s"}); !errors.Is(err, email.ErrNoRecipients) {
		t.Errorf("no recipients: err = %v", err)
	}
	if err := sender.Send(ctx, "", draft); !errors.Is(err, email.ErrSendFailed) {
		t.Errorf("empty sender: err = %v", err)
	}

	sender.FailWith(errors.New("smtp down"))
	if err := sender.Send(ctx, "sam@acme.com", draft); !errors.Is(err, email.ErrSendFailed) {
		t.Errorf("forced failure: err = %v", err)
	}
}
