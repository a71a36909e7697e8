package schedule

import (
	"testing"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

const (
	userEmail      = "sam@acme.com"
	internalDomain = "acme.com"
)

func attendee(email string, status calendar.ResponseStatus) calendar.Attendee {
	return calendar.Attendee{Email: email, ResponseStatus: status}
}

func userAcceptedAttendee() calendar.Attendee {
	return attendee(userEmail, calendar.ResponseAccepted)
}

func TestSelectCandidatePrefersSolo(t *testing.T) {
	t.Parallel()

	solo := event("focus-block", monday.Add(14*time.Hour), time.Hour,
		userAcceptedAttendee(),
	)
	group := event("team-sync", monday.Add(10*time.Hour), time.Hour,
		userAcceptedAttendee(),
		attendee("ana@acme.com", calendar.ResponseAccepted),
		attendee("bo@acme.com", calendar.ResponseAccepted),
	)

	// The group meeting starts earlier and scores better on every Tier 2
	// component; the solo meeting still wins.
	got := SelectCandidate([]calendar.Event{group, solo}, userEmail, internalDomain)
	if got == nil {
		t.Fatal("expected a candidate")
	}
	if got.Event.ID != "focus-block" {
		t.Errorf("selected %q, want focus-block", got.Event.ID)
	}
	if got.Tier != TierSolo {
		t.Errorf("tier = %q, want %q", got.Tier, TierSolo)
	}
	if got.Explanation == "" {
		t.Error("expected an explanation")
	}
}

func TestSelectCandidateEarliestSoloWins(t *testing.T) {
	t.Parallel()

	later := event("later", monday.Add(15*time.Hour), time.Hour, userAcceptedAttendee())
	earlier := event("earlier", monday.Add(9*time.Hour), time.Hour, userAcceptedAttendee())

	got := SelectCandidate([]calendar.Event{later, earlier}, userEmail, internalDomain)
	if got == nil || got.Event.ID != "earlier" {
		t.Fatalf("selected %+v, want earliest solo", got)
	}
}

func TestSelectCandidateEmptyReturnsNil(t *testing.T) {
	t.Parallel()

	if got := SelectCandidate(nil, userEmail, internalDomain); got != nil {
		t.Errorf("expected nil for no events, got %+v", got)
	}
}

func TestSelectCandidateTentativeDoesNotBlockSolo(t *testing.T) {
	t.Parallel()

	// The only accepted attendee is the user; an invitee who hasn't
	// committed doesn't make it a group meeting.
	e := event("maybe-sync", monday.Add(11*time.Hour), time.Hour,
		userAcceptedAttendee(),
		attendee("ana@acme.com", calendar.ResponseTentative),
		attendee("bo@acme.com", calendar.ResponseNeedsAction),
	)

	got := SelectCandidate([]calendar.Event{e}, userEmail, internalDomain)
	if got == nil || got.Tier != TierSolo {
		t.Fatalf("selected %+v, want solo tier", got)
	}
}

func TestSelectCandidateTieBreakChain(t *testing.T) {
	t.Parallel()

	withInternal := func(id string, start time.Time, d time.Duration, internal int) calendar.Event {
		attendees := []calendar.Attendee{
			userAcceptedAttendee(),
			attendee("ext@other.org", calendar.ResponseAccepted),
		}
		names := []string{"ana", "bo", "cy"}
		for i := 0; i < internal; i++ {
			attendees = append(attendees, attendee(names[i]+"@acme.com", calendar.ResponseAccepted))
		}
		return event(id, start, d, attendees...)
	}

	t.Run("fewest internal wins", func(t *testing.T) {
		t.Parallel()

		events := []calendar.Event{
			withInternal("two-internal", monday.Add(9*time.Hour), 30*time.Minute, 2),
			withInternal("one-internal", monday.Add(15*time.Hour), 2*time.Hour, 1),
		}
		got := SelectCandidate(events, userEmail, internalDomain)
		if got == nil || got.Event.ID != "one-internal" {
			t.Fatalf("selected %+v, want one-internal", got)
		}
		if got.Tier != TierFewestInternal {
			t.Errorf("tier = %q, want %q", got.Tier, TierFewestInternal)
		}
		if got.Score.InternalCount != 1 {
			t.Errorf("internal count = %d, want 1", got.Score.InternalCount)
		}
	})

	t.Run("equal internal count shorter duration wins", func(t *testing.T) {
		t.Parallel()

		events := []calendar.Event{
			withInternal("long", monday.Add(9*time.Hour), 2*time.Hour, 1),
			withInternal("short", monday.Add(15*time.Hour), 30*time.Minute, 1),
		}
		got := SelectCandidate(events, userEmail, internalDomain)
		if got == nil || got.Event.ID != "short" {
			t.Fatalf("selected %+v, want short", got)
		}
	})

	t.Run("equal duration earlier start wins", func(t *testing.T) {
		t.Parallel()

		events := []calendar.Event{
			withInternal("afternoon", monday.Add(15*time.Hour), time.Hour, 1),
			withInternal("morning", monday.Add(9*time.Hour), time.Hour, 1),
		}
		got := SelectCandidate(events, userEmail, internalDomain)
		if got == nil || got.Event.ID != "morning" {
			t.Fatalf("selected %+v, want morning", got)
		}
	})
}

func TestSelectCandidateInternalCounting(t *testing.T) {
	t.Parallel()

	e := event("mixed", monday.Add(10*time.Hour), time.Hour,
		userAcceptedAttendee(),
		attendee("ana@ACME.com", calendar.ResponseAccepted),   // internal, case-insensitive
		attendee("ext@other.org", calendar.ResponseAccepted),  // external
		attendee("bo@acme.com", calendar.ResponseDeclined),    // declined, not counted
		attendee("cy@acme.com", calendar.ResponseNeedsAction), // unanswered, not counted
	)

	got := SelectCandidate([]calendar.Event{e}, userEmail, internalDomain)
	if got == nil {
		t.Fatal("expected a candidate")
	}
	if got.Score.InternalCount != 1 {
		t.Errorf("internal count = %d, want 1", got.Score.InternalCount)
	}
}

func TestSelectCandidateSkipsMeetingsUserHasNotAccepted(t *testing.T) {
	t.Parallel()

	e := event("not-mine", monday.Add(10*time.Hour), time.Hour,
		attendee(userEmail, calendar.ResponseTentative),
		attendee("ana@acme.com", calendar.ResponseAccepted),
	)

	if got := SelectCandidate([]calendar.Event{e}, userEmail, internalDomain); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
