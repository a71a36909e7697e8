package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

// Tier is the priority rank of a reschedule candidate. A solo-attendee
// candidate always outranks a fewest-internal one, regardless of score.
type Tier string

const (
	// TierSolo covers meetings where the user is the only accepted attendee.
	TierSolo Tier = "solo"

	// TierFewestInternal covers meetings ranked by internal-attendee count.
	TierFewestInternal Tier = "fewest_internal"
)

// Score ranks Tier 2 candidates. Lower is better on every component; the
// tuple ordering (internal count, duration, start) defines the complete
// tie-break chain.
type Score struct {
	InternalCount   int `json:"internal_count"`
	DurationMinutes int `json:"duration_minutes"`
}

// Candidate is a meeting chosen for displacement.
type Candidate struct {
	Event calendar.Event `json:"event"`
	Tier  Tier           `json:"tier"`
	Score Score          `json:"score"`

	// Explanation is a user-facing reason why this meeting was chosen.
	Explanation string `json:"explanation"`
}

// SelectCandidate finds the best meeting to move using tiered search.
//
// Tier 1: meetings where the only accepted attendee is the user, earliest
// start first. Tier 2 (only when Tier 1 is empty): meetings the user has
// accepted, ranked ascending by (internal attendee count, duration, start).
// An internal attendee is an accepted non-user attendee whose email domain
// equals internalDomain, compared case-insensitively.
//
// Returns nil when no candidate exists; callers surface that as "no
// meetings found to reschedule", not as an error.
func SelectCandidate(events []calendar.Event, userEmail, internalDomain string) *Candidate {
	if len(events) == 0 {
		return nil
	}

	// Tier 1: solo-attendee meetings.
	var solo []calendar.Event
	for _, e := range events {
		if isSoloAttendee(e, userEmail) {
			solo = append(solo, e)
		}
	}
	if len(solo) > 0 {
		sort.Slice(solo, func(i, j int) bool {
			return solo[i].Start.Before(solo[j].Start)
		})
		return &Candidate{
			Event:       solo[0],
			Tier:        TierSolo,
			Explanation: "Found a meeting where you are the only accepted attendee.",
		}
	}

	// Tier 2: meetings the user has accepted, fewest internal attendees
	// first.
	var candidates []Candidate
	for _, e := range events {
		if !userAccepted(e, userEmail) {
			continue
		}
		candidates = append(candidates, Candidate{
			Event: e,
			Tier:  TierFewestInternal,
			Score: Score{
				InternalCount:   countInternalAttendees(e, userEmail, internalDomain),
				DurationMinutes: int(e.Duration().Minutes()),
			},
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score.InternalCount != b.Score.InternalCount {
			return a.Score.InternalCount < b.Score.InternalCount
		}
		if a.Score.DurationMinutes != b.Score.DurationMinutes {
			return a.Score.DurationMinutes < b.Score.DurationMinutes
		}
		return a.Event.Start.Before(b.Event.Start)
	})

	best := candidates[0]
	best.Explanation = fmt.Sprintf("Found a meeting with %d internal colleague(s).", best.Score.InternalCount)
	return &best
}

// isSoloAttendee reports whether the user is the only accepted attendee.
// Only accepted responses count as "another attendee present"; tentative
// and unanswered invitations do not block a solo classification.
func isSoloAttendee(event calendar.Event, userEmail string) bool {
	accepted := event.AcceptedAttendees()
	return len(accepted) == 1 && accepted[0].Is(userEmail)
}

// userAccepted reports whether the user has accepted the event.
func userAccepted(event calendar.Event, userEmail string) bool {
	for _, a := range event.Attendees {
		if a.Is(userEmail) && a.HasAccepted() {
			return true
		}
	}
	return false
}

// countInternalAttendees counts accepted attendees, excluding the user,
// whose email domain equals internalDomain.
func countInternalAttendees(event calendar.Event, userEmail, internalDomain string) int {
	domain := strings.ToLower(internalDomain)
	count := 0
	for _, a := range event.Attendees {
		if a.Is(userEmail) || !a.HasAccepted() {
			continue
		}
		if a.Domain() == domain {
			count++
		}
	}
	return count
}
