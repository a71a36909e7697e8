// Package calendar provides the core domain model for calendar data.
package calendar

import (
	"strings"
	"time"
)

// ResponseStatus is an attendee's reply to a meeting invitation.
type ResponseStatus string

// Canonical response statuses as reported by calendar providers.
const (
	ResponseAccepted    ResponseStatus = "accepted"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
	ResponseNeedsAction ResponseStatus = "needs_action"
)

// IsValid returns true if the status is a recognized canonical status.
func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponseAccepted, ResponseDeclined, ResponseTentative, ResponseNeedsAction:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s ResponseStatus) String() string {
	return string(s)
}

// Attendee is a meeting participant.
type Attendee struct {
	Email          string         `json:"email"`
	ResponseStatus ResponseStatus `json:"response_status"`
	IsOrganizer    bool           `json:"is_organizer,omitempty"`
}

// HasAccepted returns true if the attendee has accepted the invitation.
func (a Attendee) HasAccepted() bool {
	return a.ResponseStatus == ResponseAccepted
}

// Is reports whether the attendee's email matches the given address,
// compared case-insensitively.
func (a Attendee) Is(email string) bool {
	return strings.EqualFold(a.Email, email)
}

// Domain returns the lowercased domain part of the attendee's email,
// or the empty string if the address has no domain.
func (a Attendee) Domain() string {
	at := strings.LastIndex(a.Email, "@")
	if at < 0 || at == len(a.Email)-1 {
		return ""
	}
	return strings.ToLower(a.Email[at+1:])
}

// Event is a single calendar event.
type Event struct {
	ID        string     `json:"id"`
	Summary   string     `json:"summary"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Attendees []Attendee `json:"attendees,omitempty"`
}

// Duration returns the event length.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// AcceptedAttendees returns the attendees that have accepted.
func (e Event) AcceptedAttendees() []Attendee {
	var accepted []Attendee
	for _, a := range e.Attendees {
		if a.HasAccepted() {
			accepted = append(accepted, a)
		}
	}
	return accepted
}

// Slot is a half-open time interval [Start, End).
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the slot length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// IsZero returns true if the slot has no bounds set.
func (s Slot) IsZero() bool {
	return s.Start.IsZero() && s.End.IsZero()
}
