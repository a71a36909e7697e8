// Package intent provides the contract for the external intent classifier.
package intent

import (
	"context"
	"time"

	"github.com/ssumakant/abp-agent/domain/constitution"
)

// Intent is a recognized user intention.
type Intent string

// Canonical intents.
const (
	IntentScheduleMeeting   Intent = "schedule_meeting"
	IntentRescheduleMeeting Intent = "reschedule_meeting"
	IntentCheckAvailability Intent = "check_availability"
	IntentAssessBusyness    Intent = "assess_busyness"
	IntentUnknown           Intent = "unknown"
)

// IsValid returns true if the intent is recognized.
func (i Intent) IsValid() bool {
	switch i {
	case IntentScheduleMeeting, IntentRescheduleMeeting, IntentCheckAvailability, IntentAssessBusyness, IntentUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent.
func (i Intent) String() string {
	return string(i)
}

// Meeting holds the entities extracted from a scheduling request.
type Meeting struct {
	Title           string                 `json:"title,omitempty"`
	ProposedTime    time.Time              `json:"proposed_time,omitempty"`
	DurationMinutes int                    `json:"duration_minutes,omitempty"`
	Attendees       []string               `json:"attendees,omitempty"`
	EventType       constitution.EventType `json:"event_type,omitempty"`
}

// Result is the classifier's output for one request.
type Result struct {
	Intent     Intent   `json:"intent"`
	Meeting    *Meeting `json:"meeting,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// Classifier maps a natural-language request to an intent. Implementations
// are external (typically LLM-backed); the orchestrator treats nil or
// malformed output as IntentUnknown and never lets a classifier failure
// crash the workflow.
type Classifier interface {
	Classify(ctx context.Context, request string, cfg constitution.Constitution) (*Result, error)
}
