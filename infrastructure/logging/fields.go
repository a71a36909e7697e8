package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/ssumakant/abp-agent/domain/intent"
	"github.com/ssumakant/abp-agent/domain/schedule"
	"github.com/ssumakant/abp-agent/domain/workflow"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// ThreadID adds a workflow thread ID field.
func ThreadID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("thread_id", id)
	}
}

// UserID adds a user ID field.
func UserID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("user_id", id)
	}
}

// State adds a workflow state field.
func State(s workflow.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", string(s))
	}
}

// FromState adds a from_state field for transitions.
func FromState(s workflow.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", string(s))
	}
}

// ToState adds a to_state field for transitions.
func ToState(s workflow.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_state", string(s))
	}
}

// Intent adds a detected-intent field.
func Intent(i intent.Intent) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("intent", string(i))
	}
}

// ApprovalType adds an approval type field.
func ApprovalType(t workflow.ApprovalType) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("approval_type", string(t))
	}
}

// Approved adds an approval decision field.
func Approved(approved bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("approved", approved)
	}
}

// Density adds a schedule density field.
func Density(d float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64("density", d)
	}
}

// Tier adds a candidate tier field.
func Tier(t schedule.Tier) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tier", string(t))
	}
}

// EventID adds a calendar event ID field.
func EventID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("event_id", id)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
