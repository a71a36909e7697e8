package calendar

import (
	"context"
	"time"
)

// Store defines the interface for calendar providers.
// Implementations wrap a concrete provider (Google Calendar, CalDAV, an
// in-memory fake). Provider failures must surface as errors; an
// unreachable calendar is never reported as an empty one.
type Store interface {
	// ListEvents returns events overlapping [timeMin, timeMax) across the
	// given calendars, sorted by start time.
	ListEvents(ctx context.Context, calendarIDs []string, timeMin, timeMax time.Time) ([]Event, error)

	// CreateEvent creates a new event on the given calendar.
	CreateEvent(ctx context.Context, calendarID string, event Event) (Event, error)

	// MoveEvent changes an existing event's start and end times.
	MoveEvent(ctx context.Context, calendarID, eventID string, start, end time.Time) (Event, error)
}
