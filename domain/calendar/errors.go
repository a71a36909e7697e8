package calendar

import "errors"

// Domain errors for calendar store operations.
var (
	// ErrEventNotFound is returned when an event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrAccessDenied is returned when the provider rejects the credentials.
	ErrAccessDenied = errors.New("calendar access denied")

	// ErrProviderUnavailable is returned when the provider cannot be reached.
	ErrProviderUnavailable = errors.New("calendar provider unavailable")

	// ErrInvalidEvent is returned when an event is malformed (e.g. end
	// before start).
	ErrInvalidEvent = errors.New("invalid event")
)
