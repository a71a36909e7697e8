package constitution

import "errors"

// Domain errors for constitution handling.
var (
	// ErrInvalidConstitution indicates a malformed constitution document.
	ErrInvalidConstitution = errors.New("invalid constitution")

	// ErrInvalidSlot indicates a malformed proposed time slot.
	ErrInvalidSlot = errors.New("invalid time slot")
)
