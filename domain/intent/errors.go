package intent

import "errors"

// Domain errors for intent classification.
var (
	// ErrClassifierUnavailable indicates the classifier could not be
	// reached.
	ErrClassifierUnavailable = errors.New("intent classifier unavailable")

	// ErrMalformedResult indicates the classifier returned output that
	// could not be interpreted.
	ErrMalformedResult = errors.New("malformed classifier result")
)
