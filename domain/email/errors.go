package email

import "errors"

// Domain errors for email operations.
var (
	// ErrDraftFailed indicates the drafter could not compose an email.
	ErrDraftFailed = errors.New("email draft failed")

	// ErrSendFailed indicates delivery failed.
	ErrSendFailed = errors.New("email send failed")

	// ErrNoRecipients indicates a draft with an empty recipient list.
	ErrNoRecipients = errors.New("email has no recipients")
)
