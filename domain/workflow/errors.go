package workflow

import "errors"

// Domain errors for the workflow.
var (
	// ErrThreadNotFound is returned when no thread exists for an ID.
	ErrThreadNotFound = errors.New("workflow thread not found")

	// ErrNoPendingApproval is returned when resuming a thread that has no
	// suspension awaiting a decision.
	ErrNoPendingApproval = errors.New("no pending approval")

	// ErrThreadFailed is returned when resuming a failed thread; failed is
	// terminal and non-resumable.
	ErrThreadFailed = errors.New("workflow thread failed and cannot be resumed")

	// ErrInvalidThreadID is returned when a thread ID is empty.
	ErrInvalidThreadID = errors.New("invalid thread ID")
)
