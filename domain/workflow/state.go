// Package workflow provides the core domain model for the scheduling
// assistant's resumable workflow.
package workflow

import (
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/constitution"
	"github.com/ssumakant/abp-agent/domain/email"
	"github.com/ssumakant/abp-agent/domain/intent"
	"github.com/ssumakant/abp-agent/domain/schedule"
)

// State identifies a step in the workflow. States are stable strings so a
// checkpointed workflow can be resumed by a later build.
type State string

// Canonical workflow states.
const (
	StateLoadContext       State = "load_context"
	StateClassifyIntent    State = "classify_intent"
	StateAssessBusyness    State = "assess_busyness"
	StateIdentifyCandidate State = "identify_candidate"
	StateValidateAndBook   State = "validate_and_book"
	StateSuspended         State = "suspended_for_approval"
	StateExecute           State = "execute"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// IsTerminal returns true for terminal states.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// AllowsMutations returns true if the state permits calendar mutations or
// email sends. Only the execute step, entered from an approved resume, may
// perform side effects.
func (s State) AllowsMutations() bool {
	return s == StateExecute
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Status is the run-level status of a workflow thread.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSuspended Status = "suspended"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// AgentState is the full state of one workflow thread. It is created per
// request, mutated by orchestrator steps, persisted at every suspension,
// and archived once terminal.
type AgentState struct {
	ThreadID        string `json:"thread_id"`
	UserID          string `json:"user_id"`
	OriginalRequest string `json:"original_request"`

	Current State  `json:"current_state"`
	Status  Status `json:"status"`

	DetectedIntent intent.Intent   `json:"detected_intent,omitempty"`
	MeetingRequest *intent.Meeting `json:"meeting_request,omitempty"`

	Busyness         *schedule.Report    `json:"busyness,omitempty"`
	CandidateMeeting *schedule.Candidate `json:"candidate_meeting,omitempty"`
	ProposedSlot     *calendar.Slot      `json:"proposed_slot,omitempty"`

	Violation *constitution.Verdict `json:"violation,omitempty"`

	RequiresApproval bool           `json:"requires_approval"`
	ApprovalType     ApprovalType   `json:"approval_type,omitempty"`
	PendingAction    *PendingAction `json:"pending_action,omitempty"`

	FinalResponse string `json:"final_response,omitempty"`
	Error         string `json:"error,omitempty"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// NewAgentState creates the state for a fresh workflow thread.
func NewAgentState(threadID, userID, request string) *AgentState {
	return &AgentState{
		ThreadID:        threadID,
		UserID:          userID,
		OriginalRequest: request,
		Current:         StateLoadContext,
		Status:          StatusRunning,
		StartTime:       time.Now(),
	}
}

// TransitionTo moves the workflow to the given state.
func (s *AgentState) TransitionTo(state State) {
	s.Current = state
	switch {
	case state == StateDone:
		s.Status = StatusCompleted
		s.EndTime = time.Now()
	case state == StateFailed:
		s.Status = StatusFailed
		s.EndTime = time.Now()
	case state == StateSuspended:
		s.Status = StatusSuspended
	default:
		s.Status = StatusRunning
	}
}

// Suspend parks the workflow awaiting a human decision on the given pending
// action. The action is never executed before an explicitly approved
// resume.
func (s *AgentState) Suspend(approvalType ApprovalType, action PendingAction, prompt string) {
	s.RequiresApproval = true
	s.ApprovalType = approvalType
	s.PendingAction = &action
	s.FinalResponse = prompt
	s.TransitionTo(StateSuspended)
}

// Complete finishes the workflow with a final user-facing response.
func (s *AgentState) Complete(response string) {
	s.FinalResponse = response
	s.RequiresApproval = false
	s.PendingAction = nil
	s.TransitionTo(StateDone)
}

// Fail terminates the workflow. Failed threads are not resumable.
func (s *AgentState) Fail(userMessage string) {
	s.Error = userMessage
	s.FinalResponse = userMessage
	s.RequiresApproval = false
	s.PendingAction = nil
	s.TransitionTo(StateFailed)
}

// IsTerminal returns true once the thread has finished.
func (s *AgentState) IsTerminal() bool {
	return s.Current.IsTerminal()
}

// HasPendingApproval returns true while the thread awaits a human decision.
func (s *AgentState) HasPendingApproval() bool {
	return s.RequiresApproval && s.PendingAction != nil && !s.IsTerminal()
}

// PendingActionKind identifies the gated side effect awaiting approval.
type PendingActionKind string

const (
	// ActionBookMeeting creates a new calendar event.
	ActionBookMeeting PendingActionKind = "book_meeting"

	// ActionMoveMeeting moves an existing event and notifies attendees.
	ActionMoveMeeting PendingActionKind = "move_meeting"
)

// PendingAction describes the mutation a suspended workflow will perform if
// and only if the resume decision approves it.
type PendingAction struct {
	Kind       PendingActionKind `json:"kind"`
	CalendarID string            `json:"calendar_id"`

	// Event is the event to create (book) or move.
	Event calendar.Event `json:"event"`

	// Slot is the target time.
	Slot calendar.Slot `json:"slot"`

	// Email is the notification draft, editable before the gate releases.
	Email *email.Draft `json:"email,omitempty"`

	// Reason is a user-facing explanation for the proposal.
	Reason string `json:"reason,omitempty"`
}
