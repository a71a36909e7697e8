// Package application provides the workflow orchestrator that composes the
// domain services into a resumable, approval-gated scheduling assistant.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/checkpoint"
	"github.com/ssumakant/abp-agent/domain/constitution"
	"github.com/ssumakant/abp-agent/domain/email"
	"github.com/ssumakant/abp-agent/domain/intent"
	"github.com/ssumakant/abp-agent/domain/workflow"
	"github.com/ssumakant/abp-agent/infrastructure/logging"
)

// User-facing responses.
const (
	msgCalendarUnavailable = "Unable to access your calendar."
	msgNoCandidates        = "No suitable meetings found to reschedule."
	msgUnexpected          = "An unexpected error occurred."
	msgCancelled           = "Okay, I won't make any changes."
	msgUnknownIntent       = "I can help you schedule meetings, check your availability, or free up time in your calendar. What would you like to do?"
)

// ErrMissingDependency indicates the orchestrator was constructed without a
// required collaborator.
var ErrMissingDependency = errors.New("missing orchestrator dependency")

// Config carries the per-user settings a workflow run needs.
type Config struct {
	// UserEmail identifies the user on attendee lists.
	UserEmail string

	// UserName is how the user signs outgoing notifications.
	UserName string

	// InternalDomain is the user's organization domain, used to count
	// internal attendees.
	InternalDomain string

	// CalendarIDs are the calendars consulted for events.
	CalendarIDs []string

	// Constitution is the rule set applied to this run.
	Constitution constitution.Constitution

	// DefaultMeetingDuration applies when a request names no duration.
	DefaultMeetingDuration time.Duration
}

// Dependencies are the external collaborators injected into the
// orchestrator. Classifier, Calendar, and Checkpoints are required;
// Approvals, Drafter, and Sender degrade gracefully when absent.
type Dependencies struct {
	Classifier  intent.Classifier
	Calendar    calendar.Store
	Checkpoints checkpoint.Store
	Approvals   workflow.ApprovalStore
	Drafter     email.Drafter
	Sender      email.Sender
}

// Orchestrator drives workflow threads from request to terminal response,
// suspending at every calendar mutation until a human approves it.
type Orchestrator struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator.
func New(cfg Config, deps Dependencies, opts ...Option) (*Orchestrator, error) {
	if deps.Classifier == nil {
		return nil, fmt.Errorf("%w: classifier", ErrMissingDependency)
	}
	if deps.Calendar == nil {
		return nil, fmt.Errorf("%w: calendar store", ErrMissingDependency)
	}
	if deps.Checkpoints == nil {
		return nil, fmt.Errorf("%w: checkpoint store", ErrMissingDependency)
	}

	if len(cfg.CalendarIDs) == 0 {
		cfg.CalendarIDs = []string{"primary"}
	}
	if cfg.DefaultMeetingDuration <= 0 {
		cfg.DefaultMeetingDuration = 30 * time.Minute
	}

	o := &Orchestrator{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Start runs a new workflow thread for the given request until it either
// suspends for approval or reaches a terminal state. The resulting state is
// checkpointed in both cases, so a process restart cannot lose a pending
// action.
func (o *Orchestrator) Start(ctx context.Context, userID, request string) (*workflow.AgentState, error) {
	state := workflow.NewAgentState(uuid.NewString(), userID, request)

	logging.Info().
		Add(logging.ThreadID(state.ThreadID)).
		Add(logging.UserID(userID)).
		Msg("workflow started")

	o.run(ctx, state)

	if _, err := o.persist(ctx, state, 0); err != nil {
		return nil, err
	}

	return state, nil
}

// Resume continues a suspended thread with a human decision.
//
// A completed thread returns its stored response without re-executing side
// effects. A failed thread is non-resumable. The pending action is claimed
// with a compare-and-swap before any side effect runs, so a second
// concurrent resume fails fast instead of double-executing.
func (o *Orchestrator) Resume(ctx context.Context, threadID string, decision workflow.Decision) (*workflow.AgentState, error) {
	if threadID == "" {
		return nil, workflow.ErrInvalidThreadID
	}

	cp, err := o.deps.Checkpoints.Get(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, workflow.ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}

	state := &workflow.AgentState{}
	if err := json.Unmarshal(cp.State, state); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}

	switch state.Status {
	case workflow.StatusCompleted:
		return state, nil
	case workflow.StatusFailed:
		return state, workflow.ErrThreadFailed
	}

	if !state.HasPendingApproval() {
		return nil, workflow.ErrNoPendingApproval
	}

	pending := *state.PendingAction
	approvalType := state.ApprovalType

	// Claim the pending action before executing anything. A conflicting
	// version means another resume got here first.
	state.RequiresApproval = false
	state.TransitionTo(workflow.StateExecute)
	claimed, err := o.persist(ctx, state, cp.Version)
	if errors.Is(err, checkpoint.ErrVersionConflict) {
		return nil, workflow.ErrNoPendingApproval
	}
	if err != nil {
		return nil, err
	}

	o.archiveApproval(ctx, state.ThreadID, approvalType, pending, decision)

	logging.Info().
		Add(logging.ThreadID(state.ThreadID)).
		Add(logging.ApprovalType(approvalType)).
		Add(logging.Approved(decision.Approved)).
		Msg("approval resolved")

	if !decision.Approved {
		state.Complete(msgCancelled)
	} else {
		o.executePending(ctx, state, pending, decision)
	}

	if _, err := o.persist(ctx, state, claimed.Version); err != nil {
		return nil, err
	}

	return state, nil
}

// GetState returns the checkpointed state of a thread.
func (o *Orchestrator) GetState(ctx context.Context, threadID string) (*workflow.AgentState, error) {
	if threadID == "" {
		return nil, workflow.ErrInvalidThreadID
	}

	cp, err := o.deps.Checkpoints.Get(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, workflow.ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}

	state := &workflow.AgentState{}
	if err := json.Unmarshal(cp.State, state); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	return state, nil
}

// ListThreads returns the IDs of all checkpointed threads.
func (o *Orchestrator) ListThreads(ctx context.Context) ([]string, error) {
	return o.deps.Checkpoints.List(ctx)
}

// ApprovalHistory returns the resolved approvals for a thread, oldest first.
func (o *Orchestrator) ApprovalHistory(ctx context.Context, threadID string) ([]workflow.ApprovalRecord, error) {
	if o.deps.Approvals == nil {
		return nil, nil
	}
	return o.deps.Approvals.ListByThread(ctx, threadID)
}

// run drives the dispatcher loop until the thread suspends or terminates.
// Unexpected panics in a step are caught here once and mark the thread
// failed instead of leaving it in an undefined state.
func (o *Orchestrator) run(ctx context.Context, state *workflow.AgentState) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Add(logging.ThreadID(state.ThreadID)).
				Add(logging.Str("panic", fmt.Sprint(r))).
				Msg("workflow step panicked")
			state.Fail(msgUnexpected)
		}
	}()

	for !state.IsTerminal() && state.Current != workflow.StateSuspended {
		from := state.Current
		o.step(ctx, state)

		logging.Debug().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.FromState(from)).
			Add(logging.ToState(state.Current)).
			Msg("transition")

		if state.Current == from {
			// A step that neither advances, suspends, nor terminates would
			// spin forever.
			logging.Error().
				Add(logging.ThreadID(state.ThreadID)).
				Add(logging.State(state.Current)).
				Msg("dispatcher stuck")
			state.Fail(msgUnexpected)
		}
	}
}

// executePending performs the approved side effect. This is the only place
// in the codebase that mutates the calendar or sends email, and it is only
// reachable from an explicitly approved resume.
func (o *Orchestrator) executePending(ctx context.Context, state *workflow.AgentState, action workflow.PendingAction, decision workflow.Decision) {
	switch action.Kind {
	case workflow.ActionBookMeeting:
		created, err := o.deps.Calendar.CreateEvent(ctx, action.CalendarID, action.Event)
		if err != nil {
			logging.Error().
				Add(logging.ThreadID(state.ThreadID)).
				Add(logging.ErrorField(err)).
				Msg("booking failed")
			state.Fail(msgCalendarUnavailable)
			return
		}
		state.Complete(fmt.Sprintf("Booked %q for %s.", created.Summary, o.formatTime(action.Slot.Start)))

	case workflow.ActionMoveMeeting:
		if action.Slot.IsZero() {
			// No open slot was found up front; ask the attendees instead of
			// moving the event blind.
			if o.notifyAttendees(ctx, state, action, decision) {
				state.Complete(fmt.Sprintf("I've asked the attendees of %q to find a new time.", action.Event.Summary))
			} else {
				state.Complete(fmt.Sprintf("I couldn't find an open slot for %q. Please pick a new time manually.", action.Event.Summary))
			}
			return
		}

		moved, err := o.deps.Calendar.MoveEvent(ctx, action.CalendarID, action.Event.ID, action.Slot.Start, action.Slot.End)
		if err != nil {
			logging.Error().
				Add(logging.ThreadID(state.ThreadID)).
				Add(logging.EventID(action.Event.ID)).
				Add(logging.ErrorField(err)).
				Msg("move failed")
			state.Fail(msgCalendarUnavailable)
			return
		}

		response := fmt.Sprintf("Moved %q to %s.", moved.Summary, o.formatTime(action.Slot.Start))
		if o.notifyAttendees(ctx, state, action, decision) {
			response += " The attendees have been notified."
		}
		state.Complete(response)

	default:
		state.Fail(msgUnexpected)
	}
}

// notifyAttendees sends the pending notification draft, applying any
// human-edited body. Returns true when a notification went out.
func (o *Orchestrator) notifyAttendees(ctx context.Context, state *workflow.AgentState, action workflow.PendingAction, decision workflow.Decision) bool {
	if action.Email == nil || o.deps.Sender == nil {
		return false
	}

	draft := *action.Email
	if decision.EditedBody != "" {
		draft.Body = decision.EditedBody
	}

	if err := o.deps.Sender.Send(ctx, o.cfg.UserEmail, draft); err != nil {
		logging.Warn().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.ErrorField(err)).
			Msg("notification send failed")
		return false
	}
	return true
}

// archiveApproval records the resolved approval for audit. Archival
// failures are logged but never block the decision.
func (o *Orchestrator) archiveApproval(ctx context.Context, threadID string, approvalType workflow.ApprovalType, action workflow.PendingAction, decision workflow.Decision) {
	if o.deps.Approvals == nil {
		return
	}

	payload, err := json.Marshal(action)
	if err != nil {
		payload = nil
	}

	record := workflow.ApprovalRecord{
		ThreadID:     threadID,
		ApprovalType: approvalType,
		Payload:      payload,
		Approved:     decision.Approved,
		DecidedBy:    decision.DecidedBy,
		ResolvedAt:   o.now(),
	}

	if err := o.deps.Approvals.Save(ctx, record); err != nil {
		logging.Warn().
			Add(logging.ThreadID(threadID)).
			Add(logging.ErrorField(err)).
			Msg("approval archive failed")
	}
}

// persist checkpoints the state at the given version. Checkpoint failures
// are fatal for the operation; losing suspension state silently would be
// unsafe.
func (o *Orchestrator) persist(ctx context.Context, state *workflow.AgentState, version int64) (checkpoint.Checkpoint, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("encoding state: %w", err)
	}

	cp, err := o.deps.Checkpoints.Put(ctx, checkpoint.Checkpoint{
		ThreadID: state.ThreadID,
		Version:  version,
		State:    data,
	})
	if err != nil && !errors.Is(err, checkpoint.ErrVersionConflict) {
		err = fmt.Errorf("persisting checkpoint: %w", err)
	}
	return cp, err
}

// primaryCalendar returns the calendar new bookings land on.
func (o *Orchestrator) primaryCalendar() string {
	return o.cfg.CalendarIDs[0]
}

// formatTime renders a time in the user's timezone for responses.
func (o *Orchestrator) formatTime(t time.Time) string {
	return t.In(o.cfg.Constitution.Location()).Format("Monday, January 2 at 3:04 PM")
}
