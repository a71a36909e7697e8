package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/constitution"
	"github.com/ssumakant/abp-agent/domain/email"
	"github.com/ssumakant/abp-agent/domain/intent"
	"github.com/ssumakant/abp-agent/domain/schedule"
	"github.com/ssumakant/abp-agent/domain/workflow"
	"github.com/ssumakant/abp-agent/infrastructure/logging"
)

// step executes the transition function for the state the thread is in.
// Each step either advances the state, suspends, or terminates.
func (o *Orchestrator) step(ctx context.Context, state *workflow.AgentState) {
	switch state.Current {
	case workflow.StateLoadContext:
		o.stepLoadContext(state)
	case workflow.StateClassifyIntent:
		o.stepClassifyIntent(ctx, state)
	case workflow.StateAssessBusyness:
		o.stepAssessBusyness(ctx, state)
	case workflow.StateIdentifyCandidate:
		o.stepIdentifyCandidate(ctx, state)
	case workflow.StateValidateAndBook:
		o.stepValidateAndBook(ctx, state)
	default:
		logging.Error().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.State(state.Current)).
			Msg("no transition for state")
		state.Fail(msgUnexpected)
	}
}

// stepLoadContext validates the constitution snapshot for this run. The
// snapshot is immutable for the rest of the thread.
func (o *Orchestrator) stepLoadContext(state *workflow.AgentState) {
	if err := o.cfg.Constitution.Validate(); err != nil {
		logging.Error().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.ErrorField(err)).
			Msg("invalid constitution")
		state.Fail(msgUnexpected)
		return
	}
	state.TransitionTo(workflow.StateClassifyIntent)
}

// stepClassifyIntent asks the external classifier what the user wants and
// routes to the matching branch. Classifier failures degrade to the unknown
// intent; they never crash the workflow.
func (o *Orchestrator) stepClassifyIntent(ctx context.Context, state *workflow.AgentState) {
	result, err := o.deps.Classifier.Classify(ctx, state.OriginalRequest, o.cfg.Constitution)
	if err != nil || result == nil || !result.Intent.IsValid() {
		if err != nil {
			logging.Warn().
				Add(logging.ThreadID(state.ThreadID)).
				Add(logging.ErrorField(err)).
				Msg("classifier failed, treating intent as unknown")
		}
		result = &intent.Result{Intent: intent.IntentUnknown}
	}

	state.DetectedIntent = result.Intent
	state.MeetingRequest = result.Meeting

	logging.Info().
		Add(logging.ThreadID(state.ThreadID)).
		Add(logging.Intent(result.Intent)).
		Msg("intent classified")

	switch result.Intent {
	case intent.IntentScheduleMeeting, intent.IntentCheckAvailability, intent.IntentAssessBusyness:
		state.TransitionTo(workflow.StateAssessBusyness)
	case intent.IntentRescheduleMeeting:
		state.TransitionTo(workflow.StateIdentifyCandidate)
	default:
		state.Complete(msgUnknownIntent)
	}
}

// stepAssessBusyness measures schedule density over the busyness window.
// Pure reporting intents complete here; a scheduling request routes onward
// based on whether the calendar is over threshold.
func (o *Orchestrator) stepAssessBusyness(ctx context.Context, state *workflow.AgentState) {
	now := o.now()
	windowDays := o.cfg.Constitution.BusynessWindowDays
	if windowDays <= 0 {
		windowDays = 7
	}

	events, err := o.deps.Calendar.ListEvents(ctx, o.cfg.CalendarIDs, now, now.AddDate(0, 0, windowDays))
	if err != nil {
		logging.Error().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.ErrorField(err)).
			Msg("calendar listing failed")
		state.Fail(msgCalendarUnavailable)
		return
	}

	report := schedule.Analyze(events, o.cfg.Constitution, now, windowDays)
	state.Busyness = &report

	logging.Info().
		Add(logging.ThreadID(state.ThreadID)).
		Add(logging.Density(report.Density)).
		Msg("busyness assessed")

	switch state.DetectedIntent {
	case intent.IntentAssessBusyness:
		state.Complete(report.Message)

	case intent.IntentCheckAvailability:
		slots := schedule.FindAvailableSlots(events, o.cfg.Constitution, o.requestedDuration(state), now, now.AddDate(0, 0, windowDays))
		state.Complete(o.availabilityResponse(report, slots))

	case intent.IntentScheduleMeeting:
		if report.IsBusy {
			state.TransitionTo(workflow.StateIdentifyCandidate)
		} else {
			state.TransitionTo(workflow.StateValidateAndBook)
		}

	default:
		state.Fail(msgUnexpected)
	}
}

// stepIdentifyCandidate finds the best meeting to displace and suspends for
// approval of the move. No candidate is a normal outcome, not an error.
func (o *Orchestrator) stepIdentifyCandidate(ctx context.Context, state *workflow.AgentState) {
	now := o.now()
	lookahead := o.cfg.Constitution.LookaheadDays
	if lookahead <= 0 {
		lookahead = 14
	}
	searchEnd := now.AddDate(0, 0, lookahead)

	events, err := o.deps.Calendar.ListEvents(ctx, o.cfg.CalendarIDs, now, searchEnd)
	if err != nil {
		logging.Error().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.ErrorField(err)).
			Msg("calendar listing failed")
		state.Fail(msgCalendarUnavailable)
		return
	}

	candidate := schedule.SelectCandidate(events, o.cfg.UserEmail, o.internalDomain())
	if candidate == nil {
		state.Complete(msgNoCandidates)
		return
	}
	state.CandidateMeeting = candidate

	logging.Info().
		Add(logging.ThreadID(state.ThreadID)).
		Add(logging.EventID(candidate.Event.ID)).
		Add(logging.Tier(candidate.Tier)).
		Msg("reschedule candidate selected")

	var proposed calendar.Slot
	if slots := schedule.FindAvailableSlots(events, o.cfg.Constitution, candidate.Event.Duration(), candidate.Event.End, searchEnd); len(slots) > 0 {
		proposed = slots[0]
		state.ProposedSlot = &proposed
	}

	action := workflow.PendingAction{
		Kind:       workflow.ActionMoveMeeting,
		CalendarID: o.primaryCalendar(),
		Event:      candidate.Event,
		Slot:       proposed,
		Email:      o.draftNotification(ctx, state, candidate.Event, proposed),
		Reason:     candidate.Explanation,
	}

	prompt := candidate.Explanation
	if proposed.IsZero() {
		prompt += fmt.Sprintf(" Shall I reach out to move %q?", candidate.Event.Summary)
	} else {
		prompt += fmt.Sprintf(" Shall I move %q to %s?", candidate.Event.Summary, o.formatTime(proposed.Start))
	}

	state.Suspend(workflow.ApprovalRescheduleMeeting, action, prompt)
}

// stepValidateAndBook checks a requested slot against the constitution.
// Both outcomes suspend: a violation asks for an override, a clean slot
// still asks for booking confirmation because booking mutates the calendar.
func (o *Orchestrator) stepValidateAndBook(ctx context.Context, state *workflow.AgentState) {
	request := state.MeetingRequest
	if request == nil || request.ProposedTime.IsZero() {
		o.suggestOpenings(ctx, state)
		return
	}

	duration := o.requestedDuration(state)
	slot := calendar.Slot{Start: request.ProposedTime, End: request.ProposedTime.Add(duration)}
	state.ProposedSlot = &slot

	eventType := request.EventType
	if eventType == "" {
		eventType = constitution.EventBusiness
	}

	title := request.Title
	if title == "" {
		title = "New meeting"
	}

	event := calendar.Event{
		Summary:   title,
		Start:     slot.Start,
		End:       slot.End,
		Attendees: o.bookingAttendees(request.Attendees),
	}

	action := workflow.PendingAction{
		Kind:       workflow.ActionBookMeeting,
		CalendarID: o.primaryCalendar(),
		Event:      event,
		Slot:       slot,
	}

	verdict := constitution.Evaluate(slot, eventType, o.cfg.Constitution)
	if !verdict.Allowed {
		state.Violation = &verdict
		action.Reason = verdict.Reason
		state.Suspend(workflow.ApprovalConstitutionOverride, action,
			fmt.Sprintf("%s Do you want to book %q anyway?", verdict.Reason, title))
		return
	}

	state.Suspend(workflow.ApprovalBookMeeting, action,
		fmt.Sprintf("Book %q for %s?", title, o.formatTime(slot.Start)))
}

// suggestOpenings completes a scheduling request that named no concrete
// time by offering open slots instead.
func (o *Orchestrator) suggestOpenings(ctx context.Context, state *workflow.AgentState) {
	now := o.now()
	lookahead := o.cfg.Constitution.LookaheadDays
	if lookahead <= 0 {
		lookahead = 14
	}

	events, err := o.deps.Calendar.ListEvents(ctx, o.cfg.CalendarIDs, now, now.AddDate(0, 0, lookahead))
	if err != nil {
		logging.Error().
			Add(logging.ThreadID(state.ThreadID)).
			Add(logging.ErrorField(err)).
			Msg("calendar listing failed")
		state.Fail(msgCalendarUnavailable)
		return
	}

	slots := schedule.FindAvailableSlots(events, o.cfg.Constitution, o.requestedDuration(state), now, now.AddDate(0, 0, lookahead))
	if len(slots) == 0 {
		state.Complete("I couldn't find an open slot in the next two weeks. Tell me a specific time and I'll check it.")
		return
	}

	state.Complete("I need a specific time to book that. " + o.formatSlotList(slots))
}

// draftNotification composes the attendee notification for a move. Solo
// meetings have nobody to notify; drafter failures degrade to no draft.
func (o *Orchestrator) draftNotification(ctx context.Context, state *workflow.AgentState, meeting calendar.Event, slot calendar.Slot) *email.Draft {
	if o.deps.Drafter == nil {
		return nil
	}

	draft, err := o.deps.Drafter.DraftReschedule(ctx, email.DraftRequest{
		Meeting:   meeting,
		NewSlot:   slot,
		UserName:  o.cfg.UserName,
		UserEmail: o.cfg.UserEmail,
	})
	if err != nil {
		if !errors.Is(err, email.ErrNoRecipients) {
			logging.Warn().
				Add(logging.ThreadID(state.ThreadID)).
				Add(logging.ErrorField(err)).
				Msg("notification draft failed")
		}
		return nil
	}
	return &draft
}

// requestedDuration returns the meeting duration the request asked for, or
// the configured default.
func (o *Orchestrator) requestedDuration(state *workflow.AgentState) time.Duration {
	if state.MeetingRequest != nil && state.MeetingRequest.DurationMinutes > 0 {
		return time.Duration(state.MeetingRequest.DurationMinutes) * time.Minute
	}
	return o.cfg.DefaultMeetingDuration
}

// internalDomain returns the configured organization domain, derived from
// the user's email when unset.
func (o *Orchestrator) internalDomain() string {
	if o.cfg.InternalDomain != "" {
		return o.cfg.InternalDomain
	}
	if at := strings.LastIndex(o.cfg.UserEmail, "@"); at >= 0 && at < len(o.cfg.UserEmail)-1 {
		return strings.ToLower(o.cfg.UserEmail[at+1:])
	}
	return ""
}

// bookingAttendees builds the attendee list for a new event. The user is
// the organizer; everyone else starts unanswered.
func (o *Orchestrator) bookingAttendees(emails []string) []calendar.Attendee {
	attendees := []calendar.Attendee{{
		Email:          o.cfg.UserEmail,
		ResponseStatus: calendar.ResponseAccepted,
		IsOrganizer:    true,
	}}
	for _, addr := range emails {
		if strings.EqualFold(addr, o.cfg.UserEmail) {
			continue
		}
		attendees = append(attendees, calendar.Attendee{
			Email:          addr,
			ResponseStatus: calendar.ResponseNeedsAction,
		})
	}
	return attendees
}

// availabilityResponse combines the density summary with concrete openings.
func (o *Orchestrator) availabilityResponse(report schedule.Report, slots []calendar.Slot) string {
	if len(slots) == 0 {
		return report.Message + " I couldn't find any open slots in the window."
	}
	return report.Message + " " + o.formatSlotList(slots)
}

// formatSlotList renders openings as a user-facing list.
func (o *Orchestrator) formatSlotList(slots []calendar.Slot) string {
	formatted := make([]string, 0, len(slots))
	for _, s := range slots {
		formatted = append(formatted, o.formatTime(s.Start))
	}
	return "Here are some openings: " + strings.Join(formatted, "; ") + "."
}
