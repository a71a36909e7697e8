package constitution

import (
	"fmt"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

// EventType distinguishes business meetings from personal events. Personal
// events are exempt from weekend protection.
type EventType string

const (
	// EventBusiness is a work meeting.
	EventBusiness EventType = "business"

	// EventPersonal is a personal event.
	EventPersonal EventType = "personal"
)

// OverrideKind identifies which rule a slot violates, so a caller can
// request a specific human override instead of a blanket rejection.
type OverrideKind string

const (
	// OverrideWeekend is required to book a business event on a protected
	// weekend day.
	OverrideWeekend OverrideKind = "weekend_override"

	// OverrideProtectedTime is required to book over a protected time block.
	OverrideProtectedTime OverrideKind = "protected_time_override"

	// OverrideWorkHours is required to book outside working hours.
	OverrideWorkHours OverrideKind = "work_hours_override"
)

// Verdict is the result of evaluating a proposed slot against the
// constitution.
type Verdict struct {
	Allowed bool `json:"allowed"`

	// Reason is a user-facing explanation when the slot is not allowed.
	Reason string `json:"reason,omitempty"`

	// OverrideKind names the override a human could grant. Empty when the
	// slot is allowed.
	OverrideKind OverrideKind `json:"override_kind,omitempty"`
}

// Evaluate checks a proposed slot against the constitution. It is a pure
// function: identical inputs always produce identical verdicts.
//
// Rules are applied in a fixed order and the first violation wins:
//  1. weekend protection (business events only)
//  2. protected time blocks
//  3. working hours
//
// All comparisons happen in the user's configured timezone and interval
// overlap uses half-open [start, end) semantics.
func Evaluate(slot calendar.Slot, eventType EventType, cfg Constitution) Verdict {
	loc := cfg.Location()
	start := slot.Start.In(loc)
	end := slot.End.In(loc)

	// Rule 1: weekend protection.
	if cfg.WeekendPolicy == WeekendProtect && eventType != EventPersonal && cfg.IsWeekendDay(start.Weekday()) {
		return Verdict{
			Reason:       fmt.Sprintf("This is a %s, which is protected for personal time.", weekdayName(start.Weekday())),
			OverrideKind: OverrideWeekend,
		}
	}

	// Rule 2: protected time blocks.
	slotStart := start.Hour()*60 + start.Minute()
	slotEnd := slotStart + int(end.Sub(start).Minutes())
	for _, block := range cfg.ProtectedBlocks {
		if !blockDays(block)[start.Weekday()] {
			continue
		}
		blockStart, err := ParseClock(block.Start)
		if err != nil {
			continue
		}
		blockEnd, err := ParseClock(block.End)
		if err != nil {
			continue
		}
		if slotStart < blockEnd && blockStart < slotEnd {
			name := block.Name
			if name == "" {
				name = "protected time"
			}
			return Verdict{
				Reason:       fmt.Sprintf("This time conflicts with %s.", name),
				OverrideKind: OverrideProtectedTime,
			}
		}
	}

	// Rule 3: working hours.
	workStart, errStart := ParseClock(cfg.WorkHours.Start)
	workEnd, errEnd := ParseClock(cfg.WorkHours.End)
	if errStart == nil && errEnd == nil {
		if slotStart < workStart || slotEnd > workEnd {
			return Verdict{
				Reason: fmt.Sprintf("Meeting at %02d:%02d is outside working hours (%s-%s).",
					start.Hour(), start.Minute(), cfg.WorkHours.Start, cfg.WorkHours.End),
				OverrideKind: OverrideWorkHours,
			}
		}
	}

	return Verdict{Allowed: true}
}

// CheckDensity compares a schedule density against the configured threshold
// and returns whether the user is over capacity along with a user-facing
// message. The comparison is strict: density equal to the threshold is not
// busy.
func CheckDensity(density float64, cfg Constitution) (bool, string) {
	threshold := cfg.BusynessThreshold
	if density > threshold {
		return true, fmt.Sprintf(
			"Your schedule is %.0f%% booked, which exceeds your %.0f%% threshold. I recommend against adding new meetings.",
			density*100, threshold*100)
	}
	return false, fmt.Sprintf(
		"Your schedule is %.0f%% booked. You have capacity for new meetings.",
		density*100)
}

func weekdayName(day time.Weekday) string {
	for name, wd := range weekdayNames {
		if wd == day {
			return name
		}
	}
	return day.String()
}
