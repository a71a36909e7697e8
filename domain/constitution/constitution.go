// Package constitution provides the user's declarative scheduling rule set
// and the deterministic engine that enforces it.
package constitution

import (
	"fmt"
	"time"
)

// Weekday names accepted in configuration, lowercased.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekendPolicy controls how weekend days are treated.
type WeekendPolicy string

const (
	// WeekendProtect blocks business events on weekend days.
	WeekendProtect WeekendPolicy = "protect"

	// WeekendAllow permits any event on weekend days.
	WeekendAllow WeekendPolicy = "allow"
)

// WorkHours is a daily working window expressed as "HH:MM" strings in the
// user's timezone.
type WorkHours struct {
	Start    string `json:"start" yaml:"start"`
	End      string `json:"end" yaml:"end"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

// ProtectedBlock is a recurring block of time that must not be scheduled
// over, such as a school run.
type ProtectedBlock struct {
	Name  string   `json:"name" yaml:"name"`
	Days  []string `json:"days" yaml:"days"`
	Start string   `json:"start" yaml:"start"`
	End   string   `json:"end" yaml:"end"`
}

// Constitution is the user's scheduling rule set. It is loaded read-only at
// the start of a workflow run and treated as immutable for the whole run.
type Constitution struct {
	WorkHours          WorkHours        `json:"work_hours" yaml:"work_hours"`
	ProtectedBlocks    []ProtectedBlock `json:"protected_time_blocks" yaml:"protected_time_blocks"`
	WeekendDays        []string         `json:"weekend_days" yaml:"weekend_days"`
	WeekendPolicy      WeekendPolicy    `json:"weekend_policy" yaml:"weekend_policy"`
	BusynessThreshold  float64          `json:"busyness_threshold" yaml:"busyness_threshold"`
	BusynessWindowDays int              `json:"busyness_window_days" yaml:"busyness_window_days"`
	LookaheadDays      int              `json:"lookahead_days" yaml:"lookahead_days"`
}

// Default returns the constitution applied to new users: standard working
// hours, protected weekends, a weekday school run block, and an 85% density
// threshold. The busyness window and reschedule lookahead are independent
// periods.
func Default() Constitution {
	return Constitution{
		WorkHours: WorkHours{
			Start:    "09:00",
			End:      "17:00",
			Timezone: "America/Los_Angeles",
		},
		ProtectedBlocks: []ProtectedBlock{
			{
				Name:  "Kids School Run",
				Days:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
				Start: "07:30",
				End:   "08:30",
			},
		},
		WeekendDays:        []string{"saturday", "sunday"},
		WeekendPolicy:      WeekendProtect,
		BusynessThreshold:  0.85,
		BusynessWindowDays: 7,
		LookaheadDays:      14,
	}
}

// Location resolves the configured timezone, falling back to UTC when the
// timezone is empty or unknown.
func (c Constitution) Location() *time.Location {
	if c.WorkHours.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.WorkHours.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WorkingMinutesPerDay returns the length of the daily working window in
// minutes, or 0 if the window is malformed.
func (c Constitution) WorkingMinutesPerDay() int {
	start, err := ParseClock(c.WorkHours.Start)
	if err != nil {
		return 0
	}
	end, err := ParseClock(c.WorkHours.End)
	if err != nil {
		return 0
	}
	if end <= start {
		return 0
	}
	return end - start
}

// IsWeekendDay reports whether the given weekday is configured as a
// protected weekend day.
func (c Constitution) IsWeekendDay(day time.Weekday) bool {
	for _, name := range c.WeekendDays {
		if wd, ok := weekdayNames[name]; ok && wd == day {
			return true
		}
	}
	return false
}

// Validate checks the constitution for structural problems.
func (c Constitution) Validate() error {
	if _, err := ParseClock(c.WorkHours.Start); err != nil {
		return fmt.Errorf("%w: work hours start: %v", ErrInvalidConstitution, err)
	}
	if _, err := ParseClock(c.WorkHours.End); err != nil {
		return fmt.Errorf("%w: work hours end: %v", ErrInvalidConstitution, err)
	}
	if c.WorkingMinutesPerDay() <= 0 {
		return fmt.Errorf("%w: work hours end must be after start", ErrInvalidConstitution)
	}
	if c.BusynessThreshold < 0 || c.BusynessThreshold > 1 {
		return fmt.Errorf("%w: busyness threshold must be in [0,1]", ErrInvalidConstitution)
	}
	for _, block := range c.ProtectedBlocks {
		if _, err := ParseClock(block.Start); err != nil {
			return fmt.Errorf("%w: block %q start: %v", ErrInvalidConstitution, block.Name, err)
		}
		if _, err := ParseClock(block.End); err != nil {
			return fmt.Errorf("%w: block %q end: %v", ErrInvalidConstitution, block.Name, err)
		}
		for _, day := range block.Days {
			if _, ok := weekdayNames[day]; !ok {
				return fmt.Errorf("%w: block %q: unknown day %q", ErrInvalidConstitution, block.Name, day)
			}
		}
	}
	for _, day := range c.WeekendDays {
		if _, ok := weekdayNames[day]; !ok {
			return fmt.Errorf("%w: unknown weekend day %q", ErrInvalidConstitution, day)
		}
	}
	return nil
}

// ParseClock parses an "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// blockDays resolves a protected block's configured days, defaulting to
// weekdays when none are set.
func blockDays(block ProtectedBlock) map[time.Weekday]bool {
	days := block.Days
	if len(days) == 0 {
		days = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	}
	out := make(map[time.Weekday]bool, len(days))
	for _, name := range days {
		if wd, ok := weekdayNames[name]; ok {
			out[wd] = true
		}
	}
	return out
}
