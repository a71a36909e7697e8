// Package schedule provides pure scheduling analysis: busyness density,
// tiered reschedule-candidate selection, and free-slot search.
package schedule

import (
	"sort"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/constitution"
)

// Report is the result of a busyness analysis over a window.
type Report struct {
	// Density is the fraction of working time covered by events, in [0,1].
	Density float64 `json:"density"`

	// IsBusy is true when density strictly exceeds the configured threshold.
	IsBusy bool `json:"is_busy"`

	// Message is a user-facing summary relating density to the threshold.
	Message string `json:"message"`

	// BusyMinutes is the merged event time inside working hours.
	BusyMinutes int `json:"busy_minutes"`

	// WorkingMinutes is the total working time in the window.
	WorkingMinutes int `json:"working_minutes"`
}

// Analyze computes schedule density over windowDays starting at windowStart.
//
// Overlapping events are merged into an interval union before busy time is
// summed, so double-booked time is never counted twice. Busy time is
// restricted to the working-hours window on working days; density is merged
// busy minutes divided by total working minutes. IsBusy uses a strict
// comparison against the threshold.
func Analyze(events []calendar.Event, cfg constitution.Constitution, windowStart time.Time, windowDays int) Report {
	loc := cfg.Location()
	merged := mergeIntervals(events)

	workStart, errStart := constitution.ParseClock(cfg.WorkHours.Start)
	workEnd, errEnd := constitution.ParseClock(cfg.WorkHours.End)
	if errStart != nil || errEnd != nil || workEnd <= workStart || windowDays <= 0 {
		_, msg := constitution.CheckDensity(0, cfg)
		return Report{Message: msg}
	}

	day := time.Date(windowStart.In(loc).Year(), windowStart.In(loc).Month(), windowStart.In(loc).Day(), 0, 0, 0, 0, loc)

	var busy, working time.Duration
	for i := 0; i < windowDays; i++ {
		if cfg.IsWeekendDay(day.Weekday()) {
			day = day.AddDate(0, 0, 1)
			continue
		}

		dayWork := calendar.Slot{
			Start: day.Add(time.Duration(workStart) * time.Minute),
			End:   day.Add(time.Duration(workEnd) * time.Minute),
		}
		working += dayWork.Duration()

		for _, interval := range merged {
			busy += overlap(interval, dayWork)
		}

		day = day.AddDate(0, 0, 1)
	}

	var density float64
	if working > 0 {
		density = busy.Minutes() / working.Minutes()
	}
	if density > 1 {
		density = 1
	}

	isBusy, msg := constitution.CheckDensity(density, cfg)
	return Report{
		Density:        density,
		IsBusy:         isBusy,
		Message:        msg,
		BusyMinutes:    int(busy.Minutes()),
		WorkingMinutes: int(working.Minutes()),
	}
}

// mergeIntervals returns the interval union of all event times, sorted by
// start.
func mergeIntervals(events []calendar.Event) []calendar.Slot {
	intervals := make([]calendar.Slot, 0, len(events))
	for _, e := range events {
		if !e.End.After(e.Start) {
			continue
		}
		intervals = append(intervals, calendar.Slot{Start: e.Start, End: e.End})
	}
	if len(intervals) == 0 {
		return nil
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	merged := []calendar.Slot{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// overlap returns the duration two half-open intervals share.
func overlap(a, b calendar.Slot) time.Duration {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
