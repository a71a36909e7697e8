package schedule

import (
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/constitution"
)

// maxProposedSlots caps how many free slots a search returns.
const maxProposedSlots = 5

// FindAvailableSlots searches the gaps between busy periods for openings of
// at least the requested duration, within [searchStart, searchEnd) and
// inside working hours. A gap that begins outside working hours or on a
// protected weekend day still yields the working time it spans: the scan
// rolls forward to the next working-day opening instead of discarding the
// gap. Busy periods may come from any number of calendars; they are merged
// before the gap search. Returns at most five slots, earliest first.
func FindAvailableSlots(busy []calendar.Event, cfg constitution.Constitution, duration time.Duration, searchStart, searchEnd time.Time) []calendar.Slot {
	if duration <= 0 || !searchEnd.After(searchStart) {
		return nil
	}

	loc := cfg.Location()
	workStart, errStart := constitution.ParseClock(cfg.WorkHours.Start)
	workEnd, errEnd := constitution.ParseClock(cfg.WorkHours.End)
	if errStart != nil || errEnd != nil || workStart+int(duration.Minutes()) > workEnd {
		return nil
	}

	merged := mergeIntervals(busy)

	openingAfter := func(local time.Time, days int) time.Time {
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, days).Add(time.Duration(workStart) * time.Minute)
	}

	// nextFit rolls t forward to the earliest moment at or after t where a
	// slot of the requested duration fits inside working hours on a working
	// day. Returns limit when no such moment exists before it.
	nextFit := func(t, limit time.Time) time.Time {
		for t.Before(limit) {
			local := t.In(loc)
			if cfg.WeekendPolicy == constitution.WeekendProtect && cfg.IsWeekendDay(local.Weekday()) {
				t = openingAfter(local, 1)
				continue
			}
			minutes := local.Hour()*60 + local.Minute()
			if minutes < workStart {
				t = openingAfter(local, 0)
				continue
			}
			if minutes+int(duration.Minutes()) > workEnd {
				t = openingAfter(local, 1)
				continue
			}
			return t
		}
		return limit
	}

	var slots []calendar.Slot
	current := searchStart

	consider := func(gapStart, gapEnd time.Time) {
		start := gapStart
		for len(slots) < maxProposedSlots {
			start = nextFit(start, gapEnd)
			end := start.Add(duration)
			if end.After(gapEnd) {
				return
			}
			slots = append(slots, calendar.Slot{Start: start, End: end})
			start = openingAfter(start.In(loc), 1)
		}
	}

	for _, busyPeriod := range merged {
		if current.Before(busyPeriod.Start) {
			gapEnd := busyPeriod.Start
			if gapEnd.After(searchEnd) {
				gapEnd = searchEnd
			}
			consider(current, gapEnd)
		}
		if busyPeriod.End.After(current) {
			current = busyPeriod.End
		}
	}

	if current.Before(searchEnd) {
		consider(current, searchEnd)
	}

	return slots
}
