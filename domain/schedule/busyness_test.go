package schedule

import (
	"testing"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
	"github.com/ssumakant/abp-agent/domain/constitution"
)

// testConstitution returns a UTC rule set so test times read literally.
func testConstitution() constitution.Constitution {
	cfg := constitution.Default()
	cfg.WorkHours.Timezone = "UTC"
	return cfg
}

// monday is a fixed Monday 00:00 UTC anchor for window math.
var monday = time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)

func event(id string, start time.Time, d time.Duration, attendees ...calendar.Attendee) calendar.Event {
	return calendar.Event{
		ID:        id,
		Summary:   id,
		Start:     start,
		End:       start.Add(d),
		Attendees: attendees,
	}
}

func TestAnalyzeDensityWithinBounds(t *testing.T) {
	t.Parallel()

	cfg := testConstitution()

	tests := []struct {
		name   string
		events []calendar.Event
	}{
		{"no events", nil},
		{"one meeting", []calendar.Event{
			event("a", monday.Add(10*time.Hour), time.Hour),
		}},
		{"fully booked and beyond", []calendar.Event{
			event("a", monday, 24*time.Hour),
			event("b", monday.AddDate(0, 0, 1), 24*time.Hour),
			event("c", monday.AddDate(0, 0, 2), 24*time.Hour),
			event("d", monday.AddDate(0, 0, 3), 24*time.Hour),
			event("e", monday.AddDate(0, 0, 4), 24*time.Hour),
		}},
		{"events outside working hours", []calendar.Event{
			event("night", monday.Add(22*time.Hour), 2*time.Hour),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := Analyze(tt.events, cfg, monday, 5)
			if report.Density < 0 || report.Density > 1 {
				t.Errorf("density %f out of [0,1]", report.Density)
			}
			if report.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestAnalyzeSevenBusyHoursInFiveDayWindow(t *testing.T) {
	t.Parallel()

	cfg := testConstitution()

	// 7 busy hours on Monday inside 09:00-17:00; the rest of the 5-day,
	// 8h-per-day window is free. Density is 7/40.
	events := []calendar.Event{
		event("long", monday.Add(9*time.Hour), 7*time.Hour),
	}

	report := Analyze(events, cfg, monday, 5)

	want := 7.0 / 40.0
	if diff := report.Density - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("density = %f, want %f", report.Density, want)
	}
	if report.IsBusy {
		t.Error("0.175 density should not be busy at threshold 0.85")
	}
	if report.BusyMinutes != 7*60 {
		t.Errorf("busy minutes = %d, want %d", report.BusyMinutes, 7*60)
	}
	if report.WorkingMinutes != 40*60 {
		t.Errorf("working minutes = %d, want %d", report.WorkingMinutes, 40*60)
	}
}

func TestAnalyzeMergesOverlaps(t *testing.T) {
	t.Parallel()

	cfg := testConstitution()

	// Two fully overlapping meetings must count once.
	doubleBooked := []calendar.Event{
		event("a", monday.Add(10*time.Hour), time.Hour),
		event("b", monday.Add(10*time.Hour), time.Hour),
	}
	single := []calendar.Event{
		event("a", monday.Add(10*time.Hour), time.Hour),
	}

	merged := Analyze(doubleBooked, cfg, monday, 5)
	baseline := Analyze(single, cfg, monday, 5)

	if merged.Density != baseline.Density {
		t.Errorf("double-booked density %f != single density %f", merged.Density, baseline.Density)
	}

	// Partial overlap: 10:00-11:00 and 10:30-11:30 merge into 90 minutes,
	// never 120.
	partial := Analyze([]calendar.Event{
		event("a", monday.Add(10*time.Hour), time.Hour),
		event("b", monday.Add(10*time.Hour+30*time.Minute), time.Hour),
	}, cfg, monday, 5)

	if partial.BusyMinutes != 90 {
		t.Errorf("merged busy minutes = %d, want 90", partial.BusyMinutes)
	}
}

func TestAnalyzeSkipsWeekends(t *testing.T) {
	t.Parallel()

	cfg := testConstitution()

	// A 7-day window starting Monday has 5 working days.
	report := Analyze(nil, cfg, monday, 7)
	if report.WorkingMinutes != 5*480 {
		t.Errorf("working minutes = %d, want %d", report.WorkingMinutes, 5*480)
	}

	// Saturday events contribute nothing.
	saturday := monday.AddDate(0, 0, 5)
	busy := Analyze([]calendar.Event{
		event("sat", saturday.Add(10*time.Hour), 4*time.Hour),
	}, cfg, monday, 7)
	if busy.BusyMinutes != 0 {
		t.Errorf("weekend events counted: %d busy minutes", busy.BusyMinutes)
	}
}

func TestAnalyzeDegenerateWindow(t *testing.T) {
	t.Parallel()

	cfg := testConstitution()

	report := Analyze(nil, cfg, monday, 0)
	if report.Density != 0 || report.IsBusy {
		t.Errorf("zero-day window should be empty: %+v", report)
	}
}

func TestMergeIntervalsDropsInverted(t *testing.T) {
	t.Parallel()

	merged := mergeIntervals([]calendar.Event{
		{ID: "inverted", Start: monday.Add(2 * time.Hour), End: monday},
		{ID: "ok", Start: monday.Add(3 * time.Hour), End: monday.Add(4 * time.Hour)},
	})

	if len(merged) != 1 {
		t.Fatalf("merged %d intervals, want 1", len(merged))
	}
	if !merged[0].Start.Equal(monday.Add(3 * time.Hour)) {
		t.Errorf("unexpected interval start %v", merged[0].Start)
	}
}
