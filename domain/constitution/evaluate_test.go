package constitution

import (
	"testing"
	"time"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

// pacific returns the default configuration's timezone.
func pacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	return loc
}

func slotAt(loc *time.Location, year int, month time.Month, day, hour, minute int, d time.Duration) calendar.Slot {
	start := time.Date(year, month, day, hour, minute, 0, 0, loc)
	return calendar.Slot{Start: start, End: start.Add(d)}
}

func TestEvaluateWeekendProtection(t *testing.T) {
	t.Parallel()

	loc := pacific(t)
	cfg := Default()

	// 2025-06-07 is a Saturday.
	saturday := slotAt(loc, 2025, time.June, 7, 10, 0, time.Hour)

	t.Run("business on saturday is blocked", func(t *testing.T) {
		t.Parallel()

		verdict := Evaluate(saturday, EventBusiness, cfg)
		if verdict.Allowed {
			t.Fatal("expected weekend violation")
		}
		if verdict.OverrideKind != OverrideWeekend {
			t.Errorf("override kind = %q, want %q", verdict.OverrideKind, OverrideWeekend)
		}
		if verdict.Reason == "" {
			t.Error("expected a user-facing reason")
		}
	})

	t.Run("personal on saturday is allowed", func(t *testing.T) {
		t.Parallel()

		verdict := Evaluate(saturday, EventPersonal, cfg)
		if !verdict.Allowed {
			t.Fatalf("personal event blocked: %s", verdict.Reason)
		}
	})

	t.Run("allow policy permits business on saturday", func(t *testing.T) {
		t.Parallel()

		relaxed := Default()
		relaxed.WeekendPolicy = WeekendAllow

		verdict := Evaluate(saturday, EventBusiness, relaxed)
		if !verdict.Allowed {
			t.Fatalf("expected allowed under allow policy, got %s", verdict.Reason)
		}
	})
}

func TestEvaluateProtectedBlocks(t *testing.T) {
	t.Parallel()

	loc := pacific(t)
	cfg := Default()

	// 2025-06-09 is a Monday; the school run block is 07:30-08:30.
	tests := []struct {
		name    string
		slot    calendar.Slot
		blocked bool
	}{
		{"inside the block", slotAt(loc, 2025, time.June, 9, 7, 45, 30*time.Minute), true},
		{"overlapping the block start", slotAt(loc, 2025, time.June, 9, 7, 0, time.Hour), true},
		{"ending exactly at block start", slotAt(loc, 2025, time.June, 9, 7, 0, 30*time.Minute), false},
		{"starting exactly at block end", slotAt(loc, 2025, time.June, 9, 8, 30, 30*time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verdict := Evaluate(tt.slot, EventBusiness, cfg)
			blocked := !verdict.Allowed && verdict.OverrideKind == OverrideProtectedTime
			if blocked != tt.blocked {
				t.Errorf("blocked = %v, want %v (reason %q, kind %q)", !verdict.Allowed, tt.blocked, verdict.Reason, verdict.OverrideKind)
			}
		})
	}
}

func TestEvaluateWorkingHours(t *testing.T) {
	t.Parallel()

	loc := pacific(t)
	cfg := Default()

	t.Run("evening slot is outside working hours", func(t *testing.T) {
		t.Parallel()

		// Monday 18:00-19:00 with 09:00-17:00 work hours.
		verdict := Evaluate(slotAt(loc, 2025, time.June, 9, 18, 0, time.Hour), EventBusiness, cfg)
		if verdict.Allowed {
			t.Fatal("expected working-hours violation")
		}
		if verdict.OverrideKind != OverrideWorkHours {
			t.Errorf("override kind = %q, want %q", verdict.OverrideKind, OverrideWorkHours)
		}
	})

	t.Run("slot ending exactly at close is allowed", func(t *testing.T) {
		t.Parallel()

		verdict := Evaluate(slotAt(loc, 2025, time.June, 9, 16, 0, time.Hour), EventBusiness, cfg)
		if !verdict.Allowed {
			t.Fatalf("expected allowed, got %s", verdict.Reason)
		}
	})

	t.Run("midday slot is allowed", func(t *testing.T) {
		t.Parallel()

		verdict := Evaluate(slotAt(loc, 2025, time.June, 10, 10, 0, time.Hour), EventBusiness, cfg)
		if !verdict.Allowed {
			t.Fatalf("expected allowed, got %s", verdict.Reason)
		}
	})
}

func TestEvaluateRuleOrder(t *testing.T) {
	t.Parallel()

	loc := pacific(t)
	cfg := Default()
	cfg.ProtectedBlocks = []ProtectedBlock{{
		Name:  "Everything",
		Days:  []string{"saturday"},
		Start: "00:00",
		End:   "23:59",
	}}

	// A Saturday business slot violates both the weekend rule and the
	// protected block; the weekend rule wins.
	verdict := Evaluate(slotAt(loc, 2025, time.June, 7, 10, 0, time.Hour), EventBusiness, cfg)
	if verdict.OverrideKind != OverrideWeekend {
		t.Errorf("override kind = %q, want %q", verdict.OverrideKind, OverrideWeekend)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	t.Parallel()

	loc := pacific(t)
	cfg := Default()
	slot := slotAt(loc, 2025, time.June, 7, 10, 0, time.Hour)

	first := Evaluate(slot, EventBusiness, cfg)
	for i := 0; i < 100; i++ {
		if got := Evaluate(slot, EventBusiness, cfg); got != first {
			t.Fatalf("verdict changed on call %d: %+v != %+v", i, got, first)
		}
	}
}

func TestCheckDensity(t *testing.T) {
	t.Parallel()

	cfg := Default()

	t.Run("below threshold has capacity", func(t *testing.T) {
		t.Parallel()

		busy, msg := CheckDensity(0.5, cfg)
		if busy {
			t.Error("expected not busy at 50%")
		}
		if msg == "" {
			t.Error("expected a message")
		}
	})

	t.Run("equal to threshold is not busy", func(t *testing.T) {
		t.Parallel()

		if busy, _ := CheckDensity(cfg.BusynessThreshold, cfg); busy {
			t.Error("comparison must be strict")
		}
	})

	t.Run("above threshold is busy", func(t *testing.T) {
		t.Parallel()

		busy, msg := CheckDensity(0.9, cfg)
		if !busy {
			t.Error("expected busy at 90%")
		}
		if msg == "" {
			t.Error("expected a message")
		}
	})
}
