package catalog_test

import (
	"testing"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
)

// ── ClassifyDeadline ───────────────────────────────────────────────────────

func TestClassifyDeadline_Expired(t *testing.T) {
	d := catalog.ClassifyDeadline(date("2025-01-05"), date("2025-01-06"))
	if d.Status != catalog.DeadlineExpired {
		t.Errorf("Status = %s, want EXPIRED", d.Status)
	}
	if d.Label() != "마감" {
		t.Errorf("Label() = %q, want 마감", d.Label())
	}
	if d.Urgent {
		t.Error("expired deadline should not be urgent")
	}
}

func TestClassifyDeadline_DueToday(t *testing.T) {
	d := catalog.ClassifyDeadline(date("2025-01-05"), date("2025-01-05"))
	if d.Status != catalog.DeadlineDueToday {
		t.Errorf("Status = %s, want DUE_TODAY", d.Status)
	}
	if d.Label() != "D-day" {
		t.Errorf("Label() = %q, want D-day", d.Label())
	}
	if d.Urgent {
		t.Error("due-today deadline is labelled D-day, not flagged urgent")
	}
}

func TestClassifyDeadline_Countdown(t *testing.T) {
	cases := []struct {
		due    string
		days   int
		label  string
		urgent bool
	}{
		{"2025-01-02", 1, "D-1", true},
		{"2025-01-08", 7, "D-7", true},
		{"2025-01-09", 8, "D-8", false},
		{"2025-03-01", 59, "D-59", false},
	}
	today := date("2025-01-01")
	for _, c := range cases {
		d := catalog.ClassifyDeadline(date(c.due), today)
		if d.Status != catalog.DeadlineOpen {
			t.Errorf("%s: Status = %s, want OPEN", c.due, d.Status)
		}
		if d.DaysLeft != c.days {
			t.Errorf("%s: DaysLeft = %d, want %d", c.due, d.DaysLeft, c.days)
		}
		if d.Label() != c.label {
			t.Errorf("%s: Label() = %q, want %q", c.due, d.Label(), c.label)
		}
		if d.Urgent != c.urgent {
			t.Errorf("%s: Urgent = %v, want %v", c.due, d.Urgent, c.urgent)
		}
	}
}

// Time of day on either side must not shift the countdown.
func TestClassifyDeadline_TruncatesTimeOfDay(t *testing.T) {
	due := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	lateToday := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	d := catalog.ClassifyDeadline(due, lateToday)
	if d.DaysLeft != 2 {
		t.Errorf("DaysLeft = %d, want 2", d.DaysLeft)
	}

	dueWithTime := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	earlyToday := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)
	if got := catalog.ClassifyDeadline(dueWithTime, earlyToday).Status; got != catalog.DeadlineDueToday {
		t.Errorf("same calendar day Status = %s, want DUE_TODAY", got)
	}
}

// ── IsUrgent ───────────────────────────────────────────────────────────────

func TestIsUrgent_Boundaries(t *testing.T) {
	cases := map[int]bool{-1: false, 0: false, 1: true, 7: true, 8: false}
	for days, want := range cases {
		if got := catalog.IsUrgent(days); got != want {
			t.Errorf("IsUrgent(%d) = %v, want %v", days, got, want)
		}
	}
}
