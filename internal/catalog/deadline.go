package catalog

import (
	"fmt"
	"math"
	"time"
)

// DeadlineStatus is the coarse state of a deadline relative to today.
type DeadlineStatus string

const (
	DeadlineExpired  DeadlineStatus = "EXPIRED"
	DeadlineDueToday DeadlineStatus = "DUE_TODAY"
	DeadlineOpen     DeadlineStatus = "OPEN"
)

// UrgentWithinDays is the largest countdown still flagged as urgent.
const UrgentWithinDays = 7

// Deadline is the presentation-side classification of a due date. It never
// influences which records a query returns or their order.
type Deadline struct {
	Status   DeadlineStatus
	DaysLeft int // 0 unless Status is DeadlineOpen
	Urgent   bool
}

// ClassifyDeadline compares due against today after truncating both to
// midnight.
func ClassifyDeadline(due, today time.Time) Deadline {
	d, t := midnight(due), midnight(today)
	switch {
	case d.Before(t):
		return Deadline{Status: DeadlineExpired}
	case d.Equal(t):
		return Deadline{Status: DeadlineDueToday}
	}
	days := int(math.Ceil(d.Sub(t).Hours() / 24))
	return Deadline{
		Status:   DeadlineOpen,
		DaysLeft: days,
		Urgent:   IsUrgent(days),
	}
}

// IsUrgent reports whether a countdown of daysLeft falls in [1, 7].
func IsUrgent(daysLeft int) bool {
	return daysLeft >= 1 && daysLeft <= UrgentWithinDays
}

// Label renders the countdown the way announcement boards do: "마감",
// "D-day" or "D-n".
func (d Deadline) Label() string {
	switch d.Status {
	case DeadlineExpired:
		return "마감"
	case DeadlineDueToday:
		return "D-day"
	}
	return fmt.Sprintf("D-%d", d.DaysLeft)
}

func midnight(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
