package ledger

import "time"

// =============================================================================
// PERIOD - Inclusive reporting window
// =============================================================================

// Period is an inclusive [Start, End] reporting window. Derivation snaps the
// boundaries to day-start and day-end, so a period built from two dates
// covers every event on both days.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period from two dates, normalized to day boundaries
// (start 00:00:00, end 23:59:59.999999999 UTC).
func NewPeriod(start, end time.Time) Period {
	return Period{Start: DayStart(start), End: DayEnd(end)}
}

// Day returns the single-day period containing t.
func Day(t time.Time) Period { return NewPeriod(t, t) }

// Month returns the calendar-month period containing t.
func Month(t time.Time) Period {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return NewPeriod(first, last)
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

func (p Period) Valid() bool { return !p.End.Before(p.Start) }

func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Nanosecond)
}
