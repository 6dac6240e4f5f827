package core

import (
	"strings"
	"time"
)

const (
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

type (
	// Period names a reporting window ending now.
	Period string

	// Window is the half-open interval [Since, Until).
	Window struct {
		Since time.Time
		Until time.Time
	}
)

// ParsePeriod accepts exactly "month" or "year".
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.TrimSpace(s)); p {
	case PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Window returns [now - 1 unit, now) for p.
func (p Period) Window(now time.Time) (Window, error) {
	var months int
	switch p {
	case PeriodMonth:
		months = 1
	case PeriodYear:
		months = 12
	default:
		return Window{}, ErrInvalidPeriod
	}
	return Window{Since: subtractMonths(now, months), Until: now}, nil
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Until)
}

// subtractMonths moves t back by n calendar months, clamping the day to the
// end of the target month (31 March minus one month is the last of February).
func subtractMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
