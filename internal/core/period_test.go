package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	for _, in := range []string{"month", "year", " month "} {
		_, err := ParsePeriod(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"", "week", "Month", "YEAR", "day"} {
		_, err := ParsePeriod(in)
		assert.ErrorIs(t, err, ErrInvalidPeriod, in)
	}
}

func TestPeriodWindow(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		now    time.Time
		since  time.Time
	}{
		{
			name:   "month mid-month",
			period: PeriodMonth,
			now:    time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
			since:  time.Date(2025, 5, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:   "month crosses year",
			period: PeriodMonth,
			now:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			since:  time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "month clamps to end of february",
			period: PeriodMonth,
			now:    time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC),
			since:  time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "month clamps in leap year",
			period: PeriodMonth,
			now:    time.Date(2024, 3, 30, 8, 0, 0, 0, time.UTC),
			since:  time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "year",
			period: PeriodYear,
			now:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			since:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year from leap day",
			period: PeriodYear,
			now:    time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			since:  time.Date(2023, 2, 28, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := tt.period.Window(tt.now)
			require.NoError(t, err)
			assert.True(t, tt.since.Equal(w.Since), "since = %v, want %v", w.Since, tt.since)
			assert.True(t, tt.now.Equal(w.Until))
		})
	}

	_, err := Period("week").Window(time.Now())
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestWindowContainsIsHalfOpen(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	w, err := PeriodMonth.Window(now)
	require.NoError(t, err)

	assert.True(t, w.Contains(w.Since))
	assert.True(t, w.Contains(now.Add(-time.Millisecond)))
	assert.False(t, w.Contains(now))
	assert.False(t, w.Contains(w.Since.Add(-time.Millisecond)))
}
