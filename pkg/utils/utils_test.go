package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloor2(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"repeating third", "8583.333333", "8583.33"},
		{"already two places", "100.50", "100.5"},
		{"rounds down not half up", "10.999", "10.99"},
		{"whole number", "25750", "25750"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := decimal.NewFromString(tt.in)
			expected, _ := decimal.NewFromString(tt.expected)
			assert.True(t, Floor2(in).Equal(expected), "got %s", Floor2(in))
		})
	}
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		asOf     time.Time
		expected int
	}{
		{"before due date", due.AddDate(0, 0, -3), 0},
		{"on due date at midnight", due, 0},
		{"on due date late evening", due.Add(23 * time.Hour), 0},
		{"one day after", due.AddDate(0, 0, 1), 1},
		{"five days after", due.AddDate(0, 0, 5).Add(9 * time.Hour), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLate(due, tt.asOf))
		})
	}
}

func TestDaysLate_AcrossSpringForward(t *testing.T) {
	// 2025-03-09 is only 23 hours long in New York; the shortened day
	// must still count as a full day late.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	due := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)
	asOf := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)

	assert.Equal(t, 1, DaysLate(due, asOf))
	assert.Equal(t, -1, DaysUntilDue(due, asOf))

	// Fall-back gives a 25-hour day; it must not count twice.
	fallDue := time.Date(2025, 11, 2, 0, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysLate(fallDue, time.Date(2025, 11, 3, 10, 0, 0, 0, loc)))
}

func TestDaysUntilDue(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, DaysUntilDue(due, due.AddDate(0, 0, -7)))
	assert.Equal(t, 0, DaysUntilDue(due, due.Add(5*time.Hour)))
	assert.Equal(t, -2, DaysUntilDue(due, due.AddDate(0, 0, 2)))
}

func TestInstallmentDueDate(t *testing.T) {
	start := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	first := InstallmentDueDate(start, 1)
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), first)

	// Calendar months, not 30-day blocks: Jan 31 + 1 month lands in March.
	endOfMonth := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), InstallmentDueDate(endOfMonth, 1))
}

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	night := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 2, 0, 0, 1, 0, time.UTC)

	assert.True(t, SameCalendarDay(morning, night))
	assert.False(t, SameCalendarDay(night, nextDay))
}
