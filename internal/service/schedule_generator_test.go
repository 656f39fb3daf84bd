package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

func TestGenerateSchedule_ResidualOnLastTerm(t *testing.T) {
	// 25000 at 12% over 3 months: total 25750.00 splits into two 8583.33
	// installments and a final 8583.34 absorbing the rounding residue.
	loanID := uuid.New()
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	terms, total, err := GenerateSchedule(loanID, decimal.NewFromInt(25000), decimal.NewFromInt(12), 3, start)

	require.NoError(t, err)
	require.Len(t, terms, 3)
	assert.True(t, total.Equal(decimal.RequireFromString("25750.00")), "total = %s", total)
	assert.True(t, terms[0].Amount.Equal(decimal.RequireFromString("8583.33")))
	assert.True(t, terms[1].Amount.Equal(decimal.RequireFromString("8583.33")))
	assert.True(t, terms[2].Amount.Equal(decimal.RequireFromString("8583.34")))
}

func TestGenerateSchedule_SumMatchesTotal(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    int
	}{
		{"even split", "12000", "0", 12},
		{"full year full rate", "10000", "12", 12},
		{"residual cents", "10000", "7.5", 7},
		{"single installment", "999.99", "3", 1},
		{"small principal many months", "100", "15", 36},
		{"odd principal", "33333.33", "9.25", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tt.principal)
			rate := decimal.RequireFromString(tt.rate)

			terms, total, err := GenerateSchedule(uuid.New(), principal, rate, tt.months, time.Now())
			require.NoError(t, err)
			require.Len(t, terms, tt.months)

			sum := decimal.Zero
			for _, term := range terms {
				sum = sum.Add(term.Amount)
			}
			assert.True(t, sum.Equal(total), "sum %s != total %s", sum, total)

			interest := principal.Mul(rate).Mul(decimal.NewFromInt(int64(tt.months))).Div(decimal.NewFromInt(1200))
			expected := principal.Add(interest).Round(2)
			assert.True(t, total.Equal(expected), "total %s != %s", total, expected)
		})
	}
}

func TestGenerateSchedule_DueDatesAreCalendarMonths(t *testing.T) {
	start := time.Date(2025, 1, 15, 17, 45, 0, 0, time.UTC)

	terms, _, err := GenerateSchedule(uuid.New(), decimal.NewFromInt(5000), decimal.NewFromInt(10), 3, start)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), terms[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), terms[1].DueDate)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), terms[2].DueDate)

	for i, term := range terms {
		assert.Equal(t, i+1, term.TermNumber)
	}
}

func TestGenerateSchedule_InvalidParameters(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		months    int
	}{
		{"zero months", decimal.NewFromInt(1000), decimal.NewFromInt(10), 0},
		{"negative months", decimal.NewFromInt(1000), decimal.NewFromInt(10), -2},
		{"zero principal", decimal.Zero, decimal.NewFromInt(10), 6},
		{"negative principal", decimal.NewFromInt(-50), decimal.NewFromInt(10), 6},
		{"negative rate", decimal.NewFromInt(1000), decimal.NewFromInt(-1), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := GenerateSchedule(uuid.New(), tt.principal, tt.rate, tt.months, time.Now())
			assert.ErrorIs(t, err, apperrors.ErrInvalidScheduleParams)
		})
	}
}
