package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

func TestRateFor(t *testing.T) {
	loanType := &domain.LoanType{
		Name:          "Salary Loan",
		InterestRate:  decimal.NewFromInt(10),
		AllowedMonths: pq.Int64Array{3, 6, 12},
		RatesByMonth: domain.RateByMonth{
			3: decimal.NewFromInt(12),
			6: decimal.RequireFromString("14.5"),
		},
	}

	t.Run("configured month uses its rate", func(t *testing.T) {
		rate, err := RateFor(loanType, 3)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(12)))
	})

	t.Run("allowed month without entry falls back to flat rate", func(t *testing.T) {
		rate, err := RateFor(loanType, 12)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(10)))
	})

	t.Run("disallowed month is rejected", func(t *testing.T) {
		_, err := RateFor(loanType, 9)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTermLength)
	})
}
