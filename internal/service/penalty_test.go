package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lendana/loan-engine/internal/domain"
)

func TestCalculatePenalty(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 30, 0, 0, time.UTC)
	perDay := decimal.NewFromInt(50)

	t.Run("five days late", func(t *testing.T) {
		term := &domain.Term{
			Amount:  decimal.RequireFromString("8583.33"),
			DueDate: now.AddDate(0, 0, -5),
			Status:  domain.TermStatusPending,
		}

		daysLate, penalty := CalculatePenalty(term, perDay, now)
		assert.Equal(t, 5, daysLate)
		assert.True(t, penalty.Equal(decimal.NewFromInt(250)), "penalty = %s", penalty)
	})

	t.Run("due today accrues nothing", func(t *testing.T) {
		term := &domain.Term{
			Amount:  decimal.NewFromInt(1000),
			DueDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
			Status:  domain.TermStatusPending,
		}

		daysLate, penalty := CalculatePenalty(term, perDay, now.Add(13*time.Hour))
		assert.Equal(t, 0, daysLate)
		assert.True(t, penalty.IsZero())
	})

	t.Run("settled term keeps frozen values", func(t *testing.T) {
		paidAt := now.AddDate(0, 0, -30)
		term := &domain.Term{
			Amount:        decimal.NewFromInt(1000),
			DueDate:       now.AddDate(0, 0, -33),
			Status:        domain.TermStatusPaid,
			PaidAt:        &paidAt,
			DaysLate:      3,
			PenaltyAmount: decimal.NewFromInt(150),
		}

		// A month has passed; the frozen values must not move.
		daysLate, penalty := CalculatePenalty(term, perDay, now)
		assert.Equal(t, 3, daysLate)
		assert.True(t, penalty.Equal(decimal.NewFromInt(150)))
	})
}

func TestEffectiveTermStatus(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	pending := &domain.Term{DueDate: now.AddDate(0, 0, 3), Status: domain.TermStatusPending}
	assert.Equal(t, domain.TermStatusPending, EffectiveTermStatus(pending, now))

	late := &domain.Term{DueDate: now.AddDate(0, 0, -1), Status: domain.TermStatusPending}
	assert.Equal(t, domain.TermStatusOverdue, EffectiveTermStatus(late, now))

	paid := &domain.Term{DueDate: now.AddDate(0, 0, -10), Status: domain.TermStatusPaid}
	assert.Equal(t, domain.TermStatusPaid, EffectiveTermStatus(paid, now))
}
