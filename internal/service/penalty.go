package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/pkg/utils"
)

// CalculatePenalty returns how late a term is and the penalty accrued as of
// the given time. For a settled term the values frozen at settlement are
// authoritative and returned unchanged; the clock never reopens them.
func CalculatePenalty(term *domain.Term, penaltyPerDay decimal.Decimal, asOf time.Time) (int, decimal.Decimal) {
	if term.IsPaid() {
		return term.DaysLate, term.PenaltyAmount
	}

	daysLate := utils.DaysLate(term.DueDate, asOf)
	penalty := penaltyPerDay.Mul(decimal.NewFromInt(int64(daysLate)))

	return daysLate, penalty
}

// EffectiveTermStatus derives what a reader should see for a term right
// now: paid is terminal, otherwise a past-due term presents as overdue.
func EffectiveTermStatus(term *domain.Term, asOf time.Time) string {
	if term.IsPaid() {
		return domain.TermStatusPaid
	}
	if utils.DaysLate(term.DueDate, asOf) > 0 {
		return domain.TermStatusOverdue
	}
	return domain.TermStatusPending
}
