package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
	"github.com/lendana/loan-engine/pkg/utils"
)

// GenerateSchedule amortizes a loan into monthly installments.
//
// The rate is an annual percentage prorated across the term: interest =
// principal · rate/100 · months/12, so a 3-month loan at 12% carries 3%.
// The first months-1 terms each get the total divided by the term count,
// truncated to cents; the final term absorbs the residual. Landing the
// remainder on the last installment, never spreading it, keeps the split
// deterministic and the schedule sum exactly equal to the loan total.
// Due dates use calendar-month arithmetic from the start date.
func GenerateSchedule(loanID uuid.UUID, principal, rate decimal.Decimal, months int, start time.Time) ([]*domain.Term, decimal.Decimal, error) {
	if months <= 0 {
		return nil, decimal.Zero, apperrors.WrapInvalidScheduleParams(fmt.Sprintf("months must be positive, got %d", months))
	}
	if !principal.IsPositive() {
		return nil, decimal.Zero, apperrors.WrapInvalidScheduleParams(fmt.Sprintf("principal must be positive, got %s", principal))
	}
	if rate.IsNegative() {
		return nil, decimal.Zero, apperrors.WrapInvalidScheduleParams(fmt.Sprintf("rate must not be negative, got %s", rate))
	}

	interest := principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))).Div(decimal.NewFromInt(1200))
	totalAmount := utils.Round2(principal.Add(interest))
	baseAmount := utils.Floor2(totalAmount.Div(decimal.NewFromInt(int64(months))))

	now := time.Now()
	terms := make([]*domain.Term, 0, months)
	allocated := decimal.Zero

	for number := 1; number <= months; number++ {
		amount := baseAmount
		if number == months {
			amount = totalAmount.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		terms = append(terms, &domain.Term{
			ID:            uuid.New(),
			LoanID:        loanID,
			TermNumber:    number,
			Amount:        amount,
			DueDate:       utils.InstallmentDueDate(start, number),
			AmountPaid:    decimal.Zero,
			PenaltyAmount: decimal.Zero,
			Status:        domain.TermStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return terms, totalAmount, nil
}
