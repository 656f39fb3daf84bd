package service

import (
	"time"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/pkg/utils"
)

// DeriveLoanStatus recomputes a loan's status from its term set.
//
// Paid requires every term settled and nothing remaining. Overdue requires
// at least one unsettled term past its due date; settled terms never count,
// however late they were paid. Defaulted is an administrative state and is
// preserved until the loan is fully settled. Anything else is active.
func DeriveLoanStatus(loan *domain.Loan, terms []*domain.Term, asOf time.Time) string {
	allPaid := true
	anyOverdue := false

	for _, term := range terms {
		if term.IsPaid() {
			continue
		}
		allPaid = false
		if utils.DaysLate(term.DueDate, asOf) > 0 {
			anyOverdue = true
		}
	}

	if allPaid && loan.RemainingAmount.IsZero() {
		return domain.LoanStatusPaid
	}

	if loan.Status == domain.LoanStatusDefaulted {
		return domain.LoanStatusDefaulted
	}

	if anyOverdue {
		return domain.LoanStatusOverdue
	}

	return domain.LoanStatusActive
}
