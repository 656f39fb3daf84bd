package service

import (
	"github.com/shopspring/decimal"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

// RateFor resolves the interest rate (in percent) a loan type charges for
// the chosen number of monthly installments. Term lengths without a
// configured per-month rate fall back to the loan type's flat rate.
func RateFor(loanType *domain.LoanType, months int) (decimal.Decimal, error) {
	if !loanType.AllowsMonths(months) {
		return decimal.Zero, apperrors.WrapInvalidTermLength(months)
	}

	if rate, ok := loanType.RatesByMonth[months]; ok {
		return rate, nil
	}

	return loanType.InterestRate, nil
}
