package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
	"github.com/lendana/loan-engine/pkg/logger"
	"github.com/lendana/loan-engine/tests/mocks"
)

func newMockedLedger(
	loanTypes *mocks.MockLoanTypeRepository,
	loans *mocks.MockLoanRepository,
	terms *mocks.MockTermRepository,
	payments *mocks.MockPaymentRepository,
) *LedgerService {
	return NewLedgerService(
		mocks.TxRunnerFunc{},
		loanTypes, loans, terms, payments,
		nil,
		decimal.RequireFromString("0.01"),
		logger.NewNop(),
	)
}

func TestApplyApprovedPayment_UnknownPayment(t *testing.T) {
	payments := new(mocks.MockPaymentRepository)
	paymentID := uuid.New()
	payments.On("GetByID", mock.Anything, paymentID).Return(nil, sql.ErrNoRows)

	svc := newMockedLedger(new(mocks.MockLoanTypeRepository), new(mocks.MockLoanRepository), new(mocks.MockTermRepository), payments)

	_, err := svc.ApplyApprovedPayment(context.Background(), paymentID)
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
	payments.AssertExpectations(t)
}

func TestCreateLoan_StorageFailureIsWrapped(t *testing.T) {
	loanTypes := new(mocks.MockLoanTypeRepository)
	loans := new(mocks.MockLoanRepository)

	loanType := &domain.LoanType{
		ID:            uuid.New(),
		MinAmount:     decimal.NewFromInt(1000),
		MaxAmount:     decimal.NewFromInt(100000),
		InterestRate:  decimal.NewFromInt(10),
		AllowedMonths: pq.Int64Array{3},
	}
	loanTypes.On("GetByID", mock.Anything, loanType.ID).Return(loanType, nil)

	connReset := errors.New("write tcp: connection reset by peer")
	loans.On("Create", mock.Anything, mock.AnythingOfType("*domain.Loan")).Return(connReset)

	svc := newMockedLedger(loanTypes, loans, new(mocks.MockTermRepository), new(mocks.MockPaymentRepository))

	_, _, err := svc.CreateLoan(context.Background(), &domain.CreateLoanRequest{
		UserID:          uuid.New(),
		LoanTypeID:      loanType.ID,
		PrincipalAmount: decimal.NewFromInt(5000),
		MonthsToPay:     3,
	})

	require.Error(t, err)
	var bizErr *apperrors.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, bizErr.Code)
	assert.ErrorIs(t, err, connReset)
	loans.AssertExpectations(t)
}
