package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lendana/loan-engine/internal/domain"
)

// TxRunnerFunc runs the unit directly; unit tests have no real transaction.
type TxRunnerFunc struct{}

func (TxRunnerFunc) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockLoanTypeRepository struct {
	mock.Mock
}

func (m *MockLoanTypeRepository) Create(ctx context.Context, loanType *domain.LoanType) error {
	args := m.Called(ctx, loanType)
	return args.Error(0)
}

func (m *MockLoanTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanType), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateAggregates(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

type MockTermRepository struct {
	mock.Mock
}

func (m *MockTermRepository) CreateBatch(ctx context.Context, terms []*domain.Term) error {
	args := m.Called(ctx, terms)
	return args.Error(0)
}

func (m *MockTermRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Term, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Term), args.Error(1)
}

func (m *MockTermRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Term, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Term), args.Error(1)
}

func (m *MockTermRepository) Update(ctx context.Context, term *domain.Term) error {
	args := m.Called(ctx, term)
	return args.Error(0)
}

func (m *MockTermRepository) ResetDispatchFlags(ctx context.Context, termID uuid.UUID) error {
	args := m.Called(ctx, termID)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkCompleted(ctx context.Context, paymentID uuid.UUID, approvedAt time.Time) error {
	args := m.Called(ctx, paymentID, approvedAt)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, paymentID uuid.UUID, reason string) error {
	args := m.Called(ctx, paymentID, reason)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ExistsOn(ctx context.Context, userID uuid.UUID, notifType, entityType string, entityID uuid.UUID, day time.Time) (bool, error) {
	args := m.Called(ctx, userID, notifType, entityType, entityID, day)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
