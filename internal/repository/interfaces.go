package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lendana/loan-engine/internal/domain"
)

// TxRunner executes a function inside a single database transaction.
// Repository calls made with the context it passes down join that
// transaction; the whole unit commits or rolls back together.
type TxRunner interface {
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoanTypeRepository defines the interface for loan type data operations
type LoanTypeRepository interface {
	// Create creates a new loan type
	Create(ctx context.Context, loanType *domain.LoanType) error

	// GetByID retrieves a loan type by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanType, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// UpdateAggregates writes amountPaid, remainingAmount and status under
	// an optimistic version check
	UpdateAggregates(ctx context.Context, loan *domain.Loan) error

	// ListActive retrieves loans that still have something owed
	ListActive(ctx context.Context) ([]*domain.Loan, error)
}

// TermRepository defines the interface for term data operations
type TermRepository interface {
	// CreateBatch inserts a loan's full schedule
	CreateBatch(ctx context.Context, terms []*domain.Term) error

	// GetByID retrieves a term by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Term, error)

	// GetByLoanID retrieves a loan's terms ordered by term number
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Term, error)

	// Update writes a term's mutable fields under an optimistic version check
	Update(ctx context.Context, term *domain.Term) error

	// ResetDispatchFlags clears reminderSent/overdueSent (administrative tool)
	ResetDispatchFlags(ctx context.Context, termID uuid.UUID) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new pending payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByLoanID retrieves all payments for a loan
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// MarkCompleted flips a pending payment to completed. The guard on the
	// current status makes double approval lose the race instead of
	// double-crediting.
	MarkCompleted(ctx context.Context, paymentID uuid.UUID, approvedAt time.Time) error

	// MarkFailed flips a pending payment to failed with a reason
	MarkFailed(ctx context.Context, paymentID uuid.UUID, reason string) error
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	// Create creates an in-app notification record
	Create(ctx context.Context, notification *domain.Notification) error

	// ExistsOn reports whether a notification of the given type already
	// exists for the entity on the given calendar day
	ExistsOn(ctx context.Context, userID uuid.UUID, notifType, entityType string, entityID uuid.UUID, day time.Time) (bool, error)
}

// UserRepository defines the interface for borrower lookups
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
