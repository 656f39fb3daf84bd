package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
	"github.com/lendana/loan-engine/pkg/utils"
)

// MemStore is an in-memory stand-in for the Postgres repositories with the
// same optimistic-version semantics, so concurrency and sweep behavior can
// be tested without a database. It does not emulate rollback: the guarded
// write (payment status flip, versioned term update) is always the first
// mutation in a unit, so a losing writer aborts before touching anything.
type MemStore struct {
	mu            sync.Mutex
	LoanTypes     map[uuid.UUID]domain.LoanType
	Loans         map[uuid.UUID]domain.Loan
	Terms         map[uuid.UUID]domain.Term
	Payments      map[uuid.UUID]domain.Payment
	Users         map[uuid.UUID]domain.User
	Notifications []domain.Notification
}

func NewMemStore() *MemStore {
	return &MemStore{
		LoanTypes: make(map[uuid.UUID]domain.LoanType),
		Loans:     make(map[uuid.UUID]domain.Loan),
		Terms:     make(map[uuid.UUID]domain.Term),
		Payments:  make(map[uuid.UUID]domain.Payment),
		Users:     make(map[uuid.UUID]domain.User),
	}
}

func (s *MemStore) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLoanTypes struct{ s *MemStore }
type memLoans struct{ s *MemStore }
type memTerms struct{ s *MemStore }
type memPayments struct{ s *MemStore }
type memNotifications struct{ s *MemStore }
type memUsers struct{ s *MemStore }

func (s *MemStore) LoanTypeRepo() *memLoanTypes         { return &memLoanTypes{s} }
func (s *MemStore) LoanRepo() *memLoans                 { return &memLoans{s} }
func (s *MemStore) TermRepo() *memTerms                 { return &memTerms{s} }
func (s *MemStore) PaymentRepo() *memPayments           { return &memPayments{s} }
func (s *MemStore) NotificationRepo() *memNotifications { return &memNotifications{s} }
func (s *MemStore) UserRepo() *memUsers                 { return &memUsers{s} }

func (r *memLoanTypes) Create(ctx context.Context, loanType *domain.LoanType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.LoanTypes[loanType.ID] = *loanType
	return nil
}

func (r *memLoanTypes) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lt, ok := r.s.LoanTypes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &lt, nil
}

func (r *memLoans) Create(ctx context.Context, loan *domain.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Loans[loan.ID] = *loan
	return nil
}

func (r *memLoans) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	loan, ok := r.s.Loans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &loan, nil
}

func (r *memLoans) UpdateAggregates(ctx context.Context, loan *domain.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.Loans[loan.ID]
	if !ok || stored.Version != loan.Version {
		return apperrors.WrapConcurrentModification("loan")
	}
	stored.AmountPaid = loan.AmountPaid
	stored.RemainingAmount = loan.RemainingAmount
	stored.Status = loan.Status
	stored.Version++
	stored.UpdatedAt = time.Now()
	r.s.Loans[loan.ID] = stored
	loan.Version++
	return nil
}

func (r *memLoans) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var loans []*domain.Loan
	for _, loan := range r.s.Loans {
		if loan.Status == domain.LoanStatusActive || loan.Status == domain.LoanStatusOverdue {
			l := loan
			loans = append(loans, &l)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].CreatedAt.Before(loans[j].CreatedAt) })
	return loans, nil
}

func (r *memTerms) CreateBatch(ctx context.Context, terms []*domain.Term) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, term := range terms {
		r.s.Terms[term.ID] = *term
	}
	return nil
}

func (r *memTerms) GetByID(ctx context.Context, id uuid.UUID) (*domain.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	term, ok := r.s.Terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &term, nil
}

func (r *memTerms) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var terms []*domain.Term
	for _, term := range r.s.Terms {
		if term.LoanID == loanID {
			t := term
			terms = append(terms, &t)
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].TermNumber < terms[j].TermNumber })
	return terms, nil
}

func (r *memTerms) Update(ctx context.Context, term *domain.Term) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.Terms[term.ID]
	if !ok || stored.Version != term.Version {
		return apperrors.WrapConcurrentModification("term")
	}
	updated := *term
	updated.Version++
	updated.UpdatedAt = time.Now()
	r.s.Terms[term.ID] = updated
	term.Version++
	return nil
}

func (r *memTerms) ResetDispatchFlags(ctx context.Context, termID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	term, ok := r.s.Terms[termID]
	if !ok {
		return apperrors.WrapTermNotFound(termID.String())
	}
	term.ReminderSent = false
	term.OverdueSent = false
	term.Version++
	r.s.Terms[termID] = term
	return nil
}

func (r *memPayments) Create(ctx context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Payments[payment.ID] = *payment
	return nil
}

func (r *memPayments) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment, ok := r.s.Payments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &payment, nil
}

func (r *memPayments) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var payments []*domain.Payment
	for _, payment := range r.s.Payments {
		if payment.LoanID == loanID {
			p := payment
			payments = append(payments, &p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].CreatedAt.Before(payments[j].CreatedAt) })
	return payments, nil
}

func (r *memPayments) MarkCompleted(ctx context.Context, paymentID uuid.UUID, approvedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment, ok := r.s.Payments[paymentID]
	if !ok || payment.Status != domain.PaymentStatusPending {
		return apperrors.WrapConcurrentModification("payment")
	}
	payment.Status = domain.PaymentStatusCompleted
	payment.ApprovedAt = &approvedAt
	payment.Version++
	r.s.Payments[paymentID] = payment
	return nil
}

func (r *memPayments) MarkFailed(ctx context.Context, paymentID uuid.UUID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment, ok := r.s.Payments[paymentID]
	if !ok || payment.Status != domain.PaymentStatusPending {
		return apperrors.WrapConcurrentModification("payment")
	}
	payment.Status = domain.PaymentStatusFailed
	payment.RejectionReason = &reason
	payment.Version++
	r.s.Payments[paymentID] = payment
	return nil
}

func (r *memNotifications) Create(ctx context.Context, notification *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Notifications = append(r.s.Notifications, *notification)
	return nil
}

func (r *memNotifications) ExistsOn(ctx context.Context, userID uuid.UUID, notifType, entityType string, entityID uuid.UUID, day time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.Notifications {
		if n.UserID == userID && n.Type == notifType && n.EntityType == entityType &&
			n.EntityID == entityID && utils.SameCalendarDay(n.CreatedAt, day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.Users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

// FakeSMSSender scripts gateway behavior and counts attempts.
type FakeSMSSender struct {
	mu       sync.Mutex
	Sent     bool
	Err      error
	Attempts int
}

func (f *FakeSMSSender) Send(ctx context.Context, phone, message string, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Attempts++
	return f.Sent, f.Err
}
