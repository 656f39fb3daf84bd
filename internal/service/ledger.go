package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/internal/repository"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

const outstandingCacheTTL = 1 * time.Hour

// LedgerService owns the money-moving half of the engine: loan creation
// with its amortization schedule, payment submission, and the allocation
// of approved payments against terms.
type LedgerService struct {
	tx        repository.TxRunner
	loanTypes repository.LoanTypeRepository
	loans     repository.LoanRepository
	terms     repository.TermRepository
	payments  repository.PaymentRepository
	redis     *redis.Client
	tolerance decimal.Decimal
	logger    *zap.Logger
	now       func() time.Time
}

func NewLedgerService(
	tx repository.TxRunner,
	loanTypes repository.LoanTypeRepository,
	loans repository.LoanRepository,
	terms repository.TermRepository,
	payments repository.PaymentRepository,
	redisClient *redis.Client,
	tolerance decimal.Decimal,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		tx:        tx,
		loanTypes: loanTypes,
		loans:     loans,
		terms:     terms,
		payments:  payments,
		redis:     redisClient,
		tolerance: tolerance,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateLoanType registers a rate policy administrators lend under.
func (s *LedgerService) CreateLoanType(ctx context.Context, request *domain.CreateLoanTypeRequest) (*domain.LoanType, error) {
	now := s.now()

	allowed := make(pq.Int64Array, 0, len(request.AllowedMonths))
	for _, months := range request.AllowedMonths {
		allowed = append(allowed, int64(months))
	}

	rates := domain.RateByMonth{}
	for months, rate := range request.RatesByMonth {
		rates[months] = rate
	}

	loanType := &domain.LoanType{
		ID:                  uuid.New(),
		Name:                request.Name,
		MinAmount:           request.MinAmount,
		MaxAmount:           request.MaxAmount,
		CreditScoreRequired: request.CreditScoreRequired,
		InterestRate:        request.InterestRate,
		AllowedMonths:       allowed,
		RatesByMonth:        rates,
		PenaltyPerDay:       request.PenaltyPerDay,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.loanTypes.Create(ctx, loanType); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return loanType, nil
}

// CreateLoan approves a loan: resolves the rate for the chosen term length,
// amortizes the total into a schedule, and persists loan and terms as one
// unit. The applied rate is frozen on the loan row; later loan type edits
// never touch existing loans.
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.Term, error) {
	loanType, err := s.loanTypes.GetByID(ctx, request.LoanTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.WrapLoanNotFound(request.LoanTypeID.String())
		}
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	if request.PrincipalAmount.LessThan(loanType.MinAmount) || request.PrincipalAmount.GreaterThan(loanType.MaxAmount) {
		return nil, nil, apperrors.WrapInvalidLoanAmount(
			request.PrincipalAmount.StringFixed(2),
			loanType.MinAmount.StringFixed(2),
			loanType.MaxAmount.StringFixed(2),
		)
	}

	rate, err := RateFor(loanType, request.MonthsToPay)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	loanID := uuid.New()

	terms, totalAmount, err := GenerateSchedule(loanID, request.PrincipalAmount, rate, request.MonthsToPay, now)
	if err != nil {
		return nil, nil, err
	}

	loan := &domain.Loan{
		ID:              loanID,
		UserID:          request.UserID,
		LoanTypeID:      request.LoanTypeID,
		PrincipalAmount: request.PrincipalAmount,
		InterestRate:    rate,
		TotalAmount:     totalAmount,
		AmountPaid:      decimal.Zero,
		RemainingAmount: totalAmount,
		MonthsToPay:     request.MonthsToPay,
		Status:          domain.LoanStatusActive,
		DueDate:         terms[len(terms)-1].DueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.tx.Atomically(ctx, func(ctx context.Context) error {
		if err := s.loans.Create(ctx, loan); err != nil {
			return err
		}
		return s.terms.CreateBatch(ctx, terms)
	})
	if err != nil {
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	return loan, terms, nil
}

// GetLoan returns a loan with its terms, penalties recomputed as of now
// for every unsettled term.
func (s *LedgerService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, []*domain.Term, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.WrapLoanNotFound(loanID.String())
		}
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	terms, err := s.terms.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	loanType, err := s.loanTypes.GetByID(ctx, loan.LoanTypeID)
	if err != nil {
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	now := s.now()
	for _, term := range terms {
		term.DaysLate, term.PenaltyAmount = CalculatePenalty(term, loanType.PenaltyPerDay, now)
		term.Status = EffectiveTermStatus(term, now)
	}

	return loan, terms, nil
}

// Outstanding returns the remaining balance on a loan, cached in redis and
// invalidated on every allocation.
func (s *LedgerService) Outstanding(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	cacheKey := outstandingCacheKey(loanID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			if outstanding, err := decimal.NewFromString(cached); err == nil {
				return outstanding, nil
			}
		}
	}

	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperrors.WrapLoanNotFound(loanID.String())
		}
		return decimal.Zero, apperrors.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, loan.RemainingAmount.String(), outstandingCacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache outstanding balance", zap.Error(err))
		}
	}

	return loan.RemainingAmount, nil
}

// SubmitPayment records a borrower's pending payment against exactly one
// term. No loan or term state moves until an administrator approves it.
func (s *LedgerService) SubmitPayment(ctx context.Context, request *domain.SubmitPaymentRequest) (*domain.Payment, error) {
	if !request.Amount.IsPositive() {
		return nil, apperrors.WrapInvalidPaymentAmount(request.Amount.StringFixed(2))
	}

	term, err := s.terms.GetByID(ctx, request.TermID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapTermNotFound(request.TermID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if term.LoanID != request.LoanID {
		return nil, apperrors.WrapTermNotFound(request.TermID.String())
	}

	if term.IsPaid() {
		return nil, apperrors.WrapTermAlreadySettled(term.ID.String())
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		LoanID:      request.LoanID,
		TermID:      request.TermID,
		UserID:      request.UserID,
		Amount:      request.Amount,
		PaymentType: request.PaymentType,
		Status:      domain.PaymentStatusPending,
		ReceiptURL:  request.ReceiptURL,
		CreatedAt:   s.now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return payment, nil
}

// ApplyApprovedPayment allocates a pending payment to its term as one
// all-or-nothing unit: payment completed, term credited (settled and frozen
// if fully covered), loan aggregates recomputed, loan status re-derived.
// The versioned writes make the second of two racing approvals fail with a
// retryable conflict instead of double-crediting the term.
func (s *LedgerService) ApplyApprovedPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapPaymentNotFound(paymentID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if payment.Status != domain.PaymentStatusPending {
		return nil, apperrors.WrapPaymentNotPending(paymentID.String())
	}

	if !payment.Amount.IsPositive() {
		return nil, apperrors.WrapInvalidPaymentAmount(payment.Amount.StringFixed(2))
	}

	term, err := s.terms.GetByID(ctx, payment.TermID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	if term.IsPaid() {
		return nil, apperrors.WrapTermAlreadySettled(term.ID.String())
	}

	loan, err := s.loans.GetByID(ctx, payment.LoanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	loanType, err := s.loanTypes.GetByID(ctx, loan.LoanTypeID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	now := s.now()
	daysLate, penalty := CalculatePenalty(term, loanType.PenaltyPerDay, now)

	// Overpaying is refused once the excess reaches the rounding tolerance.
	amountDue := term.Remaining().Add(penalty)
	if payment.Amount.Sub(amountDue).GreaterThanOrEqual(s.tolerance) {
		return nil, apperrors.WrapOverpaymentNotAllowed(payment.Amount.StringFixed(2), amountDue.StringFixed(2))
	}

	err = s.tx.Atomically(ctx, func(ctx context.Context) error {
		if err := s.payments.MarkCompleted(ctx, payment.ID, now); err != nil {
			return err
		}

		term.AmountPaid = term.AmountPaid.Add(payment.Amount)
		term.DaysLate = daysLate
		term.PenaltyAmount = penalty

		if term.AmountPaid.GreaterThanOrEqual(term.Amount) {
			// Freeze lateness at the moment of settlement.
			term.Status = domain.TermStatusPaid
			paidAt := now
			term.PaidAt = &paidAt
		} else if daysLate > 0 {
			term.Status = domain.TermStatusOverdue
		} else {
			term.Status = domain.TermStatusPending
		}

		if err := s.terms.Update(ctx, term); err != nil {
			return err
		}

		terms, err := s.terms.GetByLoanID(ctx, loan.ID)
		if err != nil {
			return err
		}

		amountPaid := decimal.Zero
		for _, t := range terms {
			amountPaid = amountPaid.Add(t.AmountPaid)
		}

		loan.AmountPaid = amountPaid
		loan.RemainingAmount = loan.TotalAmount.Sub(amountPaid)
		if loan.RemainingAmount.IsNegative() {
			loan.RemainingAmount = decimal.Zero
		}
		loan.Status = DeriveLoanStatus(loan, terms, now)

		return s.loans.UpdateAggregates(ctx, loan)
	})
	if err != nil {
		var bizErr *apperrors.BusinessError
		if errors.As(err, &bizErr) {
			return nil, err
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, loan.ID)

	approvedAt := now
	payment.Status = domain.PaymentStatusCompleted
	payment.ApprovedAt = &approvedAt

	s.logger.Info("payment applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("loan_id", loan.ID.String()),
		zap.Int("term_number", term.TermNumber),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("term_status", term.Status),
		zap.String("loan_status", loan.Status),
	)

	return payment, nil
}

// RejectPayment fails a pending payment with a reason. Term and loan state
// are untouched.
func (s *LedgerService) RejectPayment(ctx context.Context, paymentID uuid.UUID, reason string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapPaymentNotFound(paymentID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if payment.Status != domain.PaymentStatusPending {
		return nil, apperrors.WrapPaymentNotPending(paymentID.String())
	}

	if err := s.payments.MarkFailed(ctx, paymentID, reason); err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentStatusFailed
	payment.RejectionReason = &reason

	return payment, nil
}

// PaymentsForLoan returns a loan's full payment history, pending and
// settled alike.
func (s *LedgerService) PaymentsForLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.loans.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapLoanNotFound(loanID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	payments, err := s.payments.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return payments, nil
}

// ResetDispatchFlags is the administrative tool that re-arms a term's
// one-shot reminder and overdue flags.
func (s *LedgerService) ResetDispatchFlags(ctx context.Context, termID uuid.UUID) error {
	return s.terms.ResetDispatchFlags(ctx, termID)
}

func (s *LedgerService) invalidateOutstanding(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, outstandingCacheKey(loanID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate outstanding cache",
			zap.String("loan_id", loanID.String()), zap.Error(err))
	}
}

func outstandingCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:outstanding:%s", loanID)
}
