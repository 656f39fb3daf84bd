package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/internal/gateway"
	"github.com/lendana/loan-engine/internal/repository"
	"github.com/lendana/loan-engine/pkg/utils"
)

// SweepLockKey is the redis lease guarding concurrent dispatcher passes.
const SweepLockKey = "ledger:sweep:lock"

// SweepReport summarizes one dispatcher pass.
type SweepReport struct {
	LoansScanned         int `json:"loans_scanned"`
	NotificationsCreated int `json:"notifications_created"`
	SMSSent              int `json:"sms_sent"`
	SMSSkipped           int `json:"sms_skipped"`
	TermErrors           int `json:"term_errors"`
}

// DispatcherService is the daily notification sweep. It is safely
// re-entrant: the per-day notification fence makes a repeated run a no-op,
// and a redis lease keeps overlapping runs from racing at all.
//
// The dispatch is deliberately split in two phases per term: the in-app
// notification is written first and survives regardless, the one-shot flag
// flips only after the SMS actually went out. An unset flag means the SMS
// is retried on the next sweep inside the same day window.
type DispatcherService struct {
	loans         repository.LoanRepository
	terms         repository.TermRepository
	loanTypes     repository.LoanTypeRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	notifier      gateway.Notifier
	sms           gateway.SMSSender
	redis         *redis.Client
	windowDays    int
	lockTTL       time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewDispatcherService(
	loans repository.LoanRepository,
	terms repository.TermRepository,
	loanTypes repository.LoanTypeRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	notifier gateway.Notifier,
	sms gateway.SMSSender,
	redisClient *redis.Client,
	windowDays int,
	lockTTL time.Duration,
	logger *zap.Logger,
) *DispatcherService {
	return &DispatcherService{
		loans:         loans,
		terms:         terms,
		loanTypes:     loanTypes,
		users:         users,
		notifications: notifications,
		notifier:      notifier,
		sms:           sms,
		redis:         redisClient,
		windowDays:    windowDays,
		lockTTL:       lockTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// Sweep walks every active loan's unsettled terms and dispatches due-soon
// and overdue notices. A failure on one term is logged and never aborts
// the rest of the sweep.
func (s *DispatcherService) Sweep(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{}

	if s.redis != nil {
		acquired, err := s.redis.SetNX(ctx, SweepLockKey, s.now().Format(time.RFC3339), s.lockTTL).Result()
		if err != nil {
			s.logger.Warn("sweep lock unavailable, proceeding without lease", zap.Error(err))
		} else if !acquired {
			s.logger.Info("sweep already running elsewhere, skipping")
			return report, nil
		} else {
			defer s.redis.Del(context.WithoutCancel(ctx), SweepLockKey)
		}
	}

	loans, err := s.loans.ListActive(ctx)
	if err != nil {
		return report, err
	}

	for _, loan := range loans {
		report.LoansScanned++
		if err := s.sweepLoan(ctx, loan, report); err != nil {
			s.logger.Error("sweep failed for loan",
				zap.String("loan_id", loan.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("sweep finished",
		zap.Int("loans_scanned", report.LoansScanned),
		zap.Int("notifications_created", report.NotificationsCreated),
		zap.Int("sms_sent", report.SMSSent),
		zap.Int("sms_skipped", report.SMSSkipped),
		zap.Int("term_errors", report.TermErrors),
	)

	return report, nil
}

func (s *DispatcherService) sweepLoan(ctx context.Context, loan *domain.Loan, report *SweepReport) error {
	terms, err := s.terms.GetByLoanID(ctx, loan.ID)
	if err != nil {
		return err
	}

	loanType, err := s.loanTypes.GetByID(ctx, loan.LoanTypeID)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, loan.UserID)
	if err != nil {
		return err
	}

	now := s.now()
	for _, term := range terms {
		if term.IsPaid() {
			continue
		}
		if err := s.dispatchForTerm(ctx, user, loanType, term, now, report); err != nil {
			report.TermErrors++
			s.logger.Error("dispatch failed for term",
				zap.String("term_id", term.ID.String()),
				zap.Int("term_number", term.TermNumber),
				zap.Error(err),
			)
		}
	}

	// Promote the loan's own status while we are here; overdue loans must
	// not wait for a payment to be recognized as overdue.
	if derived := DeriveLoanStatus(loan, terms, now); derived != loan.Status {
		loan.Status = derived
		if err := s.loans.UpdateAggregates(ctx, loan); err != nil {
			return err
		}
	}

	return nil
}

func (s *DispatcherService) dispatchForTerm(ctx context.Context, user *domain.User, loanType *domain.LoanType, term *domain.Term, now time.Time, report *SweepReport) error {
	daysUntil := utils.DaysUntilDue(term.DueDate, now)
	daysLate, penalty := CalculatePenalty(term, loanType.PenaltyPerDay, now)

	if daysUntil >= 0 && daysUntil <= s.windowDays && !term.ReminderSent {
		if err := s.dispatchDueSoon(ctx, user, term, daysUntil, now, report); err != nil {
			return err
		}
	}

	if daysLate > 0 {
		if err := s.dispatchOverdue(ctx, user, term, daysLate, penalty, now, report); err != nil {
			return err
		}
	}

	return nil
}

func (s *DispatcherService) dispatchDueSoon(ctx context.Context, user *domain.User, term *domain.Term, daysUntil int, now time.Time, report *SweepReport) error {
	exists, err := s.notifications.ExistsOn(ctx, user.ID, domain.NotificationTypeDueSoon, domain.NotificationEntityTerm, term.ID, now)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	message := fmt.Sprintf("Hi %s, installment #%d is due on %s. Amount due: %s.",
		user.FullName, term.TermNumber, term.DueDate.Format("Jan 2, 2006"), term.Remaining().StringFixed(2))

	if _, err := s.notifier.CreateNotification(ctx, user.ID, domain.NotificationTypeDueSoon,
		"Payment due soon", message, termLink(term), domain.NotificationEntityTerm, term.ID); err != nil {
		return err
	}
	report.NotificationsCreated++

	sent, err := s.sms.Send(ctx, user.Phone, message, user.ID)
	if err != nil {
		// Gateway trouble never rolls back the in-app notification; the
		// unset flag retries the SMS next sweep.
		s.logger.Warn("due-soon sms failed",
			zap.String("term_id", term.ID.String()), zap.Error(err))
	}
	if !sent {
		report.SMSSkipped++
		return nil
	}
	report.SMSSent++

	term.ReminderSent = true
	return s.terms.Update(ctx, term)
}

func (s *DispatcherService) dispatchOverdue(ctx context.Context, user *domain.User, term *domain.Term, daysLate int, penalty decimal.Decimal, now time.Time, report *SweepReport) error {
	exists, err := s.notifications.ExistsOn(ctx, user.ID, domain.NotificationTypeOverdue, domain.NotificationEntityTerm, term.ID, now)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	message := fmt.Sprintf("Installment #%d is %d day(s) overdue. Amount due including penalty: %s.",
		term.TermNumber, daysLate, term.Remaining().Add(penalty).StringFixed(2))

	if _, err := s.notifier.CreateNotification(ctx, user.ID, domain.NotificationTypeOverdue,
		"Payment overdue", message, termLink(term), domain.NotificationEntityTerm, term.ID); err != nil {
		return err
	}
	report.NotificationsCreated++

	sent, err := s.sms.Send(ctx, user.Phone, message, user.ID)
	if err != nil {
		s.logger.Warn("overdue sms failed",
			zap.String("term_id", term.ID.String()), zap.Error(err))
	}
	if !sent {
		report.SMSSkipped++
		return nil
	}
	report.SMSSent++

	term.OverdueSent = true
	term.Status = domain.TermStatusOverdue
	term.DaysLate = daysLate
	term.PenaltyAmount = penalty
	return s.terms.Update(ctx, term)
}

func termLink(term *domain.Term) string {
	return fmt.Sprintf("/loans/%s/terms/%d", term.LoanID, term.TermNumber)
}
