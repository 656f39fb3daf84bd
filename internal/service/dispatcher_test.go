package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/internal/gateway"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
	"github.com/lendana/loan-engine/pkg/logger"
	"github.com/lendana/loan-engine/pkg/utils"
	"github.com/lendana/loan-engine/tests/mocks"
)

// The notification fence keys on the real calendar day, so these fixtures
// anchor due dates to the wall clock instead of a fake one.
type sweepFixture struct {
	store  *mocks.MemStore
	sms    *mocks.FakeSMSSender
	svc    *DispatcherService
	userID uuid.UUID
	loan   *domain.Loan
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	store := mocks.NewMemStore()
	sms := &mocks.FakeSMSSender{Sent: true}

	userID := uuid.New()
	store.Users[userID] = domain.User{ID: userID, FullName: "Jose Rizal", Phone: "+639181112222"}

	loanTypeID := uuid.New()
	store.LoanTypes[loanTypeID] = domain.LoanType{
		ID:            loanTypeID,
		Name:          "Salary Loan",
		AllowedMonths: pq.Int64Array{3},
		PenaltyPerDay: decimal.NewFromInt(50),
	}

	loan := &domain.Loan{
		ID:              uuid.New(),
		UserID:          userID,
		LoanTypeID:      loanTypeID,
		PrincipalAmount: decimal.NewFromInt(20000),
		TotalAmount:     decimal.NewFromInt(20600),
		RemainingAmount: decimal.NewFromInt(20600),
		AmountPaid:      decimal.Zero,
		MonthsToPay:     2,
		Status:          domain.LoanStatusActive,
		CreatedAt:       time.Now(),
	}
	store.Loans[loan.ID] = *loan

	svc := NewDispatcherService(
		store.LoanRepo(),
		store.TermRepo(),
		store.LoanTypeRepo(),
		store.UserRepo(),
		store.NotificationRepo(),
		gateway.NewNotifier(store.NotificationRepo()),
		sms,
		nil,
		7,
		10*time.Minute,
		logger.NewNop(),
	)

	return &sweepFixture{store: store, sms: sms, svc: svc, userID: userID, loan: loan}
}

// addTerm seeds one unsettled term due the given number of days from today
// (negative means already overdue).
func (f *sweepFixture) addTerm(number, daysFromToday int) *domain.Term {
	term := domain.Term{
		ID:         uuid.New(),
		LoanID:     f.loan.ID,
		TermNumber: number,
		Amount:     decimal.NewFromInt(10300),
		AmountPaid: decimal.Zero,
		Status:     domain.TermStatusPending,
		DueDate:    utils.Midnight(time.Now()).AddDate(0, 0, daysFromToday),
	}
	f.store.Terms[term.ID] = term
	return &term
}

// backdateNotifications shifts every stored notification into the past,
// standing in for the calendar rolling over to the next day.
func (f *sweepFixture) backdateNotifications(by time.Duration) {
	for i := range f.store.Notifications {
		f.store.Notifications[i].CreatedAt = f.store.Notifications[i].CreatedAt.Add(-by)
	}
}

func notificationTypes(store *mocks.MemStore) []string {
	types := make([]string, 0, len(store.Notifications))
	for _, n := range store.Notifications {
		types = append(types, n.Type)
	}
	return types
}

func TestSweep_DispatchesDueSoonAndOverdue(t *testing.T) {
	f := newSweepFixture(t)
	dueSoon := f.addTerm(1, 3)
	overdue := f.addTerm(2, -4)

	report, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.LoansScanned)
	assert.Equal(t, 2, report.NotificationsCreated)
	assert.Equal(t, 2, report.SMSSent)
	assert.Equal(t, 0, report.TermErrors)
	assert.ElementsMatch(t, []string{domain.NotificationTypeDueSoon, domain.NotificationTypeOverdue}, notificationTypes(f.store))

	reminded, err := f.store.TermRepo().GetByID(context.Background(), dueSoon.ID)
	require.NoError(t, err)
	assert.True(t, reminded.ReminderSent)
	assert.Equal(t, domain.TermStatusPending, reminded.Status)

	late, err := f.store.TermRepo().GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.True(t, late.OverdueSent)
	assert.Equal(t, domain.TermStatusOverdue, late.Status)
	assert.Equal(t, 4, late.DaysLate)
	assert.True(t, late.PenaltyAmount.Equal(decimal.NewFromInt(200)))

	// An overdue term drags the loan with it.
	loan, err := f.store.LoanRepo().GetByID(context.Background(), f.loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusOverdue, loan.Status)
}

func TestSweep_SecondRunSameDayIsNoOp(t *testing.T) {
	f := newSweepFixture(t)
	f.addTerm(1, 3)
	f.addTerm(2, -4)

	_, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	attemptsAfterFirst := f.sms.Attempts

	report, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.NotificationsCreated)
	assert.Equal(t, 0, report.SMSSent)
	assert.Len(t, f.store.Notifications, 2)
	assert.Equal(t, attemptsAfterFirst, f.sms.Attempts, "no SMS may be retried behind the day fence")
}

func TestSweep_SMSFailureKeepsFlagsUnset(t *testing.T) {
	f := newSweepFixture(t)
	dueSoon := f.addTerm(1, 3)
	overdue := f.addTerm(2, -4)

	f.sms.Sent = false
	f.sms.Err = fmt.Errorf("gateway down: %w", apperrors.ErrGatewayUnavailable)

	report, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	// The in-app notifications land regardless of the gateway.
	assert.Equal(t, 2, report.NotificationsCreated)
	assert.Equal(t, 2, report.SMSSkipped)
	assert.Len(t, f.store.Notifications, 2)

	reminded, err := f.store.TermRepo().GetByID(context.Background(), dueSoon.ID)
	require.NoError(t, err)
	assert.False(t, reminded.ReminderSent)

	late, err := f.store.TermRepo().GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.False(t, late.OverdueSent)

	// Next day the gateway is back: the SMS goes out and the flags flip,
	// with a fresh pair of in-app notifications for the new day.
	f.backdateNotifications(24 * time.Hour)
	f.sms.Sent = true
	f.sms.Err = nil

	report, err = f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.SMSSent)

	reminded, err = f.store.TermRepo().GetByID(context.Background(), dueSoon.ID)
	require.NoError(t, err)
	assert.True(t, reminded.ReminderSent)

	late, err = f.store.TermRepo().GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.True(t, late.OverdueSent)
}

func TestSweep_DueSoonWindowBounds(t *testing.T) {
	f := newSweepFixture(t)
	f.addTerm(1, 7)
	f.addTerm(2, 8)

	report, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.NotificationsCreated)
	assert.Equal(t, domain.NotificationTypeDueSoon, f.store.Notifications[0].Type)
}

func TestSweep_SkipsSettledTerms(t *testing.T) {
	f := newSweepFixture(t)
	term := f.addTerm(1, -10)
	term.Status = domain.TermStatusPaid
	term.AmountPaid = term.Amount
	f.store.Terms[term.ID] = *term

	report, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.NotificationsCreated)
	assert.Empty(t, f.store.Notifications)
	assert.Equal(t, 0, f.sms.Attempts)
}

// failOnType wraps a Notifier and refuses one notification type, so a
// single bad term can be injected into an otherwise healthy sweep.
type failOnType struct {
	inner    gateway.Notifier
	failType string
}

func (f *failOnType) CreateNotification(ctx context.Context, userID uuid.UUID, notifType, title, message, link, entityType string, entityID uuid.UUID) (*domain.Notification, error) {
	if notifType == f.failType {
		return nil, fmt.Errorf("notification store rejected %s", notifType)
	}
	return f.inner.CreateNotification(ctx, userID, notifType, title, message, link, entityType, entityID)
}

func TestSweep_TermFailureDoesNotAbortSweep(t *testing.T) {
	f := newSweepFixture(t)
	f.addTerm(1, 3)
	overdue := f.addTerm(2, -4)

	f.svc.notifier = &failOnType{
		inner:    gateway.NewNotifier(f.store.NotificationRepo()),
		failType: domain.NotificationTypeDueSoon,
	}

	report, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TermErrors)
	assert.Equal(t, 1, report.NotificationsCreated, "the overdue term must still dispatch")

	late, err := f.store.TermRepo().GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.True(t, late.OverdueSent)
}
