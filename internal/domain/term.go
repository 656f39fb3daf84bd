package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TermStatusPending = "pending"
	TermStatusPaid    = "paid"
	TermStatusOverdue = "overdue"
)

// Term is one scheduled installment of a loan. Amount and due date are
// immutable once the schedule is generated; amountPaid only ever grows.
// PenaltyAmount and DaysLate are live values while the term is unpaid and
// frozen at their settlement-time values once the term is paid.
type Term struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        uuid.UUID       `json:"loan_id" db:"loan_id"`
	TermNumber    int             `json:"term_number" db:"term_number"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	DaysLate      int             `json:"days_late" db:"days_late"`
	Status        string          `json:"status" db:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	ReminderSent  bool            `json:"reminder_sent" db:"reminder_sent"`
	OverdueSent   bool            `json:"overdue_sent" db:"overdue_sent"`
	Version       int             `json:"-" db:"version"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// IsPaid reports whether the term is settled.
func (t *Term) IsPaid() bool {
	return t.Status == TermStatusPaid
}

// Remaining returns the unpaid portion of the installment amount,
// excluding penalties.
func (t *Term) Remaining() decimal.Decimal {
	remaining := t.Amount.Sub(t.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

type TermResponse struct {
	LoanID uuid.UUID `json:"loan_id"`
	Terms  []*Term   `json:"terms"`
}
