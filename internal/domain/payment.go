package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	PaymentTypePartial = "partial"
	PaymentTypeFull    = "full"
)

// Payment is a borrower submission against exactly one term. It is created
// pending and transitions to completed or failed exactly once, by an
// administrator action. Partial settlement of a term takes multiple rows.
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          uuid.UUID       `json:"loan_id" db:"loan_id"`
	TermID          uuid.UUID       `json:"term_id" db:"term_id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	PaymentType     string          `json:"payment_type" db:"payment_type"`
	Status          string          `json:"status" db:"status"`
	ReceiptURL      string          `json:"receipt_url" db:"receipt_url"`
	RejectionReason *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	Version         int             `json:"-" db:"version"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
}

type SubmitPaymentRequest struct {
	LoanID      uuid.UUID       `json:"loan_id" validate:"required"`
	TermID      uuid.UUID       `json:"term_id" validate:"required"`
	UserID      uuid.UUID       `json:"user_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentType string          `json:"payment_type" validate:"required,oneof=partial full"`
	ReceiptURL  string          `json:"receipt_url"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" validate:"required"`
}
