package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "active"
	LoanStatusOverdue   = "overdue"
	LoanStatusPaid      = "paid"
	LoanStatusDefaulted = "defaulted"
)

// Loan represents an approved loan. Principal, applied rate and total are
// immutable after creation; amountPaid, remainingAmount and status are
// cached aggregates maintained by the payment ledger.
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	LoanTypeID      uuid.UUID       `json:"loan_type_id" db:"loan_type_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	MonthsToPay     int             `json:"months_to_pay" db:"months_to_pay"`
	Status          string          `json:"status" db:"status"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	Version         int             `json:"-" db:"version"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	UserID          uuid.UUID       `json:"user_id" validate:"required"`
	LoanTypeID      uuid.UUID       `json:"loan_type_id" validate:"required"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" validate:"required"`
	MonthsToPay     int             `json:"months_to_pay" validate:"required,gt=0"`
}

type CreateLoanResponse struct {
	Loan  *Loan   `json:"loan"`
	Terms []*Term `json:"terms"`
}

type LoanResponse struct {
	Loan  *Loan   `json:"loan"`
	Terms []*Term `json:"terms"`
}

type OutstandingResponse struct {
	LoanID      uuid.UUID       `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
