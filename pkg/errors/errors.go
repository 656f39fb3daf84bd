package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound           = errors.New("loan not found")
	ErrTermNotFound           = errors.New("term not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidTermLength      = errors.New("term length not allowed for loan type")
	ErrInvalidScheduleParams  = errors.New("invalid schedule parameters")
	ErrTermAlreadySettled     = errors.New("term is already settled")
	ErrOverpaymentNotAllowed  = errors.New("payment exceeds amount due")
	ErrPaymentNotPending      = errors.New("payment is not pending")
	ErrInvalidPaymentAmount   = errors.New("invalid payment amount")
	ErrInvalidLoanAmount      = errors.New("loan amount outside loan type bounds")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrGatewayUnavailable     = errors.New("sms gateway unavailable")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound           = "LOAN_NOT_FOUND"
	ErrCodeTermNotFound           = "TERM_NOT_FOUND"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidTermLength      = "INVALID_TERM_LENGTH"
	ErrCodeInvalidScheduleParams  = "INVALID_SCHEDULE_PARAMETERS"
	ErrCodeTermAlreadySettled     = "TERM_ALREADY_SETTLED"
	ErrCodeOverpaymentNotAllowed  = "OVERPAYMENT_NOT_ALLOWED"
	ErrCodePaymentNotPending      = "PAYMENT_NOT_PENDING"
	ErrCodeInvalidPaymentAmount   = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidLoanAmount      = "INVALID_LOAN_AMOUNT"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeGatewayUnavailable     = "GATEWAY_UNAVAILABLE"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapTermNotFound(termID string) *BusinessError {
	return NewBusinessError(
		ErrCodeTermNotFound,
		fmt.Sprintf("Term with ID %s not found", termID),
		ErrTermNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapInvalidTermLength(months int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTermLength,
		fmt.Sprintf("%d months is not an allowed term length for this loan type", months),
		ErrInvalidTermLength,
	)
}

func WrapInvalidScheduleParams(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidScheduleParams,
		detail,
		ErrInvalidScheduleParams,
	)
}

func WrapTermAlreadySettled(termID string) *BusinessError {
	return NewBusinessError(
		ErrCodeTermAlreadySettled,
		fmt.Sprintf("Term %s is already fully paid and accepts no further payments", termID),
		ErrTermAlreadySettled,
	)
}

func WrapOverpaymentNotAllowed(offered, due string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpaymentNotAllowed,
		fmt.Sprintf("Payment of %s exceeds the %s due on this term", offered, due),
		ErrOverpaymentNotAllowed,
	)
}

func WrapPaymentNotPending(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotPending,
		fmt.Sprintf("Payment %s has already been approved or rejected", paymentID),
		ErrPaymentNotPending,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapInvalidLoanAmount(amount, min, max string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("Loan amount %s is outside the allowed range %s to %s", amount, min, max),
		ErrInvalidLoanAmount,
	)
}

func WrapConcurrentModification(entity string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		fmt.Sprintf("%s was modified by another request, retry the operation", entity),
		ErrConcurrentModification,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
