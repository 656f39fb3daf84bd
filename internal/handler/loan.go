package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/internal/service"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
	"github.com/lendana/loan-engine/pkg/response"
)

type LoanHandler struct {
	ledger    *service.LedgerService
	validator *validator.Validate
}

func NewLoanHandler(ledger *service.LedgerService) *LoanHandler {
	return &LoanHandler{
		ledger:    ledger,
		validator: validator.New(),
	}
}

// CreateLoanType handles POST /loan-types
func (h *LoanHandler) CreateLoanType(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	loanType, err := h.ledger.CreateLoanType(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, loanType)
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	loan, terms, err := h.ledger.CreateLoan(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan, Terms: terms})
}

// GetLoan handles GET /loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	loan, terms, err := h.ledger.GetLoan(r.Context(), loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, domain.LoanResponse{Loan: loan, Terms: terms})
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	_, terms, err := h.ledger.GetLoan(r.Context(), loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, domain.TermResponse{LoanID: loanID, Terms: terms})
}

// GetOutstanding handles GET /loans/{loanId}/outstanding
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	outstanding, err := h.ledger.Outstanding(r.Context(), loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, domain.OutstandingResponse{LoanID: loanID, Outstanding: outstanding})
}

// writeServiceError maps engine errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrLoanNotFound),
		errors.Is(err, apperrors.ErrTermNotFound),
		errors.Is(err, apperrors.ErrPaymentNotFound):
		response.Error(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, apperrors.ErrInvalidTermLength),
		errors.Is(err, apperrors.ErrInvalidScheduleParams),
		errors.Is(err, apperrors.ErrInvalidPaymentAmount),
		errors.Is(err, apperrors.ErrInvalidLoanAmount):
		response.BadRequest(w, "invalid request", err)
	case errors.Is(err, apperrors.ErrTermAlreadySettled),
		errors.Is(err, apperrors.ErrOverpaymentNotAllowed),
		errors.Is(err, apperrors.ErrPaymentNotPending):
		response.UnprocessableEntity(w, "action rejected", err)
	case errors.Is(err, apperrors.ErrConcurrentModification):
		response.Conflict(w, "conflicting update, retry", err)
	default:
		response.InternalServerError(w, "internal error", err)
	}
}
