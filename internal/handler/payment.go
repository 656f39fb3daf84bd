package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/internal/service"
	"github.com/lendana/loan-engine/pkg/response"
)

type PaymentHandler struct {
	ledger    *service.LedgerService
	validator *validator.Validate
}

func NewPaymentHandler(ledger *service.LedgerService) *PaymentHandler {
	return &PaymentHandler{
		ledger:    ledger,
		validator: validator.New(),
	}
}

// SubmitPayment handles POST /payments (borrower submission, stays pending)
func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	payment, err := h.ledger.SubmitPayment(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, payment)
}

// ListPayments handles GET /loans/{loanId}/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	payments, err := h.ledger.PaymentsForLoan(r.Context(), loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, payments)
}

// ApprovePayment handles POST /payments/{paymentId}/approve
func (h *PaymentHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(mux.Vars(r)["paymentId"])
	if err != nil {
		response.BadRequest(w, "invalid payment id", err)
		return
	}

	payment, err := h.ledger.ApplyApprovedPayment(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, payment)
}

// RejectPayment handles POST /payments/{paymentId}/reject
func (h *PaymentHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(mux.Vars(r)["paymentId"])
	if err != nil {
		response.BadRequest(w, "invalid payment id", err)
		return
	}

	var req domain.RejectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	payment, err := h.ledger.RejectPayment(r.Context(), paymentID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, payment)
}
