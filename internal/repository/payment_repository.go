package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

type paymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, loan_id, term_id, user_id, amount, payment_type, status,
			receipt_url, rejection_reason, version, created_at, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ext(ctx).ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.TermID,
		payment.UserID,
		payment.Amount,
		payment.PaymentType,
		payment.Status,
		payment.ReceiptURL,
		payment.RejectionReason,
		payment.Version,
		payment.CreatedAt,
		payment.ApprovedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, loan_id, term_id, user_id, amount, payment_type, status,
			receipt_url, rejection_reason, version, created_at, approved_at
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &payment, query, id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, term_id, user_id, amount, payment_type, status,
			receipt_url, rejection_reason, version, created_at, approved_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY created_at
	`

	var payments []*domain.Payment
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, paymentID uuid.UUID, approvedAt time.Time) error {
	query := `
		UPDATE payments
		SET status = $2, approved_at = $3, version = version + 1
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ext(ctx).ExecContext(ctx, query,
		paymentID,
		domain.PaymentStatusCompleted,
		approvedAt,
		domain.PaymentStatusPending,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapConcurrentModification("payment")
	}

	return nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, paymentID uuid.UUID, reason string) error {
	query := `
		UPDATE payments
		SET status = $2, rejection_reason = $3, version = version + 1
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ext(ctx).ExecContext(ctx, query,
		paymentID,
		domain.PaymentStatusFailed,
		reason,
		domain.PaymentStatusPending,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapConcurrentModification("payment")
	}

	return nil
}
