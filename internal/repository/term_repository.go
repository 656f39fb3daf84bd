package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

type termRepository struct {
	db *DB
}

func NewTermRepository(db *DB) TermRepository {
	return &termRepository{db: db}
}

func (r *termRepository) CreateBatch(ctx context.Context, terms []*domain.Term) error {
	query := `
		INSERT INTO terms (id, loan_id, term_number, amount, due_date, amount_paid,
			penalty_amount, days_late, status, paid_at, reminder_sent, overdue_sent, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	return r.db.Atomically(ctx, func(ctx context.Context) error {
		for _, term := range terms {
			_, err := r.db.ext(ctx).ExecContext(ctx, query,
				term.ID,
				term.LoanID,
				term.TermNumber,
				term.Amount,
				term.DueDate,
				term.AmountPaid,
				term.PenaltyAmount,
				term.DaysLate,
				term.Status,
				term.PaidAt,
				term.ReminderSent,
				term.OverdueSent,
				term.Version,
				term.CreatedAt,
				term.UpdatedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *termRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Term, error) {
	query := `
		SELECT id, loan_id, term_number, amount, due_date, amount_paid,
			penalty_amount, days_late, status, paid_at, reminder_sent, overdue_sent, version, created_at, updated_at
		FROM terms
		WHERE id = $1
	`

	var term domain.Term
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &term, query, id); err != nil {
		return nil, err
	}

	return &term, nil
}

func (r *termRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Term, error) {
	query := `
		SELECT id, loan_id, term_number, amount, due_date, amount_paid,
			penalty_amount, days_late, status, paid_at, reminder_sent, overdue_sent, version, created_at, updated_at
		FROM terms
		WHERE loan_id = $1
		ORDER BY term_number
	`

	var terms []*domain.Term
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &terms, query, loanID); err != nil {
		return nil, err
	}

	return terms, nil
}

func (r *termRepository) Update(ctx context.Context, term *domain.Term) error {
	query := `
		UPDATE terms
		SET amount_paid = $2, penalty_amount = $3, days_late = $4, status = $5, paid_at = $6,
			reminder_sent = $7, overdue_sent = $8, version = version + 1, updated_at = $9
		WHERE id = $1 AND version = $10
	`

	result, err := r.db.ext(ctx).ExecContext(ctx, query,
		term.ID,
		term.AmountPaid,
		term.PenaltyAmount,
		term.DaysLate,
		term.Status,
		term.PaidAt,
		term.ReminderSent,
		term.OverdueSent,
		time.Now(),
		term.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapConcurrentModification("term")
	}

	term.Version++
	return nil
}

func (r *termRepository) ResetDispatchFlags(ctx context.Context, termID uuid.UUID) error {
	query := `
		UPDATE terms
		SET reminder_sent = FALSE, overdue_sent = FALSE, version = version + 1, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ext(ctx).ExecContext(ctx, query, termID, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapTermNotFound(termID.String())
	}

	return nil
}
