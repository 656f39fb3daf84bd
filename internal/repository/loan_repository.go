package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendana/loan-engine/internal/domain"
	apperrors "github.com/lendana/loan-engine/pkg/errors"
)

type loanRepository struct {
	db *DB
}

func NewLoanRepository(db *DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, user_id, loan_type_id, principal_amount, interest_rate, total_amount,
			amount_paid, remaining_amount, months_to_pay, status, due_date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ext(ctx).ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.LoanTypeID,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TotalAmount,
		loan.AmountPaid,
		loan.RemainingAmount,
		loan.MonthsToPay,
		loan.Status,
		loan.DueDate,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, user_id, loan_type_id, principal_amount, interest_rate, total_amount,
			amount_paid, remaining_amount, months_to_pay, status, due_date, version, created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) UpdateAggregates(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET amount_paid = $2, remaining_amount = $3, status = $4, version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $6
	`

	result, err := r.db.ext(ctx).ExecContext(ctx, query,
		loan.ID,
		loan.AmountPaid,
		loan.RemainingAmount,
		loan.Status,
		time.Now(),
		loan.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapConcurrentModification("loan")
	}

	loan.Version++
	return nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT id, user_id, loan_type_id, principal_amount, interest_rate, total_amount,
			amount_paid, remaining_amount, months_to_pay, status, due_date, version, created_at, updated_at
		FROM loans
		WHERE status IN ($1, $2)
		ORDER BY created_at
	`

	var loans []*domain.Loan
	err := sqlx.SelectContext(ctx, r.db.ext(ctx), &loans, query, domain.LoanStatusActive, domain.LoanStatusOverdue)
	if err != nil {
		return nil, err
	}

	return loans, nil
}
