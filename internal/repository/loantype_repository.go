package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendana/loan-engine/internal/domain"
)

type loanTypeRepository struct {
	db *DB
}

func NewLoanTypeRepository(db *DB) LoanTypeRepository {
	return &loanTypeRepository{db: db}
}

func (r *loanTypeRepository) Create(ctx context.Context, loanType *domain.LoanType) error {
	query := `
		INSERT INTO loan_types (id, name, min_amount, max_amount, credit_score_required,
			interest_rate, allowed_months_to_pay, interest_rates_by_month, late_payment_penalty_per_day,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ext(ctx).ExecContext(ctx, query,
		loanType.ID,
		loanType.Name,
		loanType.MinAmount,
		loanType.MaxAmount,
		loanType.CreditScoreRequired,
		loanType.InterestRate,
		loanType.AllowedMonths,
		loanType.RatesByMonth,
		loanType.PenaltyPerDay,
		loanType.CreatedAt,
		loanType.UpdatedAt,
	)

	return err
}

func (r *loanTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanType, error) {
	query := `
		SELECT id, name, min_amount, max_amount, credit_score_required,
			interest_rate, allowed_months_to_pay, interest_rates_by_month, late_payment_penalty_per_day,
			created_at, updated_at
		FROM loan_types
		WHERE id = $1
	`

	var loanType domain.LoanType
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &loanType, query, id); err != nil {
		return nil, err
	}

	return &loanType, nil
}
