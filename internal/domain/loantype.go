package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// RateByMonth maps an installment count to the interest rate (in percent)
// charged for that term length. Stored as JSONB.
type RateByMonth map[int]decimal.Decimal

func (r RateByMonth) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *RateByMonth) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = RateByMonth{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into RateByMonth", src)
	}
}

// LoanType is the rate policy a loan is created under. Existing loans
// reference it but never see later edits: the applied rate is frozen on
// the loan row at creation.
type LoanType struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	MinAmount           decimal.Decimal `json:"min_amount" db:"min_amount"`
	MaxAmount           decimal.Decimal `json:"max_amount" db:"max_amount"`
	CreditScoreRequired int             `json:"credit_score_required" db:"credit_score_required"`
	InterestRate        decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	AllowedMonths       pq.Int64Array   `json:"allowed_months_to_pay" db:"allowed_months_to_pay"`
	RatesByMonth        RateByMonth     `json:"interest_rates_by_month" db:"interest_rates_by_month"`
	PenaltyPerDay       decimal.Decimal `json:"late_payment_penalty_per_day" db:"late_payment_penalty_per_day"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// AllowsMonths reports whether the given installment count is permitted.
func (lt *LoanType) AllowsMonths(months int) bool {
	for _, m := range lt.AllowedMonths {
		if int(m) == months {
			return true
		}
	}
	return false
}

type CreateLoanTypeRequest struct {
	Name                string                  `json:"name" validate:"required"`
	MinAmount           decimal.Decimal         `json:"min_amount" validate:"required"`
	MaxAmount           decimal.Decimal         `json:"max_amount" validate:"required"`
	CreditScoreRequired int                     `json:"credit_score_required"`
	InterestRate        decimal.Decimal         `json:"interest_rate"`
	AllowedMonths       []int                   `json:"allowed_months_to_pay" validate:"required,min=1,dive,gt=0"`
	RatesByMonth        map[int]decimal.Decimal `json:"interest_rates_by_month"`
	PenaltyPerDay       decimal.Decimal         `json:"late_payment_penalty_per_day"`
}
