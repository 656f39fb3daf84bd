package domain

import (
	"time"

	"github.com/google/uuid"
)

// User carries the minimum borrower data the engine reads: identity and
// the phone number SMS reminders go to. Registration and KYC live in the
// wider application.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
