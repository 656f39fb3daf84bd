package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTypeDueSoon = "due_soon"
	NotificationTypeOverdue = "overdue"
)

const NotificationEntityTerm = "term"

// Notification is an in-app alert, and doubles as the per-calendar-day
// dedup fence for the dispatcher: at most one row per
// (user, type, entity, day).
type Notification struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Type       string    `json:"type" db:"type"`
	Title      string    `json:"title" db:"title"`
	Message    string    `json:"message" db:"message"`
	Link       string    `json:"link" db:"link"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	Read       bool      `json:"read" db:"read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
