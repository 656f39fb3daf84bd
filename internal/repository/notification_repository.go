package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/pkg/utils"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, link, entity_type, entity_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ext(ctx).ExecContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Link,
		notification.EntityType,
		notification.EntityID,
		notification.Read,
		notification.CreatedAt,
	)

	return err
}

// ExistsOn is the per-day dispatch fence: one row per (user, type, entity,
// calendar day). Keyed on the creation date, not a rolling 24h window, so
// sweep frequency changes do not change behavior. The day window is the
// UTC calendar day, matching uq_notifications_per_day.
func (r *notificationRepository) ExistsOn(ctx context.Context, userID uuid.UUID, notifType, entityType string, entityID uuid.UUID, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND entity_type = $3 AND entity_id = $4
				AND created_at >= $5 AND created_at < $6
		)
	`

	start := utils.Midnight(day.UTC())
	end := start.AddDate(0, 0, 1)

	var exists bool
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists, query, userID, notifType, entityType, entityID, start, end); err != nil {
		return false, err
	}

	return exists, nil
}
