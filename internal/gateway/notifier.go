package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lendana/loan-engine/internal/domain"
	"github.com/lendana/loan-engine/internal/repository"
)

// Notifier creates user-visible in-app alerts.
type Notifier interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType, title, message, link, entityType string, entityID uuid.UUID) (*domain.Notification, error)
}

// repoNotifier stores notifications through the notifications repository,
// which also serves as the dispatcher's per-day dedup fence.
type repoNotifier struct {
	notifications repository.NotificationRepository
}

func NewNotifier(notifications repository.NotificationRepository) Notifier {
	return &repoNotifier{notifications: notifications}
}

func (n *repoNotifier) CreateNotification(ctx context.Context, userID uuid.UUID, notifType, title, message, link, entityType string, entityID uuid.UUID) (*domain.Notification, error) {
	notification := &domain.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		Link:       link,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}

	if err := n.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}
