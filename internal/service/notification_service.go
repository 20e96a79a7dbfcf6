package service

import (
	"context"

	"go.uber.org/zap"

	"taskman/internal/model"
)

// NotificationStore is the notification persistence surface the API needs.
type NotificationStore interface {
	ListByUser(ctx context.Context, userID int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int) (int64, error)
}

type NotificationService struct {
	notifications NotificationStore
	logger        *zap.Logger
}

func NewNotificationService(notifications NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// ListMine returns the actor's notifications, newest first.
func (s *NotificationService) ListMine(ctx context.Context, actor model.Identity) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, actor.UserID)
}

// MarkRead flags one of the actor's notifications as read. Notifications
// belonging to someone else look like they don't exist.
func (s *NotificationService) MarkRead(ctx context.Context, actor model.Identity, id int) error {
	rows, err := s.notifications.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
