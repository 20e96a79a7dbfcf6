package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskman/internal/model"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Insert creates a notification and fills in the generated ID.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	r.logger.Debug("Inserting notification",
		zap.Int("user_id", n.UserID),
		zap.Int("task_id", n.TaskID),
	)
	query := `
        INSERT INTO notifications (user_id, task_id, message)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, n.UserID, n.TaskID, n.Message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification",
			zap.Error(err),
			zap.Int("user_id", n.UserID),
		)
		return err
	}
	r.logger.Info("Notification inserted successfully",
		zap.Int("notification_id", n.ID),
		zap.Int("user_id", n.UserID),
	)
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int) ([]model.Notification, error) {
	query := `
        SELECT id, user_id, task_id, message, read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query notifications",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			r.logger.Error("Failed to scan notification row", zap.Error(err))
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read. Scoped to the owning user.
// Returns the number of rows updated.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) (int64, error) {
	query := `
        UPDATE notifications
        SET read = TRUE
        WHERE id = $1 AND user_id = $2
    `
	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to mark notification read",
			zap.Error(err),
			zap.Int("notification_id", id),
		)
		return 0, err
	}
	return result.RowsAffected(), nil
}
