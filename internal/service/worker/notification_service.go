package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskman/contracts/mq"
	"taskman/internal/model"
	"taskman/pkg/metrics"
)

// NotificationInserter is the persistence surface the worker writes through.
type NotificationInserter interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// NotificationService turns task events into notifications for assignees.
type NotificationService struct {
	notifications NotificationInserter
	logger        *zap.Logger
}

func NewNotificationService(notifications NotificationInserter, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// notify writes a notification unless there is nobody to tell: no assignee,
// or the assignee is the one who acted.
func (s *NotificationService) notify(ctx context.Context, event string, userID, actorID, taskID int, message string) error {
	if userID == 0 || userID == actorID {
		s.logger.Debug("Skipping notification",
			zap.String("event", event),
			zap.Int("user_id", userID),
			zap.Int("actor_id", actorID),
		)
		return nil
	}

	n := &model.Notification{
		UserID:  userID,
		TaskID:  taskID,
		Message: message,
	}
	if err := s.notifications.Insert(ctx, n); err != nil {
		return err
	}

	metrics.IncrementNotificationsCreated(event)
	return nil
}

// HandleTaskCreated notifies the assignee of a new task.
func (s *NotificationService) HandleTaskCreated(ctx context.Context, p mq.TaskCreatedPayload) error {
	message := fmt.Sprintf("You have been assigned a new task: %s", p.Title)
	return s.notify(ctx, mq.RoutingKeyTaskCreated, p.AssignedTo, p.CreatedBy, p.TaskID, message)
}

// HandleTaskStatusChanged notifies the assignee that someone moved their task.
func (s *NotificationService) HandleTaskStatusChanged(ctx context.Context, p mq.TaskStatusChangedPayload) error {
	message := fmt.Sprintf("Task %q moved from %s to %s", p.Title, p.OldStatus, p.NewStatus)
	return s.notify(ctx, mq.RoutingKeyTaskStatusChanged, p.AssignedTo, p.ChangedBy, p.TaskID, message)
}

// HandleTaskCommentAdded notifies the assignee about a new comment.
func (s *NotificationService) HandleTaskCommentAdded(ctx context.Context, p mq.TaskCommentAddedPayload) error {
	message := fmt.Sprintf("New comment on task %q", p.Title)
	return s.notify(ctx, mq.RoutingKeyTaskCommentAdded, p.AssignedTo, p.PostedBy, p.TaskID, message)
}
