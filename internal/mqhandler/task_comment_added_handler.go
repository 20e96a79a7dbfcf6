package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"taskman/contracts/mq"
	"taskman/internal/service/worker"
	"taskman/pkg/util"
)

type TaskCommentAddedHandler struct {
	notifications *worker.NotificationService
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewTaskCommentAddedHandler(notifications *worker.NotificationService, deduper *util.Deduper, logger *zap.Logger) *TaskCommentAddedHandler {
	return &TaskCommentAddedHandler{
		notifications: notifications,
		deduper:       deduper,
		logger:        logger,
	}
}

func (h *TaskCommentAddedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.TaskCommentAddedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskCommentAddedPayload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "task_comment_added", p.EventID) {
		return nil
	}

	h.logger.Info("Handling task.comment_added event",
		zap.Int("task_id", p.TaskID),
		zap.Int("posted_by", p.PostedBy),
	)

	if err := h.notifications.HandleTaskCommentAdded(ctx, p); err != nil {
		h.logger.Error("Failed to handle task.comment_added event",
			zap.Int("task_id", p.TaskID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
