package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"taskman/contracts/mq"
	"taskman/internal/service/worker"
	"taskman/pkg/util"
)

type TaskStatusChangedHandler struct {
	notifications *worker.NotificationService
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewTaskStatusChangedHandler(notifications *worker.NotificationService, deduper *util.Deduper, logger *zap.Logger) *TaskStatusChangedHandler {
	return &TaskStatusChangedHandler{
		notifications: notifications,
		deduper:       deduper,
		logger:        logger,
	}
}

func (h *TaskStatusChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.TaskStatusChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskStatusChangedPayload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "task_status_changed", p.EventID) {
		return nil
	}

	h.logger.Info("Handling task.status_changed event",
		zap.Int("task_id", p.TaskID),
		zap.String("old_status", p.OldStatus),
		zap.String("new_status", p.NewStatus),
	)

	if err := h.notifications.HandleTaskStatusChanged(ctx, p); err != nil {
		h.logger.Error("Failed to handle task.status_changed event",
			zap.Int("task_id", p.TaskID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
