package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"taskman/contracts/mq"
	"taskman/internal/service/worker"
	"taskman/pkg/util"
)

type TaskCreatedHandler struct {
	notifications *worker.NotificationService
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewTaskCreatedHandler(notifications *worker.NotificationService, deduper *util.Deduper, logger *zap.Logger) *TaskCreatedHandler {
	return &TaskCreatedHandler{
		notifications: notifications,
		deduper:       deduper,
		logger:        logger,
	}
}

func (h *TaskCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.TaskCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskCreatedPayload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "task_created", p.EventID) {
		return nil
	}

	h.logger.Info("Handling task.created event",
		zap.Int("task_id", p.TaskID),
		zap.Int("assigned_to", p.AssignedTo),
	)

	if err := h.notifications.HandleTaskCreated(ctx, p); err != nil {
		h.logger.Error("Failed to handle task.created event",
			zap.Int("task_id", p.TaskID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
