package mqhandler

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"taskboard/internal/service"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
)

// TaskUpdatedHandler drops a task's cached summary when the task changes, and warms it
// again unless the task was deleted. A deadline change alters the summary's budget fields.
type TaskUpdatedHandler struct {
	summaries SummaryRefresher
	logger    *zap.Logger
}

func NewTaskUpdatedHandler(summaries SummaryRefresher, logger *zap.Logger) *TaskUpdatedHandler {
	return &TaskUpdatedHandler{summaries: summaries, logger: logger}
}

func (h *TaskUpdatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.TaskUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskUpdatedPayload", zap.Error(err))
		return err
	}
	log := logger.WithTrace(ctx, h.logger).With(zap.String("task_id", p.TaskID))

	if err := h.summaries.Invalidate(ctx, p.TaskID); err != nil {
		log.Error("Failed to invalidate summary", zap.Error(err))
		return err
	}
	if p.Deleted {
		log.Info("Summary dropped for deleted task")
		return nil
	}

	if _, err := h.summaries.Refresh(ctx, p.TaskID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil
		}
		log.Warn("Failed to warm summary", zap.Error(err))
		return err
	}
	log.Debug("Summary refreshed after task update")
	return nil
}
