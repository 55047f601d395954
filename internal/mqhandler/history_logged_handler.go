package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"taskboard/internal/effort"
	"taskboard/internal/service"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
	"taskboard/pkg/util"
)

const historyLoggedHandlerName = "history_logged"

// SummaryRefresher is implemented by *service.HistoryService.
type SummaryRefresher interface {
	Refresh(ctx context.Context, taskID string) (*effort.Summary, error)
	Invalidate(ctx context.Context, taskID string) error
}

// Deduplicator is implemented by *util.Deduper.
type Deduplicator interface {
	AcquireOnce(ctx context.Context, handler string, id string) bool
	Release(ctx context.Context, handler string, id string)
}

// HistoryLoggedHandler rebuilds a task's cached effort summary after a new entry lands.
type HistoryLoggedHandler struct {
	summaries SummaryRefresher
	deduper   Deduplicator
	logger    *zap.Logger
}

func NewHistoryLoggedHandler(summaries SummaryRefresher, deduper Deduplicator, logger *zap.Logger) *HistoryLoggedHandler {
	return &HistoryLoggedHandler{
		summaries: summaries,
		deduper:   deduper,
		logger:    logger,
	}
}

func (h *HistoryLoggedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.HistoryLoggedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal HistoryLoggedPayload", zap.Error(err))
		return err
	}
	log := logger.WithTrace(ctx, h.logger).With(
		zap.String("entry_id", p.EntryID),
		zap.String("task_id", p.TaskID),
	)

	if p.EntryID == "" || p.TaskID == "" {
		log.Error("Invalid tarefa.history.logged event")
		return fmt.Errorf("%w: entryId and tarefaId are required", util.ErrInvalidEvent)
	}

	if !h.deduper.AcquireOnce(ctx, historyLoggedHandlerName, p.EntryID) {
		return nil
	}

	s, err := h.summaries.Refresh(ctx, p.TaskID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			log.Info("Task gone before its summary could be refreshed")
			return nil
		}
		h.deduper.Release(ctx, historyLoggedHandlerName, p.EntryID)
		log.Error("Failed to refresh effort summary", zap.Error(err))
		return err
	}

	log.Info("Effort summary refreshed",
		zap.Float64("total_minutes", s.TotalMinutes),
		zap.Int("participants", s.ParticipantsCount),
		zap.String("source", p.Source),
	)
	return nil
}
