package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/effort"
	"taskboard/internal/model"
	"taskboard/pkg/metrics"
	"taskboard/pkg/mq"
	"taskboard/pkg/trace"
)

type HistoryService struct {
	tasks     TaskStore
	history   HistoryStore
	publisher EventPublisher
	cache     SummaryCache
	logger    *zap.Logger
}

func NewHistoryService(
	tasks TaskStore,
	history HistoryStore,
	publisher EventPublisher,
	cache SummaryCache,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{
		tasks:     tasks,
		history:   history,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

type LogHistoryInput struct {
	TaskID      string  `json:"tarefaId"`
	FilePath    string  `json:"filePath"`
	ElapsedTime string  `json:"elapsedTime"`
	UserID      *string `json:"userId"`
}

// Log appends an entry and publishes tarefa.history.logged. source names the client kind
// ("user" or "cli") for metrics.
func (s *HistoryService) Log(ctx context.Context, in LogHistoryInput, source string) (*model.HistoryEntry, error) {
	if in.TaskID == "" || strings.TrimSpace(in.FilePath) == "" || strings.TrimSpace(in.ElapsedTime) == "" {
		return nil, fmt.Errorf("%w: tarefaId, filePath and elapsedTime are required", ErrInvalidInput)
	}
	if _, err := s.tasks.GetByID(ctx, in.TaskID); err != nil {
		return nil, notFound(err)
	}

	e := &model.HistoryEntry{
		ID:          uuid.NewString(),
		TaskID:      in.TaskID,
		FilePath:    strings.TrimSpace(in.FilePath),
		ElapsedTime: strings.TrimSpace(in.ElapsedTime),
		UserID:      blankToNil(in.UserID),
	}
	if err := s.history.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}
	metrics.IncrementHistoryLogged(source)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, e.TaskID); err != nil {
			s.logger.Warn("Failed to invalidate summary cache", zap.String("task_id", e.TaskID), zap.Error(err))
		}
	}

	if s.publisher != nil {
		payload := mq.HistoryLoggedPayload{
			EntryID:   e.ID,
			TaskID:    e.TaskID,
			FilePath:  e.FilePath,
			UserID:    e.UserID,
			Source:    source,
			CreatedAt: e.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, mq.RoutingKeyHistoryLogged, payload); err != nil {
			// the entry is stored; the summary is rebuilt on the next read
			s.logger.Error("Failed to publish history event",
				zap.String("entry_id", e.ID),
				zap.String("trace_id", trace.FromContext(ctx)),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("History entry logged",
		zap.String("entry_id", e.ID),
		zap.String("task_id", e.TaskID),
		zap.String("source", source),
	)
	return e, nil
}

// ListByTask returns the task's entries, newest first.
func (s *HistoryService) ListByTask(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	return s.history.ListByTask(ctx, taskID)
}

// TotalElapsed returns the same total Summary reports.
func (s *HistoryService) TotalElapsed(ctx context.Context, taskID string) (float64, error) {
	entries, err := s.history.ListByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	return effort.Summarize(entries, nil).TotalMinutes, nil
}

// Summary returns the task's effort summary, served from the cache when possible.
func (s *HistoryService) Summary(ctx context.Context, taskID string) (*effort.Summary, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFound(err)
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, taskID)
		switch {
		case err != nil:
			metrics.IncrementSummaryCache("error")
			s.logger.Warn("Summary cache unavailable, computing from store", zap.String("task_id", taskID), zap.Error(err))
		case ok:
			metrics.IncrementSummaryCache("hit")
			return cached, nil
		default:
			metrics.IncrementSummaryCache("miss")
		}
	}

	return s.compute(ctx, task)
}

// Refresh recomputes the summary and stores it in the cache.
func (s *HistoryService) Refresh(ctx context.Context, taskID string) (*effort.Summary, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.compute(ctx, task)
}

// Invalidate drops the cached summary for taskID.
func (s *HistoryService) Invalidate(ctx context.Context, taskID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, taskID)
}

func (s *HistoryService) compute(ctx context.Context, task *model.Task) (*effort.Summary, error) {
	// the version is read before the entries so a Log landing in between is detected
	version, cacheable := int64(0), s.cache != nil
	if cacheable {
		v, err := s.cache.Version(ctx, task.ID)
		if err != nil {
			s.logger.Warn("Summary cache version unavailable, skipping cache write", zap.String("task_id", task.ID), zap.Error(err))
			cacheable = false
		}
		version = v
	}

	entries, err := s.history.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	summary := effort.Summarize(entries, task.DeadlineHours)

	if cacheable {
		stored, err := s.cache.Set(ctx, task.ID, version, &summary)
		switch {
		case err != nil:
			s.logger.Warn("Failed to cache summary", zap.String("task_id", task.ID), zap.Error(err))
		case !stored:
			s.logger.Debug("History changed while computing summary, not caching", zap.String("task_id", task.ID))
		}
	}
	return &summary, nil
}
