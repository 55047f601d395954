package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// HistoryRepository is append-only: entries are never updated or deleted on their own.
type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHistoryRepository(db *pgxpool.Pool, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

func (r *HistoryRepository) Insert(ctx context.Context, e *model.HistoryEntry) error {
	r.logger.Debug("Inserting history entry",
		zap.String("task_id", e.TaskID),
		zap.String("file_path", e.FilePath),
		zap.String("elapsed_time", e.ElapsedTime),
	)
	err := r.db.QueryRow(ctx, `
        INSERT INTO task_history (id, task_id, file_path, elapsed_time, user_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `, e.ID, e.TaskID, e.FilePath, e.ElapsedTime, e.UserID).Scan(&e.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert history entry",
			zap.Error(err),
			zap.String("task_id", e.TaskID),
		)
		return err
	}
	return nil
}

// ListByTask returns the task's entries, newest first.
func (r *HistoryRepository) ListByTask(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, task_id, file_path, elapsed_time, user_id, created_at
        FROM task_history
        WHERE task_id = $1
        ORDER BY created_at DESC, id ASC
    `, taskID)
	if err != nil {
		r.logger.Error("Failed to query history", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.FilePath, &e.ElapsedTime, &e.UserID, &e.CreatedAt); err != nil {
			r.logger.Error("Failed to scan history row", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("History retrieved", zap.String("task_id", taskID), zap.Int("count", len(entries)))
	return entries, nil
}
