package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type TypeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTypeRepository(db *pgxpool.Pool, logger *zap.Logger) *TypeRepository {
	return &TypeRepository{db: db, logger: logger}
}

func (r *TypeRepository) Insert(ctx context.Context, t *model.TaskType) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO task_types (id, project_id, name)
        VALUES ($1, $2, $3)
    `, t.ID, t.ProjectID, t.Name)
	if err != nil {
		r.logger.Error("Failed to insert task type", zap.String("project_id", t.ProjectID), zap.Error(err))
		return err
	}
	r.logger.Info("Task type inserted", zap.String("type_id", t.ID))
	return nil
}

func (r *TypeRepository) GetByID(ctx context.Context, id string) (*model.TaskType, error) {
	var t model.TaskType
	err := r.db.QueryRow(ctx, `
        SELECT id, project_id, name FROM task_types WHERE id = $1
    `, id).Scan(&t.ID, &t.ProjectID, &t.Name)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to load task type", zap.String("type_id", id), zap.Error(err))
		}
		return nil, err
	}
	return &t, nil
}

func (r *TypeRepository) ListByProject(ctx context.Context, projectID string) ([]model.TaskType, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, project_id, name
        FROM task_types
        WHERE project_id = $1
        ORDER BY name ASC, id ASC
    `, projectID)
	if err != nil {
		r.logger.Error("Failed to query task types", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	types := []model.TaskType{}
	for rows.Next() {
		var t model.TaskType
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *TypeRepository) Update(ctx context.Context, t *model.TaskType) error {
	tag, err := r.db.Exec(ctx, `UPDATE task_types SET name = $2 WHERE id = $1`, t.ID, t.Name)
	if err != nil {
		r.logger.Error("Failed to update task type", zap.String("type_id", t.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TypeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM task_types WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task type", zap.String("type_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
