package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/util"
)

const (
	taskHashConstraint = "tasks_hash_key"
	maxHashAttempts    = 5
)

const taskColumns = `id, project_id, name, description, user_ids, type_id, step_id, status, hash, deadline_hours, created_at, updated_at`

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// Insert stores t and fills in Hash and the timestamps. A hash collision is retried with a
// freshly generated code.
func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.String("task_id", t.ID),
		zap.String("project_id", t.ProjectID),
		zap.String("name", t.Name),
	)
	query := `
        INSERT INTO tasks (id, project_id, name, description, user_ids, type_id, step_id, status, hash, deadline_hours)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at, updated_at
    `
	for attempt := 1; attempt <= maxHashAttempts; attempt++ {
		hash, err := util.NewTaskHash()
		if err != nil {
			return fmt.Errorf("generate task hash: %w", err)
		}
		err = r.db.QueryRow(ctx, query,
			t.ID,
			t.ProjectID,
			t.Name,
			t.Description,
			nonNil(t.UserIDs),
			t.TypeID,
			t.StepID,
			string(t.Status),
			hash,
			t.DeadlineHours,
		).Scan(&t.CreatedAt, &t.UpdatedAt)
		if err == nil {
			t.Hash = hash
			r.logger.Info("Task inserted successfully",
				zap.String("task_id", t.ID),
				zap.String("hash", hash),
			)
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == taskHashConstraint {
			r.logger.Warn("Task hash collision, regenerating",
				zap.String("hash", hash),
				zap.Int("attempt", attempt),
			)
			continue
		}
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("task_id", t.ID),
			zap.String("project_id", t.ProjectID),
		)
		return err
	}
	return fmt.Errorf("task hash still colliding after %d attempts", maxHashAttempts)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to load task", zap.String("task_id", id), zap.Error(err))
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for project", zap.String("project_id", projectID))
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE project_id = $1
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating task rows", zap.Error(err))
		return nil, err
	}

	r.logger.Debug("Tasks retrieved successfully",
		zap.String("project_id", projectID),
		zap.Int("count", len(tasks)),
	)
	return tasks, nil
}

// Update rewrites every mutable column of t. The project and hash never change.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET name = $2, description = $3, user_ids = $4, type_id = $5, step_id = $6,
            status = $7, deadline_hours = $8, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		nonNil(t.UserIDs),
		t.TypeID,
		t.StepID,
		string(t.Status),
		t.DeadlineHours,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to update task", zap.String("task_id", t.ID), zap.Error(err))
		}
		return err
	}
	r.logger.Info("Task updated", zap.String("task_id", t.ID))
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.String("task_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("Task deleted", zap.String("task_id", id))
	return nil
}

func (r *TaskRepository) ExistsWithStep(ctx context.Context, stepID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE step_id = $1)`, stepID).Scan(&exists)
	return exists, err
}

func (r *TaskRepository) ExistsWithType(ctx context.Context, typeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE type_id = $1)`, typeID).Scan(&exists)
	return exists, err
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		t      model.Task
		status string
	)
	if err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Name,
		&t.Description,
		&t.UserIDs,
		&t.TypeID,
		&t.StepID,
		&status,
		&t.Hash,
		&t.DeadlineHours,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = model.TaskStatus(status)
	if t.UserIDs == nil {
		t.UserIDs = []string{}
	}
	return &t, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
