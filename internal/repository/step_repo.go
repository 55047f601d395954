package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type StepRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStepRepository(db *pgxpool.Pool, logger *zap.Logger) *StepRepository {
	return &StepRepository{db: db, logger: logger}
}

func (r *StepRepository) Insert(ctx context.Context, s *model.Step) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO steps (id, project_id, name, color, position)
        VALUES ($1, $2, $3, $4, $5)
    `, s.ID, s.ProjectID, s.Name, s.Color, s.Order)
	if err != nil {
		r.logger.Error("Failed to insert step",
			zap.Error(err),
			zap.String("project_id", s.ProjectID),
		)
		return err
	}
	r.logger.Info("Step inserted", zap.String("step_id", s.ID), zap.Int("order", s.Order))
	return nil
}

func (r *StepRepository) GetByID(ctx context.Context, id string) (*model.Step, error) {
	var s model.Step
	err := r.db.QueryRow(ctx, `
        SELECT id, project_id, name, color, position
        FROM steps
        WHERE id = $1
    `, id).Scan(&s.ID, &s.ProjectID, &s.Name, &s.Color, &s.Order)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to load step", zap.String("step_id", id), zap.Error(err))
		}
		return nil, err
	}
	return &s, nil
}

// ListByProject returns the project's steps in board order.
func (r *StepRepository) ListByProject(ctx context.Context, projectID string) ([]model.Step, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, project_id, name, color, position
        FROM steps
        WHERE project_id = $1
        ORDER BY position ASC, id ASC
    `, projectID)
	if err != nil {
		r.logger.Error("Failed to query steps", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	steps := []model.Step{}
	for rows.Next() {
		var s model.Step
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Color, &s.Order); err != nil {
			r.logger.Error("Failed to scan step row", zap.Error(err))
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *StepRepository) Update(ctx context.Context, s *model.Step) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE steps SET name = $2, color = $3, position = $4
        WHERE id = $1
    `, s.ID, s.Name, s.Color, s.Order)
	if err != nil {
		r.logger.Error("Failed to update step", zap.String("step_id", s.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *StepRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM steps WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete step", zap.String("step_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("Step deleted", zap.String("step_id", id))
	return nil
}
