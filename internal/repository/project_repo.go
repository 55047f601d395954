package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("project_id", p.ID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (id, name, owner_id)
        VALUES ($1, $2, $3)
        RETURNING created_at
    `
	if err := r.db.QueryRow(ctx, query, p.ID, p.Name, p.OwnerID).Scan(&p.CreatedAt); err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	r.logger.Info("Project inserted successfully", zap.String("project_id", p.ID))
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
        SELECT id, name, owner_id, created_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	if err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check project existence", zap.String("project_id", id), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, owner_id, created_at
        FROM projects
        ORDER BY created_at ASC
    `)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
