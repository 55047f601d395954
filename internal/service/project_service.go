package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type ProjectService struct {
	projects ProjectStore
	logger   *zap.Logger
}

func NewProjectService(projects ProjectStore, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, logger: logger}
}

func (s *ProjectService) CreateProject(ctx context.Context, name, ownerID string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p := &model.Project{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.projects.List(ctx)
}

// requireProject returns ErrProjectNotFound unless the project exists.
func requireProject(ctx context.Context, projects ProjectStore, projectID string) error {
	if projectID == "" {
		return ErrProjectNotFound
	}
	ok, err := projects.Exists(ctx, projectID)
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	return nil
}
