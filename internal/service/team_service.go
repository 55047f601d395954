package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/board"
	"taskboard/internal/model"
)

type TeamService struct {
	projects ProjectStore
	teams    TeamStore
	tasks    TaskStore
	logger   *zap.Logger
}

func NewTeamService(projects ProjectStore, teams TeamStore, tasks TaskStore, logger *zap.Logger) *TeamService {
	return &TeamService{
		projects: projects,
		teams:    teams,
		tasks:    tasks,
		logger:   logger,
	}
}

type CreateTeamInput struct {
	Name      string   `json:"name"`
	ProjectID string   `json:"projetoId"`
	Members   []string `json:"members"`
}

// TeamWithMetrics is one row of the project's team dashboard.
type TeamWithMetrics struct {
	model.Team
	board.Metrics
}

func (s *TeamService) CreateTeam(ctx context.Context, in CreateTeamInput) (*model.Team, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := requireProject(ctx, s.projects, in.ProjectID); err != nil {
		return nil, err
	}
	t := &model.Team{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		ProjectID: in.ProjectID,
		Members:   dedupe(in.Members),
	}
	if err := s.teams.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert team: %w", err)
	}
	return t, nil
}

// AssignUser adds userID to the team. Assigning an existing member is a no-op.
func (s *TeamService) AssignUser(ctx context.Context, teamID, userID string) (*model.Team, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	t, err := s.teams.AddMember(ctx, teamID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	s.logger.Info("User assigned to team", zap.String("team_id", teamID), zap.String("user_id", userID))
	return t, nil
}

func (s *TeamService) ListByProject(ctx context.Context, projectID string) ([]model.Team, error) {
	return s.teams.ListByProject(ctx, projectID)
}

// Metrics returns every team of the project with its task and contributor counts.
func (s *TeamService) Metrics(ctx context.Context, projectID string) ([]TeamWithMetrics, error) {
	teams, err := s.teams.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	byTeam := board.TeamMetrics(teams, tasks)
	out := make([]TeamWithMetrics, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamWithMetrics{Team: t, Metrics: byTeam[t.ID]})
	}
	return out, nil
}
