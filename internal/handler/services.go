package handler

import (
	"context"

	"taskboard/internal/board"
	"taskboard/internal/effort"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

// The interfaces below are what the handlers need from internal/service.

type ProjectAPI interface {
	CreateProject(ctx context.Context, name, ownerID string) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}

type TaskAPI interface {
	CreateTask(ctx context.Context, in service.CreateTaskInput) (*model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	UpdateTask(ctx context.Context, id string, in service.UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Kanban(ctx context.Context, projectID string) (board.Board, error)

	CreateStep(ctx context.Context, in service.CreateStepInput) (*model.Step, error)
	ListSteps(ctx context.Context, projectID string) ([]model.Step, error)
	UpdateStep(ctx context.Context, id string, in service.UpdateStepInput) (*model.Step, error)
	DeleteStep(ctx context.Context, id string) error

	CreateType(ctx context.Context, name, projectID string) (*model.TaskType, error)
	ListTypes(ctx context.Context, projectID string) ([]model.TaskType, error)
	UpdateType(ctx context.Context, id string, name *string) (*model.TaskType, error)
	DeleteType(ctx context.Context, id string) error
}

type HistoryAPI interface {
	Log(ctx context.Context, in service.LogHistoryInput, source string) (*model.HistoryEntry, error)
	ListByTask(ctx context.Context, taskID string) ([]model.HistoryEntry, error)
	TotalElapsed(ctx context.Context, taskID string) (float64, error)
	Summary(ctx context.Context, taskID string) (*effort.Summary, error)
}

type TeamAPI interface {
	CreateTeam(ctx context.Context, in service.CreateTeamInput) (*model.Team, error)
	AssignUser(ctx context.Context, teamID, userID string) (*model.Team, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Team, error)
	Metrics(ctx context.Context, projectID string) ([]service.TeamWithMetrics, error)
}

type AuthAPI interface {
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	IssueCLIToken(ctx context.Context, userID string) (string, error)
	RevokeCLIToken(ctx context.Context, token, userID string) error
}
