package service

import (
	"context"

	"taskboard/internal/effort"
	"taskboard/internal/model"
)

// The store interfaces are satisfied by the pgx repositories in internal/repository.

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]model.Project, error)
}

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id string) error
	ExistsWithStep(ctx context.Context, stepID string) (bool, error)
	ExistsWithType(ctx context.Context, typeID string) (bool, error)
}

type StepStore interface {
	Insert(ctx context.Context, s *model.Step) error
	GetByID(ctx context.Context, id string) (*model.Step, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Step, error)
	Update(ctx context.Context, s *model.Step) error
	Delete(ctx context.Context, id string) error
}

type TypeStore interface {
	Insert(ctx context.Context, t *model.TaskType) error
	GetByID(ctx context.Context, id string) (*model.TaskType, error)
	ListByProject(ctx context.Context, projectID string) ([]model.TaskType, error)
	Update(ctx context.Context, t *model.TaskType) error
	Delete(ctx context.Context, id string) error
}

type TeamStore interface {
	Insert(ctx context.Context, t *model.Team) error
	AddMember(ctx context.Context, teamID, userID string) (*model.Team, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Team, error)
}

type HistoryStore interface {
	Insert(ctx context.Context, e *model.HistoryEntry) error
	ListByTask(ctx context.Context, taskID string) ([]model.HistoryEntry, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type CLITokenStore interface {
	Insert(ctx context.Context, t *model.CLIToken) error
	FindActive(ctx context.Context, token string) (*model.CLIToken, error)
	Revoke(ctx context.Context, token, userID string) error
}

// EventPublisher is implemented by *mq.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// SummaryCache stores computed effort summaries keyed by task id. Every Invalidate bumps
// the task's version; Set only stores when the version still matches the one read before
// the summary was computed, so a summary built from a stale read never outlives a write.
type SummaryCache interface {
	Get(ctx context.Context, taskID string) (*effort.Summary, bool, error)
	Version(ctx context.Context, taskID string) (int64, error)
	Set(ctx context.Context, taskID string, version int64, s *effort.Summary) (bool, error)
	Invalidate(ctx context.Context, taskID string) error
}
