package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/board"
	"taskboard/internal/model"
	"taskboard/pkg/metrics"
	"taskboard/pkg/mq"
	"taskboard/pkg/trace"
)

type TaskService struct {
	projects  ProjectStore
	tasks     TaskStore
	steps     StepStore
	types     TypeStore
	publisher EventPublisher
	cache     SummaryCache
	logger    *zap.Logger
}

func NewTaskService(
	projects ProjectStore,
	tasks TaskStore,
	steps StepStore,
	types TypeStore,
	publisher EventPublisher,
	cache SummaryCache,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		projects:  projects,
		tasks:     tasks,
		steps:     steps,
		types:     types,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

type CreateTaskInput struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	ProjectID     string           `json:"projetoId"`
	UserIDs       []string         `json:"userIds"`
	TypeID        *string          `json:"typeId"`
	StepID        *string          `json:"stepId"`
	Status        model.TaskStatus `json:"status"`
	DeadlineHours *float64         `json:"deadlineHours"`
}

// UpdateTaskInput is a partial update. Fields left unset keep their stored value, and an
// explicit null clears an optional field (a null stepId moves the task to the backlog).
type UpdateTaskInput struct {
	Name          Optional[string]           `json:"name"`
	Description   Optional[string]           `json:"description"`
	UserIDs       Optional[[]string]         `json:"userIds"`
	TypeID        Optional[string]           `json:"typeId"`
	StepID        Optional[string]           `json:"stepId"`
	Status        Optional[model.TaskStatus] `json:"status"`
	DeadlineHours Optional[float64]          `json:"deadlineHours"`
}

type CreateStepInput struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	Order     *int   `json:"order"`
	ProjectID string `json:"projetoId"`
}

type UpdateStepInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Order *int    `json:"order"`
}

// ------------------ tasks ------------------

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	log := s.logger.With(zap.String("project_id", in.ProjectID), zap.String("trace_id", trace.FromContext(ctx)))

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := validDeadline(in.DeadlineHours); err != nil {
		return nil, err
	}
	if err := requireProject(ctx, s.projects, in.ProjectID); err != nil {
		return nil, err
	}

	t := &model.Task{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   in.Description,
		ProjectID:     in.ProjectID,
		UserIDs:       dedupe(in.UserIDs),
		TypeID:        blankToNil(in.TypeID),
		StepID:        blankToNil(in.StepID),
		Status:        status,
		DeadlineHours: in.DeadlineHours,
	}
	if err := s.checkRefs(ctx, t); err != nil {
		log.Warn("Rejected task with foreign reference", zap.Error(err))
		return nil, err
	}
	if err := s.tasks.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	log.Info("Task created", zap.String("task_id", t.ID), zap.String("hash", t.Hash))
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if in.Name.Set {
		if in.Name.Value == nil || strings.TrimSpace(*in.Name.Value) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		t.Name = strings.TrimSpace(*in.Name.Value)
	}
	if in.Description.Set {
		t.Description = in.Description.Value
	}
	if in.UserIDs.Set {
		if in.UserIDs.Value == nil {
			t.UserIDs = []string{}
		} else {
			t.UserIDs = dedupe(*in.UserIDs.Value)
		}
	}
	if in.TypeID.Set {
		t.TypeID = blankToNil(in.TypeID.Value)
	}
	if in.StepID.Set {
		t.StepID = blankToNil(in.StepID.Value)
	}
	if in.Status.Set {
		if in.Status.Value == nil || !in.Status.Value.Valid() {
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		t.Status = *in.Status.Value
	}
	if in.DeadlineHours.Set {
		if err := validDeadline(in.DeadlineHours.Value); err != nil {
			return nil, err
		}
		t.DeadlineHours = in.DeadlineHours.Value
	}

	if err := s.checkRefs(ctx, t); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, notFound(err)
	}

	s.taskChanged(ctx, t, false)
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.taskChanged(ctx, t, true)
	return nil
}

// Kanban builds the project's board. Tasks pointing at a step the project does not have
// are reported and kept out of the columns.
func (s *TaskService) Kanban(ctx context.Context, projectID string) (board.Board, error) {
	steps, err := s.steps.ListByProject(ctx, projectID)
	if err != nil {
		return board.Board{}, fmt.Errorf("list steps: %w", err)
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return board.Board{}, fmt.Errorf("list tasks: %w", err)
	}

	b := board.Assemble(steps, tasks)
	if n := len(b.Orphaned); n > 0 {
		metrics.AddOrphanedTasks(n)
		s.logger.Warn("Kanban has tasks with unknown steps",
			zap.String("project_id", projectID),
			zap.Int("orphaned", n),
		)
	}
	return b, nil
}

// checkRefs rejects step or type ids that are unknown or belong to another project.
func (s *TaskService) checkRefs(ctx context.Context, t *model.Task) error {
	if t.StepID != nil {
		step, err := s.steps.GetByID(ctx, *t.StepID)
		if err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return ErrCrossProject
			}
			return err
		}
		if step.ProjectID != t.ProjectID {
			return ErrCrossProject
		}
	}
	if t.TypeID != nil {
		tt, err := s.types.GetByID(ctx, *t.TypeID)
		if err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return ErrCrossProject
			}
			return err
		}
		if tt.ProjectID != t.ProjectID {
			return ErrCrossProject
		}
	}
	return nil
}

// taskChanged drops the cached summary and announces the change. Neither failure undoes
// the write that already happened.
func (s *TaskService) taskChanged(ctx context.Context, t *model.Task, deleted bool) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, t.ID); err != nil {
			s.logger.Warn("Failed to invalidate summary cache", zap.String("task_id", t.ID), zap.Error(err))
		}
	}
	if s.publisher == nil {
		return
	}
	payload := mq.TaskUpdatedPayload{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Deleted:   deleted,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, mq.RoutingKeyTaskUpdated, payload); err != nil {
		s.logger.Error("Failed to publish task update",
			zap.String("task_id", t.ID),
			zap.Error(err),
		)
	}
}

// ------------------ steps ------------------

func (s *TaskService) CreateStep(ctx context.Context, in CreateStepInput) (*model.Step, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Color) == "" {
		return nil, fmt.Errorf("%w: name and color are required", ErrInvalidInput)
	}
	if err := requireProject(ctx, s.projects, in.ProjectID); err != nil {
		return nil, err
	}
	step := &model.Step{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Color:     strings.TrimSpace(in.Color),
		ProjectID: in.ProjectID,
	}
	if in.Order != nil {
		step.Order = *in.Order
	}
	if err := s.steps.Insert(ctx, step); err != nil {
		return nil, fmt.Errorf("insert step: %w", err)
	}
	return step, nil
}

func (s *TaskService) ListSteps(ctx context.Context, projectID string) ([]model.Step, error) {
	return s.steps.ListByProject(ctx, projectID)
}

func (s *TaskService) UpdateStep(ctx context.Context, id string, in UpdateStepInput) (*model.Step, error) {
	step, err := s.steps.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		step.Name = strings.TrimSpace(*in.Name)
	}
	if in.Color != nil {
		if strings.TrimSpace(*in.Color) == "" {
			return nil, fmt.Errorf("%w: color cannot be empty", ErrInvalidInput)
		}
		step.Color = strings.TrimSpace(*in.Color)
	}
	if in.Order != nil {
		step.Order = *in.Order
	}
	if err := s.steps.Update(ctx, step); err != nil {
		return nil, notFound(err)
	}
	return step, nil
}

func (s *TaskService) DeleteStep(ctx context.Context, id string) error {
	inUse, err := s.tasks.ExistsWithStep(ctx, id)
	if err != nil {
		return fmt.Errorf("check step usage: %w", err)
	}
	if inUse {
		return ErrInUse
	}
	return notFound(s.steps.Delete(ctx, id))
}

// ------------------ types ------------------

func (s *TaskService) CreateType(ctx context.Context, name, projectID string) (*model.TaskType, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := requireProject(ctx, s.projects, projectID); err != nil {
		return nil, err
	}
	tt := &model.TaskType{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		ProjectID: projectID,
	}
	if err := s.types.Insert(ctx, tt); err != nil {
		return nil, fmt.Errorf("insert task type: %w", err)
	}
	return tt, nil
}

func (s *TaskService) ListTypes(ctx context.Context, projectID string) ([]model.TaskType, error) {
	return s.types.ListByProject(ctx, projectID)
}

func (s *TaskService) UpdateType(ctx context.Context, id string, name *string) (*model.TaskType, error) {
	tt, err := s.types.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		tt.Name = strings.TrimSpace(*name)
	}
	if err := s.types.Update(ctx, tt); err != nil {
		return nil, notFound(err)
	}
	return tt, nil
}

func (s *TaskService) DeleteType(ctx context.Context, id string) error {
	inUse, err := s.tasks.ExistsWithType(ctx, id)
	if err != nil {
		return fmt.Errorf("check type usage: %w", err)
	}
	if inUse {
		return ErrInUse
	}
	return notFound(s.types.Delete(ctx, id))
}

func blankToNil(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func validDeadline(h *float64) error {
	if h != nil && *h < 0 {
		return fmt.Errorf("%w: deadlineHours cannot be negative", ErrInvalidInput)
	}
	return nil
}

// dedupe keeps the first occurrence of each non-empty id.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
