package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/effort"
	"taskboard/internal/model"
)

type fakeProjects struct{ byID map[string]model.Project }

func (f *fakeProjects) Insert(_ context.Context, p *model.Project) error {
	p.CreatedAt = time.Now()
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (f *fakeProjects) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeProjects) List(context.Context) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

type fakeTasks struct {
	byID  map[string]model.Task
	order []string
}

func (f *fakeTasks) Insert(_ context.Context, t *model.Task) error {
	t.Hash = "ABC123"
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.byID[t.ID] = *t
	f.order = append(f.order, t.ID)
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id string) (*model.Task, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.UserIDs = slices.Clone(t.UserIDs)
	return &t, nil
}

func (f *fakeTasks) ListByProject(_ context.Context, projectID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, id := range f.order {
		if t, ok := f.byID[id]; ok && t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, t *model.Task) error {
	if _, ok := f.byID[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = time.Now()
	f.byID[t.ID] = *t
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTasks) ExistsWithStep(_ context.Context, stepID string) (bool, error) {
	for _, t := range f.byID {
		if t.StepID != nil && *t.StepID == stepID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTasks) ExistsWithType(_ context.Context, typeID string) (bool, error) {
	for _, t := range f.byID {
		if t.TypeID != nil && *t.TypeID == typeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeSteps struct{ byID map[string]model.Step }

func (f *fakeSteps) Insert(_ context.Context, s *model.Step) error {
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSteps) GetByID(_ context.Context, id string) (*model.Step, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSteps) ListByProject(_ context.Context, projectID string) ([]model.Step, error) {
	out := []model.Step{}
	for _, s := range f.byID {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeSteps) Update(_ context.Context, s *model.Step) error {
	if _, ok := f.byID[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSteps) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeTypes struct{ byID map[string]model.TaskType }

func (f *fakeTypes) Insert(_ context.Context, t *model.TaskType) error {
	f.byID[t.ID] = *t
	return nil
}

func (f *fakeTypes) GetByID(_ context.Context, id string) (*model.TaskType, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTypes) ListByProject(_ context.Context, projectID string) ([]model.TaskType, error) {
	out := []model.TaskType{}
	for _, t := range f.byID {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTypes) Update(_ context.Context, t *model.TaskType) error {
	if _, ok := f.byID[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[t.ID] = *t
	return nil
}

func (f *fakeTypes) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeTeams struct {
	byID  map[string]model.Team
	order []string
}

func (f *fakeTeams) Insert(_ context.Context, t *model.Team) error {
	f.byID[t.ID] = *t
	f.order = append(f.order, t.ID)
	return nil
}

func (f *fakeTeams) AddMember(_ context.Context, teamID, userID string) (*model.Team, error) {
	t, ok := f.byID[teamID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if !slices.Contains(t.Members, userID) {
		t.Members = append(slices.Clone(t.Members), userID)
	}
	f.byID[teamID] = t
	return &t, nil
}

func (f *fakeTeams) ListByProject(_ context.Context, projectID string) ([]model.Team, error) {
	out := []model.Team{}
	for _, id := range f.order {
		if t := f.byID[id]; t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeHistory struct {
	entries []model.HistoryEntry
	clock   time.Time
	// afterList runs once after the next ListByTask, to interleave a concurrent write.
	afterList func()
}

func (f *fakeHistory) Insert(_ context.Context, e *model.HistoryEntry) error {
	f.clock = f.clock.Add(time.Minute)
	e.CreatedAt = f.clock
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeHistory) ListByTask(_ context.Context, taskID string) ([]model.HistoryEntry, error) {
	out := []model.HistoryEntry{}
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].TaskID == taskID {
			out = append(out, f.entries[i])
		}
	}
	if hook := f.afterList; hook != nil {
		f.afterList = nil
		hook()
	}
	return out, nil
}

type fakeUsers struct {
	byID      map[string]model.User
	findErr   error
	createErr error
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

type fakeTokens struct{ byToken map[string]model.CLIToken }

func (f *fakeTokens) Insert(_ context.Context, t *model.CLIToken) error {
	f.byToken[t.Token] = *t
	return nil
}

func (f *fakeTokens) FindActive(_ context.Context, token string) (*model.CLIToken, error) {
	t, ok := f.byToken[token]
	if !ok || t.Revoked {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTokens) Revoke(_ context.Context, token, userID string) error {
	t, ok := f.byToken[token]
	if !ok || t.Revoked || t.UserID != userID {
		return pgx.ErrNoRows
	}
	t.Revoked = true
	f.byToken[token] = t
	return nil
}

type published struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{routingKey, payload})
	return nil
}

type fakeCache struct {
	data        map[string]effort.Summary
	versions    map[string]int64
	err         error
	invalidated []string
}

func (f *fakeCache) Get(_ context.Context, taskID string) (*effort.Summary, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	s, ok := f.data[taskID]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (f *fakeCache) Version(_ context.Context, taskID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.versions[taskID], nil
}

func (f *fakeCache) Set(_ context.Context, taskID string, version int64, s *effort.Summary) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.versions[taskID] != version {
		return false, nil
	}
	f.data[taskID] = *s
	return true, nil
}

func (f *fakeCache) Invalidate(_ context.Context, taskID string) error {
	f.invalidated = append(f.invalidated, taskID)
	if f.err != nil {
		return f.err
	}
	delete(f.data, taskID)
	f.versions[taskID]++
	return nil
}

var errRedisDown = errors.New("dial tcp: connection refused")

// env bundles a full set of fakes wired into every service.
type env struct {
	projects  *fakeProjects
	tasks     *fakeTasks
	steps     *fakeSteps
	types     *fakeTypes
	teams     *fakeTeams
	history   *fakeHistory
	users     *fakeUsers
	tokens    *fakeTokens
	publisher *fakePublisher
	cache     *fakeCache

	Projects *ProjectService
	Tasks    *TaskService
	History  *HistoryService
	Teams    *TeamService
	Auth     *AuthService
}

func newEnv() *env {
	e := &env{
		projects:  &fakeProjects{byID: map[string]model.Project{}},
		tasks:     &fakeTasks{byID: map[string]model.Task{}},
		steps:     &fakeSteps{byID: map[string]model.Step{}},
		types:     &fakeTypes{byID: map[string]model.TaskType{}},
		teams:     &fakeTeams{byID: map[string]model.Team{}},
		history:   &fakeHistory{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		users:     &fakeUsers{byID: map[string]model.User{}},
		tokens:    &fakeTokens{byToken: map[string]model.CLIToken{}},
		publisher: &fakePublisher{},
		cache:     &fakeCache{data: map[string]effort.Summary{}, versions: map[string]int64{}},
	}
	log := zap.NewNop()
	e.Projects = NewProjectService(e.projects, log)
	e.Tasks = NewTaskService(e.projects, e.tasks, e.steps, e.types, e.publisher, e.cache, log)
	e.History = NewHistoryService(e.tasks, e.history, e.publisher, e.cache, log)
	e.Teams = NewTeamService(e.projects, e.teams, e.tasks, log)
	e.Auth = NewAuthService(e.users, e.tokens, "test-secret", time.Hour, log)
	return e
}
