package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/board"
	"taskboard/internal/effort"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubTasks implements TaskAPI; methods a test does not override panic through the nil
// embedded interface.
type stubTasks struct {
	TaskAPI
	created service.CreateTaskInput
	updated service.UpdateTaskInput
	err     error
	kanban  board.Board
	steps   []model.Step
	deleted string
}

func (s *stubTasks) CreateTask(_ context.Context, in service.CreateTaskInput) (*model.Task, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Task{ID: "t1", Name: in.Name, ProjectID: in.ProjectID, Status: model.StatusTodo, Hash: "ABC123", UserIDs: []string{}}, nil
}

func (s *stubTasks) GetTask(_ context.Context, id string) (*model.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Task{ID: id, UserIDs: []string{}}, nil
}

func (s *stubTasks) UpdateTask(_ context.Context, id string, in service.UpdateTaskInput) (*model.Task, error) {
	s.updated = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Task{ID: id, UserIDs: []string{}}, nil
}

func (s *stubTasks) DeleteTask(_ context.Context, id string) error {
	s.deleted = id
	return s.err
}

func (s *stubTasks) DeleteStep(_ context.Context, _ string) error {
	return s.err
}

func (s *stubTasks) Kanban(_ context.Context, _ string) (board.Board, error) {
	return s.kanban, s.err
}

func (s *stubTasks) ListSteps(_ context.Context, _ string) ([]model.Step, error) {
	return s.steps, s.err
}

type stubHistory struct {
	HistoryAPI
	logged  service.LogHistoryInput
	source  string
	entries []model.HistoryEntry
	summary *effort.Summary
	err     error
}

func (s *stubHistory) Log(_ context.Context, in service.LogHistoryInput, source string) (*model.HistoryEntry, error) {
	s.logged, s.source = in, source
	if s.err != nil {
		return nil, s.err
	}
	return &model.HistoryEntry{ID: "h1", TaskID: in.TaskID, FilePath: in.FilePath, ElapsedTime: in.ElapsedTime, UserID: in.UserID}, nil
}

func (s *stubHistory) ListByTask(_ context.Context, _ string) ([]model.HistoryEntry, error) {
	return s.entries, s.err
}

func (s *stubHistory) TotalElapsed(_ context.Context, _ string) (float64, error) {
	return 42.5, s.err
}

func (s *stubHistory) Summary(_ context.Context, _ string) (*effort.Summary, error) {
	return s.summary, s.err
}

// newEngine mounts routes behind a middleware that authenticates as u1 with role.
func newEngine(role string, mount func(r gin.IRoutes)) *gin.Engine {
	r := gin.New()
	g := r.Group("/", func(c *gin.Context) {
		c.Set(CtxUserID, "u1")
		c.Set(CtxRole, role)
		c.Next()
	})
	mount(g)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrProjectNotFound, http.StatusBadRequest},
		{service.ErrInUse, http.StatusBadRequest},
		{service.ErrCrossProject, http.StatusBadRequest},
		{fmt.Errorf("%w: name is required", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrInvalidLogin, http.StatusUnauthorized},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestCreateTask(t *testing.T) {
	tasks := &stubTasks{}
	h := NewTaskHandler(tasks, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.POST("/tarefas", h.CreateTask) })

	w := do(r, http.MethodPost, "/tarefas", map[string]any{"name": "x", "projetoId": "p1", "userIds": []string{"u1"}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p1", tasks.created.ProjectID)

	var got model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ABC123", got.Hash)
}

func TestCreateTaskErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing project", service.ErrProjectNotFound, http.StatusBadRequest},
		{"foreign step", service.ErrCrossProject, http.StatusBadRequest},
		{"store down", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTaskHandler(&stubTasks{err: tt.err}, zap.NewNop())
			r := newEngine("user", func(g gin.IRoutes) { g.POST("/tarefas", h.CreateTask) })

			w := do(r, http.MethodPost, "/tarefas", map[string]any{"name": "x", "projetoId": "p1"})
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", errorBody(t, w))
			}
		})
	}
}

func TestCreateTaskMalformedBody(t *testing.T) {
	h := NewTaskHandler(&stubTasks{}, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.POST("/tarefas", h.CreateTask) })

	w := do(r, http.MethodPost, "/tarefas", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTaskNotFound(t *testing.T) {
	h := NewTaskHandler(&stubTasks{err: service.ErrNotFound}, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.GET("/tarefas/:id", h.GetTask) })

	w := do(r, http.MethodGet, "/tarefas/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "record not found", errorBody(t, w))
}

func TestUpdateTaskPassesExplicitNull(t *testing.T) {
	tasks := &stubTasks{}
	h := NewTaskHandler(tasks, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.PATCH("/tarefas/:id", h.UpdateTask) })

	w := do(r, http.MethodPatch, "/tarefas/t1", `{"stepId":null,"status":"BLOCKED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, tasks.updated.StepID.Set)
	assert.Nil(t, tasks.updated.StepID.Value)
	require.NotNil(t, tasks.updated.Status.Value)
	assert.Equal(t, model.StatusBlocked, *tasks.updated.Status.Value)
	assert.False(t, tasks.updated.Name.Set)
}

func TestDeleteStepInUse(t *testing.T) {
	h := NewTaskHandler(&stubTasks{err: service.ErrInUse}, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.DELETE("/tarefas-steps/:id", h.DeleteStep) })

	w := do(r, http.MethodDelete, "/tarefas-steps/s1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "referenced")
}

func TestKanbanJSON(t *testing.T) {
	step := model.Step{ID: "s1", Name: "Doing", Color: "#0F0", Order: 1, ProjectID: "p1"}
	tasks := []model.Task{
		{ID: "a", ProjectID: "p1", UserIDs: []string{}},
		{ID: "b", ProjectID: "p1", StepID: &step.ID, UserIDs: []string{}},
	}
	h := NewTaskHandler(&stubTasks{kanban: board.Assemble([]model.Step{step}, tasks)}, zap.NewNop())
	r := newEngine("cli", func(g gin.IRoutes) { g.GET("/tarefas/projeto/:id/kanban", h.Kanban) })

	w := do(r, http.MethodGet, "/tarefas/projeto/p1/kanban", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Steps []struct {
			ID      *string          `json:"_id"`
			Name    string           `json:"name"`
			Color   *string          `json:"color"`
			Order   int              `json:"order"`
			Tarefas []map[string]any `json:"tarefas"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Steps, 2)
	assert.Nil(t, body.Steps[0].ID)
	assert.Nil(t, body.Steps[0].Color)
	assert.Equal(t, -1, body.Steps[0].Order)
	assert.Len(t, body.Steps[0].Tarefas, 1)
	assert.Equal(t, "s1", *body.Steps[1].ID)
	assert.Len(t, body.Steps[1].Tarefas, 1)
}

func TestLogHistoryAttributesCaller(t *testing.T) {
	hist := &stubHistory{}
	h := NewHistoryHandler(hist, zap.NewNop())
	r := newEngine("cli", func(g gin.IRoutes) { g.POST("/tarefas/history", h.LogHistory) })

	w := do(r, http.MethodPost, "/tarefas/history", map[string]string{"tarefaId": "t1", "filePath": "a.go", "elapsedTime": "5"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, hist.logged.UserID)
	assert.Equal(t, "u1", *hist.logged.UserID)
	assert.Equal(t, "cli", hist.source)
}

func TestListHistoryFilters(t *testing.T) {
	u1, u2 := "u1", "u2"
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	hist := &stubHistory{entries: []model.HistoryEntry{
		{ID: "3", UserID: &u1, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "2", UserID: &u2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "1", UserID: &u1, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "0", CreatedAt: base},
	}}
	h := NewHistoryHandler(hist, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.GET("/tarefas/:id/history", h.ListHistory) })

	ids := func(w *httptest.ResponseRecorder) []string {
		var entries []model.HistoryEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		out := []string{}
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"3", "2", "1", "0"}, ids(do(r, http.MethodGet, "/tarefas/t1/history", nil)))
	assert.Equal(t, []string{"3", "1"}, ids(do(r, http.MethodGet, "/tarefas/t1/history?user=u1", nil)))
	assert.Equal(t, []string{"0"}, ids(do(r, http.MethodGet, "/tarefas/t1/history?user=unknown", nil)))
	assert.Equal(t, []string{"3", "2"}, ids(do(r, http.MethodGet, "/tarefas/t1/history?limit=2", nil)))

	w := do(r, http.MethodGet, "/tarefas/t1/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTotalElapsed(t *testing.T) {
	h := NewHistoryHandler(&stubHistory{}, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.GET("/tarefas/:id/history/elapsed", h.TotalElapsed) })

	w := do(r, http.MethodGet, "/tarefas/t1/history/elapsed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tarefaId":"t1","totalElapsedTime":42.5}`, w.Body.String())
}

func TestSummaryAddsLabels(t *testing.T) {
	deadline := 4.0
	s := effort.Summarize([]model.HistoryEntry{{FilePath: "a.ts", ElapsedTime: "90"}}, &deadline)
	h := NewHistoryHandler(&stubHistory{summary: &s}, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.GET("/tarefas/:id/summary", h.Summary) })

	w := do(r, http.MethodGet, "/tarefas/t1/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 90.0, body["totalMinutes"])
	assert.Equal(t, "1.5 h", body["totalLabel"])
	assert.Equal(t, "2.5 h", body["remainingLabel"])
	assert.Equal(t, 37.5, body["progress"])
}

func TestSummaryUnknownTask(t *testing.T) {
	h := NewHistoryHandler(&stubHistory{err: service.ErrNotFound}, zap.NewNop())
	r := newEngine("user", func(g gin.IRoutes) { g.GET("/tarefas/:id/summary", h.Summary) })

	w := do(r, http.MethodGet, "/tarefas/t1/summary", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
