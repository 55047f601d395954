package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/effort"
	"taskboard/internal/model"
	"taskboard/pkg/mq"
)

func seedTask(t *testing.T, e *env, deadline *float64) *model.Task {
	t.Helper()
	p := seedProject(t, e, "board")
	task, err := e.Tasks.CreateTask(context.Background(), CreateTaskInput{Name: "x", ProjectID: p.ID, DeadlineHours: deadline})
	require.NoError(t, err)
	return task
}

func logEntry(t *testing.T, e *env, taskID, file, elapsed, user string) *model.HistoryEntry {
	t.Helper()
	in := LogHistoryInput{TaskID: taskID, FilePath: file, ElapsedTime: elapsed}
	if user != "" {
		in.UserID = &user
	}
	entry, err := e.History.Log(context.Background(), in, "cli")
	require.NoError(t, err)
	return entry
}

func TestLogHistory(t *testing.T) {
	e := newEnv()
	task := seedTask(t, e, nil)

	entry := logEntry(t, e, task.ID, "main.go", "12", "u1")
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, mq.RoutingKeyHistoryLogged, e.publisher.events[0].routingKey)
	payload := e.publisher.events[0].payload.(mq.HistoryLoggedPayload)
	assert.Equal(t, entry.ID, payload.EntryID)
	assert.Equal(t, task.ID, payload.TaskID)
	assert.Equal(t, "cli", payload.Source)
	assert.Contains(t, e.cache.invalidated, task.ID)
}

func TestLogHistoryValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	task := seedTask(t, e, nil)

	_, err := e.History.Log(ctx, LogHistoryInput{TaskID: task.ID, FilePath: "a.go"}, "user")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.History.Log(ctx, LogHistoryInput{TaskID: "missing", FilePath: "a.go", ElapsedTime: "1"}, "user")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, e.history.entries)
}

func TestLogHistoryKeepsEntryWhenPublishFails(t *testing.T) {
	e := newEnv()
	task := seedTask(t, e, nil)
	e.publisher.err = assert.AnError

	logEntry(t, e, task.ID, "main.go", "5", "")
	assert.Len(t, e.history.entries, 1)
}

func TestListByTaskNewestFirst(t *testing.T) {
	e := newEnv()
	task := seedTask(t, e, nil)
	first := logEntry(t, e, task.ID, "a.go", "1", "u1")
	second := logEntry(t, e, task.ID, "b.go", "2", "u1")

	entries, err := e.History.ListByTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestTotalElapsed(t *testing.T) {
	e := newEnv()
	task := seedTask(t, e, nil)
	logEntry(t, e, task.ID, "a.go", "30", "u1")
	logEntry(t, e, task.ID, "a.go", "abc", "u1")
	logEntry(t, e, task.ID, "b.go", "12.5min", "u2")

	total, err := e.History.TotalElapsed(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.5, total)

	none, err := e.History.TotalElapsed(context.Background(), "no-history")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestSummaryReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	deadline := 2.0
	e := newEnv()
	task := seedTask(t, e, &deadline)
	logEntry(t, e, task.ID, "a.ts", "30", "u1")
	logEntry(t, e, task.ID, "a.ts", "15", "u1")
	logEntry(t, e, task.ID, "b.ts", "60", "u2")

	s, err := e.History.Summary(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 105.0, s.TotalMinutes)
	assert.Equal(t, "u2", s.HistoryByUser[0].UserID)
	require.NotNil(t, s.RemainingHours)
	assert.Equal(t, 0.25, *s.RemainingHours)

	cached, ok := e.cache.data[task.ID]
	require.True(t, ok, "computed summary is cached")
	assert.Equal(t, 105.0, cached.TotalMinutes)

	// a cached value is returned as is
	cached.TotalMinutes = 1
	e.cache.data[task.ID] = cached
	s, err = e.History.Summary(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.TotalMinutes)

	// logging drops the cached value
	logEntry(t, e, task.ID, "c.ts", "15", "u1")
	s, err = e.History.Summary(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, s.TotalMinutes)
}

func TestSummaryFallsBackWhenCacheFails(t *testing.T) {
	e := newEnv()
	task := seedTask(t, e, nil)
	logEntry(t, e, task.ID, "a.ts", "30", "u1")
	e.cache.err = errRedisDown

	s, err := e.History.Summary(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.TotalMinutes)
}

func TestSummaryUnknownTask(t *testing.T) {
	_, err := newEnv().History.Summary(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryWithUnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	cache := NewRedisSummaryCache(rdb, time.Minute, zap.NewNop())

	e := newEnv()
	e.History = NewHistoryService(e.tasks, e.history, e.publisher, cache, zap.NewNop())
	task := seedTask(t, e, nil)
	logEntry(t, e, task.ID, "a.ts", "30", "u1")

	for i := 0; i < 8; i++ {
		s, err := e.History.Summary(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, 30.0, s.TotalMinutes)
	}
	assert.Equal(t, "open", cache.State().String())
}

func TestRefreshAndInvalidate(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	task := seedTask(t, e, nil)
	logEntry(t, e, task.ID, "a.ts", "30", "u1")

	s, err := e.History.Refresh(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, effort.Summarize(e.history.entries, nil).TotalMinutes, s.TotalMinutes)
	assert.Contains(t, e.cache.data, task.ID)

	require.NoError(t, e.History.Invalidate(ctx, task.ID))
	assert.NotContains(t, e.cache.data, task.ID)

	_, err = e.History.Refresh(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryNotCachedWhenHistoryChangesDuringCompute(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	task := seedTask(t, e, nil)
	logEntry(t, e, task.ID, "a.ts", "30", "u1")

	// a Log lands after the entries were read but before the summary is stored
	e.history.afterList = func() {
		logEntry(t, e, task.ID, "b.ts", "15", "u2")
	}
	s, err := e.History.Summary(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.TotalMinutes)
	assert.NotContains(t, e.cache.data, task.ID, "stale summary must not be cached")

	s, err = e.History.Summary(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.0, s.TotalMinutes)
	assert.Equal(t, 45.0, e.cache.data[task.ID].TotalMinutes)
}
