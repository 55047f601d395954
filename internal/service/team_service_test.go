package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/board"
)

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p := seedProject(t, e, "board")

	_, err := e.Teams.CreateTeam(ctx, CreateTeamInput{Name: "core", ProjectID: "missing"})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = e.Teams.CreateTeam(ctx, CreateTeamInput{ProjectID: p.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	team, err := e.Teams.CreateTeam(ctx, CreateTeamInput{Name: "core", ProjectID: p.ID, Members: []string{"u1", "u1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, team.Members)
}

func TestAssignUserIsAddToSet(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p := seedProject(t, e, "board")
	team, err := e.Teams.CreateTeam(ctx, CreateTeamInput{Name: "core", ProjectID: p.ID})
	require.NoError(t, err)

	_, err = e.Teams.AssignUser(ctx, team.ID, "u1")
	require.NoError(t, err)
	updated, err := e.Teams.AssignUser(ctx, team.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, updated.Members)

	_, err = e.Teams.AssignUser(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamMetrics(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p := seedProject(t, e, "board")

	core, err := e.Teams.CreateTeam(ctx, CreateTeamInput{Name: "core", ProjectID: p.ID, Members: []string{"u1", "u2"}})
	require.NoError(t, err)
	idle, err := e.Teams.CreateTeam(ctx, CreateTeamInput{Name: "idle", ProjectID: p.ID, Members: []string{"u9"}})
	require.NoError(t, err)

	for _, users := range [][]string{{"u1"}, {"u1", "u2", "u3"}, {"u3"}} {
		_, err := e.Tasks.CreateTask(ctx, CreateTaskInput{Name: "t", ProjectID: p.ID, UserIDs: users})
		require.NoError(t, err)
	}

	rows, err := e.Teams.Metrics(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, core.ID, rows[0].ID)
	assert.Equal(t, board.Metrics{TotalTasks: 2, UniqueContributors: 2}, rows[0].Metrics)
	assert.Equal(t, idle.ID, rows[1].ID)
	assert.Equal(t, board.Metrics{}, rows[1].Metrics)
}
