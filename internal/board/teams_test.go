package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/model"
)

func assigned(id string, users ...string) model.Task {
	return model.Task{ID: id, ProjectID: "p1", UserIDs: users}
}

func TestTeamMetrics(t *testing.T) {
	teams := []model.Team{
		{ID: "front", Members: []string{"ana", "bia"}},
		{ID: "back", Members: []string{"caio"}},
		{ID: "ops", Members: []string{"dani"}},
		{ID: "empty"},
	}
	tasks := []model.Task{
		assigned("t1", "ana", "bia"),  // counts once for front
		assigned("t2", "ana", "caio"), // cross-team
		assigned("t3", "bia", "bia"),
		assigned("t4"),
		assigned("t5", "zeca"),
	}

	got := TeamMetrics(teams, tasks)

	assert.Equal(t, Metrics{TotalTasks: 3, UniqueContributors: 2}, got["front"])
	assert.Equal(t, Metrics{TotalTasks: 1, UniqueContributors: 1}, got["back"])
	assert.Equal(t, Metrics{}, got["ops"])
	assert.Equal(t, Metrics{}, got["empty"])
	assert.Len(t, got, 4)
}

func TestTeamMetricsNoOverlapIsZero(t *testing.T) {
	teams := []model.Team{{ID: "x", Members: []string{"u1"}}}
	tasks := []model.Task{assigned("t1", "u2"), assigned("t2", "u3", "u4")}

	got := TeamMetrics(teams, tasks)

	assert.Zero(t, got["x"].TotalTasks)
	assert.Zero(t, got["x"].UniqueContributors)
}

func TestTeamMetricsNoTeams(t *testing.T) {
	assert.Empty(t, TeamMetrics(nil, []model.Task{assigned("t1", "u1")}))
}
