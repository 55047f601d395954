package board

import "taskboard/internal/model"

// Metrics counts the tasks touched by at least one member of a team, and how many of
// its members appear on those tasks.
type Metrics struct {
	TotalTasks         int `json:"totalTasks"`
	UniqueContributors int `json:"uniqueContributors"`
}

// TeamMetrics returns an entry for every team id, zero-valued when no task overlaps it.
// A task counts once per team no matter how many of that team's members it lists.
func TeamMetrics(teams []model.Team, tasks []model.Task) map[string]Metrics {
	members := make([]map[string]struct{}, len(teams))
	contributors := make([]map[string]struct{}, len(teams))
	totals := make([]int, len(teams))
	for i, team := range teams {
		members[i] = toSet(team.Members)
		contributors[i] = make(map[string]struct{})
	}

	for _, task := range tasks {
		if len(task.UserIDs) == 0 {
			continue
		}
		assignees := toSet(task.UserIDs)
		for i := range teams {
			if len(members[i]) == 0 {
				continue
			}
			touched := false
			for uid := range assignees {
				if _, ok := members[i][uid]; ok {
					contributors[i][uid] = struct{}{}
					touched = true
				}
			}
			if touched {
				totals[i]++
			}
		}
	}

	out := make(map[string]Metrics, len(teams))
	for i, team := range teams {
		out[team.ID] = Metrics{
			TotalTasks:         totals[i],
			UniqueContributors: len(contributors[i]),
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}
