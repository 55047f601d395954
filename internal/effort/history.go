package effort

import (
	"sort"

	"taskboard/internal/model"
)

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func Recent(entries []model.HistoryEntry, n int) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FilterByUser keeps the entries whose UserKey equals userKey. Pass UnknownUser to select
// entries logged without a user.
func FilterByUser(entries []model.HistoryEntry, userKey string) []model.HistoryEntry {
	out := []model.HistoryEntry{}
	for _, e := range entries {
		if UserKey(e) == userKey {
			out = append(out, e)
		}
	}
	return out
}
