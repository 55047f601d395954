// Package effort turns a task's time-tracking history into the numbers shown on the
// task detail page.
package effort

import (
	"sort"

	"taskboard/internal/model"
)

// UnknownUser groups entries logged without a user id.
const UnknownUser = "unknown"

type Summary struct {
	TotalMinutes       float64      `json:"totalMinutes"`
	TotalHours         float64      `json:"totalHours"`
	TotalEdits         int          `json:"totalEdits"`
	DistinctFilesCount int          `json:"distinctFilesCount"`
	ParticipantsCount  int          `json:"participantsCount"`
	HistoryByUser      []UserGroup  `json:"historyByUser"`
	DeadlineHours      *float64     `json:"deadlineHours"`
	RemainingHours     *float64     `json:"remainingHours"`
	Progress           *float64     `json:"progress"`
	IsOverBudget       bool         `json:"isOverBudget"`
	FileInsights       FileInsights `json:"fileInsights"`
}

type UserGroup struct {
	UserID       string  `json:"userId"`
	TotalMinutes float64 `json:"totalMinutes"`
	// Share is this user's rounded percentage of the task's total minutes.
	Share       int                  `json:"share"`
	EditedFiles int                  `json:"editedFilesCount"`
	TopFile     *TopFile             `json:"topFile"`
	Entries     []model.HistoryEntry `json:"entries"`
}

// IsUnknown reports whether the group collects entries without a user id.
func (g UserGroup) IsUnknown() bool { return g.UserID == UnknownUser }

// TopFile is the file a user spent the most minutes on. Share is its rounded percentage
// of that user's own total.
type TopFile struct {
	FilePath string  `json:"filePath"`
	Minutes  float64 `json:"minutes"`
	Share    int     `json:"share"`
}

type FileInsights struct {
	MostEdited *FileEdits `json:"mostEdited"`
	MostTime   *FileTime  `json:"mostTime"`
}

type FileEdits struct {
	FilePath string `json:"filePath"`
	Count    int    `json:"count"`
}

type FileTime struct {
	FilePath     string  `json:"filePath"`
	TotalMinutes float64 `json:"totalMinutes"`
}

// UserKey is the grouping key for an entry.
func UserKey(e model.HistoryEntry) string {
	if e.UserID == nil || *e.UserID == "" {
		return UnknownUser
	}
	return *e.UserID
}

// fileTally keeps per-file totals in first-seen order.
type fileTally struct {
	order   []string
	count   map[string]int
	minutes map[string]float64
}

func newFileTally() *fileTally {
	return &fileTally{count: map[string]int{}, minutes: map[string]float64{}}
}

func (f *fileTally) add(path string, minutes float64) {
	if _, seen := f.count[path]; !seen {
		f.order = append(f.order, path)
	}
	f.count[path]++
	f.minutes[path] += minutes
}

// Summarize aggregates all history entries of one task. deadlineHours may be nil.
// The input slice is never modified.
func Summarize(entries []model.HistoryEntry, deadlineHours *float64) Summary {
	s := Summary{
		TotalEdits:    len(entries),
		HistoryByUser: []UserGroup{},
	}

	files := newFileTally()
	groups := map[string]int{}
	perUserFiles := []*fileTally{}

	for _, e := range entries {
		minutes := ParseMinutes(e.ElapsedTime)
		files.add(e.FilePath, minutes)

		key := UserKey(e)
		idx, ok := groups[key]
		if !ok {
			idx = len(s.HistoryByUser)
			groups[key] = idx
			s.HistoryByUser = append(s.HistoryByUser, UserGroup{UserID: key, Entries: []model.HistoryEntry{}})
			perUserFiles = append(perUserFiles, newFileTally())
		}
		g := &s.HistoryByUser[idx]
		g.TotalMinutes += minutes
		g.Entries = append(g.Entries, e)
		perUserFiles[idx].add(e.FilePath, minutes)
	}

	for i := range s.HistoryByUser {
		s.HistoryByUser[i].EditedFiles = len(perUserFiles[i].order)
		s.HistoryByUser[i].TopFile = topFile(perUserFiles[i], s.HistoryByUser[i].TotalMinutes)
	}

	sort.SliceStable(s.HistoryByUser, func(i, j int) bool {
		return s.HistoryByUser[i].TotalMinutes > s.HistoryByUser[j].TotalMinutes
	})

	// The task total is the sum of the group totals in their final order, so the groups
	// add up to it exactly even when minutes are fractional.
	for _, g := range s.HistoryByUser {
		s.TotalMinutes += g.TotalMinutes
	}
	s.TotalHours = s.TotalMinutes / 60
	s.DistinctFilesCount = len(files.order)

	for i := range s.HistoryByUser {
		g := &s.HistoryByUser[i]
		g.Share = percent(g.TotalMinutes, s.TotalMinutes)
		if !g.IsUnknown() {
			s.ParticipantsCount++
		}
	}

	applyDeadline(&s, deadlineHours)
	s.FileInsights = insights(files)
	return s
}

func topFile(files *fileTally, userMinutes float64) *TopFile {
	var best *TopFile
	bestMinutes := 0.0
	for _, path := range files.order {
		if m := files.minutes[path]; m > bestMinutes {
			bestMinutes = m
			best = &TopFile{FilePath: path, Minutes: m}
		}
	}
	if best != nil {
		best.Share = percent(best.Minutes, userMinutes)
	}
	return best
}

func applyDeadline(s *Summary, deadlineHours *float64) {
	if deadlineHours == nil {
		return
	}
	d := *deadlineHours
	s.DeadlineHours = &d

	remaining := d - s.TotalHours
	if remaining < 0 {
		remaining = 0
	}
	s.RemainingHours = &remaining

	if d > 0 {
		progress := s.TotalHours / d * 100
		if progress > 100 {
			progress = 100
		}
		s.Progress = &progress
		s.IsOverBudget = s.TotalHours > d
	}
}

// insights scans files once in first-seen order; ties keep the earlier file.
func insights(files *fileTally) FileInsights {
	var out FileInsights
	for _, path := range files.order {
		count, minutes := files.count[path], files.minutes[path]
		if out.MostEdited == nil || count > out.MostEdited.Count {
			out.MostEdited = &FileEdits{FilePath: path, Count: count}
		}
		if out.MostTime == nil || minutes > out.MostTime.TotalMinutes {
			out.MostTime = &FileTime{FilePath: path, TotalMinutes: minutes}
		}
	}
	return out
}
