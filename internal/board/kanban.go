// Package board assembles kanban views and team metrics from already-loaded project
// records. Everything here is a pure function of its arguments.
package board

import (
	"encoding/json"
	"sort"

	"taskboard/internal/model"
)

type ColumnKind int

const (
	ColumnBacklog ColumnKind = iota
	ColumnStep
)

const (
	BacklogName  = "Backlog"
	BacklogOrder = -1
)

// Column is either the backlog or a named step. Step is only meaningful when Kind is
// ColumnStep.
type Column struct {
	Kind  ColumnKind
	Step  model.Step
	Tasks []model.Task
}

func (c Column) IsBacklog() bool { return c.Kind == ColumnBacklog }

func (c Column) Name() string {
	if c.IsBacklog() {
		return BacklogName
	}
	return c.Step.Name
}

func (c Column) Order() int {
	if c.IsBacklog() {
		return BacklogOrder
	}
	return c.Step.Order
}

type columnView struct {
	ID      *string      `json:"_id"`
	Name    string       `json:"name"`
	Color   *string      `json:"color"`
	Order   int          `json:"order"`
	Tarefas []model.Task `json:"tarefas"`
}

// MarshalJSON renders the column the way the board client expects: the backlog has a
// null id and a null color.
func (c Column) MarshalJSON() ([]byte, error) {
	v := columnView{
		Name:    c.Name(),
		Order:   c.Order(),
		Tarefas: c.Tasks,
	}
	if !c.IsBacklog() {
		id, color := c.Step.ID, c.Step.Color
		v.ID, v.Color = &id, &color
	}
	if v.Tarefas == nil {
		v.Tarefas = []model.Task{}
	}
	return json.Marshal(v)
}

// Board is the kanban view of one project. Orphaned holds tasks whose step id does not
// match any step passed to Assemble; they are not placed in any column.
type Board struct {
	Columns  []Column     `json:"steps"`
	Orphaned []model.Task `json:"orphaned,omitempty"`
}

// TaskCount is the number of tasks placed in columns.
func (b Board) TaskCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}

// Assemble groups tasks by step. The backlog column is always first, followed by one
// column per distinct step id sorted by (order, id). Callers must scope steps and tasks
// to the same project.
func Assemble(steps []model.Step, tasks []model.Task) Board {
	ordered := distinctSteps(steps)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	byStep := make(map[string][]model.Task, len(ordered))
	for _, s := range ordered {
		byStep[s.ID] = []model.Task{}
	}

	backlog := []model.Task{}
	var orphaned []model.Task
	for _, t := range tasks {
		if t.StepID == nil || *t.StepID == "" {
			backlog = append(backlog, t)
			continue
		}
		group, ok := byStep[*t.StepID]
		if !ok {
			orphaned = append(orphaned, t)
			continue
		}
		byStep[*t.StepID] = append(group, t)
	}

	columns := make([]Column, 0, len(ordered)+1)
	columns = append(columns, Column{Kind: ColumnBacklog, Tasks: backlog})
	for _, s := range ordered {
		columns = append(columns, Column{Kind: ColumnStep, Step: s, Tasks: byStep[s.ID]})
	}

	return Board{Columns: columns, Orphaned: orphaned}
}

func distinctSteps(steps []model.Step) []model.Step {
	seen := make(map[string]struct{}, len(steps))
	out := make([]model.Step, 0, len(steps))
	for _, s := range steps {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}
