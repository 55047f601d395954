package model

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusBlocked    TaskStatus = "BLOCKED"
	StatusFinished   TaskStatus = "FINISHED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusBlocked, StatusFinished:
		return true
	}
	return false
}

// Task is a tarefa. A nil StepID means the task sits in the backlog.
type Task struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	ProjectID     string     `json:"projetoId"`
	UserIDs       []string   `json:"userIds"`
	TypeID        *string    `json:"typeId"`
	StepID        *string    `json:"stepId"`
	Status        TaskStatus `json:"status"`
	Hash          string     `json:"hash"`
	DeadlineHours *float64   `json:"deadlineHours"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Step is a kanban column.
type Step struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Order     int    `json:"order"`
	ProjectID string `json:"projetoId"`
}

// TaskType is a tag that can be attached to tasks of the same project.
type TaskType struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	ProjectID string `json:"projetoId"`
}
