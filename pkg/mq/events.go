package mq

import "time"

// Routing keys on the events exchange.
const (
	RoutingKeyHistoryLogged = "tarefa.history.logged"
	RoutingKeyTaskUpdated   = "tarefa.updated"
)

// HistoryLoggedPayload is published after a history entry has been stored.
type HistoryLoggedPayload struct {
	EntryID   string    `json:"entryId"`
	TaskID    string    `json:"tarefaId"`
	FilePath  string    `json:"filePath"`
	UserID    *string   `json:"userId,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskUpdatedPayload is published whenever a task's fields change or it is deleted.
type TaskUpdatedPayload struct {
	TaskID    string    `json:"tarefaId"`
	ProjectID string    `json:"projetoId"`
	Deleted   bool      `json:"deleted"`
	UpdatedAt time.Time `json:"updatedAt"`
}
