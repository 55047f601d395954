package model

import "time"

// HistoryEntry is one time-tracking record for a task. ElapsedTime is minutes, kept as
// text because that is how the file-watching client reports it.
type HistoryEntry struct {
	ID          string    `json:"_id"`
	TaskID      string    `json:"tarefaId"`
	FilePath    string    `json:"filePath"`
	ElapsedTime string    `json:"elapsedTime"`
	UserID      *string   `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
