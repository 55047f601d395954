package model

import "time"

type Project struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Team is a time: a named group of users inside a project.
type Team struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	ProjectID string   `json:"projetoId"`
	Members   []string `json:"members"`
}
