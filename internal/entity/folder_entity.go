package entity

import "github.com/google/uuid"

// Folder mirrors a row of the remote `folders` table.
type Folder struct {
	Id     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	UserId uuid.UUID `json:"user_id"`
}
