package dto

import "github.com/google/uuid"

type UpdateNoteRequest struct {
	Id          uuid.UUID
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FolderId    *uuid.UUID `json:"folder_id"`
}
