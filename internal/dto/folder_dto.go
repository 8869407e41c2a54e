package dto

import "github.com/google/uuid"

type CreateFolderRequest struct {
	Name string `json:"name" validate:"required"`
}

// SelectFolderRequest switches the active filter. A nil FolderId means
// "all notes".
type SelectFolderRequest struct {
	FolderId *uuid.UUID `json:"folder_id"`
}
