package dto

import (
	"github.com/google/uuid"

	"notas-client/internal/entity"
)

// StateSnapshot is what the view renders from. It is a copy; mutating it has
// no effect on the synchronizer.
type StateSnapshot struct {
	Phase            string          `json:"phase"`
	Authenticated    bool            `json:"authenticated"`
	UserEmail        string          `json:"user_email,omitempty"`
	Notes            []entity.Note   `json:"notes"`
	Folders          []entity.Folder `json:"folders"`
	SelectedFolderId *uuid.UUID      `json:"selected_folder_id"`
	SelectedNoteId   *uuid.UUID      `json:"selected_note_id"`
}
