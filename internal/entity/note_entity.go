package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note mirrors a row of the remote `notes` table. The remote store is the
// system of record; instances held locally are snapshots.
type Note struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FolderId    *uuid.UUID `json:"folder_id"`
	UserId      uuid.UUID  `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
