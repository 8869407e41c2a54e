package specification

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ByFolder filters notes to one folder, or to the unfiled set when the id is
// nil.
type ByFolder struct {
	FolderID *uuid.UUID
}

func (s ByFolder) Apply(query url.Values) {
	if s.FolderID == nil {
		query.Set("folder_id", "is.null")
		return
	}
	query.Set("folder_id", fmt.Sprintf("eq.%s", *s.FolderID))
}
