package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"notas-client/internal/entity"
	"notas-client/internal/gateway/specification"
)

// Records is the capability surface over one remote collection. No retries
// happen at this level; compensation policy belongs to the caller.
type Records[T any] interface {
	// List returns rows matching the given specifications, in the requested
	// order.
	List(ctx context.Context, specs ...specification.Specification) ([]T, error)
	// Insert persists the record and echoes it back with the server-assigned
	// id and created_at.
	Insert(ctx context.Context, record T) (T, error)
	// Update patches the given fields of one row by id. No row is returned.
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// DataGateway exposes the two collections the client synchronizes against.
type DataGateway interface {
	Notes() Records[entity.Note]
	Folders() Records[entity.Folder]
}

// RemoteError is any list/insert/update failure the remote store reports:
// network, authorization or validation.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote store: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("remote store: %s", e.Message)
}
