package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"notas-client/internal/entity"
	"notas-client/internal/gateway/contract"
	"notas-client/internal/gateway/specification"
)

// Gateway is the REST implementation of contract.DataGateway.
type Gateway struct {
	notes   contract.Records[entity.Note]
	folders contract.Records[entity.Folder]
}

func NewGateway(client *Client) contract.DataGateway {
	return &Gateway{
		notes: &records[entity.Note]{
			client: client,
			table:  "notes",
			insertBody: func(note entity.Note) interface{} {
				return noteInsertRow{
					Title:       note.Title,
					Description: note.Description,
					FolderId:    note.FolderId,
					UserId:      note.UserId,
				}
			},
		},
		folders: &records[entity.Folder]{
			client: client,
			table:  "folders",
			insertBody: func(folder entity.Folder) interface{} {
				return folderInsertRow{
					Name:   folder.Name,
					UserId: folder.UserId,
				}
			},
		},
	}
}

// Insert payloads carry writable columns only. Sending a zero id or
// created_at would persist those values instead of letting the column
// defaults assign them.
type noteInsertRow struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FolderId    *uuid.UUID `json:"folder_id"`
	UserId      uuid.UUID  `json:"user_id"`
}

type folderInsertRow struct {
	Name   string    `json:"name"`
	UserId uuid.UUID `json:"user_id"`
}

func (g *Gateway) Notes() contract.Records[entity.Note] {
	return g.notes
}

func (g *Gateway) Folders() contract.Records[entity.Folder] {
	return g.folders
}

type records[T any] struct {
	client     *Client
	table      string
	insertBody func(T) interface{}
}

func (r *records[T]) List(ctx context.Context, specs ...specification.Specification) ([]T, error) {
	query := url.Values{}
	query.Set("select", "*")
	for _, spec := range specs {
		spec.Apply(query)
	}

	data, status, err := r.client.do(ctx, http.MethodGet, r.client.endpoint(r.table, query), nil, "")
	if err != nil {
		return nil, &contract.RemoteError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, remoteFailure(status, data)
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &contract.RemoteError{StatusCode: status, Message: "malformed collection payload: " + err.Error()}
	}
	return rows, nil
}

func (r *records[T]) Insert(ctx context.Context, record T) (T, error) {
	var zero T

	data, status, err := r.client.do(ctx, http.MethodPost, r.client.endpoint(r.table, nil), r.insertBody(record), "return=representation")
	if err != nil {
		return zero, &contract.RemoteError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return zero, remoteFailure(status, data)
	}

	// PostgREST echoes the persisted rows as an array.
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return zero, &contract.RemoteError{StatusCode: status, Message: "malformed insert echo: " + err.Error()}
	}
	if len(rows) == 0 {
		return zero, &contract.RemoteError{StatusCode: status, Message: "insert returned no row"}
	}
	return rows[0], nil
}

func (r *records[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	query := url.Values{}
	specification.FilterBy{Field: "id", Value: id}.Apply(query)

	data, status, err := r.client.do(ctx, http.MethodPatch, r.client.endpoint(r.table, query), fields, "return=minimal")
	if err != nil {
		return &contract.RemoteError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return remoteFailure(status, data)
	}
	return nil
}

func remoteFailure(status int, body []byte) *contract.RemoteError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &contract.RemoteError{StatusCode: status, Message: payload.Message}
	}
	return &contract.RemoteError{StatusCode: status, Message: http.StatusText(status)}
}
