package memory

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notas-client/internal/entity"
	"notas-client/internal/gateway/contract"
	"notas-client/internal/gateway/specification"
)

// Gateway is a map-backed contract.DataGateway. It interprets the same
// PostgREST-style parameters the REST gateway sends, so filter and order
// semantics can be exercised without a network.
type Gateway struct {
	NoteRecords   *NoteRecords
	FolderRecords *FolderRecords
}

func NewGateway() *Gateway {
	return &Gateway{
		NoteRecords:   &NoteRecords{},
		FolderRecords: &FolderRecords{},
	}
}

func (g *Gateway) Notes() contract.Records[entity.Note] {
	return g.NoteRecords
}

func (g *Gateway) Folders() contract.Records[entity.Folder] {
	return g.FolderRecords
}

func applySpecs(specs []specification.Specification) url.Values {
	query := url.Values{}
	for _, spec := range specs {
		spec.Apply(query)
	}
	return query
}

// matches reports whether a field value satisfies a PostgREST operator
// expression such as "eq.<value>" or "is.null".
func matches(param string, value string, isNull bool) bool {
	switch {
	case param == "is.null":
		return isNull
	case strings.HasPrefix(param, "eq."):
		return !isNull && value == strings.TrimPrefix(param, "eq.")
	default:
		return true
	}
}

// NoteRecords implements contract.Records[entity.Note]. The error fields
// inject failures for exercising compensation paths.
type NoteRecords struct {
	mu   sync.Mutex
	rows []entity.Note

	ListErr   error
	InsertErr error
	UpdateErr error
}

func (r *NoteRecords) Seed(rows ...entity.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rows...)
}

func (r *NoteRecords) All() []entity.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Note, len(r.rows))
	copy(out, r.rows)
	return out
}

func (r *NoteRecords) List(ctx context.Context, specs ...specification.Specification) ([]entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	query := applySpecs(specs)
	var out []entity.Note
	for _, row := range r.rows {
		if param := query.Get("folder_id"); param != "" {
			val := ""
			if row.FolderId != nil {
				val = row.FolderId.String()
			}
			if !matches(param, val, row.FolderId == nil) {
				continue
			}
		}
		if param := query.Get("user_id"); param != "" {
			if !matches(param, row.UserId.String(), false) {
				continue
			}
		}
		out = append(out, row)
	}

	if order := query.Get("order"); order == "created_at.desc" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *NoteRecords) Insert(ctx context.Context, record entity.Note) (entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return entity.Note{}, r.InsertErr
	}

	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, record)
	return record, nil
}

func (r *NoteRecords) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	for i := range r.rows {
		if r.rows[i].Id != id {
			continue
		}
		if v, ok := fields["title"].(string); ok {
			r.rows[i].Title = v
		}
		if v, ok := fields["description"].(string); ok {
			r.rows[i].Description = v
		}
		if v, ok := fields["folder_id"]; ok {
			switch folder := v.(type) {
			case *uuid.UUID:
				r.rows[i].FolderId = folder
			case uuid.UUID:
				r.rows[i].FolderId = &folder
			case nil:
				r.rows[i].FolderId = nil
			}
		}
		return nil
	}
	return &contract.RemoteError{StatusCode: 404, Message: "row not found"}
}

// FolderRecords implements contract.Records[entity.Folder].
type FolderRecords struct {
	mu   sync.Mutex
	rows []entity.Folder

	ListErr   error
	InsertErr error
	UpdateErr error
}

func (r *FolderRecords) Seed(rows ...entity.Folder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rows...)
}

func (r *FolderRecords) All() []entity.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Folder, len(r.rows))
	copy(out, r.rows)
	return out
}

func (r *FolderRecords) List(ctx context.Context, specs ...specification.Specification) ([]entity.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	query := applySpecs(specs)
	var out []entity.Folder
	for _, row := range r.rows {
		if param := query.Get("user_id"); param != "" {
			if !matches(param, row.UserId.String(), false) {
				continue
			}
		}
		out = append(out, row)
	}

	if order := query.Get("order"); order == "name.asc" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Name < out[j].Name
		})
	}
	return out, nil
}

func (r *FolderRecords) Insert(ctx context.Context, record entity.Folder) (entity.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return entity.Folder{}, r.InsertErr
	}

	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	r.rows = append(r.rows, record)
	return record, nil
}

func (r *FolderRecords) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	for i := range r.rows {
		if r.rows[i].Id != id {
			continue
		}
		if v, ok := fields["name"].(string); ok {
			r.rows[i].Name = v
		}
		return nil
	}
	return &contract.RemoteError{StatusCode: 404, Message: "row not found"}
}
