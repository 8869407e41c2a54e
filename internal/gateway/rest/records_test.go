package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas-client/internal/entity"
	"notas-client/internal/gateway/contract"
	"notas-client/internal/gateway/specification"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (contract.DataGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", time.Second, func() string { return "user-token" })
	return NewGateway(client), server
}

func TestListSendsFiltersAndHeaders(t *testing.T) {
	userId := uuid.New()

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/notes", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq."+userId.String(), r.URL.Query().Get("user_id"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]entity.Note{
			{Id: uuid.New(), Title: "a", UserId: userId, CreatedAt: time.Now()},
		})
	})

	notes, err := gw.Notes().List(context.Background(),
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].Title)
}

func TestListToleratesNullEntries(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[null, {"id":"` + uuid.New().String() + `","title":"real"}]`))
	})

	notes, err := gw.Notes().List(context.Background())
	require.NoError(t, err)
	// The null element decodes to a zero row; dropping it is the caller's
	// render-time concern, not a transport failure.
	require.Len(t, notes, 2)
	assert.Equal(t, uuid.Nil, notes[0].Id)
	assert.Equal(t, "real", notes[1].Title)
}

func TestListRemoteError(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "JWT expired"})
	})

	_, err := gw.Notes().List(context.Background())

	var remoteErr *contract.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusUnauthorized, remoteErr.StatusCode)
	assert.Equal(t, "JWT expired", remoteErr.Message)
}

func TestInsertEchoesPersistedRow(t *testing.T) {
	assigned := uuid.New()

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/folders", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Work", payload["name"])

		// Server-assigned columns must stay out of the body; a zero id in
		// the payload would be persisted instead of defaulted.
		assert.NotContains(t, payload, "id")
		assert.NotContains(t, payload, "created_at")

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]entity.Folder{{Id: assigned, Name: "Work"}})
	})

	folder, err := gw.Folders().Insert(context.Background(), entity.Folder{Name: "Work"})
	require.NoError(t, err)
	assert.Equal(t, assigned, folder.Id)
}

func TestInsertNoteSendsWritableColumnsOnly(t *testing.T) {
	userId := uuid.New()
	folderId := uuid.New()

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		assert.Equal(t, map[string]interface{}{
			"title":       "",
			"description": "",
			"folder_id":   folderId.String(),
			"user_id":     userId.String(),
		}, payload)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]entity.Note{
			{Id: uuid.New(), UserId: userId, FolderId: &folderId, CreatedAt: time.Now()},
		})
	})

	note, err := gw.Notes().Insert(context.Background(), entity.Note{UserId: userId, FolderId: &folderId})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, note.Id)
	assert.False(t, note.CreatedAt.IsZero())
}

func TestInsertWithEmptyEcho(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[]`))
	})

	_, err := gw.Folders().Insert(context.Background(), entity.Folder{Name: "Work"})

	var remoteErr *contract.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Contains(t, remoteErr.Message, "no row")
}

func TestUpdatePatchesById(t *testing.T) {
	id := uuid.New()

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		var fields map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "after", fields["title"])
		assert.Nil(t, fields["folder_id"])

		w.WriteHeader(http.StatusNoContent)
	})

	err := gw.Notes().Update(context.Background(), id, map[string]interface{}{
		"title":     "after",
		"folder_id": nil,
	})
	assert.NoError(t, err)
}

func TestUpdateRemoteError(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "row-level security violation"})
	})

	err := gw.Notes().Update(context.Background(), uuid.New(), map[string]interface{}{"title": "x"})

	var remoteErr *contract.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusForbidden, remoteErr.StatusCode)
}

func TestNetworkFailureIsRemoteError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "anon-key", 100*time.Millisecond, nil)
	gw := NewGateway(client)

	_, err := gw.Notes().List(context.Background())

	var remoteErr *contract.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Zero(t, remoteErr.StatusCode)
}

func TestAnonBearerWhenSignedOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", time.Second, func() string { return "" })
	gw := NewGateway(client)

	_, err := gw.Folders().List(context.Background())
	assert.NoError(t, err)
}
