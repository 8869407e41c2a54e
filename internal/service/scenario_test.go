package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas-client/internal/auth"
	"notas-client/internal/dto"
	"notas-client/internal/entity"
	"notas-client/internal/gateway/memory"
	"notas-client/internal/pkg/logger"
)

// scriptedAuthGateway stands in for the remote auth service.
type scriptedAuthGateway struct {
	session *entity.Session
	signErr error
}

func (g *scriptedAuthGateway) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	if g.signErr != nil {
		return nil, g.signErr
	}
	return g.session, nil
}

func (g *scriptedAuthGateway) SignUp(ctx context.Context, email, password string) error {
	return g.signErr
}

func (g *scriptedAuthGateway) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

func (g *scriptedAuthGateway) RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error) {
	return nil, &auth.AuthError{Message: "refresh not scripted"}
}

// TestSignInToFilteredEditFlow walks the whole path: sign in, load both
// collections, narrow to one folder, then edit the visible note out of the
// filter.
func TestSignInToFilteredEditFlow(t *testing.T) {
	userId := uuid.New()
	gw := memory.NewGateway()

	work := entity.Folder{Id: uuid.New(), Name: "Work", UserId: userId}
	gw.FolderRecords.Seed(work)

	unfiled := entity.Note{Id: uuid.New(), Title: "A", UserId: userId, CreatedAt: time.Now().Add(-time.Minute)}
	filed := entity.Note{Id: uuid.New(), Title: "B", UserId: userId, FolderId: &work.Id, CreatedAt: time.Now()}
	gw.NoteRecords.Seed(unfiled, filed)

	sessions := auth.NewSessionStore(&scriptedAuthGateway{
		session: &entity.Session{
			AccessToken: "scenario-token",
			ExpiresAt:   time.Now().Add(time.Hour),
			User:        entity.User{Id: userId, Email: "user@example.com"},
		},
	}, logger.NewNopLogger(), "")
	defer sessions.Close()

	svc := NewSyncService(gw, sessions, logger.NewNopLogger())
	stop := svc.Start()
	defer stop()

	// Session absent: nothing rendered but the gate.
	assert.False(t, svc.Snapshot().Authenticated)

	// Sign in; the session event arrives over the stream, so poll for ready.
	require.NoError(t, sessions.SignIn(context.Background(), "user@example.com", "secret"))
	require.Eventually(t, func() bool {
		snapshot := svc.Snapshot()
		return snapshot.Authenticated && snapshot.Phase == string(PhaseReady) && len(snapshot.Notes) == 2
	}, time.Second, 10*time.Millisecond)

	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Folders, 1)
	assert.Equal(t, "B", snapshot.Notes[0].Title) // newest first

	// Narrow to the Work folder.
	require.NoError(t, svc.SelectFolder(context.Background(), &work.Id))
	snapshot = svc.Snapshot()
	require.Len(t, snapshot.Notes, 1)
	assert.Equal(t, filed.Id, snapshot.Notes[0].Id)

	// Move the visible note out of the filter; it leaves the view but stays
	// in the store.
	require.NoError(t, svc.UpdateNote(context.Background(), &dto.UpdateNoteRequest{
		Id:       filed.Id,
		Title:    "B",
		FolderId: nil,
	}))
	assert.Empty(t, svc.Snapshot().Notes)

	rows := gw.NoteRecords.All()
	require.Len(t, rows, 2)
	for _, row := range rows {
		if row.Id == filed.Id {
			assert.Nil(t, row.FolderId)
		}
	}

	// Clearing the filter brings everything back.
	require.NoError(t, svc.SelectFolder(context.Background(), nil))
	assert.Len(t, svc.Snapshot().Notes, 2)

	// Sign out clears both collections.
	sessions.SignOut(context.Background())
	require.Eventually(t, func() bool {
		snapshot := svc.Snapshot()
		return !snapshot.Authenticated && len(snapshot.Notes) == 0 && len(snapshot.Folders) == 0
	}, time.Second, 10*time.Millisecond)
}
