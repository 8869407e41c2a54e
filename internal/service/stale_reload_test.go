package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas-client/internal/dto"
	"notas-client/internal/entity"
	"notas-client/internal/gateway/contract"
	"notas-client/internal/gateway/memory"
	"notas-client/internal/gateway/specification"
	"notas-client/internal/pkg/logger"
)

// gatedGateway delays one notes List call so a session change can land while
// the fetch is still in flight.
type gatedGateway struct {
	inner *memory.Gateway
	notes *gatedNotes
}

func newGatedGateway() *gatedGateway {
	inner := memory.NewGateway()
	return &gatedGateway{
		inner: inner,
		notes: &gatedNotes{
			inner:   inner.NoteRecords,
			entered: make(chan struct{}),
			release: make(chan struct{}),
		},
	}
}

func (g *gatedGateway) Notes() contract.Records[entity.Note]     { return g.notes }
func (g *gatedGateway) Folders() contract.Records[entity.Folder] { return g.inner.FolderRecords }

type gatedNotes struct {
	inner   *memory.NoteRecords
	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

// arm makes the next List call park until release is closed.
func (g *gatedNotes) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *gatedNotes) List(ctx context.Context, specs ...specification.Specification) ([]entity.Note, error) {
	g.mu.Lock()
	armed := g.armed
	g.armed = false
	g.mu.Unlock()
	if armed {
		close(g.entered)
		<-g.release
	}
	return g.inner.List(ctx, specs...)
}

func (g *gatedNotes) Insert(ctx context.Context, record entity.Note) (entity.Note, error) {
	return g.inner.Insert(ctx, record)
}

func (g *gatedNotes) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return g.inner.Update(ctx, id, fields)
}

func assertCleared(t *testing.T, svc *syncService) {
	t.Helper()
	snapshot := svc.Snapshot()
	assert.False(t, snapshot.Authenticated)
	assert.Empty(t, snapshot.Notes)
	assert.Empty(t, snapshot.Folders)
}

func TestSignOutDuringReconciliationKeepsStateCleared(t *testing.T) {
	gw := newGatedGateway()
	sessions := &fakeSessions{}
	svc := NewSyncService(gw, sessions, logger.NewNopLogger()).(*syncService)
	userId := uuid.New()

	note := entity.Note{Id: uuid.New(), Title: "mine", UserId: userId, CreatedAt: time.Now()}
	gw.inner.NoteRecords.Seed(note)

	stop := svc.Start()
	defer stop()
	sessions.emit(testSession(userId))
	require.Len(t, svc.Snapshot().Notes, 1)

	// A rejected update triggers the reconciliation refetch; park it.
	gw.inner.NoteRecords.UpdateErr = errors.New("update rejected")
	gw.notes.arm()

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.UpdateNote(context.Background(), &dto.UpdateNoteRequest{Id: note.Id, Title: "edited"})
	}()
	<-gw.notes.entered

	// Sign-out lands while the reload is in flight.
	sessions.emit(nil)
	assertCleared(t, svc)

	close(gw.notes.release)
	require.Error(t, <-errCh)

	// The late result must not resurrect the signed-out user's rows.
	assertCleared(t, svc)
}

func TestSignOutDuringFilterReloadKeepsStateCleared(t *testing.T) {
	gw := newGatedGateway()
	sessions := &fakeSessions{}
	svc := NewSyncService(gw, sessions, logger.NewNopLogger()).(*syncService)
	userId := uuid.New()

	gw.inner.NoteRecords.Seed(entity.Note{Id: uuid.New(), Title: "mine", UserId: userId, CreatedAt: time.Now()})

	stop := svc.Start()
	defer stop()
	sessions.emit(testSession(userId))
	require.Len(t, svc.Snapshot().Notes, 1)

	gw.notes.arm()
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.SelectFolder(context.Background(), nil)
	}()
	<-gw.notes.entered

	sessions.emit(nil)
	assertCleared(t, svc)

	close(gw.notes.release)
	require.NoError(t, <-errCh)

	assertCleared(t, svc)
}

func TestSignOutDuringInitialReloadKeepsStateCleared(t *testing.T) {
	gw := newGatedGateway()
	sessions := &fakeSessions{}
	svc := NewSyncService(gw, sessions, logger.NewNopLogger()).(*syncService)
	userId := uuid.New()

	gw.inner.NoteRecords.Seed(entity.Note{Id: uuid.New(), Title: "mine", UserId: userId, CreatedAt: time.Now()})

	stop := svc.Start()
	defer stop()

	// Park the session-arrival reload itself.
	gw.notes.arm()
	done := make(chan struct{})
	go func() {
		sessions.emit(testSession(userId))
		close(done)
	}()
	<-gw.notes.entered

	sessions.emit(nil)
	assertCleared(t, svc)

	close(gw.notes.release)
	<-done

	assertCleared(t, svc)
}
