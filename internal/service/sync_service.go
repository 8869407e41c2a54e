package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"notas-client/internal/auth"
	"notas-client/internal/dto"
	"notas-client/internal/entity"
	"notas-client/internal/gateway/contract"
	"notas-client/internal/gateway/specification"
	"notas-client/internal/pkg/eventbus"
	"notas-client/internal/pkg/logger"
)

// TopicStateChanged carries a dto.StateSnapshot after every state mutation.
const TopicStateChanged = "sync.state.changed"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

var (
	ErrNoSession       = errors.New("no active session")
	ErrEmptyFolderName = errors.New("folder name must not be empty")
	ErrUnknownFolder   = errors.New("folder is not in the local collection")
	ErrUnknownNote     = errors.New("note is not in the local collection")
)

type ISyncService interface {
	// Start subscribes to session changes. The returned stop func releases
	// the subscription; it is safe to call more than once.
	Start() (stop func())
	Snapshot() dto.StateSnapshot
	OnStateChanged(fn func(snapshot dto.StateSnapshot)) *eventbus.Subscription

	SelectFolder(ctx context.Context, folderId *uuid.UUID) error
	SelectNote(noteId *uuid.UUID) error
	CreateNote(ctx context.Context) (*entity.Note, error)
	CreateFolder(ctx context.Context, name string) (*entity.Folder, error)
	UpdateNote(ctx context.Context, req *dto.UpdateNoteRequest) error
}

// syncService owns the in-memory notes and folders collections and keeps them
// consistent with the remote store: full reload on session changes, notes-only
// reload on filter changes, optimistic mutation with reconciliation-by-refetch
// on update failure. It is the only writer of the two collections.
type syncService struct {
	gateway  contract.DataGateway
	sessions auth.ISessionStore
	bus      *eventbus.Bus
	logger   logger.ILogger

	mu             sync.Mutex
	phase          Phase
	session        *entity.Session
	notes          []entity.Note
	folders        []entity.Folder
	selectedFolder *entity.Folder
	selectedNote   *entity.Note
}

func NewSyncService(gateway contract.DataGateway, sessions auth.ISessionStore, log logger.ILogger) ISyncService {
	return &syncService{
		gateway:  gateway,
		sessions: sessions,
		bus:      eventbus.New(),
		logger:   log,
		phase:    PhaseIdle,
	}
}

func (s *syncService) Start() func() {
	sub := s.sessions.OnChange(s.handleSessionChange)

	// A session may already be established (recovered before Start); the
	// edge-triggered stream will not replay it.
	if current := s.sessions.Current(); current != nil {
		go s.handleSessionChange(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.Unsubscribe()
			if err := s.bus.Close(); err != nil {
				s.logger.Warn("SyncService", "Closing state bus", map[string]interface{}{"error": err.Error()})
			}
		})
	}
}

func (s *syncService) handleSessionChange(session *entity.Session) {
	if session == nil {
		// Nothing to fetch; clearing is immediate and needs no spinner.
		s.mu.Lock()
		s.session = nil
		s.notes = nil
		s.folders = nil
		s.selectedFolder = nil
		s.selectedNote = nil
		s.phase = PhaseReady
		s.mu.Unlock()
		s.publish()
		return
	}

	s.mu.Lock()
	s.session = session
	s.phase = PhaseLoading
	filter := s.selectedFolder
	s.mu.Unlock()
	s.publish()

	ctx := context.Background()

	// Both collections load concurrently; the phase flips to ready only after
	// both settle. A failed leg logs and leaves the other leg's result in
	// place.
	var wg sync.WaitGroup
	var folders []entity.Folder
	var notes []entity.Note
	var foldersErr, notesErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		folders, foldersErr = s.listFolders(ctx, session.User.Id)
	}()
	go func() {
		defer wg.Done()
		notes, notesErr = s.listNotes(ctx, session.User.Id, filter)
	}()
	wg.Wait()

	s.mu.Lock()
	if s.session != session {
		// The session moved on while the reload was in flight; whatever
		// replaced it owns the state now.
		s.mu.Unlock()
		return
	}
	if foldersErr != nil {
		s.logger.Error("SyncService", "Loading folders failed", map[string]interface{}{"error": foldersErr.Error()})
	} else {
		s.folders = folders
	}
	if notesErr != nil {
		s.logger.Error("SyncService", "Loading notes failed", map[string]interface{}{"error": notesErr.Error()})
	} else {
		s.notes = notes
	}
	s.phase = PhaseReady
	s.mu.Unlock()
	s.publish()
}

func (s *syncService) listFolders(ctx context.Context, userId uuid.UUID) ([]entity.Folder, error) {
	return s.gateway.Folders().List(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "name"},
	)
}

func (s *syncService) listNotes(ctx context.Context, userId uuid.UUID, filter *entity.Folder) ([]entity.Note, error) {
	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if filter != nil {
		specs = append(specs, specification.ByFolder{FolderID: &filter.Id})
	}
	return s.gateway.Notes().List(ctx, specs...)
}

// SelectFolder switches the active filter and refetches the notes portion
// only; folders stay as they are. A nil id selects "all notes".
func (s *syncService) SelectFolder(ctx context.Context, folderId *uuid.UUID) error {
	s.mu.Lock()
	session := s.session
	if session == nil {
		s.mu.Unlock()
		return ErrNoSession
	}

	var filter *entity.Folder
	if folderId != nil {
		for i := range s.folders {
			if s.folders[i].Id == *folderId {
				folder := s.folders[i]
				filter = &folder
				break
			}
		}
		if filter == nil {
			s.mu.Unlock()
			return ErrUnknownFolder
		}
	}
	s.selectedFolder = filter
	s.phase = PhaseLoading
	s.mu.Unlock()
	s.publish()

	notes, err := s.listNotes(ctx, session.User.Id, filter)

	s.mu.Lock()
	if s.session != session {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.logger.Error("SyncService", "Loading notes failed", map[string]interface{}{"error": err.Error()})
	} else {
		s.notes = notes
	}
	s.phase = PhaseReady
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *syncService) SelectNote(noteId *uuid.UUID) error {
	s.mu.Lock()
	if noteId == nil {
		s.selectedNote = nil
		s.mu.Unlock()
		s.publish()
		return nil
	}

	for i := range s.notes {
		if s.notes[i].Id == *noteId {
			note := s.notes[i]
			s.selectedNote = &note
			s.mu.Unlock()
			s.publish()
			return nil
		}
	}
	s.mu.Unlock()
	return ErrUnknownNote
}

// CreateNote inserts a blank note and opens it for editing. Creation always
// produces an editable empty note; there is no "new note" form. Nothing is
// applied locally until the remote insert echoes the persisted row.
func (s *syncService) CreateNote(ctx context.Context) (*entity.Note, error) {
	s.mu.Lock()
	session := s.session
	filter := s.selectedFolder
	s.mu.Unlock()

	if session == nil {
		return nil, ErrNoSession
	}

	blank := entity.Note{
		Title:       "",
		Description: "",
		UserId:      session.User.Id,
	}
	if filter != nil {
		folderId := filter.Id
		blank.FolderId = &folderId
	}

	created, err := s.gateway.Notes().Insert(ctx, blank)
	if err != nil {
		s.logger.Error("SyncService", "Creating note failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.mu.Lock()
	// New notes sort first, so prepending preserves reverse-chronological
	// order without a refetch.
	s.notes = append([]entity.Note{created}, s.notes...)
	note := created
	s.selectedNote = &note
	s.mu.Unlock()
	s.publish()

	return &created, nil
}

// CreateFolder validates the name locally before any remote call. On success
// the folder is appended without re-sorting; the list regains name order on
// the next full reload.
func (s *syncService) CreateFolder(ctx context.Context, name string) (*entity.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyFolderName
	}

	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil, ErrNoSession
	}

	created, err := s.gateway.Folders().Insert(ctx, entity.Folder{
		Name:   name,
		UserId: session.User.Id,
	})
	if err != nil {
		s.logger.Error("SyncService", "Creating folder failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.mu.Lock()
	s.folders = append(s.folders, created)
	s.mu.Unlock()
	s.publish()

	return &created, nil
}

// UpdateNote applies the edit locally first, then confirms it remotely. The
// compensation for a rejected write is a full refetch of the notes collection,
// not a fine-grained undo: the remote store is the source of truth.
func (s *syncService) UpdateNote(ctx context.Context, req *dto.UpdateNoteRequest) error {
	s.mu.Lock()
	session := s.session
	if session == nil {
		s.mu.Unlock()
		return ErrNoSession
	}

	// Tentative apply.
	for i := range s.notes {
		if s.notes[i].Id == req.Id {
			s.notes[i].Title = req.Title
			s.notes[i].Description = req.Description
			s.notes[i].FolderId = req.FolderId
			if s.selectedNote != nil && s.selectedNote.Id == req.Id {
				note := s.notes[i]
				s.selectedNote = &note
			}
			break
		}
	}
	filter := s.selectedFolder
	s.mu.Unlock()
	s.publish()

	// Confirm.
	err := s.gateway.Notes().Update(ctx, req.Id, map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"folder_id":   req.FolderId,
	})
	if err == nil {
		// The edit may have moved the note out of the active filter; keep the
		// visible set consistent without a refetch.
		if filter != nil && (req.FolderId == nil || *req.FolderId != filter.Id) {
			s.mu.Lock()
			for i := range s.notes {
				if s.notes[i].Id == req.Id {
					s.notes = append(s.notes[:i], s.notes[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
			s.publish()
		}
		return nil
	}

	// Compensate: discard the optimistic edit by reloading from the gateway.
	// Overlapping edits share this fate; the last reconciliation wins.
	s.logger.Error("SyncService", "Updating note failed, resynchronizing", map[string]interface{}{"error": err.Error()})

	notes, listErr := s.listNotes(ctx, session.User.Id, filter)
	if listErr != nil {
		s.logger.Error("SyncService", "Reconciliation reload failed", map[string]interface{}{"error": listErr.Error()})
		return err
	}

	s.mu.Lock()
	if s.session != session {
		// A sign-out (or a fresh sign-in) cleared the collections while the
		// reload was in flight; applying it would resurrect the old rows.
		s.mu.Unlock()
		return err
	}
	s.notes = notes
	s.mu.Unlock()
	s.publish()
	return err
}

func (s *syncService) Snapshot() dto.StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *syncService) snapshotLocked() dto.StateSnapshot {
	snapshot := dto.StateSnapshot{
		Phase:         string(s.phase),
		Authenticated: s.session != nil,
		Notes:         make([]entity.Note, 0, len(s.notes)),
		Folders:       make([]entity.Folder, 0, len(s.folders)),
	}
	if s.session != nil {
		snapshot.UserEmail = s.session.User.Email
	}

	// A null entry in a fetched collection decodes to a zero row. Tolerated,
	// filtered here, never fatal.
	for _, note := range s.notes {
		if note.Id == uuid.Nil {
			continue
		}
		snapshot.Notes = append(snapshot.Notes, note)
	}
	for _, folder := range s.folders {
		if folder.Id == uuid.Nil {
			continue
		}
		snapshot.Folders = append(snapshot.Folders, folder)
	}

	if s.selectedFolder != nil {
		folderId := s.selectedFolder.Id
		snapshot.SelectedFolderId = &folderId
	}
	if s.selectedNote != nil {
		noteId := s.selectedNote.Id
		snapshot.SelectedNoteId = &noteId
	}
	return snapshot
}

func (s *syncService) OnStateChanged(fn func(snapshot dto.StateSnapshot)) *eventbus.Subscription {
	sub, err := s.bus.Subscribe(TopicStateChanged, func(payload []byte) {
		var snapshot dto.StateSnapshot
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			s.logger.Warn("SyncService", "Dropping malformed state event", map[string]interface{}{"error": err.Error()})
			return
		}
		fn(snapshot)
	})
	if err != nil {
		s.logger.Error("SyncService", "Subscribe failed", map[string]interface{}{"error": err.Error()})
		return &eventbus.Subscription{}
	}
	return sub
}

func (s *syncService) publish() {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("SyncService", "Marshalling state snapshot", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.bus.Publish(TopicStateChanged, payload); err != nil {
		s.logger.Warn("SyncService", "Publishing state change", map[string]interface{}{"error": err.Error()})
	}
}
