package auth

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"notas-client/internal/entity"
	"notas-client/internal/pkg/eventbus"
	"notas-client/internal/pkg/logger"
)

const (
	// TopicSessionChanged carries one message per actual presence change or
	// token replacement. Consumers treat it as edge-triggered.
	TopicSessionChanged = "auth.session.changed"

	sessionCacheKey = "current_session"
)

func init() {
	gob.Register(&entity.Session{})
}

type ISessionStore interface {
	// Load performs the one-shot lookup of an already-established session.
	Load(ctx context.Context) error
	Current() *entity.Session
	OnChange(fn func(session *entity.Session)) *eventbus.Subscription
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context)
	Close()
}

// SessionStore mirrors the remote auth state. It is the only component
// allowed to replace the current session; everyone else reads Current or
// subscribes to changes.
type SessionStore struct {
	gateway IAuthGateway
	bus     *eventbus.Bus
	cache   *cache.Cache
	logger  logger.ILogger

	// cacheFile, when set, persists the session across runs.
	cacheFile string

	mu      sync.RWMutex
	current *entity.Session
}

var _ ISessionStore = &SessionStore{}

func NewSessionStore(gateway IAuthGateway, log logger.ILogger, cacheFile string) *SessionStore {
	return &SessionStore{
		gateway:   gateway,
		bus:       eventbus.New(),
		cache:     cache.New(time.Hour, 10*time.Minute),
		logger:    log,
		cacheFile: cacheFile,
	}
}

func (s *SessionStore) Load(ctx context.Context) error {
	if s.cacheFile != "" {
		if err := s.cache.LoadFile(s.cacheFile); err != nil {
			s.logger.Debug("SessionStore", "No cached session file", map[string]interface{}{"error": err.Error()})
		}
	}

	raw, found := s.cache.Get(sessionCacheKey)
	if !found {
		return nil
	}
	session, ok := raw.(*entity.Session)
	if !ok {
		s.cache.Delete(sessionCacheKey)
		return nil
	}

	if session.Expired() {
		// Trade the refresh token for a live session before giving up.
		refreshed, err := s.gateway.RefreshSession(ctx, session.RefreshToken)
		if err != nil {
			s.logger.Info("SessionStore", "Cached session expired and refresh failed", map[string]interface{}{"error": err.Error()})
			s.cache.Delete(sessionCacheKey)
			s.persist()
			return nil
		}
		session = refreshed
	}

	s.replace(session)
	return nil
}

func (s *SessionStore) Current() *entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnChange registers fn for session-change events. A nil session means the
// session became absent. The returned handle must be released on teardown.
func (s *SessionStore) OnChange(fn func(session *entity.Session)) *eventbus.Subscription {
	sub, err := s.bus.Subscribe(TopicSessionChanged, func(payload []byte) {
		var session *entity.Session
		if len(payload) > 0 {
			session = &entity.Session{}
			if err := json.Unmarshal(payload, session); err != nil {
				s.logger.Warn("SessionStore", "Dropping malformed session event", map[string]interface{}{"error": err.Error()})
				return
			}
		}
		fn(session)
	})
	if err != nil {
		// gochannel only fails on a closed bus; nothing to deliver after that.
		s.logger.Error("SessionStore", "Subscribe failed", map[string]interface{}{"error": err.Error()})
		return &eventbus.Subscription{}
	}
	return sub
}

func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	session, err := s.gateway.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.replace(session)
	return nil
}

func (s *SessionStore) SignUp(ctx context.Context, email, password string) error {
	// Sign-up never yields a session here; the account must be confirmed
	// by e-mail first.
	return s.gateway.SignUp(ctx, email, password)
}

func (s *SessionStore) SignOut(ctx context.Context) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil {
		if err := s.gateway.SignOut(ctx, current.AccessToken); err != nil {
			s.logger.Warn("SessionStore", "Remote sign-out failed", map[string]interface{}{"error": err.Error()})
		}
	}
	s.replace(nil)
}

func (s *SessionStore) Close() {
	if err := s.bus.Close(); err != nil {
		s.logger.Warn("SessionStore", "Closing event bus", map[string]interface{}{"error": err.Error()})
	}
}

// replace swaps the current session and publishes a change event, but only
// on an actual change: same-token replacements stay silent.
func (s *SessionStore) replace(next *entity.Session) {
	s.mu.Lock()
	if !changed(s.current, next) {
		s.mu.Unlock()
		return
	}
	s.current = next
	s.mu.Unlock()

	if next == nil {
		s.cache.Delete(sessionCacheKey)
	} else {
		ttl := cache.DefaultExpiration
		if !next.ExpiresAt.IsZero() {
			ttl = time.Until(next.ExpiresAt)
		}
		s.cache.Set(sessionCacheKey, next, ttl)
	}
	s.persist()

	var payload []byte
	if next != nil {
		payload, _ = json.Marshal(next)
	}
	if err := s.bus.Publish(TopicSessionChanged, payload); err != nil {
		s.logger.Error("SessionStore", "Publishing session change", map[string]interface{}{"error": err.Error()})
	}
}

func changed(previous, next *entity.Session) bool {
	if previous == nil && next == nil {
		return false
	}
	if previous == nil || next == nil {
		return true
	}
	return previous.AccessToken != next.AccessToken
}

func (s *SessionStore) persist() {
	if s.cacheFile == "" {
		return
	}
	if err := s.cache.SaveFile(s.cacheFile); err != nil {
		s.logger.Warn("SessionStore", "Persisting session cache", map[string]interface{}{"error": err.Error()})
	}
}
