package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/models"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

// Fixed names of the two persisted entries.
const (
	TokenKey = "authToken"
	RoleKey  = "authRole"
)

// Logouter ends a backend session.
type Logouter interface {
	Logout(ctx context.Context, token string) (gateway.Result[models.MessageResponse], error)
}

// Listener is notified after every login and logout.
type Listener func(models.Session)

// Store holds the session token and role of one browser. All mutations go
// through Login and Logout, which keep the pair together in memory and in
// storage.
type Store struct {
	mu        sync.RWMutex
	namespace string
	storage   Storage
	logouter  Logouter
	logger    *zap.Logger
	current   models.Session
	listeners []Listener
}

// Open restores the session of namespace from storage. A torn pair (token
// without role or role without token) is discarded.
func Open(ctx context.Context, storage Storage, namespace string, logouter Logouter, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{namespace: namespace, storage: storage, logouter: logouter, logger: logger}

	entries, err := storage.Read(ctx, namespace, TokenKey, RoleKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to restore session")
	}

	token, hasToken := entries[TokenKey]
	role, hasRole := entries[RoleKey]
	switch {
	case hasToken && hasRole && token != "":
		s.current = models.Session{Token: token, Role: role}
	case hasToken || hasRole:
		logger.Warn("discarding torn session entries",
			zap.String("namespace", namespace),
			zap.Bool("has_token", hasToken),
			zap.Bool("has_role", hasRole))
		if err := storage.Remove(ctx, namespace, TokenKey, RoleKey); err != nil {
			logger.Warn("failed to clear torn session entries", zap.String("namespace", namespace), zap.Error(err))
		}
	}

	return s, nil
}

// Login persists token and role, then makes them current. The token format
// is not checked.
func (s *Store) Login(ctx context.Context, token, role string) error {
	s.mu.Lock()
	if err := s.storage.Write(ctx, s.namespace, map[string]string{TokenKey: token, RoleKey: role}); err != nil {
		s.mu.Unlock()
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist session")
	}
	s.current = models.Session{Token: token, Role: role}
	snapshot, listeners := s.current, s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info("session login", zap.String("namespace", s.namespace), zap.String("role", role))
	notify(listeners, snapshot)
	return nil
}

// Logout ends the backend session best-effort, then clears storage and
// memory. Memory is cleared even when storage removal fails. A Login that
// completes while the backend call is in flight is kept.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.RLock()
	token := s.current.Token
	s.mu.RUnlock()

	if token != "" && s.logouter != nil {
		res, err := s.logouter.Logout(ctx, token)
		switch {
		case err != nil:
			s.logger.Warn("backend logout failed", zap.String("namespace", s.namespace), zap.Error(err))
		case !res.Ok():
			msg, _ := res.Failure()
			s.logger.Warn("backend logout rejected", zap.String("namespace", s.namespace), zap.String("error", msg))
		}
	}

	s.mu.Lock()
	if s.current.Token != token {
		s.mu.Unlock()
		s.logger.Info("session replaced during logout; keeping newer session", zap.String("namespace", s.namespace))
		return nil
	}
	storageErr := s.storage.Remove(ctx, s.namespace, TokenKey, RoleKey)
	s.current = models.Session{}
	snapshot, listeners := s.current, s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info("session logout", zap.String("namespace", s.namespace))
	notify(listeners, snapshot)

	if storageErr != nil {
		return appErrors.Wrap(storageErr, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to clear session")
	}
	return nil
}

// IsAuthenticated reports whether a non-empty token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().Authenticated()
}

// IsAdmin reports whether the admin controls should be shown.
func (s *Store) IsAdmin() bool {
	return s.Snapshot().IsAdmin()
}

// Token returns the current token, empty when logged out.
func (s *Store) Token() string {
	return s.Snapshot().Token
}

// Role returns the current role, empty when logged out.
func (s *Store) Role() string {
	return s.Snapshot().Role
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to run after every login and logout.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func notify(listeners []Listener, snapshot models.Session) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
