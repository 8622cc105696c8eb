package auth

import (
	"context"
	"sync"
	"time"
)

// Session holds the signed-in User of one scope (an app instance, a browser login...).
type Session struct {
	id       string
	dir      *Directory
	openedAt time.Time

	mu   sync.RWMutex
	user *User
}

func NewSession(id string, dir *Directory) *Session {
	return &Session{id: id, dir: dir, openedAt: time.Now().UTC()}
}

func (s *Session) ID() string { return s.id }

func (s *Session) OpenedAt() time.Time { return s.openedAt }

// Login signs User in iff the pair matches the record of role. On failure the session is left as is.
func (s *Session) Login(email, pwd string, role Role) bool {
	usr, err := s.dir.Authenticate(email, pwd, role)
	if err != nil {
		return false
	}
	s.mu.Lock()
	s.user = &usr
	s.mu.Unlock()
	return true
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

type sessionCtxKey struct{}

// NewContext provides s to everything running under the returned context.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// FromContext returns the provided Session. It panics when called outside a scope set up by NewContext.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	if !ok || s == nil {
		panic("auth: session accessed outside of its provider scope")
	}
	return s
}
