package auth

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions is the provider of Session scopes: one per login, torn down on logout.
type Sessions struct {
	dir *Directory

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions(dir *Directory) *Sessions {
	return &Sessions{dir: dir, sessions: make(map[string]*Session)}
}

func (p *Sessions) Directory() *Directory { return p.dir }

func (p *Sessions) Open() *Session {
	s := NewSession(uuid.NewString(), p.dir)
	p.mu.Lock()
	p.sessions[s.id] = s
	p.mu.Unlock()
	return s
}

func (p *Sessions) Get(id string) (*Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrSessionNotFound
}

// Close logs the session out and forgets it. Unknown ids are ignored.
func (p *Sessions) Close(id string) {
	p.mu.Lock()
	s, ok := p.sessions[id]
	delete(p.sessions, id)
	p.mu.Unlock()
	if ok {
		s.Logout()
	}
}

func (p *Sessions) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
