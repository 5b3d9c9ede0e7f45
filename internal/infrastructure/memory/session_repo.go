package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
)

// SessionRepository keeps sessions in process memory. Used when no
// DATABASE_URL is configured; sessions do not survive a restart.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNoSession
	}
	return cloneSession(s), nil
}

func (r *SessionRepository) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = *cloneSession(*s)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if s.Expired(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *SessionRepository) Ping(_ context.Context) error { return nil }

// cloneSession copies the pointer fields so callers never share state with
// the map.
func cloneSession(s domain.Session) *domain.Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Card != nil {
		c := *s.Card
		out.Card = &c
	}
	return &out
}
