package pickService

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long an idle builder session survives.
const SessionTTL = 30 * time.Minute

var ErrSessionExpired = errors.New("pick session expired")

type Session struct {
	ID      string
	OwnerID string
	// SportTag is the sport the game menu lists; it survives Commit.
	SportTag string
	Builder  *Builder
	touched  time.Time
}

// Sessions holds in-progress builders keyed by session id.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration, now func() time.Time) *Sessions {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{items: make(map[string]*Session), ttl: ttl, now: now}
}

func (s *Sessions) Start(ownerID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Builder: NewBuilder(),
		touched: s.now(),
	}
	s.items[session.ID] = session
	return session
}

// With runs fn against a live session while holding the lock. Only the owner
// may touch a session.
func (s *Sessions) With(id, ownerID string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.items[id]
	if !ok {
		return ErrSessionExpired
	}
	if s.now().Sub(session.touched) > s.ttl {
		delete(s.items, id)
		return ErrSessionExpired
	}
	if session.OwnerID != ownerID {
		return ErrNotOwner
	}

	session.touched = s.now()
	return fn(session)
}

func (s *Sessions) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Cleanup drops idle sessions and reports how many were removed.
func (s *Sessions) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	cutoff := s.now().Add(-s.ttl)
	for id, session := range s.items {
		if session.touched.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
