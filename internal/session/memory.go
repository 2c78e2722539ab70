// internal/session/memory.go
package session

import (
	"context"
	"sync"
	"time"

	"kiosk-dialog/internal/dialog"
	"kiosk-dialog/internal/models"
)

// MemoryStore keeps sessions in process. Expired sessions are dropped lazily on Load.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (dialog.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return dialog.Memory{}, nil
	}
	if sess.IsExpired(s.now(), s.ttl) {
		delete(s.sessions, id)
		return dialog.Memory{}, nil
	}
	return dialog.Memory{Last: sess.LastTurn}, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, mem dialog.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &models.Session{ID: id}
		s.sessions[id] = sess
	}
	sess.LastTurn = mem.Last
	sess.UpdateActivity(s.now())
	return nil
}

// Session returns a copy of the stored session, for diagnostics.
func (s *MemoryStore) Session(id string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	return *sess, true
}
