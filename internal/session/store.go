package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/google/uuid"
)

// Store keeps the open sessions in memory.
type Store struct {
	tokenTTL time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store issuing IDOR tokens valid for tokenTTL.
func NewStore(tokenTTL time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		tokenTTL: tokenTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open registers sess under a fresh ID and returns it.
func (s *Store) Open(sess *Session) *Session {
	sess.ID = uuid.NewString()
	sess.tokenTTL = s.tokenTTL
	sess.now = s.now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with the given ID.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

// Close forgets the session. Closing an unknown session is a no-op.
func (s *Store) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
