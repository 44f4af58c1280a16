package service

import (
	"fmt"
	"sync"
	"time"

	"mosdacbot/internal/domain"

	"github.com/google/uuid"
)

type session struct {
	selection domain.Selection
	lastSeen  time.Time
}

// SessionStore keeps one Selection per browsing session
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create opens a session in the Unselected state and returns its id
func (s *SessionStore) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &session{lastSeen: s.now()}
	return id
}

// Get returns the session's current selection
func (s *SessionStore) Get(id string) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Selection{}, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	sess.lastSeen = s.now()
	return sess.selection, nil
}

// Update applies fn to the session's selection under the store lock.
// If fn returns an error the selection is left unchanged.
func (s *SessionStore) Update(id string, fn func(domain.Selection) (domain.Selection, error)) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Selection{}, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	next, err := fn(sess.selection)
	if err != nil {
		return sess.selection, err
	}
	sess.selection = next
	sess.lastSeen = s.now()
	return next, nil
}

// Delete closes a session
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of open sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ClearMissing resets every selection whose node no longer satisfies exists
// and returns the affected session ids.
func (s *SessionStore) ClearMissing(exists func(nodeID string) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleared []string
	for id, sess := range s.sessions {
		nodeID, ok := sess.selection.Selected()
		if ok && !exists(nodeID) {
			sess.selection = sess.selection.Clear()
			cleared = append(cleared, id)
		}
	}
	return cleared
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were removed
func (s *SessionStore) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
