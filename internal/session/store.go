// Package session keeps the UI sessions of web console visitors in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/ministranci-console/internal/console"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Store is a thread-safe map of sessions keyed by ID.
// Sessions idle for longer than the TTL are dropped by Sweep.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*console.Session
	ttl      time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewStore creates an empty store. A zero ttl keeps sessions forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*console.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session with a random ID.
func (s *Store) Create() *console.Session {
	sess := console.NewSession(uuid.NewString())
	sess.Touch(s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session and marks it as used.
func (s *Store) Get(id string) (*console.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	if s.expired(sess) {
		s.Delete(id)
		return nil, ErrSessionNotFound
	}
	sess.Touch(s.now())
	return sess, nil
}

// GetOrCreate returns the session for id, or a fresh one when id is unknown.
func (s *Store) GetOrCreate(id string) (sess *console.Session, created bool) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false
		}
	}
	return s.Create(), true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval in the background until stop is closed.
func (s *Store) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

// Wait waits for the background sweeper to exit.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) expired(sess *console.Session) bool {
	return s.ttl > 0 && sess.IdleSince(s.now()) > s.ttl
}
