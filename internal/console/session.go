package console

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/celerix-dev/ministranci-console/pkg/schema"
)

// Session is the UI state of one visitor that outlives a single page render:
// the modal stack, the selected conversation, the users table filter and the
// alerts that have not been shown yet.
type Session struct {
	ID string

	mu sync.Mutex
	// lastSeen is unix nanoseconds; read without holding mu.
	lastSeen atomic.Int64

	Modals   *ModalManager
	Password *PasswordModal
	Details  *DetailsModal
	Notes    *NotesModal

	Conversation *schema.Conversation
	Filter       UserFilter
	Sort         string
	SelectAll    bool

	flash []string
}

func NewSession(id string) *Session {
	s := &Session{
		ID:       id,
		Modals:   &ModalManager{},
		Password: &PasswordModal{},
		Details:  &DetailsModal{},
		Notes:    &NotesModal{},
	}
	s.Touch(time.Now())
	return s
}

// Lock serialises work on the session across concurrent requests.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records activity at t.
func (s *Session) Touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

// IdleSince reports how long the session has been unused at t.
func (s *Session) IdleSince(t time.Time) time.Duration {
	return t.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Push queues an alert for the next render.
func (s *Session) Push(message string) {
	s.flash = append(s.flash, message)
}

// Drain returns and forgets the queued alerts.
func (s *Session) Drain() []string {
	out := s.flash
	s.flash = nil
	return out
}
