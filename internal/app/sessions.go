package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"booking-widget/internal/availability"
	"booking-widget/internal/booking"
	"booking-widget/internal/calendly"
)

// Session is one widget instance: the event type it was opened for, its
// calendar selection state and its booking form. Handlers serialise all
// event handling per session through mu, which preserves the
// single-writer model the widget state assumes.
type Session struct {
	ID        string
	EventType *calendly.EventType
	Selector  *availability.Selector
	Form      *booking.Form

	mu       sync.Mutex
	lastSeen time.Time
}

// Lock serialises one widget event against the session.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionStore keeps live widget sessions in memory. Sessions are
// ephemeral: nothing here outlives the process, all durable state lives
// in the upstream scheduling service.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	st := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go st.sweep()
	return st
}

func (st *SessionStore) Create(eventType *calendly.EventType, selector *availability.Selector, form *booking.Form) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		EventType: eventType,
		Selector:  selector,
		Form:      form,
		lastSeen:  time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns a live session and refreshes its idle timer.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
	return s, true
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) Close() { close(st.stop) }

func (st *SessionStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-st.ttl)
			st.mu.Lock()
			for id, s := range st.sessions {
				s.mu.Lock()
				idle := s.lastSeen.Before(cutoff)
				s.mu.Unlock()
				if idle {
					delete(st.sessions, id)
				}
			}
			st.mu.Unlock()
		}
	}
}
