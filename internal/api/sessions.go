package api

import (
	"context"
	"sync"
	"time"

	"business-directory/internal/registration"

	"github.com/google/uuid"
)

const DefaultSessionTTL = 30 * time.Minute

type sessionEntry struct {
	session  *registration.Session
	lastSeen time.Time
}

// sessionRegistry holds live registration sessions in memory. A session
// ends on a successful submit, a cancel, or after ttl without a request.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionRegistry{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *sessionRegistry) add(s *registration.Session) string {
	id := uuid.New().String()
	r.mu.Lock()
	r.sessions[id] = &sessionEntry{session: s, lastSeen: r.now()}
	r.mu.Unlock()
	return id
}

// get returns a live session and refreshes its idle timer.
func (r *sessionRegistry) get(id string) (*registration.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.sessions, id)
		e.session.Cancel()
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// expired never reports a session with a submit in flight.
func (r *sessionRegistry) expired(e *sessionEntry, now time.Time) bool {
	return now.Sub(e.lastSeen) > r.ttl && !e.session.State().Submitting
}

// sweep cancels and drops idle sessions and returns how many it removed.
func (r *sessionRegistry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
			e.session.Cancel()
			removed++
		}
	}
	return removed
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RunSessionSweeper drops idle registration sessions until ctx is done.
func (s *Server) RunSessionSweeper(ctx context.Context) {
	interval := s.sessions.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(); n > 0 {
				s.logger.Info("expired registration sessions", map[string]interface{}{
					"removed": n,
					"live":    s.sessions.len(),
				})
			}
		}
	}
}
