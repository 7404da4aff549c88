package memory

import (
	"context"
	"sync"
	"time"

	"quiz-outcome-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Entries expire ttl after their last save; a zero ttl keeps them forever.
// Expired entries are swept at most once per ttl on Save, and by Janitor.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu        sync.Mutex
	sessions  map[string]sessionEntry
	nextSweep time.Time
}

type sessionEntry struct {
	session   domain.Session
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]sessionEntry),
	}
}

func (s *SessionStore) Load(_ context.Context, id string) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, false, nil
	}
	if s.expired(entry, s.clock()) {
		delete(s.sessions, id)
		return domain.Session{}, false, nil
	}
	return entry.session, true, nil
}

func (s *SessionStore) Save(_ context.Context, id string, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if s.ttl > 0 && !now.Before(s.nextSweep) {
		s.sweepLocked(now)
		s.nextSweep = now.Add(s.ttl)
	}
	s.sessions[id] = sessionEntry{session: session, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.clock())
}

// Janitor sweeps expired entries every interval until ctx is done.
func (s *SessionStore) Janitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(entry sessionEntry, now time.Time) bool {
	return s.ttl > 0 && !entry.expiresAt.After(now)
}
