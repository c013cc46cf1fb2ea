package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cbmflow/internal/dataprocessing"
)

// Session is one uploaded dataset. The dataset is fully built before the
// session is stored and is never mutated afterwards.
type Session struct {
	ID         string
	Filename   string
	Dataset    *dataprocessing.ParsedDataset
	CreatedAt  time.Time
	LastAccess time.Time
}

// SessionStore is an in-memory map of sessions. Sessions idle for longer
// than the TTL are dropped; when the store is full the least recently used
// session makes room for a new one.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionStore creates a session store. A zero ttl or maxSessions
// disables the corresponding limit.
func NewSessionStore(ttl time.Duration, maxSessions int, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "session_store")),
	}
}

// Put stores ds under a new session ID. It returns the stored session and
// the number of sessions evicted to make room.
func (s *SessionStore) Put(filename string, ds *dataprocessing.ParsedDataset) (Session, int, error) {
	if ds == nil {
		return Session{}, 0, fmt.Errorf("session store: nil dataset")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := s.evictExpiredLocked(now)
	for s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
		evicted++
	}

	sess := &Session{
		ID:         uuid.New().String(),
		Filename:   filename,
		Dataset:    ds,
		CreatedAt:  now,
		LastAccess: now,
	}
	s.sessions[sess.ID] = sess
	return *sess, evicted, nil
}

// Get returns the session and refreshes its idle timer. An expired session
// is removed and reported as ErrSessionExpired.
func (s *SessionStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return Session{}, fmt.Errorf("%w: %s", ErrSessionExpired, id)
	}
	sess.LastAccess = now
	return *sess, nil
}

// Delete removes a session and reports whether it existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictExpired drops idle sessions and returns how many were removed.
func (s *SessionStore) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictExpiredLocked(s.now())
}

// Run sweeps expired sessions every interval until ctx is done. onEvict,
// when set, receives the count of each non-empty sweep.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration, onEvict func(int)) error {
	if s.ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.EvictExpired(); n > 0 {
				s.logger.Info("Expired sessions evicted", slog.Int("count", n))
				if onEvict != nil {
					onEvict(n)
				}
			}
		}
	}
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastAccess) > s.ttl
}

func (s *SessionStore) evictExpiredLocked(now time.Time) int {
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.LastAccess.Before(oldest.LastAccess) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
		s.logger.Debug("Session evicted to make room",
			slog.String("session_id", oldest.ID),
			slog.String("filename", oldest.Filename))
	}
}
