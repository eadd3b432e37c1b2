package storage

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/wildmint-labs/wildmint/internal/pipeline"
)

// SessionStore holds the live pipeline sessions of the server
type SessionStore struct {
	sessions map[string]*pipeline.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*pipeline.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*pipeline.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(session *pipeline.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

// List returns the sessions, oldest first
func (s *SessionStore) List() []*pipeline.Session {
	s.mu.RLock()
	result := make([]*pipeline.Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Snapshot(), result[j].Snapshot()
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return result
}

// Delete removes the session and releases its camera. It reports whether the
// session existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !exists {
		return false
	}
	if err := session.Close(); err != nil {
		slog.Warn("Failed to close session", "session_id", sessionID, "error", err)
	}
	return true
}

// Close closes every session
func (s *SessionStore) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*pipeline.Session)
	s.mu.Unlock()

	for id, session := range sessions {
		if err := session.Close(); err != nil {
			slog.Warn("Failed to close session", "session_id", id, "error", err)
		}
	}
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
