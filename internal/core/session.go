package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// DefaultMaxSessions bounds the number of sessions held in memory.
const DefaultMaxSessions = 1000

// session is the per-visitor state. Nothing in it outlives the process.
type session struct {
	id        string
	createdAt time.Time
	conv      *analysis.Conversation

	mu       sync.Mutex
	dataset  *dataset.Dataset
	seq      uint64 // ingest sequence number of dataset
	lastSeen time.Time
}

// install replaces the dataset unless a newer ingest already won.
func (s *session) install(ds *dataset.Dataset, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.seq {
		return false
	}
	s.dataset, s.seq = ds, seq
	return true
}

func (s *session) current() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore holds sessions keyed by ID. It is safe for concurrent use.
// When full, creating a session evicts the least recently seen one.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*session
	max       int
	responder analysis.Responder
	now       func() time.Time
}

// NewSessionStore creates a store holding at most maxSessions sessions.
func NewSessionStore(maxSessions int, responder analysis.Responder) *SessionStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionStore{
		sessions:  make(map[string]*session),
		max:       maxSessions,
		responder: responder,
		now:       time.Now,
	}
}

// get returns an existing session and marks it as seen.
func (st *SessionStore) get(id string) (*session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// getOrCreate returns the session for id, creating it if needed.
func (st *SessionStore) getOrCreate(id string) *session {
	if s, ok := st.get(id); ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}
	if len(st.sessions) >= st.max {
		st.evictOldestLocked()
	}

	now := st.now()
	s := &session{
		id:        id,
		createdAt: now,
		lastSeen:  now,
		conv:      analysis.NewConversation(st.responder),
	}
	st.sessions[id] = s
	return s
}

func (st *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, s := range st.sessions {
		if seen := s.idleSince(); oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
		slog.Warn("session store full, evicted least recent session",
			"session_id", oldestID,
			"max_sessions", st.max,
		)
	}
}

// Delete removes a session. Returns false if it did not exist.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Sweep removes sessions idle for longer than ttl and returns how many
// were removed.
func (st *SessionStore) Sweep(ttl time.Duration) int {
	cutoff := st.now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
