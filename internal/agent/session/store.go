package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Contradiction records a conflicting profile update: a field that already
// held a different non-empty value when a merge arrived.
type Contradiction struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Store holds one session's profile facts and its append-only contradiction
// log. Profile state is deliberately session-scoped: one caller's facts must
// never leak into another caller's turn.
type Store struct {
	mu             sync.Mutex
	profile        map[string]string
	contradictions []Contradiction
}

func NewStore() *Store {
	return &Store{profile: make(map[string]string)}
}

// MergeDelta applies a profile delta with last-write-wins semantics per
// field. Empty values are ignored and never overwrite. A differing non-empty
// value (string-compared after trimming) records exactly one contradiction
// before the overwrite. The recorded contradictions for this call are
// returned in field-application order.
func (s *Store) MergeDelta(delta map[string]string) []Contradiction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recorded []Contradiction
	for field, value := range delta {
		if strings.TrimSpace(value) == "" {
			continue
		}
		old := s.profile[field]
		if strings.TrimSpace(old) != "" && strings.TrimSpace(old) != strings.TrimSpace(value) {
			recorded = append(recorded, Contradiction{Field: field, Old: old, New: value})
		}
		s.profile[field] = value
	}
	s.contradictions = append(s.contradictions, recorded...)
	return recorded
}

// Profile returns a read-only snapshot of the current profile.
func (s *Store) Profile() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.profile))
	for k, v := range s.profile {
		out[k] = v
	}
	return out
}

// Contradictions returns the most recent limit contradictions, oldest first.
// limit <= 0 returns the full log.
func (s *Store) Contradictions(limit int) []Contradiction {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := 0
	if limit > 0 && len(s.contradictions) > limit {
		from = len(s.contradictions) - limit
	}
	out := make([]Contradiction, len(s.contradictions)-from)
	copy(out, s.contradictions[from:])
	return out
}

// Session couples a session id with its profile store and a turn mutex. The
// turn mutex serializes turns within a session so no two turns concurrently
// mutate the same profile and history.
type Session struct {
	ID      string
	Profile *Store

	turnMu sync.Mutex
}

// LockTurn blocks until this session's previous turn has finished.
func (s *Session) LockTurn() func() {
	s.turnMu.Lock()
	return s.turnMu.Unlock
}

// Manager hands out sessions by id, creating them on first use. Different
// sessions proceed independently; the manager lock covers only the lookup.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Acquire returns the session for id, minting a fresh id when none is given.
func (m *Manager) Acquire(id string) *Session {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id, Profile: NewStore()}
	m.sessions[id] = s
	return s
}
