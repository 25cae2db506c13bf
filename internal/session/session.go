// Package session keeps the in-memory routing state the pipeline needs
// between turns: denial counters, the last grounded query and answer, the
// running query history and the anchor contexts for "câu N" references.
//
// State is process-local and intentionally ephemeral; durable conversation
// history lives in Postgres. There is no eviction: sessions are small and the
// deployment restarts often enough that growth has not been a problem.
package session

import "sync"

// Phase describes where the conversation currently is.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseAnswering    Phase = "answering"
	PhaseHandlingDeny Phase = "handling_deny"
)

// State is the mutable per-session routing state. State carries no lock: a
// client sends its turns sequentially, so at most one request per session is
// assumed in flight. Concurrent turns on one session id would race on
// DenyCount and QueryHistory.
type State struct {
	ID string

	Phase        Phase
	DenyCount    int
	Escalated    bool
	LastQuery    string
	LastAnswer   string
	QueryHistory []string
	Anchors      []string
}

// RecordQuery appends the grounded query to the history and anchor list.
func (s *State) RecordQuery(query string) {
	s.QueryHistory = append(s.QueryHistory, query)
	s.Anchors = append(s.Anchors, query)
}

// Anchor returns the 1-based Nth anchor context, or "" when out of range.
func (s *State) Anchor(n int) string {
	if n < 1 || n > len(s.Anchors) {
		return ""
	}
	return s.Anchors[n-1]
}

// ResetDeny clears the denial machine after a non-denial turn or topic change.
func (s *State) ResetDeny() {
	s.DenyCount = 0
	s.Escalated = false
	if s.Phase == PhaseHandlingDeny {
		s.Phase = PhaseIdle
	}
}

// Store holds session states keyed by session id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*State)}
}

// Get returns the state for id, creating it on first use.
func (st *Store) Get(id string) *State {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = &State{ID: id, Phase: PhaseIdle}
		st.sessions[id] = s
	}
	return s
}

// Delete removes the state for id.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
