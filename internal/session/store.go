// Package session holds per-visitor state in memory: profile data collected
// by the frontend, the latest recommendation results, and an
// active-aggregation flag so one session never runs two aggregations at once.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Profile is the shopper information captured by the frontend.
type Profile struct {
	Age                string   `json:"age"`
	Gender             string   `json:"gender"`
	FavoriteCategories []string `json:"favorite_categories"`
	Interests          string   `json:"interests"`
	ShoppingMethod     string   `json:"preferred_shopping_method"`
	Location           string   `json:"user_location"`
	BudgetRange        string   `json:"budget_range"`
}

// Session is one visitor's state.
type Session struct {
	ID        string
	Profile   Profile
	Results   any
	HasResult bool
	CreatedAt time.Time
}

// Stats summarizes the store for the worker-stats endpoint.
type Stats struct {
	TotalSessions      int      `json:"total_sessions"`
	ActiveRequests     int      `json:"active_requests"`
	ActiveSessionIDs   []string `json:"active_request_sessions"`
	SessionsWithResult int      `json:"sessions_with_results"`
}

// Store is a mutex-guarded in-memory session map.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	running  map[string]bool
}

func NewStore() *Store {
	return &Store{
		sessions: map[string]*Session{},
		running:  map[string]bool{},
	}
}

// Init creates or resets a session. A blank id gets a generated one.
func (s *Store) Init(id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &Session{ID: id, CreatedAt: time.Now()}
	return id
}

// SetProfile stores profile data, creating the session when the id is
// unknown or blank so a lost init round-trip does not strand the visitor.
func (s *Store) SetProfile(id string, profile Profile) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: time.Now()}
		s.sessions[id] = sess
	}
	sess.Profile = profile
	return id
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// Delete removes the session and any running marker.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.running, id)
	return nil
}

// MarkRunning flags the session as having an aggregation in flight. It
// returns false when one is already running, which callers surface as an
// already-processing response rather than starting a duplicate run.
func (s *Store) MarkRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[id] {
		return false
	}
	s.running[id] = true
	return true
}

// ClearRunning removes the in-flight flag. It reports whether the flag was
// set, which the cancel endpoint uses to distinguish a real cancellation
// from a no-op.
func (s *Store) ClearRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running[id] {
		return false
	}
	delete(s.running, id)
	return true
}

// IsRunning reports whether the session has an aggregation in flight.
func (s *Store) IsRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[id]
}

// SaveResults attaches the latest recommendation payload to the session.
func (s *Store) SaveResults(id string, results any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Results = results
	sess.HasResult = true
	return nil
}

// Stats reports store counters for the operational endpoint.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		TotalSessions:  len(s.sessions),
		ActiveRequests: len(s.running),
	}
	for id := range s.running {
		stats.ActiveSessionIDs = append(stats.ActiveSessionIDs, id)
	}
	for _, sess := range s.sessions {
		if sess.HasResult {
			stats.SessionsWithResult++
		}
	}
	return stats
}
