// Package session keeps the per-user dialog position. The store is purely
// in-memory: a process restart drops every in-flight dialog, which is an
// accepted degradation. Persisted entities remain the source of truth.
package session

import (
	"sync"

	"github.com/garajhub/garajhub-bot/dialog"
)

// Store maps a Telegram user id to that user's active dialog state. Safe
// for concurrent use; contention is per call, not per user, but a single
// user only ever has one conversation at a time.
type Store struct {
	mu     sync.RWMutex
	states map[int64]dialog.State
}

func NewStore() *Store {
	return &Store{states: make(map[int64]dialog.State)}
}

// Set starts or replaces the user's dialog. Overwriting an abandoned
// dialog is the only way stale state ever goes away.
func (s *Store) Set(userID int64, state dialog.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
}

// Get returns the user's dialog state, if any.
func (s *Store) Get(userID int64) (dialog.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[userID]
	return state, ok
}

// Clear ends the user's dialog.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
