// Package store applies call-queue transitions atomically.
package store

import (
	"context"
	"sync"
	"time"

	"screening/internal/callqueue/models"
)

// InMemoryStore serializes transitions with a mutex. Each transition runs on
// a clone so a failed transition leaves the stored state untouched.
type InMemoryStore struct {
	mu    sync.Mutex
	state *models.State
	now   func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{state: models.NewState(), now: time.Now}
}

func (s *InMemoryStore) Update(_ context.Context, fn models.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	if err := fn(next, s.now()); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *InMemoryStore) Load(_ context.Context) (*models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}
