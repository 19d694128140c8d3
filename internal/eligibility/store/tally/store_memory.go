package tally

import (
	"context"
	"sync"

	"screening/internal/eligibility"
	"screening/internal/platform/device"
)

// InMemoryStore keeps tallies in process. Counts reset on restart; use the
// Redis or Postgres store when several instances serve traffic.
type InMemoryStore struct {
	mu     sync.Mutex
	counts map[key]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counts: make(map[key]int64)}
}

func (s *InMemoryStore) Increment(_ context.Context, outcome eligibility.Outcome, class device.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key{outcome: outcome, device: class}]++
	return nil
}

func (s *InMemoryStore) Snapshot(_ context.Context) ([]eligibility.OutcomeCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[key]int64, len(s.counts))
	for k, v := range s.counts {
		copied[k] = v
	}
	return sorted(copied), nil
}
