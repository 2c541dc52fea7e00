package seenset

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for local development and tests.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]map[string]struct{})}
}

// AreKnown reports membership, order-preserving.
func (s *MemoryStore) AreKnown(_ context.Context, category string, ids []string) ([]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := make([]bool, len(ids))
	set := s.sets[category]
	for i, id := range ids {
		_, known[i] = set[id]
	}
	return known, nil
}

// MarkKnown adds ids to the category's set.
func (s *MemoryStore) MarkKnown(_ context.Context, category string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[category]
	if !ok {
		set = make(map[string]struct{})
		s.sets[category] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return nil
}

// Unmark removes ids from the category's set.
func (s *MemoryStore) Unmark(_ context.Context, category string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[category]
	for _, id := range ids {
		delete(set, id)
	}
	return nil
}
