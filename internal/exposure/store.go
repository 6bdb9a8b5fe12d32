package exposure

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

// MemoryStore is an in-memory implementation of Store and Claimer.
type MemoryStore struct {
	items    []curriculum.Item
	index    map[string]int
	exposure map[string]Set
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory item pool.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index:    make(map[string]int),
		exposure: make(map[string]Set),
	}
}

// PutItems inserts or replaces items by ID.
func (s *MemoryStore) PutItems(_ context.Context, items []curriculum.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if i, ok := s.index[item.ID]; ok {
			s.items[i] = item
			continue
		}
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return nil
}

func (s *MemoryStore) ExistingItemIDs(_ context.Context, ids []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(ids, func(id string, _ int) bool {
		_, ok := s.index[id]
		return ok
	}), nil
}

func (s *MemoryStore) SampleRandom(_ context.Context, f Filter, n int) ([]curriculum.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sample(f, n), nil
}

func (s *MemoryStore) MarkExposed(_ context.Context, itemIDs []string, learnerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark(itemIDs, learnerID)
	return nil
}

func (s *MemoryStore) ResetExposure(_ context.Context, f Filter, learnerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.UnseenBy = ""
	cleared := 0
	for _, item := range s.items {
		if !f.Matches(item) {
			continue
		}
		if set, ok := s.exposure[item.ID]; ok && set.Remove(learnerID) {
			cleared++
		}
	}
	return cleared, nil
}

func (s *MemoryStore) CountMatching(_ context.Context, f Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(f)), nil
}

// ClaimUnseen samples items learnerID has not seen and marks them under one lock.
func (s *MemoryStore) ClaimUnseen(_ context.Context, f Filter, learnerID string, n int) ([]curriculum.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.sample(f.Unseen(learnerID), n)
	s.mark(lo.Map(items, func(it curriculum.Item, _ int) string { return it.ID }), learnerID)
	return items, nil
}

// Seen reports whether learnerID is in the exposure set of itemID.
func (s *MemoryStore) Seen(itemID, learnerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exposure[itemID].Has(learnerID)
}

func (s *MemoryStore) matching(f Filter) []curriculum.Item {
	return lo.Filter(s.items, func(item curriculum.Item, _ int) bool {
		if !f.Matches(item) {
			return false
		}
		return f.UnseenBy == "" || !s.exposure[item.ID].Has(f.UnseenBy)
	})
}

func (s *MemoryStore) sample(f Filter, n int) []curriculum.Item {
	if n <= 0 {
		return nil
	}
	return lo.Samples(s.matching(f), n)
}

func (s *MemoryStore) mark(itemIDs []string, learnerID string) {
	for _, id := range itemIDs {
		if _, ok := s.index[id]; !ok {
			continue
		}
		set, ok := s.exposure[id]
		if !ok {
			set = NewSet()
			s.exposure[id] = set
		}
		set.Add(learnerID)
	}
}
