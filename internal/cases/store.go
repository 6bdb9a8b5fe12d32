package cases

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/exposure"
)

// MemoryStore is an in-memory implementation of Store and Writer.
type MemoryStore struct {
	cases    map[string]curriculum.Case
	order    []string
	exposure map[string]exposure.Set
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory case store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:    make(map[string]curriculum.Case),
		exposure: make(map[string]exposure.Set),
	}
}

func (s *MemoryStore) PutCases(_ context.Context, cases []curriculum.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case id is required")
		}
		if _, ok := s.cases[c.ID]; !ok {
			s.order = append(s.order, c.ID)
		}
		s.cases[c.ID] = c
	}
	return nil
}

func (s *MemoryStore) AddQuestionCount(_ context.Context, caseID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[caseID]
	if !ok {
		return fmt.Errorf("case not found: %s", caseID)
	}
	c.TotalQuestion += delta
	s.cases[caseID] = c
	return nil
}

func (s *MemoryStore) FindUnseenCase(_ context.Context, level int, learnerID string) (curriculum.Case, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick(level, learnerID)
}

func (s *MemoryStore) FindAnyCase(_ context.Context, level int) (curriculum.Case, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick(level, "")
}

func (s *MemoryStore) MarkCaseExposed(_ context.Context, caseID, learnerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cases[caseID]; !ok {
		return fmt.Errorf("case not found: %s", caseID)
	}
	set, ok := s.exposure[caseID]
	if !ok {
		set = exposure.NewSet()
		s.exposure[caseID] = set
	}
	set.Add(learnerID)
	return nil
}

// Seen reports whether learnerID has been shown caseID.
func (s *MemoryStore) Seen(caseID, learnerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exposure[caseID].Has(learnerID)
}

func (s *MemoryStore) pick(level int, unseenBy string) (curriculum.Case, bool, error) {
	candidates := lo.Filter(s.order, func(id string, _ int) bool {
		c := s.cases[id]
		if c.Level != level || c.TotalQuestion <= 0 {
			return false
		}
		return unseenBy == "" || !s.exposure[id].Has(unseenBy)
	})
	if len(candidates) == 0 {
		return curriculum.Case{}, false, nil
	}
	return s.cases[lo.Sample(candidates)], true, nil
}
