package progression

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrVersionConflict is returned by Save when the record changed since it was loaded.
var ErrVersionConflict = errors.New("learner progress was modified concurrently")

// Store persists progress records.
type Store interface {
	// Load returns the record for (learnerID, track), or false if none exists.
	Load(ctx context.Context, learnerID, track string) (LearnerProgress, bool, error)
	// Save writes p if the stored version still equals p.Version, then bumps
	// p.Version. A new record is saved with Version 0.
	Save(ctx context.Context, p *LearnerProgress) error
}

type progressKey struct{ learnerID, track string }

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	records map[progressKey]LearnerProgress
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[progressKey]LearnerProgress)}
}

func (s *MemoryStore) Load(_ context.Context, learnerID, track string) (LearnerProgress, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.records[progressKey{learnerID, track}]
	return p, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, p *LearnerProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := progressKey{p.LearnerID, p.Track}
	current, ok := s.records[k]
	if (ok && current.Version != p.Version) || (!ok && p.Version != 0) {
		return ErrVersionConflict
	}

	p.Version++
	p.UpdatedAt = time.Now()
	s.records[k] = *p
	return nil
}
