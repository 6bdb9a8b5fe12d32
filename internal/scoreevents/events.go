// Package scoreevents delivers score events to leaderboard consumers.
package scoreevents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Event is one scored submission.
type Event struct {
	LearnerID string    `json:"learner_id"`
	Points    int       `json:"points"`
	TimeTaken float64   `json:"time_taken"`
	Component string    `json:"component,omitempty"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (e Event) validate() error {
	if e.LearnerID == "" {
		return fmt.Errorf("learner_id is required")
	}
	return nil
}

// Sink receives score events.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// NopSink ignores all events.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) error {
	return nil
}

// MemorySink stores events in memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{events: []Event{}}
}

func (s *MemorySink) Emit(_ context.Context, e Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

// Fanout emits to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	var errs []error
	for _, s := range f {
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
