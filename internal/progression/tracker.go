package progression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
)

// ErrInvalidBatch is returned for a batch with no level or no responses.
var ErrInvalidBatch = fmt.Errorf("%w: batch needs a level and at least one response", apperr.ErrValidation)

// Outcome is the result of one tracked batch.
type Outcome struct {
	Status   Status
	Progress LearnerProgress
	// DisplayCount is the set position to show the learner.
	DisplayCount int
}

// Tracker applies batches to stored progress, one learner at a time.
type Tracker struct {
	store  Store
	locker Locker
}

// NewTracker creates a tracker. A nil locker uses an in-process KeyedMutex.
func NewTracker(store Store, locker Locker) *Tracker {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	return &Tracker{store: store, locker: locker}
}

// Submit loads the learner's record (or starts a new one), applies b and
// saves the result. Nothing is written if any step before Save fails.
func (t *Tracker) Submit(ctx context.Context, learnerID, track string, b Batch) (Outcome, error) {
	if b.Level < 1 || b.Answered < 1 {
		return Outcome{}, ErrInvalidBatch
	}

	unlock, err := t.locker.Lock(ctx, "progress:"+track+":"+learnerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("locking learner progress: %w", err)
	}
	defer unlock()

	p, found, err := t.store.Load(ctx, learnerID, track)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		p = NewProgress(learnerID, track)
	}

	next, status := Apply(p, b)
	if err := t.store.Save(ctx, &next); err != nil {
		return Outcome{}, err
	}
	transitions.WithLabelValues(string(status)).Inc()

	if status != StatusOngoing {
		slog.Info("level transition",
			"learner_id", learnerID,
			"track", track,
			"status", status,
			"from_level", b.Level,
			"to_level", next.Levels.Current,
			"repeats", next.Repeats,
		)
	}

	return Outcome{Status: status, Progress: next, DisplayCount: next.DisplayCount()}, nil
}

// Get returns the learner's record, or a fresh one if none has been saved.
func (t *Tracker) Get(ctx context.Context, learnerID, track string) (LearnerProgress, error) {
	p, found, err := t.store.Load(ctx, learnerID, track)
	if err != nil {
		return LearnerProgress{}, err
	}
	if !found {
		return NewProgress(learnerID, track), nil
	}
	return p, nil
}
