package progression_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
	"github.com/p-n-ai/pai-quiz/internal/progression"
)

func TestTracker_FirstSubmissionStartsFromDefault(t *testing.T) {
	store := progression.NewMemoryStore()
	tr := progression.NewTracker(store, nil)

	out, err := tr.Submit(context.Background(), "alice", "cases", progression.Batch{Level: 1, Percentage: 8, Answered: 3, Points: 9})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.Status != progression.StatusOngoing {
		t.Errorf("Status = %s, want ONGOING", out.Status)
	}
	if out.DisplayCount != 1 {
		t.Errorf("DisplayCount = %d, want 1", out.DisplayCount)
	}
	if out.Progress.Repeats != progression.NeverDemoteSentinel {
		t.Errorf("Repeats = %d, want sentinel", out.Progress.Repeats)
	}

	saved, found, _ := store.Load(context.Background(), "alice", "cases")
	if !found || saved.Levels.CurrentPoints != 1 || saved.TotalPoints != 9 {
		t.Errorf("saved = %+v, want one qualifying batch and 9 points", saved)
	}
}

func TestTracker_DemotionScenario(t *testing.T) {
	store := progression.NewMemoryStore()
	ctx := context.Background()

	start := progression.NewProgress("alice", "cases")
	start.Levels = progression.Levels{Current: 2, Previous: 1, LastTopLevel: 2, CurrentCount: 9, CurrentPoints: 6}
	start.Repeats = 1
	if err := store.Save(ctx, &start); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := progression.NewTracker(store, nil).Submit(ctx, "alice", "cases", progression.Batch{Level: 2, Percentage: 5, Answered: 10})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.Status != progression.StatusDemoted {
		t.Fatalf("Status = %s, want DEMOTED", out.Status)
	}
	if out.DisplayCount != 10 {
		t.Errorf("DisplayCount = %d, want 10", out.DisplayCount)
	}
	lv := out.Progress.Levels
	if lv.Current != 1 || lv.Previous != 2 || lv.CurrentCount != 0 || lv.CurrentPoints != 0 || out.Progress.Repeats != 2 {
		t.Errorf("progress = %+v, want level 1, repeats 2, counters reset", out.Progress)
	}
}

func TestTracker_InvalidBatchDoesNotWrite(t *testing.T) {
	store := progression.NewMemoryStore()
	tr := progression.NewTracker(store, nil)

	_, err := tr.Submit(context.Background(), "alice", "cases", progression.Batch{Level: 0, Answered: 1})
	if !errors.Is(err, progression.ErrInvalidBatch) || !apperr.IsValidation(err) {
		t.Fatalf("Submit() error = %v, want ErrInvalidBatch", err)
	}
	if _, found, _ := store.Load(context.Background(), "alice", "cases"); found {
		t.Error("invalid batch must not create a record")
	}
}

func TestTracker_ConcurrentSubmissionsAreSerialized(t *testing.T) {
	store := progression.NewMemoryStore()
	tr := progression.NewTracker(store, nil)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Submit(ctx, "alice", "cases", progression.Batch{Level: 1, Answered: 1, Points: 1}); err != nil {
				t.Errorf("Submit() error = %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := tr.Get(ctx, "alice", "cases")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.TotalAnswered != n || p.Version != n {
		t.Errorf("TotalAnswered = %d, Version = %d; want %d (no lost updates)", p.TotalAnswered, p.Version, n)
	}
}

func TestTracker_GetDefault(t *testing.T) {
	tr := progression.NewTracker(progression.NewMemoryStore(), nil)
	p, err := tr.Get(context.Background(), "bob", "cases")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Levels.Current != 1 || p.Version != 0 {
		t.Errorf("Get() = %+v, want default record", p)
	}
}
