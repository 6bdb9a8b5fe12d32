// Package sampling assembles item batches that avoid repeats and picks cases
// for learners.
package sampling

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-quiz/internal/cases"
	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/exposure"
	"github.com/p-n-ai/pai-quiz/internal/quota"
)

const (
	modeFlat         = "flat"
	modeHierarchical = "hierarchical"
)

// Request describes one batch.
type Request struct {
	Scope exposure.Scope
	// Spec switches the engine to hierarchical mode when it has leaves.
	Spec      curriculum.CategorySpec
	LearnerID string
	// N is the batch size. Zero means the engine default.
	N int
}

// Engine draws items from an exposure store and cases from a case store.
type Engine struct {
	items     exposure.Store
	cases     cases.Store
	batchSize int
}

// NewEngine creates a sampling engine. batchSize <= 0 uses quota.DefaultTotal.
func NewEngine(items exposure.Store, cases cases.Store, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = quota.DefaultTotal
	}
	return &Engine{items: items, cases: cases, batchSize: batchSize}
}

// SampleItems returns up to N items the learner has not seen, with options
// shuffled and items numbered from 1. A batch shorter than N is not an error.
func (e *Engine) SampleItems(ctx context.Context, req Request) ([]curriculum.Item, error) {
	if req.Scope.IsZero() && req.Spec.IsEmpty() {
		return nil, ErrMissingSelection
	}
	if req.LearnerID == "" {
		return nil, ErrMissingLearner
	}
	n := req.N
	if n <= 0 {
		n = e.batchSize
	}

	base := exposure.Filter{Scope: req.Scope, ReviewedOnly: !req.Scope.CaseBound()}

	mode := modeFlat
	var (
		batch []curriculum.Item
		err   error
	)
	allocs := quota.Allocate(n, req.Spec)
	if len(allocs) == 0 {
		batch, err = e.draw(ctx, base, req.LearnerID, n, true, nil)
	} else {
		mode = modeHierarchical
		batch, err = e.sampleHierarchical(ctx, base, req.LearnerID, n, allocs)
	}
	if err != nil {
		return nil, err
	}

	if len(batch) == 0 && !req.Scope.IsZero() {
		total, err := e.items.CountMatching(ctx, exposure.Filter{Scope: req.Scope})
		if err != nil {
			return nil, fmt.Errorf("counting scope: %w", err)
		}
		if total == 0 {
			return nil, ErrScopeNotFound
		}
	}

	if len(batch) < n {
		shortBatches.WithLabelValues(mode).Inc()
		slog.Warn("short batch",
			"learner_id", req.LearnerID,
			"mode", mode,
			"requested", n,
			"returned", len(batch),
		)
	}
	itemsServed.WithLabelValues(mode).Add(float64(len(batch)))

	for i := range batch {
		batch[i].Options = lo.Shuffle(slices.Clone(batch[i].Options))
		batch[i].Number = i + 1
	}
	return batch, nil
}

func (e *Engine) sampleHierarchical(ctx context.Context, base exposure.Filter, learnerID string, n int, allocs []quota.Allocation) ([]curriculum.Item, error) {
	batch := make([]curriculum.Item, 0, n)
	ids := exposure.NewSet()
	add := func(items []curriculum.Item) {
		for _, it := range items {
			if len(batch) < n && ids.Add(it.ID) {
				batch = append(batch, it)
			}
		}
	}

	for _, a := range allocs {
		if a.Quota == 0 {
			continue
		}
		batchIDs := lo.Map(batch, func(it curriculum.Item, _ int) string { return it.ID })
		items, err := e.draw(ctx, base.ForLeaf(a.Leaf), learnerID, a.Quota, true, batchIDs)
		if err != nil {
			return nil, err
		}
		add(items)
	}

	for _, a := range allocs {
		need := n - len(batch)
		if need <= 0 {
			break
		}
		if base.CaseBound() {
			// Case items are never marked, so already-batched items can come back.
			need += len(batch)
		}
		items, err := e.draw(ctx, base.ForLeaf(a.Leaf), learnerID, need, false, nil)
		if err != nil {
			return nil, err
		}
		add(items)
	}

	col := collate.New(language.English)
	slices.SortStableFunc(batch, func(a, b curriculum.Item) int {
		return col.CompareString(a.System, b.System)
	})
	return batch, nil
}

// draw takes up to n items from f. Outside a case it excludes and marks items
// the learner has seen; if allowReset is set and the scope runs dry, the
// learner's exposure in f is cleared and the remainder is drawn once more.
// served lists items already in the batch; a reset must not unmark them.
func (e *Engine) draw(ctx context.Context, f exposure.Filter, learnerID string, n int, allowReset bool, served []string) ([]curriculum.Item, error) {
	if f.CaseBound() {
		items, err := e.items.SampleRandom(ctx, f, n)
		if err != nil {
			return nil, fmt.Errorf("sampling case items: %w", err)
		}
		return items, nil
	}

	items, err := e.claim(ctx, f, learnerID, n)
	if err != nil {
		return nil, err
	}
	if len(items) >= n || !allowReset {
		return items, nil
	}

	cleared, err := e.items.ResetExposure(ctx, f, learnerID)
	if err != nil {
		return nil, fmt.Errorf("resetting exposure: %w", err)
	}
	exposureResets.Inc()
	slog.Info("exposure reset",
		"learner_id", learnerID,
		"system", f.System,
		"topic", f.Topic,
		"cleared", cleared,
	)

	// Everything already served stays exposed so the second draw cannot repeat it.
	keep := append(slices.Clone(served), lo.Map(items, func(it curriculum.Item, _ int) string { return it.ID })...)
	if len(keep) > 0 {
		if err := e.items.MarkExposed(ctx, keep, learnerID); err != nil {
			return nil, fmt.Errorf("marking items exposed: %w", err)
		}
	}

	more, err := e.claim(ctx, f, learnerID, n-len(items))
	if err != nil {
		return nil, err
	}
	return append(items, more...), nil
}

// claim samples unseen items and marks them exposed, atomically when the
// store supports it.
func (e *Engine) claim(ctx context.Context, f exposure.Filter, learnerID string, n int) ([]curriculum.Item, error) {
	if c, ok := e.items.(exposure.Claimer); ok {
		items, err := c.ClaimUnseen(ctx, f, learnerID, n)
		if err != nil {
			return nil, fmt.Errorf("claiming items: %w", err)
		}
		return items, nil
	}

	items, err := e.items.SampleRandom(ctx, f.Unseen(learnerID), n)
	if err != nil {
		return nil, fmt.Errorf("sampling items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	ids := lo.Map(items, func(it curriculum.Item, _ int) string { return it.ID })
	if err := e.items.MarkExposed(ctx, ids, learnerID); err != nil {
		return nil, fmt.Errorf("marking items exposed: %w", err)
	}
	return items, nil
}

// PickCase returns a random case at level that has questions, preferring one
// the learner has not seen, and records the learner against it.
func (e *Engine) PickCase(ctx context.Context, level int, learnerID string) (curriculum.Case, error) {
	if level < 1 {
		return curriculum.Case{}, ErrInvalidLevel
	}
	if learnerID == "" {
		return curriculum.Case{}, ErrMissingLearner
	}

	source := "unseen"
	c, ok, err := e.cases.FindUnseenCase(ctx, level, learnerID)
	if err != nil {
		return curriculum.Case{}, fmt.Errorf("finding unseen case: %w", err)
	}
	if !ok {
		source = "any"
		c, ok, err = e.cases.FindAnyCase(ctx, level)
		if err != nil {
			return curriculum.Case{}, fmt.Errorf("finding case: %w", err)
		}
	}
	if !ok {
		return curriculum.Case{}, fmt.Errorf("level %d: %w", level, ErrNoCaseAtLevel)
	}

	if err := e.cases.MarkCaseExposed(ctx, c.ID, learnerID); err != nil {
		return curriculum.Case{}, fmt.Errorf("marking case exposed: %w", err)
	}
	casePicks.WithLabelValues(source).Inc()

	slog.Debug("case picked", "learner_id", learnerID, "case_id", c.ID, "level", level, "source", source)
	return c, nil
}
