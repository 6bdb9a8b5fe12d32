package curriculum

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// ItemWriter stores built items.
type ItemWriter interface {
	PutItems(ctx context.Context, items []Item) error
	ExistingItemIDs(ctx context.Context, ids []string) ([]string, error)
}

// CaseWriter stores built cases and grows question counts of existing ones.
type CaseWriter interface {
	PutCases(ctx context.Context, cases []Case) error
	AddQuestionCount(ctx context.Context, caseID string, delta int) error
}

// SeedStats summarizes one Seed call.
type SeedStats struct {
	Items int
	Cases int
	// MissingCases counts external case IDs that the store does not know.
	MissingCases int
}

// Seed writes a built bank into the stores. Cases are written first so items
// never reference a case that is not stored yet. Cases defined outside the
// bank have their question count grown by the items that are new to the
// store, so seeding the same bank again changes nothing. Unknown external
// cases are logged and skipped.
func Seed(ctx context.Context, result BuildResult, items ItemWriter, cases CaseWriter) (SeedStats, error) {
	var stats SeedStats

	added, err := newExternalItems(ctx, result, items)
	if err != nil {
		return stats, err
	}

	if len(result.Bank.Cases) > 0 {
		if err := cases.PutCases(ctx, result.Bank.Cases); err != nil {
			return stats, fmt.Errorf("storing cases: %w", err)
		}
		stats.Cases = len(result.Bank.Cases)
	}

	if len(result.Bank.Items) > 0 {
		if err := items.PutItems(ctx, result.Bank.Items); err != nil {
			return stats, fmt.Errorf("storing items: %w", err)
		}
		stats.Items = len(result.Bank.Items)
	}

	ids := make([]string, 0, len(added))
	for id := range added {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := cases.AddQuestionCount(ctx, id, added[id]); err != nil {
			slog.Warn("skipping question count for unknown case", "case_id", id, "error", err)
			stats.MissingCases++
		}
	}
	return stats, nil
}

// newExternalItems counts, per external case, the bank items the store does
// not hold yet.
func newExternalItems(ctx context.Context, result BuildResult, items ItemWriter) (map[string]int, error) {
	if len(result.ExternalCaseCounts) == 0 {
		return nil, nil
	}

	var candidates []string
	for _, it := range result.Bank.Items {
		if _, ok := result.ExternalCaseCounts[it.CaseID]; ok {
			candidates = append(candidates, it.ID)
		}
	}
	existing, err := items.ExistingItemIDs(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("checking stored items: %w", err)
	}
	stored := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		stored[id] = struct{}{}
	}

	added := make(map[string]int)
	for _, it := range result.Bank.Items {
		if _, ok := result.ExternalCaseCounts[it.CaseID]; !ok {
			continue
		}
		if _, ok := stored[it.ID]; !ok {
			added[it.CaseID]++
		}
	}
	return added, nil
}
