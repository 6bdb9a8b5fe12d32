// Package cases stores leveled cases and tracks which learners have seen them.
package cases

import (
	"context"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

// Store selects cases by level. Cases with TotalQuestion == 0 are never returned.
type Store interface {
	// FindUnseenCase returns a random case at level that learnerID has not seen.
	FindUnseenCase(ctx context.Context, level int, learnerID string) (curriculum.Case, bool, error)
	// FindAnyCase returns a random case at level regardless of exposure.
	FindAnyCase(ctx context.Context, level int) (curriculum.Case, bool, error)
	// MarkCaseExposed adds learnerID to the exposure set of the case.
	MarkCaseExposed(ctx context.Context, caseID, learnerID string) error
}

// Writer loads cases into a store.
type Writer interface {
	PutCases(ctx context.Context, cases []curriculum.Case) error
	// AddQuestionCount grows TotalQuestion of an existing case.
	AddQuestionCount(ctx context.Context, caseID string, delta int) error
}
