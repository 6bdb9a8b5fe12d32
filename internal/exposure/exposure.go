// Package exposure tracks which learners have already been served which items.
package exposure

import (
	"context"
	"slices"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

// Scope is the outer selection key of a sampling request. At least one of
// QuizID, SubcategoryID or CaseID must be set; Subspecialty only narrows.
type Scope struct {
	QuizID        string `json:"quiz_id,omitempty"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
	CaseID        string `json:"case_id,omitempty"`
	Subspecialty  string `json:"subspecialty,omitempty"`
}

// IsZero reports whether the scope names no selection key.
func (s Scope) IsZero() bool {
	return s.QuizID == "" && s.SubcategoryID == "" && s.CaseID == ""
}

// CaseBound reports whether the scope selects the items of a single case.
func (s Scope) CaseBound() bool {
	return s.CaseID != ""
}

// Filter selects items from the pool.
type Filter struct {
	Scope

	System    string
	Topic     string
	Subtopics []string

	// ReviewedOnly restricts the pool to reviewed items.
	ReviewedOnly bool
	// UnseenBy excludes items already served to this learner.
	UnseenBy string
}

// ForLeaf narrows f to one category leaf.
func (f Filter) ForLeaf(leaf curriculum.Leaf) Filter {
	f.System = leaf.System
	f.Topic = leaf.Topic
	f.Subtopics = leaf.Subtopics
	return f
}

// Unseen returns a copy of f that excludes items served to learnerID.
func (f Filter) Unseen(learnerID string) Filter {
	f.UnseenBy = learnerID
	return f
}

// Matches reports whether item passes every tag condition of f. Exposure is
// not checked here.
func (f Filter) Matches(item curriculum.Item) bool {
	switch {
	case f.QuizID != "" && item.QuizID != f.QuizID:
		return false
	case f.SubcategoryID != "" && item.Subcategory.ID != f.SubcategoryID:
		return false
	case f.CaseID != "" && item.CaseID != f.CaseID:
		return false
	case f.Subspecialty != "" && item.Subspecialty != f.Subspecialty:
		return false
	case f.System != "" && item.System != f.System:
		return false
	case f.Topic != "" && item.Topic != f.Topic:
		return false
	case len(f.Subtopics) > 0 && !slices.Contains(f.Subtopics, item.Subtopic):
		return false
	case f.ReviewedOnly && !item.Reviewed:
		return false
	}
	return true
}

// Store is the persistent item pool with per-item exposure sets.
type Store interface {
	// SampleRandom returns up to n random items matching f.
	SampleRandom(ctx context.Context, f Filter, n int) ([]curriculum.Item, error)
	// MarkExposed adds learnerID to the exposure set of each item.
	MarkExposed(ctx context.Context, itemIDs []string, learnerID string) error
	// ResetExposure removes learnerID from the exposure set of every item
	// matching f. It returns the number of exposures cleared.
	ResetExposure(ctx context.Context, f Filter, learnerID string) (int, error)
	// CountMatching counts items matching f.
	CountMatching(ctx context.Context, f Filter) (int, error)
}

// Claimer is implemented by stores that can sample unseen items and mark them
// exposed in one atomic step.
type Claimer interface {
	ClaimUnseen(ctx context.Context, f Filter, learnerID string, n int) ([]curriculum.Item, error)
}

// Writer loads items into a store.
type Writer interface {
	PutItems(ctx context.Context, items []curriculum.Item) error
	// ExistingItemIDs returns the subset of ids already stored.
	ExistingItemIDs(ctx context.Context, ids []string) ([]string, error)
}
