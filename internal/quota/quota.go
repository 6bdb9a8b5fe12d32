// Package quota splits a batch size across the leaves of a category spec.
package quota

import "github.com/p-n-ai/pai-quiz/internal/curriculum"

// DefaultTotal is the batch size used when a caller does not ask for one.
const DefaultTotal = 10

// Allocation is the number of items to draw from one leaf.
type Allocation struct {
	Leaf  curriculum.Leaf
	Quota int
}

// Allocate gives every leaf floor(n/L) items and hands the remainder out one
// at a time to the first leaves in spec order. Quotas always sum to n.
// A spec with no leaves, or n <= 0, yields nil.
func Allocate(n int, spec curriculum.CategorySpec) []Allocation {
	leaves := spec.Leaves()
	if len(leaves) == 0 || n <= 0 {
		return nil
	}

	base := n / len(leaves)
	extra := n - base*len(leaves)

	out := make([]Allocation, len(leaves))
	for i, leaf := range leaves {
		q := base
		if i < extra {
			q++
		}
		out[i] = Allocation{Leaf: leaf, Quota: q}
	}
	return out
}

// Sum returns the total quota of allocs.
func Sum(allocs []Allocation) int {
	total := 0
	for _, a := range allocs {
		total += a.Quota
	}
	return total
}
