package plan

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/federation-go/core/operation"
)

// costKey identifies a (selection-set identity, depth) pair. Selection sets
// are never mutated after normalization, so the pointer itself is a stable
// identity for caching purposes.
type costKey struct {
	set   *operation.NormalizedSelectionSet
	depth int
}

// CostEstimator computes the recursive selection cost used to rank
// candidate plans (spec.md §4.6 "Cost function"): the sum over fetch nodes
// of each selection's depth plus its children's cost at depth+1, favoring
// shallow type-explosion over deep. Results are memoized per
// (selection-set, depth) since the same sub-selection is frequently re-cost
// under different candidate subgraph assignments (grounded on the same
// "cache recomputed substructure" need golang-lru addresses elsewhere in
// the teacher's execution layer).
type CostEstimator struct {
	cache *lru.Cache[costKey, int]
}

// NewCostEstimator returns an estimator backed by an LRU cache sized for
// size distinct selection sets.
func NewCostEstimator(size int) *CostEstimator {
	if size < 1 {
		size = 1
	}
	c, _ := lru.New[costKey, int](size)
	return &CostEstimator{cache: c}
}

// SelectionCost returns the recursive cost of set starting at depth.
func (c *CostEstimator) SelectionCost(set *operation.NormalizedSelectionSet, depth int) int {
	if set == nil {
		return 0
	}
	key := costKey{set: set, depth: depth}
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	total := 0
	for _, sel := range set.Selections() {
		total += depth
		switch s := sel.(type) {
		case *operation.FieldSelection:
			total += c.SelectionCost(s.SelectionSet, depth+1)
		case *operation.InlineFragmentSelection:
			total += c.SelectionCost(s.SelectionSet, depth+1)
		}
	}
	c.cache.Add(key, total)
	return total
}
