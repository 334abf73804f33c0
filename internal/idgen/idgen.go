// Package idgen hands out process-wide monotonic identifiers.
//
// The normalizer needs a fresh id per @defer selection (spec.md §3 "Key") and
// the planner needs a fresh id per GraphPath so overriding sets (own_path_ids
// / overriding_path_ids, spec.md §9) can be compared by plain integer
// containment. Both are small lazily-initialized singletons (design note
// "Global lazy tables").
package idgen

import "go.uber.org/atomic"

// Generator hands out a strictly increasing sequence of uint64 ids starting
// at 1 (0 is reserved to mean "no id").
type Generator struct {
	counter atomic.Uint64
}

// Next returns the next id in the sequence. Safe for concurrent use.
func (g *Generator) Next() uint64 {
	return g.counter.Inc()
}

// Deferred ids are minted by the operation normalizer, one per @defer
// selection, so deferred selections never merge with each other or anything
// else (spec.md §4.4).
var Deferred = &Generator{}

// PathIDs are minted by the planner, one per GraphPath extension, so
// overriding relationships between paths reduce to set containment
// (spec.md §9 "Closed-branch pruning via path IDs").
var PathIDs = &Generator{}
