package plan

import (
	"sort"

	"github.com/kingledion/go-tools/gheap"

	"github.com/federation-go/core/errcode"
)

// Prune discards any option in cb that some other option overrides: every
// path the discarded option holds is overridden by a corresponding path in
// the surviving option (spec.md §4.6 "Pruning pass"). Pruning never removes
// the cheapest plan (spec.md §8 invariant 7) since an overriding option is,
// by construction, always at least as good.
func (cb *ClosedBranch) Prune() {
	kept := cb.Options[:0:0]
	for i, p := range cb.Options {
		overridden := false
		for j, q := range cb.Options {
			if i == j {
				continue
			}
			if pathsOverriddenBy(p.Paths, q.Paths) {
				overridden = true
				break
			}
		}
		if !overridden {
			kept = append(kept, p)
		}
	}
	cb.Options = kept
}

// pathsOverriddenBy reports whether every path in p is overridden by some
// path in q.
func pathsOverriddenBy(p, q SimultaneousPaths) bool {
	for _, pp := range p {
		dominated := false
		for _, qq := range q {
			if pp.overriddenBy(qq) {
				dominated = true
				break
			}
		}
		if !dominated {
			return false
		}
	}
	return true
}

// Order sorts cb's options ascending by total subgraph jumps, so cheaper
// (statistically better) options are tried first (spec.md §4.6 "Ordering
// pass").
func (cb *ClosedBranch) Order() {
	sort.SliceStable(cb.Options, func(i, j int) bool {
		return subgraphJumps(cb.Options[i]) < subgraphJumps(cb.Options[j])
	})
}

func subgraphJumps(cp *ClosedPath) int {
	total := 0
	for _, p := range cp.Paths {
		total += p.SubgraphJumps()
	}
	return total
}

// ApplyBudget enforces maxEvaluatedPlans over the product of every branch's
// option count: it repeatedly discards the worst (last, since branches are
// ordered) option from whichever branch currently has the most options,
// using a max-heap keyed by option count so the branch to trim is always
// found in O(log n) (spec.md §4.6 "Budget pass"; the heap, rather than a
// hand-rolled scan, is the same priority-queue need the teacher's planner
// addresses with kingledion/go-tools/gheap).
func ApplyBudget(branches []*ClosedBranch, maxEvaluatedPlans int) error {
	product := productOf(branches)
	if product <= maxEvaluatedPlans {
		return nil
	}

	h := gheap.New(func(a, b *ClosedBranch) bool {
		return len(a.Options) > len(b.Options)
	})
	for _, cb := range branches {
		if len(cb.Options) > 1 {
			h.Push(cb)
		}
	}

	for product > maxEvaluatedPlans && h.Len() > 0 {
		worst, ok := h.Pop()
		if !ok || len(worst.Options) <= 1 {
			continue
		}
		product /= len(worst.Options)
		worst.Options = worst.Options[:len(worst.Options)-1]
		product *= len(worst.Options)
		if len(worst.Options) == 0 {
			return errcode.New(errcode.SatisfiabilityError, "no viable plan for field %q within max_evaluated_plans budget", worst.FieldName)
		}
		if len(worst.Options) > 1 {
			h.Push(worst)
		}
	}
	return nil
}

func productOf(branches []*ClosedBranch) int {
	p := 1
	for _, cb := range branches {
		n := len(cb.Options)
		if n == 0 {
			return 0
		}
		p *= n
	}
	return p
}
