package plan

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/operation"
	"github.com/federation-go/core/querygraph"
)

// assembler walks a normalized selection set against the query graph and
// produces fetchPlans: staged candidates for FetchNodes, priced before any
// FetchNode actually exists (spec.md §4.6 "Plan assembly").
//
// Plan cost (spec.md §4.6 "Cost function") is the sum, over fetch nodes, of
// each selection's depth-weighted cost. That makes a field's own
// resolution choice independent of its siblings': a field either stays in
// the surrounding fetch — contributing depth plus its own subtree's cost
// there — or crosses into a dependent fetch — contributing that fetch's
// own total cost instead, nothing at the surrounding fetch. Either way the
// contribution depends only on that field's own chosen path and
// descendants, never on a sibling's. Minimizing each field's contribution
// independently therefore reaches the same total the spec's "generate
// plans, compute their cost, keep the best" search would by enumerating
// every sibling combination — without rebuilding (and discarding) every
// combination to find it. evalOption/bestOption below still build and cost
// every surviving candidate for real; they just don't re-derive siblings'
// candidates while doing it.
type assembler struct {
	fdg               *FetchDependencyGraph
	resolver          *ConditionResolver
	estimator         *CostEstimator
	pathsLimit        *uint32
	maxEvaluatedPlans uint32
}

func newAssembler(resolver *ConditionResolver, estimator *CostEstimator, pathsLimit *uint32, maxEvaluatedPlans uint32) *assembler {
	return &assembler{resolver: resolver, estimator: estimator, pathsLimit: pathsLimit, maxEvaluatedPlans: maxEvaluatedPlans}
}

// fetchPlan is a not-yet-committed FetchNode.
type fetchPlan struct {
	subgraphName string
	rootKind     ast.Operation
	parentType   string
	entityFetch  bool
	inputs       *operation.NormalizedSelectionSet
	selectionSet *operation.NormalizedSelectionSet
	crossings    []*crossing
}

// crossing is one subgraph jump a fetchPlan spawns: a dependent fetchPlan
// plus the response path anchoring its dependency edge.
type crossing struct {
	target    *fetchPlan
	mergePath OpPath
}

// totalCost sums fp's own top-level SelectionCost and every crossing's own
// totalCost, recursively: the full marginal contribution choosing fp's
// branch of the plan makes to the sum-over-fetch-nodes cost function.
func (a *assembler) totalCost(fp *fetchPlan) int {
	total := a.estimator.SelectionCost(fp.selectionSet, 0)
	for _, cr := range fp.crossings {
		total += a.totalCost(cr.target)
	}
	return total
}

// commit materializes fp and everything it transitively crosses into into
// fdg, wiring dependency edges as it goes. Called once per fetch, on the
// winning candidate at each decision point.
func (a *assembler) commit(fdg *FetchDependencyGraph, fp *fetchPlan) *FetchNode {
	n := fdg.AddFetch(fp.subgraphName, fp.rootKind, fp.parentType)
	n.EntityFetch = fp.entityFetch
	n.Inputs = fp.inputs
	n.SelectionSet = fp.selectionSet
	for _, cr := range fp.crossings {
		child := a.commit(fdg, cr.target)
		fdg.AddDependency(child, n, cr.mergePath)
	}
	return n
}

// fieldCandidate is one evaluated option for resolving a single field
// selection: either field is non-nil (the field stays in the surrounding
// fetch, its own subtree already resolved) or crossings holds exactly the
// one crossing that represents it entering a dependent fetch instead. In
// the first case crossings also carries every crossing spawned deeper in
// field's own subtree; in the second, those deeper crossings hang off the
// one crossing's target fetchPlan, so the caller never loses track of a
// nested subgraph jump.
type fieldCandidate struct {
	field     *operation.FieldSelection
	crossings []*crossing
	cost      int
}

// attachSet resolves every selection of set against node, returning the
// selection set to fold into the surrounding fetch and every crossing its
// fields spawned (spec.md §4.6 step 3). depth is the depth set's own
// members sit at within their owning fetch's top-level selection set (0
// for a fetch's own top-level set), matching CostEstimator.SelectionCost's
// depth accounting exactly so a candidate's cost here equals what
// FetchDependencyGraph.TotalCost would later compute on the committed
// tree.
func (a *assembler) attachSet(node *querygraph.Node, set *operation.NormalizedSelectionSet, depth int, rootKind ast.Operation) (*operation.NormalizedSelectionSet, []*crossing, error) {
	out := operation.NewNormalizedSelectionSet()
	var crossings []*crossing

	var branches []*ClosedBranch
	var fields []*operation.FieldSelection

	for _, sel := range set.Selections() {
		switch s := sel.(type) {
		case *operation.FieldSelection:
			if s.Name == "__typename" {
				if err := out.Add(s); err != nil {
					return nil, nil, err
				}
				continue
			}
			cb, err := a.closeAndRank(node, s)
			if err != nil {
				return nil, nil, err
			}
			branches = append(branches, cb)
			fields = append(fields, s)
		case *operation.InlineFragmentSelection:
			target := node
			if s.TypeCondition != "" {
				if edge, ok := node.TypeConditionEdges[s.TypeCondition]; ok {
					target = edge.Tail
				}
			}
			var child *operation.NormalizedSelectionSet
			if s.SelectionSet != nil {
				c, cr, err := a.attachSet(target, s.SelectionSet, depth+1, rootKind)
				if err != nil {
					return nil, nil, err
				}
				child = c
				crossings = append(crossings, cr...)
			}
			if err := out.Add(s.WithSelectionSet(child)); err != nil {
				return nil, nil, err
			}
		case *operation.FragmentSpreadSelection:
			return nil, nil, errcode.Internal("unexpanded fragment spread %q reached the planner", s.FragmentName)
		}
	}

	// Budget pass over every sibling field branch at this selection-set
	// level together, not one field's branch at a time — the cross-branch
	// product spec.md §4.6 "Budget pass" defines is across the branches
	// open at once, so max_evaluated_plans has to bound their combined
	// product here to mean anything.
	if len(branches) > 0 {
		if err := ApplyBudget(branches, int(a.maxEvaluatedPlans)); err != nil {
			return nil, nil, err
		}
	}

	for i, cb := range branches {
		sel := fields[i]
		best, err := a.bestOption(sel, cb, depth, rootKind)
		if err != nil {
			return nil, nil, err
		}
		if best.field != nil {
			if err := out.Add(best.field); err != nil {
				return nil, nil, err
			}
		}
		crossings = append(crossings, best.crossings...)
	}

	return out, crossings, nil
}

// closeAndRank closes sel's branch at node and runs the pruning/ordering
// passes spec.md §4.6 defines ahead of cost-based selection.
func (a *assembler) closeAndRank(node *querygraph.Node, sel *operation.FieldSelection) (*ClosedBranch, error) {
	ob := &OpenBranch{Selection: sel, Options: []SimultaneousPaths{{NewGraphPath(node)}}}
	cb, err := closeBranch(ob, a.resolver)
	if err != nil {
		return nil, err
	}
	if len(cb.Options) == 0 {
		return nil, errcode.New(errcode.SatisfiabilityError, "no subgraph can resolve field %q at type %q", sel.Name, node.TypeName)
	}
	if a.pathsLimit != nil && uint32(len(cb.Options)) > *a.pathsLimit {
		return nil, errcode.New(errcode.UnsupportedFeature, "field %q exceeds paths_limit (%d candidate paths)", sel.Name, len(cb.Options))
	}
	cb.Prune()
	cb.Order()
	return cb, nil
}

// bestOption builds and costs every surviving option in cb for sel and
// returns the cheapest (spec.md §4.6 "generate plans in option order,
// compute their cost … keep the best seen so far"), replacing the old
// blind "first option after Prune/Order" pick.
func (a *assembler) bestOption(sel *operation.FieldSelection, cb *ClosedBranch, depth int, rootKind ast.Operation) (*fieldCandidate, error) {
	var best *fieldCandidate
	for _, opt := range cb.Options {
		cand, err := a.evalOption(sel, opt, depth, rootKind)
		if err != nil {
			return nil, err
		}
		if best == nil || cand.cost < best.cost {
			best = cand
		}
	}
	if best == nil {
		return nil, errcode.New(errcode.SatisfiabilityError, "no viable option for field %q", sel.Name)
	}
	return best, nil
}

// evalOption builds the candidate sel would become if opt is chosen: a
// same-subgraph continuation folded straight into the surrounding fetch,
// or a new dependent fetch entered through _entities, along with its real
// cost (spec.md §4.6 step 3, §4.2 step 10).
func (a *assembler) evalOption(sel *operation.FieldSelection, opt *ClosedPath, depth int, rootKind ast.Operation) (*fieldCandidate, error) {
	edges := opt.Paths[0].Edges

	if len(edges) == 1 && edges[0].Kind != querygraph.Lookup {
		edge := edges[0]
		var child *operation.NormalizedSelectionSet
		var nested []*crossing
		if sel.SelectionSet != nil {
			c, cr, err := a.attachSet(edge.Tail, sel.SelectionSet, depth+1, rootKind)
			if err != nil {
				return nil, err
			}
			child, nested = c, cr
		}
		resolved := sel.WithSelectionSet(child)

		tmp := operation.NewNormalizedSelectionSet()
		if err := tmp.Add(resolved); err != nil {
			return nil, err
		}
		cost := a.estimator.SelectionCost(tmp, depth)
		for _, cr := range nested {
			cost += a.totalCost(cr.target)
		}
		return &fieldCandidate{field: resolved, crossings: nested, cost: cost}, nil
	}

	lookupEdge := edges[0]
	fieldEdge := edges[len(edges)-1]
	var child *operation.NormalizedSelectionSet
	var nested []*crossing
	if sel.SelectionSet != nil {
		c, cr, err := a.attachSet(fieldEdge.Tail, sel.SelectionSet, 1, rootKind)
		if err != nil {
			return nil, err
		}
		child, nested = c, cr
	}
	nextSet := operation.NewNormalizedSelectionSet()
	if err := nextSet.Add(sel.WithSelectionSet(child)); err != nil {
		return nil, err
	}
	fp := &fetchPlan{
		subgraphName: lookupEdge.Tail.SubgraphName,
		rootKind:     rootKind,
		parentType:   lookupEdge.Tail.TypeName,
		entityFetch:  true,
		inputs:       lookupEdge.KeyCondition,
		selectionSet: nextSet,
		crossings:    nested,
	}
	return &fieldCandidate{crossings: []*crossing{{target: fp}}, cost: a.totalCost(fp)}, nil
}
