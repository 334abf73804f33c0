package plan

import (
	"fmt"

	"github.com/federation-go/core/operation"
	"github.com/federation-go/core/querygraph"
)

// conditionKey identifies one (edge, context-path) resolution attempt.
// Condition satisfiability can be asked about the same edge from many
// candidate paths during a single planning call, so it is worth caching
// independently of the broader cost cache (spec.md §9, supplemented from
// original_source/src/query_graph/condition_resolver.rs).
type conditionKey struct {
	edge    *querygraph.Edge
	context string
}

// ConditionResolver decides whether a @key/@requires selection carried by
// an edge is satisfiable from the edge's Head node. The GraphPath a
// question is asked from only keys the cache; what was resolved along it
// is not consulted.
type ConditionResolver struct {
	cache map[conditionKey]bool
}

// NewConditionResolver returns an empty resolver.
func NewConditionResolver() *ConditionResolver {
	return &ConditionResolver{cache: map[conditionKey]bool{}}
}

// Satisfiable reports whether e's condition (its KeyCondition or
// SelfCondition, whichever is set) can be resolved at e.Head; context only
// keys the cache. An edge with neither is unconditionally satisfiable.
func (r *ConditionResolver) Satisfiable(e *querygraph.Edge, context *GraphPath) bool {
	cond := e.KeyCondition
	if cond == nil {
		cond = e.SelfCondition
	}
	if cond == nil {
		return true
	}
	key := conditionKey{edge: e, context: contextSignature(context)}
	if v, ok := r.cache[key]; ok {
		return v
	}
	ok := fieldsReachableFrom(e.Head, cond)
	r.cache[key] = ok
	return ok
}

// fieldsReachableFrom reports whether every selection in cond, including
// nested selections and inline-fragment type conditions, resolves to some
// edge out of node — recursing into the edge's Tail so a @key/@requires
// whose nested fields aren't themselves resolvable in the target subgraph
// is rejected, not just checked one level deep.
func fieldsReachableFrom(node *querygraph.Node, cond *operation.NormalizedSelectionSet) bool {
	if cond == nil {
		return true
	}
	for _, sel := range cond.Selections() {
		switch s := sel.(type) {
		case *operation.FieldSelection:
			if s.Name == "__typename" {
				continue
			}
			edges, has := node.FieldEdges[s.Name]
			if !has || len(edges) == 0 {
				return false
			}
			if s.SelectionSet != nil && !anyTailSatisfies(edges, s.SelectionSet) {
				return false
			}
		case *operation.InlineFragmentSelection:
			target := node
			if s.TypeCondition != "" && s.TypeCondition != node.TypeName {
				edge, has := node.TypeConditionEdges[s.TypeCondition]
				if !has {
					return false
				}
				target = edge.Tail
			}
			if s.SelectionSet != nil && !fieldsReachableFrom(target, s.SelectionSet) {
				return false
			}
		}
	}
	return true
}

// anyTailSatisfies reports whether at least one of a field's alternate
// resolution edges leads to a node from which nested is itself fully
// reachable (an abstract field can resolve differently per implementing
// type, so any one working edge is enough).
func anyTailSatisfies(edges []*querygraph.Edge, nested *operation.NormalizedSelectionSet) bool {
	for _, e := range edges {
		if fieldsReachableFrom(e.Tail, nested) {
			return true
		}
	}
	return false
}

func contextSignature(p *GraphPath) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("path#%d", p.ID)
}
