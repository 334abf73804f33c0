package querygraph

// NonTrivialFollowupEdges enumerates the edges out of e.Tail worth trying
// immediately after taking e, excluding choices the planner can never
// benefit from: when e is a Lookup edge, every Lookup edge out of e.Tail
// that resolves the same type back in the subgraph e started from, whatever
// its key (an immediate self-loop) (spec.md §4.5 "Contract").
func NonTrivialFollowupEdges(e *Edge) []*Edge {
	tail := e.Tail
	var out []*Edge

	for _, fes := range tail.FieldEdges {
		out = append(out, fes...)
	}
	for _, te := range tail.TypeConditionEdges {
		out = append(out, te)
	}
	for _, le := range tail.LookupEdges {
		if e.Kind == Lookup && le.Tail.SubgraphName == e.Head.SubgraphName && le.TypeConditionName == e.TypeConditionName {
			// Would immediately undo the lookup we just took.
			continue
		}
		out = append(out, le)
	}
	return out
}
