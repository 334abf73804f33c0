// Package plan turns a normalized operation and a federated query graph
// into a FetchDependencyGraph: a DAG of per-subgraph fetches realizing the
// operation at minimum cost (spec.md §4.6). Grounded on
// original_source/src/query_plan/query_planning_traversal.rs for the
// open/closed branch structure and on querygraph for the graph it walks.
package plan

import (
	"github.com/federation-go/core/internal/idgen"
	"github.com/federation-go/core/querygraph"
)

// GraphPath is one candidate walk through the query graph: a sequence of
// edges taken from a starting node, plus the path-id bookkeeping pruning
// needs to detect overrides without comparing full edge sequences
// (spec.md §9 "Closed-branch pruning via path IDs").
type GraphPath struct {
	ID    uint64
	Tail  *querygraph.Node
	Edges []*querygraph.Edge

	// OwnPathIDs is this path's own id plus every ancestor path's id it was
	// extended from. OverridingPathIDs is not filled in by NewGraphPath,
	// Extend or anything else in this package, and pruning does not read it:
	// pruning discards p when some other path's OwnPathIDs ⊇ p's OwnPathIDs.
	OwnPathIDs        []uint64
	OverridingPathIDs []uint64
}

// NewGraphPath starts a fresh path at start.
func NewGraphPath(start *querygraph.Node) *GraphPath {
	id := idgen.PathIDs.Next()
	return &GraphPath{ID: id, Tail: start, OwnPathIDs: []uint64{id}}
}

// Extend returns a new path that takes e from p's tail.
func (p *GraphPath) Extend(e *querygraph.Edge) *GraphPath {
	id := idgen.PathIDs.Next()
	edges := make([]*querygraph.Edge, len(p.Edges)+1)
	copy(edges, p.Edges)
	edges[len(p.Edges)] = e
	own := make([]uint64, len(p.OwnPathIDs)+1)
	copy(own, p.OwnPathIDs)
	own[len(p.OwnPathIDs)] = id
	return &GraphPath{ID: id, Tail: e.Tail, Edges: edges, OwnPathIDs: own}
}

// SubgraphJumps counts the Lookup edges in p, the metric the ordering pass
// sorts closed-branch options by (spec.md §4.6 "Ordering pass").
func (p *GraphPath) SubgraphJumps() int {
	n := 0
	for _, e := range p.Edges {
		if e.Kind == querygraph.Lookup {
			n++
		}
	}
	return n
}

// overriddenBy reports whether q makes p redundant: every path id p owns is
// also owned by q, so any valid extension of p is dominated by the
// corresponding extension of q.
func (p *GraphPath) overriddenBy(q *GraphPath) bool {
	if len(q.OwnPathIDs) == 0 {
		return false
	}
	set := make(map[uint64]bool, len(q.OwnPathIDs))
	for _, id := range q.OwnPathIDs {
		set[id] = true
	}
	for _, id := range p.OwnPathIDs {
		if !set[id] {
			return false
		}
	}
	return true
}

// SimultaneousPaths is a bundle of alternative paths considered together —
// for example, one path per concrete type implementing an interface
// selected through a type condition.
type SimultaneousPaths []*GraphPath

// ClosedPath is a fully-resolved option for a branch: the path(s) it took
// to reach a leaf or a fully-explored composite field.
type ClosedPath struct {
	Paths SimultaneousPaths
}

// ClosedBranch holds every viable option for realizing one selection.
type ClosedBranch struct {
	FieldName string
	Options   []*ClosedPath
}
