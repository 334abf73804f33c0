package plan

import (
	"github.com/vektah/gqlparser/v2/ast"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/operation"
)

// OpPath is a response-path into a parent selection, used both as a
// FetchEdge's merge point and as a FetchNode's MergePath (spec.md §3 "Fetch
// dependency graph").
type OpPath []string

// Rewrite describes moving a value between a fetch's representations
// (input rewrite) or response (output rewrite) and the surrounding
// selection, e.g. lifting a field up to satisfy a @requires (spec.md §3
// "Fetch dependency graph", "input/output rewrites").
type Rewrite struct {
	Path OpPath
}

// FetchNode is one subgraph fetch in the dependency DAG (spec.md §3).
type FetchNode struct {
	id int64

	SubgraphName string
	RootKind     ast.Operation
	ParentType   string
	SelectionSet *operation.NormalizedSelectionSet

	// EntityFetch marks a fetch that enters through Query._entities rather
	// than a root field: its Inputs are the @key representations to look up.
	EntityFetch bool
	Inputs      *operation.NormalizedSelectionSet

	InputRewrites  []Rewrite
	OutputRewrites []Rewrite
	MergePath      OpPath
	DeferLabel     string

	// cost caches SelectionCost(SelectionSet, 0); -1 means "not computed".
	cost int
}

func newFetchNode(id int64, subgraphName string, rootKind ast.Operation, parentType string) *FetchNode {
	return &FetchNode{id: id, SubgraphName: subgraphName, RootKind: rootKind, ParentType: parentType, cost: -1}
}

// ID satisfies gonum's graph.Node.
func (f *FetchNode) ID() int64 { return f.id }

// FetchEdge orders two fetches: F (the dependency) must complete (at least
// up to Path) before T (the dependent) can run (spec.md §3 "FetchEdge").
type FetchEdge struct {
	F, T graph.Node
	Path OpPath
}

func (e FetchEdge) From() graph.Node         { return e.F }
func (e FetchEdge) To() graph.Node           { return e.T }
func (e FetchEdge) ReversedEdge() graph.Edge { return FetchEdge{F: e.T, T: e.F, Path: e.Path} }

// DeferredInfo tracks one @defer label's dependency on fetch nodes (spec.md
// §4.6 "@defer handling").
type DeferredInfo struct {
	Label        string
	DependsOn    []int64
	SelectionSet *operation.NormalizedSelectionSet
}

// DeferTracking records every top-level deferred label discovered while
// planning, plus the primary (non-deferred) selection (spec.md §3 "Fetch
// dependency graph", "DeferTracking").
type DeferTracking struct {
	TopLevelLabels []string
	ByLabel        map[string]*DeferredInfo
	Primary        *operation.NormalizedSelectionSet
}

func newDeferTracking() *DeferTracking {
	return &DeferTracking{ByLabel: map[string]*DeferredInfo{}}
}

// FetchDependencyGraph is the DAG of FetchNodes this planner builds
// (spec.md §3, §4.6).
type FetchDependencyGraph struct {
	g      *simple.DirectedGraph
	nodes  []*FetchNode
	nextID int64
	Defer  *DeferTracking

	// Cost is the estimator's TotalCost for this graph, recorded once by the
	// planner that built it (0 until then).
	Cost int
}

// NewFetchDependencyGraph returns an empty graph.
func NewFetchDependencyGraph() *FetchDependencyGraph {
	return &FetchDependencyGraph{g: simple.NewDirectedGraph(), Defer: newDeferTracking()}
}

// AddFetch creates and registers a new FetchNode for (subgraph, rootKind,
// parentType).
func (fdg *FetchDependencyGraph) AddFetch(subgraphName string, rootKind ast.Operation, parentType string) *FetchNode {
	fdg.nextID++
	n := newFetchNode(fdg.nextID, subgraphName, rootKind, parentType)
	fdg.g.AddNode(n)
	fdg.nodes = append(fdg.nodes, n)
	return n
}

// AddDependency records that dependent needs dependency to have resolved
// path first.
func (fdg *FetchDependencyGraph) AddDependency(dependent, dependency *FetchNode, path OpPath) {
	fdg.g.SetEdge(FetchEdge{F: dependency, T: dependent, Path: path})
}

// Nodes returns every fetch node in insertion order.
func (fdg *FetchDependencyGraph) Nodes() []*FetchNode {
	return fdg.nodes
}

// ExecutionOrder topologically sorts the dependency DAG so dependencies
// always precede their dependents (spec.md §4.6 "[ADD] gonum/graph/topo").
// A cycle can only arise from a planner bug, since @requires dependencies
// are acyclic by construction; it is reported as an Internal error.
func (fdg *FetchDependencyGraph) ExecutionOrder() ([]*FetchNode, error) {
	sorted, err := topo.Sort(fdg.g)
	if err != nil {
		cycles := topo.DirectedCyclesIn(fdg.g)
		return nil, errcode.WrapInternal(&cycleError{cycles: len(cycles), cause: err})
	}
	out := make([]*FetchNode, 0, len(sorted))
	for _, n := range sorted {
		out = append(out, n.(*FetchNode))
	}
	return out, nil
}

type cycleError struct {
	cycles int
	cause  error
}

func (e *cycleError) Error() string { return e.cause.Error() }
func (e *cycleError) Unwrap() error { return e.cause }

// TotalCost sums the recursive selection cost of every fetch node, caching
// each node's own cost (spec.md §4.6 "Cost function").
func (fdg *FetchDependencyGraph) TotalCost(estimator *CostEstimator) int {
	total := 0
	for _, n := range fdg.nodes {
		if n.cost < 0 {
			n.cost = estimator.SelectionCost(n.SelectionSet, 0)
		}
		total += n.cost
	}
	return total
}
