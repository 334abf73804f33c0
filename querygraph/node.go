// Package querygraph builds the federated query graph: a directed graph
// whose nodes are (subgraph, type) pairs and whose edges encode field
// collection, type conditions, key-based lookups and root-type jumps
// (spec.md §4.5). Grounded on original_source/src/query_graph/mod.rs for
// the node/edge shape and on federation/subgraph for the per-subgraph
// schemas it walks.
package querygraph

import "github.com/federation-go/core/operation"

// Kind classifies a node by the supergraph type it represents.
type Kind uint8

const (
	Abstract Kind = iota // interface or union
	Concrete              // object
	Enum
	Scalar
)

// Node is one (subgraph, type) vertex.
type Node struct {
	Kind         Kind
	TypeName     string
	SubgraphName string

	// FieldEdges indexes ConcreteField/AbstractField edges by field name;
	// more than one edge can exist per field (alternate resolution paths).
	FieldEdges map[string][]*Edge

	// TypeConditionEdges indexes TypeCondition edges by the concrete type
	// name they narrow to. Only populated on Abstract nodes.
	TypeConditionEdges map[string]*Edge

	// LookupEdges are Lookup edges out of this node, to other subgraphs
	// resolving the same type (or, for root nodes, the same root kind).
	LookupEdges []*Edge
}

func newNode(kind Kind, typeName, subgraphName string) *Node {
	return &Node{
		Kind:               kind,
		TypeName:           typeName,
		SubgraphName:       subgraphName,
		FieldEdges:         map[string][]*Edge{},
		TypeConditionEdges: map[string]*Edge{},
	}
}

// EdgeKind classifies an Edge.
type EdgeKind uint8

const (
	AbstractField EdgeKind = iota
	ConcreteField
	TypeCondition
	Lookup
)

// Edge is one directed transition in the graph.
type Edge struct {
	Kind EdgeKind
	Head *Node
	Tail *Node

	// FieldName is set for AbstractField/ConcreteField edges.
	FieldName string

	// TypeConditionName is set for TypeCondition edges: the concrete type
	// the edge narrows to.
	TypeConditionName string

	// KeyCondition is set for Lookup edges representing an entity jump: the
	// parsed @key field set that must be satisfiable at Head to take the
	// edge. nil for root-type jumps (unconditional) and for non-Lookup
	// edges.
	KeyCondition *operation.NormalizedSelectionSet

	// SelfCondition is a @requires field set that must already be resolved
	// at Head before this edge can be taken. nil if the edge carries no
	// such requirement.
	SelfCondition *operation.NormalizedSelectionSet
}

// crossesSubgraph reports whether taking e moves from one subgraph to
// another.
func (e *Edge) crossesSubgraph() bool {
	return e.Head.SubgraphName != e.Tail.SubgraphName
}
