// Package subgraph reconstructs per-subgraph schemas from a supergraph
// schema's @join__* metadata (spec.md §4.2), and materializes the federation
// directive set and root operations each subgraph needs to be independently
// parseable and entity-resolvable.
//
// Grounded on original_source/apollo-federation/src/query_graph/
// extract_subgraphs_from_supergraph.rs for the algorithm, and
// federation/position's mutation primitives for every write — extraction
// never pokes at an *ast.Definition directly, it goes through PreInsert/
// Insert/InsertDirective like any other caller of that package, so the two
// packages share the exact same referential invariants.
package subgraph

import (
	"github.com/federation-go/core/federation/position"
)

// Subgraph is one reconstructed (name, url, schema) triple (spec.md §3
// "Subgraph").
type Subgraph struct {
	Name   string
	URL    string
	Schema *position.Schema
}

// reservedName is the one subgraph name the spec forbids (spec.md §3).
const reservedName = "_"

// Map is a name-keyed, insertion-ordered collection of Subgraphs (spec.md §3
// "Subgraphs are held in a name-keyed ordered map").
type Map struct {
	order []string
	byName map[string]*Subgraph
}

func NewMap() *Map {
	return &Map{byName: map[string]*Subgraph{}}
}

// Add registers sg, rejecting an empty or reserved name and a duplicate.
func (m *Map) Add(sg *Subgraph) error {
	if sg.Name == "" || sg.Name == reservedName {
		return errInvalidSubgraphName(sg.Name)
	}
	if _, exists := m.byName[sg.Name]; exists {
		return errDuplicateSubgraphName(sg.Name)
	}
	m.byName[sg.Name] = sg
	m.order = append(m.order, sg.Name)
	return nil
}

func (m *Map) Get(name string) (*Subgraph, bool) {
	sg, ok := m.byName[name]
	return sg, ok
}

// Names returns every subgraph name in insertion order.
func (m *Map) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// All returns every Subgraph in insertion order.
func (m *Map) All() []*Subgraph {
	out := make([]*Subgraph, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.byName[name])
	}
	return out
}

func (m *Map) Len() int { return len(m.order) }
