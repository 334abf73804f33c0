package querygraph

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/federation/subgraph"
	"github.com/federation-go/core/operation"
)

type nodeKey struct {
	Subgraph string
	Type     string
}

// Graph is the federated query graph: a (subgraph, type) vertex set plus
// the field, type-condition and lookup edges connecting them (spec.md
// §4.5).
type Graph struct {
	nodes map[nodeKey]*Node
	roots map[ast.Operation][]*Node
}

// NodeFor returns the node for (subgraphName, typeName), if one exists.
func (g *Graph) NodeFor(subgraphName, typeName string) (*Node, bool) {
	n, ok := g.nodes[nodeKey{subgraphName, typeName}]
	return n, ok
}

// Roots returns the federation root nodes for op, one per subgraph that
// defines that root kind (spec.md §4.6 step 1: "the federation root node
// for the operation's root kind" fans out to every subgraph able to serve
// it).
func (g *Graph) Roots(op ast.Operation) []*Node {
	return g.roots[op]
}

func isInternalTypeName(name string) bool {
	if len(name) >= 2 && name[:2] == "__" {
		return true
	}
	switch name {
	case "_Any", "_Service", "_Entity":
		return true
	}
	return false
}

// builtinScalarNames are the GraphQL built-in scalars. Build seeds a node
// for each of them directly in every subgraph, so every scalar-typed leaf
// field resolves a FieldEdge. position.New already registers these scalars
// in a Schema's Types map, so the walk over Types creates the same nodes
// again.
var builtinScalarNames = []string{"Int", "Float", "String", "Boolean", "ID"}

// Build walks every subgraph's schema and constructs the federated query
// graph: one node per (subgraph, type), field edges within a subgraph,
// type-condition edges for abstract types, and Lookup edges for entity
// jumps and root-type jumps across subgraphs (spec.md §4.5 "Contract").
func Build(subgraphs *subgraph.Map) (*Graph, error) {
	g := &Graph{
		nodes: map[nodeKey]*Node{},
		roots: map[ast.Operation][]*Node{},
	}

	// Pass 1: create every node.
	for _, sg := range subgraphs.All() {
		for _, name := range builtinScalarNames {
			g.nodes[nodeKey{sg.Name, name}] = newNode(Scalar, name, sg.Name)
		}
		for name, def := range sg.Schema.Types {
			if isInternalTypeName(name) {
				continue
			}
			kind, ok := nodeKindOf(def)
			if !ok {
				continue
			}
			g.nodes[nodeKey{sg.Name, name}] = newNode(kind, name, sg.Name)
		}
	}

	// Pass 2: field edges and type-condition edges, within each subgraph.
	for _, sg := range subgraphs.All() {
		astSchema := sg.Schema.ToAST()
		for name, def := range sg.Schema.Types {
			head, ok := g.nodes[nodeKey{sg.Name, name}]
			if !ok {
				continue
			}
			switch def.Kind {
			case ast.Object, ast.Interface:
				for _, f := range def.Fields {
					if f.Name == "_service" || f.Name == "_entities" || (len(f.Name) >= 2 && f.Name[:2] == "__") {
						continue
					}
					targetName := namedTypeOf(f.Type)
					tail, ok := g.nodes[nodeKey{sg.Name, targetName}]
					if !ok {
						continue
					}
					ek := ConcreteField
					if def.Kind == ast.Interface {
						ek = AbstractField
					}
					e := &Edge{Kind: ek, Head: head, Tail: tail, FieldName: f.Name}
					if req := f.Directives.ForName("requires"); req != nil {
						if fields := argString(req, "fields"); fields != "" {
							sel, err := operation.ParseFieldSet(fields, name, astSchema)
							if err == nil {
								e.SelfCondition = sel
							}
						}
					}
					head.FieldEdges[f.Name] = append(head.FieldEdges[f.Name], e)
				}
			case ast.Union:
				for _, member := range def.Types {
					tail, ok := g.nodes[nodeKey{sg.Name, member}]
					if !ok {
						continue
					}
					e := &Edge{Kind: TypeCondition, Head: head, Tail: tail, TypeConditionName: member}
					head.TypeConditionEdges[member] = e
				}
			}
		}

		// Interface type-condition edges: every object in this subgraph that
		// declares the interface.
		for name, def := range sg.Schema.Types {
			if def.Kind != ast.Interface {
				continue
			}
			head, ok := g.nodes[nodeKey{sg.Name, name}]
			if !ok {
				continue
			}
			for implName, implDef := range sg.Schema.Types {
				if implDef.Kind != ast.Object || !implements(implDef, name) {
					continue
				}
				tail, ok := g.nodes[nodeKey{sg.Name, implName}]
				if !ok {
					continue
				}
				head.TypeConditionEdges[implName] = &Edge{Kind: TypeCondition, Head: head, Tail: tail, TypeConditionName: implName}
			}
		}
	}

	// Pass 3: cross-subgraph Lookup edges — entity key resolution.
	if err := buildEntityLookups(g, subgraphs); err != nil {
		return nil, err
	}

	// Pass 4: cross-subgraph Lookup edges — root-type jumps, and root index.
	buildRootJumps(g, subgraphs)

	return g, nil
}

func nodeKindOf(def *ast.Definition) (Kind, bool) {
	switch def.Kind {
	case ast.Object:
		return Concrete, true
	case ast.Interface, ast.Union:
		return Abstract, true
	case ast.Enum:
		return Enum, true
	case ast.Scalar:
		return Scalar, true
	default:
		return 0, false
	}
}

func implements(def *ast.Definition, ifaceName string) bool {
	for _, i := range def.Interfaces {
		if i == ifaceName {
			return true
		}
	}
	return false
}

func namedTypeOf(t *ast.Type) string {
	for t.NamedType == "" && t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

func argString(d *ast.Directive, name string) string {
	a := d.Arguments.ForName(name)
	if a == nil || a.Value == nil {
		return ""
	}
	return a.Value.Raw
}

// buildEntityLookups adds, for every entity type name shared by two
// subgraphs, a Lookup edge from the node in the subgraph lacking resolvable
// fields to the node resolving them, keyed by the target's @key fields
// (spec.md §4.5 "Contract": "for every entity type resolvable in subgraph B
// that also exists in subgraph A, a Lookup edge exists from A to B").
func buildEntityLookups(g *Graph, subgraphs *subgraph.Map) error {
	allNames := subgraphs.Names()
	sort.Strings(allNames)

	typeNames := map[string]bool{}
	for _, name := range allNames {
		sg, _ := subgraphs.Get(name)
		for tname, def := range sg.Schema.Types {
			if (def.Kind == ast.Object || def.Kind == ast.Interface) && def.Directives.ForName("key") != nil {
				typeNames[tname] = true
			}
		}
	}

	for typeName := range typeNames {
		for _, bName := range allNames {
			sgB, _ := subgraphs.Get(bName)
			defB, ok := sgB.Schema.Types[typeName]
			if !ok {
				continue
			}
			keyDirectives := defB.Directives
			var keys []string
			for _, d := range keyDirectives {
				if d.Name != "key" {
					continue
				}
				if fields := argString(d, "fields"); fields != "" {
					resolvable := true
					if rv := d.Arguments.ForName("resolvable"); rv != nil && rv.Value != nil && rv.Value.Raw == "false" {
						resolvable = false
					}
					if resolvable {
						keys = append(keys, fields)
					}
				}
			}
			if len(keys) == 0 {
				continue
			}
			tail, ok := g.nodes[nodeKey{bName, typeName}]
			if !ok {
				continue
			}
			for _, aName := range allNames {
				if aName == bName {
					continue
				}
				sgA, _ := subgraphs.Get(aName)
				if _, ok := sgA.Schema.Types[typeName]; !ok {
					continue
				}
				head, ok := g.nodes[nodeKey{aName, typeName}]
				if !ok {
					continue
				}
				for _, fields := range keys {
					sel, err := operation.ParseFieldSet(fields, typeName, sgB.Schema.ToAST())
					if err != nil {
						return errcode.New(errcode.KeyInvalidFields, "subgraph %s: invalid @key fields on %s: %v", bName, typeName, err)
					}
					head.LookupEdges = append(head.LookupEdges, &Edge{Kind: Lookup, Head: head, Tail: tail, TypeConditionName: typeName, KeyCondition: sel})
				}
			}
		}
	}
	return nil
}

// buildRootJumps links every pair of subgraphs defining the same root
// operation type with an unconditional Lookup edge, and records the
// per-operation root node set used as planning entry points.
func buildRootJumps(g *Graph, subgraphs *subgraph.Map) {
	rootKinds := []struct {
		op   ast.Operation
		name func(s *subgraph.Subgraph) string
	}{
		{ast.Query, func(s *subgraph.Subgraph) string { return s.Schema.QueryRootName }},
		{ast.Mutation, func(s *subgraph.Subgraph) string { return s.Schema.MutationRootName }},
		{ast.Subscription, func(s *subgraph.Subgraph) string { return s.Schema.SubscriptionName }},
	}
	for _, rk := range rootKinds {
		var nodes []*Node
		for _, sg := range subgraphs.All() {
			rootName := rk.name(sg)
			if rootName == "" {
				continue
			}
			n, ok := g.nodes[nodeKey{sg.Name, rootName}]
			if !ok {
				continue
			}
			nodes = append(nodes, n)
		}
		if len(nodes) == 0 {
			continue
		}
		g.roots[rk.op] = nodes
		for _, head := range nodes {
			for _, tail := range nodes {
				if head == tail {
					continue
				}
				head.LookupEdges = append(head.LookupEdges, &Edge{Kind: Lookup, Head: head, Tail: tail})
			}
		}
	}
}
