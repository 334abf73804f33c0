package operation

import "github.com/vektah/gqlparser/v2/ast"

// NormalizedOperation is the normalizer's top-level output (spec.md §3
// "Normalized operation"): a root kind plus a canonicalized selection set,
// with fragments already inlined so downstream consumers (the query
// planner) never need to re-resolve a fragment spread.
type NormalizedOperation struct {
	RootKind     ast.Operation
	Name         string
	Variables    ast.VariableDefinitionList
	Directives   ast.DirectiveList
	SelectionSet *NormalizedSelectionSet

	// Fragments preserves the operation's original named fragments for
	// callers that want to re-introduce fragment spreads in subgraph
	// queries (the reuse_query_fragments config option, spec.md §6).
	Fragments ast.FragmentDefinitionList
}

// Normalize is the package's public entry point (spec.md §6
// `normalize_operation`): it normalizes op's selection set against schema
// and wraps the result together with the operation's other top-level
// fields.
func Normalize(op *ast.OperationDefinition, fragments ast.FragmentDefinitionList, schema *ast.Schema, interfaceObjectTypes map[string]bool) (*NormalizedOperation, error) {
	set, err := NormalizeOperation(op, fragments, schema, interfaceObjectTypes)
	if err != nil {
		return nil, err
	}
	return &NormalizedOperation{
		RootKind:     op.Operation,
		Name:         op.Name,
		Variables:    op.VariableDefinitions,
		Directives:   op.Directives,
		SelectionSet: set,
		Fragments:    fragments,
	}, nil
}
