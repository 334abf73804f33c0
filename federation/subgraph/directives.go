package subgraph

import "github.com/vektah/gqlparser/v2/ast"

// directiveSetFunc is federationVersions' Handler type: a version's
// directive-definition set, resolved lazily so registering a version never
// builds ast nodes it's not asked for.
type directiveSetFunc func() []*ast.DirectiveDefinition

// federationDirectiveDefinitionsV25 is the directive set the extractor
// materializes into every subgraph at federation v2.5 (spec.md §6
// "Federation-directive set"), registered into federationVersions under
// that version. Grounded on other_examples' gqlgen federation codegen
// plugin (federation.go) for the concrete argument shapes, and on
// original_source/apollo-federation/src/schema/federation_spec_definition.rs
// for the exact v2.5 argument lists.
func federationDirectiveDefinitionsV25() []*ast.DirectiveDefinition {
	str := func(n string) *ast.Type { return &ast.Type{NamedType: n} }
	nonNull := func(n string) *ast.Type { return &ast.Type{NamedType: n, NonNull: true} }
	arg := func(name string, t *ast.Type) *ast.ArgumentDefinition {
		return &ast.ArgumentDefinition{Name: name, Type: t}
	}

	return []*ast.DirectiveDefinition{
		{
			Name:         "key",
			Arguments:    ast.ArgumentDefinitionList{arg("fields", nonNull("FieldSet")), arg("resolvable", str("Boolean"))},
			Locations:    []ast.DirectiveLocation{ast.LocationObject, ast.LocationInterface},
			IsRepeatable: true,
		},
		{
			Name:      "requires",
			Arguments: ast.ArgumentDefinitionList{arg("fields", nonNull("FieldSet"))},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
		},
		{
			Name:      "provides",
			Arguments: ast.ArgumentDefinitionList{arg("fields", nonNull("FieldSet"))},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
		},
		{
			Name:      "external",
			Arguments: ast.ArgumentDefinitionList{arg("reason", str("String"))},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject},
		},
		{
			Name:         "tag",
			Arguments:    ast.ArgumentDefinitionList{arg("name", nonNull("String"))},
			Locations:    []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface, ast.LocationUnion, ast.LocationEnum, ast.LocationEnumValue, ast.LocationScalar, ast.LocationInputObject, ast.LocationInputFieldDefinition, ast.LocationArgumentDefinition},
			IsRepeatable: true,
		},
		{
			Name:      "extends",
			Locations: []ast.DirectiveLocation{ast.LocationObject, ast.LocationInterface},
		},
		{
			Name:      "shareable",
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject},
		},
		{
			Name:      "inaccessible",
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface, ast.LocationUnion, ast.LocationEnum, ast.LocationEnumValue, ast.LocationScalar, ast.LocationInputObject, ast.LocationInputFieldDefinition, ast.LocationArgumentDefinition},
		},
		{
			Name:      "override",
			Arguments: ast.ArgumentDefinitionList{arg("from", nonNull("String"))},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
		},
		{
			Name:         "composeDirective",
			Arguments:    ast.ArgumentDefinitionList{arg("name", nonNull("String"))},
			Locations:    []ast.DirectiveLocation{ast.LocationSchema},
			IsRepeatable: true,
		},
		{
			Name:      "interfaceObject",
			Locations: []ast.DirectiveLocation{ast.LocationObject},
		},
		{
			Name:      "authenticated",
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface, ast.LocationScalar, ast.LocationEnum},
		},
		{
			Name:      "requiresScopes",
			Arguments: ast.ArgumentDefinitionList{arg("scopes", nonNull("Scope"))},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface, ast.LocationScalar, ast.LocationEnum},
		},
	}
}

// federationScalarNames names the two scalars the v2.5 directive set
// introduces (spec.md §6).
var federationScalarNames = []string{"FieldSet", "Scope"}

// executableLocations are the directive locations that a subgraph
// schema must keep parseable so client-supplied operations using them still
// parse (spec.md §4.2 step 8).
var executableLocations = []ast.DirectiveLocation{
	ast.LocationQuery, ast.LocationMutation, ast.LocationSubscription,
	ast.LocationField, ast.LocationFragmentDefinition, ast.LocationFragmentSpread,
	ast.LocationInlineFragment, ast.LocationVariableDefinition,
}

// isExecutableDirective reports whether dd applies to at least one of
// executableLocations, meaning it must be copied into every subgraph
// (spec.md §4.2 step 8) rather than only into subgraphs that reference it.
func isExecutableDirective(dd *ast.DirectiveDefinition) bool {
	for _, loc := range dd.Locations {
		for _, exec := range executableLocations {
			if loc == exec {
				return true
			}
		}
	}
	return false
}
