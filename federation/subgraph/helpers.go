package subgraph

import "github.com/vektah/gqlparser/v2/ast"

// directivesNamed returns every application of name in list, since several
// @join__* directives are repeatable (spec.md §4.2) and gqlparser's
// DirectiveList.ForName only returns the first match.
func directivesNamed(list ast.DirectiveList, name string) []*ast.Directive {
	var out []*ast.Directive
	for _, d := range list {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}
