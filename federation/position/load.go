package position

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/errcode"
)

// FromAST builds a building-state Schema from a parsed (but not yet
// validated) schema document. gqlparser's validator collapses a
// SchemaDocument into an *ast.Schema that no longer carries the raw
// schema-definition directive list, so this module consumes the earlier
// SchemaDocument stage instead — it is the one place upstream of validation
// where `schema @link(...) { ... }` is still inspectable (spec.md §4.1
// "Algorithm — initial referencer build").
func FromAST(doc *ast.SchemaDocument) (*Schema, error) {
	s := New()

	for _, def := range doc.Definitions {
		if err := (TypePosition{Kind: kindFromAST(def.Kind), TypeName: def.Name}).PreInsert(s); err != nil {
			return nil, err
		}
	}
	for _, dd := range doc.Directives {
		if err := (DirectiveDefinitionPosition{DirectiveName: dd.Name}).PreInsert(s); err != nil {
			return nil, err
		}
	}

	for _, dd := range doc.Directives {
		if _, exists := s.Directives[dd.Name]; !exists {
			if err := (DirectiveDefinitionPosition{DirectiveName: dd.Name}).Insert(s, dd); err != nil {
				return nil, err
			}
		}
	}
	for _, def := range doc.Definitions {
		tp := TypePosition{Kind: kindFromAST(def.Kind), TypeName: def.Name}
		if _, exists := s.Types[def.Name]; !exists {
			if err := tp.Insert(s, def); err != nil {
				return nil, err
			}
		}
	}

	for _, sd := range doc.Schema {
		s.SchemaDirectives = append(s.SchemaDirectives, sd.Directives...)
		for _, d := range sd.Directives {
			if dref := s.Referencers.ForDirective(d.Name); dref != nil {
				dref.SchemaDefinition = true
			}
		}
		if sd.Query != "" {
			if err := (SchemaRootPosition{RootKind: ast.Query}).Insert(s, sd.Query); err != nil {
				return nil, err
			}
		}
		if sd.Mutation != "" {
			if err := (SchemaRootPosition{RootKind: ast.Mutation}).Insert(s, sd.Mutation); err != nil {
				return nil, err
			}
		}
		if sd.Subscription != "" {
			if err := (SchemaRootPosition{RootKind: ast.Subscription}).Insert(s, sd.Subscription); err != nil {
				return nil, err
			}
		}
	}
	if s.QueryRootName == "" {
		if _, ok := s.Types["Query"]; ok {
			if err := (SchemaRootPosition{RootKind: ast.Query}).Insert(s, "Query"); err != nil {
				return nil, err
			}
		}
	}
	if s.MutationRootName == "" {
		if _, ok := s.Types["Mutation"]; ok {
			_ = (SchemaRootPosition{RootKind: ast.Mutation}).Insert(s, "Mutation")
		}
	}
	if s.SubscriptionName == "" {
		if _, ok := s.Types["Subscription"]; ok {
			_ = (SchemaRootPosition{RootKind: ast.Subscription}).Insert(s, "Subscription")
		}
	}

	if err := s.RecomputeLinks(); err != nil {
		return nil, err
	}
	return s, nil
}

func kindFromAST(k ast.DefinitionKind) Kind {
	switch k {
	case ast.Scalar:
		return KindScalar
	case ast.Object:
		return KindObject
	case ast.Interface:
		return KindInterface
	case ast.Union:
		return KindUnion
	case ast.Enum:
		return KindEnum
	case ast.InputObject:
		return KindInputObject
	default:
		return KindScalar
	}
}

// ToAST reconstructs an *ast.Schema snapshot of this building Schema,
// suitable for handing to an external validator (spec.md §1 collaborator).
func (s *Schema) ToAST() *ast.Schema {
	out := &ast.Schema{
		Types:      make(map[string]*ast.Definition, len(s.Types)),
		Directives: make(map[string]*ast.DirectiveDefinition, len(s.Directives)),
	}
	for name, def := range s.Types {
		out.Types[name] = def
	}
	for name, dd := range s.Directives {
		out.Directives[name] = dd
	}
	if s.QueryRootName != "" {
		out.Query = s.Types[s.QueryRootName]
	}
	if s.MutationRootName != "" {
		out.Mutation = s.Types[s.MutationRootName]
	}
	if s.SubscriptionName != "" {
		out.Subscription = s.Types[s.SubscriptionName]
	}
	return out
}

// RequireType fetches a named type, returning an Internal error if absent —
// a small convenience wrapper for callers where a missing type indicates a
// graph-shape bug rather than user input.
func (s *Schema) RequireType(name string) (*ast.Definition, error) {
	d, ok := s.Types[name]
	if !ok {
		return nil, errcode.Internal("no such type %s", name)
	}
	return d, nil
}
