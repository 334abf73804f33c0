package position

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/federation/linkspec"
)

// SubgraphMetadata is the optional per-subgraph data a FederationSchema
// carries once it represents one subgraph rather than a supergraph or API
// schema (spec.md §3 "FederationSchema", bullet iv).
type SubgraphMetadata struct {
	FederationSpecVersion linkspec.Version
	// ExternalFields names every field this subgraph marks @external, used
	// by extraction/composition as the "@external tester".
	ExternalFields map[FieldPosition]bool
}

func (m *SubgraphMetadata) IsExternal(p FieldPosition) bool {
	if m == nil || m.ExternalFields == nil {
		return false
	}
	return m.ExternalFields[p]
}

// Schema is a FederationSchema in the "building" state: mutable, not
// guaranteed GraphQL-valid (spec.md §3). Every mutation goes through a
// Position method so the Referencers index never drifts from the actual
// schema content.
type Schema struct {
	Types             map[string]*ast.Definition
	Directives        map[string]*ast.DirectiveDefinition
	SchemaDirectives  ast.DirectiveList
	QueryRootName     string
	MutationRootName  string
	SubscriptionName  string

	Referencers *Referencers
	Links       *linkspec.Metadata
	Subgraph    *SubgraphMetadata
}

// New creates an empty building Schema with the five built-in scalars and
// five built-in directives already present.
func New() *Schema {
	s := &Schema{
		Types:       map[string]*ast.Definition{},
		Directives:  map[string]*ast.DirectiveDefinition{},
		Referencers: NewReferencers(),
	}
	for name := range builtinScalars {
		s.Types[name] = &ast.Definition{Kind: ast.Scalar, Name: name}
		s.Referencers.ReserveType(name)
	}
	for name := range builtinDirectives {
		s.Directives[name] = &ast.DirectiveDefinition{Name: name}
		s.Referencers.ReserveDirective(name)
	}
	s.Links, _ = linkspec.Parse(nil)
	return s
}

// RecomputeLinks re-parses @link applications on the schema definition. Any
// mutator that changes SchemaDirectives must call this afterwards
// (spec.md §4.1, §4.3 "Schema-definition directive changes").
func (s *Schema) RecomputeLinks() error {
	m, err := linkspec.Parse(s.SchemaDirectives)
	if err != nil {
		return err
	}
	s.Links = m
	return nil
}

// ValidatedSchema is the "validated" typestate: immutable, wraps a Schema
// that has passed full GraphQL validation (spec.md §3). It exposes no
// mutators, so once constructed it is safe to share across planning calls
// (spec.md §5).
type ValidatedSchema struct {
	inner *Schema
}

// Validate runs GraphQL validation (delegated to the external parser's
// validator — out of scope per spec.md §1, assumed available) and, on
// success, returns an immutable handle. The transition is one-way: there is
// no method to recover a mutable Schema from a ValidatedSchema.
func (s *Schema) Validate(validate func(*Schema) error) (*ValidatedSchema, error) {
	if validate != nil {
		if err := validate(s); err != nil {
			return nil, err
		}
	}
	return &ValidatedSchema{inner: s}, nil
}

// Unwrap returns the underlying Schema for read-only use. Callers must not
// mutate it; doing so would violate the typestate invariant this type
// exists to enforce.
func (v *ValidatedSchema) Unwrap() *Schema { return v.inner }
