// Package supergraph is the core's public entry point (spec.md §6
// "External interfaces"): it parses a composed supergraph schema, extracts
// subgraphs, builds the federated query graph, and hands out a QueryPlanner.
//
// Grounded on v2/graphql's top-level package.go (a thin façade composing
// the lexer/validator/normalizer/planner) for the "one small façade type
// over several internal packages" shape; the actual composition, extraction
// and planning logic lives in federation/subgraph, querygraph and plan.
package supergraph

import (
	"fmt"

	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/federation/position"
	"github.com/federation-go/core/federation/subgraph"
	"github.com/federation-go/core/querygraph"
)

// Supergraph wraps a validated composed schema plus the subgraphs extracted
// from it (spec.md §6 "Supergraph::new").
type Supergraph struct {
	schema    *position.ValidatedSchema
	subgraphs *subgraph.Map
	logger    abstractlogger.Logger
}

// New parses schemaText as a supergraph SDL document and extracts its
// subgraphs (spec.md §6 "Supergraph::new").
func New(schemaText string) (*Supergraph, error) {
	return newWithLogger(schemaText, abstractlogger.Noop{})
}

// NewWithLogger is New with an explicit logger, following the teacher's
// Planner.config.Logger pattern (SPEC_FULL.md §2 ambient stack: logging).
func NewWithLogger(schemaText string, logger abstractlogger.Logger) (*Supergraph, error) {
	return newWithLogger(schemaText, logger)
}

func newWithLogger(schemaText string, logger abstractlogger.Logger) (*Supergraph, error) {
	if logger == nil {
		logger = abstractlogger.Noop{}
	}
	doc, perr := parser.ParseSchema(&ast.Source{Input: schemaText, Name: "supergraph"})
	if perr != nil {
		return nil, errcode.New(errcode.InvalidGraphQL, "%s", perr.Error())
	}
	building, err := position.FromAST(doc)
	if err != nil {
		return nil, err
	}
	validated, err := building.Validate(nil)
	if err != nil {
		return nil, err
	}
	logger.Debug("supergraph parsed", abstractlogger.Int("types", len(validated.Unwrap().Types)))

	subgraphs, err := subgraph.Extract(validated.Unwrap(), subgraph.Options{})
	if err != nil {
		return nil, err
	}
	logger.Debug("subgraphs extracted", abstractlogger.Int("count", len(subgraphs.Names())))

	return &Supergraph{schema: validated, subgraphs: subgraphs, logger: logger}, nil
}

// Schema returns the underlying validated schema.
func (s *Supergraph) Schema() *position.ValidatedSchema { return s.schema }

// Subgraphs returns the subgraphs reconstructed from the supergraph.
func (s *Supergraph) Subgraphs() *subgraph.Map { return s.subgraphs }

// APISchemaOptions controls ToAPISchema (spec.md §6 "Supergraph::to_api_schema").
type APISchemaOptions struct {
	// StripFederationDirectives removes join/link directive definitions
	// that have no meaning outside composition/extraction, leaving a
	// schema a client-facing validator can use as-is.
	StripFederationDirectives bool
}

// ToAPISchema projects the supergraph down to the schema clients see: with
// opts.StripFederationDirectives set, the join/link type and directive
// definitions are stripped (otherwise the schema is returned unstripped);
// @inaccessible pruning is left to the
// external validator per spec.md §1 (inaccessible-element pruning is a
// composition-time collaborator, out of scope here).
func (s *Supergraph) ToAPISchema(opts APISchemaOptions) (*ast.Schema, error) {
	inner := s.schema.Unwrap()
	out := inner.ToAST()
	if !opts.StripFederationDirectives {
		return out, nil
	}
	stripped := &ast.Schema{
		Types:        map[string]*ast.Definition{},
		Directives:   map[string]*ast.DirectiveDefinition{},
		Query:        out.Query,
		Mutation:     out.Mutation,
		Subscription: out.Subscription,
	}
	for name, def := range out.Types {
		if isFederationInternalType(name) {
			continue
		}
		stripped.Types[name] = def
	}
	for name, dd := range out.Directives {
		if isFederationInternalDirective(name) {
			continue
		}
		stripped.Directives[name] = dd
	}
	return stripped, nil
}

func isFederationInternalType(name string) bool {
	switch name {
	case "join__Graph", "join__FieldSet", "link__Import", "link__Purpose":
		return true
	}
	if len(name) >= 6 && name[:6] == "join__" {
		return true
	}
	if len(name) >= 6 && name[:6] == "link__" {
		return true
	}
	return false
}

func isFederationInternalDirective(name string) bool {
	switch name {
	case "link", "join__graph", "join__type", "join__field", "join__implements", "join__unionMember", "join__enumValue":
		return true
	}
	return false
}

// interfaceObjectTypes collects every interface type name the supergraph
// marks with a @join__type(isInterfaceObject: true) application, the set
// the operation normalizer needs to suppress the sibling-__typename
// optimization for (spec.md §4.4 "Sibling-typename optimization").
func (s *Supergraph) interfaceObjectTypes() (map[string]bool, error) {
	inner := s.schema.Unwrap()
	joinLink, ok := inner.Links.LinkFor("https://specs.apollo.dev/join")
	if !ok {
		return nil, fmt.Errorf("supergraph does not @link the join spec")
	}
	joinTypeDirective := joinLink.DirectiveNameInSchema("type")
	out := map[string]bool{}
	for name, def := range inner.Types {
		if def.Kind != ast.Interface {
			continue
		}
		for _, d := range def.Directives {
			if d.Name != joinTypeDirective {
				continue
			}
			if a := d.Arguments.ForName("isInterfaceObject"); a != nil && a.Value != nil && a.Value.Raw == "true" {
				out[name] = true
			}
		}
	}
	return out, nil
}

// subgraphNames returns the extracted subgraph names, used by QueryPlanner
// to detect the single-subgraph bypass case.
func (s *Supergraph) subgraphNames() []string {
	return s.subgraphs.Names()
}

// Graph lazily builds and returns the federated query graph for s.
func (s *Supergraph) Graph() (*querygraph.Graph, error) {
	return querygraph.Build(s.subgraphs)
}
