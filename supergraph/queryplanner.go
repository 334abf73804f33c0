package supergraph

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/operation"
	"github.com/federation-go/core/plan"
	"github.com/federation-go/core/querygraph"
)

// QueryPlannerConfig is the planner's configuration surface (spec.md §6).
type QueryPlannerConfig = plan.Config

// QueryPlanner ties together operation normalization and query planning
// over one Supergraph (spec.md §6 "QueryPlanner::new").
type QueryPlanner struct {
	apiSchema            *ast.Schema
	interfaceObjectTypes map[string]bool
	graph                *querygraph.Graph
	inner                *plan.Planner
	// reuseQueryFragments records config.ReuseQueryFragments. Re-introducing
	// fragment spreads is a printing concern over a subgraph query document
	// (spec.md §1: printing is the parser library's job, not this core's);
	// this core's output is the FetchDependencyGraph's NormalizedSelectionSets.
	// The flag is only stored: nothing in this module reads it and no method
	// exposes it, so no fragment spreads are re-introduced.
	reuseQueryFragments bool
}

// NewQueryPlanner builds the federated query graph for super and returns a
// planner configured per config (spec.md §6).
func NewQueryPlanner(super *Supergraph, config QueryPlannerConfig) (*QueryPlanner, error) {
	graph, err := super.Graph()
	if err != nil {
		return nil, err
	}
	interfaceObjectTypes, err := super.interfaceObjectTypes()
	if err != nil {
		return nil, err
	}
	apiSchema, err := super.ToAPISchema(APISchemaOptions{StripFederationDirectives: false})
	if err != nil {
		return nil, err
	}
	return &QueryPlanner{
		apiSchema:            apiSchema,
		interfaceObjectTypes: interfaceObjectTypes,
		graph:                graph,
		inner:                plan.NewPlanner(graph, super.subgraphNames(), config),
		reuseQueryFragments:  config.ReuseQueryFragments,
	}, nil
}

// BuildPlan normalizes opText (and any fragments it references) against the
// supergraph's API schema and runs the planner over it (spec.md §6
// "QueryPlanner::build_plan").
func (qp *QueryPlanner) BuildPlan(opText string, operationName string) (*QueryPlan, error) {
	doc, perr := parser.ParseQuery(&ast.Source{Input: opText, Name: "operation"})
	if perr != nil {
		return nil, errcode.New(errcode.InvalidGraphQL, "%s", perr.Error())
	}

	op := doc.Operations.ForName(operationName)
	if op == nil && operationName == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0]
	}
	if op == nil {
		return nil, errcode.New(errcode.InvalidGraphQL, "no operation named %q", operationName)
	}

	normalized, err := operation.Normalize(op, doc.Fragments, qp.apiSchema, qp.interfaceObjectTypes)
	if err != nil {
		return nil, errcode.WrapInternal(err)
	}

	fdg, err := qp.inner.BuildPlan(normalized)
	if err != nil {
		return nil, err
	}
	return &QueryPlan{id: uuid.NewString(), graph: fdg}, nil
}

// QueryPlan is the planner's output, wrapping the FetchDependencyGraph with
// transport-agnostic marshaling (spec.md §6 "[ADD] MarshalPlanJSON").
type QueryPlan struct {
	id    string
	graph *plan.FetchDependencyGraph
}

// FetchDependencyGraph returns the underlying dependency DAG.
func (p *QueryPlan) FetchDependencyGraph() *plan.FetchDependencyGraph { return p.graph }

// ID is a scratch correlation id for this plan, useful for tying a logged
// plan to the request that produced it. It carries no planning meaning of
// its own and is regenerated on every BuildPlan call.
func (p *QueryPlan) ID() string { return p.id }

// Cost returns the planner's recursive selection-cost estimate for this
// plan (spec.md §4.6 "Cost function"), the metric the planner itself
// minimized among candidate paths while assembling it.
func (p *QueryPlan) Cost() int { return p.graph.Cost }

// MarshalPlanJSON renders the plan as a debug/export JSON document: one
// entry per fetch node in execution order, with its subgraph, parent type
// and entity-fetch flag (spec.md §6 "[ADD]"). It is not a wire format any
// runtime executes — execution is out of scope (spec.md §1).
func (p *QueryPlan) MarshalPlanJSON() ([]byte, error) {
	order, err := p.graph.ExecutionOrder()
	if err != nil {
		return nil, err
	}
	doc := []byte(`{"kind":"QueryPlan","nodes":[]}`)
	doc, err = sjson.SetBytes(doc, "id", p.id)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "cost", p.graph.Cost)
	if err != nil {
		return nil, err
	}
	for i, n := range order {
		var perr error
		path := func(field string) string { return "nodes." + strconv.Itoa(i) + "." + field }
		doc, perr = sjson.SetBytes(doc, path("subgraph"), n.SubgraphName)
		if perr != nil {
			return nil, perr
		}
		doc, perr = sjson.SetBytes(doc, path("parentType"), n.ParentType)
		if perr != nil {
			return nil, perr
		}
		doc, perr = sjson.SetBytes(doc, path("entityFetch"), n.EntityFetch)
		if perr != nil {
			return nil, perr
		}
	}
	return pretty.Pretty(doc), nil
}
