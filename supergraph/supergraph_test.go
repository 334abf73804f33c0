package supergraph

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testSupergraphSDL = `
schema
	@link(url: "https://specs.apollo.dev/link/v1.0")
	@link(url: "https://specs.apollo.dev/join/v0.3", for: EXECUTION)
{
	query: Query
}

directive @join__field(graph: join__Graph, requires: join__FieldSet, provides: join__FieldSet, type: String, external: Boolean, override: String) repeatable on FIELD_DEFINITION
directive @join__graph(name: String!, url: String!) on ENUM_VALUE
directive @join__implements(graph: join__Graph!, interface: String!) repeatable on OBJECT | INTERFACE
directive @join__type(graph: join__Graph!, key: join__FieldSet, extension: Boolean! = false, resolvable: Boolean! = true, isInterfaceObject: Boolean! = false) repeatable on OBJECT | INTERFACE | UNION | ENUM | INPUT_OBJECT | SCALAR
directive @join__unionMember(graph: join__Graph!, member: String!) repeatable on UNION
directive @link(url: String, as: String, for: link__Purpose, import: [link__Import]) repeatable on SCHEMA

scalar join__FieldSet
scalar link__Import

enum link__Purpose {
	SECURITY
	EXECUTION
}

enum join__Graph {
	PRODUCTS @join__graph(name: "products", url: "http://products")
	REVIEWS @join__graph(name: "reviews", url: "http://reviews")
}

type Query
	@join__type(graph: PRODUCTS)
	@join__type(graph: REVIEWS)
{
	product(id: ID!): Product @join__field(graph: PRODUCTS)
}

type Product
	@join__type(graph: PRODUCTS, key: "id")
	@join__type(graph: REVIEWS, key: "id")
{
	id: ID!
	name: String @join__field(graph: PRODUCTS)
	reviews: [Review!]! @join__field(graph: REVIEWS)
}

type Review
	@join__type(graph: REVIEWS)
{
	id: ID!
	body: String!
}
`

func mustNewSupergraph(t *testing.T) *Supergraph {
	t.Helper()
	sg, err := New(testSupergraphSDL)
	require.NoError(t, err)
	return sg
}

func TestNew_ExtractsSubgraphsAndBuildsGraph(t *testing.T) {
	sg := mustNewSupergraph(t)

	assert.ElementsMatch(t, []string{"products", "reviews"}, sg.Subgraphs().Names())

	g, err := sg.Graph()
	require.NoError(t, err)
	_, ok := g.NodeFor("products", "Product")
	assert.True(t, ok)
}

func TestNew_RejectsInvalidGraphQL(t *testing.T) {
	_, err := New("not a schema {{{")
	require.Error(t, err)
}

func TestToAPISchema_StripsFederationPlumbing(t *testing.T) {
	sg := mustNewSupergraph(t)

	full, err := sg.ToAPISchema(APISchemaOptions{StripFederationDirectives: false})
	require.NoError(t, err)
	assert.Contains(t, full.Types, "join__Graph")

	stripped, err := sg.ToAPISchema(APISchemaOptions{StripFederationDirectives: true})
	require.NoError(t, err)
	assert.NotContains(t, stripped.Types, "join__Graph")
	assert.Contains(t, stripped.Types, "Product")
	assert.NotContains(t, stripped.Directives, "join__type")
}

func TestInterfaceObjectTypes_EmptyWhenNoneDeclared(t *testing.T) {
	sg := mustNewSupergraph(t)

	set, err := sg.interfaceObjectTypes()
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestQueryPlanner_BuildPlanProducesExecutableOrderAndJSON(t *testing.T) {
	sg := mustNewSupergraph(t)
	qp, err := NewQueryPlanner(sg, QueryPlannerConfig{MaxEvaluatedPlans: 100})
	require.NoError(t, err)

	plan, err := qp.BuildPlan(`query { product(id: "1") { name reviews { body } } }`, "")
	require.NoError(t, err)

	fdg := plan.FetchDependencyGraph()
	require.NotEmpty(t, fdg.Nodes())
	order, err := fdg.ExecutionOrder()
	require.NoError(t, err)
	assert.Len(t, order, len(fdg.Nodes()))
	assert.GreaterOrEqual(t, plan.Cost(), 0)

	doc, err := plan.MarshalPlanJSON()
	require.NoError(t, err)
	parsed := gjson.ParseBytes(doc)
	assert.Equal(t, "QueryPlan", parsed.Get("kind").String())
	assert.Equal(t, plan.ID(), parsed.Get("id").String())
	assert.Equal(t, float64(plan.Cost()), parsed.Get("cost").Float())

	nodes := parsed.Get("nodes").Array()
	require.Len(t, nodes, len(order))
	for i, n := range nodes {
		assert.Equal(t, order[i].SubgraphName, n.Get("subgraph").String())
		assert.Equal(t, order[i].ParentType, n.Get("parentType").String())
	}
}

// TestQueryPlanner_BuildPlanIsStructurallyDeterministic rebuilds the same
// operation twice and checks the fetch shape matches, ignoring the
// per-call random id (spec.md §6 "[ADD] MarshalPlanJSON").
func TestQueryPlanner_BuildPlanIsStructurallyDeterministic(t *testing.T) {
	sg := mustNewSupergraph(t)
	qp, err := NewQueryPlanner(sg, QueryPlannerConfig{MaxEvaluatedPlans: 100})
	require.NoError(t, err)

	const opText = `query { product(id: "1") { name reviews { body } } }`
	plan1, err := qp.BuildPlan(opText, "")
	require.NoError(t, err)
	plan2, err := qp.BuildPlan(opText, "")
	require.NoError(t, err)

	shape := func(p *QueryPlan) []map[string]any {
		order, err := p.FetchDependencyGraph().ExecutionOrder()
		require.NoError(t, err)
		out := make([]map[string]any, len(order))
		for i, n := range order {
			out[i] = map[string]any{
				"subgraph":    n.SubgraphName,
				"parentType":  n.ParentType,
				"entityFetch": n.EntityFetch,
			}
		}
		return out
	}

	if diff := pretty.Compare(shape(plan1), shape(plan2)); diff != "" {
		t.Fatalf("fetch plan shape not deterministic across BuildPlan calls (-got1 +got2):\n%s", diff)
	}
	assert.NotEqual(t, plan1.ID(), plan2.ID(), "each BuildPlan call mints its own correlation id")
}

func TestQueryPlanner_BuildPlanRejectsUnknownOperationName(t *testing.T) {
	sg := mustNewSupergraph(t)
	qp, err := NewQueryPlanner(sg, QueryPlannerConfig{})
	require.NoError(t, err)

	_, err = qp.BuildPlan(`query Named { product(id: "1") { name } }`, "DoesNotExist")
	require.Error(t, err)
}
