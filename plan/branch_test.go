package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/federation-go/core/federation/position"
	"github.com/federation-go/core/federation/subgraph"
	"github.com/federation-go/core/operation"
	"github.com/federation-go/core/querygraph"
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

func mustBuildGraph(t *testing.T) *querygraph.Graph {
	t.Helper()
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: testSupergraphSDL, Name: "supergraph"})
	require.Nil(t, gqlErr)
	super, err := position.FromAST(doc)
	require.NoError(t, err)
	subgraphs, err := subgraph.Extract(super, subgraph.Options{})
	require.NoError(t, err)
	g, err := querygraph.Build(subgraphs)
	require.NoError(t, err)
	return g
}

func field(name string) operation.Selection {
	return &operation.FieldSelection{Name: name}
}

func TestCloseBranch_DirectFieldStaysInSubgraph(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	ob := &OpenBranch{
		Selection: field("name"),
		Options:   []SimultaneousPaths{{NewGraphPath(node)}},
	}
	cb, err := closeBranch(ob, NewConditionResolver())
	require.NoError(t, err)
	require.NotEmpty(t, cb.Options)
	for _, opt := range cb.Options {
		require.Len(t, opt.Paths, 1)
		assert.Equal(t, "products", opt.Paths[0].Tail.SubgraphName)
	}
}

func TestCloseBranch_UnresolvableFieldJumpsSubgraph(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	ob := &OpenBranch{
		Selection: field("reviews"),
		Options:   []SimultaneousPaths{{NewGraphPath(node)}},
	}
	cb, err := closeBranch(ob, NewConditionResolver())
	require.NoError(t, err)
	require.NotEmpty(t, cb.Options)
	for _, opt := range cb.Options {
		last := opt.Paths[0]
		assert.Equal(t, "reviews", last.Tail.SubgraphName)
		assert.Equal(t, 1, last.SubgraphJumps(), "reaching reviews.reviews required one Lookup edge")
	}
}

func TestGraphPath_AncestorOverriddenByExtension(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	base := NewGraphPath(node)
	edges := node.FieldEdges["name"]
	require.NotEmpty(t, edges)
	extended := base.Extend(edges[0])

	assert.True(t, base.overriddenBy(extended), "extended path carries base's id in its OwnPathIDs")
	assert.False(t, extended.overriddenBy(base), "base never carries extended's id")
}

func TestClosedBranch_PruneKeepsOnlyNonOverriddenOptions(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	base := NewGraphPath(node)
	edges := node.FieldEdges["name"]
	require.NotEmpty(t, edges)
	extended := base.Extend(edges[0])

	cb := &ClosedBranch{
		FieldName: "name",
		Options: []*ClosedPath{
			{Paths: SimultaneousPaths{base}},
			{Paths: SimultaneousPaths{extended}},
		},
	}
	cb.Prune()
	require.Len(t, cb.Options, 1)
	assert.Same(t, extended, cb.Options[0].Paths[0])
}

func TestClosedBranch_OrderSortsBySubgraphJumps(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	cheap := NewGraphPath(node)
	var expensive *GraphPath = NewGraphPath(node)
	for _, le := range node.LookupEdges {
		expensive = expensive.Extend(le)
		break
	}

	cb := &ClosedBranch{
		Options: []*ClosedPath{
			{Paths: SimultaneousPaths{expensive}},
			{Paths: SimultaneousPaths{cheap}},
		},
	}
	cb.Order()
	assert.Same(t, cheap, cb.Options[0].Paths[0])
	assert.Same(t, expensive, cb.Options[1].Paths[0])
}

func TestApplyBudget_TrimsLargestBranchFirst(t *testing.T) {
	big := &ClosedBranch{FieldName: "big", Options: []*ClosedPath{{}, {}, {}, {}}}
	small := &ClosedBranch{FieldName: "small", Options: []*ClosedPath{{}, {}}}

	err := ApplyBudget([]*ClosedBranch{big, small}, 4)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(big.Options)*len(small.Options), 4)
	assert.NotEmpty(t, big.Options)
	assert.NotEmpty(t, small.Options)
}

func TestApplyBudget_NoOpUnderBudget(t *testing.T) {
	a := &ClosedBranch{FieldName: "a", Options: []*ClosedPath{{}}}
	b := &ClosedBranch{FieldName: "b", Options: []*ClosedPath{{}}}

	err := ApplyBudget([]*ClosedBranch{a, b}, 100)
	require.NoError(t, err)
	assert.Len(t, a.Options, 1)
	assert.Len(t, b.Options, 1)
}

func TestConditionResolver_UnconditionalEdgeAlwaysSatisfiable(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)
	edges := node.FieldEdges["name"]
	require.NotEmpty(t, edges)

	r := NewConditionResolver()
	assert.True(t, r.Satisfiable(edges[0], NewGraphPath(node)))
}

func TestConditionResolver_KeyConditionRequiresReachableField(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)
	require.NotEmpty(t, node.LookupEdges)

	r := NewConditionResolver()
	path := NewGraphPath(node)
	for _, le := range node.LookupEdges {
		assert.True(t, r.Satisfiable(le, path), "products.Product resolves id, the key field reviews.Product needs")
	}
}

func selectionSet(sels ...operation.Selection) *operation.NormalizedSelectionSet {
	set := operation.NewNormalizedSelectionSet()
	for _, s := range sels {
		if err := set.Add(s); err != nil {
			panic(err)
		}
	}
	return set
}

func TestCostEstimator_DeeperSelectionCostsMore(t *testing.T) {
	c := NewCostEstimator(10)
	leaf := selectionSet(field("id"))
	nested := selectionSet(&operation.FieldSelection{Name: "product", SelectionSet: leaf})

	shallow := c.SelectionCost(leaf, 0)
	deep := c.SelectionCost(nested, 0)
	assert.Greater(t, deep, shallow)
}

func TestCostEstimator_MemoizesBySelectionSetAndDepth(t *testing.T) {
	c := NewCostEstimator(10)
	set := selectionSet(field("id"), field("name"))

	first := c.SelectionCost(set, 2)
	second := c.SelectionCost(set, 2)
	assert.Equal(t, first, second)

	atOtherDepth := c.SelectionCost(set, 5)
	assert.Greater(t, atOtherDepth, first)
}
