package querygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/federation-go/core/federation/position"
	"github.com/federation-go/core/federation/subgraph"
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

func mustBuildGraph(t *testing.T) *Graph {
	t.Helper()
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: testSupergraphSDL, Name: "supergraph"})
	require.Nil(t, gqlErr)
	super, err := position.FromAST(doc)
	require.NoError(t, err)
	subgraphs, err := subgraph.Extract(super, subgraph.Options{})
	require.NoError(t, err)
	g, err := Build(subgraphs)
	require.NoError(t, err)
	return g
}

func TestBuild_CreatesNodesPerSubgraphType(t *testing.T) {
	g := mustBuildGraph(t)

	_, ok := g.NodeFor("products", "Product")
	assert.True(t, ok)
	_, ok = g.NodeFor("reviews", "Product")
	assert.True(t, ok)
	_, ok = g.NodeFor("products", "Review")
	assert.False(t, ok, "Review never appears in the products subgraph")
}

func TestBuild_FieldEdgeFollowsOwnership(t *testing.T) {
	g := mustBuildGraph(t)

	productsProduct, ok := g.NodeFor("products", "Product")
	require.True(t, ok)
	_, hasName := productsProduct.FieldEdges["name"]
	assert.True(t, hasName)
	_, hasReviews := productsProduct.FieldEdges["reviews"]
	assert.False(t, hasReviews, "products subgraph doesn't resolve Product.reviews")

	reviewsProduct, ok := g.NodeFor("reviews", "Product")
	require.True(t, ok)
	_, hasReviewsField := reviewsProduct.FieldEdges["reviews"]
	assert.True(t, hasReviewsField)
}

func TestBuild_EntityLookupEdgeCrossesSubgraphs(t *testing.T) {
	g := mustBuildGraph(t)

	productsProduct, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	var found *Edge
	for _, e := range productsProduct.LookupEdges {
		if e.Kind == Lookup && e.Tail.SubgraphName == "reviews" && e.TypeConditionName == "Product" {
			found = e
			break
		}
	}
	require.NotNil(t, found, "expected a Lookup edge from products.Product to reviews.Product")
	require.NotNil(t, found.KeyCondition)
	assert.True(t, found.crossesSubgraph())
}

func TestBuild_RootJumpLinksQueryAcrossSubgraphs(t *testing.T) {
	g := mustBuildGraph(t)

	roots := g.Roots(ast.Query)
	require.Len(t, roots, 2)

	productsQuery, ok := g.NodeFor("products", "Query")
	require.True(t, ok)

	var jumpsToReviews bool
	for _, e := range productsQuery.LookupEdges {
		if e.Tail.SubgraphName == "reviews" {
			jumpsToReviews = true
			assert.Nil(t, e.KeyCondition, "root jumps are unconditional")
		}
	}
	assert.True(t, jumpsToReviews)
}
