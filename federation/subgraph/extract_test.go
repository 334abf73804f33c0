package subgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/federation-go/core/federation/position"
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

func mustLoadSupergraph(t *testing.T) *position.Schema {
	t.Helper()
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: testSupergraphSDL, Name: "supergraph"})
	require.Nil(t, gqlErr)
	s, err := position.FromAST(doc)
	require.NoError(t, err)
	return s
}

func TestExtract_SplitsTypesAcrossSubgraphs(t *testing.T) {
	super := mustLoadSupergraph(t)
	subgraphs, err := Extract(super, Options{})
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"products", "reviews"}, subgraphs.Names())

	products, ok := subgraphs.Get("products")
	require.True(t, ok)
	assert.Equal(t, "http://products", products.URL)
	assert.Contains(t, products.Schema.Types, "Product")
	assert.NotContains(t, products.Schema.Types, "Review", "reviews-only type must not leak into products")

	reviews, ok := subgraphs.Get("reviews")
	require.True(t, ok)
	assert.Contains(t, reviews.Schema.Types, "Review")
	assert.Contains(t, reviews.Schema.Types, "Product")
}

func TestExtract_InjectsEntityRootOperationsWhereKeysExist(t *testing.T) {
	super := mustLoadSupergraph(t)
	subgraphs, err := Extract(super, Options{})
	require.NoError(t, err)

	for _, name := range []string{"products", "reviews"} {
		sg, ok := subgraphs.Get(name)
		require.True(t, ok)
		query, ok := sg.Schema.Types[sg.Schema.QueryRootName]
		require.True(t, ok)
		var hasEntities bool
		for _, f := range query.Fields {
			if f.Name == "_entities" {
				hasEntities = true
			}
		}
		assert.True(t, hasEntities, "subgraph %s resolves a @key type and must expose _entities", name)
		assert.Contains(t, sg.Schema.Types, "_Entity")
	}
}

func TestExtract_FieldOwnershipRespectsJoinField(t *testing.T) {
	super := mustLoadSupergraph(t)
	subgraphs, err := Extract(super, Options{})
	require.NoError(t, err)

	products, _ := subgraphs.Get("products")
	productDef := products.Schema.Types["Product"]
	var hasName, hasReviews bool
	for _, f := range productDef.Fields {
		if f.Name == "name" {
			hasName = true
		}
		if f.Name == "reviews" {
			hasReviews = true
		}
	}
	assert.True(t, hasName, "products subgraph must resolve Product.name")
	assert.False(t, hasReviews, "products subgraph must not resolve Product.reviews, owned by reviews")
}

func TestExtract_RejectsNonJoinSupergraph(t *testing.T) {
	plain := `
		schema { query: Query }
		type Query { hello: String }
	`
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: plain, Name: "plain"})
	require.Nil(t, gqlErr)
	s, err := position.FromAST(doc)
	require.NoError(t, err)

	_, err = Extract(s, Options{})
	require.Error(t, err)
}
