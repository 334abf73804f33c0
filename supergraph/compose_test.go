package supergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/federation/position"
)

func mustValidatedSchema(t *testing.T, sdl string) *position.ValidatedSchema {
	t.Helper()
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: sdl, Name: "s"})
	require.Nil(t, gqlErr)
	s, err := position.FromAST(doc)
	require.NoError(t, err)
	v, err := s.Validate(nil)
	require.NoError(t, err)
	return v
}

func TestCompose_MergesDisjointSubgraphsSuccessfully(t *testing.T) {
	a := mustValidatedSchema(t, `
		schema { query: Query }
		type Query { product(id: ID!): Product }
		type Product { id: ID! name: String }
	`)
	b := mustValidatedSchema(t, `
		schema { query: Query }
		type Query { review(id: ID!): Review }
		type Review { id: ID! body: String }
	`)

	sg, mergeErr := Compose([]ValidSubgraph{
		{Name: "products", URL: "http://products", Schema: a},
		{Name: "reviews", URL: "http://reviews", Schema: b},
	})
	require.Nil(t, mergeErr)
	require.NotNil(t, sg)

	inner := sg.Schema().Unwrap()
	assert.Contains(t, inner.Types, "Product")
	assert.Contains(t, inner.Types, "Review")
}

func TestCompose_FlagsFieldTypeMismatch(t *testing.T) {
	a := mustValidatedSchema(t, `
		schema { query: Query }
		type Query { widget: Widget }
		type Widget { id: ID! weight: Int }
	`)
	b := mustValidatedSchema(t, `
		schema { query: Query }
		type Query { widget: Widget }
		type Widget { id: ID! weight: String }
	`)

	_, mergeErr := Compose([]ValidSubgraph{
		{Name: "a", Schema: a},
		{Name: "b", Schema: b},
	})
	require.NotNil(t, mergeErr)
	require.True(t, mergeErr.HasErrors())
	assert.Equal(t, errcode.FieldTypeMismatch, mergeErr.Errors[0].Code)
}

func TestCompose_FlagsTypeKindMismatch(t *testing.T) {
	a := mustValidatedSchema(t, `
		schema { query: Query }
		type Query { hello: String }
		type Thing { id: ID! }
	`)
	b := mustValidatedSchema(t, `
		schema { query: Query }
		type Query { hello: String }
		interface Thing { id: ID! }
	`)

	_, mergeErr := Compose([]ValidSubgraph{
		{Name: "a", Schema: a},
		{Name: "b", Schema: b},
	})
	require.NotNil(t, mergeErr)
	require.True(t, mergeErr.HasErrors())
	assert.Equal(t, errcode.TypeKindMismatch, mergeErr.Errors[0].Code)
}

func TestCompose_RequiresAQueryType(t *testing.T) {
	a := mustValidatedSchema(t, `
		schema { query: EmptyQuery }
		type EmptyQuery { ok: Boolean }
	`)

	_, mergeErr := Compose([]ValidSubgraph{
		{Name: "a", Schema: a},
	})
	require.NotNil(t, mergeErr)
	require.True(t, mergeErr.HasErrors())
	var sawNoQueries bool
	for _, e := range mergeErr.Errors {
		if e.Code == errcode.NoQueries {
			sawNoQueries = true
		}
	}
	assert.True(t, sawNoQueries)
}
