package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const testSDL = `
schema {
	query: Query
}

type Query {
	user(id: ID!): User
}

type User implements Node {
	id: ID!
	name: String!
}

interface Node {
	id: ID!
}
`

func mustLoad(t *testing.T) *Schema {
	t.Helper()
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: testSDL, Name: "schema"})
	require.Nil(t, gqlErr)
	s, err := FromAST(doc)
	require.NoError(t, err)
	return s
}

func TestFromAST_RegistersRootAndTypes(t *testing.T) {
	s := mustLoad(t)

	assert.Equal(t, "Query", s.QueryRootName)
	assert.Contains(t, s.Types, "User")
	assert.Contains(t, s.Types, "Node")
	assert.True(t, s.Referencers.HasType("User"))
}

func TestFromAST_SchemaRootIsReferenced(t *testing.T) {
	s := mustLoad(t)

	refs := s.Referencers.ForType("Query")
	require.NotNil(t, refs)
	assert.True(t, refs.SchemaRoots.Contains(SchemaRootPosition{RootKind: ast.Query}))
}

func TestFromAST_ImplementsIsReferenced(t *testing.T) {
	s := mustLoad(t)

	nodeRefs := s.Referencers.ForType("Node")
	require.NotNil(t, nodeRefs)
	assert.Equal(t, 1, nodeRefs.Implements.Len())
}

func TestToAST_RoundTripsTypes(t *testing.T) {
	s := mustLoad(t)
	out := s.ToAST()

	require.NotNil(t, out.Query)
	assert.Equal(t, "Query", out.Query.Name)
	assert.Contains(t, out.Types, "User")
}

func TestTypePosition_InsertThenRemoveDropsReferencerSlot(t *testing.T) {
	s := New()
	tp := TypePosition{Kind: KindObject, TypeName: "Widget"}
	require.NoError(t, tp.PreInsert(s))
	require.True(t, s.Referencers.HasType("Widget"))

	require.NoError(t, tp.Insert(s, &ast.Definition{Kind: ast.Object, Name: "Widget"}))
	assert.Contains(t, s.Types, "Widget")

	require.NoError(t, tp.RemoveRecursive(s))
	assert.NotContains(t, s.Types, "Widget")
	assert.False(t, s.Referencers.HasType("Widget"))
}

func TestTypePosition_PreInsertRejectsDuplicate(t *testing.T) {
	s := New()
	tp := TypePosition{Kind: KindObject, TypeName: "Widget"}
	require.NoError(t, tp.PreInsert(s))
	require.Error(t, tp.PreInsert(s))
}
