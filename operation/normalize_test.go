package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	_ "github.com/vektah/gqlparser/v2/validator/rules"
)

const testSchemaSDL = `
type Query {
	me: User
}

type User {
	id: ID!
	name: String!
	address: Address
}

type Address {
	city: String!
}
`

func mustNormalize(t *testing.T, query string) *NormalizedSelectionSet {
	t.Helper()
	schemaDoc, gqlErr := parser.ParseSchema(&ast.Source{Input: testSchemaSDL, Name: "schema"})
	require.Nil(t, gqlErr)
	schema, err := validator.ValidateSchemaDocument(schemaDoc)
	require.NoError(t, err)

	queryDoc, gqlErr := parser.ParseQuery(&ast.Source{Input: query, Name: "query"})
	require.Nil(t, gqlErr)

	errs := validator.Validate(schema, queryDoc)
	require.Empty(t, errs)

	op := queryDoc.Operations[0]
	set, err := NormalizeOperation(op, queryDoc.Fragments, schema, nil)
	require.NoError(t, err)
	return set
}

func TestNormalizeOperation_MergesDuplicateFieldSelections(t *testing.T) {
	set := mustNormalize(t, `
		query {
			me { id }
			me { name }
		}
	`)

	require.Equal(t, 1, set.Len())
	me := set.Selections()[0].(*FieldSelection)
	require.Equal(t, 2, me.SelectionSet.Len())
}

func TestNormalizeOperation_InlinesFragmentSpreads(t *testing.T) {
	set := mustNormalize(t, `
		query {
			me { ...UserFields }
		}
		fragment UserFields on User {
			id
			name
		}
	`)

	me := set.Selections()[0].(*FieldSelection)
	assert.Equal(t, 2, me.SelectionSet.Len())
	for _, sel := range me.SelectionSet.Selections() {
		_, ok := sel.(*FieldSelection)
		assert.True(t, ok, "fragment spread should have been inlined into plain fields")
	}
}

func TestNormalizeOperation_CollapsesSiblingTypename(t *testing.T) {
	set := mustNormalize(t, `
		query {
			me {
				__typename
				name
			}
		}
	`)

	me := set.Selections()[0].(*FieldSelection)
	require.Equal(t, 1, me.SelectionSet.Len())
	name := me.SelectionSet.Selections()[0].(*FieldSelection)
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, "__typename", name.SiblingTypename())
}

func TestNormalizeOperation_PreservesTypenameOnInterfaceObjectTypes(t *testing.T) {
	set := mustNormalize(t, `
		query {
			me {
				__typename
				name
			}
		}
	`)
	_ = set

	schemaDoc, gqlErr := parser.ParseSchema(&ast.Source{Input: testSchemaSDL, Name: "schema"})
	require.Nil(t, gqlErr)
	schema, err := validator.ValidateSchemaDocument(schemaDoc)
	require.NoError(t, err)

	queryDoc, gqlErr := parser.ParseQuery(&ast.Source{Input: `query { me { __typename name } }`, Name: "query"})
	require.Nil(t, gqlErr)

	op := queryDoc.Operations[0]
	withInterfaceObject, err := NormalizeOperation(op, queryDoc.Fragments, schema, map[string]bool{"User": true})
	require.NoError(t, err)

	me := withInterfaceObject.Selections()[0].(*FieldSelection)
	require.Equal(t, 2, me.SelectionSet.Len(), "interfaceObject types keep __typename as its own selection")
}
