package linkspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func parseSchemaDirectives(t *testing.T, sdl string) ast.DirectiveList {
	t.Helper()
	doc, gqlErr := parser.ParseSchema(&ast.Source{Input: sdl, Name: "s"})
	require.Nil(t, gqlErr)
	require.Len(t, doc.Schema, 1)
	return doc.Schema[0].Directives
}

func TestParse_ResolvesDefaultFeatureName(t *testing.T) {
	directives := parseSchemaDirectives(t, `
		schema @link(url: "https://specs.apollo.dev/link/v1.0") @link(url: "https://specs.apollo.dev/join/v0.3") {
			query: Query
		}
		type Query { hello: String }
	`)
	m, err := Parse(directives)
	require.NoError(t, err)

	join, ok := m.LinkFor("https://specs.apollo.dev/join")
	require.True(t, ok)
	assert.Equal(t, Version{Major: 0, Minor: 3}, join.Version)
	assert.Equal(t, "join__type", join.DirectiveNameInSchema("type"))
	assert.Equal(t, "join__Graph", join.TypeNameInSchema("Graph"))
}

func TestParse_AliasOverridesDefaultName(t *testing.T) {
	directives := parseSchemaDirectives(t, `
		schema @link(url: "https://specs.apollo.dev/link/v1.0") @link(url: "https://specs.apollo.dev/federation/v2.5", as: "fed") {
			query: Query
		}
		type Query { hello: String }
	`)
	m, err := Parse(directives)
	require.NoError(t, err)

	fed, ok := m.LinkFor("https://specs.apollo.dev/federation")
	require.True(t, ok)
	assert.Equal(t, "fed__key", fed.DirectiveNameInSchema("key"))
}

func TestParse_ImportUnprefixesName(t *testing.T) {
	directives := parseSchemaDirectives(t, `
		schema @link(url: "https://specs.apollo.dev/link/v1.0") @link(url: "https://specs.apollo.dev/federation/v2.5", import: ["@key", "@shareable"]) {
			query: Query
		}
		type Query { hello: String }
	`)
	m, err := Parse(directives)
	require.NoError(t, err)

	fed, ok := m.LinkFor("https://specs.apollo.dev/federation")
	require.True(t, ok)
	assert.Equal(t, "key", fed.DirectiveNameInSchema("key"))
	assert.Equal(t, "federation__requires", fed.DirectiveNameInSchema("requires"), "unimported name still takes the default prefix")
}

func TestVersion_Less(t *testing.T) {
	assert.True(t, Version{Major: 0, Minor: 1}.Less(Version{Major: 0, Minor: 2}))
	assert.False(t, Version{Major: 0, Minor: 3}.Less(Version{Major: 0, Minor: 2}))
	assert.True(t, Version{Major: 1, Minor: 0}.Less(Version{Major: 2, Minor: 0}))
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("v2.5")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2, Minor: 5}, v)

	_, err = ParseVersion("garbage")
	require.Error(t, err)
}
