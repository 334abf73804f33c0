package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federation-go/core/operation"
	"github.com/federation-go/core/querygraph"
)

func TestConditionResolver_NestedSelectionMustBeReachableAtTarget(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)
	idEdges := node.FieldEdges["id"]
	require.NotEmpty(t, idEdges, "id must resolve so the nested condition below has somewhere to land")

	r := NewConditionResolver()

	// id's own type (the ID scalar) has no fields at all, so requiring a
	// nested selection under it can never be satisfied.
	unsatisfiable := &querygraph.Edge{
		Kind: querygraph.Lookup,
		Head: node,
		Tail: node,
		KeyCondition: selectionSet(&operation.FieldSelection{
			Name:         "id",
			SelectionSet: selectionSet(field("whatever")),
		}),
	}
	assert.False(t, r.Satisfiable(unsatisfiable, NewGraphPath(node)))
}

func TestConditionResolver_InlineFragmentTypeConditionMustResolve(t *testing.T) {
	g := mustBuildGraph(t)
	node, ok := g.NodeFor("products", "Product")
	require.True(t, ok)

	r := NewConditionResolver()
	cond := &querygraph.Edge{
		Kind: querygraph.Lookup,
		Head: node,
		Tail: node,
		KeyCondition: selectionSet(&operation.InlineFragmentSelection{
			TypeCondition: "NotAType",
			SelectionSet:  selectionSet(field("id")),
		}),
	}
	assert.False(t, r.Satisfiable(cond, NewGraphPath(node)), "Product has no type-condition edge to NotAType")
}
