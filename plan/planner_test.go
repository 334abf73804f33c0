package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/operation"
)

func TestPlanner_SingleSubgraphFieldStaysInOneFetch(t *testing.T) {
	g := mustBuildGraph(t)
	p := NewPlanner(g, []string{"products", "reviews"}, DefaultConfig())

	op := &operation.NormalizedOperation{
		RootKind:     ast.Query,
		SelectionSet: selectionSet(&operation.FieldSelection{Name: "product", SelectionSet: selectionSet(field("name"))}),
	}

	fdg, err := p.BuildPlan(op)
	require.NoError(t, err)
	assert.Len(t, fdg.Nodes(), 1, "product and name both resolve in products, no entity jump needed")
	assert.Equal(t, "products", fdg.Nodes()[0].SubgraphName)
}

func TestPlanner_CrossSubgraphFieldSplitsIntoEntityFetch(t *testing.T) {
	g := mustBuildGraph(t)
	p := NewPlanner(g, []string{"products", "reviews"}, DefaultConfig())

	op := &operation.NormalizedOperation{
		RootKind: ast.Query,
		SelectionSet: selectionSet(&operation.FieldSelection{
			Name: "product",
			SelectionSet: selectionSet(
				field("name"),
				&operation.FieldSelection{Name: "reviews", SelectionSet: selectionSet(field("body"))},
			),
		}),
	}

	fdg, err := p.BuildPlan(op)
	require.NoError(t, err)
	require.Len(t, fdg.Nodes(), 2)

	var entityFetch *FetchNode
	for _, n := range fdg.Nodes() {
		if n.EntityFetch {
			entityFetch = n
		}
	}
	require.NotNil(t, entityFetch, "resolving reviews requires an _entities jump into the reviews subgraph")
	assert.Equal(t, "reviews", entityFetch.SubgraphName)
	assert.NotNil(t, entityFetch.Inputs, "entity fetch carries its @key representation inputs")

	order, err := fdg.ExecutionOrder()
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.False(t, order[0].EntityFetch, "the root fetch must precede the entity fetch that depends on it")
}

func TestPlanner_BuildPlanSetsCost(t *testing.T) {
	g := mustBuildGraph(t)
	p := NewPlanner(g, []string{"products", "reviews"}, DefaultConfig())

	op := &operation.NormalizedOperation{
		RootKind:     ast.Query,
		SelectionSet: selectionSet(&operation.FieldSelection{Name: "product", SelectionSet: selectionSet(field("name"))}),
	}

	fdg, err := p.BuildPlan(op)
	require.NoError(t, err)
	assert.Greater(t, fdg.Cost, 0)
}

func TestPlanner_BypassForSingleSubgraphSkipsPlanning(t *testing.T) {
	g := mustBuildGraph(t)
	cfg := DefaultConfig()
	cfg.BypassPlannerForSingleSubgraph = true
	p := NewPlanner(g, []string{"products"}, cfg)

	op := &operation.NormalizedOperation{
		RootKind:     ast.Query,
		SelectionSet: selectionSet(field("product")),
	}

	fdg, err := p.BuildPlan(op)
	require.NoError(t, err)
	require.Len(t, fdg.Nodes(), 1)
	assert.False(t, fdg.Nodes()[0].EntityFetch)
	assert.Same(t, op.SelectionSet, fdg.Nodes()[0].SelectionSet)
}

func TestPlanner_NoRootSubgraphReturnsSatisfiabilityError(t *testing.T) {
	g := mustBuildGraph(t)
	p := NewPlanner(g, []string{"products", "reviews"}, DefaultConfig())

	op := &operation.NormalizedOperation{
		RootKind:     ast.Subscription,
		SelectionSet: selectionSet(field("whatever")),
	}

	_, err := p.BuildPlan(op)
	require.Error(t, err)
}
