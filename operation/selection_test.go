package operation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedSelectionSet_AddMergesByKey(t *testing.T) {
	set := NewNormalizedSelectionSet()

	inner1 := NewNormalizedSelectionSet()
	require.NoError(t, inner1.Add(&FieldSelection{Name: "id"}))

	inner2 := NewNormalizedSelectionSet()
	require.NoError(t, inner2.Add(&FieldSelection{Name: "name"}))

	require.NoError(t, set.Add(&FieldSelection{Name: "user", SelectionSet: inner1}))
	require.NoError(t, set.Add(&FieldSelection{Name: "user", SelectionSet: inner2}))

	require.Equal(t, 1, set.Len())
	merged := set.Selections()[0].(*FieldSelection)
	require.Equal(t, 2, merged.SelectionSet.Len())
}

func TestNormalizedSelectionSet_AddDistinctResponseNamesKeepOrder(t *testing.T) {
	set := NewNormalizedSelectionSet()
	require.NoError(t, set.Add(&FieldSelection{Name: "b"}))
	require.NoError(t, set.Add(&FieldSelection{Name: "a"}))
	require.NoError(t, set.Add(&FieldSelection{Name: "c"}))

	var names []string
	for _, sel := range set.Selections() {
		names = append(names, sel.(*FieldSelection).Name)
	}
	want := []string{"b", "a", "c"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("selection order mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldSelection_WithSelectionSetPreservesIdentity(t *testing.T) {
	f := &FieldSelection{Alias: "u", Name: "user"}
	child := NewNormalizedSelectionSet()

	cp := f.WithSelectionSet(child)

	assert.Same(t, child, cp.SelectionSet)
	assert.Equal(t, f.Alias, cp.Alias)
	assert.Equal(t, f.Name, cp.Name)
	assert.Nil(t, f.SelectionSet, "original must not be mutated")
}

func TestInlineFragmentSelection_WithSelectionSetPreservesTypeCondition(t *testing.T) {
	i := &InlineFragmentSelection{TypeCondition: "User"}
	child := NewNormalizedSelectionSet()

	cp := i.WithSelectionSet(child)

	assert.Same(t, child, cp.SelectionSet)
	assert.Equal(t, "User", cp.TypeCondition)
	assert.Nil(t, i.SelectionSet)
}

func TestNormalizedSelectionSet_AddRejectsCompositeLeafMismatch(t *testing.T) {
	set := NewNormalizedSelectionSet()
	require.NoError(t, set.Add(&FieldSelection{Name: "name"}))

	inner := NewNormalizedSelectionSet()
	err := set.Add(&FieldSelection{Name: "name", SelectionSet: inner})
	require.Error(t, err)
}
