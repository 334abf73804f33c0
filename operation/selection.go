package operation

import "github.com/vektah/gqlparser/v2/ast"

// Selection is one entry of a NormalizedSelectionSet. It is implemented by
// *FieldSelection, *InlineFragmentSelection and *FragmentSpreadSelection —
// a tagged variant rather than a single struct, since merge logic needs to
// type-switch on the concrete shape (spec.md §4.4 open-question decision:
// callers need pattern-matchability over trait-style dispatch).
type Selection interface {
	selectionKey() Key
}

// FieldSelection is a normalized field selection. Its children, if any, are
// already merged and normalized.
type FieldSelection struct {
	Alias        string
	Name         string
	Arguments    ast.ArgumentList
	Directives   ast.DirectiveList
	DeferID      uint64
	SelectionSet *NormalizedSelectionSet // nil for leaf/scalar fields

	// siblingTypename is the response name of a __typename field that was
	// collapsed onto this selection (spec.md §4.4 "Sibling-typename
	// optimization"); "" if none.
	siblingTypename string
}

// SiblingTypename reports the response name of a __typename field the
// normalizer collapsed onto f, if any.
func (f *FieldSelection) SiblingTypename() string {
	return f.siblingTypename
}

func (f *FieldSelection) responseName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// WithSelectionSet returns a shallow copy of f with its SelectionSet
// replaced by set, preserving its sibling-typename tag. Used by the planner
// to re-root a field's children at a different fetch node's selection set
// while keeping the field's own identity (spec.md §4.6 plan assembly).
func (f *FieldSelection) WithSelectionSet(set *NormalizedSelectionSet) *FieldSelection {
	cp := *f
	cp.SelectionSet = set
	return &cp
}

func (f *FieldSelection) selectionKey() Key {
	return Key{
		Kind:          KeyField,
		ResponseName:  f.responseName(),
		DirectivesSig: sortedDirectiveSignature(f.Directives),
		DeferID:       f.DeferID,
	}
}

// InlineFragmentSelection is a normalized `... on Type { }` or bare `... { }`
// selection.
type InlineFragmentSelection struct {
	TypeCondition string // "" if the fragment carries no type condition
	Directives    ast.DirectiveList
	DeferID       uint64
	SelectionSet  *NormalizedSelectionSet
}

// WithSelectionSet returns a shallow copy of i with its SelectionSet
// replaced by set (spec.md §4.6 plan assembly, mirrors
// FieldSelection.WithSelectionSet).
func (i *InlineFragmentSelection) WithSelectionSet(set *NormalizedSelectionSet) *InlineFragmentSelection {
	cp := *i
	cp.SelectionSet = set
	return &cp
}

func (i *InlineFragmentSelection) selectionKey() Key {
	return Key{
		Kind:          KeyInlineFragment,
		TypeCondition: i.TypeCondition,
		DirectivesSig: sortedDirectiveSignature(i.Directives),
		DeferID:       i.DeferID,
	}
}

// FragmentSpreadSelection is a named fragment spread kept as a spread
// rather than inlined. NormalizeOperation never produces one and nothing
// else in this module constructs one; the merge logic and the planner
// still handle the variant.
type FragmentSpreadSelection struct {
	FragmentName string
	Directives   ast.DirectiveList
	DeferID      uint64
}

func (s *FragmentSpreadSelection) selectionKey() Key {
	return Key{
		Kind:          KeyFragmentSpread,
		FragmentName:  s.FragmentName,
		DirectivesSig: sortedDirectiveSignature(s.Directives),
		DeferID:       s.DeferID,
	}
}

// NormalizedSelectionSet holds merged selections in first-seen order: order
// matters for response shaping, but lookup-by-key must stay O(1) during
// merge (spec.md §4.4 step 2).
type NormalizedSelectionSet struct {
	order []Key
	byKey map[Key]Selection
}

// NewNormalizedSelectionSet returns an empty set.
func NewNormalizedSelectionSet() *NormalizedSelectionSet {
	return &NormalizedSelectionSet{byKey: make(map[Key]Selection)}
}

// Len reports the number of top-level selections.
func (s *NormalizedSelectionSet) Len() int {
	return len(s.order)
}

// Selections returns the selections in merge order.
func (s *NormalizedSelectionSet) Selections() []Selection {
	out := make([]Selection, len(s.order))
	for i, k := range s.order {
		out[i] = s.byKey[k]
	}
	return out
}

// Get returns the selection stored under k, if any.
func (s *NormalizedSelectionSet) Get(k Key) (Selection, bool) {
	sel, ok := s.byKey[k]
	return sel, ok
}

// Add inserts sel under its own key, merging with any existing entry per
// the merge contract (spec.md §4.4 step 2). Exported so callers outside
// this package (the planner, building per-fetch selection sets from a
// normalized operation's selections) can assemble sets without duplicating
// merge logic.
func (s *NormalizedSelectionSet) Add(sel Selection) error {
	return mergeInto(s, sel.selectionKey(), sel)
}

// put inserts sel under k if absent, or replaces the existing entry while
// keeping its original position if present. Returns the previous entry
// (nil if none).
func (s *NormalizedSelectionSet) put(k Key, sel Selection) Selection {
	prev, existed := s.byKey[k]
	s.byKey[k] = sel
	if !existed {
		s.order = append(s.order, k)
	}
	return prev
}

// remove deletes k (used when sibling __typename optimization collapses a
// selection into a neighbour, spec.md §4.4 step 4).
func (s *NormalizedSelectionSet) remove(k Key) {
	if _, ok := s.byKey[k]; !ok {
		return
	}
	delete(s.byKey, k)
	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
