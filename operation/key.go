// Package operation normalizes a parsed GraphQL operation into a canonical
// merged form: fragments expanded, mergeable selections merged, directive
// arguments sorted, sibling __typename tagged onto a neighbour (spec.md
// §4.4, §3 "Normalized operation").
//
// Grounded on original_source/src/query_plan/operation.rs for the merge
// contract and Key shape, and on other_examples' nautilus-gateway
// merge_test.go for the merge-by-response-key test idiom.
package operation

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// KeyKind distinguishes the three selection shapes a Key can address
// (spec.md §3 "Key").
type KeyKind uint8

const (
	KeyField KeyKind = iota
	KeyFragmentSpread
	KeyInlineFragment
)

// Key canonically identifies a selection for merging purposes. Two
// selections with equal keys are mergeable (spec.md §3).
type Key struct {
	Kind          KeyKind
	ResponseName  string // field key: alias or name
	FragmentName  string // fragment spread key
	TypeCondition string // inline fragment key, "" if none
	DirectivesSig uint64 // hash of the sorted directive-argument list
	DeferID       uint64 // 0 means "not deferred"; nonzero ids never collide
}

// sortedDirectiveSignature hashes a directive list after sorting each
// directive's arguments by name, so semantically equal directive
// applications collide regardless of source order (spec.md §4.4 step 3,
// scenario S5).
func sortedDirectiveSignature(directives ast.DirectiveList) uint64 {
	h := xxhash.New()
	names := make([]string, len(directives))
	for i, d := range directives {
		names[i] = d.Name
	}
	order := make([]int, len(directives))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return names[order[a]] < names[order[b]] })
	for _, idx := range order {
		d := directives[idx]
		_, _ = h.WriteString(d.Name)
		_, _ = h.Write([]byte{0})
		args := make([]*ast.Argument, len(d.Arguments))
		copy(args, d.Arguments)
		sort.Slice(args, func(a, b int) bool { return args[a].Name < args[b].Name })
		for _, a := range args {
			_, _ = h.WriteString(a.Name)
			_, _ = h.Write([]byte{0})
			writeValueSignature(h, a.Value)
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// writeValueSignature writes a deterministic encoding of v (including
// nested object/list values) so structurally equal argument values hash
// identically regardless of how they were originally written.
func writeValueSignature(h *xxhash.Digest, v *ast.Value) {
	if v == nil {
		return
	}
	_, _ = h.WriteString(v.Raw)
	_, _ = h.Write([]byte{1})
	children := make([]ast.ChildValue, len(v.Children))
	copy(children, v.Children)
	sort.Slice(children, func(a, b int) bool { return children[a].Name < children[b].Name })
	for _, c := range children {
		_, _ = h.WriteString(c.Name)
		_, _ = h.Write([]byte{2})
		writeValueSignature(h, c.Value)
	}
}

func (k Key) String() string {
	switch k.Kind {
	case KeyField:
		return "field:" + k.ResponseName
	case KeyFragmentSpread:
		return "spread:" + k.FragmentName
	default:
		return "inline:" + k.TypeCondition
	}
}
