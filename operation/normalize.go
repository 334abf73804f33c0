package operation

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/internal/idgen"
)

// NormalizeOperation turns op's selection set into canonical form: fragments
// inlined or re-expressed as inline fragments, mergeable selections merged,
// __schema/__type dropped, sibling __typename tagged (spec.md §4.4).
//
// schema is the API schema the operation was parsed against.
// interfaceObjectTypes names the interfaces synthesized from
// @interfaceObject, which suppress the sibling-typename optimization since
// their concrete __typename is meaningful per subgraph (spec.md §4.4).
func NormalizeOperation(op *ast.OperationDefinition, fragments ast.FragmentDefinitionList, schema *ast.Schema, interfaceObjectTypes map[string]bool) (*NormalizedSelectionSet, error) {
	root := rootTypeName(op.Operation, schema)
	if root == "" {
		return nil, fmt.Errorf("operation %q: schema has no root type for %s", op.Name, op.Operation)
	}
	byName := make(map[string]*ast.FragmentDefinition, len(fragments))
	for _, f := range fragments {
		byName[f.Name] = f
	}
	n := &normalizer{
		schema:               schema,
		fragments:            byName,
		interfaceObjectTypes: interfaceObjectTypes,
	}
	return n.normalizeSet(op.SelectionSet, root)
}

func rootTypeName(op ast.Operation, schema *ast.Schema) string {
	switch op {
	case ast.Query:
		if schema.Query != nil {
			return schema.Query.Name
		}
	case ast.Mutation:
		if schema.Mutation != nil {
			return schema.Mutation.Name
		}
	case ast.Subscription:
		if schema.Subscription != nil {
			return schema.Subscription.Name
		}
	}
	return ""
}

type normalizer struct {
	schema               *ast.Schema
	fragments            map[string]*ast.FragmentDefinition
	interfaceObjectTypes map[string]bool
}

func (n *normalizer) normalizeSet(set ast.SelectionSet, parentType string) (*NormalizedSelectionSet, error) {
	result := NewNormalizedSelectionSet()
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if s.Name == "__schema" || s.Name == "__type" {
				continue
			}
			if err := n.normalizeField(result, s, parentType); err != nil {
				return nil, err
			}

		case *ast.FragmentSpread:
			frag, ok := n.fragments[s.Name]
			if !ok {
				return nil, fmt.Errorf("unknown fragment %q", s.Name)
			}
			if frag.TypeCondition == parentType && len(s.Directives) == 0 {
				child, err := n.normalizeSet(frag.SelectionSet, parentType)
				if err != nil {
					return nil, err
				}
				if err := mergeAll(result, child); err != nil {
					return nil, err
				}
				continue
			}
			child, err := n.normalizeSet(frag.SelectionSet, frag.TypeCondition)
			if err != nil {
				return nil, err
			}
			ifs := &InlineFragmentSelection{
				TypeCondition: frag.TypeCondition,
				Directives:    s.Directives,
				DeferID:       deferIDFor(s.Directives),
				SelectionSet:  child,
			}
			if err := mergeInto(result, ifs.selectionKey(), ifs); err != nil {
				return nil, err
			}

		case *ast.InlineFragment:
			cond := s.TypeCondition
			if (cond == "" || cond == parentType) && len(s.Directives) == 0 {
				child, err := n.normalizeSet(s.SelectionSet, parentType)
				if err != nil {
					return nil, err
				}
				if err := mergeAll(result, child); err != nil {
					return nil, err
				}
				continue
			}
			effectiveParent := cond
			if effectiveParent == "" {
				effectiveParent = parentType
			}
			child, err := n.normalizeSet(s.SelectionSet, effectiveParent)
			if err != nil {
				return nil, err
			}
			ifs := &InlineFragmentSelection{
				TypeCondition: cond,
				Directives:    s.Directives,
				DeferID:       deferIDFor(s.Directives),
				SelectionSet:  child,
			}
			if err := mergeInto(result, ifs.selectionKey(), ifs); err != nil {
				return nil, err
			}
		}
	}
	n.applySiblingTypename(result, parentType)
	return result, nil
}

func (n *normalizer) normalizeField(dst *NormalizedSelectionSet, f *ast.Field, parentType string) error {
	var child *NormalizedSelectionSet
	if fieldType := n.fieldTypeName(f, parentType); fieldType != "" && n.isComposite(fieldType) && len(f.SelectionSet) > 0 {
		c, err := n.normalizeSet(f.SelectionSet, fieldType)
		if err != nil {
			return err
		}
		child = c
	}
	fs := &FieldSelection{
		Alias:        f.Alias,
		Name:         f.Name,
		Arguments:    f.Arguments,
		Directives:   f.Directives,
		DeferID:      deferIDFor(f.Directives),
		SelectionSet: child,
	}
	return mergeInto(dst, fs.selectionKey(), fs)
}

// fieldTypeName resolves f's named return type. gqlparser populates
// f.Definition during validation; this falls back to a direct schema lookup
// so the normalizer also works on documents validated by hand.
func (n *normalizer) fieldTypeName(f *ast.Field, parentType string) string {
	if f.Definition != nil && f.Definition.Type != nil {
		return namedTypeOf(f.Definition.Type)
	}
	if f.Name == "__typename" {
		return "String"
	}
	def, ok := n.schema.Types[parentType]
	if !ok {
		return ""
	}
	for _, field := range def.Fields {
		if field.Name == f.Name {
			return namedTypeOf(field.Type)
		}
	}
	return ""
}

func namedTypeOf(t *ast.Type) string {
	for t.NamedType == "" && t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

func (n *normalizer) isComposite(typeName string) bool {
	def, ok := n.schema.Types[typeName]
	if !ok {
		return false
	}
	switch def.Kind {
	case ast.Object, ast.Interface, ast.Union:
		return true
	default:
		return false
	}
}

func deferIDFor(directives ast.DirectiveList) uint64 {
	if directives.ForName("defer") == nil {
		return 0
	}
	return idgen.Deferred.Next()
}

// mergeInto inserts sel under key into dst, merging with any existing entry
// per the merge contract (spec.md §4.4 step 2).
func mergeInto(dst *NormalizedSelectionSet, key Key, sel Selection) error {
	prev, existed := dst.Get(key)
	if !existed {
		dst.put(key, sel)
		return nil
	}
	switch p := prev.(type) {
	case *FieldSelection:
		cur, ok := sel.(*FieldSelection)
		if !ok {
			return fmt.Errorf("internal: key collision between field and non-field selection %q", key)
		}
		return mergeFieldSelections(p, cur)
	case *InlineFragmentSelection:
		cur, ok := sel.(*InlineFragmentSelection)
		if !ok {
			return fmt.Errorf("internal: key collision between inline fragment and non-fragment selection %q", key)
		}
		return mergeInlineFragments(p, cur)
	case *FragmentSpreadSelection:
		return nil
	default:
		return fmt.Errorf("internal: unhandled selection kind for key %q", key)
	}
}

func mergeFieldSelections(dst, src *FieldSelection) error {
	if (dst.SelectionSet == nil) != (src.SelectionSet == nil) {
		return fmt.Errorf("cannot merge field %q: one selection is composite and the other is not", dst.responseName())
	}
	if dst.SelectionSet != nil {
		return mergeAll(dst.SelectionSet, src.SelectionSet)
	}
	return nil
}

func mergeInlineFragments(dst, src *InlineFragmentSelection) error {
	return mergeAll(dst.SelectionSet, src.SelectionSet)
}

// mergeAll merges every selection of src into dst, in dst's existing order
// followed by any selections new to dst.
func mergeAll(dst, src *NormalizedSelectionSet) error {
	for _, sel := range src.Selections() {
		if err := mergeInto(dst, sel.selectionKey(), sel); err != nil {
			return err
		}
	}
	return nil
}

// applySiblingTypename removes a lone __typename selection and tags its
// response name onto the first non-typename sibling, unless parentType is a
// synthesized @interfaceObject interface (spec.md §4.4 "Sibling-typename
// optimization").
func (n *normalizer) applySiblingTypename(set *NormalizedSelectionSet, parentType string) {
	if n.interfaceObjectTypes != nil && n.interfaceObjectTypes[parentType] {
		return
	}
	var typenameKey Key
	var typenameSel *FieldSelection
	var firstSibling *FieldSelection
	for _, sel := range set.Selections() {
		fs, ok := sel.(*FieldSelection)
		if !ok {
			continue
		}
		if fs.Name == "__typename" {
			if typenameSel == nil {
				typenameSel = fs
				typenameKey = fs.selectionKey()
			}
			continue
		}
		if firstSibling == nil {
			firstSibling = fs
		}
	}
	if typenameSel == nil || firstSibling == nil {
		return
	}
	firstSibling.siblingTypename = typenameSel.responseName()
	set.remove(typenameKey)
}
