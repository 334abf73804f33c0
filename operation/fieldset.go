package operation

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// ParseFieldSet parses a @key/@requires/@provides `fields:` string literal
// into a *NormalizedSelectionSet anchored at parentType, reusing the
// operation normalizer so field-set selections get the same Key shape and
// merge behaviour as ordinary query selections (original_source's
// field_set.rs parses directly to its own selection-set type; here we route
// through the same normalizer entry point instead of duplicating it).
//
// Field sets carry no directives, fragments or field arguments: the grammar
// is Selection+ where Selection is Name SelectionSet?.
func ParseFieldSet(raw string, parentType string, schema *ast.Schema) (*NormalizedSelectionSet, error) {
	sel, err := parseFieldSetSelections(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid field set %q: %w", raw, err)
	}
	n := &normalizer{schema: schema, fragments: map[string]*ast.FragmentDefinition{}}
	return n.normalizeSet(sel, parentType)
}

type fieldSetLexer struct {
	s   string
	pos int
}

func (l *fieldSetLexer) skipSpace() {
	for l.pos < len(l.s) {
		switch l.s[l.pos] {
		case ' ', '\t', '\n', '\r', ',':
			l.pos++
		default:
			return
		}
	}
}

func (l *fieldSetLexer) peek() byte {
	l.skipSpace()
	if l.pos >= len(l.s) {
		return 0
	}
	return l.s[l.pos]
}

func isNameChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func (l *fieldSetLexer) name() (string, bool) {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.s) && isNameChar(l.s[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return "", false
	}
	return l.s[start:l.pos], true
}

// parseFieldSetSelections parses Selection+ at the top level, and recurses
// for nested `{ ... }` selection sets.
func parseFieldSetSelections(raw string) (ast.SelectionSet, error) {
	l := &fieldSetLexer{s: strings.TrimSpace(raw)}
	set, err := parseSelections(l)
	if err != nil {
		return nil, err
	}
	if l.peek() != 0 {
		return nil, fmt.Errorf("unexpected trailing input at byte %d", l.pos)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("empty field set")
	}
	return set, nil
}

func parseSelections(l *fieldSetLexer) (ast.SelectionSet, error) {
	var out ast.SelectionSet
	for {
		c := l.peek()
		if c == 0 || c == '}' {
			break
		}
		name, ok := l.name()
		if !ok {
			return nil, fmt.Errorf("expected field name at byte %d", l.pos)
		}
		f := &ast.Field{Name: name}
		if l.peek() == '{' {
			l.pos++
			children, err := parseSelections(l)
			if err != nil {
				return nil, err
			}
			if l.peek() != '}' {
				return nil, fmt.Errorf("missing closing } at byte %d", l.pos)
			}
			l.pos++
			f.SelectionSet = children
		}
		out = append(out, f)
	}
	return out, nil
}
