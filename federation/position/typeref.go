package position

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// ParseTypeRef parses a type reference string such as "Int", "[String!]",
// or "User!" into an *ast.Type. This is the native replacement for the
// design note's `decode_type` (which embedded the string into a dummy
// schema and re-parsed it): since a type reference is a tiny, fully
// recursive grammar (`Name | Name! | [Type] | [Type]!`), a direct recursive
// descent over the string is preferable to round-tripping through the
// schema parser for a one-line input (spec.md §9 open question).
func ParseTypeRef(s string) (*ast.Type, error) {
	s = strings.TrimSpace(s)
	t, rest, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("trailing input in type reference %q", s)
	}
	return t, nil
}

func parseType(s string) (*ast.Type, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", fmt.Errorf("empty type reference")
	}
	var t *ast.Type
	var rest string
	if s[0] == '[' {
		inner, after, err := parseType(s[1:])
		if err != nil {
			return nil, "", err
		}
		after = strings.TrimSpace(after)
		if len(after) == 0 || after[0] != ']' {
			return nil, "", fmt.Errorf("missing closing ] in type reference")
		}
		t = &ast.Type{Elem: inner}
		rest = after[1:]
	} else {
		i := 0
		for i < len(s) && isNameChar(s[i]) {
			i++
		}
		if i == 0 {
			return nil, "", fmt.Errorf("invalid type reference %q", s)
		}
		t = &ast.Type{NamedType: s[:i]}
		rest = s[i:]
	}
	rest = stripLeadingSpace(rest)
	if len(rest) > 0 && rest[0] == '!' {
		t.NonNull = true
		rest = rest[1:]
	}
	return t, rest, nil
}

func stripLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

func isNameChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
