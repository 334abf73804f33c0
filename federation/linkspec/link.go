// Package linkspec resolves @link-imported feature versions and per-schema
// naming (spec.md §4.3). It operates on raw directive applications so that
// federation/position can recompute it without an import cycle.
package linkspec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Link is one parsed @link application (spec.md §3 "Link / Spec").
type Link struct {
	Identity string
	Version  Version
	Alias    string // import-as name for the feature itself, "" if none
	Purpose  string // SECURITY | EXECUTION, "" if unspecified
	Imports  []Import
}

// Import is one entry of a @link's imports: list, either a bare name or
// `{name: "...", as: "..."}`.
type Import struct {
	Name string
	As   string // "" if not aliased
}

// Version is a (major, minor) federation/link spec version, ordered.
type Version struct {
	Major, Minor int
}

func (v Version) String() string { return fmt.Sprintf("v%d.%d", v.Major, v.Minor) }

func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(s, "v")
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid spec version %q", s)
	}
	var v Version
	if _, err := fmt.Sscanf(parts[0], "%d", &v.Major); err != nil {
		return Version{}, fmt.Errorf("invalid spec version %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &v.Minor); err != nil {
		return Version{}, fmt.Errorf("invalid spec version %q", s)
	}
	return v, nil
}

// Metadata is the result of parsing every @link on a schema definition
// (spec.md §3 "Link / Spec", §4.3).
type Metadata struct {
	Links        []*Link
	byIdentity   map[string]*Link
	linkSpecLink *Link // the link that identifies the link spec itself
}

const linkSpecIdentity = "https://specs.apollo.dev/link"

// Parse reads every @link application in directives and builds Metadata.
// At most one Link may identify the link spec itself (spec.md §4.3); a
// second one is an error. By convention a schema using @link at all
// implicitly links the link spec even without a literal self-referential
// application, so its absence is not an error. Aliases are not checked.
func Parse(directives ast.DirectiveList) (*Metadata, error) {
	m := &Metadata{byIdentity: map[string]*Link{}}
	for _, d := range directives {
		if d.Name != "link" {
			continue
		}
		link, err := parseOne(d)
		if err != nil {
			return nil, err
		}
		m.Links = append(m.Links, link)
		m.byIdentity[link.Identity] = link
		if link.Identity == linkSpecIdentity {
			if m.linkSpecLink != nil {
				return nil, fmt.Errorf("more than one @link identifies the link spec")
			}
			m.linkSpecLink = link
		}
	}
	return m, nil
}

func parseOne(d *ast.Directive) (*Link, error) {
	urlArg := d.Arguments.ForName("url")
	if urlArg == nil || urlArg.Value == nil {
		return nil, fmt.Errorf("@link is missing required url argument")
	}
	raw := urlArg.Value.Raw
	identity, version, err := splitFeatureURL(raw)
	if err != nil {
		return nil, err
	}
	link := &Link{Identity: identity, Version: version}
	if asArg := d.Arguments.ForName("as"); asArg != nil && asArg.Value != nil {
		link.Alias = asArg.Value.Raw
	}
	if purposeArg := d.Arguments.ForName("for"); purposeArg != nil && purposeArg.Value != nil {
		link.Purpose = purposeArg.Value.Raw
	}
	if importArg := d.Arguments.ForName("import"); importArg != nil && importArg.Value != nil {
		for _, child := range importArg.Value.Children {
			link.Imports = append(link.Imports, parseImport(child.Value))
		}
	}
	return link, nil
}

func parseImport(v *ast.Value) Import {
	if v == nil {
		return Import{}
	}
	if v.Kind == ast.StringValue {
		return Import{Name: v.Raw}
	}
	imp := Import{}
	for _, c := range v.Children {
		switch c.Name {
		case "name":
			imp.Name = c.Value.Raw
		case "as":
			imp.As = c.Value.Raw
		}
	}
	return imp
}

// splitFeatureURL splits a @link url like
// "https://specs.apollo.dev/federation/v2.5" into identity
// ("https://specs.apollo.dev/federation") and version (2.5).
func splitFeatureURL(url string) (identity string, version Version, err error) {
	idx := strings.LastIndex(url, "/v")
	if idx < 0 {
		return "", Version{}, fmt.Errorf("invalid @link identifier %q: missing /vMAJOR.MINOR suffix", url)
	}
	version, err = ParseVersion(url[idx+1:])
	if err != nil {
		return "", Version{}, fmt.Errorf("invalid @link identifier %q: %w", url, err)
	}
	return url[:idx], version, nil
}

// LinkFor returns the Link that imports identity, if any.
func (m *Metadata) LinkFor(identity string) (*Link, bool) {
	l, ok := m.byIdentity[identity]
	return l, ok
}

// defaultFeatureName is the prefix an unaliased, unimported link element
// takes: the identity URL's last path segment (spec.md §4.3; e.g.
// "https://specs.apollo.dev/join" defaults to "join", so @join__type is the
// name a supergraph sees without any explicit `as:`).
func (l *Link) defaultFeatureName() string {
	if l.Alias != "" {
		return l.Alias
	}
	if idx := strings.LastIndex(l.Identity, "/"); idx >= 0 {
		return l.Identity[idx+1:]
	}
	return l.Identity
}

// DirectiveNameInSchema applies a link's import renaming/alias to turn a
// spec-defined directive name (e.g. "key") into the name used in this
// schema (e.g. "federation__key" under a default alias, or whatever a
// custom `as:` import renamed it to).
func (l *Link) DirectiveNameInSchema(specName string) string {
	for _, imp := range l.Imports {
		bare := strings.TrimPrefix(imp.Name, "@")
		if bare == specName {
			if imp.As != "" {
				return strings.TrimPrefix(imp.As, "@")
			}
			return specName
		}
	}
	return l.defaultFeatureName() + "__" + specName
}

// TypeNameInSchema applies the same renaming for a spec-defined type name.
func (l *Link) TypeNameInSchema(specName string) string {
	for _, imp := range l.Imports {
		if imp.Name == specName {
			if imp.As != "" {
				return imp.As
			}
			return specName
		}
	}
	return l.defaultFeatureName() + "__" + specName
}

// SortedIdentities returns every linked feature identity in a stable order,
// useful for deterministic iteration/debug output.
func (m *Metadata) SortedIdentities() []string {
	out := make([]string, 0, len(m.byIdentity))
	for id := range m.byIdentity {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
