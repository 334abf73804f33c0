package linkspec

import "fmt"

// SpecDefinition is a versioned handler for one linked feature. T is
// typically a directive/type-name accessor specific to the feature (e.g.
// the federation spec's set of directive names); this package only manages
// the version-keyed lookup, not the feature's own semantics.
type SpecDefinition[T any] struct {
	Identity string
	Version  Version
	Handler  T
}

// SpecDefinitions holds every known version of one feature's handler, in
// the order Add registered them. Find looks up an exact version and Latest
// scans for the highest one; there is no "at or below N" lookup.
// A read-only singleton per feature, built once at package init time
// (design note "Global lazy tables").
type SpecDefinitions[T any] struct {
	identity string
	versions []SpecDefinition[T]
}

func NewSpecDefinitions[T any](identity string) *SpecDefinitions[T] {
	return &SpecDefinitions[T]{identity: identity}
}

// Add registers handler under version. Call in ascending version order at
// init time.
func (s *SpecDefinitions[T]) Add(version Version, handler T) {
	s.versions = append(s.versions, SpecDefinition[T]{Identity: s.identity, Version: version, Handler: handler})
}

// Find returns the handler registered for exactly the requested version.
func (s *SpecDefinitions[T]) Find(version Version) (SpecDefinition[T], bool) {
	for _, sd := range s.versions {
		if sd.Version == version {
			return sd, true
		}
	}
	return SpecDefinition[T]{}, false
}

// ForSchema looks up the handler for the version a schema's Metadata links
// to, failing with UnknownFederationLinkVersion/UnknownLinkVersion semantics
// left to the caller (spec.md §4.3): this function only reports whether the
// version is known.
func (s *SpecDefinitions[T]) ForSchema(m *Metadata) (SpecDefinition[T], error) {
	link, ok := m.LinkFor(s.identity)
	if !ok {
		return SpecDefinition[T]{}, fmt.Errorf("schema does not link %s", s.identity)
	}
	sd, ok := s.Find(link.Version)
	if !ok {
		return SpecDefinition[T]{}, fmt.Errorf("unknown version %s of %s", link.Version, s.identity)
	}
	return sd, nil
}

// Latest returns the highest registered version's handler.
func (s *SpecDefinitions[T]) Latest() (SpecDefinition[T], bool) {
	if len(s.versions) == 0 {
		return SpecDefinition[T]{}, false
	}
	best := s.versions[0]
	for _, sd := range s.versions[1:] {
		if best.Version.Less(sd.Version) {
			best = sd
		}
	}
	return best, true
}
