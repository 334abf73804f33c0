package subgraph

import "github.com/federation-go/core/federation/linkspec"

// federationIdentity is the federation spec's own @link identity, used only
// to key federationVersions below (the extractor never reads a subgraph's
// own @link, since reconstructed subgraphs always self-link at the latest
// registered version; spec.md §4.2 step 10).
const federationIdentity = "https://specs.apollo.dev/federation"

// federationVersions is the version table the original's
// FEDERATION_VERSIONS/spec_definitions registry corresponds to
// (original_source/apollo-federation/src/query_graph/extract_subgraphs_from_supergraph.rs,
// new_empty_fed_2_subgraph_schema): each entry's Handler resolves the
// directive-definition set a subgraph schema materializes for that version.
// Only v2.5 is registered, matching the extractor's fed-2-only commitment
// (spec.md §6 "Federation-directive set"); adding a new federation version's
// support is a matter of registering another entry here.
var federationVersions = buildFederationVersions()

func buildFederationVersions() *linkspec.SpecDefinitions[directiveSetFunc] {
	defs := linkspec.NewSpecDefinitions[directiveSetFunc](federationIdentity)
	defs.Add(linkspec.Version{Major: 2, Minor: 5}, federationDirectiveDefinitionsV25)
	return defs
}

// joinVersions is the version table the original's JOIN_VERSIONS registry
// corresponds to: every join spec version the extractor knows how to read
// the join__Graph enum and join__* directives of. fed-1's join v0.1 is
// deliberately absent (spec.md §9 open question: fed-1 extraction is not
// implemented), so a supergraph linking it is rejected the same way an
// unrecognized future version would be.
var joinVersions = buildJoinVersions()

func buildJoinVersions() *linkspec.SpecDefinitions[struct{}] {
	defs := linkspec.NewSpecDefinitions[struct{}](joinIdentity)
	defs.Add(linkspec.Version{Major: 0, Minor: 2}, struct{}{})
	defs.Add(linkspec.Version{Major: 0, Minor: 3}, struct{}{})
	defs.Add(linkspec.Version{Major: 0, Minor: 4}, struct{}{})
	defs.Add(linkspec.Version{Major: 0, Minor: 5}, struct{}{})
	return defs
}
