package subgraph

import "github.com/federation-go/core/errcode"

func errInvalidSubgraphName(name string) error {
	return errcode.New(errcode.InvalidSubgraphName, "subgraph name %q is empty or reserved", name)
}

func errDuplicateSubgraphName(name string) error {
	return errcode.New(errcode.InvalidSubgraphName, "duplicate subgraph name %q", name)
}

func errUnsupportedJoinVersion(v string) error {
	return errcode.New(errcode.UnsupportedLinkedFeature, "unsupported join spec version %q", v)
}

func errInvalidSupergraph(format string, args ...any) error {
	return errcode.New(errcode.InvalidFederationSupergraph, format, args...)
}
