package plan

import (
	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/operation"
)

// SimultaneousPaths bundles the alternative GraphPaths a single option is
// currently tracking together — for example one path per concrete type an
// interface selection has fanned out into.
//
// OpenBranch is a not-yet-closed suffix of the operation's selection tree:
// the selection still to satisfy, plus every option (SimultaneousPaths)
// considered viable so far (spec.md §4.6 "Search structure", "open branch").
// The "lazy indirect paths" half of the source name — additional Lookup
// options computed on demand rather than eagerly for every node — is
// realized here by expandOptions only materializing Lookup edges when a
// field can't be satisfied by a same-subgraph edge.
type OpenBranch struct {
	Selection operation.Selection
	Options   []SimultaneousPaths
}

// closeBranch advances every option of an OpenBranch across its field (one
// field edge, or a Lookup edge followed by a field edge), producing a
// ClosedBranch (spec.md §4.6 step 3). The field's own sub-selections are
// not walked here; the assembler resolves them afterwards.
func closeBranch(ob *OpenBranch, resolver *ConditionResolver) (*ClosedBranch, error) {
	fs, ok := ob.Selection.(*operation.FieldSelection)
	if !ok {
		// Inline fragments and fragment spreads never themselves hold a
		// fetch; their children are pushed as their own OpenBranches by
		// the caller, so closeBranch is only invoked on FieldSelections.
		return nil, errcode.Internal("closeBranch called on non-field selection")
	}

	fieldName := fs.Name
	cb := &ClosedBranch{FieldName: fieldName}
	for _, opt := range ob.Options {
		extended, err := expandOptions(opt, fieldName, resolver)
		if err != nil {
			return nil, err
		}
		for _, sp := range extended {
			cb.Options = append(cb.Options, &ClosedPath{Paths: sp})
		}
	}
	return cb, nil
}

// expandOptions advances every path in paths by fieldName, fanning out one
// result per viable outgoing edge: same-subgraph field edges first, and, if
// none resolve the field directly, Lookup edges into subgraphs that can
// (spec.md §4.6 step 3: "generating one new option per viable outgoing
// edge (including taking a Lookup to change subgraphs)").
func expandOptions(paths SimultaneousPaths, fieldName string, resolver *ConditionResolver) ([]SimultaneousPaths, error) {
	var results []SimultaneousPaths
	for _, p := range paths {
		direct := p.Tail.FieldEdges[fieldName]
		resolvedDirectly := false
		for _, e := range direct {
			if !resolver.Satisfiable(e, p) {
				continue
			}
			results = append(results, SimultaneousPaths{p.Extend(e)})
			resolvedDirectly = true
		}
		if !resolvedDirectly {
			for _, le := range p.Tail.LookupEdges {
				if _, has := le.Tail.FieldEdges[fieldName]; !has {
					continue
				}
				if !resolver.Satisfiable(le, p) {
					continue
				}
				jumped := p.Extend(le)
				for _, e := range le.Tail.FieldEdges[fieldName] {
					results = append(results, SimultaneousPaths{jumped.Extend(e)})
				}
			}
		}
	}
	return results, nil
}

