package supergraph

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/federation/position"
)

// ValidSubgraph is one composition input: a named, already-validated
// subgraph schema (spec.md §6 "Supergraph::compose").
type ValidSubgraph struct {
	Name   string
	URL    string
	Schema *position.ValidatedSchema
}

// MergeFailure aggregates every defect found while composing (spec.md §7
// layer 1, "multiple user errors... aggregated").
type MergeFailure struct {
	*errcode.MultiError
}

func (f *MergeFailure) Error() string { return f.MultiError.AsError().Error() }

// Compose merges subgraphs into a single schema (spec.md §6
// "Supergraph::compose"). Full satisfiability-checked composition —
// re-deriving @join__* metadata that proves every merged field is
// resolvable — is explicitly out of scope (spec.md §1 "Satisfiability
// composition-time validation... specified only at their interfaces");
// this performs the structural half: union types and fields across
// subgraphs, reporting a TYPE_KIND_MISMATCH/FIELD_TYPE_MISMATCH
// MergeFailure when two subgraphs disagree, the same error codes a full
// composer would raise for the same defects (spec.md §6 error code table).
func Compose(subgraphs []ValidSubgraph) (*Supergraph, *MergeFailure) {
	report := &MergeFailure{MultiError: &errcode.MultiError{}}
	merged := position.New()

	for _, sg := range subgraphs {
		inner := sg.Schema.Unwrap()
		for name, def := range inner.Types {
			if _, ok := merged.Types[name]; ok {
				continue
			}
			tp := position.TypePosition{Kind: kindOf(def.Kind), TypeName: name}
			if err := tp.PreInsert(merged); err != nil {
				continue // built-in, already reserved
			}
			empty := &ast.Definition{Kind: def.Kind, Name: name}
			if err := tp.Insert(merged, empty); err != nil {
				report.Add(errcode.New(errcode.TypeKindMismatch, "subgraph %s: %v", sg.Name, err))
			}
		}
	}

	for _, sg := range subgraphs {
		inner := sg.Schema.Unwrap()
		for name, def := range inner.Types {
			mergedDef, ok := merged.Types[name]
			if !ok {
				continue
			}
			if mergedDef.Kind != def.Kind {
				report.Add(errcode.New(errcode.TypeKindMismatch, "type %q declared as %s in subgraph %s but %s elsewhere", name, def.Kind, sg.Name, mergedDef.Kind))
				continue
			}
			mergeFields(merged, mergedDef, def, sg.Name, report)
		}
	}

	if report.HasErrors() {
		return nil, report
	}

	if _, ok := merged.Types["Query"]; ok {
		_ = (position.SchemaRootPosition{RootKind: ast.Query}).Insert(merged, "Query")
	} else {
		report.Add(errcode.New(errcode.NoQueries, "no subgraph defines a Query type"))
		return nil, report
	}

	validated, err := merged.Validate(nil)
	if err != nil {
		report.Add(errcode.New(errcode.InvalidGraphQL, "%v", err))
		return nil, report
	}

	out := &Supergraph{schema: validated, subgraphs: nil}
	return out, nil
}

func kindOf(k ast.DefinitionKind) position.Kind {
	switch k {
	case ast.Object:
		return position.KindObject
	case ast.Interface:
		return position.KindInterface
	case ast.Union:
		return position.KindUnion
	case ast.Enum:
		return position.KindEnum
	case ast.InputObject:
		return position.KindInputObject
	default:
		return position.KindScalar
	}
}

// mergeFields unions def's fields into mergedDef, flagging a field whose
// type differs from an already-merged declaration.
func mergeFields(merged *position.Schema, mergedDef, def *ast.Definition, subgraphName string, report *MergeFailure) {
	for _, f := range def.Fields {
		var existing *ast.FieldDefinition
		for _, mf := range mergedDef.Fields {
			if mf.Name == f.Name {
				existing = mf
				break
			}
		}
		if existing != nil {
			if typeString(existing.Type) != typeString(f.Type) {
				report.Add(errcode.New(errcode.FieldTypeMismatch, "field %s.%s: %s in subgraph %s, %s elsewhere", def.Name, f.Name, typeString(f.Type), subgraphName, typeString(existing.Type)))
			}
			continue
		}
		mergedDef.Fields = append(mergedDef.Fields, f)
	}
}

func typeString(t *ast.Type) string {
	if t == nil {
		return ""
	}
	s := t.NamedType
	if t.Elem != nil {
		s = "[" + typeString(t.Elem) + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}
