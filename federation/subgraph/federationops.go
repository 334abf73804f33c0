package subgraph

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/federation/linkspec"
	"github.com/federation-go/core/federation/position"
)

// injectFederationOperations adds the three federation root operations,
// gated on whether the subgraph has at least one entity (spec.md §4.2 step
// 10, invariant 9).
func injectFederationOperations(sg *position.Schema, _ linkspec.Version) error {
	entityTypes := entityTypeNames(sg)

	if err := insertScalar(sg, "_Any"); err != nil {
		return err
	}
	if err := insertServiceType(sg); err != nil {
		return err
	}
	if sg.QueryRootName == "" {
		if _, exists := sg.Types["Query"]; !exists {
			if err := (position.TypePosition{Kind: position.KindObject, TypeName: "Query"}).PreInsert(sg); err != nil {
				return err
			}
			if err := (position.TypePosition{Kind: position.KindObject, TypeName: "Query"}).Insert(sg, &ast.Definition{Kind: ast.Object, Name: "Query"}); err != nil {
				return err
			}
		}
		if err := (position.SchemaRootPosition{RootKind: ast.Query}).Insert(sg, "Query"); err != nil {
			return err
		}
	}

	if err := insertQueryField(sg, "_service", &ast.Type{NamedType: "_Service", NonNull: true}, nil); err != nil {
		return err
	}

	if len(entityTypes) > 0 {
		if err := insertEntityUnion(sg, entityTypes); err != nil {
			return err
		}
		repArg := &ast.ArgumentDefinition{
			Name: "representations",
			Type: &ast.Type{NonNull: true, Elem: &ast.Type{NonNull: true, Elem: &ast.Type{NamedType: "_Any"}}},
		}
		if err := insertQueryField(sg, "_entities", &ast.Type{Elem: &ast.Type{NamedType: "_Entity"}}, []*ast.ArgumentDefinition{repArg}); err != nil {
			return err
		}
	}
	return nil
}

// entityTypeNames returns every object/interface type in sg that carries at
// least one @key application, in a stable order.
func entityTypeNames(sg *position.Schema) []string {
	var out []string
	for name, def := range sg.Types {
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		if def.Directives.ForName("key") != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func insertScalar(sg *position.Schema, name string) error {
	if _, exists := sg.Types[name]; exists {
		return nil
	}
	p := position.TypePosition{Kind: position.KindScalar, TypeName: name}
	if err := p.PreInsert(sg); err != nil {
		return err
	}
	return p.Insert(sg, &ast.Definition{Kind: ast.Scalar, Name: name})
}

func insertServiceType(sg *position.Schema) error {
	if _, exists := sg.Types["_Service"]; exists {
		return nil
	}
	p := position.TypePosition{Kind: position.KindObject, TypeName: "_Service"}
	if err := p.PreInsert(sg); err != nil {
		return err
	}
	if err := p.Insert(sg, &ast.Definition{Kind: ast.Object, Name: "_Service"}); err != nil {
		return err
	}
	fp := position.FieldPosition{Kind: position.KindObjectField, TypeName: "_Service", FieldName: "sdl"}
	if err := fp.PreInsert(sg); err != nil {
		return err
	}
	return fp.Insert(sg, &ast.FieldDefinition{Name: "sdl", Type: &ast.Type{NamedType: "String"}})
}

func insertEntityUnion(sg *position.Schema, members []string) error {
	if _, exists := sg.Types["_Entity"]; !exists {
		p := position.TypePosition{Kind: position.KindUnion, TypeName: "_Entity"}
		if err := p.PreInsert(sg); err != nil {
			return err
		}
		if err := p.Insert(sg, &ast.Definition{Kind: ast.Union, Name: "_Entity"}); err != nil {
			return err
		}
	}
	p := position.TypePosition{Kind: position.KindUnion, TypeName: "_Entity"}
	for _, m := range members {
		if err := p.InsertMember(sg, m); err != nil {
			return err
		}
	}
	return nil
}

func insertQueryField(sg *position.Schema, name string, t *ast.Type, args []*ast.ArgumentDefinition) error {
	fp := position.FieldPosition{Kind: position.KindObjectField, TypeName: "Query", FieldName: name}
	if _, exists := fp.TryGet(sg); exists {
		return nil
	}
	if err := fp.PreInsert(sg); err != nil {
		return err
	}
	return fp.Insert(sg, &ast.FieldDefinition{Name: name, Type: t, Arguments: args})
}
