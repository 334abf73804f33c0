package subgraph

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/errcode"
	"github.com/federation-go/core/federation/linkspec"
	"github.com/federation-go/core/federation/position"
)

const (
	joinIdentity = "https://specs.apollo.dev/join"
	linkIdentity = "https://specs.apollo.dev/link"
)

// Options controls extraction (spec.md §4.2 step 11).
type Options struct {
	// Validate, if non-nil, is run against each reconstructed subgraph
	// schema; diagnostics are wrapped into InvalidFederationSupergraph.
	Validate func(*position.Schema) error
}

// Extract reconstructs one FederationSchema per subgraph named in the
// supergraph's join__Graph enum (spec.md §4.2).
func Extract(super *position.Schema, opts Options) (*Map, error) {
	joinLink, ok := super.Links.LinkFor(joinIdentity)
	if !ok {
		return nil, errcode.New(errcode.UnsupportedLinkedFeature, "supergraph does not @link the join spec")
	}
	if _, ok := joinVersions.Find(joinLink.Version); !ok {
		// spec.md §9 open question: federation v0.1/join v0.1 extraction is
		// not implemented; commit to fed-2-only (DESIGN.md decision).
		return nil, errUnsupportedJoinVersion(joinLink.Version.String())
	}
	if _, ok := super.Links.LinkFor(linkIdentity); !ok {
		return nil, errcode.New(errcode.InvalidFederationSupergraph, "supergraph does not @link itself")
	}

	graphEnumName := joinLink.TypeNameInSchema("Graph")
	graphEnum, ok := super.Types[graphEnumName]
	if !ok || graphEnum.Kind != ast.Enum {
		return nil, errInvalidSupergraph("supergraph has no %s enum", graphEnumName)
	}

	joinGraphDirective := joinLink.DirectiveNameInSchema("graph")
	joinTypeDirective := joinLink.DirectiveNameInSchema("type")
	joinFieldDirective := joinLink.DirectiveNameInSchema("field")
	joinImplementsDirective := joinLink.DirectiveNameInSchema("implements")
	joinUnionMemberDirective := joinLink.DirectiveNameInSchema("unionMember")
	joinEnumValueDirective := joinLink.DirectiveNameInSchema("enumValue")

	latestFederationSpec, ok := federationVersions.Latest()
	if !ok {
		return nil, errcode.Internal("no federation spec version registered")
	}

	out := NewMap()
	enumValueToSubgraph := map[string]string{}
	subgraphSchemas := map[string]*position.Schema{}
	subgraphFedVersion := map[string]linkspec.Version{}

	for _, ev := range graphEnum.EnumValues {
		d := ev.Directives.ForName(joinGraphDirective)
		if d == nil {
			return nil, errInvalidSupergraph("%s.%s is missing @%s", graphEnumName, ev.Name, joinGraphDirective)
		}
		name := argString(d, "name")
		url := argString(d, "url")
		sg := &Subgraph{Name: name, URL: url, Schema: position.New()}
		if err := out.Add(sg); err != nil {
			return nil, err
		}
		enumValueToSubgraph[ev.Name] = name
		subgraphSchemas[name] = sg.Schema
		subgraphFedVersion[name] = latestFederationSpec.Version
	}

	candidates := candidateTypes(super, joinLink)

	// Step 4: shallow pre-insert of every type per subgraph it belongs to.
	typeSubgraphs := map[string][]string{} // candidate type name -> subgraph names it belongs to
	for _, def := range candidates {
		apps := directivesNamed(def.Directives, joinTypeDirective)
		if len(apps) == 0 {
			// No @join__type: per spec.md this only happens for types the
			// composer always places everywhere (e.g. scalars). Such a type
			// is skipped here, and no later step inserts it into any
			// subgraph.
			continue
		}
		for _, d := range apps {
			graphEnumVal := argEnum(d, "graph")
			sgName, ok := enumValueToSubgraph[graphEnumVal]
			if !ok {
				return nil, errInvalidSupergraph("@%s references unknown graph %s", joinTypeDirective, graphEnumVal)
			}
			sgSchema := subgraphSchemas[sgName]
			already := false
			for _, n := range typeSubgraphs[def.Name] {
				if n == sgName {
					already = true
					break
				}
			}
			isInterfaceObject := argBool(d, "isInterfaceObject")
			kind := def.Kind
			if isInterfaceObject {
				kind = ast.Object
			}
			if !already {
				typeSubgraphs[def.Name] = append(typeSubgraphs[def.Name], sgName)
				tp := position.TypePosition{Kind: position.KindObject, TypeName: def.Name}
				switch kind {
				case ast.Interface:
					tp.Kind = position.KindInterface
				case ast.Union:
					tp.Kind = position.KindUnion
				case ast.Enum:
					tp.Kind = position.KindEnum
				case ast.InputObject:
					tp.Kind = position.KindInputObject
				case ast.Scalar:
					tp.Kind = position.KindScalar
				}
				if err := ensureDirectiveDef(sgSchema, "key"); err != nil {
					return nil, err
				}
				if tp.Kind != position.KindScalar || sgSchema.Types[def.Name] == nil {
					if err := tp.PreInsert(sgSchema); err != nil && sgSchema.Types[def.Name] == nil {
						return nil, err
					}
					if _, exists := sgSchema.Types[def.Name]; !exists {
						empty := &ast.Definition{Kind: kind, Name: def.Name}
						if err := tp.Insert(sgSchema, empty); err != nil {
							return nil, err
						}
					}
				}
				if isInterfaceObject {
					if err := ensureDirectiveDef(sgSchema, "interfaceObject"); err != nil {
						return nil, err
					}
					_ = tp.InsertDirective(sgSchema, &ast.Directive{Name: "interfaceObject"})
				}
			}
			if keyFields := argString(d, "key"); keyFields != "" {
				resolvable := true
				if r := d.Arguments.ForName("resolvable"); r != nil && r.Value != nil && r.Value.Raw == "false" {
					resolvable = false
				}
				dir := &ast.Directive{Name: "key", Arguments: ast.ArgumentList{
					{Name: "fields", Value: &ast.Value{Kind: ast.StringValue, Raw: keyFields}},
				}}
				if !resolvable {
					dir.Arguments = append(dir.Arguments, &ast.Argument{Name: "resolvable", Value: &ast.Value{Kind: ast.BooleanValue, Raw: "false"}})
				}
				tp := position.TypePosition{Kind: kindOf(sgSchema, def.Name), TypeName: def.Name}
				if err := tp.InsertDirective(sgSchema, dir); err != nil {
					return nil, err
				}
			}
		}
	}

	// Step 5: fields on object/interface candidates.
	fieldShareCount := map[string]int{} // "Type.field" -> number of subgraphs resolving it
	for _, def := range candidates {
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		parentSubgraphs := typeSubgraphs[def.Name]
		for _, f := range def.Fields {
			apps := directivesNamed(f.Directives, joinFieldDirective)
			if len(apps) == 0 {
				for _, sgName := range parentSubgraphs {
					if err := copyField(subgraphSchemas[sgName], def, f, nil); err != nil {
						return nil, err
					}
					fieldShareCount[def.Name+"."+f.Name]++
				}
				continue
			}
			for _, d := range apps {
				graphEnumVal := argEnum(d, "graph")
				if graphEnumVal == "" {
					continue // @join__field with no graph names no subgraph: this application adds the field nowhere
				}
				sgName, ok := enumValueToSubgraph[graphEnumVal]
				if !ok {
					return nil, errInvalidSupergraph("@%s references unknown graph %s", joinFieldDirective, graphEnumVal)
				}
				if err := copyField(subgraphSchemas[sgName], def, f, d); err != nil {
					return nil, err
				}
				external := argBool(d, "external")
				if !external {
					fieldShareCount[def.Name+"."+f.Name]++
				}
			}
		}
	}

	// Retroactively mark @shareable on fields resolved non-externally by
	// more than one subgraph (spec.md §4.2 "decorates shareable fields").
	for key, n := range fieldShareCount {
		if n < 2 {
			continue
		}
		typeName, fieldName := splitTypeField(key)
		for _, sgName := range typeSubgraphs[typeName] {
			sg := subgraphSchemas[sgName]
			def, ok := sg.Types[typeName]
			if !ok {
				continue
			}
			for _, f := range def.Fields {
				if f.Name != fieldName {
					continue
				}
				if isExternalField(f) {
					continue
				}
				if f.Directives.ForName("shareable") != nil {
					continue
				}
				fp := position.FieldPosition{Kind: position.KindObjectField, TypeName: typeName, FieldName: fieldName}
				if def.Kind == ast.Interface {
					fp.Kind = position.KindInterfaceField
				}
				_ = ensureDirectiveDef(sg, "shareable")
				_ = fp.InsertDirective(sg, &ast.Directive{Name: "shareable"})
			}
		}
	}

	// Step 6: union members.
	for _, def := range candidates {
		if def.Kind != ast.Union {
			continue
		}
		apps := directivesNamed(def.Directives, joinUnionMemberDirective)
		if len(apps) == 0 {
			for _, sgName := range typeSubgraphs[def.Name] {
				sg := subgraphSchemas[sgName]
				for _, member := range def.Types {
					if _, ok := sg.Types[member]; ok {
						_ = position.TypePosition{Kind: position.KindUnion, TypeName: def.Name}.InsertMember(sg, member)
					}
				}
			}
			continue
		}
		for _, d := range apps {
			sgName, ok := enumValueToSubgraph[argEnum(d, "graph")]
			if !ok {
				continue
			}
			member := argString(d, "member")
			sg := subgraphSchemas[sgName]
			if _, ok := sg.Types[member]; ok {
				_ = position.TypePosition{Kind: position.KindUnion, TypeName: def.Name}.InsertMember(sg, member)
			}
		}
	}

	// Step: implements.
	for _, def := range candidates {
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		apps := directivesNamed(def.Directives, joinImplementsDirective)
		if len(apps) == 0 {
			for _, sgName := range typeSubgraphs[def.Name] {
				sg := subgraphSchemas[sgName]
				for _, iface := range def.Interfaces {
					if _, ok := sg.Types[iface]; ok {
						_ = position.TypePosition{Kind: kindOf(sg, def.Name), TypeName: def.Name}.InsertImplementsInterface(sg, iface)
					}
				}
			}
			continue
		}
		for _, d := range apps {
			sgName, ok := enumValueToSubgraph[argEnum(d, "graph")]
			if !ok {
				continue
			}
			iface := argString(d, "interface")
			sg := subgraphSchemas[sgName]
			if _, ok := sg.Types[iface]; ok {
				_ = position.TypePosition{Kind: kindOf(sg, def.Name), TypeName: def.Name}.InsertImplementsInterface(sg, iface)
			}
		}
	}

	// Step 7: enum values.
	for _, def := range candidates {
		if def.Kind != ast.Enum || def.Name == graphEnumName {
			continue
		}
		for _, v := range def.EnumValues {
			apps := directivesNamed(v.Directives, joinEnumValueDirective)
			if len(apps) == 0 {
				for _, sgName := range typeSubgraphs[def.Name] {
					_ = position.EnumValuePosition{TypeName: def.Name, ValueName: v.Name}.Insert(subgraphSchemas[sgName], &ast.EnumValueDefinition{Name: v.Name})
				}
				continue
			}
			for _, d := range apps {
				sgName, ok := enumValueToSubgraph[argEnum(d, "graph")]
				if !ok {
					continue
				}
				_ = position.EnumValuePosition{TypeName: def.Name, ValueName: v.Name}.Insert(subgraphSchemas[sgName], &ast.EnumValueDefinition{Name: v.Name})
			}
		}
	}

	// Step 8: copy executable-location directive definitions everywhere.
	for _, dd := range super.Directives {
		if !isExecutableDirective(dd) {
			continue
		}
		for _, sg := range subgraphSchemas {
			if _, exists := sg.Directives[dd.Name]; exists {
				continue
			}
			p := position.DirectiveDefinitionPosition{DirectiveName: dd.Name}
			if err := p.PreInsert(sg); err != nil {
				continue
			}
			_ = p.Insert(sg, dd)
		}
	}

	// Step 9: prune empty containers.
	for _, sg := range subgraphSchemas {
		pruneEmpty(sg)
	}

	// Step 10: inject federation root operations.
	for name, sg := range subgraphSchemas {
		if err := injectFederationOperations(sg, subgraphFedVersion[name]); err != nil {
			return nil, err
		}
	}

	// Step 11: optional validation.
	if opts.Validate != nil {
		for _, name := range out.Names() {
			sg, _ := out.Get(name)
			if err := opts.Validate(sg.Schema); err != nil {
				return nil, errcode.New(errcode.InvalidFederationSupergraph, "subgraph %s: %v", name, err)
			}
		}
	}

	return out, nil
}

func splitTypeField(key string) (string, string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

func kindOf(s *position.Schema, typeName string) position.Kind {
	def, ok := s.Types[typeName]
	if !ok {
		return position.KindObject
	}
	if def.Kind == ast.Interface {
		return position.KindInterface
	}
	return position.KindObject
}

// candidateTypes collects every type in the supergraph that isn't part of
// the join/link machinery itself (spec.md §4.2 step 3).
func candidateTypes(super *position.Schema, joinLink *linkspec.Link) []*ast.Definition {
	skip := map[string]bool{
		joinLink.TypeNameInSchema("Graph"):     true,
		joinLink.TypeNameInSchema("FieldSet"):  true,
		"link__Import":                         true,
		"link__Purpose":                        true,
		"Query": false, "Mutation": false, "Subscription": false,
	}
	var out []*ast.Definition
	names := make([]string, 0, len(super.Types))
	for name := range super.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if skip[name] {
			continue
		}
		if len(name) >= 2 && name[:2] == "__" {
			continue
		}
		out = append(out, super.Types[name])
	}
	return out
}

func copyField(sg *position.Schema, parent *ast.Definition, f *ast.FieldDefinition, joinField *ast.Directive) error {
	if _, ok := sg.Types[parent.Name]; !ok {
		return nil
	}
	fieldType := f.Type
	if joinField != nil {
		if t := argString(joinField, "type"); t != "" {
			if parsed, err := position.ParseTypeRef(t); err == nil {
				fieldType = parsed
			}
		}
	}
	fp := position.FieldPosition{Kind: position.KindObjectField, TypeName: parent.Name, FieldName: f.Name}
	if parent.Kind == ast.Interface {
		fp.Kind = position.KindInterfaceField
	}
	if _, exists := fp.TryGet(sg); exists {
		return nil
	}
	clone := &ast.FieldDefinition{Name: f.Name, Type: fieldType, Arguments: f.Arguments}
	if err := fp.Insert(sg, clone); err != nil {
		return err
	}
	if joinField != nil {
		if req := argString(joinField, "requires"); req != "" {
			_ = ensureDirectiveDef(sg, "requires")
			_ = fp.InsertDirective(sg, &ast.Directive{Name: "requires", Arguments: ast.ArgumentList{
				{Name: "fields", Value: &ast.Value{Kind: ast.StringValue, Raw: req}},
			}})
		}
		if prov := argString(joinField, "provides"); prov != "" {
			_ = ensureDirectiveDef(sg, "provides")
			_ = fp.InsertDirective(sg, &ast.Directive{Name: "provides", Arguments: ast.ArgumentList{
				{Name: "fields", Value: &ast.Value{Kind: ast.StringValue, Raw: prov}},
			}})
		}
		if argBool(joinField, "external") {
			_ = ensureDirectiveDef(sg, "external")
			_ = fp.InsertDirective(sg, &ast.Directive{Name: "external"})
			if sg.Subgraph == nil {
				sg.Subgraph = &position.SubgraphMetadata{ExternalFields: map[position.FieldPosition]bool{}}
			} else if sg.Subgraph.ExternalFields == nil {
				sg.Subgraph.ExternalFields = map[position.FieldPosition]bool{}
			}
			sg.Subgraph.ExternalFields[fp] = true
		}
		if from := argString(joinField, "override"); from != "" {
			_ = ensureDirectiveDef(sg, "override")
			_ = fp.InsertDirective(sg, &ast.Directive{Name: "override", Arguments: ast.ArgumentList{
				{Name: "from", Value: &ast.Value{Kind: ast.StringValue, Raw: from}},
			}})
		}
	}
	return nil
}

func isExternalField(f *ast.FieldDefinition) bool {
	return f.Directives.ForName("external") != nil
}

// ensureDirectiveDef copies one federation directive definition (by name)
// into sg if not already present, resolving the definition through
// federationVersions at its latest registered version.
func ensureDirectiveDef(sg *position.Schema, name string) error {
	if _, exists := sg.Directives[name]; exists {
		return nil
	}
	latest, ok := federationVersions.Latest()
	if !ok {
		return errcode.Internal("no federation spec version registered")
	}
	for _, dd := range latest.Handler() {
		if dd.Name == name {
			p := position.DirectiveDefinitionPosition{DirectiveName: name}
			if err := p.PreInsert(sg); err != nil {
				return nil // already reserved by a concurrent ensure; fine
			}
			for _, scalar := range federationScalarNames {
				if err := insertScalar(sg, scalar); err != nil {
					return err
				}
			}
			return p.Insert(sg, dd)
		}
	}
	return nil
}

func pruneEmpty(sg *position.Schema) {
	changed := true
	for changed {
		changed = false
		for name, def := range sg.Types {
			switch def.Kind {
			case ast.Object, ast.Interface, ast.InputObject:
				if len(def.Fields) == 0 {
					_ = position.TypePosition{Kind: kindOf(sg, name), TypeName: name}.RemoveRecursive(sg)
					changed = true
				}
			case ast.Union:
				if len(def.Types) == 0 {
					_ = position.TypePosition{Kind: position.KindUnion, TypeName: name}.RemoveRecursive(sg)
					changed = true
				}
			}
			if changed {
				break
			}
		}
	}
}

func argString(d *ast.Directive, name string) string {
	a := d.Arguments.ForName(name)
	if a == nil || a.Value == nil {
		return ""
	}
	return a.Value.Raw
}

func argEnum(d *ast.Directive, name string) string { return argString(d, name) }

func argBool(d *ast.Directive, name string) bool {
	a := d.Arguments.ForName(name)
	return a != nil && a.Value != nil && a.Value.Raw == "true"
}
