package position

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/federation-go/core/errcode"
)

func astKindFor(k Kind) ast.DefinitionKind {
	switch k {
	case KindScalar:
		return ast.Scalar
	case KindObject:
		return ast.Object
	case KindInterface:
		return ast.Interface
	case KindUnion:
		return ast.Union
	case KindEnum:
		return ast.Enum
	case KindInputObject:
		return ast.InputObject
	default:
		return ""
	}
}

// --- TypePosition -----------------------------------------------------

func (p TypePosition) Get(s *Schema) (*ast.Definition, error) {
	def, ok := p.TryGet(s)
	if !ok {
		return nil, errcode.Internal("no %s", p.String())
	}
	if def.Kind != astKindFor(p.Kind) {
		return nil, errcode.Internal("%s has kind %s, not %s", p.String(), def.Kind, p.Kind)
	}
	return def, nil
}

func (p TypePosition) TryGet(s *Schema) (*ast.Definition, bool) {
	d, ok := s.Types[p.TypeName]
	return d, ok
}

// PreInsert reserves TypeName in the referencer index (spec.md §4.1).
func (p TypePosition) PreInsert(s *Schema) error {
	if isBuiltinTypeName(p.TypeName) {
		return nil
	}
	if s.Referencers.HasType(p.TypeName) {
		return errcode.Internal("type %s already reserved", p.TypeName)
	}
	s.Referencers.ReserveType(p.TypeName)
	return nil
}

// Insert stores def under p, after walking its references and requiring
// every one of them to already exist (spec.md §4.1).
func (p TypePosition) Insert(s *Schema, def *ast.Definition) error {
	if isBuiltinTypeName(p.TypeName) {
		if _, exists := s.Types[p.TypeName]; exists {
			return nil
		}
	} else if !s.Referencers.HasType(p.TypeName) {
		return errcode.Internal("insert %s without pre_insert", p.String())
	} else if _, exists := s.Types[p.TypeName]; exists {
		return errcode.Internal("duplicate type %s", p.TypeName)
	}
	if err := insertTypeReferences(s, def); err != nil {
		return err
	}
	s.Types[p.TypeName] = def
	return nil
}

// Remove removes the type and cascades to every direct referencer
// (spec.md §4.1 "remove"): it does not recurse further than one level.
func (p TypePosition) Remove(s *Schema) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("remove non-existent type %s", p.TypeName)
	}
	refs := s.Referencers.ForType(p.TypeName)
	if refs == nil {
		return errcode.Internal("missing referencer slot for %s", p.TypeName)
	}
	for fp := range refs.ObjectFields {
		if err := fp.Remove(s); err != nil {
			return err
		}
	}
	for fp := range refs.InterfaceFields {
		if err := fp.Remove(s); err != nil {
			return err
		}
	}
	for fp := range refs.InputObjectFields {
		if err := fp.Remove(s); err != nil {
			return err
		}
	}
	for ap := range refs.ObjectFieldArgs {
		if err := ap.Remove(s); err != nil {
			return err
		}
	}
	for ap := range refs.InterfaceFieldArgs {
		if err := ap.Remove(s); err != nil {
			return err
		}
	}
	for ap := range refs.DirectiveArgs {
		if err := ap.Remove(s); err != nil {
			return err
		}
	}
	for mp := range refs.UnionMembers {
		if err := mp.Remove(s); err != nil {
			return err
		}
	}
	for ip := range refs.Implements {
		if err := ip.Remove(s); err != nil {
			return err
		}
	}
	for rp := range refs.SchemaRoots {
		if err := rp.Remove(s); err != nil {
			return err
		}
	}
	removeTypeReferences(s, def)
	delete(s.Types, p.TypeName)
	s.Referencers.DropType(p.TypeName)
	return nil
}

// RemoveRecursive removes p, then cascades using the recursive variant so
// containers left empty disappear too (spec.md §4.1 "remove_recursive").
func (p TypePosition) RemoveRecursive(s *Schema) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("remove_recursive non-existent type %s", p.TypeName)
	}
	refs := s.Referencers.ForType(p.TypeName)
	if refs == nil {
		return errcode.Internal("missing referencer slot for %s", p.TypeName)
	}
	parents := map[string]struct{}{}
	for fp := range refs.ObjectFields {
		parents[fp.TypeName] = struct{}{}
		if err := fp.Remove(s); err != nil {
			return err
		}
	}
	for fp := range refs.InterfaceFields {
		parents[fp.TypeName] = struct{}{}
		if err := fp.Remove(s); err != nil {
			return err
		}
	}
	for fp := range refs.InputObjectFields {
		parents[fp.TypeName] = struct{}{}
		if err := fp.Remove(s); err != nil {
			return err
		}
	}
	for ap := range refs.ObjectFieldArgs {
		if err := ap.Remove(s); err != nil {
			return err
		}
	}
	for ap := range refs.InterfaceFieldArgs {
		if err := ap.Remove(s); err != nil {
			return err
		}
	}
	for ap := range refs.DirectiveArgs {
		if err := ap.Remove(s); err != nil {
			return err
		}
	}
	for mp := range refs.UnionMembers {
		parents[mp.TypeName] = struct{}{}
		if err := mp.Remove(s); err != nil {
			return err
		}
	}
	for ip := range refs.Implements {
		parents[ip.TypeName] = struct{}{}
		if err := ip.Remove(s); err != nil {
			return err
		}
	}
	for rp := range refs.SchemaRoots {
		if err := rp.Remove(s); err != nil {
			return err
		}
	}
	removeTypeReferences(s, def)
	delete(s.Types, p.TypeName)
	s.Referencers.DropType(p.TypeName)

	// Cascade: any parent container left with no fields/members disappears
	// too, recursively.
	for name := range parents {
		if name == p.TypeName {
			continue
		}
		other, ok := s.Types[name]
		if !ok {
			continue
		}
		if isEmptyContainer(other) {
			otherPos := TypePosition{Kind: kindOfDefinition(other), TypeName: name}
			if err := otherPos.RemoveRecursive(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func kindOfDefinition(d *ast.Definition) Kind {
	switch d.Kind {
	case ast.Scalar:
		return KindScalar
	case ast.Object:
		return KindObject
	case ast.Interface:
		return KindInterface
	case ast.Union:
		return KindUnion
	case ast.Enum:
		return KindEnum
	case ast.InputObject:
		return KindInputObject
	default:
		return KindScalar
	}
}

func isEmptyContainer(d *ast.Definition) bool {
	switch d.Kind {
	case ast.Object, ast.Interface, ast.InputObject:
		return len(d.Fields) == 0
	case ast.Union:
		return len(d.Types) == 0
	default:
		return false
	}
}

// InsertDirective appends a directive application to def, updating the
// directive's referencer set. Rejects an application pointer-equal to one
// already present (spec.md §4.1).
func (p TypePosition) InsertDirective(s *Schema, d *ast.Directive) error {
	def, err := p.Get(s)
	if err != nil {
		return err
	}
	for _, existing := range def.Directives {
		if existing == d {
			return errcode.Internal("duplicate directive application on %s", p.String())
		}
	}
	def.Directives = append(def.Directives, d)
	return addDirectiveRefForType(s, d.Name, p)
}

func addDirectiveRefForType(s *Schema, directiveName string, p TypePosition) error {
	dref := s.Referencers.ForDirective(directiveName)
	if dref == nil {
		return errcode.Internal("directive %s not registered", directiveName)
	}
	switch p.Kind {
	case KindObject:
		dref.Objects.Add(p)
	case KindInterface:
		dref.Interfaces.Add(p)
	case KindUnion:
		dref.Unions.Add(p)
	case KindEnum:
		dref.Enums.Add(p)
	case KindInputObject:
		dref.InputObjects.Add(p)
	case KindScalar:
		dref.Scalars.Add(p)
	}
	return nil
}

// InsertImplementsInterface records that p implements interfaceName.
func (p TypePosition) InsertImplementsInterface(s *Schema, interfaceName string) error {
	def, err := p.Get(s)
	if err != nil {
		return err
	}
	for _, existing := range def.Interfaces {
		if existing == interfaceName {
			return errcode.Internal("%s already implements %s", p.String(), interfaceName)
		}
	}
	if !s.Referencers.HasType(interfaceName) {
		return errcode.Internal("implements references unknown interface %s", interfaceName)
	}
	def.Interfaces = append(def.Interfaces, interfaceName)
	ref := s.Referencers.ForType(interfaceName)
	ref.Implements.Add(ImplementsPosition{TypeName: p.TypeName, InterfaceName: interfaceName})
	return nil
}

// RemoveImplementsInterface undoes InsertImplementsInterface.
func (p TypePosition) RemoveImplementsInterface(s *Schema, interfaceName string) error {
	return ImplementsPosition{TypeName: p.TypeName, InterfaceName: interfaceName}.Remove(s)
}

// InsertMember adds member to a union type.
func (p TypePosition) InsertMember(s *Schema, member string) error {
	def, err := p.Get(s)
	if err != nil {
		return err
	}
	if def.Kind != ast.Union {
		return errcode.Internal("%s is not a union", p.String())
	}
	for _, existing := range def.Types {
		if existing == member {
			return errcode.Internal("%s already has member %s", p.String(), member)
		}
	}
	if !s.Referencers.HasType(member) {
		return errcode.Internal("union member references unknown type %s", member)
	}
	def.Types = append(def.Types, member)
	ref := s.Referencers.ForType(member)
	ref.UnionMembers.Add(UnionMemberPosition{TypeName: p.TypeName, MemberName: member})
	return nil
}

// RemoveMemberRecursive removes a union member and, if the union is left
// with no members, removes the union itself recursively.
func (mp UnionMemberPosition) RemoveMemberRecursive(s *Schema) error {
	if err := mp.Remove(s); err != nil {
		return err
	}
	def, ok := s.Types[mp.TypeName]
	if !ok {
		return nil
	}
	if len(def.Types) == 0 {
		return TypePosition{Kind: KindUnion, TypeName: mp.TypeName}.RemoveRecursive(s)
	}
	return nil
}

// --- ImplementsPosition ------------------------------------------------

func (p ImplementsPosition) Remove(s *Schema) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("implements edge on unknown type %s", p.TypeName)
	}
	out := def.Interfaces[:0]
	found := false
	for _, name := range def.Interfaces {
		if name == p.InterfaceName && !found {
			found = true
			continue
		}
		out = append(out, name)
	}
	def.Interfaces = out
	if !found {
		return errcode.Internal("%s does not implement %s", p.TypeName, p.InterfaceName)
	}
	if ref := s.Referencers.ForType(p.InterfaceName); ref != nil {
		ref.Implements.Remove(p)
	}
	return nil
}

// --- UnionMemberPosition -------------------------------------------------

func (p UnionMemberPosition) Remove(s *Schema) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("union member edge on unknown union %s", p.TypeName)
	}
	out := def.Types[:0]
	found := false
	for _, name := range def.Types {
		if name == p.MemberName && !found {
			found = true
			continue
		}
		out = append(out, name)
	}
	def.Types = out
	if !found {
		return errcode.Internal("%s is not a member of %s", p.MemberName, p.TypeName)
	}
	if ref := s.Referencers.ForType(p.MemberName); ref != nil {
		ref.UnionMembers.Remove(p)
	}
	return nil
}

// --- FieldPosition -------------------------------------------------------

func (p FieldPosition) Get(s *Schema) (*ast.FieldDefinition, error) {
	f, ok := p.TryGet(s)
	if !ok {
		return nil, errcode.Internal("no %s", p.String())
	}
	return f, nil
}

func (p FieldPosition) TryGet(s *Schema) (*ast.FieldDefinition, bool) {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return nil, false
	}
	for _, f := range def.Fields {
		if f.Name == p.FieldName {
			return f, true
		}
	}
	return nil, false
}

func (p FieldPosition) PreInsert(s *Schema) error {
	if _, exists := p.TryGet(s); exists {
		return errcode.Internal("field %s already reserved", p.String())
	}
	return nil
}

func (p FieldPosition) Insert(s *Schema, f *ast.FieldDefinition) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("insert field on unknown type %s", p.TypeName)
	}
	for _, existing := range def.Fields {
		if existing.Name == f.Name {
			return errcode.Internal("duplicate field %s", p.String())
		}
	}
	if err := insertFieldReferences(s, p, f); err != nil {
		return err
	}
	def.Fields = append(def.Fields, f)
	return nil
}

func (p FieldPosition) Remove(s *Schema) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("remove field on unknown type %s", p.TypeName)
	}
	idx := -1
	for i, f := range def.Fields {
		if f.Name == p.FieldName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errcode.Internal("no such field %s", p.String())
	}
	f := def.Fields[idx]
	removeFieldReferences(s, p, f)
	def.Fields = append(def.Fields[:idx], def.Fields[idx+1:]...)
	return nil
}

func (p FieldPosition) InsertDirective(s *Schema, d *ast.Directive) error {
	f, err := p.Get(s)
	if err != nil {
		return err
	}
	for _, existing := range f.Directives {
		if existing == d {
			return errcode.Internal("duplicate directive application on %s", p.String())
		}
	}
	f.Directives = append(f.Directives, d)
	dref := s.Referencers.ForDirective(d.Name)
	if dref == nil {
		return errcode.Internal("directive %s not registered", d.Name)
	}
	switch p.Kind {
	case KindObjectField:
		dref.ObjectFields.Add(p)
	case KindInterfaceField:
		dref.InterfaceFields.Add(p)
	case KindInputObjectField:
		dref.InputObjectFields.Add(p)
	}
	return nil
}

// --- ArgumentPosition ------------------------------------------------

func (p ArgumentPosition) Get(s *Schema) (*ast.ArgumentDefinition, error) {
	a, ok := p.TryGet(s)
	if !ok {
		return nil, errcode.Internal("no %s", p.String())
	}
	return a, nil
}

func (p ArgumentPosition) TryGet(s *Schema) (*ast.ArgumentDefinition, bool) {
	var args ast.ArgumentDefinitionList
	if p.Kind == KindDirectiveArgument {
		dd, ok := s.Directives[p.HolderName]
		if !ok {
			return nil, false
		}
		args = dd.Arguments
	} else {
		def, ok := s.Types[p.HolderName]
		if !ok {
			return nil, false
		}
		for _, f := range def.Fields {
			if f.Name == p.FieldName {
				args = f.Arguments
				break
			}
		}
	}
	for _, a := range args {
		if a.Name == p.ArgName {
			return a, true
		}
	}
	return nil, false
}

func (p ArgumentPosition) Insert(s *Schema, a *ast.ArgumentDefinition) error {
	if _, exists := p.TryGet(s); exists {
		return errcode.Internal("duplicate argument %s", p.String())
	}
	if err := insertTypeRefAndDirectives(s, a.Type, a.Directives, refAdderForArg(p)); err != nil {
		return err
	}
	if p.Kind == KindDirectiveArgument {
		dd := s.Directives[p.HolderName]
		dd.Arguments = append(dd.Arguments, a)
		return nil
	}
	def := s.Types[p.HolderName]
	for _, f := range def.Fields {
		if f.Name == p.FieldName {
			f.Arguments = append(f.Arguments, a)
			return nil
		}
	}
	return errcode.Internal("insert argument on unknown field %s.%s", p.HolderName, p.FieldName)
}

func (p ArgumentPosition) Remove(s *Schema) error {
	a, ok := p.TryGet(s)
	if !ok {
		return errcode.Internal("no such argument %s", p.String())
	}
	removeTypeRefAndDirectives(s, a.Type, a.Directives, refRemoverForArg(p))
	if p.Kind == KindDirectiveArgument {
		dd := s.Directives[p.HolderName]
		dd.Arguments = removeArgByName(dd.Arguments, p.ArgName)
		return nil
	}
	def := s.Types[p.HolderName]
	for _, f := range def.Fields {
		if f.Name == p.FieldName {
			f.Arguments = removeArgByName(f.Arguments, p.ArgName)
			return nil
		}
	}
	return nil
}

func removeArgByName(args ast.ArgumentDefinitionList, name string) ast.ArgumentDefinitionList {
	out := args[:0]
	for _, a := range args {
		if a.Name != name {
			out = append(out, a)
		}
	}
	return out
}

// --- EnumValuePosition ------------------------------------------------

func (p EnumValuePosition) Get(s *Schema) (*ast.EnumValueDefinition, error) {
	v, ok := p.TryGet(s)
	if !ok {
		return nil, errcode.Internal("no %s", p.String())
	}
	return v, nil
}

func (p EnumValuePosition) TryGet(s *Schema) (*ast.EnumValueDefinition, bool) {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return nil, false
	}
	for _, v := range def.EnumValues {
		if v.Name == p.ValueName {
			return v, true
		}
	}
	return nil, false
}

func (p EnumValuePosition) Insert(s *Schema, v *ast.EnumValueDefinition) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("insert enum value on unknown enum %s", p.TypeName)
	}
	for _, existing := range def.EnumValues {
		if existing.Name == v.Name {
			return errcode.Internal("duplicate enum value %s", p.String())
		}
	}
	for _, d := range v.Directives {
		dref := s.Referencers.ForDirective(d.Name)
		if dref == nil {
			return errcode.Internal("directive %s not registered", d.Name)
		}
		dref.EnumValues.Add(p)
	}
	def.EnumValues = append(def.EnumValues, v)
	return nil
}

func (p EnumValuePosition) Remove(s *Schema) error {
	def, ok := s.Types[p.TypeName]
	if !ok {
		return errcode.Internal("remove enum value on unknown enum %s", p.TypeName)
	}
	idx := -1
	for i, v := range def.EnumValues {
		if v.Name == p.ValueName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errcode.Internal("no such enum value %s", p.String())
	}
	v := def.EnumValues[idx]
	for _, d := range v.Directives {
		if dref := s.Referencers.ForDirective(d.Name); dref != nil {
			dref.EnumValues.Remove(p)
		}
	}
	def.EnumValues = append(def.EnumValues[:idx], def.EnumValues[idx+1:]...)
	return nil
}

// --- SchemaRootPosition ------------------------------------------------

func (p SchemaRootPosition) Get(s *Schema) (string, error) {
	name, ok := p.TryGet(s)
	if !ok {
		return "", errcode.Internal("no root mapped for %s", p.RootKind)
	}
	return name, nil
}

func (p SchemaRootPosition) TryGet(s *Schema) (string, bool) {
	switch p.RootKind {
	case ast.Query:
		return s.QueryRootName, s.QueryRootName != ""
	case ast.Mutation:
		return s.MutationRootName, s.MutationRootName != ""
	case ast.Subscription:
		return s.SubscriptionName, s.SubscriptionName != ""
	}
	return "", false
}

// Insert maps root operation p.RootKind to typeName, requiring typeName to
// already have a referencer slot (spec.md §4.1 invariant 3). The kind of
// that type is not checked.
func (p SchemaRootPosition) Insert(s *Schema, typeName string) error {
	if !s.Referencers.HasType(typeName) {
		return errcode.Internal("root %s references unknown type %s", p.RootKind, typeName)
	}
	switch p.RootKind {
	case ast.Query:
		s.QueryRootName = typeName
	case ast.Mutation:
		s.MutationRootName = typeName
	case ast.Subscription:
		s.SubscriptionName = typeName
	default:
		return errcode.Internal("unknown root kind %s", p.RootKind)
	}
	s.Referencers.ForType(typeName).SchemaRoots.Add(p)
	return nil
}

func (p SchemaRootPosition) Remove(s *Schema) error {
	typeName, ok := p.TryGet(s)
	if !ok {
		return errcode.Internal("no root mapped for %s", p.RootKind)
	}
	switch p.RootKind {
	case ast.Query:
		s.QueryRootName = ""
	case ast.Mutation:
		s.MutationRootName = ""
	case ast.Subscription:
		s.SubscriptionName = ""
	}
	if ref := s.Referencers.ForType(typeName); ref != nil {
		ref.SchemaRoots.Remove(p)
	}
	return nil
}

// --- DirectiveDefinitionPosition ---------------------------------------

func (p DirectiveDefinitionPosition) Get(s *Schema) (*ast.DirectiveDefinition, error) {
	d, ok := s.Directives[p.DirectiveName]
	if !ok {
		return nil, errcode.Internal("no %s", p.String())
	}
	return d, nil
}

func (p DirectiveDefinitionPosition) TryGet(s *Schema) (*ast.DirectiveDefinition, bool) {
	d, ok := s.Directives[p.DirectiveName]
	return d, ok
}

func (p DirectiveDefinitionPosition) PreInsert(s *Schema) error {
	if isBuiltinDirectiveName(p.DirectiveName) {
		return nil
	}
	if s.Referencers.HasDirective(p.DirectiveName) {
		return errcode.Internal("directive %s already reserved", p.DirectiveName)
	}
	s.Referencers.ReserveDirective(p.DirectiveName)
	return nil
}

func (p DirectiveDefinitionPosition) Insert(s *Schema, d *ast.DirectiveDefinition) error {
	if isBuiltinDirectiveName(p.DirectiveName) {
		if _, exists := s.Directives[p.DirectiveName]; exists {
			return nil
		}
	} else if !s.Referencers.HasDirective(p.DirectiveName) {
		return errcode.Internal("insert %s without pre_insert", p.String())
	} else if _, exists := s.Directives[p.DirectiveName]; exists {
		return errcode.Internal("duplicate directive %s", p.DirectiveName)
	}
	for _, arg := range d.Arguments {
		if err := insertTypeRefAndDirectives(s, arg.Type, arg.Directives, refAdderForArg(ArgumentPosition{
			Kind: KindDirectiveArgument, HolderName: p.DirectiveName, ArgName: arg.Name,
		})); err != nil {
			return err
		}
	}
	s.Directives[p.DirectiveName] = d
	return nil
}

func (p DirectiveDefinitionPosition) Remove(s *Schema) error {
	d, ok := s.Directives[p.DirectiveName]
	if !ok {
		return errcode.Internal("remove non-existent directive %s", p.DirectiveName)
	}
	for _, arg := range d.Arguments {
		removeTypeRefAndDirectives(s, arg.Type, arg.Directives, refRemoverForArg(ArgumentPosition{
			Kind: KindDirectiveArgument, HolderName: p.DirectiveName, ArgName: arg.Name,
		}))
	}
	delete(s.Directives, p.DirectiveName)
	s.Referencers.DropDirective(p.DirectiveName)
	return nil
}

// --- reference-walking helpers ------------------------------------------

func namedTypeOf(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

// refAdder/refRemover close over one ArgumentPosition and know how to wire
// both its type reference and any directives applied to it.
type refAdder struct{ p ArgumentPosition }
type refRemover struct{ p ArgumentPosition }

func refAdderForArg(p ArgumentPosition) refAdder   { return refAdder{p} }
func refRemoverForArg(p ArgumentPosition) refRemover { return refRemover{p} }

func (a refAdder) addType(s *Schema, typeName string) error {
	ref := s.Referencers.ForType(typeName)
	if ref == nil {
		return errcode.Internal("%s references unknown type %s", a.p.String(), typeName)
	}
	switch a.p.Kind {
	case KindObjectFieldArgument:
		ref.ObjectFieldArgs.Add(a.p)
	case KindInterfaceFieldArgument:
		ref.InterfaceFieldArgs.Add(a.p)
	case KindDirectiveArgument:
		ref.DirectiveArgs.Add(a.p)
	}
	return nil
}

func (a refAdder) addDirective(s *Schema, directiveName string) error {
	dref := s.Referencers.ForDirective(directiveName)
	if dref == nil {
		return errcode.Internal("directive %s not registered", directiveName)
	}
	switch a.p.Kind {
	case KindObjectFieldArgument:
		dref.ObjectFieldArgs.Add(a.p)
	case KindInterfaceFieldArgument:
		dref.InterfaceFieldArgs.Add(a.p)
	case KindDirectiveArgument:
		dref.DirectiveArgs.Add(a.p)
	}
	return nil
}

func (r refRemover) removeType(s *Schema, typeName string) {
	ref := s.Referencers.ForType(typeName)
	if ref == nil {
		return
	}
	switch r.p.Kind {
	case KindObjectFieldArgument:
		ref.ObjectFieldArgs.Remove(r.p)
	case KindInterfaceFieldArgument:
		ref.InterfaceFieldArgs.Remove(r.p)
	case KindDirectiveArgument:
		ref.DirectiveArgs.Remove(r.p)
	}
}

func (r refRemover) removeDirective(s *Schema, directiveName string) {
	dref := s.Referencers.ForDirective(directiveName)
	if dref == nil {
		return
	}
	switch r.p.Kind {
	case KindObjectFieldArgument:
		dref.ObjectFieldArgs.Remove(r.p)
	case KindInterfaceFieldArgument:
		dref.InterfaceFieldArgs.Remove(r.p)
	case KindDirectiveArgument:
		dref.DirectiveArgs.Remove(r.p)
	}
}

// insertTypeRefAndDirectives wires one argument's type reference plus any
// directive applications attached to the argument itself.
func insertTypeRefAndDirectives(s *Schema, t *ast.Type, directives ast.DirectiveList, add refAdder) error {
	if t != nil {
		if err := add.addType(s, namedTypeOf(t)); err != nil {
			return err
		}
	}
	for _, d := range directives {
		if err := add.addDirective(s, d.Name); err != nil {
			return err
		}
	}
	return nil
}

func removeTypeRefAndDirectives(s *Schema, t *ast.Type, directives ast.DirectiveList, remove refRemover) {
	if t != nil {
		remove.removeType(s, namedTypeOf(t))
	}
	for _, d := range directives {
		remove.removeDirective(s, d.Name)
	}
}

// insertFieldReferences wires a field's type, its arguments, and its
// directive applications into the referencer index.
func insertFieldReferences(s *Schema, p FieldPosition, f *ast.FieldDefinition) error {
	fieldTypeName := namedTypeOf(f.Type)
	ref := s.Referencers.ForType(fieldTypeName)
	if ref == nil {
		return errcode.Internal("field %s references unknown type %s", p.String(), fieldTypeName)
	}
	switch p.Kind {
	case KindObjectField:
		ref.ObjectFields.Add(p)
	case KindInterfaceField:
		ref.InterfaceFields.Add(p)
	case KindInputObjectField:
		ref.InputObjectFields.Add(p)
	}
	for _, d := range f.Directives {
		dref := s.Referencers.ForDirective(d.Name)
		if dref == nil {
			return errcode.Internal("directive %s not registered", d.Name)
		}
		switch p.Kind {
		case KindObjectField:
			dref.ObjectFields.Add(p)
		case KindInterfaceField:
			dref.InterfaceFields.Add(p)
		case KindInputObjectField:
			dref.InputObjectFields.Add(p)
		}
	}
	argKind := KindObjectFieldArgument
	if p.Kind == KindInterfaceField {
		argKind = KindInterfaceFieldArgument
	}
	for _, a := range f.Arguments {
		ap := ArgumentPosition{Kind: argKind, HolderName: p.TypeName, FieldName: p.FieldName, ArgName: a.Name}
		if err := insertTypeRefAndDirectives(s, a.Type, a.Directives, refAdderForArg(ap)); err != nil {
			return err
		}
	}
	return nil
}

func removeFieldReferences(s *Schema, p FieldPosition, f *ast.FieldDefinition) {
	fieldTypeName := namedTypeOf(f.Type)
	if ref := s.Referencers.ForType(fieldTypeName); ref != nil {
		switch p.Kind {
		case KindObjectField:
			ref.ObjectFields.Remove(p)
		case KindInterfaceField:
			ref.InterfaceFields.Remove(p)
		case KindInputObjectField:
			ref.InputObjectFields.Remove(p)
		}
	}
	for _, d := range f.Directives {
		if dref := s.Referencers.ForDirective(d.Name); dref != nil {
			switch p.Kind {
			case KindObjectField:
				dref.ObjectFields.Remove(p)
			case KindInterfaceField:
				dref.InterfaceFields.Remove(p)
			case KindInputObjectField:
				dref.InputObjectFields.Remove(p)
			}
		}
	}
	argKind := KindObjectFieldArgument
	if p.Kind == KindInterfaceField {
		argKind = KindInterfaceFieldArgument
	}
	for _, a := range f.Arguments {
		ap := ArgumentPosition{Kind: argKind, HolderName: p.TypeName, FieldName: p.FieldName, ArgName: a.Name}
		removeTypeRefAndDirectives(s, a.Type, a.Directives, refRemoverForArg(ap))
	}
}

// insertTypeReferences walks a freshly-inserted type definition's own
// references (directives, implemented interfaces, fields, union members,
// enum values) and wires them into the referencer index (spec.md §4.1
// "insert ... walks the element's directives ... calling insert_references
// on each").
func insertTypeReferences(s *Schema, def *ast.Definition) error {
	tp := TypePosition{Kind: kindOfDefinition(def), TypeName: def.Name}
	for _, d := range def.Directives {
		if err := addDirectiveRefForType(s, d.Name, tp); err != nil {
			return err
		}
	}
	for _, iface := range def.Interfaces {
		if !s.Referencers.HasType(iface) {
			return errcode.Internal("%s implements unknown interface %s", tp.String(), iface)
		}
		s.Referencers.ForType(iface).Implements.Add(ImplementsPosition{TypeName: def.Name, InterfaceName: iface})
	}
	for _, f := range def.Fields {
		kind := KindObjectField
		switch def.Kind {
		case ast.Interface:
			kind = KindInterfaceField
		case ast.InputObject:
			kind = KindInputObjectField
		}
		fp := FieldPosition{Kind: kind, TypeName: def.Name, FieldName: f.Name}
		if err := insertFieldReferences(s, fp, f); err != nil {
			return err
		}
	}
	for _, member := range def.Types {
		if !s.Referencers.HasType(member) {
			return errcode.Internal("%s has unknown union member %s", tp.String(), member)
		}
		s.Referencers.ForType(member).UnionMembers.Add(UnionMemberPosition{TypeName: def.Name, MemberName: member})
	}
	for _, v := range def.EnumValues {
		for _, d := range v.Directives {
			dref := s.Referencers.ForDirective(d.Name)
			if dref == nil {
				return errcode.Internal("directive %s not registered", d.Name)
			}
			dref.EnumValues.Add(EnumValuePosition{TypeName: def.Name, ValueName: v.Name})
		}
	}
	return nil
}

func removeTypeReferences(s *Schema, def *ast.Definition) {
	tp := TypePosition{Kind: kindOfDefinition(def), TypeName: def.Name}
	for _, d := range def.Directives {
		if dref := s.Referencers.ForDirective(d.Name); dref != nil {
			switch def.Kind {
			case ast.Object:
				dref.Objects.Remove(tp)
			case ast.Interface:
				dref.Interfaces.Remove(tp)
			case ast.Union:
				dref.Unions.Remove(tp)
			case ast.Enum:
				dref.Enums.Remove(tp)
			case ast.InputObject:
				dref.InputObjects.Remove(tp)
			case ast.Scalar:
				dref.Scalars.Remove(tp)
			}
		}
	}
	for _, iface := range def.Interfaces {
		if ref := s.Referencers.ForType(iface); ref != nil {
			ref.Implements.Remove(ImplementsPosition{TypeName: def.Name, InterfaceName: iface})
		}
	}
	for _, f := range def.Fields {
		kind := KindObjectField
		switch def.Kind {
		case ast.Interface:
			kind = KindInterfaceField
		case ast.InputObject:
			kind = KindInputObjectField
		}
		removeFieldReferences(s, FieldPosition{Kind: kind, TypeName: def.Name, FieldName: f.Name}, f)
	}
	for _, member := range def.Types {
		if ref := s.Referencers.ForType(member); ref != nil {
			ref.UnionMembers.Remove(UnionMemberPosition{TypeName: def.Name, MemberName: member})
		}
	}
	for _, v := range def.EnumValues {
		for _, d := range v.Directives {
			if dref := s.Referencers.ForDirective(d.Name); dref != nil {
				dref.EnumValues.Remove(EnumValuePosition{TypeName: def.Name, ValueName: v.Name})
			}
		}
	}
}
