package position

// RefSet is a small generic set, backed by a map, used for every referencer
// bucket below. Membership in a RefSet is the ground truth for "does some
// element in the schema reference this position" (spec.md §3 invariant).
type RefSet[T comparable] map[T]struct{}

func NewRefSet[T comparable]() RefSet[T] { return make(RefSet[T]) }

func (s RefSet[T]) Add(v T)             { s[v] = struct{}{} }
func (s RefSet[T]) Remove(v T)          { delete(s, v) }
func (s RefSet[T]) Contains(v T) bool   { _, ok := s[v]; return ok }
func (s RefSet[T]) Len() int            { return len(s) }
func (s RefSet[T]) List() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// TypeReferencers is the inverse index for one named type: every position
// in the schema that mentions it, partitioned by referencer kind
// (spec.md §3 "Referencers").
type TypeReferencers struct {
	ObjectFields       RefSet[FieldPosition]
	ObjectFieldArgs    RefSet[ArgumentPosition]
	InterfaceFields    RefSet[FieldPosition]
	InterfaceFieldArgs RefSet[ArgumentPosition]
	InputObjectFields  RefSet[FieldPosition]
	DirectiveArgs      RefSet[ArgumentPosition]
	UnionMembers       RefSet[UnionMemberPosition]
	Implements         RefSet[ImplementsPosition]
	SchemaRoots        RefSet[SchemaRootPosition]
}

func newTypeReferencers() *TypeReferencers {
	return &TypeReferencers{
		ObjectFields:       NewRefSet[FieldPosition](),
		ObjectFieldArgs:    NewRefSet[ArgumentPosition](),
		InterfaceFields:    NewRefSet[FieldPosition](),
		InterfaceFieldArgs: NewRefSet[ArgumentPosition](),
		InputObjectFields:  NewRefSet[FieldPosition](),
		DirectiveArgs:      NewRefSet[ArgumentPosition](),
		UnionMembers:       NewRefSet[UnionMemberPosition](),
		Implements:         NewRefSet[ImplementsPosition](),
		SchemaRoots:        NewRefSet[SchemaRootPosition](),
	}
}

// Empty reports whether nothing in the schema references this type anymore.
func (r *TypeReferencers) Empty() bool {
	return r.ObjectFields.Len() == 0 && r.ObjectFieldArgs.Len() == 0 &&
		r.InterfaceFields.Len() == 0 && r.InterfaceFieldArgs.Len() == 0 &&
		r.InputObjectFields.Len() == 0 && r.DirectiveArgs.Len() == 0 &&
		r.UnionMembers.Len() == 0 && r.Implements.Len() == 0 && r.SchemaRoots.Len() == 0
}

// DirectiveReferencers is the inverse index for one directive definition:
// every position that applies it, plus whether it is applied to the schema
// definition itself (spec.md §3 "A directive's Referencers additionally
// records whether it appears on the schema definition itself").
type DirectiveReferencers struct {
	Objects            RefSet[TypePosition]
	Interfaces         RefSet[TypePosition]
	Unions             RefSet[TypePosition]
	Enums              RefSet[TypePosition]
	InputObjects       RefSet[TypePosition]
	Scalars            RefSet[TypePosition]
	ObjectFields       RefSet[FieldPosition]
	InterfaceFields    RefSet[FieldPosition]
	InputObjectFields  RefSet[FieldPosition]
	ObjectFieldArgs    RefSet[ArgumentPosition]
	InterfaceFieldArgs RefSet[ArgumentPosition]
	DirectiveArgs      RefSet[ArgumentPosition]
	EnumValues         RefSet[EnumValuePosition]
	SchemaDefinition   bool
}

func newDirectiveReferencers() *DirectiveReferencers {
	return &DirectiveReferencers{
		Objects:            NewRefSet[TypePosition](),
		Interfaces:         NewRefSet[TypePosition](),
		Unions:             NewRefSet[TypePosition](),
		Enums:              NewRefSet[TypePosition](),
		InputObjects:       NewRefSet[TypePosition](),
		Scalars:            NewRefSet[TypePosition](),
		ObjectFields:       NewRefSet[FieldPosition](),
		InterfaceFields:    NewRefSet[FieldPosition](),
		InputObjectFields:  NewRefSet[FieldPosition](),
		ObjectFieldArgs:    NewRefSet[ArgumentPosition](),
		InterfaceFieldArgs: NewRefSet[ArgumentPosition](),
		DirectiveArgs:      NewRefSet[ArgumentPosition](),
		EnumValues:         NewRefSet[EnumValuePosition](),
	}
}

// Referencers is the full bidirectional inverse index for a Schema: for
// every named type and every directive definition, the set of positions
// that mention it.
type Referencers struct {
	types      map[string]*TypeReferencers
	directives map[string]*DirectiveReferencers
}

func NewReferencers() *Referencers {
	return &Referencers{
		types:      map[string]*TypeReferencers{},
		directives: map[string]*DirectiveReferencers{},
	}
}

// ReserveType creates an empty referencer slot for typeName. Pre-insert
// (spec.md §4.1) calls this before the type itself is stored.
func (r *Referencers) ReserveType(typeName string) { r.types[typeName] = newTypeReferencers() }

// ReserveDirective creates an empty referencer slot for directiveName.
func (r *Referencers) ReserveDirective(name string) { r.directives[name] = newDirectiveReferencers() }

func (r *Referencers) HasType(name string) bool { _, ok := r.types[name]; return ok }

func (r *Referencers) HasDirective(name string) bool { _, ok := r.directives[name]; return ok }

// ForType returns the referencer set for typeName, or nil if no slot was
// reserved for it.
func (r *Referencers) ForType(typeName string) *TypeReferencers { return r.types[typeName] }

// ForDirective returns the referencer set for a directive name, or nil.
func (r *Referencers) ForDirective(name string) *DirectiveReferencers { return r.directives[name] }

// DropType removes the referencer slot entirely (called once a type has been
// fully removed from the schema, not merely dereferenced).
func (r *Referencers) DropType(typeName string) { delete(r.types, typeName) }

func (r *Referencers) DropDirective(name string) { delete(r.directives, name) }
