// Package position implements the federation schema model: a position
// algebra addressing every element of a GraphQL schema, a bidirectional
// Referencers index, and the mutation primitives that keep both sides of
// that index in lock-step (spec.md §3 "Position", §4.1).
//
// Grounded on original_source/apollo-federation-internals/src/schema/position.rs
// (the invariant set and per-kind position shapes) and
// original_source/apollo-federation/src/schema/referencer.rs (the inverse
// index). Unlike the Rust source's one-struct-per-kind layout, positions of
// a similar shape (all "named type" kinds, all "field" kinds, all "argument"
// kinds) share one Go struct tagged by Kind — this keeps the algebra small
// without losing the ability to address any element precisely.
package position

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Kind identifies what a Position addresses.
type Kind uint8

const (
	KindSchema Kind = iota
	KindScalar
	KindObject
	KindInterface
	KindUnion
	KindEnum
	KindInputObject
	KindObjectField
	KindObjectFieldArgument
	KindInterfaceField
	KindInterfaceFieldArgument
	KindInputObjectField
	KindEnumValue
	KindUnionMember
	KindDirectiveDefinition
	KindDirectiveArgument
	KindSchemaRoot
	KindImplements
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindInterface:
		return "interface"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindInputObject:
		return "input_object"
	case KindObjectField:
		return "object_field"
	case KindObjectFieldArgument:
		return "object_field_argument"
	case KindInterfaceField:
		return "interface_field"
	case KindInterfaceFieldArgument:
		return "interface_field_argument"
	case KindInputObjectField:
		return "input_object_field"
	case KindEnumValue:
		return "enum_value"
	case KindUnionMember:
		return "union_member"
	case KindDirectiveDefinition:
		return "directive_definition"
	case KindDirectiveArgument:
		return "directive_argument"
	case KindSchemaRoot:
		return "schema_root"
	case KindImplements:
		return "implements"
	default:
		return "unknown"
	}
}

// Position is the common interface every position kind implements. Values
// are cheap to clone (plain structs of strings/enums) and independent of any
// particular Schema instance.
type Position interface {
	PosKind() Kind
	String() string
	Hash() uint64
}

func hashString(parts ...string) uint64 {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// SchemaPosition addresses the schema definition itself (its directive
// applications, not any root mapping — see SchemaRootPosition for that).
type SchemaPosition struct{}

func (SchemaPosition) PosKind() Kind { return KindSchema }
func (SchemaPosition) String() string { return "schema" }
func (SchemaPosition) Hash() uint64 { return hashString("schema") }

// TypePosition addresses a named type by its Kind (scalar/object/interface/
// union/enum/input-object) and name.
type TypePosition struct {
	Kind     Kind
	TypeName string
}

func (p TypePosition) PosKind() Kind { return p.Kind }
func (p TypePosition) String() string { return fmt.Sprintf("%s(%s)", p.Kind, p.TypeName) }
func (p TypePosition) Hash() uint64 { return hashString(p.Kind.String(), p.TypeName) }

// FieldPosition addresses a field by (parent type, field name). Kind is
// KindObjectField, KindInterfaceField, or KindInputObjectField.
type FieldPosition struct {
	Kind      Kind
	TypeName  string
	FieldName string
}

func (p FieldPosition) PosKind() Kind { return p.Kind }
func (p FieldPosition) String() string {
	return fmt.Sprintf("%s(%s.%s)", p.Kind, p.TypeName, p.FieldName)
}
func (p FieldPosition) Hash() uint64 {
	return hashString(p.Kind.String(), p.TypeName, p.FieldName)
}

func (p FieldPosition) typePosition() TypePosition {
	switch p.Kind {
	case KindObjectField:
		return TypePosition{Kind: KindObject, TypeName: p.TypeName}
	case KindInterfaceField:
		return TypePosition{Kind: KindInterface, TypeName: p.TypeName}
	default:
		return TypePosition{Kind: KindInputObject, TypeName: p.TypeName}
	}
}

// ArgumentPosition addresses an argument of a field or a directive
// definition. Kind is KindObjectFieldArgument, KindInterfaceFieldArgument, or
// KindDirectiveArgument; for the latter HolderName is a directive name, not
// a type name.
type ArgumentPosition struct {
	Kind       Kind
	HolderName string // type name (field arg) or directive name (directive arg)
	FieldName  string // empty for directive arguments
	ArgName    string
}

func (p ArgumentPosition) PosKind() Kind { return p.Kind }
func (p ArgumentPosition) String() string {
	if p.Kind == KindDirectiveArgument {
		return fmt.Sprintf("directive_argument(@%s(%s:))", p.HolderName, p.ArgName)
	}
	return fmt.Sprintf("%s(%s.%s(%s:))", p.Kind, p.HolderName, p.FieldName, p.ArgName)
}
func (p ArgumentPosition) Hash() uint64 {
	return hashString(p.Kind.String(), p.HolderName, p.FieldName, p.ArgName)
}

// EnumValuePosition addresses a value of an enum type.
type EnumValuePosition struct {
	TypeName  string
	ValueName string
}

func (p EnumValuePosition) PosKind() Kind { return KindEnumValue }
func (p EnumValuePosition) String() string {
	return fmt.Sprintf("enum_value(%s.%s)", p.TypeName, p.ValueName)
}
func (p EnumValuePosition) Hash() uint64 { return hashString("enum_value", p.TypeName, p.ValueName) }

// UnionMemberPosition addresses one member of a union type.
type UnionMemberPosition struct {
	TypeName   string
	MemberName string
}

func (p UnionMemberPosition) PosKind() Kind { return KindUnionMember }
func (p UnionMemberPosition) String() string {
	return fmt.Sprintf("union_member(%s.%s)", p.TypeName, p.MemberName)
}
func (p UnionMemberPosition) Hash() uint64 {
	return hashString("union_member", p.TypeName, p.MemberName)
}

// ImplementsPosition addresses one "implements" edge from an object or
// interface type to an interface it implements.
type ImplementsPosition struct {
	TypeName      string
	InterfaceName string
}

func (p ImplementsPosition) PosKind() Kind { return KindImplements }
func (p ImplementsPosition) String() string {
	return fmt.Sprintf("implements(%s implements %s)", p.TypeName, p.InterfaceName)
}
func (p ImplementsPosition) Hash() uint64 {
	return hashString("implements", p.TypeName, p.InterfaceName)
}

// DirectiveDefinitionPosition addresses a directive definition by name.
type DirectiveDefinitionPosition struct {
	DirectiveName string
}

func (p DirectiveDefinitionPosition) PosKind() Kind { return KindDirectiveDefinition }
func (p DirectiveDefinitionPosition) String() string {
	return fmt.Sprintf("directive_definition(@%s)", p.DirectiveName)
}
func (p DirectiveDefinitionPosition) Hash() uint64 {
	return hashString("directive_definition", p.DirectiveName)
}

// SchemaRootPosition addresses the root mapping for one operation kind
// (query/mutation/subscription).
type SchemaRootPosition struct {
	RootKind ast.Operation
}

func (p SchemaRootPosition) PosKind() Kind { return KindSchemaRoot }
func (p SchemaRootPosition) String() string {
	return fmt.Sprintf("schema_root(%s)", p.RootKind)
}
func (p SchemaRootPosition) Hash() uint64 { return hashString("schema_root", string(p.RootKind)) }

// builtin scalar/directive names that are always reserved and never
// collide on pre-insert (spec.md §4.1 carve-out).
var builtinScalars = map[string]bool{
	"Int": true, "Float": true, "String": true, "Boolean": true, "ID": true,
}

var builtinDirectives = map[string]bool{
	"skip": true, "include": true, "deprecated": true, "specifiedBy": true, "oneOf": true,
}

func isBuiltinTypeName(name string) bool {
	return builtinScalars[name] || (len(name) >= 2 && name[:2] == "__")
}

func isBuiltinDirectiveName(name string) bool {
	return builtinDirectives[name]
}
