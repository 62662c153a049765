// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package schema

import (
	"fmt"
	"maps"

	"go.thrift-idl.org/thrift"
)

// Type is a resolved Thrift type. The set of implementations is closed:
// *BuiltinType, *ListType, *SetType, *MapType, *EnumType, *StructType,
// *ServiceType and *TypedefType.
type Type interface {
	// Name is the type's spelling in IDL source.
	Name() string

	// Annotations returns a copy of the type's annotations.
	Annotations() map[string]string

	// WithAnnotations returns a copy of the type with annotations merged
	// in. Entries in annotations replace existing entries of the same
	// name. The receiver is not modified.
	WithAnnotations(annotations map[string]string) Type

	// TrueType unwraps typedefs until a non-typedef type is reached.
	TrueType() Type

	isType()
}

type BuiltinKind uint8

const (
	BoolKind BuiltinKind = iota
	ByteKind
	I16Kind
	I32Kind
	I64Kind
	DoubleKind
	StringKind
	BinaryKind
	VoidKind
)

func (k BuiltinKind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case ByteKind:
		return "byte"
	case I16Kind:
		return "i16"
	case I32Kind:
		return "i32"
	case I64Kind:
		return "i64"
	case DoubleKind:
		return "double"
	case StringKind:
		return "string"
	case BinaryKind:
		return "binary"
	case VoidKind:
		return "void"
	default:
		return fmt.Sprintf("BuiltinKind(%d)", uint8(k))
	}
}

type BuiltinType struct {
	kind        BuiltinKind
	name        string
	annotations map[string]string
}

var (
	Bool   = &BuiltinType{kind: BoolKind, name: "bool"}
	Byte   = &BuiltinType{kind: ByteKind, name: "byte"}
	I8     = &BuiltinType{kind: ByteKind, name: "i8"}
	I16    = &BuiltinType{kind: I16Kind, name: "i16"}
	I32    = &BuiltinType{kind: I32Kind, name: "i32"}
	I64    = &BuiltinType{kind: I64Kind, name: "i64"}
	Double = &BuiltinType{kind: DoubleKind, name: "double"}
	String = &BuiltinType{kind: StringKind, name: "string"}
	Binary = &BuiltinType{kind: BinaryKind, name: "binary"}
	Void   = &BuiltinType{kind: VoidKind, name: "void"}
)

var builtins = map[string]*BuiltinType{
	"bool":   Bool,
	"byte":   Byte,
	"i8":     I8,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"double": Double,
	"string": String,
	"binary": Binary,
	"void":   Void,
}

// Builtin returns the builtin type spelled name.
func Builtin(name string) (*BuiltinType, bool) {
	t, ok := builtins[name]
	return t, ok
}

func (t *BuiltinType) Kind() BuiltinKind {
	return t.kind
}

type ListType struct {
	elem        Type
	annotations map[string]string
}

func NewList(elem Type) *ListType {
	return &ListType{elem: elem}
}

func (t *ListType) Elem() Type {
	return t.elem
}

type SetType struct {
	elem        Type
	annotations map[string]string
}

func NewSet(elem Type) *SetType {
	return &SetType{elem: elem}
}

func (t *SetType) Elem() Type {
	return t.elem
}

type MapType struct {
	key         Type
	value       Type
	annotations map[string]string
}

func NewMap(key, value Type) *MapType {
	return &MapType{key: key, value: value}
}

func (t *MapType) Key() Type {
	return t.key
}

func (t *MapType) Value() Type {
	return t.value
}

type EnumType struct {
	enum        *Enum
	annotations map[string]string
}

func NewEnumType(enum *Enum) *EnumType {
	return &EnumType{enum: enum}
}

func (t *EnumType) Enum() *Enum {
	return t.enum
}

// StructType refers to a struct, union or exception.
type StructType struct {
	strct       *Struct
	annotations map[string]string
}

func NewStructType(strct *Struct) *StructType {
	return &StructType{strct: strct}
}

func (t *StructType) Struct() *Struct {
	return t.strct
}

type ServiceType struct {
	service     *Service
	annotations map[string]string
}

func NewServiceType(service *Service) *ServiceType {
	return &ServiceType{service: service}
}

func (t *ServiceType) Service() *Service {
	return t.service
}

type TypedefType struct {
	typedef     *Typedef
	annotations map[string]string
}

// NewTypedefType returns a handle for typedef. The typedef's Type must be
// set before TrueType is called.
func NewTypedefType(typedef *Typedef) *TypedefType {
	return &TypedefType{typedef: typedef}
}

func (t *TypedefType) Typedef() *Typedef {
	return t.typedef
}

func (t *TypedefType) Target() Type {
	return t.typedef.Type
}

func (t *BuiltinType) Name() string { return t.name }
func (t *ListType) Name() string { return "list<" + t.elem.Name() + ">" }
func (t *SetType) Name() string { return "set<" + t.elem.Name() + ">" }
func (t *MapType) Name() string {
	return "map<" + t.key.Name() + "," + t.value.Name() + ">"
}
func (t *EnumType) Name() string { return t.enum.Name }
func (t *StructType) Name() string { return t.strct.Name }
func (t *ServiceType) Name() string { return t.service.Name }
func (t *TypedefType) Name() string { return t.typedef.Name }

func (t *BuiltinType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *ListType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *SetType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *MapType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *EnumType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *StructType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *ServiceType) Annotations() map[string]string { return maps.Clone(t.annotations) }
func (t *TypedefType) Annotations() map[string]string { return maps.Clone(t.annotations) }

func mergeAnnotations(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	merged := make(map[string]string, len(dst)+len(src))
	maps.Copy(merged, dst)
	maps.Copy(merged, src)
	return merged
}

func (t *BuiltinType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *ListType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *SetType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *MapType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *EnumType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *StructType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *ServiceType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *TypedefType) WithAnnotations(annotations map[string]string) Type {
	copied := *t
	copied.annotations = mergeAnnotations(t.annotations, annotations)
	return &copied
}

func (t *BuiltinType) TrueType() Type { return t }
func (t *ListType) TrueType() Type { return t }
func (t *SetType) TrueType() Type { return t }
func (t *MapType) TrueType() Type { return t }
func (t *EnumType) TrueType() Type { return t }
func (t *StructType) TrueType() Type { return t }
func (t *ServiceType) TrueType() Type { return t }

func (t *TypedefType) TrueType() Type {
	var target Type = t
	for {
		typedef, ok := target.(*TypedefType)
		if !ok {
			return target
		}
		target = typedef.typedef.Type
	}
}

func (*BuiltinType) isType() {}
func (*ListType) isType() {}
func (*SetType) isType() {}
func (*MapType) isType() {}
func (*EnumType) isType() {}
func (*StructType) isType() {}
func (*ServiceType) isType() {}
func (*TypedefType) isType() {}

func IsBuiltin(t Type) bool {
	_, ok := t.(*BuiltinType)
	return ok
}

func IsList(t Type) bool {
	_, ok := t.(*ListType)
	return ok
}

func IsSet(t Type) bool {
	_, ok := t.(*SetType)
	return ok
}

func IsMap(t Type) bool {
	_, ok := t.(*MapType)
	return ok
}

func IsEnum(t Type) bool {
	_, ok := t.(*EnumType)
	return ok
}

func IsStruct(t Type) bool {
	_, ok := t.(*StructType)
	return ok
}

func IsService(t Type) bool {
	_, ok := t.(*ServiceType)
	return ok
}

func IsTypedef(t Type) bool {
	_, ok := t.(*TypedefType)
	return ok
}

// Key returns a string identifying t under structural equality.
// Annotations are ignored, and byte and i8 share a key. Declared types
// are identified by their program and name.
func Key(t Type) string {
	switch t := t.(type) {
	case *BuiltinType:
		return t.kind.String()
	case *ListType:
		return "list<" + Key(t.elem) + ">"
	case *SetType:
		return "set<" + Key(t.elem) + ">"
	case *MapType:
		return "map<" + Key(t.key) + "," + Key(t.value) + ">"
	case *EnumType:
		return "enum " + t.enum.Location.File() + "#" + t.enum.Name
	case *StructType:
		return t.strct.Kind.String() + " " + t.strct.Location.File() + "#" + t.strct.Name
	case *ServiceType:
		return "service " + t.service.Location.File() + "#" + t.service.Name
	case *TypedefType:
		return "typedef " + t.typedef.Location.File() + "#" + t.typedef.Name
	default:
		panic(fmt.Sprintf("schema: unknown type %T", t))
	}
}

func Equal(a, b Type) bool {
	return Key(a) == Key(b)
}

// WireType returns the type code used to encode values of t. Services
// have no wire representation.
func WireType(t Type) thrift.TType {
	switch t := t.(type) {
	case *BuiltinType:
		switch t.kind {
		case BoolKind:
			return thrift.BOOL
		case ByteKind:
			return thrift.BYTE
		case I16Kind:
			return thrift.I16
		case I32Kind:
			return thrift.I32
		case I64Kind:
			return thrift.I64
		case DoubleKind:
			return thrift.DOUBLE
		case StringKind, BinaryKind:
			return thrift.STRING
		case VoidKind:
			return thrift.VOID
		}
	case *ListType:
		return thrift.LIST
	case *SetType:
		return thrift.SET
	case *MapType:
		return thrift.MAP
	case *EnumType:
		return thrift.I32
	case *StructType:
		return thrift.STRUCT
	case *TypedefType:
		return WireType(t.TrueType())
	case *ServiceType:
		panic(fmt.Sprintf("schema: service %s has no wire type", t.Name()))
	}
	panic(fmt.Sprintf("schema: unknown type %T", t))
}
