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

package syntax

import (
	"fmt"
	"path"
	"strconv"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

// Location identifies a position in a source file. Base is the include
// root the file was found under and Path is relative to it; together they
// identify a program.
type Location struct {
	Base   string
	Path   string
	Line   int
	Column int
}

// File returns the joined Base and Path.
func (loc Location) File() string {
	if loc.Base == "" {
		return loc.Path
	}
	return path.Join(loc.Base, loc.Path)
}

func (loc Location) String() string {
	if loc.Line == 0 {
		return loc.File()
	}
	return fmt.Sprintf("%s:%d:%d", loc.File(), loc.Line, loc.Column)
}

type Annotation struct {
	Name     string
	Value    string
	Location Location
}

// Annotations are kept in source order. A later entry with the same name
// overrides an earlier one.
type Annotations []Annotation

func (a Annotations) Map() map[string]string {
	if len(a) == 0 {
		return nil
	}
	m := make(map[string]string, len(a))
	for _, ann := range a {
		m[ann.Name] = ann.Value
	}
	return m
}

// Document is one parsed .thrift file. Nothing in it has been resolved.
type Document struct {
	Location    Location
	Namespaces  []*Namespace
	Includes    []*Include
	CppIncludes []*Include
	Typedefs    []*Typedef
	Consts      []*Const
	Enums       []*Enum
	Structs     []*Struct
	Unions      []*Struct
	Exceptions  []*Struct
	Services    []*Service
}

type Namespace struct {
	Location    Location
	Scope       string
	Name        string
	Annotations Annotations
}

type Include struct {
	Location Location
	Path     string
}

type TypeRefKind uint8

const (
	NamedTypeRef TypeRefKind = iota
	ListTypeRef
	SetTypeRef
	MapTypeRef
)

// TypeRef is an unresolved reference to a type. Name is the canonical
// spelling: a builtin or declared name for NamedTypeRef, and forms such as
// "list<i32>" or "map<string,foo.Bar>" for containers.
type TypeRef struct {
	Location    Location
	Kind        TypeRefKind
	Name        string
	Elem        *TypeRef
	Key         *TypeRef
	Value       *TypeRef
	Annotations Annotations
}

func (ref *TypeRef) String() string {
	return ref.Name
}

func containerName(kind TypeRefKind, elem, key, value *TypeRef) string {
	switch kind {
	case ListTypeRef:
		return "list<" + elem.Name + ">"
	case SetTypeRef:
		return "set<" + elem.Name + ">"
	case MapTypeRef:
		return "map<" + key.Name + "," + value.Name + ">"
	}
	panic("unreachable")
}

type Requiredness uint8

const (
	Default Requiredness = iota
	Required
	Optional
)

func (r Requiredness) String() string {
	switch r {
	case Default:
		return "default"
	case Required:
		return "required"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("Requiredness(%d)", uint8(r))
	}
}

type Field struct {
	Location     Location
	Doc          string
	ID           int16
	ImplicitID   bool
	Requiredness Requiredness
	Type         *TypeRef
	Name         string
	Default      ConstValue
	Annotations  Annotations
}

type StructKind uint8

const (
	StructKindStruct StructKind = iota
	StructKindUnion
	StructKindException
)

func (k StructKind) String() string {
	switch k {
	case StructKindStruct:
		return "struct"
	case StructKindUnion:
		return "union"
	case StructKindException:
		return "exception"
	default:
		return fmt.Sprintf("StructKind(%d)", uint8(k))
	}
}

// Struct is a struct, union or exception declaration.
type Struct struct {
	Location    Location
	Doc         string
	Kind        StructKind
	Name        string
	Fields      []*Field
	Annotations Annotations
}

type Enum struct {
	Location    Location
	Doc         string
	Name        string
	Members     []*EnumMember
	Annotations Annotations
}

type EnumMember struct {
	Location      Location
	Doc           string
	Name          string
	Value         int32
	ImplicitValue bool
	Annotations   Annotations
}

type Typedef struct {
	Location    Location
	Doc         string
	Name        string
	Type        *TypeRef
	Annotations Annotations
}

type Const struct {
	Location    Location
	Doc         string
	Name        string
	Type        *TypeRef
	Value       ConstValue
	Annotations Annotations
}

type Service struct {
	Location        Location
	Doc             string
	Name            string
	Extends         string
	ExtendsLocation Location
	Functions       []*Function
	Annotations     Annotations
}

// Function is a service method. ReturnType is the builtin "void" for
// methods that return nothing.
type Function struct {
	Location    Location
	Doc         string
	Name        string
	Oneway      bool
	ReturnType  *TypeRef
	Params      []*Field
	Throws      []*Field
	Annotations Annotations
}

// ConstValue is a literal constant expression. The set of implementations
// is closed.
type ConstValue interface {
	Location() Location
	String() string
	constValue()
}

type IntValue struct {
	Loc   Location
	Value int64
}

type DoubleValue struct {
	Loc   Location
	Value float64
}

type StringValue struct {
	Loc   Location
	Value string
}

// IdentifierValue names a constant, an enum member, or one of the
// keywords true and false.
type IdentifierValue struct {
	Loc  Location
	Name string
}

type ListValue struct {
	Loc      Location
	Elements []ConstValue
}

type MapEntry struct {
	Key   ConstValue
	Value ConstValue
}

type MapValue struct {
	Loc     Location
	Entries []MapEntry
}

func (v *IntValue) Location() Location        { return v.Loc }
func (v *DoubleValue) Location() Location     { return v.Loc }
func (v *StringValue) Location() Location     { return v.Loc }
func (v *IdentifierValue) Location() Location { return v.Loc }
func (v *ListValue) Location() Location       { return v.Loc }
func (v *MapValue) Location() Location        { return v.Loc }

func (*IntValue) constValue()        {}
func (*DoubleValue) constValue()     {}
func (*StringValue) constValue()     {}
func (*IdentifierValue) constValue() {}
func (*ListValue) constValue()       {}
func (*MapValue) constValue()        {}

func (v *IntValue) String() string {
	return strconv.FormatInt(v.Value, 10)
}

func (v *DoubleValue) String() string {
	return strconv.FormatFloat(v.Value, 'g', -1, 64)
}

func (v *StringValue) String() string {
	return strconv.Quote(v.Value)
}

func (v *IdentifierValue) String() string {
	return v.Name
}

func (v *ListValue) String() string {
	buf := []byte{'['}
	for ii, elem := range v.Elements {
		if ii > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, elem.String()...)
	}
	return string(append(buf, ']'))
}

func (v *MapValue) String() string {
	buf := []byte{'{'}
	for ii, entry := range v.Entries {
		if ii > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, entry.Key.String()...)
		buf = append(buf, ": "...)
		buf = append(buf, entry.Value.String()...)
	}
	return string(append(buf, '}'))
}
