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

// Package schema is the linked form of a set of Thrift programs: resolved
// types, named elements, and the flattened Schema handed to code
// generators.
//
// Values in this package are built by package linker. Every Type reference
// reachable from a linked element is set.
package schema

import (
	"path"
	"strings"

	"go.thrift-idl.org/thrift/syntax"
)

// Element holds what every named declaration has in common.
type Element struct {
	Name        string
	Location    syntax.Location
	Doc         string
	Annotations map[string]string
}

func (e *Element) hasMarker(marker string) bool {
	if _, ok := e.Annotations[marker]; ok {
		return true
	}
	if _, ok := e.Annotations["thrifty."+marker]; ok {
		return true
	}
	return strings.Contains(e.Doc, "@"+marker)
}

// Deprecated reports whether the element is annotated `deprecated` or
// `thrifty.deprecated`, or documented with @deprecated.
func (e *Element) Deprecated() bool {
	return e.hasMarker("deprecated")
}

// Program returns the name other programs use to qualify references to
// this element: the source file's base name without extension.
func (e *Element) Program() string {
	return ProgramName(e.Location.Path)
}

// ProgramName converts a source path to the prefix used for qualified
// names, e.g. "shared/common.thrift" to "common".
func ProgramName(filePath string) string {
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

type Field struct {
	Element
	ID           int16
	Requiredness syntax.Requiredness
	Type         Type
	Default      syntax.ConstValue
}

func (f *Field) Redacted() bool {
	return f.hasMarker("redacted")
}

func (f *Field) Obfuscated() bool {
	return f.hasMarker("obfuscated")
}

func (f *Field) Required() bool {
	return f.Requiredness == syntax.Required
}

func (f *Field) Optional() bool {
	return f.Requiredness == syntax.Optional
}

// Struct is a linked struct, union or exception.
type Struct struct {
	Element
	Kind   syntax.StructKind
	Fields []*Field
}

func (s *Struct) IsUnion() bool {
	return s.Kind == syntax.StructKindUnion
}

func (s *Struct) IsException() bool {
	return s.Kind == syntax.StructKindException
}

func (s *Struct) FieldByID(id int16) *Field {
	for _, field := range s.Fields {
		if field.ID == id {
			return field
		}
	}
	return nil
}

func (s *Struct) FieldByName(name string) *Field {
	for _, field := range s.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

type Enum struct {
	Element
	Members []*EnumMember
}

type EnumMember struct {
	Element
	Value int32
}

func (e *Enum) Member(name string) *EnumMember {
	for _, member := range e.Members {
		if member.Name == name {
			return member
		}
	}
	return nil
}

func (e *Enum) MemberByValue(value int32) *EnumMember {
	for _, member := range e.Members {
		if member.Value == value {
			return member
		}
	}
	return nil
}

// Typedef aliases Type under a new name.
type Typedef struct {
	Element
	Type Type
}

type Constant struct {
	Element
	Type  Type
	Value syntax.ConstValue
}

type Service struct {
	Element

	// Extends is the resolved base type, or nil. The linker reports an
	// error if it is not a *ServiceType.
	Extends Type
	Methods []*Method
}

// Base returns the service this one extends, or nil.
func (s *Service) Base() *Service {
	if base, ok := s.Extends.(*ServiceType); ok {
		return base.Service()
	}
	return nil
}

type Method struct {
	Element
	Oneway     bool
	ReturnType Type
	Params     []*Field
	Throws     []*Field
}

// Schema is the union of the entities of every linked program.
type Schema struct {
	Structs    []*Struct
	Unions     []*Struct
	Exceptions []*Struct
	Enums      []*Enum
	Typedefs   []*Typedef
	Constants  []*Constant
	Services   []*Service
}

// Merge appends the entities of other to s.
func (s *Schema) Merge(other *Schema) {
	s.Structs = append(s.Structs, other.Structs...)
	s.Unions = append(s.Unions, other.Unions...)
	s.Exceptions = append(s.Exceptions, other.Exceptions...)
	s.Enums = append(s.Enums, other.Enums...)
	s.Typedefs = append(s.Typedefs, other.Typedefs...)
	s.Constants = append(s.Constants, other.Constants...)
	s.Services = append(s.Services, other.Services...)
}

func matchName(e *Element, name string) bool {
	if e.Name == name {
		return true
	}
	prefix, rest, ok := strings.Cut(name, ".")
	return ok && rest == e.Name && prefix == e.Program()
}

// LookupType finds a struct, union, exception, enum or typedef by name.
// The name may be qualified with its program name, as in "shared.Tag".
func (s *Schema) LookupType(name string) (Type, bool) {
	for _, group := range [][]*Struct{s.Structs, s.Unions, s.Exceptions} {
		for _, strct := range group {
			if matchName(&strct.Element, name) {
				return NewStructType(strct), true
			}
		}
	}
	for _, enum := range s.Enums {
		if matchName(&enum.Element, name) {
			return NewEnumType(enum), true
		}
	}
	for _, typedef := range s.Typedefs {
		if matchName(&typedef.Element, name) {
			return NewTypedefType(typedef), true
		}
	}
	return nil, false
}

func (s *Schema) LookupService(name string) *Service {
	for _, service := range s.Services {
		if matchName(&service.Element, name) {
			return service
		}
	}
	return nil
}
