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

// Package schemadump renders a linked schema as text, YAML or JSON.
//
// The YAML and JSON forms share one document model, Document, which is
// also what codegen plugins receive.
package schemadump

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"go.thrift-idl.org/thrift/schema"
)

type Format uint8

const (
	Text Format = iota
	YAML
	JSON
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

func ParseFormat(name string) (Format, error) {
	switch name {
	case "text":
		return Text, nil
	case "yaml":
		return YAML, nil
	case "json":
		return JSON, nil
	}
	return 0, fmt.Errorf("unknown dump format %q (expected text, yaml or json)", name)
}

// Encode writes sch to w in the given format.
func Encode(w io.Writer, sch *schema.Schema, format Format) error {
	switch format {
	case Text:
		return EncodeText(w, sch)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Build(sch)); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Build(sch))
	}
	return fmt.Errorf("unknown dump format %v", format)
}

// DecodeJSON reads a Document written by Encode with format JSON.
func DecodeJSON(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type Document struct {
	Enums      []*Enum     `json:"enums,omitempty" yaml:"enums,omitempty"`
	Typedefs   []*Typedef  `json:"typedefs,omitempty" yaml:"typedefs,omitempty"`
	Constants  []*Constant `json:"constants,omitempty" yaml:"constants,omitempty"`
	Structs    []*Struct   `json:"structs,omitempty" yaml:"structs,omitempty"`
	Unions     []*Struct   `json:"unions,omitempty" yaml:"unions,omitempty"`
	Exceptions []*Struct   `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	Services   []*Service  `json:"services,omitempty" yaml:"services,omitempty"`
}

type Element struct {
	Name        string            `json:"name" yaml:"name"`
	Program     string            `json:"program" yaml:"program"`
	Doc         string            `json:"doc,omitempty" yaml:"doc,omitempty"`
	Deprecated  bool              `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Type is a reference to a type. Declared types are referred to by name
// and program; containers carry their element types.
type Type struct {
	Kind        string            `json:"kind" yaml:"kind"`
	Name        string            `json:"name" yaml:"name"`
	Program     string            `json:"program,omitempty" yaml:"program,omitempty"`
	Elem        *Type             `json:"elem,omitempty" yaml:"elem,omitempty"`
	Key         *Type             `json:"key,omitempty" yaml:"key,omitempty"`
	Value       *Type             `json:"value,omitempty" yaml:"value,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

type Field struct {
	Element      `yaml:",inline"`
	ID           int16  `json:"id" yaml:"id"`
	Requiredness string `json:"requiredness" yaml:"requiredness"`
	Type         *Type  `json:"type" yaml:"type"`
	Default      string `json:"default,omitempty" yaml:"default,omitempty"`
	Redacted     bool   `json:"redacted,omitempty" yaml:"redacted,omitempty"`
	Obfuscated   bool   `json:"obfuscated,omitempty" yaml:"obfuscated,omitempty"`
}

type Struct struct {
	Element `yaml:",inline"`
	Kind    string   `json:"kind" yaml:"kind"`
	Fields  []*Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type EnumMember struct {
	Element `yaml:",inline"`
	Value   int32 `json:"value" yaml:"value"`
}

type Enum struct {
	Element `yaml:",inline"`
	Members []*EnumMember `json:"members,omitempty" yaml:"members,omitempty"`
}

type Typedef struct {
	Element `yaml:",inline"`
	Type    *Type `json:"type" yaml:"type"`
}

type Constant struct {
	Element `yaml:",inline"`
	Type    *Type  `json:"type" yaml:"type"`
	Value   string `json:"value" yaml:"value"`
}

type Service struct {
	Element `yaml:",inline"`
	Extends *Type     `json:"extends,omitempty" yaml:"extends,omitempty"`
	Methods []*Method `json:"methods,omitempty" yaml:"methods,omitempty"`
}

type Method struct {
	Element    `yaml:",inline"`
	Oneway     bool     `json:"oneway,omitempty" yaml:"oneway,omitempty"`
	ReturnType *Type    `json:"returnType" yaml:"returnType"`
	Params     []*Field `json:"params,omitempty" yaml:"params,omitempty"`
	Throws     []*Field `json:"throws,omitempty" yaml:"throws,omitempty"`
}

// Build converts sch to its document form.
func Build(sch *schema.Schema) *Document {
	doc := &Document{}
	for _, enum := range sch.Enums {
		out := &Enum{Element: element(&enum.Element)}
		for _, member := range enum.Members {
			out.Members = append(out.Members, &EnumMember{
				Element: element(&member.Element),
				Value:   member.Value,
			})
		}
		doc.Enums = append(doc.Enums, out)
	}
	for _, typedef := range sch.Typedefs {
		doc.Typedefs = append(doc.Typedefs, &Typedef{
			Element: element(&typedef.Element),
			Type:    typeRef(typedef.Type),
		})
	}
	for _, c := range sch.Constants {
		doc.Constants = append(doc.Constants, &Constant{
			Element: element(&c.Element),
			Type:    typeRef(c.Type),
			Value:   c.Value.String(),
		})
	}
	doc.Structs = structs(sch.Structs)
	doc.Unions = structs(sch.Unions)
	doc.Exceptions = structs(sch.Exceptions)
	for _, service := range sch.Services {
		out := &Service{Element: element(&service.Element)}
		if service.Extends != nil {
			out.Extends = typeRef(service.Extends)
		}
		for _, method := range service.Methods {
			out.Methods = append(out.Methods, &Method{
				Element:    element(&method.Element),
				Oneway:     method.Oneway,
				ReturnType: typeRef(method.ReturnType),
				Params:     fields(method.Params),
				Throws:     fields(method.Throws),
			})
		}
		doc.Services = append(doc.Services, out)
	}
	return doc
}

func element(e *schema.Element) Element {
	return Element{
		Name:        e.Name,
		Program:     e.Program(),
		Doc:         e.Doc,
		Deprecated:  e.Deprecated(),
		Annotations: e.Annotations,
	}
}

func structs(in []*schema.Struct) []*Struct {
	var out []*Struct
	for _, strct := range in {
		out = append(out, &Struct{
			Element: element(&strct.Element),
			Kind:    strct.Kind.String(),
			Fields:  fields(strct.Fields),
		})
	}
	return out
}

func fields(in []*schema.Field) []*Field {
	var out []*Field
	for _, field := range in {
		f := &Field{
			Element:      element(&field.Element),
			ID:           field.ID,
			Requiredness: field.Requiredness.String(),
			Type:         typeRef(field.Type),
			Redacted:     field.Redacted(),
			Obfuscated:   field.Obfuscated(),
		}
		if field.Default != nil {
			f.Default = field.Default.String()
		}
		out = append(out, f)
	}
	return out
}

// declProgram returns the program a declared type belongs to, or "" for
// builtins and containers.
func declProgram(typ schema.Type) string {
	switch t := typ.(type) {
	case *schema.EnumType:
		return t.Enum().Program()
	case *schema.StructType:
		return t.Struct().Program()
	case *schema.ServiceType:
		return t.Service().Program()
	case *schema.TypedefType:
		return t.Typedef().Program()
	}
	return ""
}

func typeRef(typ schema.Type) *Type {
	out := &Type{
		Name:        typ.Name(),
		Program:     declProgram(typ),
		Annotations: typ.Annotations(),
	}
	switch t := typ.(type) {
	case *schema.BuiltinType:
		out.Kind = "builtin"
	case *schema.ListType:
		out.Kind = "list"
		out.Elem = typeRef(t.Elem())
	case *schema.SetType:
		out.Kind = "set"
		out.Elem = typeRef(t.Elem())
	case *schema.MapType:
		out.Kind = "map"
		out.Key = typeRef(t.Key())
		out.Value = typeRef(t.Value())
	case *schema.EnumType:
		out.Kind = "enum"
	case *schema.StructType:
		out.Kind = "struct"
	case *schema.ServiceType:
		out.Kind = "service"
	case *schema.TypedefType:
		out.Kind = "typedef"
	default:
		panic("unreachable")
	}
	return out
}
