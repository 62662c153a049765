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

package schemadump

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.thrift-idl.org/thrift/schema"
)

// EncodeText writes sch as Thrift-like source. Names declared in another
// program are qualified with the program name.
func EncodeText(w io.Writer, sch *schema.Schema) error {
	e := encoder{w: w}
	e.visitSchema(sch)
	return e.err
}

type encoder struct {
	w       io.Writer
	indent  int
	err     error
	program string
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) enter(el *schema.Element) {
	e.program = el.Program()
	if el.Doc != "" {
		e.line("/**")
		for _, docLine := range strings.Split(el.Doc, "\n") {
			e.line(strings.TrimRight(" * "+docLine, " "))
		}
		e.line(" */")
	}
}

func (e *encoder) visitSchema(sch *schema.Schema) {
	for _, enum := range sch.Enums {
		e.enter(&enum.Element)
		e.linef("enum %s%s {", enum.Name, fmtAnnotations(enum.Annotations))
		e.indent += 1
		for _, member := range enum.Members {
			e.linef("%s = %d%s", member.Name, member.Value, fmtAnnotations(member.Annotations))
		}
		e.indent -= 1
		e.line("}")
	}
	for _, typedef := range sch.Typedefs {
		e.enter(&typedef.Element)
		e.linef("typedef %s %s", e.typeName(typedef.Type), typedef.Name)
	}
	for _, c := range sch.Constants {
		e.enter(&c.Element)
		e.linef("const %s %s = %s", e.typeName(c.Type), c.Name, c.Value)
	}
	for _, group := range [][]*schema.Struct{sch.Structs, sch.Unions, sch.Exceptions} {
		for _, strct := range group {
			e.visitStruct(strct)
		}
	}
	for _, service := range sch.Services {
		e.visitService(service)
	}
}

func (e *encoder) visitStruct(strct *schema.Struct) {
	e.enter(&strct.Element)
	e.linef("%s %s%s {", strct.Kind, strct.Name, fmtAnnotations(strct.Annotations))
	e.indent += 1
	for _, field := range strct.Fields {
		e.line(e.fmtField(field))
	}
	e.indent -= 1
	e.line("}")
}

func (e *encoder) visitService(service *schema.Service) {
	e.enter(&service.Element)
	header := "service " + service.Name
	if service.Extends != nil {
		header += " extends " + e.typeName(service.Extends)
	}
	e.linef("%s%s {", header, fmtAnnotations(service.Annotations))
	e.indent += 1
	for _, method := range service.Methods {
		var buf strings.Builder
		if method.Oneway {
			buf.WriteString("oneway ")
		}
		fmt.Fprintf(&buf, "%s %s(%s)", e.typeName(method.ReturnType), method.Name, e.fmtFields(method.Params))
		if len(method.Throws) > 0 {
			fmt.Fprintf(&buf, " throws (%s)", e.fmtFields(method.Throws))
		}
		buf.WriteString(fmtAnnotations(method.Annotations))
		e.line(buf.String())
	}
	e.indent -= 1
	e.line("}")
}

func (e *encoder) fmtFields(fields []*schema.Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, e.fmtField(field))
	}
	return strings.Join(parts, ", ")
}

func (e *encoder) fmtField(field *schema.Field) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d: ", field.ID)
	if field.Required() || field.Optional() {
		buf.WriteString(field.Requiredness.String())
		buf.WriteByte(' ')
	}
	buf.WriteString(e.typeName(field.Type))
	buf.WriteByte(' ')
	buf.WriteString(field.Name)
	if field.Default != nil {
		buf.WriteString(" = ")
		buf.WriteString(field.Default.String())
	}
	buf.WriteString(fmtAnnotations(field.Annotations))
	return buf.String()
}

func (e *encoder) typeName(typ schema.Type) string {
	var name string
	switch t := typ.(type) {
	case *schema.ListType:
		name = "list<" + e.typeName(t.Elem()) + ">"
	case *schema.SetType:
		name = "set<" + e.typeName(t.Elem()) + ">"
	case *schema.MapType:
		name = "map<" + e.typeName(t.Key()) + ", " + e.typeName(t.Value()) + ">"
	default:
		name = typ.Name()
		if program := declProgram(typ); program != "" && program != e.program {
			name = program + "." + name
		}
	}
	return name + fmtAnnotations(typ.Annotations())
}

func fmtAnnotations(annotations map[string]string) string {
	if len(annotations) == 0 {
		return ""
	}
	keys := make([]string, 0, len(annotations))
	for key := range annotations {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s = %s", key, quote(annotations[key])))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
