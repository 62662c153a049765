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

// Command thrift-codegen-markdown is a thriftc codegen plugin that renders
// reference documentation for a schema, one Markdown file per program.
//
// Built for WebAssembly it is loaded by `thriftc codegen -l markdown`. Run
// natively it reads a `thriftc dump -f json` document and writes the
// generated files to a directory.
package main

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.thrift-idl.org/thrift/codegen"
	"go.thrift-idl.org/thrift/schemadump"
)

type options struct {
	hideDeprecated bool
}

func parseOptions(raw map[string]string) (*options, error) {
	opts := &options{}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		switch key {
		case "hide-deprecated":
			hide, err := strconv.ParseBool(raw[key])
			if err != nil {
				return nil, fmt.Errorf("option %q: %v", key, err)
			}
			opts.hideDeprecated = hide
		default:
			return nil, fmt.Errorf("unsupported option %q", key)
		}
	}
	return opts, nil
}

func generate(req *codegen.Request) (*codegen.Response, error) {
	if req.Schema == nil {
		return nil, fmt.Errorf("request has no schema")
	}
	opts, err := parseOptions(req.Options)
	if err != nil {
		return nil, err
	}
	resp := &codegen.Response{}
	for _, program := range programs(req.Schema) {
		g := &generator{
			doc:     req.Schema,
			program: program,
			opts:    opts,
		}
		g.emitProgram()
		resp.Files = append(resp.Files, &codegen.File{
			Path:    []string{program + ".md"},
			Content: g.buf.Bytes(),
		})
	}
	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("schema declares nothing to document")
	}
	return resp, nil
}

func programs(doc *schemadump.Document) []string {
	var names []string
	add := func(el *schemadump.Element) {
		if !slices.Contains(names, el.Program) {
			names = append(names, el.Program)
		}
	}
	for _, enum := range doc.Enums {
		add(&enum.Element)
	}
	for _, typedef := range doc.Typedefs {
		add(&typedef.Element)
	}
	for _, constant := range doc.Constants {
		add(&constant.Element)
	}
	for _, group := range [][]*schemadump.Struct{doc.Structs, doc.Unions, doc.Exceptions} {
		for _, strct := range group {
			add(&strct.Element)
		}
	}
	for _, service := range doc.Services {
		add(&service.Element)
	}
	slices.Sort(names)
	return names
}

type generator struct {
	doc     *schemadump.Document
	program string
	opts    *options
	buf     bytes.Buffer
}

func (g *generator) line(s string) {
	g.buf.WriteString(s)
	g.buf.WriteByte('\n')
}

func (g *generator) linef(format string, a ...any) {
	g.line(fmt.Sprintf(format, a...))
}

// include reports whether el belongs in this program's file.
func (g *generator) include(el *schemadump.Element) bool {
	if el.Program != g.program {
		return false
	}
	return !(g.opts.hideDeprecated && el.Deprecated)
}

func (g *generator) heading(level int, el *schemadump.Element, kind string) {
	g.line("")
	g.linef(`<a id="%s"></a>`, anchorName(el.Name))
	g.line("")
	g.linef("%s %s `%s`", strings.Repeat("#", level), kind, el.Name)
	if el.Deprecated {
		g.line("")
		g.line("**Deprecated.**")
	}
	if el.Doc != "" {
		g.line("")
		g.line(strings.TrimSpace(el.Doc))
	}
}

func (g *generator) emitProgram() {
	g.linef("# %s", g.program)

	var enums []*schemadump.Enum
	for _, enum := range g.doc.Enums {
		if g.include(&enum.Element) {
			enums = append(enums, enum)
		}
	}
	if len(enums) > 0 {
		g.line("")
		g.line("## Enums")
		for _, enum := range enums {
			g.emitEnum(enum)
		}
	}

	var typedefs []*schemadump.Typedef
	for _, typedef := range g.doc.Typedefs {
		if g.include(&typedef.Element) {
			typedefs = append(typedefs, typedef)
		}
	}
	if len(typedefs) > 0 {
		g.line("")
		g.line("## Typedefs")
		g.line("")
		g.line("| Name | Type |")
		g.line("|---|---|")
		for _, typedef := range typedefs {
			g.linef(
				`| <a id="%s"></a>`+"`%s`"+` | %s |`,
				anchorName(typedef.Name),
				typedef.Name,
				g.typeRef(typedef.Type),
			)
		}
	}

	var constants []*schemadump.Constant
	for _, constant := range g.doc.Constants {
		if g.include(&constant.Element) {
			constants = append(constants, constant)
		}
	}
	if len(constants) > 0 {
		g.line("")
		g.line("## Constants")
		g.line("")
		g.line("| Name | Type | Value |")
		g.line("|---|---|---|")
		for _, constant := range constants {
			g.linef(
				"| `%s` | %s | `%s` |",
				constant.Name,
				g.typeRef(constant.Type),
				cell(constant.Value),
			)
		}
	}

	sections := []struct {
		title   string
		kind    string
		structs []*schemadump.Struct
	}{
		{"Structs", "struct", g.doc.Structs},
		{"Unions", "union", g.doc.Unions},
		{"Exceptions", "exception", g.doc.Exceptions},
	}
	for _, section := range sections {
		var structs []*schemadump.Struct
		for _, strct := range section.structs {
			if g.include(&strct.Element) {
				structs = append(structs, strct)
			}
		}
		if len(structs) == 0 {
			continue
		}
		g.line("")
		g.linef("## %s", section.title)
		for _, strct := range structs {
			g.heading(3, &strct.Element, section.kind)
			g.emitFields(strct.Fields)
		}
	}

	var services []*schemadump.Service
	for _, service := range g.doc.Services {
		if g.include(&service.Element) {
			services = append(services, service)
		}
	}
	if len(services) > 0 {
		g.line("")
		g.line("## Services")
		for _, service := range services {
			g.emitService(service)
		}
	}
}

func (g *generator) emitEnum(enum *schemadump.Enum) {
	g.heading(3, &enum.Element, "enum")
	g.line("")
	g.line("| Name | Value | Description |")
	g.line("|---|---|---|")
	for _, member := range enum.Members {
		if g.opts.hideDeprecated && member.Deprecated {
			continue
		}
		g.linef("| `%s` | %d | %s |", member.Name, member.Value, cell(member.Doc))
	}
}

func (g *generator) emitFields(fields []*schemadump.Field) {
	if len(fields) == 0 {
		return
	}
	g.line("")
	g.line("| ID | Name | Type | Requiredness | Default | Description |")
	g.line("|---|---|---|---|---|---|")
	for _, field := range fields {
		if g.opts.hideDeprecated && field.Deprecated {
			continue
		}
		dflt := ""
		if field.Default != "" {
			dflt = "`" + cell(field.Default) + "`"
		}
		g.linef(
			"| %d | `%s` | %s | %s | %s | %s |",
			field.ID,
			field.Name,
			g.typeRef(field.Type),
			field.Requiredness,
			dflt,
			cell(field.Doc),
		)
	}
}

func (g *generator) emitService(service *schemadump.Service) {
	g.heading(3, &service.Element, "service")
	if service.Extends != nil {
		g.line("")
		g.linef("Extends %s.", g.typeRef(service.Extends))
	}
	for _, method := range service.Methods {
		if g.opts.hideDeprecated && method.Deprecated {
			continue
		}
		g.line("")
		params := make([]string, 0, len(method.Params))
		for _, param := range method.Params {
			params = append(params, fmt.Sprintf("%d: %s %s", param.ID, g.typeName(param.Type), param.Name))
		}
		prefix := ""
		if method.Oneway {
			prefix = "oneway "
		}
		g.linef(
			"#### `%s%s %s(%s)`",
			prefix,
			g.typeName(method.ReturnType),
			method.Name,
			strings.Join(params, ", "),
		)
		if method.Doc != "" {
			g.line("")
			g.line(strings.TrimSpace(method.Doc))
		}
		if len(method.Throws) > 0 {
			g.line("")
			g.line("Throws:")
			g.line("")
			for _, throw := range method.Throws {
				g.linef("- %s `%s`", g.typeRef(throw.Type), throw.Name)
			}
		}
	}
}

// typeName renders t as Thrift source, qualifying names declared in
// other programs.
func (g *generator) typeName(t *schemadump.Type) string {
	switch t.Kind {
	case "builtin":
		return t.Name
	case "list":
		return "list<" + g.typeName(t.Elem) + ">"
	case "set":
		return "set<" + g.typeName(t.Elem) + ">"
	case "map":
		return "map<" + g.typeName(t.Key) + ", " + g.typeName(t.Value) + ">"
	}
	if t.Program != "" && t.Program != g.program {
		return t.Program + "." + t.Name
	}
	return t.Name
}

// typeRef is typeName as inline code, linked to the declaration of a
// named type.
func (g *generator) typeRef(t *schemadump.Type) string {
	code := "`" + g.typeName(t) + "`"
	switch t.Kind {
	case "builtin", "list", "set", "map":
		return code
	}
	anchor := "#" + anchorName(t.Name)
	if t.Program != "" && t.Program != g.program {
		anchor = t.Program + ".md" + anchor
	}
	return "[" + code + "](" + anchor + ")"
}

func anchorName(name string) string {
	return strings.ToLower(name)
}

func cell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
