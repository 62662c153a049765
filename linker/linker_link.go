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

package linker

import (
	"strings"

	"github.com/sirupsen/logrus"

	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/syntax"
)

type linkState uint8

const (
	stateUnlinked linkState = iota
	stateLinking
	stateLinked
	stateFailed
)

type programLinker struct {
	env     *Environment
	program *Program
	log     logrus.FieldLogger
	state   linkState
	failed  bool

	// Own declarations plus those imported from includes as "prefix.Name".
	// Container types are cached here under their literal spelling.
	symbols map[string]schema.Type
	consts  map[string]*schema.Constant

	includePrefixes map[string]*syntax.Include
	usedIncludes    map[string]bool

	structNodes  []structNode
	serviceNodes []serviceNode
}

type structNode struct {
	node   *syntax.Struct
	linked *schema.Struct
}

type serviceNode struct {
	node   *syntax.Service
	linked *schema.Service
}

type resolveError struct {
	name     string
	location syntax.Location
}

func (err *resolveError) Error() string {
	return "failed to resolve type '" + err.name + "'"
}

func (l *programLinker) err(err *Error) {
	l.failed = true
	l.env.err(err)
}

func (l *programLinker) errResolve(err error) {
	resolveErr := err.(*resolveError)
	l.err(errFailedToResolve(resolveErr.name, resolveErr.location))
}

func (l *programLinker) link() bool {
	switch l.state {
	case stateLinked:
		return true
	case stateFailed:
		return false
	case stateLinking:
		l.err(errCircularLink(l.program.Location()))
		return false
	}

	l.state = stateLinking
	l.log.Debug("linking program")
	if l.linkProgram() && !l.failed {
		l.state = stateLinked
		l.program.linked = true
		l.log.Debug("program linked")
		return true
	}
	l.state = stateFailed
	l.log.Debug("program failed to link")
	return false
}

func (l *programLinker) linkProgram() bool {
	program := l.program
	program.types = make(map[string]schema.Type)
	program.consts = make(map[string]*schema.Constant)
	program.namespaces = make(map[string]string)
	l.symbols = make(map[string]schema.Type)
	l.consts = make(map[string]*schema.Constant)
	l.includePrefixes = make(map[string]*syntax.Include)
	l.usedIncludes = make(map[string]bool)

	if !l.linkIncludes() {
		return false
	}

	for _, ns := range program.doc.Namespaces {
		program.namespaces[ns.Scope] = ns.Name
	}

	l.checkDuplicateNames()
	l.registerTypes()
	if !l.resolveTypedefs() {
		return false
	}

	l.log.Debug("linking declarations")
	l.linkConsts()
	l.linkStructs()
	l.linkServices()
	if l.failed {
		return false
	}

	l.log.Debug("validating declarations")
	l.validate()
	l.warnUnusedIncludes()
	return !l.failed
}

func (l *programLinker) linkIncludes() bool {
	program := l.program
	ok := true
	var includes []*syntax.Include
	for _, include := range program.doc.Includes {
		included, found := program.includes[include.Path]
		if !found {
			l.err(errUnknownInclude(include.Path, include.Location))
			ok = false
			continue
		}
		prefix := included.Name()
		if prev, conflict := l.includePrefixes[prefix]; conflict {
			if program.includes[prev.Path] != included {
				l.err(errIncludePrefixConflict(prefix, include.Path, prev.Path, include.Location))
				ok = false
			}
			continue
		}
		l.includePrefixes[prefix] = include
		includes = append(includes, include)

		inc := l.env.linkerFor(included)
		wasFailed := inc.state == stateFailed
		if !inc.link() {
			if wasFailed {
				l.err(errIncludeFailed(include.Path, include.Location))
			}
			ok = false
		}
	}
	if !ok {
		return false
	}

	// Only the included program's own declarations are visible, so
	// "a.b.Type" never resolves.
	for _, include := range includes {
		included := program.includes[include.Path]
		prefix := included.Name()
		for name, typ := range included.types {
			l.symbols[prefix+"."+name] = typ
		}
		for name, c := range included.consts {
			l.consts[prefix+"."+name] = c
		}
	}
	return true
}

func (l *programLinker) warnUnusedIncludes() {
	for _, include := range l.program.doc.Includes {
		prefix := l.program.includes[include.Path].Name()
		if l.includePrefixes[prefix] != include {
			continue
		}
		if !l.usedIncludes[prefix] {
			l.env.warn(warnUnusedInclude(include.Path, include.Location))
		}
	}
}

func (l *programLinker) checkDuplicateNames() {
	doc := l.program.doc
	seen := make(map[string]syntax.Location)
	check := func(name string, loc syntax.Location) {
		if prev, dup := seen[name]; dup {
			l.err(errDuplicateName(name, loc, prev))
			return
		}
		seen[name] = loc
	}
	for _, node := range doc.Typedefs {
		check(node.Name, node.Location)
	}
	for _, node := range doc.Consts {
		check(node.Name, node.Location)
	}
	for _, node := range doc.Enums {
		check(node.Name, node.Location)
	}
	for _, group := range [][]*syntax.Struct{doc.Structs, doc.Unions, doc.Exceptions} {
		for _, node := range group {
			check(node.Name, node.Location)
		}
	}
	for _, node := range doc.Services {
		check(node.Name, node.Location)
	}
}

// define registers a type declared by this program. The first declaration
// of a name wins; duplicates have already been reported.
func (l *programLinker) define(name string, typ schema.Type) {
	if _, exists := l.program.types[name]; exists {
		return
	}
	l.program.types[name] = typ
	l.symbols[name] = typ
}

func newElement(
	name string,
	loc syntax.Location,
	doc string,
	annotations syntax.Annotations,
) schema.Element {
	return schema.Element{
		Name:        name,
		Location:    loc,
		Doc:         doc,
		Annotations: annotations.Map(),
	}
}

func (l *programLinker) registerTypes() {
	program := l.program
	doc := program.doc

	for _, node := range doc.Enums {
		enum := &schema.Enum{
			Element: newElement(node.Name, node.Location, node.Doc, node.Annotations),
		}
		names := make(map[string]bool)
		values := make(map[int32]string)
		for _, memberNode := range node.Members {
			if names[memberNode.Name] {
				l.err(errDuplicateEnumMember(node.Name, memberNode.Name, memberNode.Location))
				continue
			}
			names[memberNode.Name] = true
			if prev, dup := values[memberNode.Value]; dup {
				l.err(errDuplicateEnumValue(
					node.Name,
					memberNode.Name,
					prev,
					memberNode.Value,
					memberNode.Location,
				))
			} else {
				values[memberNode.Value] = memberNode.Name
			}
			enum.Members = append(enum.Members, &schema.EnumMember{
				Element: newElement(
					memberNode.Name,
					memberNode.Location,
					memberNode.Doc,
					memberNode.Annotations,
				),
				Value: memberNode.Value,
			})
		}
		program.enums = append(program.enums, enum)
		l.define(node.Name, schema.NewEnumType(enum))
	}

	registerStructs := func(nodes []*syntax.Struct, out *[]*schema.Struct) {
		for _, node := range nodes {
			strct := &schema.Struct{
				Element: newElement(node.Name, node.Location, node.Doc, node.Annotations),
				Kind:    node.Kind,
			}
			*out = append(*out, strct)
			l.structNodes = append(l.structNodes, structNode{node, strct})
			l.define(node.Name, schema.NewStructType(strct))
		}
	}
	registerStructs(doc.Structs, &program.structs)
	registerStructs(doc.Unions, &program.unions)
	registerStructs(doc.Exceptions, &program.exceptions)

	for _, node := range doc.Services {
		service := &schema.Service{
			Element: newElement(node.Name, node.Location, node.Doc, node.Annotations),
		}
		program.services = append(program.services, service)
		l.serviceNodes = append(l.serviceNodes, serviceNode{node, service})
		l.define(node.Name, schema.NewServiceType(service))
	}
}

// resolveTypedefs resolves typedefs to a fixed point. Each pass tries
// every pending typedef; a pass that resolves none leaves only typedefs
// that are cyclic or refer to unknown names.
func (l *programLinker) resolveTypedefs() bool {
	program := l.program
	nodes := program.doc.Typedefs

	program.typedefs = make([]*schema.Typedef, len(nodes))
	pending := make([]int, len(nodes))
	for ii, node := range nodes {
		program.typedefs[ii] = &schema.Typedef{
			Element: newElement(node.Name, node.Location, node.Doc, node.Annotations),
		}
		pending[ii] = ii
	}

	for pass := 1; len(pending) > 0; pass++ {
		var next []int
		for _, idx := range pending {
			typ, err := l.resolveType(nodes[idx].Type)
			if err != nil {
				next = append(next, idx)
				continue
			}
			typedef := program.typedefs[idx]
			typedef.Type = typ
			l.define(typedef.Name, schema.NewTypedefType(typedef))
		}
		l.log.WithFields(logrus.Fields{
			"pass":     pass,
			"resolved": len(pending) - len(next),
			"pending":  len(next),
		}).Debug("typedef pass")

		if len(next) == len(pending) {
			for _, idx := range next {
				l.err(errUnresolvableTypedef(nodes[idx].Name, nodes[idx].Location))
			}
			return false
		}
		pending = next
	}
	return true
}

func (l *programLinker) lookupType(name string) (schema.Type, bool) {
	typ, ok := l.symbols[name]
	if ok {
		l.markUsed(name)
	}
	return typ, ok
}

func (l *programLinker) lookupConst(name string) (*schema.Constant, bool) {
	c, ok := l.consts[name]
	if ok {
		l.markUsed(name)
	}
	return c, ok
}

func (l *programLinker) markUsed(name string) {
	if prefix, _, qualified := strings.Cut(name, "."); qualified {
		if _, ok := l.includePrefixes[prefix]; ok {
			l.usedIncludes[prefix] = true
		}
	}
}

func withAnnotations(typ schema.Type, annotations syntax.Annotations) schema.Type {
	if len(annotations) == 0 {
		return typ
	}
	return typ.WithAnnotations(annotations.Map())
}

// resolveType looks ref up by its literal spelling, building and caching
// container types on a miss. The annotations written on this occurrence
// are applied to the result.
func (l *programLinker) resolveType(ref *syntax.TypeRef) (schema.Type, error) {
	if typ, ok := l.lookupType(ref.Name); ok {
		return withAnnotations(typ, ref.Annotations), nil
	}

	var typ schema.Type
	switch ref.Kind {
	case syntax.ListTypeRef, syntax.SetTypeRef:
		elem, err := l.resolveType(ref.Elem)
		if err != nil {
			return nil, err
		}
		if ref.Kind == syntax.ListTypeRef {
			typ = schema.NewList(elem)
		} else {
			typ = schema.NewSet(elem)
		}
	case syntax.MapTypeRef:
		key, err := l.resolveType(ref.Key)
		if err != nil {
			return nil, err
		}
		value, err := l.resolveType(ref.Value)
		if err != nil {
			return nil, err
		}
		typ = schema.NewMap(key, value)
	case syntax.NamedTypeRef:
		builtin, ok := schema.Builtin(ref.Name)
		if !ok {
			return nil, &resolveError{name: ref.Name, location: ref.Location}
		}
		return withAnnotations(builtin, ref.Annotations), nil
	default:
		panic("unreachable")
	}
	l.symbols[ref.Name] = typ
	return withAnnotations(typ, ref.Annotations), nil
}

func (l *programLinker) linkConsts() {
	program := l.program
	for _, node := range program.doc.Consts {
		typ, err := l.resolveType(node.Type)
		if err != nil {
			l.errResolve(err)
			continue
		}
		c := &schema.Constant{
			Element: newElement(node.Name, node.Location, node.Doc, node.Annotations),
			Type:    typ,
			Value:   node.Value,
		}
		program.constants = append(program.constants, c)
		if _, exists := program.consts[node.Name]; !exists {
			program.consts[node.Name] = c
			l.consts[node.Name] = c
		}
	}
}

func (l *programLinker) linkFields(nodes []*syntax.Field) []*schema.Field {
	var fields []*schema.Field
	for _, node := range nodes {
		typ, err := l.resolveType(node.Type)
		if err != nil {
			l.errResolve(err)
			continue
		}
		if schema.IsService(typ.TrueType()) {
			l.err(errNotAType(node.Type.Name, node.Type.Location))
			continue
		}
		if node.ImplicitID {
			l.env.warn(warnImplicitFieldID(node.Name, node.ID, node.Location))
		}
		fields = append(fields, &schema.Field{
			Element:      newElement(node.Name, node.Location, node.Doc, node.Annotations),
			ID:           node.ID,
			Requiredness: node.Requiredness,
			Type:         typ,
			Default:      node.Default,
		})
	}
	return fields
}

func (l *programLinker) linkStructs() {
	for _, sn := range l.structNodes {
		sn.linked.Fields = l.linkFields(sn.node.Fields)
	}
}

func (l *programLinker) linkServices() {
	for _, sn := range l.serviceNodes {
		node, service := sn.node, sn.linked
		if node.Extends != "" {
			base, ok := l.lookupType(node.Extends)
			if ok {
				service.Extends = base
			} else {
				l.err(errFailedToResolve(node.Extends, node.ExtendsLocation))
			}
		}
		for _, fn := range node.Functions {
			method := &schema.Method{
				Element: newElement(fn.Name, fn.Location, fn.Doc, fn.Annotations),
				Oneway:  fn.Oneway,
			}
			returnType, err := l.resolveType(fn.ReturnType)
			if err != nil {
				l.errResolve(err)
			} else {
				method.ReturnType = returnType
			}
			method.Params = l.linkFields(fn.Params)
			method.Throws = l.linkFields(fn.Throws)
			service.Methods = append(service.Methods, method)
		}
	}
}
