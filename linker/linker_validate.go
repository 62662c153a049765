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
	"math"
	"strings"

	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/syntax"
)

func (l *programLinker) validate() {
	program := l.program
	for _, c := range program.constants {
		if err := l.checkConst(c.Type, c.Value); err != nil {
			l.err(err)
		}
	}
	for _, sn := range l.structNodes {
		l.validateStruct(sn.linked)
	}
	l.validateServices()
}

func (l *programLinker) validateFields(owner string, fields []*schema.Field) {
	byID := make(map[int16]*schema.Field)
	byName := make(map[string]bool)
	for _, field := range fields {
		if prev, dup := byID[field.ID]; dup {
			l.err(errDuplicateFieldID(prev.Name, field.Name, field.ID, field.Location))
		} else {
			byID[field.ID] = field
		}
		if byName[field.Name] {
			l.err(errDuplicateFieldName(owner, field.Name, field.Location))
		}
		byName[field.Name] = true
		if field.Default != nil {
			if err := l.checkConst(field.Type, field.Default); err != nil {
				l.err(err)
			}
		}
	}
}

func (l *programLinker) validateStruct(strct *schema.Struct) {
	l.validateFields(strct.Kind.String()+" "+strct.Name, strct.Fields)
	if !strct.IsUnion() {
		return
	}
	defaults := 0
	for _, field := range strct.Fields {
		if field.Required() {
			l.err(errUnionRequiredField(strct.Name, field.Name, field.Location))
		}
		if field.Default != nil {
			defaults++
			if defaults == 2 {
				l.err(errUnionMultipleDefaults(strct.Name, field.Location))
			}
		}
	}
}

// validateServices checks services base-first. Services in an inheritance
// cycle, or extending one, are reported once per cycle and not checked
// further.
func (l *programLinker) validateServices() {
	nodes := make(map[*schema.Service]*syntax.Service)
	local := make(map[*schema.Service]bool)
	for _, sn := range l.serviceNodes {
		nodes[sn.linked] = sn.node
		local[sn.linked] = true
	}

	blocked := make(map[*schema.Service]bool)
	for _, sn := range l.serviceNodes {
		if blocked[sn.linked] {
			continue
		}
		var path []*schema.Service
		index := make(map[*schema.Service]int)
		for cur := sn.linked; cur != nil && local[cur]; cur = cur.Base() {
			if start, seen := index[cur]; seen {
				cycle := path[start:]
				chain := make([]string, 0, len(cycle)+1)
				for _, service := range cycle {
					chain = append(chain, service.Name)
				}
				chain = append(chain, cycle[0].Name)
				l.err(errCircularInheritance(chain, cycle[0].Location))
				for _, service := range path {
					blocked[service] = true
				}
				break
			}
			if blocked[cur] {
				for _, service := range path {
					blocked[service] = true
				}
				break
			}
			index[cur] = len(path)
			path = append(path, cur)
		}
	}

	children := make(map[*schema.Service][]*schema.Service)
	var roots []*schema.Service
	for _, sn := range l.serviceNodes {
		service := sn.linked
		if blocked[service] {
			continue
		}
		if service.Extends != nil && service.Base() == nil {
			l.err(errBaseNotService(sn.node.Extends, sn.node.ExtendsLocation))
		}
		if base := service.Base(); base != nil && local[base] {
			children[base] = append(children[base], service)
		} else {
			roots = append(roots, service)
		}
	}

	queue := roots
	for len(queue) > 0 {
		service := queue[0]
		queue = queue[1:]
		l.validateService(service)
		queue = append(queue, children[service]...)
	}
}

func isVoid(typ schema.Type) bool {
	builtin, ok := typ.TrueType().(*schema.BuiltinType)
	return ok && builtin.Kind() == schema.VoidKind
}

func (l *programLinker) validateService(service *schema.Service) {
	inherited := make(map[string]*schema.Service)
	for base := service.Base(); base != nil; base = base.Base() {
		for _, method := range base.Methods {
			if _, ok := inherited[method.Name]; !ok {
				inherited[method.Name] = base
			}
		}
	}

	own := make(map[string]bool)
	for _, method := range service.Methods {
		if base, ok := inherited[method.Name]; ok {
			l.err(errMethodOverridesBase(service.Name, method.Name, base.Name, method.Location))
		} else if own[method.Name] {
			l.err(errDuplicateMethod(service.Name, method.Name, method.Location))
		}
		own[method.Name] = true

		if method.Oneway {
			if method.ReturnType != nil && !isVoid(method.ReturnType) {
				l.err(errOnewayReturn(method.Name, method.Location))
			}
			if len(method.Throws) > 0 {
				l.err(errOnewayThrows(method.Name, method.Location))
			}
		}

		owner := "method " + service.Name + "." + method.Name
		l.validateFields(owner, method.Params)
		l.validateFields(owner, method.Throws)
		for _, field := range method.Throws {
			strct, ok := field.Type.TrueType().(*schema.StructType)
			if !ok || !strct.Struct().IsException() {
				l.err(errThrowsNotException(
					method.Name,
					field.Name,
					field.Type.Name(),
					field.Location,
				))
			}
		}
	}
}

// checkConst reports whether value is acceptable where expected is
// required. An identifier naming a constant of exactly the expected type
// is accepted at any nesting level. Scalar and enum constants are also
// accepted through typedefs; a container constant must match exactly.
func (l *programLinker) checkConst(expected schema.Type, value syntax.ConstValue) *Error {
	if ident, ok := value.(*syntax.IdentifierValue); ok {
		if c, ok := l.lookupConst(ident.Name); ok && schema.Equal(c.Type, expected) {
			return nil
		}
	}

	switch t := expected.TrueType().(type) {
	case *schema.BuiltinType:
		if l.isConstOf(t, value) {
			return nil
		}
		switch t.Kind() {
		case schema.BoolKind:
			return checkBool(t, value)
		case schema.ByteKind:
			return checkInt(t, value, math.MinInt8, math.MaxInt8)
		case schema.I16Kind:
			return checkInt(t, value, math.MinInt16, math.MaxInt16)
		case schema.I32Kind:
			return checkInt(t, value, math.MinInt32, math.MaxInt32)
		case schema.I64Kind:
			return checkInt(t, value, math.MinInt64, math.MaxInt64)
		case schema.DoubleKind:
			switch value.(type) {
			case *syntax.IntValue, *syntax.DoubleValue:
				return nil
			}
		case schema.StringKind, schema.BinaryKind:
			if _, ok := value.(*syntax.StringValue); ok {
				return nil
			}
		}
		return errConstTypeMismatch(t.Name(), value)
	case *schema.EnumType:
		return l.checkEnum(t, value)
	case *schema.ListType:
		return l.checkElements(t, t.Elem(), value)
	case *schema.SetType:
		return l.checkElements(t, t.Elem(), value)
	case *schema.MapType:
		m, ok := value.(*syntax.MapValue)
		if !ok {
			return errConstTypeMismatch(t.Name(), value)
		}
		for _, entry := range m.Entries {
			if err := l.checkConst(t.Key(), entry.Key); err != nil {
				return err
			}
			if err := l.checkConst(t.Value(), entry.Value); err != nil {
				return err
			}
		}
		return nil
	case *schema.StructType:
		return l.checkStruct(t.Struct(), value)
	}
	return errConstTypeMismatch(expected.Name(), value)
}

// isConstOf reports whether value names a constant whose true type is t.
func (l *programLinker) isConstOf(t schema.Type, value syntax.ConstValue) bool {
	ident, ok := value.(*syntax.IdentifierValue)
	if !ok {
		return false
	}
	c, ok := l.lookupConst(ident.Name)
	return ok && schema.Equal(c.Type.TrueType(), t)
}

func checkBool(t *schema.BuiltinType, value syntax.ConstValue) *Error {
	switch v := value.(type) {
	case *syntax.IntValue:
		if v.Value == 0 || v.Value == 1 {
			return nil
		}
	case *syntax.IdentifierValue:
		if v.Name == "true" || v.Name == "false" {
			return nil
		}
	}
	return errConstTypeMismatch(t.Name(), value)
}

func checkInt(t *schema.BuiltinType, value syntax.ConstValue, min, max int64) *Error {
	v, ok := value.(*syntax.IntValue)
	if !ok {
		return errConstTypeMismatch(t.Name(), value)
	}
	if v.Value < min || v.Value > max {
		return errConstOutOfRange(t.Name(), v)
	}
	return nil
}

func (l *programLinker) checkElements(
	container schema.Type,
	elem schema.Type,
	value syntax.ConstValue,
) *Error {
	list, ok := value.(*syntax.ListValue)
	if !ok {
		return errConstTypeMismatch(container.Name(), value)
	}
	for _, elemValue := range list.Elements {
		if err := l.checkConst(elem, elemValue); err != nil {
			return err
		}
	}
	return nil
}

// checkEnum accepts a member's value, a member name that is bare or
// qualified by the enum (and optionally its program), or a constant of
// the enum type.
func (l *programLinker) checkEnum(t *schema.EnumType, value syntax.ConstValue) *Error {
	enum := t.Enum()
	switch v := value.(type) {
	case *syntax.IntValue:
		if v.Value >= math.MinInt32 && v.Value <= math.MaxInt32 {
			if enum.MemberByValue(int32(v.Value)) != nil {
				return nil
			}
		}
		return errNotEnumMember(v.String(), enum.Name, v.Loc)
	case *syntax.IdentifierValue:
		member := v.Name
		for _, prefix := range []string{
			enum.Program() + "." + enum.Name + ".",
			enum.Name + ".",
		} {
			if strings.HasPrefix(member, prefix) {
				member = member[len(prefix):]
				break
			}
		}
		if !strings.Contains(member, ".") && enum.Member(member) != nil {
			return nil
		}
		if l.isConstOf(t, v) {
			return nil
		}
		return errNotEnumMember(member, enum.Name, v.Loc)
	}
	return errConstTypeMismatch(enum.Name, value)
}

// checkStruct accepts a map from field names to field values.
func (l *programLinker) checkStruct(strct *schema.Struct, value syntax.ConstValue) *Error {
	m, ok := value.(*syntax.MapValue)
	if !ok {
		return errConstTypeMismatch(strct.Name, value)
	}
	for _, entry := range m.Entries {
		key, ok := entry.Key.(*syntax.StringValue)
		if !ok {
			return errConstTypeMismatch("string", entry.Key)
		}
		field := strct.FieldByName(key.Value)
		if field == nil {
			return errNotStructField(key.Value, strct.Name, key.Loc)
		}
		if err := l.checkConst(field.Type, entry.Value); err != nil {
			return err
		}
	}
	return nil
}
