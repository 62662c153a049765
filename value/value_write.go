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

package value

import (
	"math"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/schema"
)

// Write encodes v as a value of type typ. It does not flush p.
//
// Write panics if typ is a service or void, which have no values.
func Write(p thrift.ProtocolWriter, typ schema.Type, v any) error {
	return write(p, typ, v, thrift.DefaultSkipDepth)
}

func write(p thrift.ProtocolWriter, typ schema.Type, v any, depth int) error {
	if depth <= 0 {
		return errDepthLimit(thrift.DefaultSkipDepth)
	}
	switch t := typ.TrueType().(type) {
	case *schema.BuiltinType:
		return writeBuiltin(p, t, v)
	case *schema.EnumType:
		x, ok := v.(int32)
		if !ok {
			return errWrongType(typ, v)
		}
		return p.WriteI32(x)
	case *schema.ListType:
		elems, ok := v.([]any)
		if !ok || len(elems) > math.MaxInt32 {
			return errWrongType(typ, v)
		}
		if err := p.WriteListBegin(schema.WireType(t.Elem()), int32(len(elems))); err != nil {
			return err
		}
		for _, elem := range elems {
			if err := write(p, t.Elem(), elem, depth-1); err != nil {
				return err
			}
		}
		return p.WriteListEnd()
	case *schema.SetType:
		elems, ok := v.([]any)
		if !ok || len(elems) > math.MaxInt32 {
			return errWrongType(typ, v)
		}
		if err := p.WriteSetBegin(schema.WireType(t.Elem()), int32(len(elems))); err != nil {
			return err
		}
		for _, elem := range elems {
			if err := write(p, t.Elem(), elem, depth-1); err != nil {
				return err
			}
		}
		return p.WriteSetEnd()
	case *schema.MapType:
		entries, ok := v.([]MapEntry)
		if !ok || len(entries) > math.MaxInt32 {
			return errWrongType(typ, v)
		}
		err := p.WriteMapBegin(
			schema.WireType(t.Key()),
			schema.WireType(t.Value()),
			int32(len(entries)),
		)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := write(p, t.Key(), entry.Key, depth-1); err != nil {
				return err
			}
			if err := write(p, t.Value(), entry.Value, depth-1); err != nil {
				return err
			}
		}
		return p.WriteMapEnd()
	case *schema.StructType:
		s, ok := v.(*Struct)
		if !ok || s.schema != t.Struct() {
			return errWrongType(typ, v)
		}
		return writeStruct(p, s, depth)
	case *schema.ServiceType:
		panic("value: service " + t.Name() + " has no values")
	}
	panic("unreachable")
}

func writeBuiltin(p thrift.ProtocolWriter, t *schema.BuiltinType, v any) error {
	var ok bool
	switch t.Kind() {
	case schema.BoolKind:
		var x bool
		if x, ok = v.(bool); ok {
			return p.WriteBool(x)
		}
	case schema.ByteKind:
		var x int8
		if x, ok = v.(int8); ok {
			return p.WriteI8(x)
		}
	case schema.I16Kind:
		var x int16
		if x, ok = v.(int16); ok {
			return p.WriteI16(x)
		}
	case schema.I32Kind:
		var x int32
		if x, ok = v.(int32); ok {
			return p.WriteI32(x)
		}
	case schema.I64Kind:
		var x int64
		if x, ok = v.(int64); ok {
			return p.WriteI64(x)
		}
	case schema.DoubleKind:
		var x float64
		if x, ok = v.(float64); ok {
			return p.WriteDouble(x)
		}
	case schema.StringKind:
		var x string
		if x, ok = v.(string); ok {
			return p.WriteString(x)
		}
	case schema.BinaryKind:
		var x []byte
		if x, ok = v.([]byte); ok {
			return p.WriteBinary(x)
		}
	case schema.VoidKind:
		panic("value: void has no values")
	}
	return errWrongType(t, v)
}

func checkStruct(s *schema.Struct, has func(id int16) bool) error {
	count := 0
	for _, field := range s.Fields {
		if has(field.ID) {
			count++
		} else if field.Required() {
			return errRequiredUnset(s, field)
		}
	}
	if s.IsUnion() && count > 1 {
		return errUnionFields(s, count)
	}
	return nil
}

func writeStruct(p thrift.ProtocolWriter, s *Struct, depth int) error {
	for id := range s.fields {
		if s.schema.FieldByID(id) == nil {
			return errUnknownField(s.schema, id)
		}
	}
	err := checkStruct(s.schema, func(id int16) bool {
		_, ok := s.fields[id]
		return ok
	})
	if err != nil {
		return err
	}

	if err := p.WriteStructBegin(s.schema.Name); err != nil {
		return err
	}
	for field, v := range s.Fields() {
		wireType := schema.WireType(field.Type)
		if err := p.WriteFieldBegin(field.Name, wireType, field.ID); err != nil {
			return err
		}
		if err := write(p, field.Type, v, depth-1); err != nil {
			return err
		}
		if err := p.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if err := p.WriteFieldStop(); err != nil {
		return err
	}
	return p.WriteStructEnd()
}

// WriteMessage writes a complete message: the envelope, a body of type
// typ, and the message end.
func WriteMessage(
	p thrift.ProtocolWriter,
	header thrift.MessageHeader,
	typ schema.Type,
	v any,
) error {
	if err := p.WriteMessageBegin(header.Name, header.Type, header.SeqID); err != nil {
		return err
	}
	if err := Write(p, typ, v); err != nil {
		return err
	}
	return p.WriteMessageEnd()
}
