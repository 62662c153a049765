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
	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/schema"
)

// Read decodes one value of type typ. Struct fields with an unknown ID or
// an unexpected wire type are skipped.
//
// Read panics if typ is a service or void.
func Read(p thrift.ProtocolReader, typ schema.Type) (any, error) {
	return read(p, typ, thrift.DefaultSkipDepth)
}

func read(p thrift.ProtocolReader, typ schema.Type, depth int) (any, error) {
	if depth <= 0 {
		return nil, errDepthLimit(thrift.DefaultSkipDepth)
	}
	switch t := typ.TrueType().(type) {
	case *schema.BuiltinType:
		return readBuiltin(p, t)
	case *schema.EnumType:
		return p.ReadI32()
	case *schema.ListType:
		header, err := p.ReadListBegin()
		if err != nil {
			return nil, err
		}
		elems, err := readElems(p, "list", t.Elem(), header.ElemType, header.Size, depth)
		if err != nil {
			return nil, err
		}
		return elems, p.ReadListEnd()
	case *schema.SetType:
		header, err := p.ReadSetBegin()
		if err != nil {
			return nil, err
		}
		elems, err := readElems(p, "set", t.Elem(), header.ElemType, header.Size, depth)
		if err != nil {
			return nil, err
		}
		return elems, p.ReadSetEnd()
	case *schema.MapType:
		return readMap(p, t, depth)
	case *schema.StructType:
		return readStruct(p, t.Struct(), depth)
	case *schema.ServiceType:
		panic("value: service " + t.Name() + " has no values")
	}
	panic("unreachable")
}

func readBuiltin(p thrift.ProtocolReader, t *schema.BuiltinType) (any, error) {
	switch t.Kind() {
	case schema.BoolKind:
		return p.ReadBool()
	case schema.ByteKind:
		return p.ReadI8()
	case schema.I16Kind:
		return p.ReadI16()
	case schema.I32Kind:
		return p.ReadI32()
	case schema.I64Kind:
		return p.ReadI64()
	case schema.DoubleKind:
		return p.ReadDouble()
	case schema.StringKind:
		return p.ReadString()
	case schema.BinaryKind:
		return p.ReadBinary()
	}
	panic("value: void has no values")
}

func readElems(
	p thrift.ProtocolReader,
	container string,
	elemType schema.Type,
	wireType thrift.TType,
	size int32,
	depth int,
) ([]any, error) {
	if want := schema.WireType(elemType); size > 0 && wireType != want {
		return nil, errElemType(container, want, wireType)
	}
	elems := make([]any, 0, size)
	for ii := int32(0); ii < size; ii++ {
		elem, err := read(p, elemType, depth-1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	return elems, nil
}

func readMap(p thrift.ProtocolReader, t *schema.MapType, depth int) (any, error) {
	header, err := p.ReadMapBegin()
	if err != nil {
		return nil, err
	}
	if header.Size > 0 {
		if want := schema.WireType(t.Key()); header.KeyType != want {
			return nil, errElemType("map key", want, header.KeyType)
		}
		if want := schema.WireType(t.Value()); header.ValueType != want {
			return nil, errElemType("map value", want, header.ValueType)
		}
	}
	entries := make([]MapEntry, 0, header.Size)
	for ii := int32(0); ii < header.Size; ii++ {
		key, err := read(p, t.Key(), depth-1)
		if err != nil {
			return nil, err
		}
		value, err := read(p, t.Value(), depth-1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{key, value})
	}
	return entries, p.ReadMapEnd()
}

func readStruct(p thrift.ProtocolReader, s *schema.Struct, depth int) (*Struct, error) {
	if _, err := p.ReadStructBegin(); err != nil {
		return nil, err
	}
	out := NewStruct(s)
	for {
		header, err := p.ReadFieldBegin()
		if err != nil {
			return nil, err
		}
		if header.Type == thrift.STOP {
			break
		}
		field := s.FieldByID(header.ID)
		if field == nil || schema.WireType(field.Type) != header.Type {
			if err := thrift.SkipDepth(p, header.Type, depth-1); err != nil {
				return nil, err
			}
		} else {
			v, err := read(p, field.Type, depth-1)
			if err != nil {
				return nil, err
			}
			out.fields[field.ID] = v
		}
		if err := p.ReadFieldEnd(); err != nil {
			return nil, err
		}
	}
	if err := p.ReadStructEnd(); err != nil {
		return nil, err
	}
	err := checkStruct(s, func(id int16) bool {
		_, ok := out.fields[id]
		return ok
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadMessage reads a complete message whose body has type typ.
func ReadMessage(p thrift.ProtocolReader, typ schema.Type) (thrift.MessageHeader, any, error) {
	header, err := p.ReadMessageBegin()
	if err != nil {
		return header, nil, err
	}
	v, err := Read(p, typ)
	if err != nil {
		return header, nil, err
	}
	return header, v, p.ReadMessageEnd()
}

// Transcode reads one value of type typ from src and writes it to dst.
func Transcode(dst thrift.ProtocolWriter, src thrift.ProtocolReader, typ schema.Type) error {
	v, err := Read(src, typ)
	if err != nil {
		return err
	}
	return Write(dst, typ, v)
}
